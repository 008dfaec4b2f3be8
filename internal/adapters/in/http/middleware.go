package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"kargo/internal/pkg/auth"
	"kargo/internal/pkg/errs"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Authenticate verifies the bearer token and stores the principal on the
// request context. The token may also come in the "token" query parameter,
// which browsers need for WebSocket upgrades.
func Authenticate(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				if q := c.QueryParam("token"); q != "" {
					token, err = q, nil
				}
			}
			if err != nil {
				return err
			}

			p, err := auth.Parse(token, secret)
			if err != nil {
				return err
			}

			c.SetRequest(c.Request().WithContext(auth.WithPrincipal(c.Request().Context(), p)))
			return next(c)
		}
	}
}

// ValidateRequests checks documented requests against the OpenAPI document.
// Routes the document does not describe pass through untouched.
func ValidateRequests(router routers.Router) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route, params, err := router.FindRoute(req)
			if err != nil {
				return next(c)
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: params,
				Route:      route,
				Options: &openapi3filter.Options{
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
					MultiError:         false,
				},
			}
			if err = openapi3filter.ValidateRequest(req.Context(), input); err != nil {
				return errs.NewValueIsInvalidErrorWithCause("request", err)
			}
			return next(c)
		}
	}
}

// NewOpenAPIRouter loads and validates the embedded document.
func NewOpenAPIRouter(ctx context.Context) (routers.Router, *openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, nil, err
	}
	if err = doc.Validate(ctx); err != nil {
		return nil, nil, err
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, nil, err
	}
	return router, doc, nil
}

// RequestLogger writes one structured line per request. The access token a
// WebSocket client passes in the query is masked.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", redactedURI(c.Request().URL),
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
			}
			if v.RequestID != "" {
				attrs = append(attrs, "request_id", v.RequestID)
			}
			if p, ok := auth.FromContext(c.Request().Context()); ok {
				attrs = append(attrs, "user_id", p.UserID.String(), "role", p.Role.String())
			}

			ctx := c.Request().Context()
			switch {
			case v.Status >= http.StatusInternalServerError:
				logger.ErrorContext(ctx, "request", append(attrs, "error", v.Error)...)
			case v.Status >= http.StatusBadRequest:
				logger.WarnContext(ctx, "request", attrs...)
			default:
				logger.InfoContext(ctx, "request", attrs...)
			}
			return nil
		},
	})
}

func redactedURI(u *url.URL) string {
	query := u.Query()
	if !query.Has("token") {
		return u.RequestURI()
	}
	query.Set("token", "REDACTED")
	masked := *u
	masked.RawQuery = query.Encode()
	return masked.RequestURI()
}
