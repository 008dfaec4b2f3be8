package http

import (
	"context"
	"log/slog"
	"net/http"

	"kargo/internal/core/domain/services"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type RouterConfig struct {
	JWTSecret   string
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter assembles the echo instance: health and docs are public, every
// /api/v1 route authenticates and is validated against the OpenAPI document.
func NewRouter(ctx context.Context, server *Server, liveChannel echo.HandlerFunc, cfg RouterConfig) (*echo.Echo, error) {
	validator, _, err := NewOpenAPIRouter(ctx)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewErrorHandler(cfg.Logger)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	e.Use(
		middleware.RequestID(),
		RequestLogger(cfg.Logger),
		middleware.Recover(),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:  origins,
			AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			ExposeHeaders: []string{HeaderTotalCount, HeaderNextOffset},
		}),
	)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/swagger/openapi.yaml", ServeOpenAPI)
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.URL("/swagger/openapi.yaml")))

	api := e.Group("/api/v1", Authenticate(cfg.JWTSecret), ValidateRequests(validator))
	server.Register(api)
	api.GET("/ws", liveChannel, server.Require(services.ActionConnect))

	return e, nil
}
