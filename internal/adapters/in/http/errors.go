package http

import (
	"errors"
	"log/slog"
	"net/http"

	"kargo/internal/pkg/auth"
	"kargo/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Error is the JSON envelope of every failed request.
type Error struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

const (
	KindValidation        = "validation"
	KindUnauthorized      = "unauthorized"
	KindForbidden         = "forbidden"
	KindNotFound          = "not_found"
	KindInvalidTransition = "invalid_transition"
	KindAlreadyAssigned   = "already_assigned"
	KindInvalidLocation   = "invalid_location"
	KindStoreUnavailable  = "store_unavailable"
	KindInternal          = "internal"
)

var errorKinds = []struct {
	target error
	code   int
	kind   string
}{
	{errs.ErrAlreadyAssigned, http.StatusConflict, KindAlreadyAssigned},
	{errs.ErrInvalidTransition, http.StatusConflict, KindInvalidTransition},
	{errs.ErrForbidden, http.StatusForbidden, KindForbidden},
	{errs.ErrObjectNotFound, http.StatusNotFound, KindNotFound},
	{errs.ErrInvalidLocation, http.StatusUnprocessableEntity, KindInvalidLocation},
	{errs.ErrStoreUnavailable, http.StatusServiceUnavailable, KindStoreUnavailable},
	{auth.ErrMissingToken, http.StatusUnauthorized, KindUnauthorized},
	{auth.ErrInvalidToken, http.StatusUnauthorized, KindUnauthorized},
	{errs.ErrValueIsRequired, http.StatusBadRequest, KindValidation},
	{errs.ErrValueIsInvalid, http.StatusBadRequest, KindValidation},
	{errs.ErrValueIsOutOfRange, http.StatusBadRequest, KindValidation},
}

// toError maps an error to its envelope. Unknown errors become a 500 with a
// generic message.
func toError(err error) Error {
	for _, k := range errorKinds {
		if !errors.Is(err, k.target) {
			continue
		}
		msg := err.Error()
		if k.kind == KindAlreadyAssigned || k.code >= http.StatusInternalServerError {
			msg = k.target.Error()
		}
		return Error{Code: k.code, Kind: k.kind, Message: msg}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return Error{Code: he.Code, Kind: kindOf(he.Code), Message: http.StatusText(he.Code)}
	}

	return Error{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "internal error"}
}

func kindOf(code int) string {
	switch code {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusServiceUnavailable:
		return KindStoreUnavailable
	case http.StatusConflict:
		return KindInvalidTransition
	default:
		if code >= http.StatusInternalServerError {
			return KindInternal
		}
		return http.StatusText(code)
	}
}

// NewErrorHandler renders every error returned by a handler or middleware as
// an Error envelope. Server faults are logged; client faults are not.
func NewErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		body := toError(err)
		if body.Code >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method,
				"uri", redactedURI(c.Request().URL),
				"error", err,
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(body.Code)
		} else {
			writeErr = c.JSON(body.Code, body)
		}
		if writeErr != nil {
			logger.Warn("failed to write error response", "error", writeErr)
		}
	}
}
