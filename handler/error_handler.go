package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/authflow/pkg/logger"
	"github.com/dmitrymomot/authflow/pkg/requestid"
)

// AsHTTPError maps err onto an HTTPError. Bind failures become 400 or 415,
// unknown errors become a bare 500.
func AsHTTPError(err error) HTTPError {
	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
		if httpErr.Code == 0 {
			httpErr.Code = http.StatusInternalServerError
		}
		return httpErr
	case errors.Is(err, ErrUnsupportedMedia):
		return HTTPError{Code: http.StatusUnsupportedMediaType, Key: "unsupported_media_type", Message: ErrUnsupportedMedia.Error()}
	case errors.Is(err, ErrInvalidJSON), errors.Is(err, ErrInvalidPath):
		return ErrBadRequest.WithMessage(err.Error())
	default:
		return ErrInternal
	}
}

// NewErrorHandler returns an ErrorHandler that writes a JSON error envelope
// and logs the failure; 5xx at error level, 4xx at debug. A nil logger
// disables logging.
func NewErrorHandler(log *slog.Logger) ErrorHandler {
	if log == nil {
		log = logger.Discard()
	}
	return func(ctx Context, err error) {
		httpErr := AsHTTPError(err)
		r := ctx.Request()

		level := slog.LevelDebug
		if httpErr.Code >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.LogAttrs(r.Context(), level, "request failed",
			logger.Component("http"),
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Error(err),
			slog.Int("status", httpErr.Code),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		if renderErr := JSONError(httpErr).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error", logger.Error(renderErr))
		}
	}
}
