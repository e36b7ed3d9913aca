package handler

import (
	"errors"
	"net/http"
)

var (
	ErrNilResponse         = errors.New("handler returned nil response")
	ErrBinderNotApplicable = errors.New("binder not applicable")
	ErrInvalidJSON         = errors.New("invalid JSON")
	ErrUnsupportedMedia    = errors.New("unsupported media type, expected application/json")
	ErrInvalidPath         = errors.New("invalid path parameter")
)

// HTTPError is an error with a status code, a stable machine-readable key and
// an optional human-readable message.
type HTTPError struct {
	Code    int
	Key     string
	Message string
}

func (e HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Key
}

// WithMessage returns a copy of e carrying msg.
func (e HTTPError) WithMessage(msg string) HTTPError {
	e.Message = msg
	return e
}

var (
	ErrBadRequest         = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrUnauthorized       = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized"}
	ErrForbidden          = HTTPError{Code: http.StatusForbidden, Key: "forbidden"}
	ErrNotFound           = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrConflict           = HTTPError{Code: http.StatusConflict, Key: "conflict"}
	ErrGone               = HTTPError{Code: http.StatusGone, Key: "gone"}
	ErrUnprocessable      = HTTPError{Code: http.StatusUnprocessableEntity, Key: "unprocessable_entity"}
	ErrTooManyRequests    = HTTPError{Code: http.StatusTooManyRequests, Key: "too_many_requests"}
	ErrInternal           = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
	ErrBadGateway         = HTTPError{Code: http.StatusBadGateway, Key: "bad_gateway"}
	ErrServiceUnavailable = HTTPError{Code: http.StatusServiceUnavailable, Key: "service_unavailable"}
)
