package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/authflow/handler"
	"github.com/dmitrymomot/authflow/pkg/identity"
	"github.com/dmitrymomot/authflow/pkg/logger"
	"github.com/dmitrymomot/authflow/pkg/ratelimiter"
	"github.com/dmitrymomot/authflow/pkg/session"
	"github.com/dmitrymomot/authflow/svc/account"
)

// MsgInvalidLink is shown for any bad, expired or reused link so the response
// never tells which check failed.
const MsgInvalidLink = "This link is invalid or has expired."

var (
	ErrInvalidLink = handler.HTTPError{Code: http.StatusBadRequest, Key: "invalid_link", Message: MsgInvalidLink}
	ErrTryAgain    = handler.ErrServiceUnavailable.WithMessage("Temporary failure, please try again.")
)

// HTTPError maps an account or identity error onto its HTTP representation.
func HTTPError(err error) handler.HTTPError {
	switch {
	case errors.Is(err, account.ErrTransient):
		return ErrTryAgain
	case errors.Is(err, account.ErrInvalidToken),
		errors.Is(err, account.ErrExpiredToken),
		errors.Is(err, account.ErrAlreadyConsumed):
		return ErrInvalidLink
	case errors.Is(err, account.ErrUnauthorized):
		return handler.ErrUnauthorized.WithMessage("Please log in again.")
	case errors.Is(err, account.ErrForbidden):
		return handler.ErrForbidden.WithMessage("You do not have permission to perform this action.")
	case errors.Is(err, account.ErrInvalidCredentials):
		return handler.ErrUnauthorized.WithMessage("Invalid email or password.")
	case errors.Is(err, account.ErrNotConfirmed):
		return handler.HTTPError{Code: http.StatusForbidden, Key: "email_not_confirmed", Message: "Please confirm your email before logging in."}
	case errors.Is(err, account.ErrEmailTaken):
		return handler.ErrConflict.WithMessage("An account with this email already exists.")
	case errors.Is(err, account.ErrAccountNotFound):
		return handler.ErrNotFound.WithMessage("An account with this email does not exist.")
	case errors.Is(err, account.ErrAlreadyConfirmed):
		return handler.ErrConflict.WithMessage("This email is already confirmed.")
	case errors.Is(err, account.ErrDeliveryFailed):
		return handler.ErrBadGateway.WithMessage("We could not send the email, please try again.")
	case errors.Is(err, account.ErrProviderDisabled):
		return handler.ErrNotFound.WithMessage("This login method is not available.")
	case errors.Is(err, account.ErrInvalidVisitorID):
		return handler.ErrBadRequest.WithMessage("Invalid visitor id.")
	case errors.Is(err, identity.ErrInvalidIDToken):
		return handler.ErrBadRequest.WithMessage("Invalid ID token.")
	case errors.Is(err, identity.ErrEmailNotAvailable):
		return handler.ErrBadRequest.WithMessage("Email not available.")
	case errors.Is(err, identity.ErrInvalidEmail):
		return handler.ErrUnprocessable.WithMessage("The email is invalid.")
	case errors.Is(err, identity.ErrWeakPassword):
		return handler.ErrUnprocessable.WithMessage("The password does not meet the requirements.")
	case errors.Is(err, identity.ErrMissingName):
		return handler.ErrUnprocessable.WithMessage("First and last name are required.")
	default:
		return handler.AsHTTPError(err)
	}
}

// Error renders err as a JSON error response.
func Error(err error) handler.Response {
	return handler.JSONError(HTTPError(err))
}

// SessionErrorHandler renders session middleware rejections as JSON.
func SessionErrorHandler(log *slog.Logger) session.ErrorHandler {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request, err error) {
		var httpErr handler.HTTPError
		switch {
		case errors.Is(err, session.ErrForbidden):
			httpErr = HTTPError(account.ErrForbidden)
		case errors.Is(err, session.ErrUnauthorized):
			httpErr = HTTPError(account.ErrUnauthorized)
		default:
			log.ErrorContext(r.Context(), "session check failed", logger.Component("http"), logger.Error(err))
			httpErr = ErrTryAgain
		}
		_ = handler.JSONError(httpErr).Render(w, r)
	}
}

// RateLimitErrorHandler renders throttled requests as JSON.
func RateLimitErrorHandler(log *slog.Logger) ratelimiter.ErrorHandler {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request, err error) {
		httpErr := handler.ErrTooManyRequests.WithMessage("Too many attempts, please try again later.")
		if !errors.Is(err, ratelimiter.ErrRateLimited) {
			log.ErrorContext(r.Context(), "rate limiter failed", logger.Component("http"), logger.Error(err))
			httpErr = ErrTryAgain
		}
		_ = handler.JSONError(httpErr).Render(w, r)
	}
}
