package model

import (
	"context"
	"net/http"

	"emperror.dev/errors"
)

// error codes returned by the services, the text is also the code exposed by the API
const (
	ErrAuthentication      = errors.Sentinel("AUTHENTICATION_ERROR")
	ErrMissingCredential   = errors.Sentinel("MISSING_CREDENTIAL")
	ErrIdentityMismatch    = errors.Sentinel("IDENTITY_MISMATCH")
	ErrRateLimited         = errors.Sentinel("RATE_LIMIT_REACHED")
	ErrRateLimiter         = errors.Sentinel("RATE_LIMITER_ERROR")
	ErrUpstreamUnavailable = errors.Sentinel("UPSTREAM_UNAVAILABLE")
	ErrNotFound            = errors.Sentinel("NOT_FOUND")
	ErrInvalidData         = errors.Sentinel("INVALID_DATA_FOUND")
	ErrFetch               = errors.Sentinel("FETCH_ERROR")
)

var knownErrors = []error{
	ErrAuthentication,
	ErrMissingCredential,
	ErrIdentityMismatch,
	ErrRateLimited,
	ErrRateLimiter,
	ErrUpstreamUnavailable,
	ErrNotFound,
	ErrInvalidData,
	ErrFetch,
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorCode returns the code of the first known error in the chain, GENERIC_ERROR otherwise
func ErrorCode(err error) string {
	for _, known := range knownErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "REQUEST_CANCELED"
	}

	return "GENERIC_ERROR"
}

func NewAPIError(errReason error) APIError {
	code := ErrorCode(errReason)

	switch {
	case errors.Is(errReason, ErrAuthentication):
		return APIError{
			Code:    code,
			Message: "github rejected the credential. sign in again to get a new token",
		}

	case errors.Is(errReason, ErrMissingCredential):
		return APIError{
			Code:    code,
			Message: "missing credential. provide a github token as bearer authorization header",
		}

	case errors.Is(errReason, ErrIdentityMismatch):
		return APIError{
			Code:    code,
			Message: "the credential does not belong to the requested user",
		}

	case errors.Is(errReason, ErrRateLimiter):
		return APIError{
			Code:    code,
			Message: "too many repositories to load within the hourly github requests budget",
		}

	case errors.Is(errReason, ErrRateLimited):
		return APIError{
			Code:    code,
			Message: "github rate limit reached. wait few minutes and try again",
		}

	case errors.Is(errReason, ErrUpstreamUnavailable):
		return APIError{
			Code:    code,
			Message: "github is currently unavailable. try again later",
		}

	case errors.Is(errReason, ErrNotFound):
		return APIError{
			Code:    code,
			Message: "resource not found on github",
		}

	default:
		return APIError{
			Code:    code,
			Message: "internal server error. contact our support with the reason code for assistance",
		}
	}
}

// HTTPStatus maps an error to the status code returned by the API
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrAuthentication), errors.Is(err, ErrMissingCredential):
		return http.StatusUnauthorized
	case errors.Is(err, ErrIdentityMismatch):
		return http.StatusForbidden
	case errors.Is(err, ErrRateLimited), errors.Is(err, ErrRateLimiter):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
