package service

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"emperror.dev/errors"
	"github.com/Scalingo/sclng-language-stats/model"
	"github.com/google/go-github/v66/github"
	log "github.com/sirupsen/logrus"
)

// requestError is a classified github error
// it matches one of the model sentinels with errors.Is and keeps the upstream cause
type requestError struct {
	kind       error
	retryAfter time.Duration
	cause      error
}

func (e *requestError) Error() string {
	return e.kind.Error()
}

func (e *requestError) Unwrap() error {
	return e.kind
}

// retryAfterOf returns the delay github asked us to wait before retrying, 0 if none
func retryAfterOf(err error) time.Duration {
	var reqErr *requestError
	if errors.As(err, &reqErr) && reqErr.retryAfter > 0 {
		return reqErr.retryAfter
	}

	return 0
}

// HandleRequestErrors manage errors including github rate limit errors at the same location
// the returned error matches one of the model sentinels and carries the retry-after hint sent by github
func (s githubService) HandleRequestErrors(err error) error {
	if err == nil {
		return nil
	}

	// cancellation comes from the caller and is never classified nor retried
	if errors.Is(err, context.Canceled) {
		return err
	}

	var rateLimitErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var responseErr *github.ErrorResponse
	var netErr net.Error

	switch {
	case errors.As(err, &rateLimitErr):
		log.WithField("reset", rateLimitErr.Rate.Reset.Time).Warning("the Github rate limit has been reached")
		return &requestError{kind: model.ErrRateLimited, retryAfter: time.Until(rateLimitErr.Rate.Reset.Time), cause: err}

	case errors.As(err, &abuseErr):
		log.WithField("retryAfter", abuseErr.GetRetryAfter()).Warning("the Github secondary rate limit has been reached")
		return &requestError{kind: model.ErrRateLimited, retryAfter: abuseErr.GetRetryAfter(), cause: err}

	case errors.As(err, &responseErr):
		return classifyResponse(responseErr)

	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr):
		log.WithError(err).Debug("github request timed out or could not reach the server")
		return &requestError{kind: model.ErrUpstreamUnavailable, cause: err}
	}

	log.WithError(err).Error("error catched when fetching data from github")
	return &requestError{kind: model.ErrFetch, cause: err}
}

func classifyResponse(responseErr *github.ErrorResponse) error {
	status := 0
	var header http.Header

	if responseErr.Response != nil {
		status = responseErr.Response.StatusCode
		header = responseErr.Response.Header
	}

	switch {
	case status == http.StatusUnauthorized:
		return &requestError{kind: model.ErrAuthentication, cause: responseErr}

	case status == http.StatusTooManyRequests:
		return &requestError{kind: model.ErrRateLimited, retryAfter: parseRetryAfter(header), cause: responseErr}

	case status == http.StatusForbidden, status == http.StatusNotFound, status == http.StatusUnavailableForLegalReasons:
		return &requestError{kind: model.ErrNotFound, cause: responseErr}

	case status >= http.StatusInternalServerError:
		return &requestError{kind: model.ErrUpstreamUnavailable, cause: responseErr}
	}

	log.WithError(responseErr).WithField("status", status).Error("unexpected response from github")
	return &requestError{kind: model.ErrFetch, cause: responseErr}
}

// parseRetryAfter reads a Retry-After header expressed in seconds
func parseRetryAfter(header http.Header) time.Duration {
	if header == nil {
		return 0
	}

	seconds, err := strconv.Atoi(header.Get("Retry-After"))
	if err != nil || seconds <= 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}
