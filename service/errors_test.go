package service

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/Scalingo/sclng-language-stats/model"
	"github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func errorResponse(status int, header http.Header) *github.ErrorResponse {
	if header == nil {
		header = http.Header{}
	}

	return &github.ErrorResponse{
		Response: &http.Response{
			StatusCode: status,
			Header:     header,
			Request:    httptest.NewRequest(http.MethodGet, "https://api.github.com/user/repos", nil),
		},
		Message: http.StatusText(status),
	}
}

// TestHandleRequestErrors checks the classification of github errors
func TestHandleRequestErrors(t *testing.T) {
	retryAfter := 42 * time.Second

	tests := []struct {
		name               string
		err                error
		expectedErr        error
		expectedRetryAfter time.Duration
		expectDrained      bool
	}{
		{
			name: "Primary rate limit",
			err: &github.RateLimitError{
				Rate:     github.Rate{Limit: 60, Remaining: 0, Reset: github.Timestamp{Time: time.Now().Add(time.Hour)}},
				Response: errorResponse(http.StatusForbidden, nil).Response,
			},
			expectedErr:   model.ErrRateLimited,
			expectDrained: true,
		},
		{
			name:               "Secondary rate limit",
			err:                &github.AbuseRateLimitError{RetryAfter: &retryAfter},
			expectedErr:        model.ErrRateLimited,
			expectedRetryAfter: retryAfter,
		},
		{
			name:               "Too many requests with retry-after",
			err:                errorResponse(http.StatusTooManyRequests, http.Header{"Retry-After": []string{"7"}}),
			expectedErr:        model.ErrRateLimited,
			expectedRetryAfter: 7 * time.Second,
		},
		{name: "Bad credentials", err: errorResponse(http.StatusUnauthorized, nil), expectedErr: model.ErrAuthentication},
		{name: "Repository gone", err: errorResponse(http.StatusNotFound, nil), expectedErr: model.ErrNotFound},
		{name: "Access revoked", err: errorResponse(http.StatusForbidden, nil), expectedErr: model.ErrNotFound},
		{name: "Server error", err: errorResponse(http.StatusServiceUnavailable, nil), expectedErr: model.ErrUpstreamUnavailable},
		{name: "Unexpected status", err: errorResponse(http.StatusUnprocessableEntity, nil), expectedErr: model.ErrFetch},
		{name: "Request timeout", err: context.DeadlineExceeded, expectedErr: model.ErrUpstreamUnavailable},
		{name: "Network failure", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, expectedErr: model.ErrUpstreamUnavailable},
		{name: "Unknown error", err: errors.New("boom"), expectedErr: model.ErrFetch},
		{name: "Cancellation is kept as is", err: context.Canceled, expectedErr: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := githubService{githubRateLimiter: rate.NewLimiter(rate.Every(time.Hour), 60)}
			sess := session{limiter: rate.NewLimiter(rate.Every(time.Hour), 60)}

			err := svc.handleSessionErrors(sess, tt.err)

			assert.ErrorIs(t, err, tt.expectedErr)
			if tt.expectedRetryAfter > 0 {
				assert.Equal(t, tt.expectedRetryAfter, retryAfterOf(err))
			}

			if tt.expectDrained {
				assert.Greater(t, retryAfterOf(err), 59*time.Minute)
				assert.False(t, sess.limiter.Allow())
			} else {
				assert.True(t, sess.limiter.Allow())
			}

			// the limiter shared by every credential is never drained
			assert.True(t, svc.githubRateLimiter.Allow())
		})
	}
}

func TestHandleRequestErrorsNil(t *testing.T) {
	svc := githubService{githubRateLimiter: rate.NewLimiter(rate.Every(time.Hour), 1)}

	assert.NoError(t, svc.HandleRequestErrors(nil))
}
