package service

import (
	"context"
	"math"
	"time"

	"emperror.dev/errors"
	"github.com/Scalingo/sclng-language-stats/config"
	"github.com/Scalingo/sclng-language-stats/model"
	log "github.com/sirupsen/logrus"
)

func isRetryable(err error) bool {
	return errors.Is(err, model.ErrRateLimited) || errors.Is(err, model.ErrUpstreamUnavailable)
}

func backoffDelay(cfg config.RetryConfig, attempt int) time.Duration {
	delay := time.Duration(float64(cfg.BaseDelay) * math.Pow(2, float64(attempt)))
	return min(delay, cfg.MaxDelay)
}

// withRetry runs fn until it succeeds, fails with a non retryable error or runs out of attempts
// fn must return errors already classified by HandleRequestErrors
// a retry-after hint longer than the backoff delay wins, unless it exceeds MaxRetryWait in which case we give up
func withRetry[T any](ctx context.Context, cfg config.RetryConfig, fields log.Fields, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(cfg, attempt-1)

			if retryAfter := retryAfterOf(lastErr); retryAfter > 0 {
				if retryAfter > cfg.MaxRetryWait {
					log.WithFields(fields).WithField("retryAfter", retryAfter).Warning("github asked to wait longer than allowed, giving up")
					return result, lastErr
				}

				delay = max(delay, retryAfter)
			}

			log.WithFields(fields).WithFields(log.Fields{
				"attempt": attempt,
				"delay":   delay,
				"reason":  lastErr.Error(),
			}).Debug("retrying github request")

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return result, ctx.Err()
			case <-timer.C:
			}
		}

		result, lastErr = fn(ctx)
		if lastErr == nil {
			return result, nil
		}

		if !isRetryable(lastErr) {
			return result, lastErr
		}
	}

	return result, lastErr
}
