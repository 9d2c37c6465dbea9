package service

import (
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/Scalingo/sclng-language-stats/config"
	"github.com/Scalingo/sclng-language-stats/model"
	"github.com/google/go-github/v66/github"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// github resets the quota of a token every hour
const rateLimitWindow = time.Hour

// credentialLimiters keeps one local rate limiter per credential
// github counts requests per token, so a token running out of requests never blocks the others
type credentialLimiters struct {
	mu              sync.Mutex
	requestsPerHour int
	lru             *expirable.LRU[string, *rate.Limiter]
}

func newCredentialLimiters(githubConfig config.GithubConfig, size int) *credentialLimiters {
	requestsPerHour := githubConfig.RequestsPerHour
	if requestsPerHour <= 0 {
		requestsPerHour = 5000
	}

	if size <= 0 {
		size = 256
	}

	return &credentialLimiters{
		requestsPerHour: requestsPerHour,
		lru:             expirable.NewLRU[string, *rate.Limiter](size, nil, rateLimitWindow),
	}
}

// get returns the limiter of the credential, created with a full budget the first time
func (l *credentialLimiters) get(credential model.Credential) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := credential.Fingerprint()
	if limiter, found := l.lru.Get(key); found {
		return limiter
	}

	limiter := rate.NewLimiter(rate.Every(rateLimitWindow/time.Duration(l.requestsPerHour)), l.requestsPerHour)
	l.lru.Add(key, limiter)

	return limiter
}

// reserve takes n requests from every limiter, or from none of them
// a request larger than the burst of a limiter could never be served and gets its own error
func reserve(n int, limiters ...*rate.Limiter) error {
	now := time.Now()
	reservations := make([]*rate.Reservation, 0, len(limiters))

	cancel := func() {
		for _, r := range reservations {
			r.CancelAt(now)
		}
	}

	for _, limiter := range limiters {
		if limiter.Limit() != rate.Inf && n > limiter.Burst() {
			cancel()
			return errors.WithDetails(model.ErrRateLimiter, "requests", n, "burst", limiter.Burst())
		}

		r := limiter.ReserveN(now, n)
		if !r.OK() || r.DelayFrom(now) > 0 {
			r.CancelAt(now)
			cancel()
			return model.ErrRateLimited
		}

		reservations = append(reservations, r)
	}

	return nil
}

// drainRateLimiter consumes every token left in the limiter
func drainRateLimiter(limiter *rate.Limiter) {
	if tokens := int(limiter.Tokens()); tokens > 0 {
		limiter.AllowN(time.Now(), tokens)
	}
}

// session is a github client authenticated with one credential, along with the local limiter of that credential
type session struct {
	client  *github.Client
	limiter *rate.Limiter
}

func (s githubService) sessionFor(credential model.Credential) session {
	return session{
		client:  s.githubClient.WithAuthToken(credential.AccessToken),
		limiter: s.limiters.get(credential),
	}
}

// allow takes n requests from the credential limiter and from the limiter shared by every credential
func (s githubService) allow(sess session, n int) error {
	return reserve(n, sess.limiter, s.githubRateLimiter)
}

// handleSessionErrors classifies err and, when github reports the token out of requests,
// empties the limiter of that token only
func (s githubService) handleSessionErrors(sess session, err error) error {
	var rateLimitErr *github.RateLimitError
	if errors.As(err, &rateLimitErr) {
		drainRateLimiter(sess.limiter)
	}

	return s.HandleRequestErrors(err)
}

// observe aligns the credential limiter with the remaining requests reported by github
func (sess session) observe(resp *github.Response) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}

	if excess := int(sess.limiter.Tokens()) - resp.Rate.Remaining; excess > 0 {
		sess.limiter.AllowN(time.Now(), excess)
	}
}
