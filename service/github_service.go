package service

import (
	"context"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/Scalingo/sclng-language-stats/config"
	"github.com/Scalingo/sclng-language-stats/model"
	"github.com/Scalingo/sclng-language-stats/stats"
	"github.com/google/go-github/v66/github"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type GithubService interface {
	GetLanguageStatistics(ctx context.Context, credential model.Credential, options AggregateOptions) (model.LanguageStatistics, error)
	GetUserProfile(ctx context.Context, credential model.Credential) (model.UserProfile, error)

	ListRepositories(credential model.Credential) (*RepositoryIterator, error)
	FetchRepositoryLanguages(ctx context.Context, credential model.Credential, repository model.RepositoryIdentifier) (model.LanguageByteMap, error)

	HandleRequestErrors(err error) error
}

// ProgressReporter follows the per repository language fetches of one run
type ProgressReporter interface {
	Start(total int)
	Increment()
	Finish()
}

type noProgress struct{}

func (noProgress) Start(int)  {}
func (noProgress) Increment() {}
func (noProgress) Finish()    {}

// AggregateOptions tunes a single GetLanguageStatistics call
type AggregateOptions struct {
	Refresh  bool // ignore the cached statistics
	Progress ProgressReporter
}

func (o AggregateOptions) progress() ProgressReporter {
	if o.Progress == nil {
		return noProgress{}
	}

	return o.Progress
}

type githubService struct {
	githubClient      *github.Client
	githubRateLimiter *rate.Limiter
	limiters          *credentialLimiters
	config            config.Config
	palette           stats.Palette
	cache             *statisticsCache
}

// rateLimiter is shared by all credentials and only caps the requests sent by the whole process
// each credential also gets its own limiter sized with GITHUB.RequestsPerHour
func NewGithubService(config config.Config, githubClient *github.Client, rateLimiter *rate.Limiter) GithubService {
	return githubService{
		githubClient:      githubClient,
		githubRateLimiter: rateLimiter,
		limiters:          newCredentialLimiters(config.Github, config.Cache.Size),
		config:            config,
		palette: stats.NewPalette(config.Chart.StableColors, stats.ColorRange{
			SaturationMin: config.Chart.SaturationMin,
			SaturationMax: config.Chart.SaturationMax,
			LightnessMin:  config.Chart.LightnessMin,
			LightnessMax:  config.Chart.LightnessMax,
		}),
		cache: newStatisticsCache(config.Cache),
	}
}

// callWithTimeout bounds a single github call with the configured request timeout
func (s githubService) callWithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Github.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, s.config.Github.RequestTimeout)
}

// GetLanguageStatistics enumerates every repository of the identity, fetches their languages concurrently
// and converts the byte counts into percentages and chart slices
// only authentication errors abort the run, other per repository failures are reported in the result
func (s githubService) GetLanguageStatistics(ctx context.Context, credential model.Credential, options AggregateOptions) (model.LanguageStatistics, error) {
	if !credential.Valid() {
		return model.LanguageStatistics{}, model.ErrMissingCredential
	}

	cacheKey := s.cache.key(credential)
	if !options.Refresh {
		if cached, found := s.cache.get(cacheKey); found {
			log.WithField("user", cached.User).Debug("language statistics served from cache")
			return cached, nil
		}
	}

	sess := s.sessionFor(credential)

	// repositories are always listed for the owner of the token, a different user is refused
	login, err := s.resolveIdentity(ctx, sess)
	if err != nil {
		return model.LanguageStatistics{}, err
	}

	if credential.UserID != "" && !strings.EqualFold(credential.UserID, login) {
		log.WithFields(log.Fields{"user": credential.UserID, "login": login}).Warning("requested user does not own the credential")
		return model.LanguageStatistics{}, errors.WithDetails(model.ErrIdentityMismatch, "user", credential.UserID)
	}

	credential.UserID = login

	logger := log.WithField("user", credential.UserID)
	logger.Info("compute language statistics")

	iterator := s.newRepositoryIterator(sess, credential)
	repositories, err := iterator.Collect(ctx)
	if err != nil {
		logger.WithError(err).Error("unable to list repositories")
		return model.LanguageStatistics{}, err
	}

	// rate limit check: consume tokens/requests for each repo that we need to load languages from
	// if there is not enought requests, return an error to avoid loading for only a part of repositories
	reposWithLanguagesToLoad := 0
	for _, r := range repositories {
		if s.shouldFetchLanguages(r) {
			reposWithLanguagesToLoad += 1
		}
	}

	if err := s.allow(sess, reposWithLanguagesToLoad); err != nil {
		logger.WithError(err).WithField("repositoriesToLoad", reposWithLanguagesToLoad).Warning("not enought requests in rate limiter to load languages for all repositories")
		return model.LanguageStatistics{}, err
	}

	logger.WithFields(log.Fields{
		"numberOfRepositories":  len(repositories),
		"repositoriesToRequest": reposWithLanguagesToLoad,
	}).Debug("will load languages for all repositories")

	progress := options.progress()
	progress.Start(len(repositories))
	results, err := s.GetRepositoriesLanguages(ctx, sess, repositories, progress)
	progress.Finish()

	if err != nil {
		logger.WithError(err).Error("unable to get repositories languages")
		return model.LanguageStatistics{}, err
	}

	statistics := s.aggregate(credential.UserID, results)
	if len(statistics.FailedRepositories) == 0 {
		s.cache.add(cacheKey, statistics)
	}

	return statistics, nil
}

// aggregate folds the fetched languages in enumeration order, so the output order does not depend on completion order
func (s githubService) aggregate(user string, results []model.RepositoryLanguages) model.LanguageStatistics {
	totals := stats.NewTotals(s.config.Languages.FoldCase)
	failures := make([]model.RepositoryFailure, 0)

	for _, result := range results {
		if result.Err != nil {
			log.WithFields(log.Fields{
				"repository": result.Repository.String(),
				"reason":     result.Err.Error(),
			}).Warning("repository skipped from language statistics")

			failures = append(failures, model.RepositoryFailure{
				Repository: result.Repository.String(),
				Code:       model.ErrorCode(result.Err),
			})
			continue
		}

		totals.Add(result.Languages)
	}

	percentages := stats.Normalize(totals.Entries())

	return model.LanguageStatistics{
		User:               user,
		RepositoriesCount:  len(results),
		Totals:             totals.Entries(),
		Percentages:        percentages,
		Chart:              stats.Project(percentages, s.palette),
		FailedRepositories: failures,
		Partial:            len(failures) > 0,
		GeneratedAt:        time.Now().UTC(),
	}
}

// resolveIdentity returns the login owning the token
func (s githubService) resolveIdentity(ctx context.Context, sess session) (string, error) {
	user, err := s.fetchAuthenticatedUser(ctx, sess)
	if err != nil {
		return "", err
	}

	if user.Login == nil || *user.Login == "" {
		return "", errors.WithDetails(model.ErrInvalidData, "reason", "authenticated user without login")
	}

	return *user.Login, nil
}
