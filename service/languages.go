package service

import (
	"context"

	"emperror.dev/errors"
	"github.com/Scalingo/sclng-language-stats/model"
	"github.com/remeh/sizedwaitgroup"
	log "github.com/sirupsen/logrus"
)

// shouldFetchLanguages checks if the main language (most used) is available for the repo
// if not, ListLanguages would return an empty map and we save a request
func (s githubService) shouldFetchLanguages(r model.RepositoryIdentifier) bool {
	return !s.config.Github.SkipRepositoriesWithoutLanguage || r.MostUsedLanguage != nil
}

// FetchRepositoryLanguages returns the languages of a single repository
// note: the local rate limiter is not checked here, GetLanguageStatistics reserves the requests for the whole run
func (s githubService) FetchRepositoryLanguages(ctx context.Context, credential model.Credential, repository model.RepositoryIdentifier) (model.LanguageByteMap, error) {
	if !credential.Valid() {
		return nil, model.ErrMissingCredential
	}

	return s.FetchLanguagesForSingleRepository(ctx, s.sessionFor(credential), repository)
}

// FetchLanguagesForSingleRepository get the languages for a specific repository, retrying transient failures
func (s githubService) FetchLanguagesForSingleRepository(ctx context.Context, sess session, r model.RepositoryIdentifier) (model.LanguageByteMap, error) {
	fields := log.Fields{
		"repository":       r.String(),
		"mostUsedLanguage": r.MostUsedLanguage,
	}

	log.WithFields(fields).Debug("fetch languages for repository")

	return withRetry(ctx, s.config.Retry, fields, func(ctx context.Context) (model.LanguageByteMap, error) {
		callCtx, cancel := s.callWithTimeout(ctx)
		defer cancel()

		res, resp, err := sess.client.Repositories.ListLanguages(callCtx, r.Owner, r.Name)
		sess.observe(resp)
		if err != nil {
			return nil, s.handleSessionErrors(sess, err)
		}

		if res == nil {
			return model.LanguageByteMap{}, nil
		}

		return model.LanguageByteMap(res), nil
	})
}

// GetRepositoriesLanguages will fetch the languages used for each repository in parameters
// this function use a sized wait group to bound the number of requests running at the same time
// results are returned in the order of repos, once every fetch is finished
func (s githubService) GetRepositoriesLanguages(ctx context.Context, sess session, repos []model.RepositoryIdentifier, progress ProgressReporter) ([]model.RepositoryLanguages, error) {
	if progress == nil {
		progress = noProgress{}
	}

	// an authentication failure cancels the fetches still running
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	swg := sizedwaitgroup.New(max(1, s.config.Tasks.MaxParallelTasksAllowed))

	// create a channel to collect response for all repositories
	// we will assign together when all tasks are finished
	results := make(chan model.RepositoryLanguages, len(repos))

	for i, r := range repos {
		if !s.shouldFetchLanguages(r) {
			log.WithField("repository", r.String()).Debug("repository without most used language. skipped from loading languages list")

			results <- model.RepositoryLanguages{Index: i, Repository: r, Languages: model.LanguageByteMap{}}
			progress.Increment()
			continue
		}

		if err := swg.AddWithContext(runCtx); err != nil {
			break
		}

		go s.fetchLanguagesTask(runCtx, cancel, sess, i, r, &swg, results, progress)
	}

	// wait for all tasks to be finished
	log.Debug("waiting for all threads for loading repositories to be finished")
	swg.Wait()
	log.Debug("all threads for loading repositories languages finished")

	close(results)

	// the caller went away: partial results are discarded
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	collected := make([]model.RepositoryLanguages, len(repos))
	for result := range results {
		if errors.Is(result.Err, model.ErrAuthentication) {
			return nil, result.Err
		}

		collected[result.Index] = result
	}

	return collected, nil
}

func (s githubService) fetchLanguagesTask(ctx context.Context, cancel context.CancelFunc, sess session, index int, r model.RepositoryIdentifier, swg *sizedwaitgroup.SizedWaitGroup, ch chan<- model.RepositoryLanguages, progress ProgressReporter) {
	defer swg.Done()

	languages, err := s.FetchLanguagesForSingleRepository(ctx, sess, r)
	if errors.Is(err, model.ErrAuthentication) {
		cancel()
	}

	ch <- model.RepositoryLanguages{Index: index, Repository: r, Languages: languages, Err: err}
	progress.Increment()
}
