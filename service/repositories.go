package service

import (
	"context"

	"github.com/Scalingo/sclng-language-stats/model"
	"github.com/google/go-github/v66/github"
	log "github.com/sirupsen/logrus"
)

// RepositoryIterator lazily walks the repositories of the authenticated identity, page after page
// it is finite and cannot be restarted: once exhausted or failed, Next keeps returning false
type RepositoryIterator struct {
	service  githubService
	session  session
	owner    string
	options  github.RepositoryListByAuthenticatedUserOptions
	buffer   []model.RepositoryIdentifier
	nextPage int
	pages    int
	done     bool
}

// ListRepositories returns an iterator over every repository accessible with the credential
func (s githubService) ListRepositories(credential model.Credential) (*RepositoryIterator, error) {
	if !credential.Valid() {
		return nil, model.ErrMissingCredential
	}

	return s.newRepositoryIterator(s.sessionFor(credential), credential), nil
}

func (s githubService) newRepositoryIterator(sess session, credential model.Credential) *RepositoryIterator {
	perPage := s.config.Github.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = 100
	}

	return &RepositoryIterator{
		service: s,
		session: sess,
		owner:   credential.UserID,
		options: github.RepositoryListByAuthenticatedUserOptions{
			Affiliation: s.config.Github.Affiliation,
			ListOptions: github.ListOptions{
				Page:    1,
				PerPage: perPage,
			},
		},
		nextPage: 1,
	}
}

// Next returns the next repository, false once the listing is exhausted
func (it *RepositoryIterator) Next(ctx context.Context) (model.RepositoryIdentifier, bool, error) {
	for len(it.buffer) == 0 {
		if it.done {
			return model.RepositoryIdentifier{}, false, nil
		}

		if err := it.fetchPage(ctx); err != nil {
			it.done = true
			it.buffer = nil
			return model.RepositoryIdentifier{}, false, err
		}
	}

	repository := it.buffer[0]
	it.buffer = it.buffer[1:]
	return repository, true, nil
}

// Collect drains the iterator
func (it *RepositoryIterator) Collect(ctx context.Context) ([]model.RepositoryIdentifier, error) {
	repositories := make([]model.RepositoryIdentifier, 0)

	for {
		repository, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}

		if !ok {
			return repositories, nil
		}

		repositories = append(repositories, repository)
	}
}

// Pages is the number of pages fetched so far
func (it *RepositoryIterator) Pages() int {
	return it.pages
}

func (it *RepositoryIterator) fetchPage(ctx context.Context) error {
	if err := it.service.allow(it.session, 1); err != nil {
		log.Warning("the Github rate limit has been reached. wait until the limit reset")
		return err
	}

	options := it.options
	options.Page = it.nextPage

	fields := log.Fields{"page": options.Page}
	log.WithFields(fields).Debug("fetch page of repositories from github")

	var response *github.Response
	repos, err := withRetry(ctx, it.service.config.Retry, fields, func(ctx context.Context) ([]*github.Repository, error) {
		callCtx, cancel := it.service.callWithTimeout(ctx)
		defer cancel()

		repos, resp, err := it.session.client.Repositories.ListByAuthenticatedUser(callCtx, &options)
		it.session.observe(resp)
		if err != nil {
			return nil, it.service.handleSessionErrors(it.session, err)
		}

		response = resp
		return repos, nil
	})

	if err != nil {
		return err
	}

	page := make([]model.RepositoryIdentifier, 0, len(repos))
	for _, r := range repos {
		if r == nil || r.Name == nil || *r.Name == "" {
			log.WithFields(fields).Debug("repository found with invalid information")
			return model.ErrInvalidData
		}

		owner := it.owner
		if r.Owner != nil && r.Owner.Login != nil {
			owner = *r.Owner.Login
		}

		if owner == "" {
			log.WithField("repository", *r.Name).Debug("repository found without owner")
			return model.ErrInvalidData
		}

		page = append(page, model.RepositoryIdentifier{
			Owner:            owner,
			Name:             *r.Name,
			MostUsedLanguage: r.Language,
		})
	}

	it.pages++
	it.buffer = page

	if response == nil || response.NextPage == 0 {
		it.done = true
	} else {
		it.nextPage = response.NextPage
	}

	return nil
}
