package service

import (
	"context"

	"github.com/Scalingo/sclng-language-stats/model"
	"github.com/google/go-github/v66/github"
	log "github.com/sirupsen/logrus"
)

// GetUserProfile returns the profile of the identity owning the credential
func (s githubService) GetUserProfile(ctx context.Context, credential model.Credential) (model.UserProfile, error) {
	if !credential.Valid() {
		return model.UserProfile{}, model.ErrMissingCredential
	}

	user, err := s.fetchAuthenticatedUser(ctx, s.sessionFor(credential))
	if err != nil {
		return model.UserProfile{}, err
	}

	if user.Login == nil {
		return model.UserProfile{}, model.ErrInvalidData
	}

	return model.UserProfile{
		Login:     user.GetLogin(),
		FullName:  user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	}, nil
}

func (s githubService) fetchAuthenticatedUser(ctx context.Context, sess session) (*github.User, error) {
	if err := s.allow(sess, 1); err != nil {
		log.Warning("the Github rate limit has been reached. wait until the limit reset")
		return nil, err
	}

	log.Debug("fetch authenticated user from github")

	return withRetry(ctx, s.config.Retry, log.Fields{"endpoint": "user"}, func(ctx context.Context) (*github.User, error) {
		callCtx, cancel := s.callWithTimeout(ctx)
		defer cancel()

		user, resp, err := sess.client.Users.Get(callCtx, "")
		sess.observe(resp)
		if err != nil {
			return nil, s.handleSessionErrors(sess, err)
		}

		return user, nil
	})
}
