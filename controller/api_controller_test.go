package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Scalingo/sclng-language-stats/config"
	"github.com/Scalingo/sclng-language-stats/model"
	"github.com/Scalingo/sclng-language-stats/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGithubService is a mock for the github service
type MockGithubService struct {
	mock.Mock
}

func (m *MockGithubService) GetLanguageStatistics(ctx context.Context, credential model.Credential, options service.AggregateOptions) (model.LanguageStatistics, error) {
	args := m.Called(ctx, credential, options)
	return args.Get(0).(model.LanguageStatistics), args.Error(1)
}

func (m *MockGithubService) GetUserProfile(ctx context.Context, credential model.Credential) (model.UserProfile, error) {
	args := m.Called(ctx, credential)
	return args.Get(0).(model.UserProfile), args.Error(1)
}

func (m *MockGithubService) ListRepositories(credential model.Credential) (*service.RepositoryIterator, error) {
	args := m.Called(credential)
	return args.Get(0).(*service.RepositoryIterator), args.Error(1)
}

func (m *MockGithubService) FetchRepositoryLanguages(ctx context.Context, credential model.Credential, repository model.RepositoryIdentifier) (model.LanguageByteMap, error) {
	args := m.Called(ctx, credential, repository)
	return args.Get(0).(model.LanguageByteMap), args.Error(1)
}

func (m *MockGithubService) HandleRequestErrors(err error) error {
	return m.Called(err).Error(0)
}

var sampleStatistics = model.LanguageStatistics{
	User:              "octocat",
	RepositoriesCount: 2,
	Totals:            []model.LanguageTotal{{Name: "Go", Bytes: 300}, {Name: "HTML", Bytes: 100}},
	Percentages:       []model.LanguagePercentage{{Name: "Go", Percentage: 75}, {Name: "HTML", Percentage: 25}},
	Chart:             []model.ChartSlice{{Name: "Go", Value: 75, Color: "#00add8"}, {Name: "HTML", Value: 25, Color: "#e34c26"}},
}

func newTestRouter(githubService service.GithubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRouter(router, NewAPIController(*config.GetDefault(), githubService))

	return router
}

func serve(router *gin.Engine, path string, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

// TestGetLanguageStatistics tests the languages routes
func TestGetLanguageStatistics(t *testing.T) {
	tests := []struct {
		name               string
		path               string
		token              string
		expectedCredential model.Credential
		expectedOptions    service.AggregateOptions
		serviceResult      model.LanguageStatistics
		serviceErr         error
		expectCall         bool
		expectedStatus     int
		expectedCode       string
	}{
		{
			name:               "Statistics for the token owner",
			path:               "/languages",
			token:              "gho_abc",
			expectedCredential: model.Credential{AccessToken: "gho_abc"},
			serviceResult:      sampleStatistics,
			expectCall:         true,
			expectedStatus:     http.StatusOK,
		},
		{
			name:               "Explicit user and refresh",
			path:               "/languages?user=octocat&refresh=true",
			token:              "gho_abc",
			expectedCredential: model.Credential{AccessToken: "gho_abc", UserID: "octocat"},
			expectedOptions:    service.AggregateOptions{Refresh: true},
			serviceResult:      sampleStatistics,
			expectCall:         true,
			expectedStatus:     http.StatusOK,
		},
		{
			name:           "Missing token",
			path:           "/languages",
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "MISSING_CREDENTIAL",
		},
		{
			name:               "Expired token",
			path:               "/languages",
			token:              "expired",
			expectedCredential: model.Credential{AccessToken: "expired"},
			serviceErr:         model.ErrAuthentication,
			expectCall:         true,
			expectedStatus:     http.StatusUnauthorized,
			expectedCode:       "AUTHENTICATION_ERROR",
		},
		{
			name:               "Rate limited",
			path:               "/languages/chart",
			token:              "gho_abc",
			expectedCredential: model.Credential{AccessToken: "gho_abc"},
			serviceErr:         model.ErrRateLimited,
			expectCall:         true,
			expectedStatus:     http.StatusTooManyRequests,
			expectedCode:       "RATE_LIMIT_REACHED",
		},
		{
			name:               "User not owning the token",
			path:               "/languages?user=bob",
			token:              "gho_alice",
			expectedCredential: model.Credential{AccessToken: "gho_alice", UserID: "bob"},
			serviceErr:         model.ErrIdentityMismatch,
			expectCall:         true,
			expectedStatus:     http.StatusForbidden,
			expectedCode:       "IDENTITY_MISMATCH",
		},
		{
			name:           "Invalid refresh flag",
			path:           "/languages?refresh=maybe",
			token:          "gho_abc",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_QUERY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			githubService := new(MockGithubService)
			if tt.expectCall {
				githubService.On("GetLanguageStatistics", mock.Anything, tt.expectedCredential, tt.expectedOptions).
					Return(tt.serviceResult, tt.serviceErr)
			}

			w := serve(newTestRouter(githubService), tt.path, tt.token)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			githubService.AssertExpectations(t)

			if tt.expectedCode != "" {
				var apiErr model.APIError
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
				assert.Equal(t, tt.expectedCode, apiErr.Code)
				return
			}

			var statistics model.LanguageStatistics
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &statistics))
			assert.Equal(t, tt.serviceResult.Percentages, statistics.Percentages)
			assert.Equal(t, tt.serviceResult.Chart, statistics.Chart)
		})
	}
}

func TestGetLanguageChart(t *testing.T) {
	githubService := new(MockGithubService)
	githubService.On("GetLanguageStatistics", mock.Anything, model.Credential{AccessToken: "gho_abc"}, service.AggregateOptions{}).
		Return(sampleStatistics, nil)

	w := serve(newTestRouter(githubService), "/languages/chart", "gho_abc")

	assert.Equal(t, http.StatusOK, w.Code)

	var chart []model.ChartSlice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chart))
	assert.Equal(t, sampleStatistics.Chart, chart)
}

func TestGetUserProfile(t *testing.T) {
	githubService := new(MockGithubService)
	githubService.On("GetUserProfile", mock.Anything, model.Credential{AccessToken: "gho_abc"}).
		Return(model.UserProfile{Login: "octocat"}, nil)

	router := newTestRouter(githubService)

	w := serve(router, "/user", "gho_abc")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"login":"octocat"}`, w.Body.String())

	w = serve(router, "/user", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	githubService.AssertExpectations(t)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{name: "Bearer token", header: "Bearer abc", expected: "abc"},
		{name: "Case insensitive scheme", header: "bearer   abc ", expected: "abc"},
		{name: "Other scheme", header: "Basic abc", expected: ""},
		{name: "No scheme", header: "abc", expected: ""},
		{name: "Empty", header: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.Header.Set("Authorization", tt.header)

			assert.Equal(t, tt.expected, bearerToken(c))
		})
	}
}

func TestRequestLoggerKeepsValidRequestID(t *testing.T) {
	router := newTestRouter(new(MockGithubService))

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set("X-Request-ID", "6f1f6a2e-3c1a-4f55-9c43-0a4a7c1d2b3e")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "6f1f6a2e-3c1a-4f55-9c43-0a4a7c1d2b3e", w.Header().Get("X-Request-ID"))
}
