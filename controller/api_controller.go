package controller

import (
	"net/http"
	"strings"

	"github.com/Scalingo/sclng-language-stats/config"
	"github.com/Scalingo/sclng-language-stats/model"
	"github.com/Scalingo/sclng-language-stats/service"
	"github.com/gin-gonic/gin"
)

type APIController interface {
	GetLanguageStatistics(ctx *gin.Context)
	GetLanguageChart(ctx *gin.Context)
	GetUserProfile(ctx *gin.Context)
}

type apiController struct {
	githubService service.GithubService
	config        config.Config
}

func NewAPIController(config config.Config, service service.GithubService) APIController {
	return apiController{
		githubService: service,
		config:        config,
	}
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header
func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}

func (s apiController) abortWithError(c *gin.Context, err error) {
	requestLogger(c).WithError(err).Warning("request failed")
	c.AbortWithStatusJSON(model.HTTPStatus(err), model.NewAPIError(err))
}

func (s apiController) statistics(c *gin.Context) (model.LanguageStatistics, bool) {
	var query model.LanguagesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, model.APIError{Code: "INVALID_QUERY", Message: err.Error()})
		return model.LanguageStatistics{}, false
	}

	credential := query.ToCredential(bearerToken(c))
	if !credential.Valid() {
		s.abortWithError(c, model.ErrMissingCredential)
		return model.LanguageStatistics{}, false
	}

	// the request context is canceled when the client goes away, aborting the fetches in flight
	statistics, err := s.githubService.GetLanguageStatistics(c.Request.Context(), credential, service.AggregateOptions{
		Refresh: query.Refresh,
	})

	if err != nil {
		s.abortWithError(c, err)
		return model.LanguageStatistics{}, false
	}

	return statistics, true
}

func (s apiController) GetLanguageStatistics(c *gin.Context) {
	statistics, ok := s.statistics(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, statistics)
}

func (s apiController) GetLanguageChart(c *gin.Context) {
	statistics, ok := s.statistics(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, statistics.Chart)
}

func (s apiController) GetUserProfile(c *gin.Context) {
	credential := model.Credential{AccessToken: bearerToken(c)}
	if !credential.Valid() {
		s.abortWithError(c, model.ErrMissingCredential)
		return
	}

	profile, err := s.githubService.GetUserProfile(c.Request.Context(), credential)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
