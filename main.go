package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Scalingo/sclng-language-stats/config"
	"github.com/Scalingo/sclng-language-stats/controller"
	"github.com/Scalingo/sclng-language-stats/logger"
	"github.com/Scalingo/sclng-language-stats/service"
	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v66/github"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Warning("unable to load configuration, using default values")
		cfg = config.GetDefault()
	}

	// configure logger
	logger.Setup(*cfg)

	// setup github client
	// we do here and pass the client to Github service to easily improve tests with mock client
	// each request then uses a copy of this client authenticated with the token of the caller
	githubClient, err := newGithubClient(*cfg)
	if err != nil {
		log.WithError(err).Fatal("unable to configure github client")
	}

	rateLimiter := newRateLimiter(*cfg)

	// setup handlers and services
	githubService := service.NewGithubService(*cfg, githubClient, rateLimiter)
	apiController := controller.NewAPIController(*cfg, githubService)

	// setup server and define all routes
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	controller.SetupRouter(router, apiController)

	server := &http.Server{
		Addr:              ":" + cfg.API.ListenPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// start with configuration
	go func() {
		log.Info("server listening on port " + cfg.API.ListenPort)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("error while starting server")
		}
	}()

	// wait for interrupt signal to gracefully shut down the server with a timeout of 15 seconds.
	// kill default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("SIGINT, SIGTERM received, will shut down server ...")

	// create context with 15 seconds timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	} else {
		log.Info("Application stopped gracefully !")
	}
}

func newGithubClient(cfg config.Config) (*github.Client, error) {
	githubClient := github.NewClient(nil)

	if cfg.Github.BaseURL != "" {
		log.WithField("baseURL", cfg.Github.BaseURL).Debug("will setup github enterprise client")
		return githubClient.WithEnterpriseURLs(cfg.Github.BaseURL, cfg.Github.BaseURL)
	}

	return githubClient, nil
}

// newRateLimiter sets up the limiter shared by every credential
// github enforces its limits per token, this one only caps the requests of the whole process
func newRateLimiter(cfg config.Config) *rate.Limiter {
	requestsPerHour := cfg.Github.MaxRequestsPerHour
	if requestsPerHour <= 0 {
		log.Debug("no global github requests limit configured")
		return rate.NewLimiter(rate.Inf, 0)
	}

	log.WithFields(log.Fields{
		"requestsPerHour":              requestsPerHour,
		"requestsPerHourPerCredential": cfg.Github.RequestsPerHour,
	}).Debug("will setup global rate limiter")

	return rate.NewLimiter(rate.Every(time.Hour/time.Duration(requestsPerHour)), requestsPerHour)
}
