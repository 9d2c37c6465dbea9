package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"emperror.dev/errors"
	"github.com/Scalingo/sclng-language-stats/config"
	"github.com/Scalingo/sclng-language-stats/logger"
	"github.com/Scalingo/sclng-language-stats/model"
	"github.com/Scalingo/sclng-language-stats/service"
	"github.com/cheggaaa/pb/v3"
	"github.com/google/go-github/v66/github"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type options struct {
	user       string
	format     string
	noProgress bool
	logLevel   string
}

func parseOptions(args []string, output io.Writer) (options, error) {
	var opts options

	flags := flag.NewFlagSet("langstats", flag.ContinueOnError)
	flags.SetOutput(output)
	flags.StringVar(&opts.user, "user", "", "expected owner of the token, the run fails if it does not match")
	flags.StringVar(&opts.format, "format", "table", "output format: table, json or yaml")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "hide the progress bar")
	flags.StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	if err := flags.Parse(args); err != nil {
		return options{}, err
	}

	opts.format = strings.ToLower(opts.format)
	switch opts.format {
	case "table", "json", "yaml", "yml":
	default:
		return options{}, errors.Errorf("unknown output format %q", opts.format)
	}

	return opts, nil
}

func main() {
	_ = godotenv.Load()

	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		cfg = config.GetDefault()
		cfg.Logs.Level = "warn"
		cfg.Github.Token = os.Getenv("GITHUB_TOKEN")
	}

	if opts.logLevel != "" {
		cfg.Logs.Level = opts.logLevel
	}

	// each run computes fresh statistics, there is nothing to reuse
	cfg.Cache.Enabled = false
	logger.SetupWithOutput(*cfg, os.Stderr)

	if cfg.Github.Token == "" {
		log.Fatal("missing GITHUB_TOKEN environment variable")
	}

	githubClient := github.NewClient(nil)
	if cfg.Github.BaseURL != "" {
		if githubClient, err = githubClient.WithEnterpriseURLs(cfg.Github.BaseURL, cfg.Github.BaseURL); err != nil {
			log.WithError(err).Fatal("unable to configure github client")
		}
	}

	// a single credential: its own limiter is enough
	githubService := service.NewGithubService(*cfg, githubClient, rate.NewLimiter(rate.Inf, 0))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	aggregateOptions := service.AggregateOptions{}
	if !opts.noProgress {
		aggregateOptions.Progress = &progressBar{}
	}

	statistics, err := githubService.GetLanguageStatistics(ctx, model.Credential{AccessToken: cfg.Github.Token, UserID: opts.user}, aggregateOptions)
	if err != nil {
		log.WithError(err).Fatal(model.NewAPIError(err).Message)
	}

	if err := writeReport(os.Stdout, opts.format, statistics); err != nil {
		log.WithError(err).Fatal("unable to write report")
	}
}

// progressBar shows the language fetches on stderr
type progressBar struct {
	bar *pb.ProgressBar
}

func (p *progressBar) Start(total int) {
	p.bar = pb.Full.New(total).SetWriter(os.Stderr).Start()
}

func (p *progressBar) Increment() {
	p.bar.Increment()
}

func (p *progressBar) Finish() {
	p.bar.Finish()
}
