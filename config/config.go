package config

import (
	"os"
	"path/filepath"
	"time"

	"emperror.dev/errors"
	"github.com/CIDgravity/snakelet"
	"github.com/joho/godotenv"
)

// config structure
type Config struct {
	API       APIConfig       `mapstructure:"API"`
	Tasks     TasksConfig     `mapstructure:"TASKS"`
	Logs      LogsConfig      `mapstructure:"LOGS"`
	Github    GithubConfig    `mapstructure:"GITHUB"`
	Retry     RetryConfig     `mapstructure:"RETRY"`
	Cache     CacheConfig     `mapstructure:"CACHE"`
	Languages LanguagesConfig `mapstructure:"LANGUAGES"`
	Chart     ChartConfig     `mapstructure:"CHART"`
}

type APIConfig struct {
	ListenPort string `mapstructure:"ListenPort"`
}

type TasksConfig struct {
	MaxParallelTasksAllowed int `mapstructure:"MaxParallelTasksAllowed"`
}

type LogsConfig struct {
	Level            string `mapstructure:"Level"` // error | warn | info | debug - case insensitive
	OutputLogsAsJSON bool   `mapstructure:"OutputLogsAsJson"`
}

type GithubConfig struct {
	// Token is the credential of the langstats CLI, API requests always carry their own
	Token                           string        `mapstructure:"Token"`
	// BaseURL is empty for github.com
	BaseURL                         string        `mapstructure:"BaseURL"`
	// RequestsPerHour is the budget of each credential
	// MaxRequestsPerHour caps the whole process, 0 for no limit
	RequestsPerHour                 int           `mapstructure:"RequestsPerHour"`
	MaxRequestsPerHour              int           `mapstructure:"MaxRequestsPerHour"`
	RequestTimeout                  time.Duration `mapstructure:"RequestTimeout"`
	PerPage                         int           `mapstructure:"PerPage"`
	Affiliation                     string        `mapstructure:"Affiliation"`
	SkipRepositoriesWithoutLanguage bool          `mapstructure:"SkipRepositoriesWithoutLanguage"`
}

type RetryConfig struct {
	MaxRetries   int           `mapstructure:"MaxRetries"`
	BaseDelay    time.Duration `mapstructure:"BaseDelay"`
	MaxDelay     time.Duration `mapstructure:"MaxDelay"`
	MaxRetryWait time.Duration `mapstructure:"MaxRetryWait"` // longest retry-after we accept to wait for
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"Enabled"`
	TTL     time.Duration `mapstructure:"TTL"`
	Size    int           `mapstructure:"Size"`
}

type LanguagesConfig struct {
	// FoldCase merges "Go" and "go" into one language, keeping the first spelling seen
	FoldCase bool `mapstructure:"FoldCase"`
}

type ChartConfig struct {
	StableColors  bool `mapstructure:"StableColors"`
	SaturationMin int  `mapstructure:"SaturationMin"` // percent
	SaturationMax int  `mapstructure:"SaturationMax"`
	LightnessMin  int  `mapstructure:"LightnessMin"`
	LightnessMax  int  `mapstructure:"LightnessMax"`
}

// Load reads config/config.toml, searched next to the binary first and then in the working directory
// a .env file is loaded beforehand and GITHUB_TOKEN overrides the configured token
func Load() (*Config, error) {
	_ = godotenv.Load()

	configFilePath, err := findConfigFile()
	if err != nil {
		return nil, err
	}

	// load default and config file content
	cfg := GetDefault()
	if _, err := snakelet.InitAndLoad(cfg, configFilePath); err != nil {
		return nil, errors.Wrap(err, "unable to load configuration file "+configFilePath)
	}

	cfg.applyEnvironment()
	return cfg, nil
}

func findConfigFile() (string, error) {
	dir, err := filepath.Abs(filepath.Dir(os.Args[0]))
	if err != nil {
		return "", err
	}

	configFilePath := filepath.Join(dir, "config", "config.toml")
	if _, err := os.Stat(configFilePath); errors.Is(err, os.ErrNotExist) {
		if _, err := os.Stat("config/config.toml"); err != nil {
			return "", err
		}

		configFilePath = "config/config.toml"
	}

	return configFilePath, nil
}

func (cfg *Config) applyEnvironment() {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.Github.Token = token
	}
}

// GetDefault
func GetDefault() *Config {
	return &Config{
		API: APIConfig{
			ListenPort: "5000",
		},
		Tasks: TasksConfig{
			MaxParallelTasksAllowed: 8,
		},
		Logs: LogsConfig{
			Level:            "debug",
			OutputLogsAsJSON: false,
		},
		Github: GithubConfig{
			RequestsPerHour:                 5000,
			MaxRequestsPerHour:              0,
			RequestTimeout:                  10 * time.Second,
			PerPage:                         100,
			Affiliation:                     "owner,collaborator,organization_member",
			SkipRepositoriesWithoutLanguage: true,
		},
		Retry: RetryConfig{
			MaxRetries:   3,
			BaseDelay:    500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			MaxRetryWait: time.Minute,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
			Size:    256,
		},
		Languages: LanguagesConfig{
			FoldCase: true,
		},
		Chart: ChartConfig{
			StableColors:  true,
			SaturationMin: 55,
			SaturationMax: 80,
			LightnessMin:  45,
			LightnessMax:  65,
		},
	}
}
