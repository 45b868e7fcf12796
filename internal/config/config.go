package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultStartURL is the first listing page crawled when none is configured.
const DefaultStartURL = "https://www.1111.com.tw/search/job?ts=1&d0=&c0=&ps=100&page="

// Config holds the full application configuration.
type Config struct {
	Store StoreConfig `yaml:"store" mapstructure:"store"`
	Crawl CrawlConfig `yaml:"crawl" mapstructure:"crawl"`
	Load  LoadConfig  `yaml:"load" mapstructure:"load"`
	Log   LogConfig   `yaml:"log" mapstructure:"log"`

	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// CrawlConfig configures fetching and pagination.
type CrawlConfig struct {
	StartURL       string  `yaml:"start_url" mapstructure:"start_url"`
	TargetCount    int     `yaml:"target_count" mapstructure:"target_count"`
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
	Transport      string  `yaml:"transport" mapstructure:"transport"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RetryDelaySecs int     `yaml:"retry_delay_secs" mapstructure:"retry_delay_secs"`
	RateLimit      float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	PageSize       int     `yaml:"page_size" mapstructure:"page_size"` // 0 keeps the profile value
	ProfilePath    string  `yaml:"profile_path" mapstructure:"profile_path"`
}

// LoadConfig configures the jobbank loader.
type LoadConfig struct {
	Table       string `yaml:"table" mapstructure:"table"`
	BatchSize   int    `yaml:"batch_size" mapstructure:"batch_size"`
	ReplaceDate bool   `yaml:"replace_date" mapstructure:"replace_date"`
}

// MonitoringConfig configures run health checks and alerting.
type MonitoringConfig struct {
	LookbackHours        int     `yaml:"lookback_hours" mapstructure:"lookback_hours"`
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	StaleHours           int     `yaml:"stale_hours" mapstructure:"stale_hours"`
	WebhookURL           string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	CheckIntervalSecs    int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config.yaml, and JOBBANK_* environment variables.
func Load() (*Config, error) {
	// .env is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: read .env")
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("JOBBANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("crawl.start_url", DefaultStartURL)
	v.SetDefault("crawl.target_count", 0)
	v.SetDefault("crawl.user_agent", "")
	v.SetDefault("crawl.transport", "http")
	v.SetDefault("crawl.timeout_secs", 30)
	v.SetDefault("crawl.retry_delay_secs", 60)
	v.SetDefault("crawl.rate_limit", 1.0)
	v.SetDefault("crawl.page_size", 0)
	v.SetDefault("crawl.profile_path", "")
	v.SetDefault("load.table", "jobbank")
	v.SetDefault("load.batch_size", 5000)
	v.SetDefault("load.replace_date", false)
	v.SetDefault("monitoring.lookback_hours", 168)
	v.SetDefault("monitoring.failure_rate_threshold", 0.5)
	v.SetDefault("monitoring.stale_hours", 48)
	v.SetDefault("monitoring.webhook_url", "")
	v.SetDefault("monitoring.check_interval_secs", 3600)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. Commands are "run",
// "dry-run", "migrate", "status", and "health".
func (c *Config) Validate(command string) error {
	var problems []string

	switch c.Store.Driver {
	case "postgres", "sqlite":
	default:
		problems = append(problems, "store.driver must be postgres or sqlite")
	}

	switch command {
	case "run", "dry-run":
		if command == "run" && c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
		if c.Crawl.StartURL == "" {
			problems = append(problems, "crawl.start_url is required")
		}
		if c.Crawl.Transport != "http" && c.Crawl.Transport != "colly" {
			problems = append(problems, "crawl.transport must be http or colly")
		}
		if c.Crawl.RetryDelaySecs < 0 {
			problems = append(problems, "crawl.retry_delay_secs must not be negative")
		}
	case "migrate", "status", "health":
		if c.Store.Driver != "postgres" {
			problems = append(problems, command+" requires store.driver postgres")
		}
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	}

	if command == "health" && c.Monitoring.LookbackHours <= 0 {
		problems = append(problems, "monitoring.lookback_hours must be positive")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
