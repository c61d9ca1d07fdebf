package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

// EnvPrefix namespaces every variable, e.g. QUOTELINES_LOG_LEVEL.
const EnvPrefix = "QUOTELINES"

type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// ResyncDelay coalesces rapid edits before discount rows are rebuilt.
	ResyncDelay    time.Duration `envconfig:"RESYNC_DELAY" default:"100ms"`
	SearchDebounce time.Duration `envconfig:"SEARCH_DEBOUNCE" default:"300ms"`
	SearchLimit    int           `envconfig:"SEARCH_LIMIT" default:"20"`
	BaseUnit       string        `envconfig:"BASE_UNIT" default:"SqM"`
}

// Load reads an optional .env file and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return nil, fmt.Errorf("loading env files: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs error
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		errs = multierr.Append(errs, fmt.Errorf("config: unsupported log format %q", c.LogFormat))
	}
	if c.ResyncDelay < 0 || c.SearchDebounce < 0 {
		errs = multierr.Append(errs, fmt.Errorf("config: delays must not be negative"))
	}
	if c.SearchLimit <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("config: search limit must be positive, got %d", c.SearchLimit))
	}
	if strings.TrimSpace(c.BaseUnit) == "" {
		errs = multierr.Append(errs, fmt.Errorf("config: base unit must not be blank"))
	}
	return errs
}
