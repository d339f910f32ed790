package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration. Zero values are filled from
// the default tags before validation, so a minimal YAML file is enough.
type Config struct {
	Environment string `yaml:"environment" default:"development"`

	Logging struct {
		Enabled     *bool  `yaml:"enabled" default:"true"`
		Level       string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format      string `yaml:"format" default:"console" validate:"oneof=json console"`
		InfoOutput  string `yaml:"info_output" default:"stdout"`
		ErrorOutput string `yaml:"error_output" default:"stderr"`
	} `yaml:"logging"`

	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`

	Metrics struct {
		Enabled *bool  `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`

	Database struct {
		Path string `yaml:"path" default:"stocks.db" validate:"required"`
	} `yaml:"database"`

	Yahoo struct {
		LookbackDays     int           `yaml:"lookback_days" default:"30" validate:"gte=5"`
		Timeout          time.Duration `yaml:"timeout" default:"10s"`
		RateCapacity     float64       `yaml:"rate_capacity" default:"5" validate:"gt=0"`
		RateRefillPerSec float64       `yaml:"rate_refill_per_sec" default:"2" validate:"gt=0"`
	} `yaml:"yahoo"`

	Analysis struct {
		BatchSize         int           `yaml:"batch_size" default:"50" validate:"gte=1"`
		MinObservations   int           `yaml:"min_observations" default:"20" validate:"gte=3"`
		SignificanceLevel float64       `yaml:"significance_level" default:"0.05" validate:"gt=0,lt=1"`
		BatchPause        time.Duration `yaml:"batch_pause" default:"100ms"`
		ExcludedSymbols   []string      `yaml:"excluded_symbols"`
		ExcludedSuffixes  []string      `yaml:"excluded_suffixes"`
	} `yaml:"analysis"`

	Screen struct {
		ZThreshold float64 `yaml:"z_threshold" default:"-2"`
	} `yaml:"screen"`

	Cache struct {
		Enabled *bool         `yaml:"enabled" default:"true"`
		TTL     time.Duration `yaml:"ttl" default:"1h"`
		MaxSize int           `yaml:"max_size" default:"4096" validate:"gte=1"`
		Redis   struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"zscout"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Events struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"zscout.outcomes"`
		Compression  string        `yaml:"compression" default:"gzip"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"events"`
}

// LoggingEnabled reports whether the two log sinks are active.
func (c *Config) LoggingEnabled() bool {
	return c.Logging.Enabled == nil || *c.Logging.Enabled
}

// MetricsEnabled reports whether the Prometheus endpoint is exposed.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics.Enabled == nil || *c.Metrics.Enabled
}

// CacheEnabled reports whether price-series caching is active.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}

// Load reads and parses a YAML configuration file, applies defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.finalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns a configuration with every option at its default value,
// used when no config file is given.
func Default() (*Config, error) {
	var c Config
	if err := c.finalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment
// variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("EVENT_BROKERS"); v != "" {
		c.Events.Brokers = strings.Split(v, ",")
		c.Events.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		if ok {
			if p, err := strconv.Atoi(port); err == nil {
				c.Cache.Redis.Host = host
				c.Cache.Redis.Port = p
				c.Cache.Redis.Enabled = true
			}
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) finalize() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Events.Enabled && len(c.Events.Brokers) == 0 {
		return fmt.Errorf("events.brokers is required when events are enabled")
	}
	return nil
}

// ExcludedSet returns the exclusion list as an uppercase lookup set.
func (c *Config) ExcludedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Analysis.ExcludedSymbols))
	for _, s := range c.Analysis.ExcludedSymbols {
		set[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}
	return set
}
