// Package config loads tabwitr settings from defaults, an optional YAML file
// and TABWITR_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pranshuparmar/tabwitr/internal/devtools"
)

const envPrefix = "TABWITR"

// Config holds every tunable of the tool.
type Config struct {
	Family string `mapstructure:"family"`
	Host   string `mapstructure:"host"`

	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	ReadBudget     time.Duration `mapstructure:"read_budget"`

	SessionIOTimeout time.Duration `mapstructure:"session_io_timeout"`
	SessionBudget    time.Duration `mapstructure:"session_budget"`

	Concurrency     int           `mapstructure:"concurrency"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

var defaults = map[string]any{
	"family":             "msedge",
	"host":               "127.0.0.1",
	"connect_timeout":    200 * time.Millisecond,
	"read_timeout":       500 * time.Millisecond,
	"write_timeout":      200 * time.Millisecond,
	"read_budget":        time.Second,
	"session_io_timeout": 500 * time.Millisecond,
	"session_budget":     3 * time.Second,
	"concurrency":        4,
	"refresh_interval":   10 * time.Second,
}

// DefaultPath returns $HOME/.config/tabwitr/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tabwitr", "config.yaml")
}

// Load reads the configuration. An explicit path must exist; the default
// path is used only when present.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		if def := DefaultPath(); def != "" {
			if _, err := os.Stat(def); err == nil {
				path = def
			}
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the rest of the tool cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Family) == "" {
		errs = append(errs, errors.New("family must not be empty"))
	}
	if strings.TrimSpace(c.Host) == "" {
		errs = append(errs, errors.New("host must not be empty"))
	}
	durations := []struct {
		name  string
		value time.Duration
	}{
		{"connect_timeout", c.ConnectTimeout},
		{"read_timeout", c.ReadTimeout},
		{"write_timeout", c.WriteTimeout},
		{"read_budget", c.ReadBudget},
		{"session_io_timeout", c.SessionIOTimeout},
		{"session_budget", c.SessionBudget},
		{"refresh_interval", c.RefreshInterval},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", d.name, d.value))
		}
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Devtools returns the endpoint client options.
func (c *Config) Devtools() devtools.Options {
	return devtools.Options{
		Host:             c.Host,
		ConnectTimeout:   c.ConnectTimeout,
		ReadTimeout:      c.ReadTimeout,
		WriteTimeout:     c.WriteTimeout,
		ReadBudget:       c.ReadBudget,
		SessionIOTimeout: c.SessionIOTimeout,
		SessionBudget:    c.SessionBudget,
	}
}
