package nswire

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/statecraft/nswire/ratelimit"
)

// Duration accepts "30s"-style strings in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("nswire: bad duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// RateLimitConfig overrides the default token window.
type RateLimitConfig struct {
	Requests int      `yaml:"requests"`
	Window   Duration `yaml:"window"`
}

// Config is the YAML-file form of the client settings.
type Config struct {
	UserAgent string          `yaml:"user_agent"`
	BaseURL   string          `yaml:"base_url"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("nswire: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// NewFromConfig builds a Client from cfg; opts still apply on top.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	var base []Option
	if cfg.BaseURL != "" {
		base = append(base, WithBaseURL(cfg.BaseURL))
	}
	if cfg.RateLimit.Requests > 0 || cfg.RateLimit.Window > 0 {
		base = append(base, WithLimiter(ratelimit.New(cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.Window))))
	}
	return New(cfg.UserAgent, append(base, opts...)...)
}
