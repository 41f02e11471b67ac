package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/blacktop/postdeck/internal/postdeck"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	envBaseURL        = "POSTDECK_BASE_URL"
	envCookie         = "POSTDECK_COOKIE"
	envStrategy       = "POSTDECK_STRATEGY"
	envLogLevel       = "POSTDECK_LOG_LEVEL"
	envMastodonServer = "POSTDECK_MASTODON_SERVER"
	envBlueskyPDSURL  = "POSTDECK_BLUESKY_PDS_URL"

	StrategyImmediate = "immediate"
	StrategyConfirm   = "confirm"
)

type Config struct {
	BaseURL     string         `yaml:"base_url"`
	Cookie      string         `yaml:"cookie"`
	TokenCookie string         `yaml:"token_cookie"`
	TokenHeader string         `yaml:"token_header"`
	Timeout     time.Duration  `yaml:"timeout"`
	Platforms   []string       `yaml:"platforms"`
	Strategy    string         `yaml:"strategy"`
	Poll        PollConfig     `yaml:"poll"`
	Mastodon    MastodonConfig `yaml:"mastodon"`
	Bluesky     BlueskyConfig  `yaml:"bluesky"`
	LogLevel    string         `yaml:"log_level"`
}

type PollConfig struct {
	Attempts int           `yaml:"attempts"`
	Delay    time.Duration `yaml:"delay"`
}

// MastodonConfig points credential verification at an instance.
type MastodonConfig struct {
	Server string `yaml:"server"`
}

type BlueskyConfig struct {
	PDSURL string `yaml:"pds_url"`
}

// Load reads .env, then the optional YAML file at path, then POSTDECK_* overrides.
// A missing .env is fine; a malformed one is an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{Poll: PollConfig{Attempts: -1}}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		envBaseURL:        &c.BaseURL,
		envCookie:         &c.Cookie,
		envStrategy:       &c.Strategy,
		envLogLevel:       &c.LogLevel,
		envMastodonServer: &c.Mastodon.Server,
		envBlueskyPDSURL:  &c.Bluesky.PDSURL,
	}
	for name, field := range overrides {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*field = v
		}
	}
}

func (c *Config) setDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8000"
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.TokenCookie == "" {
		c.TokenCookie = "csrftoken"
	}
	if c.TokenHeader == "" {
		c.TokenHeader = "X-CSRFToken"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if len(c.Platforms) == 0 {
		c.Platforms = []string{string(postdeck.Mastodon)}
	}
	if c.Strategy == "" {
		c.Strategy = StrategyImmediate
	}
	// an explicit 0 in the file is kept; only an absent value gets the default
	if c.Poll.Attempts == -1 {
		c.Poll.Attempts = 5
	}
	if c.Poll.Delay == 0 {
		c.Poll.Delay = 5 * time.Second
	}
	if c.Bluesky.PDSURL == "" {
		c.Bluesky.PDSURL = "https://bsky.social"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate rejects settings the workflows cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Strategy {
	case StrategyImmediate, StrategyConfirm:
	default:
		errs = append(errs, fmt.Errorf("unknown strategy %q", c.Strategy))
	}
	if _, err := c.PublishPlatforms(); err != nil {
		errs = append(errs, err)
	}
	if c.Poll.Attempts < 0 {
		errs = append(errs, fmt.Errorf("poll.attempts must not be negative (got %d)", c.Poll.Attempts))
	}
	if c.Poll.Delay < 0 {
		errs = append(errs, fmt.Errorf("poll.delay must not be negative (got %s)", c.Poll.Delay))
	}
	return errors.Join(errs...)
}

// PublishPlatforms returns the platforms that get a publish control on every card.
func (c *Config) PublishPlatforms() ([]postdeck.Platform, error) {
	out := make([]postdeck.Platform, 0, len(c.Platforms))
	seen := map[postdeck.Platform]struct{}{}
	for _, raw := range c.Platforms {
		p, err := postdeck.ParsePlatform(raw)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}
