package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix     = "PROJDASH_"
	EnvConfigPath = "PROJDASH_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PROJDASH_CONFIG is set
//  3. env (prefix PROJDASH_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// PROJDASH_RENDER_TIMEOUT_MS -> render_timeout_ms (flat keys, underscores kept)
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field combinations that defaults cannot guarantee.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ProjectID == "":
		return fmt.Errorf("%w: project_id must not be empty", ErrInvalidConfig)
	case c.RenderTimeoutMS <= 0:
		return fmt.Errorf("%w: render_timeout_ms must be positive", ErrInvalidConfig)
	case c.FixtureLatencyMinMS < 0 || c.FixtureLatencyMaxMS < c.FixtureLatencyMinMS:
		return fmt.Errorf("%w: fixture latency range must satisfy 0 <= min <= max", ErrInvalidConfig)
	}

	switch c.Source {
	case SourceFixture:
	case SourceUpstream:
		u, err := url.Parse(c.UpstreamURL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("%w: upstream_url must be an absolute URL when source is upstream", ErrInvalidConfig)
		}
		if c.UpstreamTimeoutMS <= 0 {
			return fmt.Errorf("%w: upstream_timeout_ms must be positive", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidConfig, c.Source)
	}
	return nil
}
