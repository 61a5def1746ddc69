// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - Validation failures wrap ErrInvalidConfig; provider failures wrap ErrLoadConfig.
package config

// Collaborator sources.
const (
	SourceFixture  = "fixture"
	SourceUpstream = "upstream"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Source selects where page data comes from: "fixture" or "upstream".
	Source string `koanf:"source"`

	// FixturePath points at a YAML catalogue; empty uses the bundled one.
	FixturePath string `koanf:"fixture_path"`

	// FixtureLatencyMinMS and FixtureLatencyMaxMS simulate collaborator latency.
	FixtureLatencyMinMS int `koanf:"fixture_latency_min_ms"`
	FixtureLatencyMaxMS int `koanf:"fixture_latency_max_ms"`

	// UpstreamURL is the base URL of the project API when Source is "upstream".
	UpstreamURL string `koanf:"upstream_url"`

	// UpstreamTimeoutMS bounds each upstream request.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// ProjectID is the fixed project shown on the overview page.
	ProjectID string `koanf:"project_id"`

	// RenderTimeoutMS is how long a page request waits for its load cycle to settle
	// before rendering whatever state it has reached.
	RenderTimeoutMS int `koanf:"render_timeout_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		Source:              SourceFixture,
		FixtureLatencyMinMS: 0,
		FixtureLatencyMaxMS: 0,
		UpstreamTimeoutMS:   5_000,
		ProjectID:           "60ab72950fb5890a912f41fa",
		RenderTimeoutMS:     2_000,
	}
}
