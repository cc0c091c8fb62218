package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "MARQUEE_"
	envFileKey = envPrefix + "CONFIG"
)

// metricNamePart matches a Prometheus name component.
var metricNamePart = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if MARQUEE_CONFIG is set
//  3. env (prefix MARQUEE_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(envFileKey); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: file %s: %w", ErrLoadConfig, path, err)
		}
	}

	// MARQUEE_CATALOG_ADDR -> catalog_addr. Keys are flat, so underscores stay.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The file selector is not a config key.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	for key, addr := range map[string]string{
		"catalog_addr": c.CatalogAddr,
		"info_addr":    c.InfoAddr,
		"rating_addr":  c.RatingAddr,
	} {
		if addr == "" {
			return invalid("%s must not be empty", key)
		}
	}
	for key, raw := range map[string]string{
		"rating_url":    c.RatingURL,
		"info_url":      c.InfoURL,
		"tmdb_base_url": c.TMDBBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return invalid("%s must be an absolute URL, got %q", key, raw)
		}
	}

	switch {
	case !slices.Contains([]string{"debug", "info", "warn", "warning", "error"}, strings.ToLower(c.LogLevel)):
		return invalid("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return invalid("log_format %q is not text or json", c.LogFormat)
	case c.CatalogConcurrency < 1:
		return invalid("catalog_concurrency must be at least 1, got %d", c.CatalogConcurrency)
	case !slices.Contains([]string{"fail_fast", "mark", "skip"}, c.CatalogFailurePolicy):
		return invalid("catalog_failure_policy %q is not fail_fast, mark or skip", c.CatalogFailurePolicy)
	case c.CatalogUpstreamTimeout <= 0:
		return invalid("catalog_upstream_timeout must be positive")
	case c.CatalogDetailAttempts < 1:
		return invalid("catalog_detail_attempts must be at least 1, got %d", c.CatalogDetailAttempts)
	case c.CatalogRetryBackoff < 0:
		return invalid("catalog_retry_backoff must not be negative")
	case !isVersion(c.CatalogRatingsAPI):
		return invalid("catalog_ratings_api %q is not v1 or v2", c.CatalogRatingsAPI)
	case !isVersion(c.RatingDefaultVersion):
		return invalid("rating_default_version %q is not v1 or v2", c.RatingDefaultVersion)
	case c.InfoProvider != "local" && c.InfoProvider != "tmdb":
		return invalid("info_provider %q is not local or tmdb", c.InfoProvider)
	case c.InfoProvider == "tmdb" && c.TMDBAPIKey == "":
		return invalid("tmdb_api_key is required when info_provider is tmdb")
	case c.TMDBTimeout <= 0:
		return invalid("tmdb_timeout must be positive")
	case c.TMDBRateLimit <= 0 || c.TMDBBurst < 1:
		return invalid("tmdb_rate_limit and tmdb_burst must be positive")
	case c.TMDBAttempts < 1:
		return invalid("tmdb_attempts must be at least 1, got %d", c.TMDBAttempts)
	case c.TMDBRetryBackoff < 0:
		return invalid("tmdb_retry_backoff must not be negative")
	case c.MetricsRefreshInterval <= 0:
		return invalid("metrics_refresh_interval must be positive")
	case !metricNamePart.MatchString(c.MetricsNamespace):
		return invalid("metrics_namespace %q is not a valid metric name", c.MetricsNamespace)
	}
	for key, part := range map[string]string{
		"metrics_subsystem": c.MetricsSubsystem,
		"metrics_prefix":    c.MetricsPrefix,
	} {
		if part != "" && !metricNamePart.MatchString(part) {
			return invalid("%s %q is not a valid metric name", key, part)
		}
	}
	return nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.TMDBAPIKey != "" {
		c.TMDBAPIKey = "***"
	}
	return c
}

func isVersion(v string) bool {
	return v == "v1" || v == "v2"
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
