// Package config defines the configuration shared by the catalog, info and
// rating services.
//
// One flat key space serves all three binaries; each reads only the keys it
// needs. Defaults come from New, overrides from Load.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Listen addresses of the three services.
	CatalogAddr string `koanf:"catalog_addr"`
	InfoAddr    string `koanf:"info_addr"`
	RatingAddr  string `koanf:"rating_addr"`

	// RatingURL and InfoURL are the base URLs the catalog calls.
	RatingURL string `koanf:"rating_url"`
	InfoURL   string `koanf:"info_url"`

	// CatalogConcurrency bounds parallel detail lookups per request.
	CatalogConcurrency int `koanf:"catalog_concurrency"`

	// CatalogFailurePolicy is fail_fast, mark or skip.
	CatalogFailurePolicy string `koanf:"catalog_failure_policy"`

	// CatalogDescription fills entries whose detail has no description.
	CatalogDescription string `koanf:"catalog_description"`

	// CatalogUpstreamTimeout bounds each outbound attempt.
	CatalogUpstreamTimeout time.Duration `koanf:"catalog_upstream_timeout"`

	// CatalogDetailAttempts is the total number of tries per detail lookup
	// against the info service.
	CatalogDetailAttempts int `koanf:"catalog_detail_attempts"`

	// CatalogRetryBackoff is the initial wait between attempts.
	CatalogRetryBackoff time.Duration `koanf:"catalog_retry_backoff"`

	// CatalogRatingsAPI picks the rating envelope the catalog requests: v1 or v2.
	CatalogRatingsAPI string `koanf:"catalog_ratings_api"`

	// InfoProvider is local or tmdb.
	InfoProvider string `koanf:"info_provider"`

	// InfoStrict makes the local provider answer not found for unseeded ids.
	InfoStrict bool `koanf:"info_strict"`

	TMDBBaseURL   string        `koanf:"tmdb_base_url"`
	TMDBAPIKey    string        `koanf:"tmdb_api_key"`
	TMDBTimeout   time.Duration `koanf:"tmdb_timeout"`
	TMDBRateLimit float64       `koanf:"tmdb_rate_limit"`
	TMDBBurst     int           `koanf:"tmdb_burst"`

	// TMDBAttempts and TMDBRetryBackoff govern retries of the info service's
	// movie database calls. They are independent of the catalog retry keys.
	TMDBAttempts     int           `koanf:"tmdb_attempts"`
	TMDBRetryBackoff time.Duration `koanf:"tmdb_retry_backoff"`

	// RatingDefaultVersion is served on the unversioned user-ratings path.
	RatingDefaultVersion string `koanf:"rating_default_version"`

	// RatingFallback serves the fixed ratings to users without stored ratings.
	RatingFallback bool `koanf:"rating_fallback"`

	// RatingDefaultValue answers /ratings/{movieId} for unseeded movies.
	// A negative value makes unseeded movies not found.
	RatingDefaultValue float64 `koanf:"rating_default_value"`

	// MetricsEnabled exposes collectors on /metrics. When false the endpoint
	// answers with an empty exposition.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace, MetricsSubsystem and MetricsPrefix build metric names
	// as namespace_subsystem_prefix_name. Empty parts are omitted.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`
	MetricsPrefix    string `koanf:"metrics_prefix"`

	// MetricsRefreshInterval is how often memory, goroutine and GC gauges
	// are sampled.
	MetricsRefreshInterval time.Duration `koanf:"metrics_refresh_interval"`
}

// New creates a Config populated with defaults. Context is accepted first to
// follow the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		CatalogAddr:            ":8081",
		InfoAddr:               ":8082",
		RatingAddr:             ":8083",
		RatingURL:              "http://localhost:8083",
		InfoURL:                "http://localhost:8082",
		CatalogConcurrency:     4,
		CatalogFailurePolicy:   "fail_fast",
		CatalogDescription:     "Description",
		CatalogUpstreamTimeout: 2 * time.Second,
		CatalogDetailAttempts:  2,
		CatalogRetryBackoff:    50 * time.Millisecond,
		CatalogRatingsAPI:      "v2",
		InfoProvider:           "local",
		TMDBBaseURL:            "https://api.themoviedb.org",
		TMDBTimeout:            3 * time.Second,
		TMDBRateLimit:          20,
		TMDBBurst:              5,
		TMDBAttempts:           2,
		TMDBRetryBackoff:       100 * time.Millisecond,
		RatingDefaultVersion:   "v2",
		RatingFallback:         true,
		RatingDefaultValue:     4.29,
		MetricsEnabled:         true,
		MetricsNamespace:       "marquee",
		MetricsRefreshInterval: 10 * time.Second,
	}
}
