package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/marquee/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New(ctx))
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MARQUEE_CATALOG_ADDR", ":9081")
			_ = os.Setenv("MARQUEE_CATALOG_CONCURRENCY", "16")
			_ = os.Setenv("MARQUEE_CATALOG_FAILURE_POLICY", "mark")
			_ = os.Setenv("MARQUEE_CATALOG_UPSTREAM_TIMEOUT", "750ms")
			_ = os.Setenv("MARQUEE_INFO_STRICT", "true")
			_ = os.Setenv("MARQUEE_RATING_DEFAULT_VALUE", "3.5")
			_ = os.Setenv("MARQUEE_TMDB_ATTEMPTS", "5")
			_ = os.Setenv("MARQUEE_METRICS_REFRESH_INTERVAL", "30s")
			_ = os.Setenv("MARQUEE_METRICS_ENABLED", "false")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.CatalogAddr, convey.ShouldEqual, ":9081")
				convey.So(cfg.CatalogConcurrency, convey.ShouldEqual, 16)
				convey.So(cfg.CatalogFailurePolicy, convey.ShouldEqual, "mark")
				convey.So(cfg.CatalogUpstreamTimeout, convey.ShouldEqual, 750*time.Millisecond)
				convey.So(cfg.InfoStrict, convey.ShouldBeTrue)
				convey.So(cfg.RatingDefaultValue, convey.ShouldEqual, 3.5)
				convey.So(cfg.InfoAddr, convey.ShouldEqual, ":8082")
				convey.So(cfg.TMDBAttempts, convey.ShouldEqual, 5)
				convey.So(cfg.CatalogDetailAttempts, convey.ShouldEqual, 2)
				convey.So(cfg.MetricsRefreshInterval, convey.ShouldEqual, 30*time.Second)
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
catalog_addr: ":9090"
catalog_concurrency: 8
catalog_ratings_api: v1
rating_url: "http://ratings.internal:80"
metrics_namespace: cinema
tmdb_retry_backoff: 250ms
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("MARQUEE_CONFIG", tmpFile)
			_ = os.Setenv("MARQUEE_CATALOG_CONCURRENCY", "32")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env overrides the file which overrides defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.CatalogAddr, convey.ShouldEqual, ":9090")
				convey.So(cfg.CatalogConcurrency, convey.ShouldEqual, 32)
				convey.So(cfg.CatalogRatingsAPI, convey.ShouldEqual, "v1")
				convey.So(cfg.RatingURL, convey.ShouldEqual, "http://ratings.internal:80")
				convey.So(cfg.CatalogDetailAttempts, convey.ShouldEqual, 2)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "cinema")
				convey.So(cfg.TMDBRetryBackoff, convey.ShouldEqual, 250*time.Millisecond)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("MARQUEE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("MARQUEE_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an invalid numeric value", func() {
			_ = os.Setenv("MARQUEE_CATALOG_CONCURRENCY", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When selecting the tmdb provider without a key", func() {
			_ = os.Setenv("MARQUEE_INFO_PROVIDER", "tmdb")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "tmdb_api_key")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"MARQUEE_CONFIG",
		"MARQUEE_CATALOG_ADDR",
		"MARQUEE_CATALOG_CONCURRENCY",
		"MARQUEE_CATALOG_FAILURE_POLICY",
		"MARQUEE_CATALOG_UPSTREAM_TIMEOUT",
		"MARQUEE_INFO_STRICT",
		"MARQUEE_INFO_PROVIDER",
		"MARQUEE_RATING_DEFAULT_VALUE",
		"MARQUEE_TMDB_ATTEMPTS",
		"MARQUEE_METRICS_REFRESH_INTERVAL",
		"MARQUEE_METRICS_ENABLED",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "marquee-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
