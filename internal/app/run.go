package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/marquee/internal/config"
	"github.com/okian/marquee/internal/server"
	"github.com/okian/marquee/pkg/logger"
	"github.com/okian/marquee/pkg/metrics"
)

const (
	outboundIdleConns   = 100
	outboundIdleTimeout = 90 * time.Second
)

// NewHTTPClient returns the process-wide outbound client. Per-call deadlines
// come from the upstream clients, so the client itself has no timeout.
func NewHTTPClient() *http.Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = outboundIdleConns
	t.MaxIdleConnsPerHost = outboundIdleConns
	t.IdleConnTimeout = outboundIdleTimeout
	return &http.Client{Transport: t}
}

// MetricsSettings maps the metrics keys of cfg for the named service.
func MetricsSettings(cfg *config.Config, service string) metrics.Settings {
	return metrics.Settings{
		Enabled:         cfg.MetricsEnabled,
		Namespace:       cfg.MetricsNamespace,
		Subsystem:       cfg.MetricsSubsystem,
		Prefix:          cfg.MetricsPrefix,
		RefreshInterval: cfg.MetricsRefreshInterval,
		Service:         service,
	}
}

// Run loads configuration, builds one service and serves it until ctx is
// done.
func Run(ctx context.Context, build Builder) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.InitWithOptions(logger.Options{Format: cfg.LogFormat}); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	hc := NewHTTPClient()
	defer hc.CloseIdleConnections()

	svc, err := build(ctx, cfg, hc)
	if err != nil {
		return err
	}

	m := metrics.Configure(MetricsSettings(cfg, svc.Name()).Options()...)
	go server.StartSystemMetricsUpdater(ctx, m.RefreshInterval())

	logger.Get().Info(ctx, "configuration loaded", logger.Any("config", cfg.Redacted()))
	return server.New(svc.Name(), svc.Addr(), svc.Handler(ctx)).Run(ctx)
}
