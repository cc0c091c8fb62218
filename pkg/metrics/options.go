package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager before its collectors are created.
type Option func(*Manager)

// Settings mirrors the metrics keys of the service configuration.
// The zero value disables collection.
type Settings struct {
	Enabled         bool
	Namespace       string
	Subsystem       string
	Prefix          string
	RefreshInterval time.Duration
	// Service becomes the constant "service" label on every series.
	Service string
}

// Options converts s into manager options. Empty strings and a zero
// interval keep the manager defaults.
func (s Settings) Options() []Option {
	opts := []Option{
		WithMetricsEnabled(s.Enabled),
		WithNamespace(s.Namespace),
		WithSubsystem(s.Subsystem),
		WithMetricPrefix(s.Prefix),
		WithRefreshInterval(s.RefreshInterval),
	}
	if s.Service != "" {
		opts = append(opts, WithConstLabel("service", s.Service))
	}
	return opts
}

// WithNamespace replaces the "marquee" namespace.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem inserts a subsystem between namespace and metric name.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		m.subsystem = subsystem
	}
}

// WithMetricsEnabled toggles registration. A disabled manager still accepts
// observations but exposes nothing.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithRefreshInterval sets how often the system gauges are sampled.
func WithRefreshInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.refreshInterval = interval
		}
	}
}

// WithConstLabel attaches key=value to every series. Repeated keys overwrite.
func WithConstLabel(key, value string) Option {
	return func(m *Manager) {
		if key == "" {
			return
		}
		labels := make(map[string]string, len(m.customLabels)+1)
		for k, v := range m.customLabels {
			labels[k] = v
		}
		labels[key] = value
		m.customLabels = labels
	}
}

// WithMetricPrefix prepends prefix_ to every metric name.
func WithMetricPrefix(prefix string) Option {
	return func(m *Manager) {
		m.metricPrefix = prefix
	}
}

// WithPrometheusRegistry registers collectors on registry instead of the
// default registerer.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
