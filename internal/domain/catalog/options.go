package catalog

import (
	"errors"
	"fmt"

	"github.com/okian/marquee/pkg/logger"
)

const defaultConcurrency = 4

// ErrInvalidPolicy is returned by ParsePolicy for unknown names.
var ErrInvalidPolicy = errors.New("invalid failure policy")

// Policy decides what a failed detail lookup does to the catalog.
type Policy int

const (
	// FailFast aborts the whole catalog on the first failed lookup.
	FailFast Policy = iota
	// Mark keeps every entry and flags failed ones with an error.
	Mark
	// Skip drops entries whose lookup failed.
	Skip
)

func (p Policy) String() string {
	switch p {
	case Mark:
		return "mark"
	case Skip:
		return "skip"
	default:
		return "fail_fast"
	}
}

// ParsePolicy maps a configuration value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "fail_fast":
		return FailFast, nil
	case "mark":
		return Mark, nil
	case "skip":
		return Skip, nil
	default:
		return FailFast, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithPolicy sets the partial-failure policy.
func WithPolicy(p Policy) Option {
	return func(a *Aggregator) {
		a.policy = p
	}
}

// WithConcurrency bounds the number of detail lookups in flight per request.
// 1 reproduces strictly sequential lookups.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithDescription sets the placeholder used when a detail has no description.
func WithDescription(desc string) Option {
	return func(a *Aggregator) {
		if desc != "" {
			a.description = desc
		}
	}
}

// WithLogger sets a custom logger for the aggregator.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}
