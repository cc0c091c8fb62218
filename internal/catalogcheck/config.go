// Package catalogcheck drives a running deployment and verifies that every
// catalog it returns lines up with the user's ratings.
package catalogcheck

import (
	"errors"
	"time"
)

// Errors reported by Run.
var (
	ErrUnhealthy = errors.New("service unhealthy")
	ErrMismatch  = errors.New("catalog does not match ratings")
)

// Config holds configuration for a check run.
type Config struct {
	CatalogURL string        // Base URL of the catalog service
	RatingURL  string        // Base URL of the rating service
	FirstUser  int64         // First user id to check
	Users      int           // Number of consecutive users to check
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // Per-request timeout
	Verbose    bool          // Log every user
}

// Stats holds run statistics.
type Stats struct {
	Checked    int64
	Passed     int64
	Mismatched int64
	Failed     int64
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
