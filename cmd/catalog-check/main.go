// Command catalog-check verifies a running deployment: for a range of users
// it compares each catalog with the user's ratings.
package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/marquee/internal/catalogcheck"
	"github.com/okian/marquee/pkg/logger"
)

// Default configuration constants.
const (
	defaultUsers       = 1000
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 5 * time.Second
	defaultTestTimeout = 5 * time.Minute
)

const usage = `Marquee Catalog Check
=====================

Fetches /catalog/{id} and /v2/ratings/users/{id} for a range of users and
verifies that every catalog has one entry per rating, in rating order.
Run it against a catalog using the fail_fast or mark failure policy.

Options:
`

func main() {
	var (
		catalogURL = flag.String("catalog", "http://localhost:8081", "Base URL of the catalog service")
		ratingURL  = flag.String("rating", "http://localhost:8083", "Base URL of the rating service")
		firstUser  = flag.Int64("first", 1, "First user id to check")
		users      = flag.Int("users", defaultUsers, "Number of consecutive users to check")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "Per-request timeout")
		verbose    = flag.Bool("verbose", false, "Log every verified user")
	)
	flag.Usage = func() {
		_, _ = os.Stderr.WriteString(usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	_, err := catalogcheck.Run(ctx, &catalogcheck.Config{
		CatalogURL: *catalogURL,
		RatingURL:  *ratingURL,
		FirstUser:  *firstUser,
		Users:      *users,
		Workers:    *workers,
		Timeout:    *timeout,
		Verbose:    *verbose,
	})
	if err != nil {
		_, _ = os.Stderr.WriteString("check failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
