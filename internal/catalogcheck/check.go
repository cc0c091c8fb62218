package catalogcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/marquee/internal/adapters/upstream"
	"github.com/okian/marquee/internal/domain/fault"
	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/pkg/logger"
)

// WorkerChannelMultiplier sizes the job channel relative to the worker count.
const WorkerChannelMultiplier = 2

type checker struct {
	cfg     *Config
	catalog *upstream.Client
	rating  *upstream.Client
	ratings *upstream.RatingClient
}

// Run checks cfg.Users users and returns the statistics. It returns
// ErrMismatch if any catalog disagreed with its ratings or could not be
// fetched.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	logger.Get().Info(ctx, "starting catalog check",
		logger.String("catalog", cfg.CatalogURL),
		logger.String("rating", cfg.RatingURL),
		logger.Int64("first_user", cfg.FirstUser),
		logger.Int("users", cfg.Users),
		logger.Int("workers", cfg.Workers),
	)

	c, err := newChecker(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.checkHealth(ctx); err != nil {
		return nil, err
	}

	c.checkUsers(ctx, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logger.Get().Info(ctx, "final statistics",
		logger.Int64("checked", stats.Checked),
		logger.Int64("passed", stats.Passed),
		logger.Int64("mismatched", stats.Mismatched),
		logger.Int64("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
	)

	if stats.Mismatched > 0 || stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d mismatched, %d failed of %d",
			ErrMismatch, stats.Mismatched, stats.Failed, stats.Checked)
	}
	return stats, nil
}

func newChecker(cfg *Config) (*checker, error) {
	catalog, err := upstream.New("catalog", cfg.CatalogURL, upstream.WithTimeout(cfg.Timeout))
	if err != nil {
		return nil, err
	}
	rating, err := upstream.New("rating", cfg.RatingURL, upstream.WithTimeout(cfg.Timeout))
	if err != nil {
		return nil, err
	}
	return &checker{
		cfg:     cfg,
		catalog: catalog,
		rating:  rating,
		ratings: upstream.NewRatingClient(rating, upstream.V2),
	}, nil
}

// checkHealth verifies both services answer /healthz.
func (c *checker) checkHealth(ctx context.Context) error {
	for _, client := range []*upstream.Client{c.catalog, c.rating} {
		ref := upstream.Ref{Op: "check.health"}
		if _, err := client.Get(ctx, ref, nil, "healthz"); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnhealthy, client.Target(), err)
		}
	}
	logger.Get().Info(ctx, "services are healthy")
	return nil
}

// checkUsers fans users out to a fixed worker pool.
func (c *checker) checkUsers(ctx context.Context, stats *Stats) {
	jobs := make(chan model.ID, c.cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for range c.cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				atomic.AddInt64(&stats.Checked, 1)
				err := c.checkUser(ctx, id)
				switch {
				case err == nil:
					atomic.AddInt64(&stats.Passed, 1)
				case fault.KindOf(err) == fault.KindUnknown:
					atomic.AddInt64(&stats.Mismatched, 1)
					logger.Get().Warn(ctx, "catalog mismatch", logger.String("user", id.String()), logger.Error(err))
				default:
					atomic.AddInt64(&stats.Failed, 1)
					logger.Get().Warn(ctx, "catalog check failed", logger.String("user", id.String()), logger.Error(err))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range c.cfg.Users {
			select {
			case <-ctx.Done():
				return
			case jobs <- model.ID(c.cfg.FirstUser + int64(i)):
			}
		}
	}()

	wg.Wait()
}

func (c *checker) checkUser(ctx context.Context, userID model.ID) error {
	ratings, err := c.ratings.UserRatings(ctx, userID)
	if err != nil {
		return err
	}

	ref := upstream.Ref{Op: "check.catalog", Resource: fault.ResourceUser, ID: userID.String()}
	body, err := c.catalog.Get(ctx, ref, nil, "catalog", userID.String())
	if err != nil {
		return err
	}
	var entries []model.CatalogEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return fault.New(fault.KindUpstreamBadResponse, ref.Op, err).For(ref.Resource, ref.ID)
	}

	if err := Verify(ratings, entries); err != nil {
		return err
	}
	if c.cfg.Verbose {
		logger.Get().Info(ctx, "catalog verified", logger.String("user", userID.String()), logger.Int("entries", len(entries)))
	}
	return nil
}

// Verify reports whether entries are exactly one per rating, in rating
// order, each carrying its rating's score. Unflagged entries must also be
// named.
func Verify(ratings []model.Rating, entries []model.CatalogEntry) error {
	if len(entries) != len(ratings) {
		return fmt.Errorf("%w: %d entries for %d ratings", ErrMismatch, len(entries), len(ratings))
	}
	for i, r := range ratings {
		e := entries[i]
		if e.Score != r.RatingValue {
			return fmt.Errorf("%w: entry %d score %v, rating %v", ErrMismatch, i, e.Score, r.RatingValue)
		}
		// Entries flagged by the mark policy carry no detail.
		if e.Error == nil && e.Name == "" {
			return fmt.Errorf("%w: entry %d (movie %s) has no name", ErrMismatch, i, r.MovieID)
		}
	}
	return nil
}
