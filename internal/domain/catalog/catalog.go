// Package catalog composes a user's ratings with movie details.
//
// The aggregator fetches the ratings once, looks up each rated movie with
// bounded parallelism, and merges the pairs. Output order always equals
// rating order; each lookup writes only its own slot.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/marquee/internal/domain/fault"
	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/pkg/logger"
	"github.com/okian/marquee/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// DefaultDescription fills entries whose detail carries no description.
const DefaultDescription = "Description"

// RatingSource lists a user's ratings.
type RatingSource interface {
	UserRatings(ctx context.Context, userID model.ID) ([]model.Rating, error)
}

// DetailSource resolves a movie's detail.
type DetailSource interface {
	Detail(ctx context.Context, movieID model.ID) (model.ItemDetail, error)
}

// Aggregator builds catalogs. It holds no per-request state.
type Aggregator struct {
	ratings     RatingSource
	details     DetailSource
	policy      Policy
	concurrency int
	description string
	logger      logger.Logger
}

// New creates an aggregator over the two sources.
func New(ratings RatingSource, details DetailSource, opts ...Option) *Aggregator {
	a := &Aggregator{
		ratings:     ratings,
		details:     details,
		policy:      FailFast,
		concurrency: defaultConcurrency,
		description: DefaultDescription,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("catalog")
	}
	return a
}

// Catalog returns one entry per rating of userID, in rating order.
//
// A ratings failure is returned unchanged. A detail failure is handled
// according to the configured Policy.
func (a *Aggregator) Catalog(ctx context.Context, userID model.ID) ([]model.CatalogEntry, error) {
	ratings, err := a.ratings.UserRatings(ctx, userID)
	if err != nil {
		metrics.RecordCatalogResult("failed")
		return nil, err
	}
	metrics.RecordCatalogFanout(len(ratings))

	entries := make([]model.CatalogEntry, len(ratings))
	failures := make([]error, len(ratings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, r := range ratings {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fault.Annotate(err, "catalog.detail", fault.ResourceMovie, r.MovieID.String())
			}
			detail, err := a.details.Detail(gctx, r.MovieID)
			if err != nil {
				canceled := gctx.Err() != nil
				err = fault.Annotate(err, "catalog.detail", fault.ResourceMovie, r.MovieID.String())
				if !canceled {
					metrics.RecordCatalogItemFailure(fault.KindOf(err).String())
				}
				if a.policy == FailFast {
					return err
				}
				failures[i] = err
				return nil
			}
			entries[i] = a.merge(r, detail)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.RecordCatalogResult("failed")
		a.logger.Warn(ctx, "catalog aborted",
			logger.String("user", userID.String()),
			logger.Error(err),
		)
		return nil, err
	}
	return a.settle(ctx, userID, ratings, entries, failures), nil
}

func (a *Aggregator) merge(r model.Rating, d model.ItemDetail) model.CatalogEntry {
	desc := d.Description
	if desc == "" {
		desc = a.description
	}
	return model.CatalogEntry{Name: d.Name, Description: desc, Score: r.RatingValue}
}

// settle applies the partial-failure policy once every lookup finished.
func (a *Aggregator) settle(ctx context.Context, userID model.ID, ratings []model.Rating, entries []model.CatalogEntry, failures []error) []model.CatalogEntry {
	failed := 0
	for _, err := range failures {
		if err != nil {
			failed++
		}
	}
	if failed == 0 {
		metrics.RecordCatalogResult("ok")
		return entries
	}

	metrics.RecordCatalogResult("partial")
	a.logger.Warn(ctx, "catalog composed with failed lookups",
		logger.String("user", userID.String()),
		logger.String("policy", a.policy.String()),
		logger.Int("failed", failed),
		logger.Int("total", len(ratings)),
		logger.Error(errors.Join(failures...)),
	)

	if a.policy == Mark {
		for i, err := range failures {
			if err == nil {
				continue
			}
			entries[i] = model.CatalogEntry{
				Description: a.description,
				Score:       ratings[i].RatingValue,
				Error:       &model.EntryError{Kind: fault.KindOf(err).String(), MovieID: ratings[i].MovieID},
			}
		}
		return entries
	}

	kept := make([]model.CatalogEntry, 0, len(entries)-failed)
	for i, e := range entries {
		if failures[i] == nil {
			kept = append(kept, e)
		}
	}
	return kept
}

// String implements fmt.Stringer for logging.
func (a *Aggregator) String() string {
	return fmt.Sprintf("catalog(policy=%s, concurrency=%d)", a.policy, a.concurrency)
}
