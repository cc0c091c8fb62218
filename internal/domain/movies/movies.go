// Package movies resolves movie details for the info service.
package movies

import (
	"context"
	"fmt"

	"github.com/okian/marquee/internal/domain/fault"
	"github.com/okian/marquee/internal/domain/model"
)

// Source resolves one movie's detail.
type Source interface {
	Detail(ctx context.Context, movieID model.ID) (model.ItemDetail, error)
}

// KnownTitles seeds the local source.
func KnownTitles() map[model.ID]string {
	return map[model.ID]string{
		123: "Inception",
		456: "Interstellar",
		789: "The Prestige",
	}
}

// Local synthesizes details without any outbound call. Output depends only on
// the id, so repeated lookups are identical.
type Local struct {
	titles map[model.ID]string
	strict bool
}

// LocalOption configures a Local source.
type LocalOption func(*Local)

// WithTitles replaces the seeded titles.
func WithTitles(titles map[model.ID]string) LocalOption {
	return func(l *Local) {
		if titles != nil {
			l.titles = titles
		}
	}
}

// WithStrict makes unseeded ids fail with a not-found fault instead of
// receiving a generated title.
func WithStrict(strict bool) LocalOption {
	return func(l *Local) {
		l.strict = strict
	}
}

// NewLocal builds a local source seeded with KnownTitles.
func NewLocal(opts ...LocalOption) *Local {
	l := &Local{titles: KnownTitles()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Detail implements Source.
func (l *Local) Detail(ctx context.Context, movieID model.ID) (model.ItemDetail, error) {
	if err := ctx.Err(); err != nil {
		return model.ItemDetail{}, err
	}
	name, ok := l.titles[movieID]
	if !ok {
		if l.strict {
			return model.ItemDetail{}, fault.New(fault.KindNotFound, "movies.local", nil).
				For(fault.ResourceMovie, movieID.String())
		}
		name = fmt.Sprintf("Movie %d", movieID)
	}
	return model.ItemDetail{ID: movieID, Name: name}, nil
}
