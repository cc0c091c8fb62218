package repository

import (
	"context"
	"time"

	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/pkg/logger"
)

// DefaultMovieRating is the value served for movies nobody seeded.
const DefaultMovieRating = 4.29

// DefaultRatings are the fabricated ratings served to users without seeded data.
func DefaultRatings() []model.Rating {
	return []model.Rating{
		{MovieID: 123, RatingValue: 4.5},
		{MovieID: 456, RatingValue: 3.8},
		{MovieID: 789, RatingValue: 4.2},
	}
}

// StaticStore is an in-memory Store. It is immutable after construction, so
// concurrent readers need no locking.
type StaticStore struct {
	users        map[model.ID][]model.Rating
	movies       map[model.ID]float64
	defaults     []model.Rating
	defaultMovie float64
	fallback     bool
}

// NewStaticStore builds a store. By default every user receives
// DefaultRatings and every movie DefaultMovieRating.
func NewStaticStore(ctx context.Context, opts ...Option) *StaticStore {
	s := &StaticStore{
		users:        make(map[model.ID][]model.Rating),
		movies:       make(map[model.ID]float64),
		defaults:     DefaultRatings(),
		defaultMovie: DefaultMovieRating,
		fallback:     true,
	}
	for _, opt := range opts {
		opt(s)
	}

	logger.Get().Debug(ctx, "rating store ready",
		logger.Int("seeded_users", len(s.users)),
		logger.Int("seeded_movies", len(s.movies)),
		logger.Bool("fallback", s.fallback),
	)
	return s
}

// UserRatings implements Store. The returned slice is a copy.
func (s *StaticStore) UserRatings(ctx context.Context, userID model.ID) ([]model.Rating, error) {
	start := time.Now()
	defer logQuery(ctx, "user_ratings", start)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ratings, ok := s.users[userID]
	if !ok {
		if !s.fallback {
			return nil, ErrUserNotFound
		}
		ratings = s.defaults
	}
	return append([]model.Rating(nil), ratings...), nil
}

// MovieRating implements Store.
func (s *StaticStore) MovieRating(ctx context.Context, movieID model.ID) (model.Rating, error) {
	start := time.Now()
	defer logQuery(ctx, "movie_rating", start)

	if err := ctx.Err(); err != nil {
		return model.Rating{}, err
	}
	value, ok := s.movies[movieID]
	if !ok {
		if s.defaultMovie < 0 {
			return model.Rating{}, ErrMovieNotFound
		}
		value = s.defaultMovie
	}
	return model.Rating{MovieID: movieID, RatingValue: value}, nil
}

func logQuery(ctx context.Context, query string, start time.Time) {
	logger.Get().Debug(ctx, "rating store query",
		logger.String("query", query),
		logger.Duration("took", time.Since(start)),
	)
}
