package repository

import "github.com/okian/marquee/internal/domain/model"

// Option applies a configuration option to the StaticStore.
type Option func(*StaticStore)

// WithUserRatings seeds the ratings returned for one user.
func WithUserRatings(userID model.ID, ratings ...model.Rating) Option {
	return func(s *StaticStore) {
		s.users[userID] = append([]model.Rating(nil), ratings...)
	}
}

// WithFallback controls whether unknown users receive the default ratings
// instead of ErrUserNotFound.
func WithFallback(enabled bool) Option {
	return func(s *StaticStore) {
		s.fallback = enabled
	}
}

// WithMovieRating seeds the rating returned for one movie.
func WithMovieRating(movieID model.ID, value float64) Option {
	return func(s *StaticStore) {
		s.movies[movieID] = value
	}
}

// WithDefaultMovieRating sets the value returned for unseeded movies. A
// negative value disables the default so unseeded movies are not found.
func WithDefaultMovieRating(value float64) Option {
	return func(s *StaticStore) {
		s.defaultMovie = value
	}
}
