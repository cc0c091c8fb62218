// Package repository holds the rating data served by the rating service.
package repository

import (
	"context"

	"github.com/okian/marquee/internal/domain/model"
)

// Store provides read access to ratings.
type Store interface {
	// UserRatings returns the user's ratings in their stored order.
	// Returns ErrUserNotFound if the user is unknown.
	UserRatings(ctx context.Context, userID model.ID) ([]model.Rating, error)

	// MovieRating returns the rating recorded for a movie.
	// Returns ErrMovieNotFound if the movie is unknown.
	MovieRating(ctx context.Context, movieID model.ID) (model.Rating, error)
}
