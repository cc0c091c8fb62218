package repository

import "errors"

// Sentinel kinds for rating lookups.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrMovieNotFound = errors.New("movie not found")
)
