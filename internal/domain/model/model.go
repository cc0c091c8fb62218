// Package model contains the records exchanged between the rating, info and
// catalog services.
package model

// Rating is one user's score for a movie.
type Rating struct {
	MovieID     ID      `json:"movieId"`
	RatingValue float64 `json:"ratingValue"`
}

// UserRatings is the envelope form of a user's ratings.
type UserRatings struct {
	UserID  ID       `json:"userId"`
	Ratings []Rating `json:"ratings"`
}

// ItemDetail describes a movie.
type ItemDetail struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CatalogEntry is a rating merged with its movie detail.
type CatalogEntry struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Score       float64     `json:"score"`
	Error       *EntryError `json:"error,omitempty"`
}

// EntryError marks an entry whose detail lookup failed when the catalog runs
// in mark mode.
type EntryError struct {
	Kind    string `json:"kind"`
	MovieID ID     `json:"movieId"`
}
