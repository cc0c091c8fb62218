package api

import "net/http"

// OpsRoutes are served by every service.
func OpsRoutes(service string) []Route {
	health := NewHealthHandler(service)
	return []Route{
		{Method: http.MethodGet, Pattern: "/healthz", Name: "healthz", Handler: health.HandleHealth},
		{Method: http.MethodGet, Pattern: "/metrics", Name: "metrics", Handler: HandleMetrics},
	}
}

// CatalogRoutes is the catalog service route table.
func CatalogRoutes(h *CatalogHandler) []Route {
	return []Route{
		{Method: http.MethodGet, Pattern: "/catalog/{userId}", Name: "catalog", Handler: h.HandleGetCatalog},
	}
}

// InfoRoutes is the info service route table.
func InfoRoutes(h *MovieHandler) []Route {
	return []Route{
		{Method: http.MethodGet, Pattern: "/movies/{movieId}", Name: "movies", Handler: h.HandleGetMovie},
	}
}

// RatingRoutes is the rating service route table.
func RatingRoutes(h *RatingsHandler) []Route {
	return []Route{
		{Method: http.MethodGet, Pattern: "/ratings/{movieId}", Name: "movie_rating", Handler: h.HandleGetMovieRating},
		{Method: http.MethodGet, Pattern: "/ratings/users/{userId}", Name: "user_ratings", Handler: h.HandleGetUserRatings},
		{Method: http.MethodGet, Pattern: "/v1/ratings/users/{userId}", Name: "user_ratings_v1", Handler: h.HandleGetUserRatingsV1},
		{Method: http.MethodGet, Pattern: "/v2/ratings/users/{userId}", Name: "user_ratings_v2", Handler: h.HandleGetUserRatingsV2},
	}
}
