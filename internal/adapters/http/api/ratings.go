package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/marquee/internal/adapters/repository"
	"github.com/okian/marquee/internal/domain/fault"
	"github.com/okian/marquee/internal/domain/model"
)

// Ratings API versions. v1 returns a bare list, v2 the {userId, ratings} envelope.
const (
	V1 = "v1"
	V2 = "v2"
)

// RatingsHandler serves the rating service.
type RatingsHandler struct {
	store          repository.Store
	defaultVersion string
}

// NewRatingsHandler creates a ratings handler. defaultVersion is served on
// the unversioned user ratings path.
func NewRatingsHandler(store repository.Store, defaultVersion string) (*RatingsHandler, error) {
	if defaultVersion != V1 && defaultVersion != V2 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, defaultVersion)
	}
	return &RatingsHandler{store: store, defaultVersion: defaultVersion}, nil
}

// HandleGetMovieRating handles GET /ratings/{movieId}.
func (h *RatingsHandler) HandleGetMovieRating(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_movie_rating"
	movieID, err := pathID(r, "movieId", op, fault.ResourceMovie)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rating, err := h.store.MovieRating(r.Context(), movieID)
	if err != nil {
		writeError(w, r, storeFault(err, op, fault.ResourceMovie, movieID))
		return
	}
	writeJSON(w, http.StatusOK, rating)
}

// HandleGetUserRatings handles GET /ratings/users/{userId}.
func (h *RatingsHandler) HandleGetUserRatings(w http.ResponseWriter, r *http.Request) {
	h.serveUserRatings(w, r, h.defaultVersion)
}

// HandleGetUserRatingsV1 handles GET /v1/ratings/users/{userId}.
func (h *RatingsHandler) HandleGetUserRatingsV1(w http.ResponseWriter, r *http.Request) {
	h.serveUserRatings(w, r, V1)
}

// HandleGetUserRatingsV2 handles GET /v2/ratings/users/{userId}.
func (h *RatingsHandler) HandleGetUserRatingsV2(w http.ResponseWriter, r *http.Request) {
	h.serveUserRatings(w, r, V2)
}

func (h *RatingsHandler) serveUserRatings(w http.ResponseWriter, r *http.Request, version string) {
	const op = "api.get_user_ratings"
	userID, err := pathID(r, "userId", op, fault.ResourceUser)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ratings, err := h.store.UserRatings(r.Context(), userID)
	if err != nil {
		writeError(w, r, storeFault(err, op, fault.ResourceUser, userID))
		return
	}
	if ratings == nil {
		ratings = []model.Rating{}
	}
	if version == V1 {
		writeJSON(w, http.StatusOK, ratings)
		return
	}
	writeJSON(w, http.StatusOK, model.UserRatings{UserID: userID, Ratings: ratings})
}

func storeFault(err error, op, resource string, id model.ID) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound), errors.Is(err, repository.ErrMovieNotFound):
		return fault.New(fault.KindNotFound, op, err).For(resource, id.String())
	case errors.Is(err, context.DeadlineExceeded):
		return fault.New(fault.KindTimeout, op, err).For(resource, id.String())
	default:
		return fault.Annotate(err, op, resource, id.String())
	}
}
