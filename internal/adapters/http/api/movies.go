package api

import (
	"context"
	"net/http"

	"github.com/okian/marquee/internal/domain/fault"
	"github.com/okian/marquee/internal/domain/model"
)

// DetailSource resolves movie details.
type DetailSource interface {
	Detail(ctx context.Context, movieID model.ID) (model.ItemDetail, error)
}

// MovieHandler serves the info service.
type MovieHandler struct {
	details DetailSource
}

// NewMovieHandler creates a movie handler.
func NewMovieHandler(d DetailSource) *MovieHandler {
	return &MovieHandler{details: d}
}

// HandleGetMovie handles GET /movies/{movieId}.
func (h *MovieHandler) HandleGetMovie(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_movie"
	movieID, err := pathID(r, "movieId", op, fault.ResourceMovie)
	if err != nil {
		writeError(w, r, err)
		return
	}
	detail, err := h.details.Detail(r.Context(), movieID)
	if err != nil {
		writeError(w, r, fault.Annotate(err, op, fault.ResourceMovie, movieID.String()))
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
