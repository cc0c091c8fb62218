package api

import (
	"context"
	"net/http"

	"github.com/okian/marquee/internal/domain/fault"
	"github.com/okian/marquee/internal/domain/model"
)

// Cataloger builds a user's catalog.
type Cataloger interface {
	Catalog(ctx context.Context, userID model.ID) ([]model.CatalogEntry, error)
}

// CatalogHandler serves the catalog service.
type CatalogHandler struct {
	catalog Cataloger
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(c Cataloger) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// HandleGetCatalog handles GET /catalog/{userId}.
func (h *CatalogHandler) HandleGetCatalog(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_catalog"
	userID, err := pathID(r, "userId", op, fault.ResourceUser)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := h.catalog.Catalog(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []model.CatalogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
