package handler

import (
	"net/http"
	"strings"

	"sweet-shop/internal/storefront"
)

type CatalogHandler struct {
	store *storefront.Storefront
}

func NewCatalogHandler(store *storefront.Storefront) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// List returns the sweets matching q (name substring) and category.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	view, err := h.store.Catalog(r.Context(), query.Get("q"), strings.TrimSpace(query.Get("category")))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, view)
}

// Reload only schedules the refresh; the page learns the outcome from the
// event stream or the next List.
func (h *CatalogHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Reload(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusAccepted, map[string]any{"reloading": true})
}
