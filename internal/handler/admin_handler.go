package handler

import (
	"net/http"

	"sweet-shop/internal/admin"
	"sweet-shop/internal/model"
	"sweet-shop/internal/storefront"
)

type AdminHandler struct {
	store *storefront.Storefront
}

func NewAdminHandler(store *storefront.Storefront) *AdminHandler {
	return &AdminHandler{store: store}
}

func (h *AdminHandler) AddSweet(w http.ResponseWriter, r *http.Request) {
	var form model.DraftForm
	if !decodeBody(w, r, &form) {
		return
	}

	draft, err := admin.ParseDraft(form)
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := h.store.AddSweet(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, created)
}
