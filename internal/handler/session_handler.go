package handler

import (
	"net/http"

	"sweet-shop/internal/model"
	"sweet-shop/internal/storefront"
)

type SessionHandler struct {
	store *storefront.Storefront
}

func NewSessionHandler(store *storefront.Storefront) *SessionHandler {
	return &SessionHandler{store: store}
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	info, err := h.store.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, info)
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"logged_out": true})
}

func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.store.Session(r.Context()))
}
