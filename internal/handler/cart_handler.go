package handler

import (
	"net/http"

	"sweet-shop/internal/model"
	"sweet-shop/internal/storefront"
	"sweet-shop/pkg/apierror"
)

type CartHandler struct {
	store *storefront.Storefront
}

func NewCartHandler(store *storefront.Storefront) *CartHandler {
	return &CartHandler{store: store}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.store.Cart(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, view)
}

// AddItem answers 202 with the cart line: the line is in the cart, the
// purchase itself is still in flight.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var payload model.PurchaseRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.ID <= 0 {
		writeError(w, apierror.New("BAD_REQUEST", "id is required", "id", http.StatusBadRequest))
		return
	}

	line, err := h.store.Purchase(r.Context(), payload.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusAccepted, line)
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.store.Checkout(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, receipt)
}
