package handler

import (
	"net/http"

	"sweet-shop/internal/storefront"
)

type NoticeHandler struct {
	store *storefront.Storefront
}

func NewNoticeHandler(store *storefront.Storefront) *NoticeHandler {
	return &NoticeHandler{store: store}
}

// List drains the pending notices; each is shown once.
func (h *NoticeHandler) List(w http.ResponseWriter, r *http.Request) {
	notices, err := h.store.Notices(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, notices)
}
