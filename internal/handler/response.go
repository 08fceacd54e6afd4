package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"sweet-shop/internal/model"
	"sweet-shop/internal/storefront"
	"sweet-shop/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	hasAPIErr := errors.As(err, &apiErr)

	// Storefront classifications win over the upstream status they wrap.
	if errors.Is(err, model.ErrInvalidCredentials) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid credentials"
	} else if errors.Is(err, model.ErrAuthFailure) {
		status = http.StatusBadGateway
		body.Code = "AUTH_FAILED"
		body.Message = "Login failed"
		body.Details = upstreamMessage(apiErr, hasAPIErr)
	} else if errors.Is(err, model.ErrMutationFailure) {
		status = http.StatusBadGateway
		body.Code = "MUTATION_FAILED"
		body.Message = "The sweets service rejected the change"
		body.Details = upstreamMessage(apiErr, hasAPIErr)
	} else if hasAPIErr {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrNoSession) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Login required"
	} else if errors.Is(err, model.ErrForbidden) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	} else if errors.Is(err, model.ErrSweetNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Sweet not found"
	} else if errors.Is(err, model.ErrOutOfStock) {
		status = http.StatusConflict
		body.Code = "OUT_OF_STOCK"
		body.Message = "Sweet is out of stock"
	} else if errors.Is(err, model.ErrEmptyCart) {
		status = http.StatusConflict
		body.Code = "EMPTY_CART"
		body.Message = "Cart is empty"
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
	} else if errors.Is(err, storefront.ErrClosed) {
		status = http.StatusServiceUnavailable
		body.Code = "UNAVAILABLE"
		body.Message = "Storefront is shutting down"
	} else {
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}

func upstreamMessage(apiErr *apierror.APIError, ok bool) string {
	if !ok {
		return ""
	}
	return apiErr.Message
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return false
	}
	return true
}

const maxBodyBytes = 64 << 10
