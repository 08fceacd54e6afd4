package admin

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"sweet-shop/internal/model"
	"sweet-shop/pkg/apierror"
)

// ParseDraft validates the admin form as typed and converts its numeric
// fields. Errors name the offending field in Details.
func ParseDraft(form model.DraftForm) (model.SweetDraft, error) {
	draft := model.SweetDraft{
		Name:     strings.TrimSpace(form.Name),
		Category: strings.TrimSpace(form.Category),
		ImageURL: strings.TrimSpace(form.ImageURL),
	}

	if draft.Name == "" {
		return model.SweetDraft{}, invalidField("name is required", "name")
	}
	if draft.Category == "" {
		return model.SweetDraft{}, invalidField("category is required", "category")
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(form.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return model.SweetDraft{}, invalidField("price must be a number", "price")
	}
	if price < 0 {
		return model.SweetDraft{}, invalidField("price cannot be negative", "price")
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(form.Quantity))
	if err != nil {
		return model.SweetDraft{}, invalidField("quantity must be a whole number", "quantity")
	}
	if quantity < 0 {
		return model.SweetDraft{}, invalidField("quantity cannot be negative", "quantity")
	}

	draft.Price = price
	draft.Quantity = quantity
	return draft, nil
}

func invalidField(message string, field string) error {
	return apierror.Wrap(model.ErrInvalidInput, "BAD_REQUEST", message, field, http.StatusBadRequest)
}
