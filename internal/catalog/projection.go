// Package catalog projects the inventory snapshot into what the page shows.
package catalog

import (
	"strings"

	"sweet-shop/internal/model"
)

// Visible keeps the sweets whose name contains searchText, ignoring case,
// and whose category equals categoryFilter unless the filter is ALL or
// empty. Snapshot order is kept.
func Visible(snapshot []model.Sweet, searchText string, categoryFilter string) []model.Sweet {
	needle := strings.ToLower(searchText)
	allCategories := categoryFilter == "" || categoryFilter == model.CategoryAll

	out := make([]model.Sweet, 0, len(snapshot))
	for _, s := range snapshot {
		if !strings.Contains(strings.ToLower(s.Name), needle) {
			continue
		}
		if !allCategories && s.Category != categoryFilter {
			continue
		}
		out = append(out, s)
	}

	return out
}

// Categories lists ALL followed by each distinct category in first-seen order.
func Categories(snapshot []model.Sweet) []string {
	seen := map[string]struct{}{}
	out := []string{model.CategoryAll}
	for _, s := range snapshot {
		if s.Category == "" {
			continue
		}
		if _, ok := seen[s.Category]; ok {
			continue
		}
		seen[s.Category] = struct{}{}
		out = append(out, s.Category)
	}

	return out
}
