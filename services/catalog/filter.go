package catalog

import (
	"sort"
	"strings"

	"homeservice/models"
)

// ValidSort reports whether sort is empty or a known ordering.
func ValidSort(s string) bool {
	switch s {
	case "", models.SortPriceAsc, models.SortPriceDesc, models.SortRating, models.SortNewest:
		return true
	}
	return false
}

// Apply filters and orders services by q. The input slice is not modified.
func Apply(services []models.Service, q models.ServiceQuery) []models.Service {
	category := strings.ToLower(strings.TrimSpace(q.Category))
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]models.Service, 0, len(services))
	for _, s := range services {
		if category != "" && strings.ToLower(s.Category) != category {
			continue
		}
		if search != "" && !matches(s, search) {
			continue
		}
		if q.MinPrice != nil && s.BasePrice.LessThan(q.MinPrice.Decimal) {
			continue
		}
		if q.MaxPrice != nil && s.BasePrice.GreaterThan(q.MaxPrice.Decimal) {
			continue
		}
		out = append(out, s)
	}

	switch q.Sort {
	case models.SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].BasePrice.LessThan(out[j].BasePrice.Decimal) })
	case models.SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].BasePrice.GreaterThan(out[j].BasePrice.Decimal) })
	case models.SortRating:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].AverageRating != out[j].AverageRating {
				return out[i].AverageRating > out[j].AverageRating
			}
			return out[i].RatingCount > out[j].RatingCount
		})
	case models.SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out
}

func matches(s models.Service, term string) bool {
	return strings.Contains(strings.ToLower(s.Title), term) ||
		strings.Contains(strings.ToLower(s.Description), term) ||
		strings.Contains(strings.ToLower(s.Category), term)
}
