package service

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/utafrali/brands-faas/internal/domain"
)

// Filter returns the brands matching every filter in opts, in input order.
// Category and country match exactly, ignoring case. Search matches a
// substring of the lower-cased name or description. brands is not modified.
func Filter(brands []domain.Brand, opts domain.QueryOptions) []domain.Brand {
	matched := make([]domain.Brand, 0, len(brands))
	for _, b := range brands {
		if matches(b, opts) {
			matched = append(matched, b)
		}
	}
	return matched
}

func matches(b domain.Brand, opts domain.QueryOptions) bool {
	if opts.Category != "" && !strings.EqualFold(b.Category, opts.Category) {
		return false
	}
	if opts.Country != "" && !strings.EqualFold(b.Country, opts.Country) {
		return false
	}
	if opts.Search != "" {
		if !strings.Contains(strings.ToLower(b.Name), opts.Search) &&
			!strings.Contains(strings.ToLower(b.Description), opts.Search) {
			return false
		}
	}
	return true
}

// Sort returns a new slice ordered by sortBy. founded and id sort numerically;
// anything else sorts by name using English collation. The sort is stable.
func Sort(brands []domain.Brand, sortBy string) []domain.Brand {
	sorted := slices.Clone(brands)
	if sorted == nil {
		sorted = []domain.Brand{}
	}

	switch sortBy {
	case domain.SortByFounded:
		slices.SortStableFunc(sorted, func(a, b domain.Brand) int {
			return cmp.Compare(a.Founded, b.Founded)
		})
	case domain.SortByID:
		slices.SortStableFunc(sorted, func(a, b domain.Brand) int {
			return cmp.Compare(a.ID, b.ID)
		})
	default:
		// A Collator keeps scratch buffers and is not safe to share.
		col := collate.New(language.English)
		slices.SortStableFunc(sorted, func(a, b domain.Brand) int {
			return col.CompareString(a.Name, b.Name)
		})
	}
	return sorted
}
