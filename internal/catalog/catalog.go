package catalog

import (
	"fmt"
	"slices"
	"sync"

	apperrors "github.com/utafrali/brands-faas/pkg/errors"
	"github.com/utafrali/brands-faas/pkg/validator"

	"github.com/utafrali/brands-faas/internal/domain"
)

// Catalog is an immutable, ordered set of brands. Every accessor hands out
// copies, so a Catalog is safe for concurrent use without locking.
type Catalog struct {
	brands     []domain.Brand
	byID       map[int]int
	categories []string
	countries  []string
}

// New builds a catalog from records in declaration order. Records must pass
// validation and carry unique ids.
func New(records []domain.Brand) (*Catalog, error) {
	c := &Catalog{
		brands: make([]domain.Brand, len(records)),
		byID:   make(map[int]int, len(records)),
	}
	copy(c.brands, records)

	for i, b := range c.brands {
		if err := validator.Validate(b); err != nil {
			return nil, fmt.Errorf("brand at index %d: %w", i, err)
		}
		if _, dup := c.byID[b.ID]; dup {
			return nil, apperrors.InvalidInput(fmt.Sprintf("duplicate brand id %d", b.ID))
		}
		c.byID[b.ID] = i
	}

	c.categories = uniqueSorted(c.brands, func(b domain.Brand) string { return b.Category })
	c.countries = uniqueSorted(c.brands, func(b domain.Brand) string { return b.Country })
	return c, nil
}

// Default returns the built-in brand catalog. It is constructed once.
var Default = sync.OnceValue(func() *Catalog {
	c, err := New(builtin)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
})

// All returns a copy of every brand in declaration order.
func (c *Catalog) All() []domain.Brand {
	return slices.Clone(c.brands)
}

// Len returns the number of brands.
func (c *Catalog) Len() int {
	return len(c.brands)
}

// FindByID returns the brand with the given id.
func (c *Catalog) FindByID(id int) (domain.Brand, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Brand{}, false
	}
	return c.brands[i], true
}

// Categories returns the distinct categories in ascending byte order.
func (c *Catalog) Categories() []string {
	return slices.Clone(c.categories)
}

// Countries returns the distinct countries in ascending byte order.
func (c *Catalog) Countries() []string {
	return slices.Clone(c.countries)
}

func uniqueSorted(brands []domain.Brand, field func(domain.Brand) string) []string {
	out := make([]string, 0, len(brands))
	for _, b := range brands {
		out = append(out, field(b))
	}
	slices.Sort(out)
	return slices.Compact(out)
}
