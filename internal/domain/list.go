package domain

import "github.com/utafrali/brands-faas/pkg/pagination"

// BrandList is the data payload of a list response.
type BrandList struct {
	Brands     []Brand         `json:"brands"`
	Pagination pagination.Meta `json:"pagination"`
	Filters    Filters         `json:"filters"`
}

// Filters reports which filters were applied and which values exist.
type Filters struct {
	Applied   AppliedFilters   `json:"applied"`
	Available AvailableFilters `json:"available"`
}

// AvailableFilters lists the distinct values of the whole catalog, not just
// the current page.
type AvailableFilters struct {
	Categories []string `json:"categories"`
	Countries  []string `json:"countries"`
}
