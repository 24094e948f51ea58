package domain

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/utafrali/brands-faas/pkg/pagination"
)

// Query parameter names understood by the list endpoint.
const (
	ParamCategory = "category"
	ParamCountry  = "country"
	ParamSearch   = "search"
	ParamSortBy   = "sortBy"
	ParamLimit    = "limit"
	ParamOffset   = "offset"
)

// QueryOptions is the typed form of a list request. Empty strings mean the
// filter is not applied.
type QueryOptions struct {
	Category string
	Country  string
	// Search is already lower-cased.
	Search string
	SortBy string
	pagination.Params
}

// ParseQueryOptions interprets raw query parameters. It never fails: missing,
// malformed or out-of-range values fall back to their defaults (sortBy name,
// limit 10, offset 0). A positive maxLimit caps the page size.
func ParseQueryOptions(query map[string]string, maxLimit int) QueryOptions {
	opts := QueryOptions{
		Category: query[ParamCategory],
		Country:  query[ParamCountry],
		Search:   strings.ToLower(query[ParamSearch]),
		SortBy:   query[ParamSortBy],
		Params:   pagination.Parse(query[ParamLimit], query[ParamOffset], maxLimit),
	}
	if !IsValidSort(opts.SortBy) {
		opts.SortBy = SortByName
	}
	return opts
}

// AppliedFilters echoes the active filters back to the caller. Unset filters
// render as JSON null.
type AppliedFilters struct {
	Category *string `json:"category"`
	Country  *string `json:"country"`
	Search   *string `json:"search"`
}

// Applied returns the filters in their response form.
func (o QueryOptions) Applied() AppliedFilters {
	return AppliedFilters{
		Category: nonEmpty(o.Category),
		Country:  nonEmpty(o.Country),
		Search:   nonEmpty(o.Search),
	}
}

// CacheKey returns a canonical, escaped encoding of the options. It is
// stable across parameter order and ignores unknown query keys. Filter values
// keep their case because the list echoes them back in filters.applied.
func (o QueryOptions) CacheKey() string {
	return url.Values{
		ParamCategory: {o.Category},
		ParamCountry:  {o.Country},
		ParamSearch:   {o.Search},
		ParamSortBy:   {o.SortBy},
		ParamLimit:    {strconv.Itoa(o.Limit)},
		ParamOffset:   {strconv.Itoa(o.Offset)},
	}.Encode()
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
