package pagination

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Defaults applied when a request omits or garbles its paging parameters.
const (
	DefaultLimit  = 10
	DefaultOffset = 0
)

// Params holds limit/offset paging parameters extracted from a query string.
type Params struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// DefaultParams returns the documented paging defaults.
func DefaultParams() Params {
	return Params{
		Limit:  DefaultLimit,
		Offset: DefaultOffset,
	}
}

// Parse converts raw limit/offset strings into Params. Each value is read
// from its leading integer, so "5abc" is 5, "3.7" is 3 and " 4" is 4. Values
// without one, a limit below 1 and a negative offset fall back to the
// defaults. When maxLimit is positive, larger limits are clamped to it; zero
// leaves limit unbounded.
func Parse(limit, offset string, maxLimit int) Params {
	p := DefaultParams()

	if v, ok := leadingInt(limit); ok && v > 0 {
		p.Limit = v
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}

	if v, ok := leadingInt(offset); ok && v >= 0 {
		p.Offset = v
	}

	return p
}

// leadingInt reads an optionally signed run of ASCII digits after leading
// whitespace and ignores the rest. Out-of-range values saturate.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	v, err := strconv.Atoi(s[:end])
	if err != nil {
		if s[0] == '-' {
			return math.MinInt, true
		}
		return math.MaxInt, true
	}
	return v, true
}

// Slice returns items[offset : offset+limit] clamped to the bounds of items.
// An offset past the end or a negative limit yields an empty, non-nil page.
func Slice[T any](items []T, p Params) []T {
	total := len(items)

	start := p.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}

	end := total
	if p.Limit < total-start {
		end = start + max(p.Limit, 0)
	}

	page := make([]T, end-start)
	copy(page, items[start:end])
	return page
}

// Meta describes a page within a larger result set.
type Meta struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Count   int  `json:"count"`
	HasMore bool `json:"hasMore"`
}

// NewMeta computes paging metadata for a page of count items out of total.
// HasMore is offset+limit < total, evaluated without overflowing on huge limits.
func NewMeta(total, count int, p Params) Meta {
	return Meta{
		Total:   total,
		Limit:   p.Limit,
		Offset:  p.Offset,
		Count:   count,
		HasMore: p.Offset < total && p.Limit < total-p.Offset,
	}
}

// Page slices items and computes its metadata in one step.
func Page[T any](items []T, p Params) ([]T, Meta) {
	page := Slice(items, p)
	return page, NewMeta(len(items), len(page), p)
}
