package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/brands-faas/pkg/pagination"
	"github.com/utafrali/brands-faas/pkg/validator"
)

func TestParseQueryOptions_Defaults(t *testing.T) {
	opts := ParseQueryOptions(nil, 0)

	assert.Equal(t, QueryOptions{
		SortBy: SortByName,
		Params: pagination.Params{Limit: 10, Offset: 0},
	}, opts)
}

func TestParseQueryOptions(t *testing.T) {
	tests := []struct {
		name     string
		query    map[string]string
		maxLimit int
		want     QueryOptions
	}{
		{
			name:  "all fields",
			query: map[string]string{"category": "Technology", "country": "usa", "search": "SPORT", "sortBy": "founded", "limit": "3", "offset": "2"},
			want:  QueryOptions{Category: "Technology", Country: "usa", Search: "sport", SortBy: SortByFounded, Params: pagination.Params{Limit: 3, Offset: 2}},
		},
		{
			name:  "unknown sort falls back to name",
			query: map[string]string{"sortBy": "price"},
			want:  QueryOptions{SortBy: SortByName, Params: pagination.Params{Limit: 10}},
		},
		{
			name:  "sort is case sensitive",
			query: map[string]string{"sortBy": "Founded"},
			want:  QueryOptions{SortBy: SortByName, Params: pagination.Params{Limit: 10}},
		},
		{
			name:  "garbage paging",
			query: map[string]string{"limit": "abc", "offset": "xyz"},
			want:  QueryOptions{SortBy: SortByName, Params: pagination.Params{Limit: 10}},
		},
		{
			name:  "zero and negative paging",
			query: map[string]string{"limit": "0", "offset": "-4"},
			want:  QueryOptions{SortBy: SortByName, Params: pagination.Params{Limit: 10}},
		},
		{
			name:  "leading integer is used",
			query: map[string]string{"limit": "5abc", "offset": "2px"},
			want:  QueryOptions{SortBy: SortByName, Params: pagination.Params{Limit: 5, Offset: 2}},
		},
		{
			name:  "fraction is truncated",
			query: map[string]string{"limit": "3.7", "offset": "1.9"},
			want:  QueryOptions{SortBy: SortByName, Params: pagination.Params{Limit: 3, Offset: 1}},
		},
		{
			name:  "surrounding whitespace and sign",
			query: map[string]string{"limit": " 4", "offset": "+2 "},
			want:  QueryOptions{SortBy: SortByName, Params: pagination.Params{Limit: 4, Offset: 2}},
		},
		{
			name:     "max limit clamps",
			query:    map[string]string{"limit": "500"},
			maxLimit: 50,
			want:     QueryOptions{SortBy: SortByName, Params: pagination.Params{Limit: 50}},
		},
		{
			name:     "unbounded when max limit is zero",
			query:    map[string]string{"limit": "500"},
			maxLimit: 0,
			want:     QueryOptions{SortBy: SortByName, Params: pagination.Params{Limit: 500}},
		},
		{
			name:  "sort by id",
			query: map[string]string{"sortBy": "id", "ignored": "x"},
			want:  QueryOptions{SortBy: SortByID, Params: pagination.Params{Limit: 10}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseQueryOptions(tt.query, tt.maxLimit))
		})
	}
}

func TestQueryOptions_Applied(t *testing.T) {
	opts := ParseQueryOptions(map[string]string{"category": "Technology", "search": "Nike"}, 0)

	b, err := json.Marshal(opts.Applied())
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":"Technology","country":null,"search":"nike"}`, string(b))
}

func TestQueryOptions_CacheKey(t *testing.T) {
	a := ParseQueryOptions(map[string]string{"category": "Technology", "limit": "3"}, 0)
	b := ParseQueryOptions(map[string]string{"limit": "3", "category": "Technology", "utm": "x"}, 0)
	c := ParseQueryOptions(map[string]string{"category": "Technology", "limit": "4"}, 0)
	lower := ParseQueryOptions(map[string]string{"category": "technology", "limit": "3"}, 0)

	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())
	assert.NotEqual(t, a.CacheKey(), lower.CacheKey(), "applied filters are echoed with their case")
	assert.Equal(t, "category=Technology&country=&limit=3&offset=0&search=&sortBy=name", a.CacheKey())
}

func TestQueryOptions_CacheKeyEscapesValues(t *testing.T) {
	a := QueryOptions{Category: "a&country=b", SortBy: SortByName}
	b := QueryOptions{Category: "a", Country: "b&country=", SortBy: SortByName}

	assert.NotEqual(t, a.CacheKey(), b.CacheKey())
	assert.Contains(t, a.CacheKey(), "category=a%26country%3Db")
}

func TestIsValidSort(t *testing.T) {
	for _, s := range ValidSortOptions() {
		assert.True(t, IsValidSort(s), s)
	}
	assert.False(t, IsValidSort(""))
	assert.False(t, IsValidSort("relevance"))
}

func TestBrand_Validation(t *testing.T) {
	valid := Brand{ID: 1, Name: "Nike", Category: "Sports & Apparel", Country: "USA", Founded: 1964, Description: "Athletic footwear and apparel", Website: "https://www.nike.com"}
	require.NoError(t, validator.Validate(valid))

	invalid := valid
	invalid.ID = 0
	invalid.Website = "nike"
	err := validator.Validate(invalid)
	require.Error(t, err)

	var verr *validator.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields(), 2)
}

func TestHeaderMenu(t *testing.T) {
	menu := HeaderMenu()
	require.Len(t, menu, 5)
	assert.Equal(t, MenuItem{ID: 1, Title: "Home", URL: "/", Icon: "home"}, menu[0])
	assert.Equal(t, MenuItem{ID: 5, Title: "Contact", URL: "/contact", Icon: "contact"}, menu[4])

	menu[0].Title = "changed"
	assert.Equal(t, "Home", HeaderMenu()[0].Title, "callers get a copy")
}
