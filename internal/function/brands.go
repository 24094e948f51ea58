package function

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/utafrali/brands-faas/pkg/errors"
	"github.com/utafrali/brands-faas/pkg/httputil"
	"github.com/utafrali/brands-faas/pkg/logger"

	"github.com/utafrali/brands-faas/internal/domain"
	"github.com/utafrali/brands-faas/internal/faas"
	"github.com/utafrali/brands-faas/internal/service"
)

// BrandsName is the deployed name of the brands function.
const BrandsName = "brands-list"

// Brands is the brands lookup function. Paths are relative to its mount
// point, e.g. "/brands/3" or "/categories".
type Brands struct {
	svc  *service.BrandService
	opts options
}

// NewBrands creates the brands function backed by svc.
func NewBrands(svc *service.BrandService, opts ...Option) *Brands {
	return &Brands{svc: svc, opts: newOptions(opts)}
}

func (b *Brands) Name() string { return BrandsName }

// Handle routes ev to one of the brand endpoints. It never panics: any
// failure inside an endpoint is answered with a 500 failure envelope.
func (b *Brands) Handle(ctx context.Context, ev *faas.Event) (res faas.Result) {
	now := b.opts.now()

	defer func() {
		if rec := recover(); rec != nil {
			err := apperrors.FromPanic(rec)
			logger.WithContext(ctx, b.opts.logger).ErrorContext(ctx, "brands endpoint failed",
				slog.String("path", ev.Path),
				slog.String("error", err.Error()),
			)
			res = failure(now, http.StatusInternalServerError, httputil.Fail(now, err.Error()))
		}
	}()

	switch path := ev.Path; {
	case path == "/" || path == "/brands":
		return b.list(ctx, ev, now)
	case strings.HasPrefix(path, "/brands/"):
		return b.brand(ctx, brandID(path), now)
	case path == "/categories":
		categories := b.svc.Categories()
		return respond(now, http.StatusOK, httputil.Success(now, categoriesData{
			Categories: categories,
			Count:      len(categories),
		}))
	case path == "/countries":
		countries := b.svc.Countries()
		return respond(now, http.StatusOK, httputil.Success(now, countriesData{
			Countries: countries,
			Count:     len(countries),
		}))
	case path == "/header-menu":
		items := domain.HeaderMenu()
		return respond(now, http.StatusOK, httputil.Success(now, menuData{
			MenuItems: items,
			Count:     len(items),
		}))
	default:
		return respond(now, http.StatusOK, newIndex(now))
	}
}

func (b *Brands) list(ctx context.Context, ev *faas.Event, now time.Time) faas.Result {
	opts := domain.ParseQueryOptions(ev.Query, b.opts.maxLimit)
	env := httputil.Success(now, b.svc.List(ctx, opts))
	env.Examples = listExamples{
		FilterByCategory: "/api/brands?category=Technology",
		FilterByCountry:  "/api/brands?country=USA",
		Search:           "/api/brands?search=sport",
		Pagination:       "/api/brands?limit=5&offset=0",
		Combined:         "/api/brands?category=Technology&country=USA&limit=3",
		Sort:             "/api/brands?sortBy=founded",
	}
	return respond(now, http.StatusOK, env)
}

func (b *Brands) brand(ctx context.Context, rawID string, now time.Time) faas.Result {
	brand, err := b.svc.Get(ctx, rawID)
	if err != nil {
		f := httputil.Fail(now, "Brand not found")
		f.Message = fmt.Sprintf("No brand found with ID %s", rawID)
		return failure(now, http.StatusNotFound, f)
	}
	return respond(now, http.StatusOK, httputil.Success(now, brandData{Brand: brand}))
}

// brandID returns the second path segment: "/brands/7/extra" yields "7".
func brandID(path string) string {
	segments := strings.Split(path, "/")
	if len(segments) < 3 {
		return ""
	}
	return segments[2]
}

type brandData struct {
	Brand domain.Brand `json:"brand"`
}

type categoriesData struct {
	Categories []string `json:"categories"`
	Count      int      `json:"count"`
}

type countriesData struct {
	Countries []string `json:"countries"`
	Count     int      `json:"count"`
}

type menuData struct {
	MenuItems []domain.MenuItem `json:"menuItems"`
	Count     int               `json:"count"`
}

type listExamples struct {
	FilterByCategory string `json:"filterByCategory"`
	FilterByCountry  string `json:"filterByCountry"`
	Search           string `json:"search"`
	Pagination       string `json:"pagination"`
	Combined         string `json:"combined"`
	Sort             string `json:"sort"`
}

// index is the body served for paths the function does not know.
type index struct {
	Success            bool           `json:"success"`
	Message            string         `json:"message"`
	Timestamp          string         `json:"timestamp"`
	AvailableEndpoints indexEndpoints `json:"availableEndpoints"`
	Examples           indexExamples  `json:"examples"`
}

type indexEndpoints struct {
	Brands     string `json:"GET /api/brands"`
	Brand      string `json:"GET /api/brands/:id"`
	Categories string `json:"GET /api/categories"`
	Countries  string `json:"GET /api/countries"`
	HeaderMenu string `json:"GET /api/header-menu"`
}

type indexExamples struct {
	AllBrands        string `json:"All brands"`
	TechnologyBrands string `json:"Technology brands"`
	USABrands        string `json:"USA brands"`
	SearchNike       string `json:"Search Nike"`
	BrandByID        string `json:"Brand by ID"`
	Categories       string `json:"Categories"`
	Countries        string `json:"Countries"`
}

func newIndex(now time.Time) index {
	return index{
		Success:   true,
		Message:   "OpenFaaS Brands API",
		Timestamp: httputil.Timestamp(now),
		AvailableEndpoints: indexEndpoints{
			Brands:     "Get all brands with filtering",
			Brand:      "Get specific brand by ID",
			Categories: "Get all available categories",
			Countries:  "Get all available countries",
			HeaderMenu: "Get header menu items",
		},
		Examples: indexExamples{
			AllBrands:        "/api/brands",
			TechnologyBrands: "/api/brands?category=Technology",
			USABrands:        "/api/brands?country=USA",
			SearchNike:       "/api/brands?search=nike",
			BrandByID:        "/api/brands/1",
			Categories:       "/api/categories",
			Countries:        "/api/countries",
		},
	}
}
