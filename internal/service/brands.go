package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/utafrali/brands-faas/pkg/errors"
	"github.com/utafrali/brands-faas/pkg/pagination"
	"github.com/utafrali/brands-faas/pkg/tracing"

	"github.com/utafrali/brands-faas/internal/catalog"
	"github.com/utafrali/brands-faas/internal/domain"
)

// ListCache stores rendered list payloads keyed by QueryOptions.CacheKey.
// A miss is reported as an error wrapping apperrors.ErrNotFound.
type ListCache interface {
	GetList(ctx context.Context, key string) (*domain.BrandList, error)
	SetList(ctx context.Context, key string, list *domain.BrandList) error
}

// BrandService runs the filter, sort and paginate pipeline over a catalog.
type BrandService struct {
	catalog *catalog.Catalog
	cache   ListCache
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewBrandService creates a brand service. cache may be nil.
func NewBrandService(c *catalog.Catalog, cache ListCache, logger *slog.Logger) *BrandService {
	return &BrandService{
		catalog: c,
		cache:   cache,
		logger:  logger,
		tracer:  tracing.Tracer("github.com/utafrali/brands-faas/internal/service"),
	}
}

// List returns one page of brands for opts. Cache failures are logged and
// otherwise ignored: the catalog is always able to answer.
func (s *BrandService) List(ctx context.Context, opts domain.QueryOptions) *domain.BrandList {
	ctx, span := s.tracer.Start(ctx, "brands.list", trace.WithAttributes(
		attribute.String("brands.sort_by", opts.SortBy),
		attribute.Int("brands.limit", opts.Limit),
		attribute.Int("brands.offset", opts.Offset),
	))
	defer span.End()

	key := opts.CacheKey()
	if s.cache != nil {
		cached, err := s.cache.GetList(ctx, key)
		switch {
		case err == nil:
			span.SetAttributes(attribute.Bool("brands.cache_hit", true))
			cached.Filters.Applied = opts.Applied()
			return cached
		case !errors.Is(err, apperrors.ErrNotFound):
			s.logger.WarnContext(ctx, "brand list cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	filtered := Filter(s.catalog.All(), opts)
	sorted := Sort(filtered, opts.SortBy)
	page, meta := pagination.Page(sorted, opts.Params)

	list := &domain.BrandList{
		Brands:     page,
		Pagination: meta,
		Filters: domain.Filters{
			Applied: opts.Applied(),
			Available: domain.AvailableFilters{
				Categories: s.catalog.Categories(),
				Countries:  s.catalog.Countries(),
			},
		},
	}
	span.SetAttributes(
		attribute.Bool("brands.cache_hit", false),
		attribute.Int("brands.total", meta.Total),
	)

	if s.cache != nil {
		if err := s.cache.SetList(ctx, key, list); err != nil {
			s.logger.WarnContext(ctx, "brand list cache write failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	return list
}

// Get looks up a brand by its raw id path segment. Non-numeric and unknown
// ids both yield an apperrors.ErrNotFound error.
func (s *BrandService) Get(ctx context.Context, rawID string) (domain.Brand, error) {
	_, span := s.tracer.Start(ctx, "brands.get", trace.WithAttributes(
		attribute.String("brands.id", rawID),
	))
	defer span.End()

	id, err := strconv.Atoi(rawID)
	if err != nil {
		return domain.Brand{}, apperrors.NotFound("brand", rawID)
	}
	b, ok := s.catalog.FindByID(id)
	if !ok {
		return domain.Brand{}, apperrors.NotFound("brand", rawID)
	}
	return b, nil
}

// Categories returns the distinct catalog categories.
func (s *BrandService) Categories() []string {
	return s.catalog.Categories()
}

// Countries returns the distinct catalog countries.
func (s *BrandService) Countries() []string {
	return s.catalog.Countries()
}
