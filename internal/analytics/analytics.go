// Package analytics serves the admin sales dashboard: it normalizes filters,
// reads sales series through the versioned cache and shapes the responses.
package analytics

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/cache"
	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/dto"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"golang.org/x/exp/slices"
)

type Config struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	// Timezone names the IANA zone calendar days are cut in, UTC when empty.
	Timezone string `mapstructure:"timezone"`
}

var (
	Scopes        = []entity.MetricsScope{entity.MetricsScopeOverall, entity.MetricsScopeCategory, entity.MetricsScopeProduct}
	Metrics       = []entity.MetricsMetric{entity.MetricsMetricRevenue, entity.MetricsMetricUnits, entity.MetricsMetricOrders}
	Granularities = []entity.MetricsGranularity{
		entity.MetricsGranularityDay,
		entity.MetricsGranularityWeek,
		entity.MetricsGranularityMonth,
		entity.MetricsGranularitySeason,
		entity.MetricsGranularityYear,
	}
	Ranges = []entity.MetricsRange{
		entity.MetricsRange7d,
		entity.MetricsRange15d,
		entity.MetricsRange30d,
		entity.MetricsRange60d,
		entity.MetricsRange90d,
		entity.MetricsRange180d,
		entity.MetricsRange360d,
	}

	Defaults = Filters{
		Scope:       entity.MetricsScopeOverall,
		Metric:      entity.MetricsMetricRevenue,
		Granularity: entity.MetricsGranularityDay,
		Range:       entity.MetricsRange90d,
	}
)

// RawFilters are the filter values as received from the caller.
type RawFilters struct {
	Scope       string
	ScopeID     string
	Metric      string
	Granularity string
	Range       string
}

// Filters are whitelisted filter values. ScopeID is nil for the overall scope.
type Filters struct {
	Scope       entity.MetricsScope
	ScopeID     *int
	Metric      entity.MetricsMetric
	Granularity entity.MetricsGranularity
	Range       entity.MetricsRange
}

func pick[T ~string](raw string, allowed []T, def T) T {
	v := T(strings.ToLower(strings.TrimSpace(raw)))
	if slices.Contains(allowed, v) {
		return v
	}
	return def
}

// Normalize never fails: unknown values fall back to Defaults and a
// non-integer scope id is dropped.
func Normalize(raw RawFilters) Filters {
	f := Filters{
		Scope:       pick(raw.Scope, Scopes, Defaults.Scope),
		Metric:      pick(raw.Metric, Metrics, Defaults.Metric),
		Granularity: pick(raw.Granularity, Granularities, Defaults.Granularity),
		Range:       pick(raw.Range, Ranges, Defaults.Range),
	}
	if f.Scope != entity.MetricsScopeOverall {
		if id, err := strconv.Atoi(strings.TrimSpace(raw.ScopeID)); err == nil {
			f.ScopeID = &id
		}
	}
	return f
}

func (f Filters) dto() dto.SeriesFilters {
	return dto.SeriesFilters{
		Scope:       string(f.Scope),
		ScopeID:     f.ScopeID,
		Metric:      string(f.Metric),
		Granularity: string(f.Granularity),
		Range:       string(f.Range),
	}
}

func (f Filters) key(period entity.TimeRange) string {
	id := "none"
	if f.ScopeID != nil {
		id = strconv.Itoa(*f.ScopeID)
	}
	return fmt.Sprintf("analytics:timeseries:%s:%s:%s:%s:%s:%s",
		f.Scope, id, f.Metric, f.Granularity, f.Range, period.To.Format(time.DateOnly))
}

type Service struct {
	series  dependency.Analytics
	catalog dependency.Catalog
	cache   *cache.Versioned
	loc     *time.Location
	now     func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used to place range windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(c *Config, series dependency.Analytics, catalog dependency.Catalog, vc *cache.Versioned, opts ...Option) (*Service, error) {
	loc := time.UTC
	if c.Timezone != "" {
		l, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return nil, fmt.Errorf("analytics timezone %q: %w", c.Timezone, err)
		}
		loc = l
	}
	s := &Service{
		series:  series,
		catalog: catalog,
		cache:   vc,
		loc:     loc,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *Service) query(f Filters) entity.SalesSeriesQuery {
	return entity.SalesSeriesQuery{
		Scope:       f.Scope,
		ScopeID:     f.ScopeID,
		Granularity: f.Granularity,
		Period:      f.Range.Window(s.now().In(s.loc)),
	}
}

// Timeseries returns the sales series for raw filters.
func (s *Service) Timeseries(ctx context.Context, raw RawFilters) (*dto.Timeseries, error) {
	return s.timeseries(ctx, Normalize(raw))
}

func (s *Service) timeseries(ctx context.Context, f Filters) (*dto.Timeseries, error) {
	q := s.query(f)
	return cache.ComputeIfStale(ctx, s.cache, f.key(q.Period),
		func(ctx context.Context) (string, error) {
			return s.series.SalesSeriesVersion(ctx, q)
		},
		func(ctx context.Context) (*dto.Timeseries, error) {
			rows, err := s.series.SalesSeries(ctx, q)
			if err != nil {
				return nil, err
			}
			return &dto.Timeseries{
				Filters:          f.dto(),
				StatusesIncluded: entity.RevenueStatusStrings(),
				Series:           dto.ConvertEntitySeriesToDto(rows, f.Metric),
			}, nil
		},
		0,
	)
}

func options() dto.SeriesOptions {
	o := dto.SeriesOptions{}
	for _, v := range Scopes {
		o.Scopes = append(o.Scopes, string(v))
	}
	for _, v := range Metrics {
		o.Metrics = append(o.Metrics, string(v))
	}
	for _, v := range Granularities {
		o.Granularities = append(o.Granularities, string(v))
	}
	for _, v := range Ranges {
		o.Ranges = append(o.Ranges, string(v))
	}
	return o
}

// Bootstrap returns everything the dashboard needs on first paint. It is
// versioned by the categories and by the default series, so it refreshes
// when either changes.
func (s *Service) Bootstrap(ctx context.Context) (*dto.Bootstrap, error) {
	q := s.query(Defaults)
	key := "analytics:bootstrap:" + q.Period.To.Format(time.DateOnly)
	return cache.ComputeIfStale(ctx, s.cache, key,
		func(ctx context.Context) (string, error) {
			cv, err := s.catalog.CategoriesVersion(ctx)
			if err != nil {
				return "", err
			}
			sv, err := s.series.SalesSeriesVersion(ctx, q)
			if err != nil {
				return "", err
			}
			return cv + "|" + sv, nil
		},
		func(ctx context.Context) (*dto.Bootstrap, error) {
			categories, err := s.catalog.GetCategories(ctx)
			if err != nil {
				return nil, err
			}
			series, err := s.timeseries(ctx, Defaults)
			if err != nil {
				return nil, err
			}
			return &dto.Bootstrap{
				Categories: dto.ConvertEntityCategoriesToDto(categories),
				Defaults: dto.SeriesDefaults{
					Scope:       string(Defaults.Scope),
					Metric:      string(Defaults.Metric),
					Granularity: string(Defaults.Granularity),
					Range:       string(Defaults.Range),
				},
				Options: options(),
				Series:  *series,
			}, nil
		},
		0,
	)
}

// CategoryProducts lists products of a category, all products when
// categoryID is nil.
func (s *Service) CategoryProducts(ctx context.Context, categoryID *int) (*dto.CategoryProducts, error) {
	key := "analytics:category-products:all"
	if categoryID != nil {
		key = "analytics:category-products:" + strconv.Itoa(*categoryID)
	}
	return cache.ComputeIfStale(ctx, s.cache, key,
		func(ctx context.Context) (string, error) {
			return s.catalog.ProductsVersion(ctx, categoryID)
		},
		func(ctx context.Context) (*dto.CategoryProducts, error) {
			products, err := s.catalog.GetProductsForCategory(ctx, categoryID)
			if err != nil {
				return nil, err
			}
			return &dto.CategoryProducts{Products: dto.ConvertEntityProductRefsToDto(products)}, nil
		},
		0,
	)
}
