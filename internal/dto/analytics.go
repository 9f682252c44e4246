package dto

import (
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

// SeriesFilters echoes the normalized filters a series was computed for.
type SeriesFilters struct {
	Scope       string `json:"scope"`
	ScopeID     *int   `json:"scope_id"`
	Metric      string `json:"metric"`
	Granularity string `json:"granularity"`
	Range       string `json:"range"`
}

// SeriesPoint is one period of a sales series. Value repeats the field
// selected by the requested metric.
type SeriesPoint struct {
	Period       string `json:"period"`
	RevenueCents int64  `json:"revenue_cents"`
	Orders       int64  `json:"orders"`
	Units        int64  `json:"units"`
	Value        int64  `json:"value"`
}

type Timeseries struct {
	Filters          SeriesFilters `json:"filters"`
	StatusesIncluded []string      `json:"statuses_included"`
	Series           []SeriesPoint `json:"series"`
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type SeriesDefaults struct {
	Scope       string `json:"scope"`
	Metric      string `json:"metric"`
	Granularity string `json:"granularity"`
	Range       string `json:"range"`
}

type SeriesOptions struct {
	Scopes        []string `json:"scopes"`
	Metrics       []string `json:"metrics"`
	Granularities []string `json:"granularities"`
	Ranges        []string `json:"ranges"`
}

type Bootstrap struct {
	Categories []Category     `json:"categories"`
	Defaults   SeriesDefaults `json:"defaults"`
	Options    SeriesOptions  `json:"options"`
	Series     Timeseries     `json:"series"`
}

type CategoryProducts struct {
	Products []Product `json:"products"`
}

// SeriesValue picks the number charted for metric, revenue when unknown.
func SeriesValue(row entity.SalesSeriesRow, metric entity.MetricsMetric) int64 {
	switch metric {
	case entity.MetricsMetricUnits:
		return row.Units
	case entity.MetricsMetricOrders:
		return row.Orders
	default:
		return row.RevenueCents
	}
}

func ConvertEntitySeriesToDto(rows []entity.SalesSeriesRow, metric entity.MetricsMetric) []SeriesPoint {
	points := make([]SeriesPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, SeriesPoint{
			Period:       r.Period,
			RevenueCents: r.RevenueCents,
			Orders:       r.Orders,
			Units:        r.Units,
			Value:        SeriesValue(r, metric),
		})
	}
	return points
}

func ConvertEntityCategoriesToDto(categories []entity.Category) []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, Category{ID: c.ID, Name: c.Name})
	}
	return out
}

func ConvertEntityProductRefsToDto(products []entity.ProductRef) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		out = append(out, Product{ID: p.ID, Name: p.Name})
	}
	return out
}
