package store

import (
	"context"
	"fmt"

	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

type analyticsStore struct {
	*MYSQLStore
}

// Analytics returns an object implementing the sales aggregation interface.
func (ms *MYSQLStore) Analytics() dependency.Analytics {
	return &analyticsStore{MYSQLStore: ms}
}

type periodRevenueRow struct {
	Bucket  string          `db:"bucket"`
	Revenue decimal.Decimal `db:"revenue"`
	Orders  int64           `db:"orders"`
}

type periodUnitsRow struct {
	Bucket string `db:"bucket"`
	Units  int64  `db:"units"`
}

type periodScopedRow struct {
	Bucket  string          `db:"bucket"`
	Revenue decimal.Decimal `db:"revenue"`
	Units   int64           `db:"units"`
	Orders  int64           `db:"orders"`
}

// SalesSeries runs the grouped queries for q. The overall scope reads revenue
// and order counts from orders and merges units from order items; category
// and product scopes read everything from order items.
func (ms *analyticsStore) SalesSeries(ctx context.Context, q entity.SalesSeriesQuery) ([]entity.SalesSeriesRow, error) {
	switch q.Scope {
	case entity.MetricsScopeCategory, entity.MetricsScopeProduct:
		return ms.scopedSeries(ctx, q)
	default:
		return ms.overallSeries(ctx, q)
	}
}

func (ms *analyticsStore) seriesParams(q entity.SalesSeriesQuery) map[string]any {
	params := map[string]any{
		"statuses": entity.RevenueStatusStrings(),
		"from":     ms.dialect.timeArg(q.Period.From),
		"to":       ms.dialect.timeArg(q.Period.To),
	}
	if q.ScopeID != nil {
		params["scopeId"] = *q.ScopeID
	}
	return params
}

func (ms *analyticsStore) overallSeries(ctx context.Context, q entity.SalesSeriesQuery) ([]entity.SalesSeriesRow, error) {
	bucket := periodExpr(ms.dialect, q.Granularity, "o.created_at")
	params := ms.seriesParams(q)
	createdAt := ms.dialect.timeColumn("o.created_at")

	revenueQuery := fmt.Sprintf(`
		SELECT %s AS bucket,
			COALESCE(SUM(%s), 0) AS revenue,
			COUNT(*) AS orders
		FROM orders o
		WHERE o.status IN (:statuses)
		AND %s BETWEEN :from AND :to
		GROUP BY bucket
		ORDER BY bucket
	`, bucket, ms.money.Orders.column("o", "total"), createdAt)

	revenueRows, err := QueryListNamed[periodRevenueRow](ctx, ms.DB(), revenueQuery, params)
	if err != nil {
		return nil, fmt.Errorf("revenue by period: %w", err)
	}

	unitsQuery := fmt.Sprintf(`
		SELECT %s AS bucket,
			COALESCE(SUM(oi.quantity), 0) AS units
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status IN (:statuses)
		AND %s BETWEEN :from AND :to
		GROUP BY bucket
	`, bucket, createdAt)

	unitsRows, err := QueryListNamed[periodUnitsRow](ctx, ms.DB(), unitsQuery, params)
	if err != nil {
		return nil, fmt.Errorf("units by period: %w", err)
	}

	return mergeUnits(revenueRows, unitsRows, ms.money.Orders), nil
}

// mergeUnits attaches unit sums to revenue rows by period key. Periods
// without a units row get zero units; units rows without a revenue row are
// dropped since the orders table is the source of truth for periods.
func mergeUnits(revenue []periodRevenueRow, units []periodUnitsRow, f MoneyFormat) []entity.SalesSeriesRow {
	unitsByBucket := make(map[string]int64, len(units))
	for _, u := range units {
		unitsByBucket[u.Bucket] = u.Units
	}

	series := make([]entity.SalesSeriesRow, 0, len(revenue))
	for _, r := range revenue {
		series = append(series, entity.SalesSeriesRow{
			Period:       r.Bucket,
			RevenueCents: f.ToCents(r.Revenue),
			Orders:       r.Orders,
			Units:        unitsByBucket[r.Bucket],
		})
	}
	return series
}

func (ms *analyticsStore) scopedSeries(ctx context.Context, q entity.SalesSeriesQuery) ([]entity.SalesSeriesRow, error) {
	join, filter := ms.scopeClauses(q)
	query := fmt.Sprintf(`
		SELECT %s AS bucket,
			COALESCE(SUM(%s), 0) AS revenue,
			COALESCE(SUM(oi.quantity), 0) AS units,
			COUNT(DISTINCT o.id) AS orders
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		%s
		WHERE o.status IN (:statuses)
		AND %s BETWEEN :from AND :to
		%s
		GROUP BY bucket
		ORDER BY bucket
	`, periodExpr(ms.dialect, q.Granularity, "o.created_at"), ms.money.Items.column("oi", "line_total"), join, ms.dialect.timeColumn("o.created_at"), filter)

	rows, err := QueryListNamed[periodScopedRow](ctx, ms.DB(), query, ms.seriesParams(q))
	if err != nil {
		return nil, fmt.Errorf("%s series: %w", q.Scope, err)
	}

	series := make([]entity.SalesSeriesRow, 0, len(rows))
	for _, r := range rows {
		series = append(series, entity.SalesSeriesRow{
			Period:       r.Bucket,
			RevenueCents: ms.money.Items.ToCents(r.Revenue),
			Orders:       r.Orders,
			Units:        r.Units,
		})
	}
	return series, nil
}

// scopeClauses returns the extra join and filter for a scoped item query.
// Category attribution goes through the product's primary category so a
// product listed in several categories is counted once. A nil scope id
// applies no filter.
func (ms *analyticsStore) scopeClauses(q entity.SalesSeriesQuery) (join, filter string) {
	switch q.Scope {
	case entity.MetricsScopeCategory:
		join = "LEFT JOIN products p ON p.id = oi.product_id"
		if q.ScopeID != nil {
			filter = "AND p.primary_category_id = :scopeId"
		}
	case entity.MetricsScopeProduct:
		if q.ScopeID != nil {
			filter = "AND oi.product_id = :scopeId"
		}
	}
	return join, filter
}
