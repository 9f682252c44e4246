package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	gerr "github.com/jekabolt/grbpwr-analytics/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSQLiteStore opens a migrated sqlite database in a temp dir. A file keeps
// every pooled connection on the same database.
func newSQLiteStore(t *testing.T) *MYSQLStore {
	t.Helper()
	ms, err := New(context.Background(), Config{
		DSN:                filepath.Join(t.TempDir(), "analytics.db"),
		Dialect:            "sqlite",
		Automigrate:        true,
		MaxOpenConnections: 1,
		MoneyColumns:       "cents",
	})
	require.NoError(t, err)
	t.Cleanup(ms.Close)
	return ms
}

func seedCategory(t *testing.T, ms *MYSQLStore, name string) int {
	t.Helper()
	res, err := ms.DB().ExecContext(context.Background(), `INSERT INTO categories (name) VALUES (?)`, name)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func seedProduct(t *testing.T, ms *MYSQLStore, name string, priceCents int64, stock int, categoryID int) int {
	t.Helper()
	var category sql.NullInt64
	if categoryID > 0 {
		category = sql.NullInt64{Int64: int64(categoryID), Valid: true}
	}
	res, err := ms.DB().ExecContext(context.Background(),
		`INSERT INTO products (name, price_cents, stock, primary_category_id) VALUES (?, ?, ?, ?)`,
		name, priceCents, stock, category)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

type seedItem struct {
	productID int
	quantity  int
	lineCents int64
}

// seedOrder inserts an order with a literal created_at so tests control the
// stored text layout.
func seedOrder(t *testing.T, ms *MYSQLStore, status entity.OrderStatus, totalCents int64, createdAt string, items ...seedItem) int {
	t.Helper()
	ctx := context.Background()
	res, err := ms.DB().ExecContext(ctx,
		`INSERT INTO orders (uuid, status, total_cents, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), string(status), totalCents, createdAt, createdAt)
	require.NoError(t, err)
	orderID, err := res.LastInsertId()
	require.NoError(t, err)

	for _, it := range items {
		_, err := ms.DB().ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price_cents, line_total_cents, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			orderID, it.productID, "item", it.quantity, it.lineCents/int64(it.quantity), it.lineCents, createdAt, createdAt)
		require.NoError(t, err)
	}
	return int(orderID)
}

func productStock(t *testing.T, ms *MYSQLStore, productID int) int {
	t.Helper()
	var stock int
	require.NoError(t, ms.DB().GetContext(context.Background(), &stock, `SELECT stock FROM products WHERE id = ?`, productID))
	return stock
}

func sumSeries(rows []entity.SalesSeriesRow) (revenue, orders, units int64) {
	for _, r := range rows {
		revenue += r.RevenueCents
		orders += r.Orders
		units += r.Units
	}
	return revenue, orders, units
}

func octoberWeek() entity.TimeRange {
	return entity.MetricsRange7d.Window(time.Date(2025, 10, 18, 12, 0, 0, 0, time.UTC))
}

func TestSQLiteSalesSeriesExcludesUnpaid(t *testing.T) {
	ms := newSQLiteStore(t)
	tee := seedProduct(t, ms, "Tee", 500, 100, 0)

	seedOrder(t, ms, entity.OrderStatusPaid, 2000, "2025-10-14 09:00:00", seedItem{tee, 4, 2000})
	seedOrder(t, ms, entity.OrderStatusShipped, 1500, "2025-10-15 09:00:00", seedItem{tee, 3, 1500})
	seedOrder(t, ms, entity.OrderStatusPending, 99900, "2025-10-15 10:00:00", seedItem{tee, 1, 99900})
	seedOrder(t, ms, entity.OrderStatusCancelled, 500, "2025-10-16 10:00:00", seedItem{tee, 1, 500})

	rows, err := ms.Analytics().SalesSeries(context.Background(), entity.SalesSeriesQuery{
		Scope:       entity.MetricsScopeOverall,
		Granularity: entity.MetricsGranularityDay,
		Period:      octoberWeek(),
	})
	require.NoError(t, err)
	assert.Equal(t, []entity.SalesSeriesRow{
		{Period: "2025-10-14", RevenueCents: 2000, Orders: 1, Units: 4},
		{Period: "2025-10-15", RevenueCents: 1500, Orders: 1, Units: 3},
	}, rows)

	revenue, _, _ := sumSeries(rows)
	assert.Equal(t, int64(3500), revenue)
}

func TestSQLiteSalesSeriesCategoryUnits(t *testing.T) {
	ms := newSQLiteStore(t)
	tops := seedCategory(t, ms, "tops")
	bottoms := seedCategory(t, ms, "bottoms")
	tee := seedProduct(t, ms, "Tee", 500, 100, tops)
	jeans := seedProduct(t, ms, "Jeans", 3000, 100, bottoms)

	seedOrder(t, ms, entity.OrderStatusPaid, 1000, "2025-10-13 09:00:00", seedItem{tee, 2, 1000})
	seedOrder(t, ms, entity.OrderStatusShipped, 15500, "2025-10-16 09:00:00",
		seedItem{tee, 1, 500}, seedItem{jeans, 5, 15000})
	seedOrder(t, ms, entity.OrderStatusPending, 500, "2025-10-16 10:00:00", seedItem{tee, 1, 500})

	rows, err := ms.Analytics().SalesSeries(context.Background(), entity.SalesSeriesQuery{
		Scope:       entity.MetricsScopeCategory,
		ScopeID:     &tops,
		Granularity: entity.MetricsGranularityMonth,
		Period:      octoberWeek(),
	})
	require.NoError(t, err)
	assert.Equal(t, []entity.SalesSeriesRow{
		{Period: "2025-10", RevenueCents: 1500, Orders: 2, Units: 3},
	}, rows)
}

func TestSQLiteSalesSeriesProductCountsDistinctOrders(t *testing.T) {
	ms := newSQLiteStore(t)
	tee := seedProduct(t, ms, "Tee", 500, 100, 0)
	hat := seedProduct(t, ms, "Hat", 700, 100, 0)

	seedOrder(t, ms, entity.OrderStatusPaid, 2200, "2025-10-17 09:00:00",
		seedItem{tee, 1, 500}, seedItem{tee, 2, 1000}, seedItem{hat, 1, 700})
	seedOrder(t, ms, entity.OrderStatusPaid, 700, "2025-10-17 11:00:00", seedItem{hat, 1, 700})

	rows, err := ms.Analytics().SalesSeries(context.Background(), entity.SalesSeriesQuery{
		Scope:       entity.MetricsScopeProduct,
		ScopeID:     &tee,
		Granularity: entity.MetricsGranularityDay,
		Period:      octoberWeek(),
	})
	require.NoError(t, err)
	assert.Equal(t, []entity.SalesSeriesRow{
		{Period: "2025-10-17", RevenueCents: 1500, Orders: 1, Units: 3},
	}, rows)
}

func TestSQLiteSalesSeriesVersionFollowsStatusChange(t *testing.T) {
	ms := newSQLiteStore(t)
	tee := seedProduct(t, ms, "Tee", 500, 100, 0)
	id := seedOrder(t, ms, entity.OrderStatusPaid, 1000, "2025-10-14 09:00:00", seedItem{tee, 2, 1000})

	q := entity.SalesSeriesQuery{
		Scope:       entity.MetricsScopeOverall,
		Granularity: entity.MetricsGranularityDay,
		Period:      octoberWeek(),
	}
	before, err := ms.Analytics().SalesSeriesVersion(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "1:20251014090000.000000", before)

	_, err = ms.Order().UpdateOrderStatus(context.Background(), id, entity.OrderStatusShipped)
	require.NoError(t, err)

	after, err := ms.Analytics().SalesSeriesVersion(context.Background(), q)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
	assert.Regexp(t, `^1:\d{14}\.\d{6}$`, after)
	assert.Greater(t, after, before)
}

// Deleting a product nulls its order item references. The item still counts
// toward category without an id, like the overall series, but leaves every
// category filter. An order without item rows only shows in the overall series.
func TestSQLiteSalesSeriesOverallAndUnfilteredCategoryDiverge(t *testing.T) {
	ms := newSQLiteStore(t)
	tops := seedCategory(t, ms, "tops")
	tee := seedProduct(t, ms, "Tee", 500, 100, tops)
	hoodie := seedProduct(t, ms, "Hoodie", 4000, 100, tops)

	seedOrder(t, ms, entity.OrderStatusPaid, 500, "2025-10-14 09:00:00", seedItem{tee, 1, 500})
	seedOrder(t, ms, entity.OrderStatusPaid, 4000, "2025-10-14 10:00:00", seedItem{hoodie, 1, 4000})
	seedOrder(t, ms, entity.OrderStatusPaid, 900, "2025-10-14 11:00:00")

	_, err := ms.DB().ExecContext(context.Background(), `DELETE FROM products WHERE id = ?`, hoodie)
	require.NoError(t, err)

	var orphaned int
	require.NoError(t, ms.DB().GetContext(context.Background(), &orphaned,
		`SELECT COUNT(*) FROM order_items WHERE product_id IS NULL`))
	assert.Equal(t, 1, orphaned)

	series := func(scope entity.MetricsScope, id *int) []entity.SalesSeriesRow {
		rows, err := ms.Analytics().SalesSeries(context.Background(), entity.SalesSeriesQuery{
			Scope:       scope,
			ScopeID:     id,
			Granularity: entity.MetricsGranularityDay,
			Period:      octoberWeek(),
		})
		require.NoError(t, err)
		return rows
	}

	assert.Equal(t, []entity.SalesSeriesRow{
		{Period: "2025-10-14", RevenueCents: 5400, Orders: 3, Units: 2},
	}, series(entity.MetricsScopeOverall, nil))
	assert.Equal(t, []entity.SalesSeriesRow{
		{Period: "2025-10-14", RevenueCents: 4500, Orders: 2, Units: 2},
	}, series(entity.MetricsScopeCategory, nil))
	assert.Equal(t, []entity.SalesSeriesRow{
		{Period: "2025-10-14", RevenueCents: 500, Orders: 1, Units: 1},
	}, series(entity.MetricsScopeCategory, &tops))
}

func TestSQLiteSalesSeriesWindowEdges(t *testing.T) {
	ms := newSQLiteStore(t)
	tee := seedProduct(t, ms, "Tee", 100, 100, 0)

	seedOrder(t, ms, entity.OrderStatusPaid, 100, "2025-10-11 23:59:59", seedItem{tee, 1, 100})
	seedOrder(t, ms, entity.OrderStatusPaid, 200, "2025-10-12 00:00:00", seedItem{tee, 1, 200})
	seedOrder(t, ms, entity.OrderStatusPaid, 400, "2025-10-18 23:59:59.5+00:00", seedItem{tee, 1, 400})
	seedOrder(t, ms, entity.OrderStatusPaid, 800, "2025-10-19 00:00:00", seedItem{tee, 1, 800})

	rows, err := ms.Analytics().SalesSeries(context.Background(), entity.SalesSeriesQuery{
		Scope:       entity.MetricsScopeOverall,
		Granularity: entity.MetricsGranularityDay,
		Period:      octoberWeek(),
	})
	require.NoError(t, err)
	assert.Equal(t, []entity.SalesSeriesRow{
		{Period: "2025-10-12", RevenueCents: 200, Orders: 1, Units: 1},
		{Period: "2025-10-18", RevenueCents: 400, Orders: 1, Units: 1},
	}, rows)
}

func TestSQLiteSalesSeriesOffsetWindow(t *testing.T) {
	ms := newSQLiteStore(t)
	tee := seedProduct(t, ms, "Tee", 100, 100, 0)
	riga, err := time.LoadLocation("Europe/Riga")
	require.NoError(t, err)

	// the Riga week of 2025-10-12..18 is 2025-10-11 21:00..2025-10-18 21:00 UTC
	seedOrder(t, ms, entity.OrderStatusPaid, 100, "2025-10-11 20:30:00", seedItem{tee, 1, 100})
	seedOrder(t, ms, entity.OrderStatusPaid, 200, "2025-10-11 21:30:00", seedItem{tee, 1, 200})
	seedOrder(t, ms, entity.OrderStatusPaid, 400, "2025-10-18 20:30:00+00:00", seedItem{tee, 1, 400})
	seedOrder(t, ms, entity.OrderStatusPaid, 900, "2025-10-18 22:30:00+00:00", seedItem{tee, 1, 900})

	q := entity.SalesSeriesQuery{
		Scope:       entity.MetricsScopeOverall,
		Granularity: entity.MetricsGranularityDay,
		Period:      entity.MetricsRange7d.Window(time.Date(2025, 10, 18, 12, 0, 0, 0, riga)),
	}
	rows, err := ms.Analytics().SalesSeries(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []entity.SalesSeriesRow{
		{Period: "2025-10-11", RevenueCents: 200, Orders: 1, Units: 1},
		{Period: "2025-10-18", RevenueCents: 400, Orders: 1, Units: 1},
	}, rows)

	version, err := ms.Analytics().SalesSeriesVersion(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "2:20251018203000.000000", version)
}

func TestSQLiteSalesSeriesISOWeeks(t *testing.T) {
	ms := newSQLiteStore(t)
	tee := seedProduct(t, ms, "Tee", 100, 100, 0)

	seedOrder(t, ms, entity.OrderStatusPaid, 100, "2025-12-29 12:00:00", seedItem{tee, 1, 100})
	seedOrder(t, ms, entity.OrderStatusPaid, 200, "2026-01-04 12:00:00", seedItem{tee, 1, 200})
	seedOrder(t, ms, entity.OrderStatusPaid, 400, "2027-01-01 12:00:00", seedItem{tee, 1, 400})

	rows, err := ms.Analytics().SalesSeries(context.Background(), entity.SalesSeriesQuery{
		Scope:       entity.MetricsScopeOverall,
		Granularity: entity.MetricsGranularityWeek,
		Period: entity.TimeRange{
			From: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2027, 1, 31, 23, 59, 59, 0, time.UTC),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []entity.SalesSeriesRow{
		{Period: "2026-W01", RevenueCents: 300, Orders: 2, Units: 2},
		{Period: "2026-W53", RevenueCents: 400, Orders: 1, Units: 1},
	}, rows)
}

func TestSQLiteCheckoutFlow(t *testing.T) {
	ms := newSQLiteStore(t)
	ctx := context.Background()
	tee := seedProduct(t, ms, "Tee", 375, 10, 0)

	placed, err := ms.Order().PlaceOrder(ctx, &entity.OrderNew{
		Items: []entity.OrderItemInsert{{ProductID: tee, Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1500), placed.Order.TotalCents)
	assert.Equal(t, 6, productStock(t, ms, tee))

	got, err := ms.Order().GetOrderById(ctx, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, got.Order.Status)
	assert.WithinDuration(t, placed.Order.CreatedAt, got.Order.CreatedAt, time.Second)

	_, err = ms.Order().UpdateOrderStatus(ctx, placed.Order.ID, entity.OrderStatusPaid)
	require.NoError(t, err)

	q := entity.SalesSeriesQuery{
		Scope:       entity.MetricsScopeOverall,
		Granularity: entity.MetricsGranularityDay,
		Period:      entity.MetricsRange7d.Window(time.Now().UTC()),
	}
	rows, err := ms.Analytics().SalesSeries(ctx, q)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, placed.Order.CreatedAt.UTC().Format("2006-01-02"), rows[0].Period)
	assert.Equal(t, int64(1500), rows[0].RevenueCents)
	assert.Equal(t, int64(4), rows[0].Units)

	version, err := ms.Analytics().SalesSeriesVersion(ctx, q)
	require.NoError(t, err)
	assert.Regexp(t, `^1:\d{14}\.\d{6}$`, version)

	stale, err := ms.Order().GetStalePendingOrders(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestSQLiteCancelAndRestoreKeepsStock(t *testing.T) {
	ms := newSQLiteStore(t)
	ctx := context.Background()
	tee := seedProduct(t, ms, "Tee", 500, 10, 0)

	placed, err := ms.Order().PlaceOrder(ctx, &entity.OrderNew{
		Items: []entity.OrderItemInsert{{ProductID: tee, Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, productStock(t, ms, tee))

	for _, step := range []struct {
		status entity.OrderStatus
		stock  int
	}{
		{entity.OrderStatusCancelled, 10},
		{entity.OrderStatusPaid, 6},
		{entity.OrderStatusCancelled, 10},
		{entity.OrderStatusCancelled, 10},
		{entity.OrderStatusPending, 6},
	} {
		_, err := ms.Order().UpdateOrderStatus(ctx, placed.Order.ID, step.status)
		require.NoError(t, err, step.status)
		assert.Equal(t, step.stock, productStock(t, ms, tee), step.status)
	}

	_, err = ms.Order().UpdateOrderStatus(ctx, placed.Order.ID, entity.OrderStatusCancelled)
	require.NoError(t, err)
	_, err = ms.Order().PlaceOrder(ctx, &entity.OrderNew{
		Items: []entity.OrderItemInsert{{ProductID: tee, Quantity: 8}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, productStock(t, ms, tee))

	_, err = ms.Order().UpdateOrderStatus(ctx, placed.Order.ID, entity.OrderStatusPaid)
	require.ErrorIs(t, err, gerr.InsufficientStock)
	assert.Equal(t, 2, productStock(t, ms, tee))

	got, err := ms.Order().GetOrderById(ctx, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, got.Order.Status)
}
