package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/analytics"
	"github.com/jekabolt/grbpwr-analytics/internal/apisrv/admin"
	"github.com/jekabolt/grbpwr-analytics/internal/apisrv/auth"
	"github.com/jekabolt/grbpwr-analytics/internal/apisrv/frontend"
	"github.com/jekabolt/grbpwr-analytics/internal/cache"
	"github.com/jekabolt/grbpwr-analytics/internal/dependency/mocks"
	"github.com/jekabolt/grbpwr-analytics/internal/dto"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/jekabolt/grbpwr-analytics/internal/ratelimit"
	gerr "github.com/jekabolt/grbpwr-analytics/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type testEnv struct {
	handler http.Handler
	token   string
	series  *mocks.Analytics
	catalog *mocks.Catalog
	orders  *mocks.Order
}

func newTestEnv(t *testing.T, db Pinger) *testEnv {
	t.Helper()
	series := mocks.NewAnalytics(t)
	catalog := mocks.NewCatalog(t)
	orders := mocks.NewOrder(t)

	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	svc, err := analytics.New(&analytics.Config{}, series, catalog, cache.New(cache.NewMemory(), 0),
		analytics.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	authS, err := auth.New(&auth.Config{JWTSecret: "secret", JWTTTL: "1h"})
	require.NoError(t, err)
	token, err := authS.NewToken("tester")
	require.NoError(t, err)

	s := New(&Config{AllowedOrigins: []string{"*"}})
	return &testEnv{
		handler: s.Handler(admin.New(svc, orders), frontend.New(orders, ratelimit.NewLimiter(time.Hour, 5)), authS, db),
		token:   token,
		series:  series,
		catalog: catalog,
		orders:  orders,
	}
}

func (e *testEnv) do(method, target, body string, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if authed {
		req.Header.Set(auth.AuthHeaderKey, "Bearer "+e.token)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func TestAdminRequiresToken(t *testing.T) {
	env := newTestEnv(t, pinger{})

	rr := env.do(http.MethodGet, "/api/admin/analytics/timeseries", "", false)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(http.MethodPut, "/api/admin/orders/1/status", `{"status":"paid"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestTimeseriesEndpoint(t *testing.T) {
	env := newTestEnv(t, pinger{})
	categoryID := 3

	matches := mock.MatchedBy(func(q entity.SalesSeriesQuery) bool {
		return q.Scope == entity.MetricsScopeCategory && q.ScopeID != nil && *q.ScopeID == categoryID &&
			q.Granularity == entity.MetricsGranularityDay
	})
	env.series.EXPECT().SalesSeriesVersion(mock.Anything, matches).Return("2:20240519000000.000000", nil)
	env.series.EXPECT().SalesSeries(mock.Anything, matches).Return([]entity.SalesSeriesRow{
		{Period: "2024-05-18", RevenueCents: 2000, Orders: 1, Units: 2},
		{Period: "2024-05-19", RevenueCents: 0, Orders: 1, Units: 1},
	}, nil).Once()

	target := "/api/admin/analytics/timeseries?scope=category&scope_id=3&metric=units&granularity=bogus&range=7d"
	rr := env.do(http.MethodGet, target, "", true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var ts dto.Timeseries
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ts))
	assert.Equal(t, "category", ts.Filters.Scope)
	require.NotNil(t, ts.Filters.ScopeID)
	assert.Equal(t, 3, *ts.Filters.ScopeID)
	assert.Equal(t, "day", ts.Filters.Granularity)
	assert.Equal(t, "7d", ts.Filters.Range)
	assert.Equal(t, []string{"paid", "shipped"}, ts.StatusesIncluded)
	require.Len(t, ts.Series, 2)
	assert.Equal(t, int64(3), ts.Series[0].Value+ts.Series[1].Value)

	again := env.do(http.MethodGet, target, "", true)
	assert.Equal(t, rr.Body.String(), again.Body.String())
}

func TestTimeseriesEndpointStoreDown(t *testing.T) {
	env := newTestEnv(t, pinger{})
	env.series.EXPECT().SalesSeriesVersion(mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

	rr := env.do(http.MethodGet, "/api/admin/analytics/timeseries", "", true)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestCategoryProductsEndpoint(t *testing.T) {
	env := newTestEnv(t, pinger{})

	env.catalog.EXPECT().ProductsVersion(mock.Anything, (*int)(nil)).Return("1:20240101000000.000000", nil)
	env.catalog.EXPECT().GetProductsForCategory(mock.Anything, (*int)(nil)).Return([]entity.ProductRef{{ID: 1, Name: "Coat"}}, nil).Once()

	rr := env.do(http.MethodGet, "/api/admin/analytics/category-products?category_id=abc", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"products":[{"id":1,"name":"Coat"}]}`, rr.Body.String())
}

func TestBootstrapEndpoint(t *testing.T) {
	env := newTestEnv(t, pinger{})

	env.catalog.EXPECT().CategoriesVersion(mock.Anything).Return("0:none", nil)
	env.catalog.EXPECT().GetCategories(mock.Anything).Return(nil, nil)
	env.series.EXPECT().SalesSeriesVersion(mock.Anything, mock.Anything).Return("0:none", nil)
	env.series.EXPECT().SalesSeries(mock.Anything, mock.Anything).Return(nil, nil)

	rr := env.do(http.MethodGet, "/api/admin/analytics/bootstrap", "", true)
	require.Equal(t, http.StatusOK, rr.Code)

	var b dto.Bootstrap
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &b))
	assert.NotNil(t, b.Categories)
	assert.Equal(t, "revenue", b.Defaults.Metric)
	assert.Equal(t, []string{"overall", "category", "product"}, b.Options.Scopes)
	assert.Equal(t, "90d", b.Series.Filters.Range)
}

func TestUpdateOrderStatusEndpoint(t *testing.T) {
	env := newTestEnv(t, pinger{})

	env.orders.EXPECT().UpdateOrderStatus(mock.Anything, 9, entity.OrderStatusShipped).
		Return(&entity.Order{ID: 9, UUID: "u-9", Status: entity.OrderStatusShipped, TotalCents: 1500}, nil)
	env.orders.EXPECT().UpdateOrderStatus(mock.Anything, 10, entity.OrderStatusPaid).
		Return(nil, gerr.OrderNotFound)

	rr := env.do(http.MethodPut, "/api/admin/orders/9/status", `{"status":"shipped"}`, true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp dto.OrderResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "shipped", resp.Order.Status)

	rr = env.do(http.MethodPut, "/api/admin/orders/10/status", `{"status":"paid"}`, true)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(http.MethodPut, "/api/admin/orders/9/status", `{"status":"refunded"}`, true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(http.MethodPut, "/api/admin/orders/x/status", `{"status":"paid"}`, true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCheckoutEndpoint(t *testing.T) {
	env := newTestEnv(t, pinger{})

	placed := &entity.OrderFull{
		Order: entity.Order{ID: 1, UUID: "u-1", Status: entity.OrderStatusPending, TotalCents: 3000},
		Items: []entity.OrderItem{{OrderID: 1, ProductName: "Tee", Quantity: 2, UnitPriceCents: 1500, LineTotalCents: 3000}},
	}
	env.orders.EXPECT().PlaceOrder(mock.Anything, &entity.OrderNew{
		Items: []entity.OrderItemInsert{{ProductID: 5, Quantity: 2}},
	}).Return(placed, nil)
	env.orders.EXPECT().PlaceOrder(mock.Anything, &entity.OrderNew{
		Items: []entity.OrderItemInsert{{ProductID: 6, Quantity: 99}},
	}).Return(nil, gerr.InsufficientStock)

	rr := env.do(http.MethodPost, "/api/frontend/checkout", `{"items":[{"product_id":5,"quantity":2}]}`, false)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var resp dto.OrderResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(3000), resp.Order.TotalCents)
	require.Len(t, resp.Order.Items, 1)
	assert.Nil(t, resp.Order.Items[0].ProductID)

	rr = env.do(http.MethodPost, "/api/frontend/checkout", `{"items":[{"product_id":6,"quantity":99}]}`, false)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "insufficient stock")

	rr = env.do(http.MethodPost, "/api/frontend/checkout", `{"items":[{"product_id":6,"quantity":0}]}`, false)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(http.MethodPost, "/api/frontend/checkout", `not json`, false)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHealth(t *testing.T) {
	rr := newTestEnv(t, pinger{}).do(http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = newTestEnv(t, pinger{err: errors.New("down")}).do(http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestCheckoutRateLimited(t *testing.T) {
	env := newTestEnv(t, pinger{})

	for i := 0; i < 5; i++ {
		rr := env.do(http.MethodPost, "/api/frontend/checkout", `{}`, false)
		require.Equal(t, http.StatusBadRequest, rr.Code)
	}
	rr := env.do(http.MethodPost, "/api/frontend/checkout", `{}`, false)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}
