package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	v "github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"
	"github.com/jekabolt/grbpwr-analytics/internal/analytics"
	"github.com/jekabolt/grbpwr-analytics/internal/apisrv/respond"
	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/dto"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

// Server implements handlers for admin.
type Server struct {
	analytics *analytics.Service
	orders    dependency.Order
}

// New creates a new server with admin handlers.
func New(a *analytics.Service, orders dependency.Order) *Server {
	return &Server{
		analytics: a,
		orders:    orders,
	}
}

// Routes returns the admin API. Authentication is applied by the caller.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/bootstrap", s.Bootstrap)
		r.Get("/category-products", s.CategoryProducts)
		r.Get("/timeseries", s.Timeseries)
	})
	r.Put("/orders/{id}/status", s.UpdateOrderStatus)
	return r
}

// ANALYTICS

func (s *Server) Bootstrap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	b, err := s.analytics.Bootstrap(ctx)
	if err != nil {
		respond.Error(ctx, w, err, "can't get analytics bootstrap")
		return
	}
	respond.JSON(w, http.StatusOK, b)
}

// CategoryProducts lists products of category_id, all products when the
// parameter is absent or not a number.
func (s *Server) CategoryProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var categoryID *int
	if id, err := strconv.Atoi(r.URL.Query().Get("category_id")); err == nil {
		categoryID = &id
	}
	p, err := s.analytics.CategoryProducts(ctx, categoryID)
	if err != nil {
		respond.Error(ctx, w, err, "can't get category products")
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

func (s *Server) Timeseries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	ts, err := s.analytics.Timeseries(ctx, analytics.RawFilters{
		Scope:       q.Get("scope"),
		ScopeID:     q.Get("scope_id"),
		Metric:      q.Get("metric"),
		Granularity: q.Get("granularity"),
		Range:       q.Get("range"),
	})
	if err != nil {
		respond.Error(ctx, w, err, "can't get sales timeseries")
		return
	}
	respond.JSON(w, http.StatusOK, ts)
}

// ORDERS

func (s *Server) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		respond.BadRequest(w, "invalid order id")
		return
	}

	req := &dto.UpdateOrderStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		respond.BadRequest(w, "malformed request body")
		return
	}
	if _, err := v.ValidateStruct(req); err != nil {
		slog.Default().ErrorContext(ctx, "validation update order status request failed",
			slog.String("err", err.Error()),
		)
		respond.BadRequest(w, err.Error())
		return
	}

	o, err := s.orders.UpdateOrderStatus(ctx, id, entity.OrderStatus(req.Status))
	if err != nil {
		respond.Error(ctx, w, err, "can't update order status")
		return
	}
	respond.JSON(w, http.StatusOK, dto.OrderResponse{Order: dto.ConvertEntityOrderToDto(o)})
}
