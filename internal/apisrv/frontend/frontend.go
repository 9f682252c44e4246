package frontend

import (
	"encoding/json"
	"log/slog"
	"net/http"

	v "github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"
	"github.com/jekabolt/grbpwr-analytics/internal/apisrv/respond"
	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/dto"
	"github.com/jekabolt/grbpwr-analytics/internal/ratelimit"
)

// Server implements handlers for frontend requests.
type Server struct {
	orders  dependency.Order
	limiter *ratelimit.Limiter
}

// New creates a new server with frontend handlers. A nil limiter leaves
// checkout unlimited.
func New(orders dependency.Order, limiter *ratelimit.Limiter) *Server {
	return &Server{
		orders:  orders,
		limiter: limiter,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.With(s.limiter.PerIP).Post("/checkout", s.Checkout)
	return r
}

// Checkout places a pending order. Payment is simulated: the order is
// accepted once stock is reserved.
func (s *Server) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := &dto.CheckoutRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		respond.BadRequest(w, "malformed request body")
		return
	}
	if _, err := v.ValidateStruct(req); err != nil {
		slog.Default().ErrorContext(ctx, "validation checkout request failed",
			slog.String("err", err.Error()),
		)
		respond.BadRequest(w, err.Error())
		return
	}

	order, err := s.orders.PlaceOrder(ctx, dto.ConvertCheckoutToEntity(req))
	if err != nil {
		respond.Error(ctx, w, err, "can't place order")
		return
	}

	slog.Default().InfoContext(ctx, "order placed",
		slog.Int("order_id", order.Order.ID),
		slog.String("uuid", order.Order.UUID),
		slog.Int64("total_cents", order.Order.TotalCents),
	)
	respond.JSON(w, http.StatusCreated, dto.OrderResponse{Order: dto.ConvertEntityOrderFullToDto(order)})
}
