package dto

import (
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

type CheckoutItem struct {
	ProductID int `json:"product_id" valid:"required"`
	Quantity  int `json:"quantity" valid:"required"`
}

type CheckoutRequest struct {
	Items []CheckoutItem `json:"items" valid:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" valid:"required,in(pending|paid|shipped|cancelled)"`
}

type OrderItem struct {
	ProductID      *int   `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type Order struct {
	ID         int         `json:"id"`
	UUID       string      `json:"uuid"`
	Status     string      `json:"status"`
	TotalCents int64       `json:"total_cents"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Items      []OrderItem `json:"items,omitempty"`
}

type OrderResponse struct {
	Order Order `json:"order"`
}

func ConvertCheckoutToEntity(req *CheckoutRequest) *entity.OrderNew {
	items := make([]entity.OrderItemInsert, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, entity.OrderItemInsert{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return &entity.OrderNew{Items: items}
}

func ConvertEntityOrderToDto(o *entity.Order) Order {
	return Order{
		ID:         o.ID,
		UUID:       o.UUID,
		Status:     string(o.Status),
		TotalCents: o.TotalCents,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func ConvertEntityOrderFullToDto(of *entity.OrderFull) Order {
	o := ConvertEntityOrderToDto(&of.Order)
	o.Items = make([]OrderItem, 0, len(of.Items))
	for _, it := range of.Items {
		item := OrderItem{
			ProductName:    it.ProductName,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			LineTotalCents: it.LineTotalCents,
		}
		if it.ProductID.Valid {
			id := int(it.ProductID.Int32)
			item.ProductID = &id
		}
		o.Items = append(o.Items, item)
	}
	return o
}
