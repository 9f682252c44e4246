package entity

import (
	"database/sql"
	"time"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// RevenueStatuses are the order statuses that count toward sales metrics.
var RevenueStatuses = []OrderStatus{OrderStatusPaid, OrderStatusShipped}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusCancelled:
		return true
	}
	return false
}

// RevenueStatusStrings returns RevenueStatuses as plain strings for query params.
func RevenueStatusStrings() []string {
	out := make([]string, 0, len(RevenueStatuses))
	for _, s := range RevenueStatuses {
		out = append(out, string(s))
	}
	return out
}

// Order represents the orders table. TotalCents is always integer cents
// regardless of the schema generation the row was read from.
type Order struct {
	ID         int         `db:"id"`
	UUID       string      `db:"uuid"`
	Status     OrderStatus `db:"status"`
	TotalCents int64       `db:"total_cents"`
	CreatedAt  time.Time   `db:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at"`
}

// OrderItem represents the order_items table. ProductID is null once the
// product is deleted; ProductName is the snapshot taken at checkout.
type OrderItem struct {
	ID             int           `db:"id"`
	OrderID        int           `db:"order_id"`
	ProductID      sql.NullInt32 `db:"product_id"`
	ProductName    string        `db:"product_name"`
	Quantity       int           `db:"quantity"`
	UnitPriceCents int64         `db:"unit_price_cents"`
	LineTotalCents int64         `db:"line_total_cents"`
}

type OrderFull struct {
	Order Order
	Items []OrderItem
}

type OrderItemInsert struct {
	ProductID int `valid:"required"`
	Quantity  int `valid:"required"`
}

// OrderNew is a checkout request. Payment is simulated, orders start pending.
type OrderNew struct {
	Items []OrderItemInsert `valid:"required"`
}
