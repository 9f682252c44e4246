package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	gerr "github.com/jekabolt/grbpwr-analytics/internal/errors"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

type orderStore struct {
	*MYSQLStore
}

// Order returns an object implementing order interface
func (ms *MYSQLStore) Order() dependency.Order {
	return &orderStore{MYSQLStore: ms}
}

type productRow struct {
	ID                int             `db:"id"`
	Name              string          `db:"name"`
	Price             decimal.Decimal `db:"price"`
	Stock             int             `db:"stock"`
	PrimaryCategoryID sql.NullInt32   `db:"primary_category_id"`
}

func (ms *MYSQLStore) getProductForUpdate(ctx context.Context, productID int) (*entity.Product, error) {
	query := fmt.Sprintf(`
		SELECT id, name, %s AS price, stock, primary_category_id
		FROM products p
		WHERE p.id = :id AND p.deleted_at IS NULL
		%s
	`, ms.money.Products.column("p", "price"), ms.dialect.lockForUpdate())
	r, err := QueryNamedOne[productRow](ctx, ms.DB(), query, map[string]any{"id": productID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ProductNotFound
		}
		return nil, fmt.Errorf("can't get product %d: %w", productID, err)
	}
	return &entity.Product{
		ID:                r.ID,
		Name:              r.Name,
		PriceCents:        ms.money.Products.ToCents(r.Price),
		Stock:             r.Stock,
		PrimaryCategoryID: r.PrimaryCategoryID,
	}, nil
}

func (ms *MYSQLStore) adjustStock(ctx context.Context, productID int, delta int) error {
	query := `UPDATE products SET stock = stock + :delta, updated_at = :now WHERE id = :id AND deleted_at IS NULL`
	_, err := ExecNamed(ctx, ms.DB(), query, map[string]any{
		"delta": delta,
		"now":   ms.Now(),
		"id":    productID,
	})
	if err != nil {
		return fmt.Errorf("can't adjust stock for product %d: %w", productID, err)
	}
	return nil
}

// PlaceOrder validates stock, decrements it and inserts a pending order with
// its items. Item names and prices are snapshotted so they survive product
// deletion.
func (ms *orderStore) PlaceOrder(ctx context.Context, orderNew *entity.OrderNew) (*entity.OrderFull, error) {
	if orderNew == nil || len(orderNew.Items) == 0 {
		return nil, gerr.EmptyOrder
	}
	// merge duplicates so stock is checked against the total quantity
	quantities := make(map[int]int, len(orderNew.Items))
	productIDs := make([]int, 0, len(orderNew.Items))
	for _, it := range orderNew.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", gerr.EmptyOrder)
		}
		if _, ok := quantities[it.ProductID]; !ok {
			productIDs = append(productIDs, it.ProductID)
		}
		quantities[it.ProductID] += it.Quantity
	}

	var full *entity.OrderFull
	err := ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		tx := rep.(*MYSQLStore)
		now := tx.Now()

		items := make([]entity.OrderItem, 0, len(productIDs))
		var total int64
		for _, id := range productIDs {
			p, err := tx.getProductForUpdate(ctx, id)
			if err != nil {
				return err
			}
			qty := quantities[id]
			if p.Stock < qty {
				return fmt.Errorf("%w: product %d has %d, requested %d", gerr.InsufficientStock, id, p.Stock, qty)
			}
			if err := tx.adjustStock(ctx, id, -qty); err != nil {
				return err
			}
			line := p.PriceCents * int64(qty)
			total += line
			items = append(items, entity.OrderItem{
				ProductID:      sql.NullInt32{Int32: int32(p.ID), Valid: true},
				ProductName:    p.Name,
				Quantity:       qty,
				UnitPriceCents: p.PriceCents,
				LineTotalCents: line,
			})
		}

		order := entity.Order{
			UUID:       uuid.New().String(),
			Status:     entity.OrderStatusPending,
			TotalCents: total,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		insertOrder := fmt.Sprintf(`
			INSERT INTO orders (uuid, status, %s, created_at, updated_at)
			VALUES (:uuid, :status, :total, :now, :now)
		`, tx.money.Orders.name("total"))
		id, err := ExecNamedLastId(ctx, tx.DB(), insertOrder, map[string]any{
			"uuid":   order.UUID,
			"status": string(order.Status),
			"total":  tx.money.Orders.FromCents(total),
			"now":    now,
		})
		if err != nil {
			return fmt.Errorf("can't insert order: %w", err)
		}
		order.ID = id

		unitCol := tx.money.Items.name("unit_price")
		lineCol := tx.money.Items.name("line_total")
		columns := []string{"order_id", "product_id", "product_name", "quantity", unitCol, lineCol, "created_at", "updated_at"}
		rows := make([]map[string]any, 0, len(items))
		for i := range items {
			items[i].OrderID = id
			rows = append(rows, map[string]any{
				"order_id":     id,
				"product_id":   items[i].ProductID.Int32,
				"product_name": items[i].ProductName,
				"quantity":     items[i].Quantity,
				unitCol:        tx.money.Items.FromCents(items[i].UnitPriceCents),
				lineCol:        tx.money.Items.FromCents(items[i].LineTotalCents),
				"created_at":   now,
				"updated_at":   now,
			})
		}
		if err := BulkInsert(ctx, tx.DB(), "order_items", columns, rows); err != nil {
			return fmt.Errorf("can't insert order items: %w", err)
		}

		full = &entity.OrderFull{Order: order, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return full, nil
}

type orderRow struct {
	ID        int             `db:"id"`
	UUID      string          `db:"uuid"`
	Status    string          `db:"status"`
	Total     decimal.Decimal `db:"total"`
	CreatedAt dbTime          `db:"created_at"`
	UpdatedAt dbTime          `db:"updated_at"`
}

type orderItemRow struct {
	ID          int             `db:"id"`
	OrderID     int             `db:"order_id"`
	ProductID   sql.NullInt32   `db:"product_id"`
	ProductName string          `db:"product_name"`
	Quantity    int             `db:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	LineTotal   decimal.Decimal `db:"line_total"`
}

func (ms *MYSQLStore) getOrder(ctx context.Context, orderID int, lock bool) (*entity.Order, error) {
	lockClause := ""
	if lock {
		lockClause = ms.dialect.lockForUpdate()
	}
	query := fmt.Sprintf(`
		SELECT o.id, o.uuid, o.status, %s AS total, o.created_at, o.updated_at
		FROM orders o
		WHERE o.id = :id
		%s
	`, ms.money.Orders.column("o", "total"), lockClause)
	r, err := QueryNamedOne[orderRow](ctx, ms.DB(), query, map[string]any{"id": orderID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.OrderNotFound
		}
		return nil, fmt.Errorf("can't get order %d: %w", orderID, err)
	}
	return &entity.Order{
		ID:         r.ID,
		UUID:       r.UUID,
		Status:     entity.OrderStatus(r.Status),
		TotalCents: ms.money.Orders.ToCents(r.Total),
		CreatedAt:  r.CreatedAt.Time,
		UpdatedAt:  r.UpdatedAt.Time,
	}, nil
}

func (ms *MYSQLStore) getOrderItems(ctx context.Context, orderID int) ([]entity.OrderItem, error) {
	query := fmt.Sprintf(`
		SELECT oi.id, oi.order_id, oi.product_id, oi.product_name, oi.quantity,
			%s AS unit_price, %s AS line_total
		FROM order_items oi
		WHERE oi.order_id = :orderId
		ORDER BY oi.id
	`, ms.money.Items.column("oi", "unit_price"), ms.money.Items.column("oi", "line_total"))
	rows, err := QueryListNamed[orderItemRow](ctx, ms.DB(), query, map[string]any{"orderId": orderID})
	if err != nil {
		return nil, fmt.Errorf("can't get order items: %w", err)
	}
	items := make([]entity.OrderItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, entity.OrderItem{
			ID:             r.ID,
			OrderID:        r.OrderID,
			ProductID:      r.ProductID,
			ProductName:    r.ProductName,
			Quantity:       r.Quantity,
			UnitPriceCents: ms.money.Items.ToCents(r.UnitPrice),
			LineTotalCents: ms.money.Items.ToCents(r.LineTotal),
		})
	}
	return items, nil
}

func (ms *orderStore) GetOrderById(ctx context.Context, orderID int) (*entity.OrderFull, error) {
	o, err := ms.getOrder(ctx, orderID, false)
	if err != nil {
		return nil, err
	}
	items, err := ms.getOrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &entity.OrderFull{Order: *o, Items: items}, nil
}

func (ms *orderStore) GetStalePendingOrders(ctx context.Context, olderThan time.Time) ([]entity.Order, error) {
	query := fmt.Sprintf(`
		SELECT o.id, o.uuid, o.status, %s AS total, o.created_at, o.updated_at
		FROM orders o
		WHERE o.status = :status AND %s < :olderThan
		ORDER BY o.created_at, o.id
	`, ms.money.Orders.column("o", "total"), ms.dialect.timeColumn("o.created_at"))
	rows, err := QueryListNamed[orderRow](ctx, ms.DB(), query, map[string]any{
		"status":    string(entity.OrderStatusPending),
		"olderThan": ms.dialect.timeArg(olderThan),
	})
	if err != nil {
		return nil, fmt.Errorf("can't get stale pending orders: %w", err)
	}
	orders := make([]entity.Order, 0, len(rows))
	for _, r := range rows {
		orders = append(orders, entity.Order{
			ID:         r.ID,
			UUID:       r.UUID,
			Status:     entity.OrderStatus(r.Status),
			TotalCents: ms.money.Orders.ToCents(r.Total),
			CreatedAt:  r.CreatedAt.Time,
			UpdatedAt:  r.UpdatedAt.Time,
		})
	}
	return orders, nil
}

// restoreStock returns the quantities of an order's items to their products.
// Soft-deleted products are left untouched.
func (ms *MYSQLStore) restoreStock(ctx context.Context, orderID int) error {
	items, err := ms.getOrderItems(ctx, orderID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if !it.ProductID.Valid {
			continue
		}
		if err := ms.adjustStock(ctx, int(it.ProductID.Int32), it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// reserveStock takes an order's item quantities out of stock again. Items of
// deleted products are skipped, matching restoreStock.
func (ms *MYSQLStore) reserveStock(ctx context.Context, orderID int) error {
	items, err := ms.getOrderItems(ctx, orderID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if !it.ProductID.Valid {
			continue
		}
		id := int(it.ProductID.Int32)
		p, err := ms.getProductForUpdate(ctx, id)
		if errors.Is(err, gerr.ProductNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if p.Stock < it.Quantity {
			return fmt.Errorf("%w: product %d has %d, requested %d", gerr.InsufficientStock, id, p.Stock, it.Quantity)
		}
		if err := ms.adjustStock(ctx, id, -it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// UpdateOrderStatus moves an order to status and advances updated_at on the
// order and its items, which is what analytics freshness tokens observe.
// Cancelling restores stock for items whose product still exists; leaving
// cancelled reserves it again and fails with InsufficientStock when the
// products no longer have enough.
func (ms *orderStore) UpdateOrderStatus(ctx context.Context, orderID int, status entity.OrderStatus) (*entity.Order, error) {
	if !status.Valid() {
		return nil, gerr.InvalidStatus
	}

	var updated *entity.Order
	err := ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		tx := rep.(*MYSQLStore)
		now := tx.Now()

		o, err := tx.getOrder(ctx, orderID, true)
		if err != nil {
			return err
		}
		if o.Status == status {
			updated = o
			return nil
		}

		switch {
		case status == entity.OrderStatusCancelled:
			if err := tx.restoreStock(ctx, orderID); err != nil {
				return err
			}
		case o.Status == entity.OrderStatusCancelled:
			if err := tx.reserveStock(ctx, orderID); err != nil {
				return err
			}
		}

		params := map[string]any{"id": orderID, "status": string(status), "now": now}
		if _, err := ExecNamed(ctx, tx.DB(), `UPDATE orders SET status = :status, updated_at = :now WHERE id = :id`, params); err != nil {
			return fmt.Errorf("can't update order status: %w", err)
		}
		if _, err := ExecNamed(ctx, tx.DB(), `UPDATE order_items SET updated_at = :now WHERE order_id = :id`, params); err != nil {
			return fmt.Errorf("can't touch order items: %w", err)
		}

		o.Status = status
		o.UpdatedAt = now
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
