package ordercleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

func (w *Worker) worker(ctx context.Context) {
	ticker := time.NewTicker(w.c.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.cancelStalePendingOrders(ctx); err != nil {
				slog.Default().ErrorContext(ctx, "can't cancel stale pending orders",
					slog.String("err", err.Error()),
				)
			}
		case <-ctx.Done():
			return
		}
	}
}

// cancelStalePendingOrders returns the number of orders it cancelled. A
// failure on one order is logged and does not stop the sweep.
func (w *Worker) cancelStalePendingOrders(ctx context.Context) (int, error) {
	olderThan := w.now().Add(-w.c.PendingThreshold)
	orders, err := w.orders.GetStalePendingOrders(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("can't get stale pending orders: %w", err)
	}

	cancelled := 0
	for _, order := range orders {
		if err := ctx.Err(); err != nil {
			return cancelled, err
		}

		if _, err := w.orders.UpdateOrderStatus(ctx, order.ID, entity.OrderStatusCancelled); err != nil {
			slog.Default().ErrorContext(ctx, "can't cancel stale pending order",
				slog.String("err", err.Error()),
				slog.String("order_uuid", order.UUID),
				slog.Int("order_id", order.ID),
			)
			continue
		}
		cancelled++
		slog.Default().InfoContext(ctx, "cancelled stale pending order",
			slog.String("order_uuid", order.UUID),
			slog.Int("order_id", order.ID),
		)
	}

	return cancelled, nil
}
