package dependency

import (
	"context"
	"database/sql"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/jmoiron/sqlx"
)

type (
	ContextStore interface {
		Tx(ctx context.Context, fn func(ctx context.Context, store Repository) error) error
	}

	// Analytics aggregates order and order-item data into sales series.
	Analytics interface {
		// SalesSeries returns one row per period bucket ordered by period ascending.
		SalesSeries(ctx context.Context, q entity.SalesSeriesQuery) ([]entity.SalesSeriesRow, error)
		// SalesSeriesVersion returns a freshness token for the rows SalesSeries would read.
		SalesSeriesVersion(ctx context.Context, q entity.SalesSeriesQuery) (string, error)
	}

	Catalog interface {
		// GetCategories returns all categories sorted by name.
		GetCategories(ctx context.Context) ([]entity.Category, error)
		CategoriesVersion(ctx context.Context) (string, error)
		// GetProductsForCategory returns products sorted by name, all of them when categoryID is nil.
		GetProductsForCategory(ctx context.Context, categoryID *int) ([]entity.ProductRef, error)
		ProductsVersion(ctx context.Context, categoryID *int) (string, error)
	}

	Order interface {
		// PlaceOrder creates a pending order and decrements stock in one transaction.
		PlaceOrder(ctx context.Context, orderNew *entity.OrderNew) (*entity.OrderFull, error)
		UpdateOrderStatus(ctx context.Context, orderID int, status entity.OrderStatus) (*entity.Order, error)
		GetOrderById(ctx context.Context, orderID int) (*entity.OrderFull, error)
		// GetStalePendingOrders returns pending orders created before olderThan, oldest first.
		GetStalePendingOrders(ctx context.Context, olderThan time.Time) ([]entity.Order, error)
	}

	Repository interface {
		ContextStore
		Analytics() Analytics
		Catalog() Catalog
		Order() Order
		TxBegin(ctx context.Context) (Repository, error)
		TxCommit(ctx context.Context) error
		TxRollback(ctx context.Context) error
		Now() time.Time
		InTx() bool
		Ping(ctx context.Context) error
		Close()
		IsErrorRepeat(err error) bool
		DB() DB
	}

	// DB represents database interface.
	DB interface {
		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

		// sqlx methods
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
		QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}

	// CacheStore is a key-value store with per-key TTL and atomic get/set.
	CacheStore interface {
		Get(ctx context.Context, key string) ([]byte, bool, error)
		Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	}
)
