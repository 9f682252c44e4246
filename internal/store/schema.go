package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/shopspring/decimal"
)

// MoneyFormat tells how a monetary column is stored.
// Older schemas keep DECIMAL(10,2) currency amounts, newer ones integer cents.
type MoneyFormat string

const (
	MoneyCents   MoneyFormat = "cents"
	MoneyDecimal MoneyFormat = "decimal"
	MoneyAuto    MoneyFormat = "auto"
)

var hundred = decimal.NewFromInt(100)

// MoneySchema is the per-table money layout, fixed for the life of the store.
type MoneySchema struct {
	Orders   MoneyFormat
	Items    MoneyFormat
	Products MoneyFormat
}

// CentsSchema is the current schema generation.
var CentsSchema = MoneySchema{Orders: MoneyCents, Items: MoneyCents, Products: MoneyCents}

// DecimalSchema is the legacy schema generation.
var DecimalSchema = MoneySchema{Orders: MoneyDecimal, Items: MoneyDecimal, Products: MoneyDecimal}

// column returns the qualified column holding the amount named base,
// e.g. base "total" maps to total_cents or total.
func (f MoneyFormat) column(alias, base string) string {
	return alias + "." + f.name(base)
}

func (f MoneyFormat) name(base string) string {
	if f == MoneyDecimal {
		return base
	}
	return base + "_cents"
}

// ToCents converts an amount read from a column of this format to integer
// cents. Decimal amounts are rounded half away from zero.
func (f MoneyFormat) ToCents(d decimal.Decimal) int64 {
	if f == MoneyDecimal {
		return d.Mul(hundred).Round(0).IntPart()
	}
	return d.Round(0).IntPart()
}

// FromCents returns the value to write into a column of this format.
func (f MoneyFormat) FromCents(cents int64) any {
	if f == MoneyDecimal {
		return decimal.New(cents, -2)
	}
	return cents
}

// ResolveMoneySchema turns the configured money format into a MoneySchema.
// Only auto touches the database; it checks each table for its cents column.
func ResolveMoneySchema(ctx context.Context, db dependency.DB, dialect Dialect, configured MoneyFormat) (MoneySchema, error) {
	switch MoneyFormat(strings.ToLower(string(configured))) {
	case MoneyCents:
		return CentsSchema, nil
	case MoneyDecimal:
		return DecimalSchema, nil
	case MoneyAuto, "":
	default:
		return MoneySchema{}, fmt.Errorf("unknown money columns format %q", configured)
	}

	detect := func(table, column string) (MoneyFormat, error) {
		ok, err := hasColumn(ctx, db, dialect, table, column)
		if err != nil {
			return "", fmt.Errorf("check %s.%s: %w", table, column, err)
		}
		if ok {
			return MoneyCents, nil
		}
		return MoneyDecimal, nil
	}

	var (
		ms  MoneySchema
		err error
	)
	if ms.Orders, err = detect("orders", "total_cents"); err != nil {
		return MoneySchema{}, err
	}
	if ms.Items, err = detect("order_items", "line_total_cents"); err != nil {
		return MoneySchema{}, err
	}
	if ms.Products, err = detect("products", "price_cents"); err != nil {
		return MoneySchema{}, err
	}
	return ms, nil
}

func hasColumn(ctx context.Context, db dependency.DB, dialect Dialect, table, column string) (bool, error) {
	query := `
		SELECT COUNT(*) FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = :table AND column_name = :column
	`
	if dialect == DialectSQLite {
		query = `SELECT COUNT(*) FROM pragma_table_info(:table) WHERE name = :column`
	}
	n, err := QueryCountNamed(ctx, db, query, map[string]any{
		"table":  table,
		"column": column,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
