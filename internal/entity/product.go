package entity

import (
	"database/sql"
)

type Category struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

// ProductRef is the id/name pair used by analytics pickers.
type ProductRef struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

// Product is the subset of the products table the service reads.
// PrimaryCategoryID is the single category revenue is attributed to.
type Product struct {
	ID                int           `db:"id"`
	Name              string        `db:"name"`
	PriceCents        int64         `db:"price_cents"`
	Stock             int           `db:"stock"`
	PrimaryCategoryID sql.NullInt32 `db:"primary_category_id"`
}
