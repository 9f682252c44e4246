package store

import (
	"context"
	"fmt"

	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

type catalogStore struct {
	*MYSQLStore
}

// Catalog returns an object implementing catalog reads.
func (ms *MYSQLStore) Catalog() dependency.Catalog {
	return &catalogStore{MYSQLStore: ms}
}

func (ms *catalogStore) GetCategories(ctx context.Context) ([]entity.Category, error) {
	query := `SELECT id, name FROM categories ORDER BY name, id`
	categories, err := QueryListNamed[entity.Category](ctx, ms.DB(), query, nil)
	if err != nil {
		return nil, fmt.Errorf("can't get categories: %w", err)
	}
	return categories, nil
}

func (ms *catalogStore) CategoriesVersion(ctx context.Context) (string, error) {
	query := `SELECT COUNT(*) AS cnt, MAX(updated_at) AS latest FROM categories`
	r, err := QueryNamedOne[freshnessRow](ctx, ms.DB(), query, nil)
	if err != nil {
		return "", fmt.Errorf("categories freshness: %w", err)
	}
	return fmt.Sprintf("%d:%s", r.Count, r.Latest.token()), nil
}

// productsFilter limits products to a category: either its primary category
// or any category it is listed under.
func productsFilter(categoryID *int) (string, map[string]any) {
	if categoryID == nil {
		return "", map[string]any{}
	}
	return `
		AND (p.primary_category_id = :categoryId OR EXISTS (
			SELECT 1 FROM category_product cp
			WHERE cp.product_id = p.id AND cp.category_id = :categoryId
		))`, map[string]any{"categoryId": *categoryID}
}

func (ms *catalogStore) GetProductsForCategory(ctx context.Context, categoryID *int) ([]entity.ProductRef, error) {
	filter, params := productsFilter(categoryID)
	query := fmt.Sprintf(`
		SELECT p.id, p.name
		FROM products p
		WHERE p.deleted_at IS NULL
		%s
		ORDER BY p.name, p.id
	`, filter)
	products, err := QueryListNamed[entity.ProductRef](ctx, ms.DB(), query, params)
	if err != nil {
		return nil, fmt.Errorf("can't get products for category: %w", err)
	}
	return products, nil
}

func (ms *catalogStore) ProductsVersion(ctx context.Context, categoryID *int) (string, error) {
	filter, params := productsFilter(categoryID)
	query := fmt.Sprintf(`
		SELECT COUNT(*) AS cnt, MAX(p.updated_at) AS latest
		FROM products p
		WHERE p.deleted_at IS NULL
		%s
	`, filter)
	r, err := QueryNamedOne[freshnessRow](ctx, ms.DB(), query, params)
	if err != nil {
		return "", fmt.Errorf("products freshness: %w", err)
	}
	return fmt.Sprintf("%d:%s", r.Count, r.Latest.token()), nil
}
