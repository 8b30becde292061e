package store

import (
	"context"

	"github.com/01moynul/pricetracker-golang/internal/models"
	"github.com/juju/errors"
)

const categorySelect = `
	SELECT
		c.slug, c.name, c.name_plural, c.icon, c.is_featured, c.sort_order,
		COUNT(p.id)::int AS product_count
	FROM categories c
	LEFT JOIN products p ON p.category = c.slug AND p.is_active = true`

const categoryGroupBy = `
	GROUP BY c.slug, c.name, c.name_plural, c.icon, c.is_featured, c.sort_order`

func scanCategory(row scanner) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.Slug, &c.Name, &c.NamePlural, &c.Icon, &c.IsFeatured, &c.SortOrder, &c.ProductCount)
	return c, err
}

// ListCategories returns all categories with their active product count.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.pool.Query(ctx, categorySelect+categoryGroupBy+` ORDER BY c.sort_order ASC`)
	if err != nil {
		return nil, errors.Annotate(err, "listing categories")
	}
	return collect(rows, scanCategory)
}

// GetCategory returns one category by slug.
func (s *Store) GetCategory(ctx context.Context, slug string) (models.Category, error) {
	row := s.pool.QueryRow(ctx, categorySelect+` WHERE c.slug = $1`+categoryGroupBy, slug)
	c, err := scanCategory(row)
	if err != nil {
		return models.Category{}, notFound(err, "category %q", slug)
	}
	return c, nil
}
