package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shukshop/storefront-api/internal/catalog"
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

const categoriesSQL = `SELECT id, name_he, COALESCE(slug, ''), COALESCE(icon, ''),
	COALESCE(image_url, ''), sort_order, created_at
FROM categories ORDER BY sort_order ASC`

// Categories lists all categories ordered by sort_order.
func (r *CatalogRepository) Categories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, categoriesSQL)
	if err != nil {
		return nil, errors.Wrap(err, "query categories")
	}
	return collect(rows, func(rows pgx.Rows) (catalog.Category, error) {
		var c catalog.Category
		err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Icon, &c.ImageURL, &c.SortOrder, &c.CreatedAt)
		return c, err
	})
}

const subcategoriesSQL = `SELECT id, category_id, name_he, COALESCE(slug, ''),
	COALESCE(image_url, ''), sort_order, created_at
FROM subcategories
WHERE $1 = '' OR category_id::text = $1
ORDER BY sort_order ASC`

// Subcategories lists subcategories, optionally filtered by category.
func (r *CatalogRepository) Subcategories(ctx context.Context, categoryID string) ([]catalog.Subcategory, error) {
	rows, err := r.pool.Query(ctx, subcategoriesSQL, categoryID)
	if err != nil {
		return nil, errors.Wrap(err, "query subcategories")
	}
	return collect(rows, func(rows pgx.Rows) (catalog.Subcategory, error) {
		var s catalog.Subcategory
		err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Slug, &s.ImageURL, &s.SortOrder, &s.CreatedAt)
		return s, err
	})
}

const productsSQL = `SELECT id, subcategory_id, name_he, COALESCE(description_he, ''),
	price, COALESCE(image_url, ''), sort_order, created_at
FROM products
WHERE $1 = '' OR subcategory_id::text = $1
ORDER BY sort_order ASC`

// Products lists products, optionally filtered by subcategory.
func (r *CatalogRepository) Products(ctx context.Context, subcategoryID string) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, productsSQL, subcategoryID)
	if err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	return collect(rows, func(rows pgx.Rows) (catalog.Product, error) {
		var p catalog.Product
		err := rows.Scan(&p.ID, &p.SubcategoryID, &p.Name, &p.Description, &p.Price,
			&p.ImageURL, &p.SortOrder, &p.CreatedAt)
		return p, err
	})
}

const carouselSQL = `SELECT id, image_url, sort_order, created_at
FROM home_carousel ORDER BY sort_order ASC`

// Carousel lists the home carousel images ordered by sort_order.
func (r *CatalogRepository) Carousel(ctx context.Context) ([]catalog.CarouselImage, error) {
	rows, err := r.pool.Query(ctx, carouselSQL)
	if err != nil {
		return nil, errors.Wrap(err, "query carousel")
	}
	return collect(rows, func(rows pgx.Rows) (catalog.CarouselImage, error) {
		var img catalog.CarouselImage
		err := rows.Scan(&img.ID, &img.ImageURL, &img.SortOrder, &img.CreatedAt)
		return img, err
	})
}

// collect drains rows into a slice using the given scan function.
func collect[T any](rows pgx.Rows, scan func(pgx.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan row")
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate rows")
	}
	return out, nil
}
