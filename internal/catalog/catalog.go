// Package catalog holds the read-only storefront taxonomy: categories,
// their subcategories, products, and the home carousel.
package catalog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Category is a top-level storefront section.
type Category struct {
	ID        string
	Name      string
	Slug      string
	Icon      string
	ImageURL  string
	SortOrder int
	CreatedAt time.Time
}

// Subcategory groups products inside a category.
type Subcategory struct {
	ID         string
	CategoryID string
	Name       string
	Slug       string
	ImageURL   string
	SortOrder  int
	CreatedAt  time.Time
}

// Product is a purchasable catalog entry.
type Product struct {
	ID            string
	SubcategoryID string
	Name          string
	Description   string
	Price         decimal.Decimal
	ImageURL      string
	SortOrder     int
	CreatedAt     time.Time
}

// CarouselImage is one slide of the home page carousel.
type CarouselImage struct {
	ID        string
	ImageURL  string
	SortOrder int
	CreatedAt time.Time
}

// Repository defines read access to the catalog. All listings are
// ordered by sort_order; empty filter values mean "no filter".
type Repository interface {
	Categories(ctx context.Context) ([]Category, error)
	Subcategories(ctx context.Context, categoryID string) ([]Subcategory, error)
	Products(ctx context.Context, subcategoryID string) ([]Product, error)
	Carousel(ctx context.Context) ([]CarouselImage, error)
}
