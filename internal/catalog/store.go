package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"
)

// StoreCategory is a category with its subcategory subtree, as served by
// the store endpoint.
type StoreCategory struct {
	Category
	Subcategories []StoreSubcategory
}

// StoreSubcategory is a subcategory with its products.
type StoreSubcategory struct {
	Subcategory
	Products []Product
}

// StoreTree fetches the whole catalog and assembles it into the
// category → subcategory → product tree. The three listings are
// independent reads and run concurrently.
func StoreTree(ctx context.Context, repo Repository) ([]StoreCategory, error) {
	var (
		categories    []Category
		subcategories []Subcategory
		products      []Product
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		categories, err = repo.Categories(ctx)
		return errors.Wrap(err, "list categories")
	})
	g.Go(func() (err error) {
		subcategories, err = repo.Subcategories(ctx, "")
		return errors.Wrap(err, "list subcategories")
	})
	g.Go(func() (err error) {
		products, err = repo.Products(ctx, "")
		return errors.Wrap(err, "list products")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	productsBySub := make(map[string][]Product, len(subcategories))
	for _, p := range products {
		productsBySub[p.SubcategoryID] = append(productsBySub[p.SubcategoryID], p)
	}
	subsByCategory := make(map[string][]StoreSubcategory, len(categories))
	for _, sub := range subcategories {
		subsByCategory[sub.CategoryID] = append(subsByCategory[sub.CategoryID], StoreSubcategory{
			Subcategory: sub,
			Products:    productsBySub[sub.ID],
		})
	}

	tree := make([]StoreCategory, len(categories))
	for i, cat := range categories {
		tree[i] = StoreCategory{
			Category:      cat,
			Subcategories: subsByCategory[cat.ID],
		}
	}
	return tree, nil
}
