//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestCategories(t *testing.T) {
	resp := doGet(t, "/api/categories")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	categories := decodeJSON[[]categoryResponse](t, resp)
	if len(categories) != 1 {
		t.Fatalf("expected 1 category, got %d", len(categories))
	}
	if categories[0].ID != fixtureCategoryID {
		t.Errorf("id: got %q, want %q", categories[0].ID, fixtureCategoryID)
	}
	if categories[0].Name != "מאפים" {
		t.Errorf("name_he: got %q", categories[0].Name)
	}
}

func TestSubcategories_FilteredByCategory(t *testing.T) {
	resp := doGet(t, "/api/subcategories?category_id="+fixtureCategoryID)
	defer resp.Body.Close()

	subcategories := decodeJSON[[]subcategoryResponse](t, resp)
	if len(subcategories) != 1 {
		t.Fatalf("expected 1 subcategory, got %d", len(subcategories))
	}
	if subcategories[0].CategoryID != fixtureCategoryID {
		t.Errorf("category_id: got %q", subcategories[0].CategoryID)
	}
}

func TestSubcategories_UnknownCategory(t *testing.T) {
	resp := doGet(t, "/api/subcategories?category_id=99999999-9999-9999-9999-999999999999")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	subcategories := decodeJSON[[]subcategoryResponse](t, resp)
	if len(subcategories) != 0 {
		t.Fatalf("expected empty list, got %d", len(subcategories))
	}
}

func TestProducts_FilteredBySubcategory(t *testing.T) {
	resp := doGet(t, "/api/products?subcategory_id="+fixtureSubcategoryID)
	defer resp.Body.Close()

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Price.String() != "12.90" {
		t.Errorf("price: got %s, want 12.90", products[0].Price)
	}
}

func TestStore_FullTree(t *testing.T) {
	resp := doGet(t, "/api/store")
	defer resp.Body.Close()

	tree := decodeJSON[[]storeCategoryResponse](t, resp)
	if len(tree) != 1 {
		t.Fatalf("expected 1 category, got %d", len(tree))
	}
	if len(tree[0].Subcategories) != 1 {
		t.Fatalf("expected 1 subcategory, got %d", len(tree[0].Subcategories))
	}
	if len(tree[0].Subcategories[0].Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(tree[0].Subcategories[0].Products))
	}
}

func TestCarousel(t *testing.T) {
	resp := doGet(t, "/api/carousel")
	defer resp.Body.Close()

	images := decodeJSON[[]carouselResponse](t, resp)
	if len(images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(images))
	}
	if images[0].ImageURL == "" {
		t.Error("image_url is empty")
	}
}
