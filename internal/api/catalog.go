package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shukshop/storefront-api/internal/catalog"
)

type categoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name_he"`
	Slug      string    `json:"slug,omitempty"`
	Icon      string    `json:"icon,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

type subcategoryResponse struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"category_id"`
	Name       string    `json:"name_he"`
	Slug       string    `json:"slug,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
	SortOrder  int       `json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
}

type productResponse struct {
	ID            string      `json:"id"`
	SubcategoryID string      `json:"subcategory_id"`
	Name          string      `json:"name_he"`
	Description   string      `json:"description_he,omitempty"`
	Price         json.Number `json:"price"`
	ImageURL      string      `json:"image_url,omitempty"`
	SortOrder     int         `json:"sort_order"`
	CreatedAt     time.Time   `json:"created_at"`
}

type carouselResponse struct {
	ID        string    `json:"id"`
	ImageURL  string    `json:"image_url"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

func toCategoryResponse(c catalog.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		Icon:      c.Icon,
		ImageURL:  c.ImageURL,
		SortOrder: c.SortOrder,
		CreatedAt: c.CreatedAt,
	}
}

func toSubcategoryResponse(s catalog.Subcategory) subcategoryResponse {
	return subcategoryResponse{
		ID:         s.ID,
		CategoryID: s.CategoryID,
		Name:       s.Name,
		Slug:       s.Slug,
		ImageURL:   s.ImageURL,
		SortOrder:  s.SortOrder,
		CreatedAt:  s.CreatedAt,
	}
}

func toProductResponse(p catalog.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		SubcategoryID: p.SubcategoryID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         jsonMoney(p.Price),
		ImageURL:      p.ImageURL,
		SortOrder:     p.SortOrder,
		CreatedAt:     p.CreatedAt,
	}
}

// Categories lists all storefront categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.Categories(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	resp := make([]categoryResponse, len(list))
	for i, c := range list {
		resp[i] = toCategoryResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Subcategories lists subcategories, optionally filtered by category_id.
func (h *Handler) Subcategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.Subcategories(r.Context(), r.URL.Query().Get("category_id"))
	if err != nil {
		serverError(w, r, err)
		return
	}
	resp := make([]subcategoryResponse, len(list))
	for i, s := range list {
		resp[i] = toSubcategoryResponse(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Products lists products, optionally filtered by subcategory_id.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.Products(r.Context(), r.URL.Query().Get("subcategory_id"))
	if err != nil {
		serverError(w, r, err)
		return
	}
	resp := make([]productResponse, len(list))
	for i, p := range list {
		resp[i] = toProductResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

type storeCategoryResponse struct {
	categoryResponse
	Subcategories []storeSubcategoryResponse `json:"subcategories"`
}

type storeSubcategoryResponse struct {
	subcategoryResponse
	Products []productResponse `json:"products"`
}

// Store returns the full category → subcategory → product tree in one
// response for storefront rendering.
func (h *Handler) Store(w http.ResponseWriter, r *http.Request) {
	tree, err := catalog.StoreTree(r.Context(), h.catalog)
	if err != nil {
		serverError(w, r, err)
		return
	}

	resp := make([]storeCategoryResponse, len(tree))
	for i, cat := range tree {
		subs := make([]storeSubcategoryResponse, len(cat.Subcategories))
		for j, sub := range cat.Subcategories {
			products := make([]productResponse, len(sub.Products))
			for k, p := range sub.Products {
				products[k] = toProductResponse(p)
			}
			subs[j] = storeSubcategoryResponse{
				subcategoryResponse: toSubcategoryResponse(sub.Subcategory),
				Products:            products,
			}
		}
		resp[i] = storeCategoryResponse{
			categoryResponse: toCategoryResponse(cat.Category),
			Subcategories:    subs,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Carousel lists the home page carousel images.
func (h *Handler) Carousel(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.Carousel(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	resp := make([]carouselResponse, len(list))
	for i, img := range list {
		resp[i] = carouselResponse{
			ID:        img.ID,
			ImageURL:  img.ImageURL,
			SortOrder: img.SortOrder,
			CreatedAt: img.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
