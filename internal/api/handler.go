// Package api exposes the storefront over HTTP: catalog browsing,
// checkout capacity probes, order admission, and the admin order list.
package api

import (
	"net/http"

	"github.com/shukshop/storefront-api/internal/catalog"
	"github.com/shukshop/storefront-api/internal/order"
)

// Handler carries the dependencies shared by all endpoints.
type Handler struct {
	catalog catalog.Repository
	orders  *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(cat catalog.Repository, orders *order.Service) *Handler {
	return &Handler{
		catalog: cat,
		orders:  orders,
	}
}

// Routes registers every API endpoint on the given mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.HealthCheck)

	mux.HandleFunc("GET /api/categories", h.Categories)
	mux.HandleFunc("GET /api/subcategories", h.Subcategories)
	mux.HandleFunc("GET /api/products", h.Products)
	mux.HandleFunc("GET /api/store", h.Store)
	mux.HandleFunc("GET /api/carousel", h.Carousel)

	mux.HandleFunc("GET /api/checkout/delivery-slot-counts", h.DeliverySlotCounts)
	mux.HandleFunc("GET /api/checkout/express-available", h.ExpressAvailable)

	mux.HandleFunc("POST /api/orders", h.PlaceOrder)

	mux.HandleFunc("GET /api/admin/orders", h.AdminListOrders)
	mux.HandleFunc("PATCH /api/admin/orders/{id}", h.AdminSetOrderStatus)
}

// HealthCheck is the application-level probe kept for storefront
// clients; the operational /livez and /readyz endpoints are registered
// by the server next to the API routes.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}
