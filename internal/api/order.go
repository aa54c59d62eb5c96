package api

import (
	"encoding/json"
	"net/http"
	"time"
)

type placeOrderResponse struct {
	OrderID string      `json:"orderId"`
	Total   json.Number `json:"total"`
}

// PlaceOrder admits a new order: decode, validate, capacity-checked
// atomic commit. 201 with the assigned id and total on success.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSubmitRequest(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	o, err := h.orders.Submit(r.Context(), req)
	if err != nil {
		orderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, placeOrderResponse{
		OrderID: o.ID,
		Total:   jsonMoney(o.Total),
	})
}

type availableResponse struct {
	Available bool `json:"available"`
}

// ExpressAvailable reports whether the express backlog has room for one
// more order. Advisory only: the admission transaction re-checks.
func (h *Handler) ExpressAvailable(w http.ResponseWriter, r *http.Request) {
	available, err := h.orders.ExpressAvailable(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, availableResponse{Available: available})
}

// DeliverySlotCounts returns per-slot occupancy so the checkout UI can
// grey out full slots.
func (h *Handler) DeliverySlotCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.orders.SlotCounts(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	if counts == nil {
		counts = map[string]int{}
	}
	writeJSON(w, http.StatusOK, counts)
}

type orderItemResponse struct {
	OrderID     string      `json:"order_id"`
	ProductID   string      `json:"product_id,omitempty"`
	ProductName string      `json:"product_name_he"`
	Quantity    int         `json:"quantity"`
	UnitPrice   json.Number `json:"unit_price"`
	LineTotal   json.Number `json:"line_total"`
}

type orderResponse struct {
	ID               string              `json:"id"`
	CustomerName     string              `json:"customer_name"`
	CustomerPhone    string              `json:"customer_phone"`
	DeliveryAddress  string              `json:"delivery_address"`
	DeliveryCity     string              `json:"delivery_city"`
	PaymentMethod    string              `json:"payment_method"`
	CustomerNotes    string              `json:"customer_notes,omitempty"`
	ExpressDelivery  bool                `json:"express_delivery"`
	DeliveryTimeSlot string              `json:"delivery_time_slot,omitempty"`
	OrderStatus      string              `json:"order_status"`
	Status           string              `json:"status"`
	Total            json.Number         `json:"total"`
	CreatedAt        time.Time           `json:"created_at"`
	Items            []orderItemResponse `json:"items"`
}

// AdminListOrders returns every order with its items, newest first.
func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.ListOrders(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(list))
	for i, o := range list {
		items := make([]orderItemResponse, len(o.Items))
		for j, it := range o.Items {
			items[j] = orderItemResponse{
				OrderID:     it.OrderID,
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
				UnitPrice:   jsonMoney(it.UnitPrice),
				LineTotal:   jsonMoney(it.LineTotal),
			}
		}
		resp[i] = orderResponse{
			ID:               o.ID,
			CustomerName:     o.CustomerName,
			CustomerPhone:    o.CustomerPhone,
			DeliveryAddress:  o.DeliveryAddress,
			DeliveryCity:     o.DeliveryCity,
			PaymentMethod:    o.PaymentMethod,
			CustomerNotes:    o.CustomerNotes,
			ExpressDelivery:  o.ExpressDelivery,
			DeliveryTimeSlot: o.DeliveryTimeSlot,
			OrderStatus:      string(o.Fulfillment),
			Status:           o.Status,
			Total:            jsonMoney(o.Total),
			CreatedAt:        o.CreatedAt,
			Items:            items,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type setStatusRequest struct {
	OrderStatus string `json:"order_status"`
}

// AdminSetOrderStatus transitions an order's fulfillment status. A
// supplied express order stops counting toward the express backlog on
// the very next capacity check.
func (h *Handler) AdminSetOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.orders.SetFulfillment(r.Context(), r.PathValue("id"), req.OrderStatus); err != nil {
		orderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}
