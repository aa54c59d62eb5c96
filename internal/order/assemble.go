package order

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubmitRequest is the validated-input boundary for order admission.
// Handlers decode the wire format into this struct; everything past
// Assemble works with normalized, typed data only.
type SubmitRequest struct {
	CustomerName     string
	CustomerPhone    string
	DeliveryAddress  string
	DeliveryCity     string
	PaymentMethod    string
	CustomerNotes    string
	ExpressDelivery  bool
	DeliveryTimeSlot string
	Items            []SubmitItem
}

// SubmitItem is a single requested order line.
type SubmitItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// requiredFields maps field names to their accessors, checked in a fixed
// order so the first missing field is reported deterministically.
var requiredFields = []struct {
	name string
	get  func(*SubmitRequest) string
}{
	{"customer_name", func(r *SubmitRequest) string { return r.CustomerName }},
	{"customer_phone", func(r *SubmitRequest) string { return r.CustomerPhone }},
	{"delivery_address", func(r *SubmitRequest) string { return r.DeliveryAddress }},
	{"delivery_city", func(r *SubmitRequest) string { return r.DeliveryCity }},
	{"payment_method", func(r *SubmitRequest) string { return r.PaymentMethod }},
}

// Assemble validates the request and builds the order aggregate. Line
// totals are quantity times unit price rounded half-up to 2 decimal
// places, and the order total is the exact sum of the line totals, so
// the total invariant holds by construction.
func Assemble(req SubmitRequest) (*Order, error) {
	for _, f := range requiredFields {
		if strings.TrimSpace(f.get(&req)) == "" {
			return nil, &ValidationError{Field: f.name, Reason: "required"}
		}
	}
	if len(req.Items) == 0 {
		return nil, &ValidationError{Field: "items", Reason: "at least one item is required"}
	}

	items := make([]Item, len(req.Items))
	total := decimal.Zero
	for i, it := range req.Items {
		if strings.TrimSpace(it.ProductName) == "" {
			return nil, &ValidationError{Field: "items.product_name_he", Reason: "required"}
		}
		if it.Quantity <= 0 {
			return nil, &ValidationError{Field: "items.quantity", Reason: "must be greater than 0"}
		}
		if it.UnitPrice.IsNegative() {
			return nil, &ValidationError{Field: "items.unit_price", Reason: "must not be negative"}
		}
		// product_id is optional but must be a UUID when present, so a
		// client typo fails validation instead of the store's uuid cast.
		productID := strings.TrimSpace(it.ProductID)
		if productID != "" {
			if _, err := uuid.Parse(productID); err != nil {
				return nil, &ValidationError{Field: "items.product_id", Reason: "must be a valid UUID"}
			}
		}

		lineTotal := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		items[i] = Item{
			ProductID:   productID,
			ProductName: strings.TrimSpace(it.ProductName),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   lineTotal,
		}
		total = total.Add(lineTotal)
	}

	return &Order{
		CustomerName:     strings.TrimSpace(req.CustomerName),
		CustomerPhone:    strings.TrimSpace(req.CustomerPhone),
		DeliveryAddress:  strings.TrimSpace(req.DeliveryAddress),
		DeliveryCity:     strings.TrimSpace(req.DeliveryCity),
		PaymentMethod:    strings.TrimSpace(req.PaymentMethod),
		CustomerNotes:    strings.TrimSpace(req.CustomerNotes),
		ExpressDelivery:  req.ExpressDelivery,
		DeliveryTimeSlot: strings.TrimSpace(req.DeliveryTimeSlot),
		Fulfillment:      StatusNotSupplied,
		Status:           StatusNew,
		Total:            total,
		Items:            items,
	}, nil
}
