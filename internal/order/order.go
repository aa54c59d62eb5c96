// Package order implements order admission: validation, capacity
// enforcement for express delivery and delivery time slots, and the
// atomic commit of an order together with its line items.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Capacity limits. Both resources are bounded at five orders: express
// counts only outstanding (not yet supplied) orders, a slot counts every
// order ever admitted into it.
const (
	ExpressBacklogLimit = 5
	SlotCapacity        = 5
)

// FulfillmentStatus tracks whether an order has been delivered.
type FulfillmentStatus string

const (
	StatusNotSupplied FulfillmentStatus = "not_supplied"
	StatusSupplied    FulfillmentStatus = "supplied"
)

// ParseFulfillmentStatus validates a raw status value from a client.
func ParseFulfillmentStatus(raw string) (FulfillmentStatus, error) {
	switch FulfillmentStatus(raw) {
	case StatusSupplied, StatusNotSupplied:
		return FulfillmentStatus(raw), nil
	}
	return "", &InvalidStatusError{Value: raw}
}

// Order is a customer purchase together with its line items. The ID is
// assigned by the store on insert.
type Order struct {
	ID               string
	CustomerName     string
	CustomerPhone    string
	DeliveryAddress  string
	DeliveryCity     string
	PaymentMethod    string
	CustomerNotes    string
	ExpressDelivery  bool
	DeliveryTimeSlot string // trimmed slot key, empty when no slot was chosen
	Fulfillment      FulfillmentStatus
	Status           string // lifecycle marker, "new" at creation
	Total            decimal.Decimal
	Items            []Item
	CreatedAt        time.Time
}

// Item is a single order line. ProductID may be empty: the line keeps a
// name snapshot even when the product was deleted or never referenced.
type Item struct {
	OrderID     string
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	CreatedAt   time.Time
}

// StatusNew is the lifecycle marker stamped on every admitted order.
const StatusNew = "new"

// Repository defines persistence operations for orders. Create must
// enforce both capacity limits and write the order header and all items
// atomically: two concurrent Create calls contending on the same
// capacity key may never both succeed past a full limit, and a failed
// Create leaves no partial rows behind.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	ExpressBacklog(ctx context.Context) (int, error)
	SlotOccupancy(ctx context.Context, slotKey string) (int, error)
	SlotOccupancies(ctx context.Context) (map[string]int, error)
	ListWithItems(ctx context.Context) ([]Order, error)
	SetFulfillment(ctx context.Context, id string, status FulfillmentStatus) error
}
