package order

import "fmt"

// Sentinel errors for capacity rejections. Both are business-rule
// rejections, not store failures; retrying the same request is pointless
// but a different slot or a non-express order may still be admitted.
var (
	ErrExpressCapacity = fmt.Errorf("express delivery is unavailable: the limit of %d outstanding express orders is full", ExpressBacklogLimit)
	ErrSlotCapacity    = fmt.Errorf("the chosen delivery slot is full (%d orders), pick another slot", SlotCapacity)
)

// ErrNotFound indicates the referenced order does not exist.
var ErrNotFound = fmt.Errorf("order not found")

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// InvalidStatusError indicates a fulfillment status outside the
// enumerated set.
type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid order_status %q", e.Value)
}
