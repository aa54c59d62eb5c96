package order

import (
	"context"

	"github.com/go-faster/errors"
)

// Service encapsulates order admission and fulfillment business logic.
// Capacity enforcement itself lives in the Repository so that the check
// and the insert share one transaction; the service owns everything that
// happens before and after that commit.
type Service struct {
	orders Repository
}

// NewService creates a Service backed by the given repository.
func NewService(orders Repository) *Service {
	return &Service{orders: orders}
}

// Submit runs the full admission path: assemble (validate, normalize,
// price) and commit. Capacity rejections surface as ErrExpressCapacity
// or ErrSlotCapacity; validation failures as *ValidationError. On
// success the returned order carries its store-assigned ID.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Order, error) {
	o, err := Assemble(req)
	if err != nil {
		return nil, err
	}

	if err := s.orders.Create(ctx, o); err != nil {
		if errors.Is(err, ErrExpressCapacity) || errors.Is(err, ErrSlotCapacity) {
			return nil, err
		}
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}

// ExpressAvailable reports whether a new express order would currently
// be admitted. The answer is advisory: the authoritative check happens
// inside Submit's transaction.
func (s *Service) ExpressAvailable(ctx context.Context) (bool, error) {
	n, err := s.orders.ExpressBacklog(ctx)
	if err != nil {
		return false, errors.Wrap(err, "count express backlog")
	}
	return n < ExpressBacklogLimit, nil
}

// SlotCounts returns the current occupancy of every delivery slot that
// has at least one order.
func (s *Service) SlotCounts(ctx context.Context) (map[string]int, error) {
	counts, err := s.orders.SlotOccupancies(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "count slot occupancies")
	}
	return counts, nil
}

// ListOrders returns all orders, newest first, each with its items.
func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	list, err := s.orders.ListWithItems(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return list, nil
}

// SetFulfillment transitions an order's fulfillment status. Moving an
// express order to supplied frees one express backlog slot for the very
// next admission; the repository write is immediately visible because
// backlog counts are never cached.
func (s *Service) SetFulfillment(ctx context.Context, id, rawStatus string) error {
	status, err := ParseFulfillmentStatus(rawStatus)
	if err != nil {
		return err
	}
	if err := s.orders.SetFulfillment(ctx, id, status); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return errors.Wrapf(err, "set order %s status", id)
	}
	return nil
}
