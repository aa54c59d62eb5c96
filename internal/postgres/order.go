package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shukshop/storefront-api/internal/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// expressLockKey is the advisory-lock key serializing express
// admissions. Slot admissions lock on "slot:<key>" so that different
// slots, and express versus non-express orders, never contend.
const expressLockKey = "orders:express"

const (
	lockKeySQL = `SELECT pg_advisory_xact_lock(hashtext($1))`

	countExpressBacklogSQL = `SELECT count(*) FROM orders
	WHERE express_delivery AND order_status = 'not_supplied'`

	countSlotSQL = `SELECT count(*) FROM orders WHERE delivery_time_slot = $1`

	insertOrderSQL = `INSERT INTO orders (
		customer_name, customer_phone, delivery_address, delivery_city,
		payment_method, customer_notes, express_delivery, delivery_time_slot,
		order_status, status, total
	) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, NULLIF($8, ''), $9, $10, $11)
	RETURNING id, created_at`

	insertItemSQL = `INSERT INTO order_items (
		order_id, product_id, product_name_he, quantity, unit_price, line_total
	) VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6)`
)

// Create admits an order. The capacity checks and the aggregate insert
// run in one transaction; an advisory transaction lock per capacity key
// serializes contending admissions so two requests cannot both observe
// a free slot and both commit. The header and all items commit together
// or not at all.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if o.ExpressDelivery {
			if _, err := tx.Exec(ctx, lockKeySQL, expressLockKey); err != nil {
				return errors.Wrap(err, "lock express key")
			}
			var n int
			if err := tx.QueryRow(ctx, countExpressBacklogSQL).Scan(&n); err != nil {
				return errors.Wrap(err, "count express backlog")
			}
			if n >= order.ExpressBacklogLimit {
				return order.ErrExpressCapacity
			}
		}

		if o.DeliveryTimeSlot != "" {
			if _, err := tx.Exec(ctx, lockKeySQL, "slot:"+o.DeliveryTimeSlot); err != nil {
				return errors.Wrap(err, "lock slot key")
			}
			var n int
			if err := tx.QueryRow(ctx, countSlotSQL, o.DeliveryTimeSlot).Scan(&n); err != nil {
				return errors.Wrap(err, "count slot occupancy")
			}
			if n >= order.SlotCapacity {
				return order.ErrSlotCapacity
			}
		}

		err := tx.QueryRow(ctx, insertOrderSQL,
			o.CustomerName, o.CustomerPhone, o.DeliveryAddress, o.DeliveryCity,
			o.PaymentMethod, o.CustomerNotes, o.ExpressDelivery, o.DeliveryTimeSlot,
			string(o.Fulfillment), o.Status, o.Total,
		).Scan(&o.ID, &o.CreatedAt)
		if err != nil {
			return errors.Wrap(err, "insert order")
		}

		batch := &pgx.Batch{}
		for i := range o.Items {
			it := &o.Items[i]
			it.OrderID = o.ID
			batch.Queue(insertItemSQL,
				o.ID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, it.LineTotal,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return errors.Wrap(err, "insert order items")
		}
		return nil
	})
	if err != nil {
		// Capacity rejections pass through untouched for errors.Is checks.
		if errors.Is(err, order.ErrExpressCapacity) || errors.Is(err, order.ErrSlotCapacity) {
			return err
		}
		return errors.Wrap(err, "admit order")
	}
	return nil
}

// ExpressBacklog counts express orders that have not been supplied yet.
func (r *OrderRepository) ExpressBacklog(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countExpressBacklogSQL).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count express backlog")
	}
	return n, nil
}

// SlotOccupancy counts orders admitted into the given slot, regardless
// of fulfillment status.
func (r *OrderRepository) SlotOccupancy(ctx context.Context, slotKey string) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countSlotSQL, slotKey).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count slot occupancy")
	}
	return n, nil
}

// SlotOccupancies returns occupancy per slot over all orders with a slot.
func (r *OrderRepository) SlotOccupancies(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT delivery_time_slot, count(*) FROM orders
	WHERE delivery_time_slot IS NOT NULL GROUP BY delivery_time_slot`)
	if err != nil {
		return nil, errors.Wrap(err, "query slot occupancies")
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			slot string
			n    int
		)
		if err := rows.Scan(&slot, &n); err != nil {
			return nil, errors.Wrap(err, "scan slot occupancy")
		}
		counts[slot] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate slot occupancies")
	}
	return counts, nil
}

const listOrdersSQL = `SELECT id, customer_name, customer_phone, delivery_address,
	delivery_city, payment_method, COALESCE(customer_notes, ''), express_delivery,
	COALESCE(delivery_time_slot, ''), order_status, status, total, created_at
FROM orders ORDER BY created_at DESC`

const listItemsSQL = `SELECT order_id, COALESCE(product_id::text, ''), product_name_he,
	quantity, unit_price, line_total, created_at
FROM order_items ORDER BY created_at ASC`

// ListWithItems returns every order, newest first, with its items
// attached in creation order.
func (r *OrderRepository) ListWithItems(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	defer rows.Close()

	var (
		list  []order.Order
		index = make(map[string]int)
	)
	for rows.Next() {
		var o order.Order
		err := rows.Scan(&o.ID, &o.CustomerName, &o.CustomerPhone, &o.DeliveryAddress,
			&o.DeliveryCity, &o.PaymentMethod, &o.CustomerNotes, &o.ExpressDelivery,
			&o.DeliveryTimeSlot, &o.Fulfillment, &o.Status, &o.Total, &o.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		index[o.ID] = len(list)
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate orders")
	}

	itemRows, err := r.pool.Query(ctx, listItemsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "query order items")
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var it order.Item
		err := itemRows.Scan(&it.OrderID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.LineTotal, &it.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "scan order item")
		}
		if i, ok := index[it.OrderID]; ok {
			list[i].Items = append(list[i].Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate order items")
	}
	return list, nil
}

// SetFulfillment updates a single order's fulfillment status.
func (r *OrderRepository) SetFulfillment(ctx context.Context, id string, status order.FulfillmentStatus) error {
	// id::text comparison keeps malformed ids a not-found, not a cast error.
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET order_status = $2 WHERE id::text = $1`, id, string(status))
	if err != nil {
		return errors.Wrapf(err, "update order %q status", id)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}
