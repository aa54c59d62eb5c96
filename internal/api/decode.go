package api

import (
	"io"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/shukshop/storefront-api/internal/order"
)

// decodeSubmitRequest reads an order-creation body. Unknown keys are
// skipped; field-level validation is left to order.Assemble, this layer
// only rejects bodies that are not syntactically usable.
func decodeSubmitRequest(r io.Reader) (order.SubmitRequest, error) {
	var req order.SubmitRequest

	d := jx.Decode(r, 4096)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "customer_name":
			return decodeStr(d, &req.CustomerName)
		case "customer_phone":
			return decodeStr(d, &req.CustomerPhone)
		case "delivery_address":
			return decodeStr(d, &req.DeliveryAddress)
		case "delivery_city":
			return decodeStr(d, &req.DeliveryCity)
		case "payment_method":
			return decodeStr(d, &req.PaymentMethod)
		case "customer_notes":
			return decodeStr(d, &req.CustomerNotes)
		case "delivery_time_slot":
			return decodeStr(d, &req.DeliveryTimeSlot)
		case "express_delivery":
			if d.Next() == jx.Null {
				return d.Null()
			}
			v, err := d.Bool()
			if err != nil {
				return errors.Wrap(err, "express_delivery")
			}
			req.ExpressDelivery = v
			return nil
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				item, err := decodeSubmitItem(d)
				if err != nil {
					return err
				}
				req.Items = append(req.Items, item)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return order.SubmitRequest{}, errors.Wrap(err, "decode order request")
	}
	return req, nil
}

func decodeSubmitItem(d *jx.Decoder) (order.SubmitItem, error) {
	var item order.SubmitItem
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "product_id":
			return decodeStr(d, &item.ProductID)
		case "product_name_he":
			return decodeStr(d, &item.ProductName)
		case "quantity":
			n, err := d.Num()
			if err != nil {
				return errors.Wrap(err, "quantity")
			}
			q, err := n.Int64()
			if err != nil {
				return errors.Wrap(err, "quantity")
			}
			item.Quantity = int(q)
			return nil
		case "unit_price":
			n, err := d.Num()
			if err != nil {
				return errors.Wrap(err, "unit_price")
			}
			price, err := decimal.NewFromString(strings.Trim(n.String(), `"`))
			if err != nil {
				return errors.Wrap(err, "unit_price")
			}
			item.UnitPrice = price
			return nil
		default:
			return d.Skip()
		}
	})
	return item, err
}

// decodeStr reads a string field, treating JSON null as absent.
func decodeStr(d *jx.Decoder, dst *string) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	v, err := d.Str()
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
