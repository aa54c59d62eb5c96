package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shukshop/storefront-api/internal/order"
)

// jsonMoney renders a monetary amount as a JSON number with exactly two
// fractional digits.
func jsonMoney(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

type okResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// serverError logs the failure and responds 500 with the underlying
// message, matching the store's long-standing error contract.
func serverError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, err.Error())
}

// orderError maps domain rejections to client-error responses and
// everything else to a server error.
func orderError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *order.ValidationError
	if errors.As(err, &vErr) {
		writeError(w, http.StatusBadRequest, vErr.Error())
		return
	}
	var sErr *order.InvalidStatusError
	if errors.As(err, &sErr) {
		writeError(w, http.StatusBadRequest, sErr.Error())
		return
	}
	switch {
	case errors.Is(err, order.ErrExpressCapacity), errors.Is(err, order.ErrSlotCapacity):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		serverError(w, r, err)
	}
}
