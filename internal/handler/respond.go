package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Elaba987/pry-Inventario/internal/checkout"
	"github.com/Elaba987/pry-Inventario/internal/domain/cart"
	"github.com/Elaba987/pry-Inventario/internal/domain/product"
	"github.com/Elaba987/pry-Inventario/internal/domain/report"
	"github.com/Elaba987/pry-Inventario/internal/domain/supplier"
	"github.com/Elaba987/pry-Inventario/internal/storage"
)

// writeJSON encodes a response body with the given encode function.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := &jx.Encoder{}
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError responds with the standard error body {code, message}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(message)
		e.ObjEnd()
	})
}

// respondError maps a domain error to an HTTP response. Persistence
// failures mean the in-memory mutation was applied but not stored; they are
// logged and reported as 500 so the client knows durability is degraded.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		dupErr      *product.DuplicateKeyError
		stockErr    *product.InsufficientStockError
		draftErr    *product.InvalidDraftError
		qtyErr      *cart.InvalidQuantityError
		idxErr      *cart.IndexOutOfRangeError
		recErr      *checkout.ReconciliationError
		persistFail *storage.PersistenceError
	)

	switch {
	case errors.As(err, &dupErr):
		writeError(w, http.StatusConflict, dupErr.Error())
	case errors.Is(err, product.ErrNotFound), errors.Is(err, supplier.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &idxErr):
		writeError(w, http.StatusNotFound, idxErr.Error())
	case errors.As(err, &stockErr):
		writeError(w, http.StatusUnprocessableEntity, stockErr.Error())
	case errors.As(err, &qtyErr), errors.Is(err, product.ErrInvalidQuantity):
		writeError(w, http.StatusUnprocessableEntity, "quantity must be greater than 0")
	case errors.Is(err, cart.ErrEmptyCart):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &draftErr):
		writeError(w, http.StatusUnprocessableEntity, draftErr.Error())
	case errors.Is(err, report.ErrUnknownPeriod):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &recErr):
		zctx.From(r.Context()).Error("reconciliation required", zap.Error(err))
		writeError(w, http.StatusInternalServerError, recErr.Error())
	case errors.As(err, &persistFail):
		zctx.From(r.Context()).Warn("persistence degraded", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "storage unavailable, running in memory")
	default:
		zctx.From(r.Context()).Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeDecimal reads a JSON number (or numeric string) as a decimal.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(strings.Trim(n.String(), `"`))
}

// encodeDecimal writes a decimal as a raw JSON number.
func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}

// encodeTime writes a timestamp in RFC 3339 form, matching the persisted
// date format.
func encodeTime(e *jx.Encoder, t time.Time) {
	e.Str(t.Format(time.RFC3339Nano))
}
