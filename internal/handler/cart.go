package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/Elaba987/pry-Inventario/internal/domain/product"
	"github.com/Elaba987/pry-Inventario/internal/domain/sale"
)

func encodeLine(e *jx.Encoder, l sale.Line) {
	e.ObjStart()
	e.FieldStart("producto")
	encodeProduct(e, l.Product)
	e.FieldStart("cantidad")
	e.Int(l.Quantity)
	e.FieldStart("subtotal")
	encodeDecimal(e, l.Subtotal)
	e.ObjEnd()
}

// encodeCartLine is encodeLine plus the remaining availability of the line's
// product, shown only while the sale is still open.
func encodeCartLine(e *jx.Encoder, l sale.Line, available int) {
	e.ObjStart()
	e.FieldStart("producto")
	encodeProduct(e, l.Product)
	e.FieldStart("cantidad")
	e.Int(l.Quantity)
	e.FieldStart("subtotal")
	encodeDecimal(e, l.Subtotal)
	e.FieldStart("disponible")
	e.Int(available)
	e.ObjEnd()
}

func encodeSale(e *jx.Encoder, s *sale.Sale) {
	e.ObjStart()
	e.FieldStart("fecha")
	encodeTime(e, s.Timestamp)
	e.FieldStart("items")
	e.ArrStart()
	for _, l := range s.Lines {
		encodeLine(e, l)
	}
	e.ArrEnd()
	e.FieldStart("total")
	encodeDecimal(e, s.Total)
	e.FieldStart("numeroTicket")
	e.Int(s.TicketNumber)
	e.ObjEnd()
}

// getCart serves the open session: lines with remaining availability for
// each line's product, and the running total.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	lines := h.cart.Lines()
	total := h.cart.Total()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("items")
		e.ArrStart()
		for _, l := range lines {
			available, err := h.cart.AvailableFor(l.Product.Key)
			if err != nil {
				// Product removed from the catalog after it was added.
				available = 0
			}
			encodeCartLine(e, l, available)
		}
		e.ArrEnd()
		e.FieldStart("total")
		encodeDecimal(e, total)
		e.ObjEnd()
	})
}

// addCartItem validates availability before appending the line: the open
// cart already reserves stock for its own lines, so the check runs against
// stock minus in-cart quantity, not raw stock.
func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var (
		key      int
		quantity int
	)

	d := jx.Decode(r.Body, 512)
	if err := d.Obj(func(d *jx.Decoder, field string) error {
		var err error
		switch field {
		case "clave":
			key, err = d.Int()
		case "cantidad":
			quantity, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		writeError(w, http.StatusBadRequest, "malformed cart item")
		return
	}

	if quantity < 1 {
		writeError(w, http.StatusUnprocessableEntity, "quantity must be greater than 0")
		return
	}

	p, err := h.products.FindByKey(key)
	if err != nil {
		respondError(w, r, err)
		return
	}

	available, err := h.cart.AvailableFor(key)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if quantity > available {
		respondError(w, r, &product.InsufficientStockError{
			Key:       key,
			Stock:     available,
			Requested: quantity,
		})
		return
	}

	line, err := h.cart.AddLine(p, quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeLine(e, line)
	})
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid line index")
		return
	}

	if err := h.cart.RemoveLine(index); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) commitSale(w http.ResponseWriter, r *http.Request) {
	committed, err := h.checkout.Commit(r.Context(), h.cart)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeSale(e, committed)
	})
}
