package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/Elaba987/pry-Inventario/internal/domain/product"
)

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("clave")
	e.Int(p.Key)
	e.FieldStart("nombre")
	e.Str(p.Name)
	e.FieldStart("precio")
	encodeDecimal(e, p.Price)
	e.FieldStart("stock")
	e.Int(p.Stock)
	e.ObjEnd()
}

func encodeProducts(e *jx.Encoder, products []product.Product) {
	e.ArrStart()
	for _, p := range products {
		encodeProduct(e, p)
	}
	e.ArrEnd()
}

// parseProductKey reads the {key} path value as a positive integer.
func parseProductKey(r *http.Request) (int, bool) {
	key, err := strconv.Atoi(r.PathValue("key"))
	if err != nil || key <= 0 {
		return 0, false
	}
	return key, true
}

// listProducts serves the catalog, optionally filtered by a search term,
// the low stock flag, or reordered by stock level.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var products []product.Product
	switch {
	case q.Get("low_stock") != "":
		products = h.products.LowStock(h.lowStockThreshold)
	case q.Get("search") != "":
		products = h.products.Search(q.Get("search"))
	case q.Get("sort") == "desc":
		products = h.products.SortByStock(product.SortDescending)
	case q.Get("sort") == "asc":
		products = h.products.SortByStock(product.SortAscending)
	default:
		products = h.products.All()
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeProducts(e, products)
	})
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	var draft product.Draft

	d := jx.Decode(r.Body, 512)
	if err := d.Obj(func(d *jx.Decoder, field string) error {
		var err error
		switch field {
		case "clave":
			draft.Key, err = d.Int()
		case "nombre":
			draft.Name, err = d.Str()
		case "precio":
			draft.Price, err = decodeDecimal(d)
		case "stock":
			draft.Stock, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		writeError(w, http.StatusBadRequest, "malformed product")
		return
	}

	p, err := h.products.Add(r.Context(), draft)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeProduct(e, p)
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	key, ok := parseProductKey(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product key")
		return
	}

	p, err := h.products.FindByKey(key)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeProduct(e, p)
	})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	key, ok := parseProductKey(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product key")
		return
	}

	var patch product.Patch

	d := jx.Decode(r.Body, 512)
	if err := d.Obj(func(d *jx.Decoder, field string) error {
		switch field {
		case "nombre":
			name, err := d.Str()
			if err != nil {
				return err
			}
			patch.Name = &name
		case "precio":
			price, err := decodeDecimal(d)
			if err != nil {
				return err
			}
			patch.Price = &price
		case "stock":
			stock, err := d.Int()
			if err != nil {
				return err
			}
			patch.Stock = &stock
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		writeError(w, http.StatusBadRequest, "malformed product patch")
		return
	}

	p, err := h.products.Update(r.Context(), key, patch)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeProduct(e, p)
	})
}

func (h *Handler) setStock(w http.ResponseWriter, r *http.Request) {
	key, ok := parseProductKey(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product key")
		return
	}

	stock := -1
	d := jx.Decode(r.Body, 512)
	if err := d.Obj(func(d *jx.Decoder, field string) error {
		var err error
		if field == "stock" {
			stock, err = d.Int()
			return err
		}
		return d.Skip()
	}); err != nil || stock < 0 {
		writeError(w, http.StatusBadRequest, "malformed stock value")
		return
	}

	p, err := h.products.SetStock(r.Context(), key, stock)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeProduct(e, p)
	})
}

func (h *Handler) removeProduct(w http.ResponseWriter, r *http.Request) {
	key, ok := parseProductKey(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product key")
		return
	}

	if err := h.products.Remove(r.Context(), key); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
