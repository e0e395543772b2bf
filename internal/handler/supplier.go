package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/jx"

	"github.com/Elaba987/pry-Inventario/internal/domain/supplier"
)

func encodeSupplier(e *jx.Encoder, s supplier.Supplier) {
	e.ObjStart()
	e.FieldStart("nombre")
	e.Str(s.Name)
	e.FieldStart("telefono")
	e.Str(s.Phone)
	e.FieldStart("email")
	e.Str(s.Email)
	e.FieldStart("fechaVisita")
	encodeTime(e, s.VisitDate)
	e.ObjEnd()
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var suppliers []supplier.Supplier
	switch {
	case q.Get("today") != "":
		suppliers = h.suppliers.VisitingToday()
	case q.Get("sort") == "visit":
		suppliers = h.suppliers.SortByVisitDate()
	default:
		suppliers = h.suppliers.All()
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, s := range suppliers {
			encodeSupplier(e, s)
		}
		e.ArrEnd()
	})
}

// parseVisitDate accepts either a full RFC 3339 timestamp or a bare date.
func parseVisitDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

func (h *Handler) addSupplier(w http.ResponseWriter, r *http.Request) {
	var (
		sup      supplier.Supplier
		rawVisit string
	)

	d := jx.Decode(r.Body, 512)
	if err := d.Obj(func(d *jx.Decoder, field string) error {
		var err error
		switch field {
		case "nombre":
			sup.Name, err = d.Str()
		case "telefono":
			sup.Phone, err = d.Str()
		case "email":
			sup.Email, err = d.Str()
		case "fechaVisita":
			rawVisit, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		writeError(w, http.StatusBadRequest, "malformed supplier")
		return
	}

	if sup.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "supplier name must not be empty")
		return
	}

	visit, err := parseVisitDate(rawVisit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed visit date")
		return
	}
	sup.VisitDate = visit

	if err := h.suppliers.Add(r.Context(), sup); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeSupplier(e, sup)
	})
}

func (h *Handler) removeSupplier(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid supplier index")
		return
	}

	if err := h.suppliers.Remove(r.Context(), index); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
