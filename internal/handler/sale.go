package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/Elaba987/pry-Inventario/internal/domain/report"
	"github.com/Elaba987/pry-Inventario/internal/domain/sale"
)

func (h *Handler) listSales(w http.ResponseWriter, _ *http.Request) {
	sales := h.ledger.All()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, s := range sales {
			encodeSale(e, s)
		}
		e.ArrEnd()
	})
}

// downloadTicket serves the printable ticket of a committed sale as a plain
// text attachment.
func (h *Handler) downloadTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := strconv.Atoi(r.PathValue("ticket"))
	if err != nil || ticket < 1 {
		writeError(w, http.StatusBadRequest, "invalid ticket number")
		return
	}

	var found *sale.Sale
	for _, s := range h.ledger.All() {
		if s.TicketNumber == ticket {
			found = s
			break
		}
	}
	if found == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("ticket %d not found", ticket))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", sale.TicketFilename(found)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(sale.Ticket(found)))
}

func encodeReport(e *jx.Encoder, rep report.Report) {
	e.ObjStart()
	e.FieldStart("titulo")
	e.Str(rep.Title)
	e.FieldStart("ventas")
	e.ArrStart()
	for _, s := range rep.Sales {
		encodeSale(e, s)
	}
	e.ArrEnd()
	e.FieldStart("cantidadVentas")
	e.Int(rep.Count)
	e.FieldStart("totalVentas")
	encodeDecimal(e, rep.Total)
	e.ObjEnd()
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Generate(r.PathValue("period"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeReport(e, rep)
	})
}

func (h *Handler) getDashboard(w http.ResponseWriter, _ *http.Request) {
	stats := h.dashboard.Stats()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("ventasHoy")
		encodeDecimal(e, stats.SalesToday)
		e.FieldStart("proveedoresHoy")
		e.Int(stats.SuppliersToday)
		e.FieldStart("productosBajoStock")
		e.Int(stats.LowStock)
		e.ObjEnd()
	})
}
