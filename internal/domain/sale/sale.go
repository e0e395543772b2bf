// Package sale holds the immutable record of committed sales: the line and
// sale models, the append-only ledger, and the printable ticket format.
package sale

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Elaba987/pry-Inventario/internal/domain/product"
)

// Line is one position of a sale. The embedded product is a value snapshot
// taken at add-time, so later catalog edits never change a committed line.
// JSON field names match the legacy persisted records.
type Line struct {
	Product  product.Product `json:"producto"`
	Quantity int             `json:"cantidad"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// NewLine builds a line for the given product snapshot and quantity.
func NewLine(p product.Product, quantity int) Line {
	return Line{
		Product:  p,
		Quantity: quantity,
		Subtotal: p.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// Sale is a committed sale. It is immutable once created; the ticket number
// is assigned at commit and never re-derived.
type Sale struct {
	Timestamp    time.Time       `json:"fecha"`
	Lines        []Line          `json:"items"`
	Total        decimal.Decimal `json:"total"`
	TicketNumber int             `json:"numeroTicket"`
}
