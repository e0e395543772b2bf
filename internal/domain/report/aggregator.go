// Package report composes read-only views over the sales ledger: fixed
// time-window reports and the dashboard statistics.
package report

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Elaba987/pry-Inventario/internal/domain/sale"
)

// ErrUnknownPeriod is returned by Generate for an unrecognized period name.
var ErrUnknownPeriod = errors.New("unknown report period")

// Report is a transient aggregation over the ledger. Sales are referenced
// from the ledger, not copied; the report is recomputed per query.
type Report struct {
	Title string
	Sales []*sale.Sale
	Count int
	Total decimal.Decimal
}

// Aggregator answers "how much did we sell in period P" over the ledger.
type Aggregator struct {
	ledger *sale.Ledger
	now    func() time.Time
}

// NewAggregator creates an Aggregator reading from the given ledger.
func NewAggregator(ledger *sale.Ledger) *Aggregator {
	return &Aggregator{ledger: ledger, now: time.Now}
}

// Daily reports sales of the current local calendar day.
func (a *Aggregator) Daily() Report {
	return build("Ventas del Día", a.ledger.ByDay(a.now()))
}

// Weekly reports sales of the rolling 7-day window ending now. The window
// is inclusive on both ends: a sale at exactly now minus 7 days counts.
func (a *Aggregator) Weekly() Report {
	now := a.now()
	return build("Ventas de la Semana", a.ledger.ByRange(now.AddDate(0, 0, -7), now))
}

// Monthly reports sales of the current calendar month, not a rolling window.
func (a *Aggregator) Monthly() Report {
	now := a.now()
	return build("Ventas del Mes", a.ledger.ByMonth(now.Year(), now.Month()))
}

// Generate dispatches by period name: "daily", "weekly" or "monthly".
func (a *Aggregator) Generate(period string) (Report, error) {
	switch period {
	case "daily":
		return a.Daily(), nil
	case "weekly":
		return a.Weekly(), nil
	case "monthly":
		return a.Monthly(), nil
	default:
		return Report{}, errors.Wrapf(ErrUnknownPeriod, "%q", period)
	}
}

func build(title string, sales []*sale.Sale) Report {
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.Total)
	}
	return Report{
		Title: title,
		Sales: sales,
		Count: len(sales),
		Total: total,
	}
}
