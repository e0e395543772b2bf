package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Elaba987/pry-Inventario/internal/domain/product"
	"github.com/Elaba987/pry-Inventario/internal/domain/sale"
	"github.com/Elaba987/pry-Inventario/internal/domain/supplier"
)

// Stats is the snapshot shown on the control panel.
type Stats struct {
	SalesToday     decimal.Decimal
	SuppliersToday int
	LowStock       int
}

// Dashboard computes control panel statistics from the catalog, the supplier
// directory, and the ledger.
type Dashboard struct {
	products          *product.Store
	suppliers         *supplier.Store
	ledger            *sale.Ledger
	lowStockThreshold int
	now               func() time.Time
}

// NewDashboard creates a Dashboard over the given components. A threshold
// below 1 falls back to the default low stock threshold.
func NewDashboard(products *product.Store, suppliers *supplier.Store, ledger *sale.Ledger, lowStockThreshold int) *Dashboard {
	if lowStockThreshold < 1 {
		lowStockThreshold = product.DefaultLowStockThreshold
	}
	return &Dashboard{
		products:          products,
		suppliers:         suppliers,
		ledger:            ledger,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
	}
}

// Stats recomputes the snapshot.
func (d *Dashboard) Stats() Stats {
	total := decimal.Zero
	for _, s := range d.ledger.ByDay(d.now()) {
		total = total.Add(s.Total)
	}
	return Stats{
		SalesToday:     total,
		SuppliersToday: len(d.suppliers.VisitingToday()),
		LowStock:       len(d.products.LowStock(d.lowStockThreshold)),
	}
}
