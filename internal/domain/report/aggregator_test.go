package report

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elaba987/pry-Inventario/internal/domain/sale"
	"github.com/Elaba987/pry-Inventario/internal/storage/memory"
)

// --- Helpers ---

func seededLedger(t *testing.T, sales ...*sale.Sale) *sale.Ledger {
	t.Helper()

	l, err := sale.Load(context.Background(), memory.New())
	require.NoError(t, err)
	for _, s := range sales {
		require.NoError(t, l.Append(context.Background(), s))
	}
	return l
}

func saleAt(ts time.Time, ticket int, total string) *sale.Sale {
	return &sale.Sale{
		Timestamp:    ts,
		Total:        decimal.RequireFromString(total),
		TicketNumber: ticket,
	}
}

func fixedAggregator(l *sale.Ledger, now time.Time) *Aggregator {
	a := NewAggregator(l)
	a.now = func() time.Time { return now }
	return a
}

// --- Tests ---

func TestDaily(t *testing.T) {
	now := time.Date(2025, time.March, 14, 18, 0, 0, 0, time.Local)
	l := seededLedger(t,
		saleAt(now.Add(-10*time.Hour), 1, "10.00"),
		saleAt(now.Add(-1*time.Hour), 2, "20.00"),
		saleAt(now.AddDate(0, 0, -1), 3, "99.00"),
	)

	rep := fixedAggregator(l, now).Daily()

	assert.Equal(t, "Ventas del Día", rep.Title)
	assert.Equal(t, 2, rep.Count)
	assert.True(t, decimal.RequireFromString("30.00").Equal(rep.Total))
}

func TestWeekly_InclusiveLowerBound(t *testing.T) {
	now := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.Local)
	l := seededLedger(t,
		// Exactly 7 days before now: still inside the window.
		saleAt(now.AddDate(0, 0, -7), 1, "10.00"),
		saleAt(now.AddDate(0, 0, -7).Add(-time.Second), 2, "99.00"),
		saleAt(now.AddDate(0, 0, -3), 3, "20.00"),
		saleAt(now, 4, "30.00"),
	)

	rep := fixedAggregator(l, now).Weekly()

	assert.Equal(t, "Ventas de la Semana", rep.Title)
	assert.Equal(t, 3, rep.Count)
	assert.True(t, decimal.RequireFromString("60.00").Equal(rep.Total))
}

func TestMonthly_CalendarMonth(t *testing.T) {
	now := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.Local)
	l := seededLedger(t,
		saleAt(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.Local), 1, "10.00"),
		saleAt(time.Date(2025, time.March, 31, 23, 59, 59, 0, time.Local), 2, "20.00"),
		saleAt(time.Date(2025, time.February, 28, 12, 0, 0, 0, time.Local), 3, "99.00"),
		saleAt(time.Date(2024, time.March, 14, 12, 0, 0, 0, time.Local), 4, "99.00"),
	)

	rep := fixedAggregator(l, now).Monthly()

	assert.Equal(t, "Ventas del Mes", rep.Title)
	assert.Equal(t, 2, rep.Count)
	assert.True(t, decimal.RequireFromString("30.00").Equal(rep.Total))
}

func TestGenerate(t *testing.T) {
	now := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.Local)
	a := fixedAggregator(seededLedger(t, saleAt(now, 1, "10.00")), now)

	for period, title := range map[string]string{
		"daily":   "Ventas del Día",
		"weekly":  "Ventas de la Semana",
		"monthly": "Ventas del Mes",
	} {
		rep, err := a.Generate(period)
		require.NoError(t, err)
		assert.Equal(t, title, rep.Title)
		assert.Equal(t, 1, rep.Count)
	}
}

func TestGenerate_UnknownPeriod(t *testing.T) {
	a := fixedAggregator(seededLedger(t), time.Now())

	_, err := a.Generate("yearly")
	require.ErrorIs(t, err, ErrUnknownPeriod)
}

func TestReport_EmptyLedger(t *testing.T) {
	rep := fixedAggregator(seededLedger(t), time.Now()).Daily()

	assert.Equal(t, 0, rep.Count)
	assert.True(t, decimal.Zero.Equal(rep.Total))
	assert.Empty(t, rep.Sales)
}
