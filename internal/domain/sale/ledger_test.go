package sale

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elaba987/pry-Inventario/internal/storage"
	"github.com/Elaba987/pry-Inventario/internal/storage/memory"
)

// --- Mock implementations ---

type failingGateway struct {
	storage.Gateway
	setErr error
}

func (g *failingGateway) Set(ctx context.Context, key string, value []byte) error {
	if g.setErr != nil {
		return g.setErr
	}
	return g.Gateway.Set(ctx, key, value)
}

// --- Helpers ---

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()

	l, err := Load(context.Background(), memory.New())
	require.NoError(t, err)
	return l
}

func saleAt(ts time.Time, ticket int, total string) *Sale {
	return &Sale{
		Timestamp:    ts,
		Total:        decimal.RequireFromString(total),
		TicketNumber: ticket,
	}
}

// --- Tests ---

func TestNextTicketNumber(t *testing.T) {
	l := newTestLedger(t)
	now := time.Now()

	// Numbering starts at 1 and grows with the ledger.
	assert.Equal(t, 1, l.NextTicketNumber())

	require.NoError(t, l.Append(context.Background(), saleAt(now, 1, "10.00")))
	assert.Equal(t, 2, l.NextTicketNumber())

	require.NoError(t, l.Append(context.Background(), saleAt(now, 2, "20.00")))
	assert.Equal(t, 3, l.NextTicketNumber())
}

func TestAppend_PreservesOrder(t *testing.T) {
	l := newTestLedger(t)
	now := time.Now()

	require.NoError(t, l.Append(context.Background(), saleAt(now, 1, "10.00")))
	require.NoError(t, l.Append(context.Background(), saleAt(now, 2, "20.00")))
	require.NoError(t, l.Append(context.Background(), saleAt(now, 3, "30.00")))

	all := l.All()
	require.Len(t, all, 3)
	for i, s := range all {
		assert.Equal(t, i+1, s.TicketNumber)
	}
}

func TestAppend_RevertsOnPersistenceFailure(t *testing.T) {
	gw := &failingGateway{Gateway: memory.New(), setErr: errors.New("connection lost")}
	l, err := Load(context.Background(), gw)
	require.NoError(t, err)

	err = l.Append(context.Background(), saleAt(time.Now(), 1, "10.00"))

	var persistErr *storage.PersistenceError
	require.ErrorAs(t, err, &persistErr)

	// The in-memory append is reverted; the slot stays free.
	assert.Empty(t, l.All())
	assert.Equal(t, 1, l.NextTicketNumber())

	// Once the gateway recovers the same slot is used.
	gw.setErr = nil
	require.NoError(t, l.Append(context.Background(), saleAt(time.Now(), 1, "10.00")))
	assert.Equal(t, 2, l.NextTicketNumber())
}

func TestByDay(t *testing.T) {
	l := newTestLedger(t)
	day := time.Date(2025, time.March, 14, 10, 0, 0, 0, time.Local)

	require.NoError(t, l.Append(context.Background(), saleAt(day, 1, "10.00")))
	require.NoError(t, l.Append(context.Background(), saleAt(day.Add(8*time.Hour), 2, "20.00")))
	require.NoError(t, l.Append(context.Background(), saleAt(day.AddDate(0, 0, 1), 3, "30.00")))

	sales := l.ByDay(day)
	require.Len(t, sales, 2)
	assert.Equal(t, 1, sales[0].TicketNumber)
	assert.Equal(t, 2, sales[1].TicketNumber)
}

func TestByRange_InclusiveBounds(t *testing.T) {
	l := newTestLedger(t)
	start := time.Date(2025, time.March, 7, 12, 0, 0, 0, time.Local)
	end := start.AddDate(0, 0, 7)

	require.NoError(t, l.Append(context.Background(), saleAt(start.Add(-time.Second), 1, "1.00")))
	require.NoError(t, l.Append(context.Background(), saleAt(start, 2, "2.00")))
	require.NoError(t, l.Append(context.Background(), saleAt(start.AddDate(0, 0, 3), 3, "3.00")))
	require.NoError(t, l.Append(context.Background(), saleAt(end, 4, "4.00")))
	require.NoError(t, l.Append(context.Background(), saleAt(end.Add(time.Second), 5, "5.00")))

	sales := l.ByRange(start, end)
	require.Len(t, sales, 3)
	assert.Equal(t, 2, sales[0].TicketNumber)
	assert.Equal(t, 3, sales[1].TicketNumber)
	assert.Equal(t, 4, sales[2].TicketNumber)
}

func TestByMonth(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Append(context.Background(),
		saleAt(time.Date(2025, time.February, 28, 23, 59, 0, 0, time.Local), 1, "1.00")))
	require.NoError(t, l.Append(context.Background(),
		saleAt(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.Local), 2, "2.00")))
	require.NoError(t, l.Append(context.Background(),
		saleAt(time.Date(2025, time.March, 31, 23, 59, 0, 0, time.Local), 3, "3.00")))
	require.NoError(t, l.Append(context.Background(),
		saleAt(time.Date(2024, time.March, 15, 12, 0, 0, 0, time.Local), 4, "4.00")))

	sales := l.ByMonth(2025, time.March)
	require.Len(t, sales, 2)
	assert.Equal(t, 2, sales[0].TicketNumber)
	assert.Equal(t, 3, sales[1].TicketNumber)
}

func TestLoad_RoundTrip(t *testing.T) {
	gw := memory.New()
	ts := time.Date(2025, time.March, 14, 15, 9, 26, 0, time.UTC)

	first, err := Load(context.Background(), gw)
	require.NoError(t, err)
	require.NoError(t, first.Append(context.Background(), saleAt(ts, 1, "79.92")))

	second, err := Load(context.Background(), gw)
	require.NoError(t, err)

	all := second.All()
	require.Len(t, all, 1)
	assert.Equal(t, 1, all[0].TicketNumber)
	assert.True(t, all[0].Timestamp.Equal(ts))
	assert.True(t, decimal.RequireFromString("79.92").Equal(all[0].Total))
	assert.Equal(t, 2, second.NextTicketNumber())
}
