package sale

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/go-faster/errors"

	"github.com/Elaba987/pry-Inventario/internal/storage"
)

// Ledger is the append-only history of committed sales. Append order is
// chronological order; entries are never resorted or removed.
//
// Append is the durable commit point of the sale saga: when the gateway
// write fails the in-memory append is reverted and the error returned, so
// the orchestrator never deducts stock for a sale that was not recorded.
type Ledger struct {
	mu    sync.RWMutex
	gw    storage.Gateway
	sales []*Sale
}

// Load reads the persisted ledger from the gateway. On failure it returns a
// usable empty ledger together with the wrapped error.
func Load(ctx context.Context, gw storage.Gateway) (*Ledger, error) {
	l := &Ledger{gw: gw}

	raw, err := gw.Get(ctx, storage.KeySales)
	if err != nil {
		if errors.Is(err, storage.ErrNoRecord) {
			return l, nil
		}
		return l, storage.WrapPersistence("get", storage.KeySales, err)
	}

	if err := json.Unmarshal(raw, &l.sales); err != nil {
		return l, storage.WrapPersistence("decode", storage.KeySales, err)
	}
	return l, nil
}

// NextTicketNumber returns the number the next committed sale will occupy:
// current ledger length + 1.
func (l *Ledger) NextTicketNumber() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.sales) + 1
}

// Append adds the sale to the end of the ledger and persists the full
// record. On a persistence failure the in-memory append is reverted.
func (l *Ledger) Append(ctx context.Context, s *Sale) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sales = append(l.sales, s)

	raw, err := json.Marshal(l.sales)
	if err == nil {
		err = l.gw.Set(ctx, storage.KeySales, raw)
	}
	if err != nil {
		l.sales = l.sales[:len(l.sales)-1]
		return storage.WrapPersistence("set", storage.KeySales, err)
	}
	return nil
}

// All returns the full history in append order.
func (l *Ledger) All() []*Sale {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return slices.Clone(l.sales)
}

// ByDay returns sales whose local calendar day equals the given date's.
func (l *Ledger) ByDay(date time.Time) []*Sale {
	return l.filter(func(s *Sale) bool {
		return sameDay(s.Timestamp, date)
	})
}

// ByRange returns sales with start <= timestamp <= end, inclusive both ends.
func (l *Ledger) ByRange(start, end time.Time) []*Sale {
	return l.filter(func(s *Sale) bool {
		return !s.Timestamp.Before(start) && !s.Timestamp.After(end)
	})
}

// ByMonth returns sales whose local calendar month and year match.
func (l *Ledger) ByMonth(year int, month time.Month) []*Sale {
	return l.filter(func(s *Sale) bool {
		return s.Timestamp.Year() == year && s.Timestamp.Month() == month
	})
}

func (l *Ledger) filter(keep func(*Sale) bool) []*Sale {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*Sale
	for _, s := range l.sales {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
