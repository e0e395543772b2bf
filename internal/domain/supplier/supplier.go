// Package supplier manages the supplier directory: contact data and the
// scheduled visit date for each supplier.
package supplier

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/go-faster/errors"

	"github.com/Elaba987/pry-Inventario/internal/storage"
)

// ErrNotFound is returned when an index does not address a supplier.
var ErrNotFound = errors.New("supplier not found")

// Supplier is one directory entry. Suppliers have no caller-assigned key;
// they are addressed by position. JSON field names match the legacy
// persisted records.
type Supplier struct {
	Name      string    `json:"nombre"`
	Phone     string    `json:"telefono"`
	Email     string    `json:"email"`
	VisitDate time.Time `json:"fechaVisita"`
}

// Store owns the supplier directory, persisted as a whole under one key.
type Store struct {
	mu        sync.RWMutex
	gw        storage.Gateway
	suppliers []Supplier
	now       func() time.Time
}

// Load reads the persisted directory from the gateway. On failure it returns
// a usable empty store together with the wrapped error.
func Load(ctx context.Context, gw storage.Gateway) (*Store, error) {
	s := &Store{gw: gw, now: time.Now}

	raw, err := gw.Get(ctx, storage.KeySuppliers)
	if err != nil {
		if errors.Is(err, storage.ErrNoRecord) {
			return s, nil
		}
		return s, storage.WrapPersistence("get", storage.KeySuppliers, err)
	}

	if err := json.Unmarshal(raw, &s.suppliers); err != nil {
		return s, storage.WrapPersistence("decode", storage.KeySuppliers, err)
	}
	return s, nil
}

func (s *Store) persist(ctx context.Context) error {
	raw, err := json.Marshal(s.suppliers)
	if err != nil {
		return storage.WrapPersistence("encode", storage.KeySuppliers, err)
	}
	if err := s.gw.Set(ctx, storage.KeySuppliers, raw); err != nil {
		return storage.WrapPersistence("set", storage.KeySuppliers, err)
	}
	return nil
}

// Add appends a supplier to the directory.
func (s *Store) Add(ctx context.Context, sup Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.suppliers = append(s.suppliers, sup)
	return s.persist(ctx)
}

// Remove deletes the supplier at the given index.
func (s *Store) Remove(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.suppliers) {
		return ErrNotFound
	}
	s.suppliers = slices.Delete(s.suppliers, index, index+1)
	return s.persist(ctx)
}

// All returns a copy of the directory in insertion order.
func (s *Store) All() []Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.suppliers)
}

// SortByVisitDate returns a new view ordered by the scheduled visit date,
// earliest first. The stored order is not affected.
func (s *Store) SortByVisitDate() []Supplier {
	view := s.All()
	slices.SortStableFunc(view, func(a, b Supplier) int {
		return a.VisitDate.Compare(b.VisitDate)
	})
	return view
}

// VisitingToday returns suppliers whose visit date falls on the current
// local calendar day.
func (s *Store) VisitingToday() []Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()

	today := s.now()
	var out []Supplier
	for _, sup := range s.suppliers {
		if sameDay(sup.VisitDate, today) {
			out = append(out, sup)
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
