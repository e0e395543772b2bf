// Package cart implements the in-progress sale: a short-lived session of
// lines built against the catalog and committed through finalize.
package cart

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Elaba987/pry-Inventario/internal/domain/product"
	"github.com/Elaba987/pry-Inventario/internal/domain/sale"
)

// ErrEmptyCart is returned by Finalize when the session has no lines.
var ErrEmptyCart = errors.New("no products in the sale")

// InvalidQuantityError indicates a line quantity below 1.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1, got %d", e.Quantity)
}

// IndexOutOfRangeError indicates a line index outside the current bounds.
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("line index %d out of range [0, %d)", e.Index, e.Len)
}

// Catalog is the read-only view of the inventory the session consults for
// availability checks. The session never mutates the catalog.
type Catalog interface {
	FindByKey(key int) (product.Product, error)
}

// Session owns the lines of one in-progress sale. It holds product value
// snapshots, so catalog edits after a line is added do not change it.
// Failed operations leave the session unchanged; a successful Finalize
// empties it.
type Session struct {
	mu      sync.Mutex
	catalog Catalog
	lines   []sale.Line
	now     func() time.Time
}

// NewSession creates an empty session reading availability from the catalog.
func NewSession(catalog Catalog) *Session {
	return &Session{catalog: catalog, now: time.Now}
}

// AvailableFor returns the product's stock minus the quantity already held
// in this session's lines for the same key. Stock itself is untouched until
// commit, so prospective lines for one product compound their reservations
// only within this session.
func (s *Session) AvailableFor(key int) (int, error) {
	p, err := s.catalog.FindByKey(key)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return p.Stock - s.quantityFor(key), nil
}

// quantityFor sums the quantities of lines holding the given product key.
// Callers must hold s.mu.
func (s *Session) quantityFor(key int) int {
	total := 0
	for _, l := range s.lines {
		if l.Product.Key == key {
			total += l.Quantity
		}
	}
	return total
}

// AddLine appends a line with a frozen product snapshot and computed
// subtotal. The caller is responsible for validating the quantity against
// AvailableFor first; AddLine itself only rejects quantities below 1.
func (s *Session) AddLine(p product.Product, quantity int) (sale.Line, error) {
	if quantity < 1 {
		return sale.Line{}, &InvalidQuantityError{Quantity: quantity}
	}

	line := sale.NewLine(p, quantity)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = append(s.lines, line)
	return line, nil
}

// RemoveLine removes the line at the given index.
func (s *Session) RemoveLine(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.lines) {
		return &IndexOutOfRangeError{Index: index, Len: len(s.lines)}
	}
	s.lines = append(s.lines[:index], s.lines[index+1:]...)
	return nil
}

// Lines returns a copy of the current lines.
func (s *Session) Lines() []sale.Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]sale.Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Total returns the sum of all line subtotals, zero for an empty session.
func (s *Session) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.total()
}

// total sums subtotals. Callers must hold s.mu.
func (s *Session) total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range s.lines {
		sum = sum.Add(l.Subtotal)
	}
	return sum
}

// Finalize freezes the session into a Sale carrying the given ticket number
// (the slot the sale will occupy once appended, computed by the orchestrator
// before the append) and empties the session. It does not append to the
// ledger or touch inventory. On failure nothing changes.
func (s *Session) Finalize(ticketNumber int) (*sale.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]sale.Line, len(s.lines))
	copy(lines, s.lines)

	committed := &sale.Sale{
		Timestamp:    s.now(),
		Lines:        lines,
		Total:        s.total(),
		TicketNumber: ticketNumber,
	}

	s.lines = nil
	return committed, nil
}

// Reopen restores the lines of a finalized sale that could not be recorded,
// so the checkout can be retried. The restored lines are placed before any
// lines added since the failed finalize.
func (s *Session) Reopen(failed *sale.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored := make([]sale.Line, 0, len(failed.Lines)+len(s.lines))
	restored = append(restored, failed.Lines...)
	restored = append(restored, s.lines...)
	s.lines = restored
}

// Clear discards all lines without committing them.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
}
