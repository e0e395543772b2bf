// Package checkout orchestrates the commit of a cart session: finalize the
// session, append the sale to the ledger, then deduct the committed
// quantities from stock. Persistence offers no multi-key transaction, so
// the pair is an explicit two-step saga with the ledger write as the
// durable commit point.
package checkout

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/Elaba987/pry-Inventario/internal/domain/cart"
	"github.com/Elaba987/pry-Inventario/internal/domain/product"
	"github.com/Elaba987/pry-Inventario/internal/domain/sale"
	"github.com/Elaba987/pry-Inventario/internal/storage"
)

// ReconciliationError reports that a sale was appended to the ledger but one
// of its stock deductions failed, leaving ledger and catalog inconsistent.
// The sale is never rolled back; the failure is surfaced for reconciliation.
type ReconciliationError struct {
	TicketNumber int
	ProductKey   int
	Err          error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("sale %d committed but stock deduction failed for product %d: %v",
		e.TicketNumber, e.ProductKey, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// Service runs the commit saga over the inventory store and the ledger.
type Service struct {
	inventory *product.Store
	ledger    *sale.Ledger
	lg        *zap.Logger
}

// NewService creates a checkout Service with the required components.
func NewService(inventory *product.Store, ledger *sale.Ledger, lg *zap.Logger) *Service {
	return &Service{
		inventory: inventory,
		ledger:    ledger,
		lg:        lg,
	}
}

// Commit finalizes the session and runs the two-step saga in order: append
// to the ledger first, then deduct stock once per line.
//
// A ledger persistence failure prevents any stock deduction, restores the
// session's lines for a retry, and is returned as-is. After a successful
// append the deductions are best-effort: a
// deduction persistence failure only degrades durability and is logged,
// while an insufficient-stock or missing-product failure returns a
// ReconciliationError together with the committed sale.
func (s *Service) Commit(ctx context.Context, session *cart.Session) (*sale.Sale, error) {
	ticket := s.ledger.NextTicketNumber()

	committed, err := session.Finalize(ticket)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.Append(ctx, committed); err != nil {
		// The sale was not recorded; put the lines back so the commit
		// can be retried.
		session.Reopen(committed)
		return nil, errors.Wrap(err, "append sale")
	}

	for _, line := range committed.Lines {
		if _, err := s.inventory.Deduct(ctx, line.Product.Key, line.Quantity); err != nil {
			var pe *storage.PersistenceError
			if errors.As(err, &pe) {
				// Deducted in memory; only durability is degraded.
				s.lg.Warn("stock deduction not persisted",
					zap.Int("ticket", committed.TicketNumber),
					zap.Int("product", line.Product.Key),
					zap.Error(err),
				)
				continue
			}

			recErr := &ReconciliationError{
				TicketNumber: committed.TicketNumber,
				ProductKey:   line.Product.Key,
				Err:          err,
			}
			s.lg.Error("ledger and catalog inconsistent",
				zap.Int("ticket", committed.TicketNumber),
				zap.Int("product", line.Product.Key),
				zap.Int("quantity", line.Quantity),
				zap.Error(err),
			)
			return committed, recErr
		}
	}

	s.lg.Info("sale committed",
		zap.Int("ticket", committed.TicketNumber),
		zap.Int("lines", len(committed.Lines)),
		zap.String("total", committed.Total.StringFixed(2)),
	)
	return committed, nil
}
