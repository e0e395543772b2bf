// Package storage defines the persistence gateway contract shared by all
// storage backends. The application persists three logical records as JSON
// blobs under fixed keys; the gateway makes no atomicity guarantees across
// keys, so multi-record consistency is the responsibility of the callers.
package storage

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// Fixed record keys. The names match the legacy data set so an existing
// store can be imported as-is.
const (
	KeyCatalog   = "productos"
	KeySales     = "ventas"
	KeySuppliers = "proveedores"
)

// ErrNoRecord is returned by Gateway.Get when no value exists for the key.
var ErrNoRecord = errors.New("no record for key")

// Gateway is a keyed store of JSON-serializable values.
type Gateway interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	ClearAll(ctx context.Context) error
}

// PersistenceError reports a gateway read or write failure. Callers keep
// serving from memory after one of these; the error only informs the caller
// that durability is degraded for the session.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// WrapPersistence wraps a gateway failure into a PersistenceError.
func WrapPersistence(op, key string, err error) error {
	return &PersistenceError{Op: op, Key: key, Err: err}
}
