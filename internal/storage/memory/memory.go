// Package memory provides an in-process storage gateway. It is the default
// backend for tests and for running without external infrastructure.
package memory

import (
	"context"
	"sync"

	"github.com/Elaba987/pry-Inventario/internal/storage"
)

var _ storage.Gateway = (*Gateway)(nil)

// Gateway stores records in a map guarded by a mutex.
type Gateway struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// New returns an empty in-memory gateway.
func New() *Gateway {
	return &Gateway{records: make(map[string][]byte)}
}

func (g *Gateway) Get(_ context.Context, key string) ([]byte, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	v, ok := g.records[key]
	if !ok {
		return nil, storage.ErrNoRecord
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (g *Gateway) Set(_ context.Context, key string, value []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	g.records[key] = cp
	return nil
}

func (g *Gateway) Remove(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.records, key)
	return nil
}

func (g *Gateway) ClearAll(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.records = make(map[string][]byte)
	return nil
}
