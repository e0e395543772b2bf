package product

import (
	"context"
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-faster/errors"

	"github.com/Elaba987/pry-Inventario/internal/storage"
)

// SortDirection orders catalog views by stock level.
type SortDirection string

const (
	SortDescending SortDirection = "descending"
	SortAscending  SortDirection = "ascending"
)

// DefaultLowStockThreshold is the stock level below which a product is
// considered low on stock.
const DefaultLowStockThreshold = 5

// Store owns the product catalog. All stock truth lives here: adding items
// to a cart never touches the store, only Deduct durably changes stock.
//
// Every mutation is applied in memory first and then persisted as the full
// catalog record. A persistence failure keeps the in-memory change and is
// reported to the caller, degrading the session to in-memory-only operation.
type Store struct {
	mu       sync.RWMutex
	gw       storage.Gateway
	products []Product
}

// Load reads the persisted catalog from the gateway. When the record is
// absent the store starts empty. On a gateway or decode failure Load still
// returns a usable empty store together with the wrapped error, so the caller
// can keep running in memory after reporting it.
func Load(ctx context.Context, gw storage.Gateway) (*Store, error) {
	s := &Store{gw: gw}

	raw, err := gw.Get(ctx, storage.KeyCatalog)
	if err != nil {
		if errors.Is(err, storage.ErrNoRecord) {
			return s, nil
		}
		return s, storage.WrapPersistence("get", storage.KeyCatalog, err)
	}

	if err := json.Unmarshal(raw, &s.products); err != nil {
		return s, storage.WrapPersistence("decode", storage.KeyCatalog, err)
	}
	return s, nil
}

// persist writes the full catalog record. Callers must hold s.mu.
func (s *Store) persist(ctx context.Context) error {
	raw, err := json.Marshal(s.products)
	if err != nil {
		return storage.WrapPersistence("encode", storage.KeyCatalog, err)
	}
	if err := s.gw.Set(ctx, storage.KeyCatalog, raw); err != nil {
		return storage.WrapPersistence("set", storage.KeyCatalog, err)
	}
	return nil
}

// indexOf returns the position of the product with the given key, or -1.
// Callers must hold s.mu.
func (s *Store) indexOf(key int) int {
	for i := range s.products {
		if s.products[i].Key == key {
			return i
		}
	}
	return -1
}

// Add validates the draft and inserts it as a new product. It fails with a
// DuplicateKeyError when the key is already in use; the catalog is left
// unchanged in every failure case.
func (s *Store) Add(ctx context.Context, d Draft) (Product, error) {
	if err := d.Validate(); err != nil {
		return Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(d.Key) >= 0 {
		return Product{}, &DuplicateKeyError{Key: d.Key}
	}

	p := Product{Key: d.Key, Name: d.Name, Price: d.Price, Stock: d.Stock}
	s.products = append(s.products, p)

	return p, s.persist(ctx)
}

// Update merges the patch into the product with the given key. The whole
// patch is validated first; a rejected patch leaves the product untouched.
func (s *Store) Update(ctx context.Context, key int, patch Patch) (Product, error) {
	if patch.Name != nil && *patch.Name == "" {
		return Product{}, &InvalidDraftError{Field: "name", Reason: "must not be empty"}
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return Product{}, &InvalidDraftError{Field: "price", Reason: "must not be negative"}
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return Product{}, &InvalidDraftError{Field: "stock", Reason: "must not be negative"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(key)
	if i < 0 {
		return Product{}, ErrNotFound
	}

	if patch.Name != nil {
		s.products[i].Name = *patch.Name
	}
	if patch.Price != nil {
		s.products[i].Price = *patch.Price
	}
	if patch.Stock != nil {
		s.products[i].Stock = *patch.Stock
	}

	return s.products[i], s.persist(ctx)
}

// SetStock replaces the stock level of the product with the given key.
func (s *Store) SetStock(ctx context.Context, key, stock int) (Product, error) {
	return s.Update(ctx, key, Patch{Stock: &stock})
}

// Remove deletes the product with the given key.
func (s *Store) Remove(ctx context.Context, key int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(key)
	if i < 0 {
		return ErrNotFound
	}
	s.products = slices.Delete(s.products, i, i+1)

	return s.persist(ctx)
}

// FindByKey returns a copy of the product with the given key.
func (s *Store) FindByKey(key int) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(key)
	if i < 0 {
		return Product{}, ErrNotFound
	}
	return s.products[i], nil
}

// All returns a copy of the catalog in insertion order.
func (s *Store) All() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.products)
}

// Search returns products whose name contains the term (case-insensitive) or
// whose key's decimal representation contains it, preserving catalog order.
func (s *Store) Search(term string) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(term)
	var matches []Product
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strconv.Itoa(p.Key), needle) {
			matches = append(matches, p)
		}
	}
	return matches
}

// SortByStock returns a new view of the catalog ordered by stock level.
// The stored order is not affected.
func (s *Store) SortByStock(dir SortDirection) []Product {
	view := s.All()
	slices.SortStableFunc(view, func(a, b Product) int {
		if dir == SortDescending {
			return b.Stock - a.Stock
		}
		return a.Stock - b.Stock
	})
	return view
}

// LowStock returns all products with stock strictly below the threshold.
func (s *Store) LowStock(threshold int) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var low []Product
	for _, p := range s.products {
		if p.Stock < threshold {
			low = append(low, p)
		}
	}
	return low
}

// Deduct subtracts quantity from the product's stock. It fails with an
// InsufficientStockError when the stock is smaller than the quantity, leaving
// the stock unchanged. This is the only operation that durably changes stock.
func (s *Store) Deduct(ctx context.Context, key, quantity int) (Product, error) {
	if quantity < 1 {
		return Product{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(key)
	if i < 0 {
		return Product{}, ErrNotFound
	}
	if s.products[i].Stock < quantity {
		return Product{}, &InsufficientStockError{
			Key:       key,
			Stock:     s.products[i].Stock,
			Requested: quantity,
		}
	}

	s.products[i].Stock -= quantity

	return s.products[i], s.persist(ctx)
}
