package product

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elaba987/pry-Inventario/internal/storage"
	"github.com/Elaba987/pry-Inventario/internal/storage/memory"
)

// --- Mock implementations ---

// failingGateway wraps a working gateway and fails writes on demand.
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

func newTestStore(t *testing.T, drafts ...Draft) *Store {
	t.Helper()

	s, err := Load(context.Background(), memory.New())
	require.NoError(t, err)
	for _, d := range drafts {
		_, err := s.Add(context.Background(), d)
		require.NoError(t, err)
	}
	return s
}

func draft(key int, name string, price string, stock int) Draft {
	return Draft{
		Key:   key,
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
}

// --- Tests ---

func TestAdd_DuplicateKey(t *testing.T) {
	s := newTestStore(t, draft(1, "Leche", "25.50", 10))

	_, err := s.Add(context.Background(), draft(1, "Pan", "12.00", 5))

	var dupErr *DuplicateKeyError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, 1, dupErr.Key)

	// Catalog unchanged: original entry survives, no second entry added.
	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, "Leche", all[0].Name)
}

func TestAdd_InvalidDraft(t *testing.T) {
	s := newTestStore(t)

	cases := []struct {
		name  string
		d     Draft
		field string
	}{
		{"zero key", draft(0, "Pan", "12.00", 5), "key"},
		{"negative key", draft(-3, "Pan", "12.00", 5), "key"},
		{"empty name", draft(1, "", "12.00", 5), "name"},
		{"negative price", draft(1, "Pan", "-1.00", 5), "price"},
		{"negative stock", draft(1, "Pan", "12.00", -1), "stock"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Add(context.Background(), tc.d)

			var invErr *InvalidDraftError
			require.ErrorAs(t, err, &invErr)
			assert.Equal(t, tc.field, invErr.Field)
		})
	}

	assert.Empty(t, s.All())
}

func TestUpdate_MergesPatch(t *testing.T) {
	s := newTestStore(t, draft(1, "Leche", "25.50", 10))

	name := "Leche Entera"
	price := decimal.RequireFromString("27.00")
	p, err := s.Update(context.Background(), 1, Patch{Name: &name, Price: &price})

	require.NoError(t, err)
	assert.Equal(t, "Leche Entera", p.Name)
	assert.True(t, price.Equal(p.Price))
	assert.Equal(t, 10, p.Stock)
}

func TestUpdate_InvalidPatchLeavesProductUnchanged(t *testing.T) {
	s := newTestStore(t, draft(1, "Leche", "25.50", 10))

	name := "Leche Entera"
	badPrice := decimal.RequireFromString("-1.00")
	_, err := s.Update(context.Background(), 1, Patch{Name: &name, Price: &badPrice})

	var invErr *InvalidDraftError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "price", invErr.Field)

	// No field of the rejected patch is applied, not even the valid ones.
	p, err := s.FindByKey(1)
	require.NoError(t, err)
	assert.Equal(t, "Leche", p.Name)
	assert.True(t, decimal.RequireFromString("25.50").Equal(p.Price))
	assert.Equal(t, 10, p.Stock)

	badStock := -5
	_, err = s.Update(context.Background(), 1, Patch{Name: &name, Stock: &badStock})
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "stock", invErr.Field)

	empty := ""
	_, err = s.Update(context.Background(), 1, Patch{Name: &empty})
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "name", invErr.Field)

	p, err = s.FindByKey(1)
	require.NoError(t, err)
	assert.Equal(t, "Leche", p.Name)
}

func TestUpdate_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Update(context.Background(), 99, Patch{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRemove(t *testing.T) {
	s := newTestStore(t, draft(1, "Leche", "25.50", 10), draft(2, "Pan", "12.00", 5))

	require.NoError(t, s.Remove(context.Background(), 1))

	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, 2, all[0].Key)

	require.ErrorIs(t, s.Remove(context.Background(), 1), ErrNotFound)
}

func TestDeduct(t *testing.T) {
	s := newTestStore(t, draft(1, "Leche", "25.50", 10))

	p, err := s.Deduct(context.Background(), 1, 8)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)
}

func TestDeduct_InsufficientStock(t *testing.T) {
	s := newTestStore(t, draft(1, "Leche", "25.50", 3))

	_, err := s.Deduct(context.Background(), 1, 5)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 1, stockErr.Key)
	assert.Equal(t, 3, stockErr.Stock)
	assert.Equal(t, 5, stockErr.Requested)

	// Stock left unchanged after the failed deduction.
	p, err := s.FindByKey(1)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
}

func TestDeduct_InvalidQuantity(t *testing.T) {
	s := newTestStore(t, draft(1, "Leche", "25.50", 10))

	_, err := s.Deduct(context.Background(), 1, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = s.Deduct(context.Background(), 1, -2)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestDeduct_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Deduct(context.Background(), 42, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSearch(t *testing.T) {
	s := newTestStore(t,
		draft(10, "Leche Entera", "25.50", 10),
		draft(25, "Pan Blanco", "12.00", 5),
		draft(31, "Lechuga", "8.00", 7),
	)

	byName := s.Search("lech")
	require.Len(t, byName, 2)
	assert.Equal(t, "Leche Entera", byName[0].Name)
	assert.Equal(t, "Lechuga", byName[1].Name)

	byKey := s.Search("25")
	require.Len(t, byKey, 1)
	assert.Equal(t, 25, byKey[0].Key)

	assert.Empty(t, s.Search("zzz"))
}

func TestSortByStock(t *testing.T) {
	s := newTestStore(t,
		draft(1, "A", "1.00", 5),
		draft(2, "B", "1.00", 10),
		draft(3, "C", "1.00", 3),
	)

	desc := s.SortByStock(SortDescending)
	assert.Equal(t, []int{10, 5, 3}, stocks(desc))

	asc := s.SortByStock(SortAscending)
	assert.Equal(t, []int{3, 5, 10}, stocks(asc))

	// Stored order unaffected by the sorted views.
	assert.Equal(t, []int{5, 10, 3}, stocks(s.All()))
}

func stocks(products []Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.Stock
	}
	return out
}

func TestLowStock(t *testing.T) {
	s := newTestStore(t,
		draft(1, "A", "1.00", 3),
		draft(2, "B", "1.00", 5),
		draft(3, "C", "1.00", 10),
	)

	// Strictly below: stock equal to the threshold is not low.
	low := s.LowStock(5)
	require.Len(t, low, 1)
	assert.Equal(t, 3, low[0].Stock)
}

func TestAdd_PersistenceFailureKeepsMemoryChange(t *testing.T) {
	gw := &failingGateway{Gateway: memory.New(), setErr: errors.New("disk full")}
	s, err := Load(context.Background(), gw)
	require.NoError(t, err)

	_, err = s.Add(context.Background(), draft(1, "Leche", "25.50", 10))

	var persistErr *storage.PersistenceError
	require.ErrorAs(t, err, &persistErr)

	// In-memory change kept; the session keeps running without durability.
	p, err := s.FindByKey(1)
	require.NoError(t, err)
	assert.Equal(t, "Leche", p.Name)
}

func TestLoad_RoundTrip(t *testing.T) {
	gw := memory.New()

	first, err := Load(context.Background(), gw)
	require.NoError(t, err)
	_, err = first.Add(context.Background(), draft(1, "Leche", "25.50", 10))
	require.NoError(t, err)
	_, err = first.Add(context.Background(), draft(2, "Pan", "12.00", 5))
	require.NoError(t, err)

	second, err := Load(context.Background(), gw)
	require.NoError(t, err)

	all := second.All()
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].Key)
	assert.True(t, decimal.RequireFromString("25.50").Equal(all[0].Price))
	assert.Equal(t, 2, all[1].Key)
}

func TestLoad_CorruptRecord(t *testing.T) {
	gw := memory.New()
	require.NoError(t, gw.Set(context.Background(), storage.KeyCatalog, []byte("{not json")))

	s, err := Load(context.Background(), gw)

	var persistErr *storage.PersistenceError
	require.ErrorAs(t, err, &persistErr)

	// Usable empty store even after the failed load.
	require.NotNil(t, s)
	assert.Empty(t, s.All())
}
