package supplier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elaba987/pry-Inventario/internal/storage/memory"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Load(context.Background(), memory.New())
	require.NoError(t, err)
	return s
}

func visitOn(name string, visit time.Time) Supplier {
	return Supplier{
		Name:      name,
		Phone:     "555-0100",
		Email:     name + "@example.com",
		VisitDate: visit,
	}
}

func TestAddAndAll(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	require.NoError(t, s.Add(context.Background(), visitOn("Lacteos SA", now)))
	require.NoError(t, s.Add(context.Background(), visitOn("Panificadora", now)))

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "Lacteos SA", all[0].Name)
	assert.Equal(t, "Panificadora", all[1].Name)
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	require.NoError(t, s.Add(context.Background(), visitOn("Lacteos SA", now)))
	require.NoError(t, s.Add(context.Background(), visitOn("Panificadora", now)))

	require.NoError(t, s.Remove(context.Background(), 0))

	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, "Panificadora", all[0].Name)
}

func TestRemove_OutOfRange(t *testing.T) {
	s := newTestStore(t)

	require.ErrorIs(t, s.Remove(context.Background(), 0), ErrNotFound)
	require.ErrorIs(t, s.Remove(context.Background(), -1), ErrNotFound)
}

func TestSortByVisitDate(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.Local)

	require.NoError(t, s.Add(context.Background(), visitOn("C", base.AddDate(0, 0, 5))))
	require.NoError(t, s.Add(context.Background(), visitOn("A", base)))
	require.NoError(t, s.Add(context.Background(), visitOn("B", base.AddDate(0, 0, 2))))

	sorted := s.SortByVisitDate()
	require.Len(t, sorted, 3)
	assert.Equal(t, "A", sorted[0].Name)
	assert.Equal(t, "B", sorted[1].Name)
	assert.Equal(t, "C", sorted[2].Name)

	// Stored order unaffected by the sorted view.
	assert.Equal(t, "C", s.All()[0].Name)
}

func TestVisitingToday(t *testing.T) {
	s := newTestStore(t)
	today := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.Local)
	s.now = func() time.Time { return today.Add(13 * time.Hour) }

	require.NoError(t, s.Add(context.Background(), visitOn("Morning", today.Add(8*time.Hour))))
	require.NoError(t, s.Add(context.Background(), visitOn("Evening", today.Add(20*time.Hour))))
	require.NoError(t, s.Add(context.Background(), visitOn("Tomorrow", today.AddDate(0, 0, 1))))

	visiting := s.VisitingToday()
	require.Len(t, visiting, 2)
	assert.Equal(t, "Morning", visiting[0].Name)
	assert.Equal(t, "Evening", visiting[1].Name)
}

func TestLoad_RoundTrip(t *testing.T) {
	gw := memory.New()
	visit := time.Date(2025, time.March, 20, 10, 0, 0, 0, time.UTC)

	first, err := Load(context.Background(), gw)
	require.NoError(t, err)
	require.NoError(t, first.Add(context.Background(), visitOn("Lacteos SA", visit)))

	second, err := Load(context.Background(), gw)
	require.NoError(t, err)

	all := second.All()
	require.Len(t, all, 1)
	assert.Equal(t, "Lacteos SA", all[0].Name)
	assert.True(t, all[0].VisitDate.Equal(visit))
}
