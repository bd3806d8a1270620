package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableside/internal/domain"
)

func availableTable(number int) domain.Table {
	return domain.Table{ID: uuid.New(), Number: number, Seats: 4, Status: domain.TableAvailable}
}

func menuItem(name string, price float64, prep int) domain.MenuItem {
	return domain.MenuItem{
		ID:          uuid.New(),
		Name:        name,
		Price:       price,
		PrepTime:    prep,
		IsAvailable: true,
	}
}

func TestSelectTable(t *testing.T) {
	s := New()

	t.Run("AvailableTable", func(t *testing.T) {
		table := availableTable(1)
		require.NoError(t, s.SelectTable(table))

		active, ok := s.ActiveTable()
		require.True(t, ok)
		assert.Equal(t, table.ID, active.ID)
	})

	t.Run("OccupiedTableRejected", func(t *testing.T) {
		prev, _ := s.ActiveTable()
		item := menuItem("Margherita", 9.50, 12)
		require.NoError(t, s.AddItem(item))

		occupied := availableTable(2)
		occupied.Status = domain.TableOccupied
		err := s.SelectTable(occupied)
		require.ErrorIs(t, err, domain.ErrInvalidSelection)

		// previous selection and its lines are untouched
		active, ok := s.ActiveTable()
		require.True(t, ok)
		assert.Equal(t, prev.ID, active.ID)
		assert.Equal(t, 1, s.ItemCount())
	})

	t.Run("ReselectClearsLines", func(t *testing.T) {
		require.NoError(t, s.SelectTable(availableTable(3)))
		assert.Zero(t, s.ItemCount())
		assert.True(t, s.Empty())
	})
}

func TestAddItem(t *testing.T) {
	t.Run("NoActiveTable", func(t *testing.T) {
		s := New()
		err := s.AddItem(menuItem("Carbonara", 11.00, 15))
		assert.ErrorIs(t, err, domain.ErrNoActiveTable)
	})

	t.Run("UnavailableItem", func(t *testing.T) {
		s := New()
		require.NoError(t, s.SelectTable(availableTable(1)))
		item := menuItem("Seasonal Special", 14.00, 20)
		item.IsAvailable = false
		assert.Error(t, s.AddItem(item))
		assert.True(t, s.Empty())
	})

	t.Run("MergesIntoExistingLine", func(t *testing.T) {
		s := New()
		require.NoError(t, s.SelectTable(availableTable(1)))
		item := menuItem("Lemonade", 3.50, 2)
		require.NoError(t, s.AddItem(item))
		require.NoError(t, s.AddItem(item))

		lines := s.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, 2, lines[0].Quantity)
	})
}

func TestTotalsAndCounts(t *testing.T) {
	s := New()
	require.NoError(t, s.SelectTable(availableTable(7)))

	a := menuItem("Item A", 10.00, 10)
	b := menuItem("Item B", 5.00, 4)

	require.NoError(t, s.AddItem(a))
	require.NoError(t, s.AddItem(a))
	require.NoError(t, s.AddItem(b))

	assert.Equal(t, 3, s.ItemCount())
	assert.InDelta(t, 25.00, s.Total(), 1e-9)
	assert.Equal(t, 10, s.MaxPrepTime())

	s.RemoveItem(a.ID)
	assert.Equal(t, 2, s.ItemCount())
	assert.InDelta(t, 15.00, s.Total(), 1e-9)
}

func TestTotalUsesFrozenPrices(t *testing.T) {
	s := New()
	require.NoError(t, s.SelectTable(availableTable(1)))

	item := menuItem("Ribeye", 28.00, 25)
	require.NoError(t, s.AddItem(item))

	// catalog price changes mid-session
	item.Price = 35.00
	require.NoError(t, s.AddItem(item))

	// both units keep the price captured when the line was created
	assert.InDelta(t, 56.00, s.Total(), 1e-9)
}

func TestRemoveItem(t *testing.T) {
	s := New()
	require.NoError(t, s.SelectTable(availableTable(1)))

	item := menuItem("Espresso", 2.50, 3)
	require.NoError(t, s.AddItem(item))

	t.Run("AbsentItemIsNoop", func(t *testing.T) {
		s.RemoveItem(uuid.New())
		assert.Equal(t, 1, s.ItemCount())
	})

	t.Run("ZeroQuantityDeletesLine", func(t *testing.T) {
		s.RemoveItem(item.ID)
		assert.True(t, s.Empty())
		assert.Zero(t, s.Total())
		assert.Zero(t, s.MaxPrepTime())
	})
}

func TestItemCountNeverNegative(t *testing.T) {
	s := New()
	require.NoError(t, s.SelectTable(availableTable(1)))

	item := menuItem("Tiramisu", 6.00, 5)
	require.NoError(t, s.AddItem(item))
	s.RemoveItem(item.ID)
	s.RemoveItem(item.ID)
	s.RemoveItem(item.ID)

	assert.Zero(t, s.ItemCount())
}

func TestSetNote(t *testing.T) {
	s := New()
	require.NoError(t, s.SelectTable(availableTable(1)))

	item := menuItem("Burger", 12.00, 14)
	require.NoError(t, s.AddItem(item))
	s.SetNote(item.ID, "no onions")
	s.SetNote(uuid.New(), "ignored")

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "no onions", lines[0].Note)
}

func TestSubmitGuard(t *testing.T) {
	t.Run("EmptyOrder", func(t *testing.T) {
		s := New()
		require.NoError(t, s.SelectTable(availableTable(1)))
		_, err := s.BeginSubmit()
		assert.ErrorIs(t, err, domain.ErrEmptyOrder)
	})

	t.Run("NoActiveTable", func(t *testing.T) {
		s := New()
		_, err := s.BeginSubmit()
		assert.ErrorIs(t, err, domain.ErrNoActiveTable)
	})

	t.Run("DoubleSubmitBlocked", func(t *testing.T) {
		s := New()
		require.NoError(t, s.SelectTable(availableTable(1)))
		require.NoError(t, s.AddItem(menuItem("Pad Thai", 10.50, 12)))

		key, err := s.BeginSubmit()
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, key)

		_, err = s.BeginSubmit()
		assert.ErrorIs(t, err, domain.ErrSubmissionInFlight)
	})

	t.Run("KeyStableAcrossRetries", func(t *testing.T) {
		s := New()
		require.NoError(t, s.SelectTable(availableTable(1)))
		require.NoError(t, s.AddItem(menuItem("Pad Thai", 10.50, 12)))

		first, err := s.BeginSubmit()
		require.NoError(t, err)
		s.EndSubmit()

		second, err := s.BeginSubmit()
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestReset(t *testing.T) {
	s := New()
	require.NoError(t, s.SelectTable(availableTable(1)))
	require.NoError(t, s.AddItem(menuItem("Gyoza", 7.00, 8)))
	_, err := s.BeginSubmit()
	require.NoError(t, err)

	s.Reset()

	_, ok := s.ActiveTable()
	assert.False(t, ok)
	assert.True(t, s.Empty())

	// a fresh session after reset mints a new key
	require.NoError(t, s.SelectTable(availableTable(2)))
	require.NoError(t, s.AddItem(menuItem("Gyoza", 7.00, 8)))
	key, err := s.BeginSubmit()
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, key)
}
