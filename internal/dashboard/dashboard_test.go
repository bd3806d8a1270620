package dashboard

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableside/internal/domain"
	"tableside/internal/orders"
	"tableside/internal/tables"
)

type stubTables struct {
	stats tables.Stats
	err   error
}

func (s stubTables) Stats(context.Context) (tables.Stats, error) { return s.stats, s.err }

type stubOrders struct {
	stats orders.Stats
}

func (s stubOrders) Stats(context.Context) (orders.Stats, error) { return s.stats, nil }

type stubStock struct {
	items []domain.InventoryItem
}

func (s stubStock) LowStock(context.Context) ([]domain.InventoryItem, error) { return s.items, nil }

type stubMenu struct {
	items []domain.MenuItem
}

func (s stubMenu) ListPopular(context.Context) ([]domain.MenuItem, error) { return s.items, nil }

func TestOverview(t *testing.T) {
	svc := NewService(
		stubTables{stats: tables.Stats{Total: 12, Available: 8, Occupied: 4}},
		stubOrders{stats: orders.Stats{Total: 20, Served: 15, TodayRevenue: 432.50}},
		stubStock{items: []domain.InventoryItem{{Name: "Flour"}}},
		stubMenu{items: []domain.MenuItem{{Name: "Margherita"}, {Name: "Carbonara"}}},
	)

	out, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 12, out.Tables.Total)
	assert.InDelta(t, 432.50, out.Orders.TodayRevenue, 1e-9)
	assert.Len(t, out.LowStock, 1)
	assert.Len(t, out.Popular, 2)
}

func TestOverviewPropagatesFailure(t *testing.T) {
	svc := NewService(
		stubTables{err: errors.New("db down")},
		stubOrders{},
		stubStock{},
		stubMenu{},
	)

	_, err := svc.Overview(context.Background())
	assert.Error(t, err)
}
