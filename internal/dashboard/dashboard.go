// Package dashboard assembles the landing-page overview. All remote reads
// for the page are issued concurrently and awaited jointly before rendering.
package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"tableside/internal/domain"
	"tableside/internal/orders"
	"tableside/internal/tables"
)

type TableStatsProvider interface {
	Stats(ctx context.Context) (tables.Stats, error)
}

type OrderStatsProvider interface {
	Stats(ctx context.Context) (orders.Stats, error)
}

type StockProvider interface {
	LowStock(ctx context.Context) ([]domain.InventoryItem, error)
}

type MenuProvider interface {
	ListPopular(ctx context.Context) ([]domain.MenuItem, error)
}

type Overview struct {
	Tables   tables.Stats           `json:"tables"`
	Orders   orders.Stats           `json:"orders"`
	LowStock []domain.InventoryItem `json:"low_stock"`
	Popular  []domain.MenuItem      `json:"popular_items"`
}

type Service struct {
	tables TableStatsProvider
	orders OrderStatsProvider
	stock  StockProvider
	menu   MenuProvider
}

func NewService(t TableStatsProvider, o OrderStatsProvider, s StockProvider, m MenuProvider) *Service {
	return &Service{tables: t, orders: o, stock: s, menu: m}
}

// Overview fans out the four reads and joins them; the first failure cancels
// the rest.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	var out Overview
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := s.tables.Stats(ctx)
		out.Tables = stats
		return err
	})
	g.Go(func() error {
		stats, err := s.orders.Stats(ctx)
		out.Orders = stats
		return err
	})
	g.Go(func() error {
		items, err := s.stock.LowStock(ctx)
		out.LowStock = items
		return err
	})
	g.Go(func() error {
		items, err := s.menu.ListPopular(ctx)
		out.Popular = items
		return err
	})

	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}
