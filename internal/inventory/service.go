package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"tableside/internal/domain"
	"tableside/internal/logger"
)

type ServiceInterface interface {
	List(ctx context.Context) ([]domain.InventoryItem, error)
	ListByCategory(ctx context.Context, cat domain.InventoryCategory) ([]domain.InventoryItem, error)
	LowStock(ctx context.Context) ([]domain.InventoryItem, error)
	OutOfStock(ctx context.Context) ([]domain.InventoryItem, error)
	Search(ctx context.Context, query string) ([]domain.InventoryItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.InventoryItem, error)
	Create(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error)
	Update(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error)
	UpdateStock(ctx context.Context, id uuid.UUID, newStock float64) (domain.InventoryItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (Stats, error)
}

type Service struct {
	repo RepositoryInterface
	log  *logrus.Entry
}

func NewService(repo RepositoryInterface, log *logrus.Logger) *Service {
	return &Service{repo: repo, log: logger.WithComponent(log, "inventory_service")}
}

func (s *Service) List(ctx context.Context) ([]domain.InventoryItem, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByCategory(ctx context.Context, cat domain.InventoryCategory) ([]domain.InventoryItem, error) {
	if !cat.Valid() {
		return nil, errors.Errorf("unknown inventory category %q", cat)
	}
	return s.repo.ListByCategory(ctx, cat)
}

func (s *Service) LowStock(ctx context.Context) ([]domain.InventoryItem, error) {
	return s.repo.LowStock(ctx)
}

func (s *Service) OutOfStock(ctx context.Context) ([]domain.InventoryItem, error) {
	return s.repo.OutOfStock(ctx)
}

func (s *Service) Search(ctx context.Context, query string) ([]domain.InventoryItem, error) {
	if query == "" {
		return s.repo.List(ctx)
	}
	return s.repo.Search(ctx, query)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.InventoryItem, error) {
	return s.repo.GetByID(ctx, id)
}

func validate(item domain.InventoryItem) error {
	if item.Name == "" {
		return errors.New("inventory item name is required")
	}
	if !item.Category.Valid() {
		return errors.Errorf("unknown inventory category %q", item.Category)
	}
	if item.Unit == "" {
		return errors.New("inventory item unit is required")
	}
	if item.CurrentStock < 0 || item.MinStock < 0 || item.MaxStock < 0 {
		return errors.New("stock levels cannot be negative")
	}
	if item.UnitPrice < 0 {
		return errors.New("unit price cannot be negative")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	if err := validate(item); err != nil {
		return domain.InventoryItem{}, err
	}
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	s.log.WithFields(logrus.Fields{"action": "inventory_item_created", "name": created.Name}).Info("inventory item created")
	return created, nil
}

func (s *Service) Update(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	if err := validate(item); err != nil {
		return domain.InventoryItem{}, err
	}
	return s.repo.Update(ctx, item)
}

func (s *Service) UpdateStock(ctx context.Context, id uuid.UUID, newStock float64) (domain.InventoryItem, error) {
	if newStock < 0 {
		return domain.InventoryItem{}, errors.New("stock cannot be negative")
	}
	updated, err := s.repo.UpdateStock(ctx, id, newStock)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	if updated.CurrentStock <= updated.MinStock {
		s.log.WithFields(logrus.Fields{
			"action": "low_stock",
			"name":   updated.Name,
			"stock":  updated.CurrentStock,
			"min":    updated.MinStock,
		}).Warn("item at or below minimum stock")
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}
