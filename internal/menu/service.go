package menu

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"tableside/internal/domain"
	"tableside/internal/logger"
)

type ServiceInterface interface {
	ListAvailable(ctx context.Context) ([]domain.MenuItem, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.MenuItem, error)
	ListPopular(ctx context.Context) ([]domain.MenuItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.MenuItem, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	CategoryCounts(ctx context.Context) (map[uuid.UUID]int, error)
	Create(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error)
	Update(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

const popularLimit = 6

type Service struct {
	repo RepositoryInterface
	log  *logrus.Entry

	mu     sync.Mutex
	counts map[uuid.UUID]int // per-category item counts, refreshed on demand
}

func NewService(repo RepositoryInterface, log *logrus.Logger) *Service {
	return &Service{repo: repo, log: logger.WithComponent(log, "menu_service")}
}

func (s *Service) ListAvailable(ctx context.Context) ([]domain.MenuItem, error) {
	return s.repo.ListAvailable(ctx)
}

func (s *Service) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.MenuItem, error) {
	return s.repo.ListByCategory(ctx, categoryID)
}

func (s *Service) ListPopular(ctx context.Context) ([]domain.MenuItem, error) {
	return s.repo.ListPopular(ctx, popularLimit)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.MenuItem, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.Categories(ctx)
}

// CategoryCounts returns per-category item counts, computed once per data
// refresh rather than on every read. A CRUD write invalidates the cache.
func (s *Service) CategoryCounts(ctx context.Context) (map[uuid.UUID]int, error) {
	s.mu.Lock()
	cached := s.counts
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	counts, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.counts = counts
	s.mu.Unlock()
	return counts, nil
}

func (s *Service) invalidateCounts() {
	s.mu.Lock()
	s.counts = nil
	s.mu.Unlock()
}

func validate(item domain.MenuItem) error {
	if item.Name == "" {
		return errors.New("menu item name is required")
	}
	if item.Price < 0 {
		return errors.New("menu item price cannot be negative")
	}
	if item.PrepTime < 0 {
		return errors.New("menu item prep time cannot be negative")
	}
	if item.CategoryID == uuid.Nil {
		return errors.New("menu item category is required")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	if err := validate(item); err != nil {
		return domain.MenuItem{}, err
	}
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return domain.MenuItem{}, err
	}
	s.invalidateCounts()
	s.log.WithFields(logrus.Fields{"action": "menu_item_created", "name": created.Name}).Info("menu item created")
	return created, nil
}

func (s *Service) Update(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	if err := validate(item); err != nil {
		return domain.MenuItem{}, err
	}
	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return domain.MenuItem{}, err
	}
	s.invalidateCounts()
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCounts()
	s.log.WithFields(logrus.Fields{"action": "menu_item_deleted", "id": id}).Info("menu item deleted")
	return nil
}
