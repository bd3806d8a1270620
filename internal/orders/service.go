package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"tableside/internal/domain"
	"tableside/internal/logger"
	"tableside/internal/mq"
)

// TableRegistry is the slice of the tables service the order flow needs:
// looking a table up and moving it through its status machine.
type TableRegistry interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Table, error)
	SetStatus(ctx context.Context, id uuid.UUID, to domain.TableStatus) (domain.Table, error)
}

type ServiceInterface interface {
	Submit(ctx context.Context, sub Submission) (OrderWithItems, error)
	Advance(ctx context.Context, id uuid.UUID, to domain.OrderStatus) (domain.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (OrderWithItems, error)
	List(ctx context.Context) ([]OrderWithItems, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]OrderWithItems, error)
	ListByTable(ctx context.Context, tableID uuid.UUID) ([]OrderWithItems, error)
	Stats(ctx context.Context) (Stats, error)
}

type Service struct {
	repo          RepositoryInterface
	tables        TableRegistry
	pub           mq.Publisher
	log           *logrus.Entry
	submitTimeout time.Duration
}

func NewService(repo RepositoryInterface, tables TableRegistry, pub mq.Publisher, log *logrus.Logger, submitTimeout time.Duration) *Service {
	if submitTimeout <= 0 {
		submitTimeout = 10 * time.Second
	}
	return &Service{
		repo:          repo,
		tables:        tables,
		pub:           pub,
		log:           logger.WithComponent(log, "orders_service"),
		submitTimeout: submitTimeout,
	}
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (OrderWithItems, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]OrderWithItems, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]OrderWithItems, error) {
	if !status.Valid() {
		return nil, errors.Wrapf(domain.ErrInvalidStatus, "order status %q", status)
	}
	return s.repo.ListByStatus(ctx, status)
}

func (s *Service) ListByTable(ctx context.Context, tableID uuid.UUID) ([]OrderWithItems, error) {
	return s.repo.ListByTable(ctx, tableID)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}
