package tables

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

type ServiceInterface interface {
	List(ctx context.Context) ([]domain.Table, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Table, error)
	ListByStatus(ctx context.Context, status domain.TableStatus) ([]domain.Table, error)
	Create(ctx context.Context, number, seats int) (domain.Table, error)
	SetStatus(ctx context.Context, id uuid.UUID, to domain.TableStatus) (domain.Table, error)
	Stats(ctx context.Context) (Stats, error)
}

type Service struct {
	repo RepositoryInterface
	pub  mq.Publisher
	log  *logrus.Entry
}

func NewService(repo RepositoryInterface, pub mq.Publisher, log *logrus.Logger) *Service {
	return &Service{repo: repo, pub: pub, log: logger.WithComponent(log, "tables_service")}
}

func (s *Service) List(ctx context.Context) ([]domain.Table, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.Table, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByStatus(ctx context.Context, status domain.TableStatus) ([]domain.Table, error) {
	if !status.Valid() {
		return nil, errors.Wrapf(domain.ErrInvalidStatus, "table status %q", status)
	}
	return s.repo.ListByStatus(ctx, status)
}

func (s *Service) Create(ctx context.Context, number, seats int) (domain.Table, error) {
	if number <= 0 || seats <= 0 {
		return domain.Table{}, errors.New("table number and seats must be positive")
	}
	t, err := s.repo.Create(ctx, number, seats)
	if err != nil {
		return domain.Table{}, err
	}
	s.log.WithFields(logrus.Fields{"action": "table_created", "table_number": t.Number}).Info("table created")
	return t, nil
}

// SetStatus performs a validated status transition and announces it. The
// transition table is the single authority: occupied tables cannot jump to
// reserved or cleaning, and no transition is a self-loop.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, to domain.TableStatus) (domain.Table, error) {
	if !to.Valid() {
		return domain.Table{}, errors.Wrapf(domain.ErrInvalidStatus, "table status %q", to)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Table{}, err
	}
	if !current.Status.CanTransition(to) {
		return domain.Table{}, errors.Wrapf(domain.ErrInvalidTransition,
			"table %d: %s -> %s", current.Number, current.Status, to)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, to)
	if err != nil {
		return domain.Table{}, err
	}

	msg := domain.TableStatusChangedMsg{
		TableID:     updated.ID,
		TableNumber: updated.Number,
		OldStatus:   current.Status,
		NewStatus:   to,
		ChangedAt:   time.Now().UTC(),
	}
	if err := s.pub.Publish(ctx, mq.NotificationsExchange, "", 0, msg); err != nil {
		s.log.WithFields(logrus.Fields{"action": "publish_failed", "table_id": id}).
			WithError(err).Warn("table status event not published")
	}

	s.log.WithFields(logrus.Fields{
		"action":       "table_status_changed",
		"table_number": updated.Number,
		"from":         current.Status,
		"to":           to,
	}).Info("table status changed")
	return updated, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}
