package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"tableside/internal/domain"
	"tableside/internal/mq"
)

// Advance moves an order to the next status. The order state machine is
// strict: forward-only with no skipping, cancellation allowed from any
// pre-served state, terminal states final.
func (s *Service) Advance(ctx context.Context, id uuid.UUID, to domain.OrderStatus) (domain.Order, error) {
	if !to.Valid() {
		return domain.Order{}, errors.Wrapf(domain.ErrInvalidStatus, "order status %q", to)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !current.Status.CanTransition(to) {
		return domain.Order{}, errors.Wrapf(domain.ErrInvalidTransition,
			"order %s: %s -> %s", id, current.Status, to)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, to)
	if err != nil {
		return domain.Order{}, err
	}

	msg := domain.OrderStatusChangedMsg{
		OrderID:   id,
		TableID:   updated.TableID,
		OldStatus: current.Status,
		NewStatus: to,
		ChangedAt: time.Now().UTC(),
	}
	if err := s.pub.Publish(ctx, mq.NotificationsExchange, "", 0, msg); err != nil {
		s.log.WithFields(logrus.Fields{"action": "publish_failed", "order_id": id}).
			WithError(err).Warn("order status event not published")
	}

	s.log.WithFields(logrus.Fields{
		"action":   "order_status_changed",
		"order_id": id,
		"from":     current.Status,
		"to":       to,
	}).Info("order status changed")

	// a finished order frees its table only once no other open order still
	// references it
	if to.Terminal() {
		s.releaseTableIfIdle(ctx, updated.TableID, id)
	}

	return updated, nil
}

// Delete removes an order outright (a cancelled-and-cleared ticket). The
// table is freed when the deleted order was the last open one on it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteOrder(ctx, id); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"action": "order_deleted", "order_id": id}).Info("order deleted")
	s.releaseTableIfIdle(ctx, current.TableID, id)
	return nil
}

func (s *Service) releaseTableIfIdle(ctx context.Context, tableID, excludeOrderID uuid.UUID) {
	open, err := s.repo.OpenOrderCount(ctx, tableID, excludeOrderID)
	if err != nil {
		s.log.WithFields(logrus.Fields{"action": "table_release_check_failed", "table_id": tableID}).
			WithError(err).Error("could not count open orders")
		return
	}
	if open > 0 {
		return
	}

	if _, err := s.tables.SetStatus(ctx, tableID, domain.TableAvailable); err != nil {
		// already available, or moved by staff in the meantime
		if !errors.Is(err, domain.ErrInvalidTransition) {
			s.log.WithFields(logrus.Fields{"action": "table_release_failed", "table_id": tableID}).
				WithError(err).Error("table not released")
		}
	}
}
