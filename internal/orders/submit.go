package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"tableside/internal/domain"
	"tableside/internal/mq"
	"tableside/internal/session"
)

// Submission is a frozen order builder session ready to persist.
type Submission struct {
	Table          domain.Table
	CustomerName   *string
	Notes          *string
	Lines          []session.Line
	IdempotencyKey uuid.UUID
}

// Submit persists a completed session as a durable order: header first, then
// lines, then the table status transition. Local precondition failures are
// returned before any write; remote failures carry the stage they happened
// at. The whole operation runs under the configured submission deadline.
func (s *Service) Submit(ctx context.Context, sub Submission) (OrderWithItems, error) {
	if sub.Table.ID == uuid.Nil {
		return OrderWithItems{}, domain.ErrNoActiveTable
	}
	if len(sub.Lines) == 0 {
		return OrderWithItems{}, domain.ErrEmptyOrder
	}
	if sub.IdempotencyKey == uuid.Nil {
		sub.IdempotencyKey = uuid.New()
	}

	ctx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	defer cancel()

	var (
		total   float64
		maxPrep int
	)
	lines := make([]LineInput, 0, len(sub.Lines))
	for _, l := range sub.Lines {
		total += l.UnitPrice * float64(l.Quantity)
		if l.PrepTime > maxPrep {
			maxPrep = l.PrepTime
		}
		li := LineInput{MenuItemID: l.MenuItemID, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
		if l.Note != "" {
			note := l.Note
			li.Notes = &note
		}
		lines = append(lines, li)
	}

	order, createdNow, err := s.repo.CreateOrder(ctx, Header{
		TableID:        sub.Table.ID,
		CustomerName:   sub.CustomerName,
		TotalAmount:    total,
		Notes:          sub.Notes,
		IdempotencyKey: sub.IdempotencyKey,
	})
	if err != nil {
		return OrderWithItems{}, stageErr(domain.StageCreateOrder, err, nil)
	}
	if !createdNow {
		// same idempotency key was already persisted; hand back the first
		// submission's result instead of writing anything again. A prior
		// attempt may have failed after the order became durable but before
		// the table transition landed, so finish that transition here.
		if !order.Status.Terminal() {
			if err := s.occupyTable(ctx, sub.Table.ID); err != nil {
				return OrderWithItems{}, stageErr(domain.StageOccupyTable, err, nil)
			}
		}
		s.log.WithFields(logrus.Fields{"action": "duplicate_submission", "order_id": order.ID}).
			Info("submission replayed via idempotency key")
		return s.repo.GetByID(ctx, order.ID)
	}

	items, err := s.repo.CreateOrderLines(ctx, order.ID, lines)
	if err != nil {
		// compensate: remove the headless order so no orphaned header
		// survives the partial failure
		comp := s.compensateHeader(order.ID)
		return OrderWithItems{}, stageErr(domain.StageCreateLines, err, comp)
	}

	if err := s.occupyTable(ctx, sub.Table.ID); err != nil {
		// the order itself is durable at this point; only the table flag
		// is out of step
		return OrderWithItems{}, stageErr(domain.StageOccupyTable, err, nil)
	}

	priority := orderPriority(total)
	msg := domain.OrderCreatedMsg{
		OrderID:      order.ID,
		TableID:      sub.Table.ID,
		TableNumber:  sub.Table.Number,
		CustomerName: sub.CustomerName,
		TotalAmount:  total,
		Priority:     priority,
		MaxPrepTime:  maxPrep,
		CreatedAt:    order.CreatedAt,
	}
	for _, l := range sub.Lines {
		var note *string
		if l.Note != "" {
			n := l.Note
			note = &n
		}
		msg.Items = append(msg.Items, domain.OrderItemMsg{
			MenuItemID: l.MenuItemID,
			Name:       l.Name,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			Notes:      note,
		})
	}
	routingKey := fmt.Sprintf("kitchen.%d", priority)
	if err := s.pub.Publish(ctx, mq.OrdersExchange, routingKey, uint8(priority), msg); err != nil {
		s.log.WithFields(logrus.Fields{"action": "publish_failed", "order_id": order.ID}).
			WithError(err).Warn("order created event not published")
	}

	s.log.WithFields(logrus.Fields{
		"action":       "order_submitted",
		"order_id":     order.ID,
		"table_number": sub.Table.Number,
		"total_amount": total,
		"items":        len(items),
	}).Info("order submitted")

	return OrderWithItems{Order: order, TableNumber: sub.Table.Number, Items: items}, nil
}

// SubmitSession drives a builder session through the full submission: guard,
// persist, reset. The session keeps its idempotency key when submission
// fails, so a manual retry cannot double-create the order.
func (s *Service) SubmitSession(ctx context.Context, sess *session.Session, customerName, notes *string) (OrderWithItems, error) {
	key, err := sess.BeginSubmit()
	if err != nil {
		return OrderWithItems{}, err
	}
	defer sess.EndSubmit()

	table, ok := sess.ActiveTable()
	if !ok {
		return OrderWithItems{}, domain.ErrNoActiveTable
	}

	result, err := s.Submit(ctx, Submission{
		Table:          table,
		CustomerName:   customerName,
		Notes:          notes,
		Lines:          sess.Lines(),
		IdempotencyKey: key,
	})
	if err != nil {
		return OrderWithItems{}, err
	}

	sess.Reset()
	return result, nil
}

// compensateHeader deletes an order header whose lines never landed. Runs on
// a fresh context because the submission context may already be past its
// deadline.
func (s *Service) compensateHeader(orderID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.repo.DeleteOrder(ctx, orderID); err != nil {
		s.log.WithFields(logrus.Fields{"action": "compensation_failed", "order_id": orderID}).
			WithError(err).Error("orphaned order header could not be removed")
		return err
	}
	return nil
}

// occupyTable moves the table to occupied. The transition is idempotent from
// the submission's point of view: a table already occupied counts as success,
// and a transient failure gets one retry before surfacing.
func (s *Service) occupyTable(ctx context.Context, tableID uuid.UUID) error {
	if t, err := s.tables.GetByID(ctx, tableID); err == nil && t.Status == domain.TableOccupied {
		return nil
	}
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		_, err := s.tables.SetStatus(ctx, tableID, domain.TableOccupied)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrInvalidTransition) {
			if t, gErr := s.tables.GetByID(ctx, tableID); gErr == nil && t.Status == domain.TableOccupied {
				return nil
			}
		}
		lastErr = err
	}
	return lastErr
}

func stageErr(stage string, cause, compensation error) error {
	if errors.Is(cause, context.DeadlineExceeded) {
		cause = domain.ErrSubmissionTimedOut
	}
	return &domain.SubmissionError{Stage: stage, Cause: cause, Compensation: compensation}
}

// orderPriority maps the order total onto the kitchen queue priority bands.
func orderPriority(total float64) int {
	switch {
	case total >= 100:
		return 10
	case total >= 50:
		return 5
	default:
		return 1
	}
}
