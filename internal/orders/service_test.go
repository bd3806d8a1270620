package orders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableside/internal/domain"
	"tableside/internal/logger"
	"tableside/internal/session"
)

type mockRepo struct {
	mu sync.Mutex

	orders  map[uuid.UUID]*OrderWithItems
	byKey   map[uuid.UUID]uuid.UUID
	deleted []uuid.UUID

	openCount    int
	createErr    error
	linesErr     error
	linesDelay   time.Duration
	deleteErr    error
	createCalled int
	linesCalled  int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		orders: make(map[uuid.UUID]*OrderWithItems),
		byKey:  make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *mockRepo) CreateOrder(ctx context.Context, h Header) (domain.Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalled++
	if m.createErr != nil {
		return domain.Order{}, false, m.createErr
	}
	if existing, ok := m.byKey[h.IdempotencyKey]; ok {
		return m.orders[existing].Order, false, nil
	}
	o := domain.Order{
		ID:             uuid.New(),
		TableID:        h.TableID,
		CustomerName:   h.CustomerName,
		Status:         domain.OrderPending,
		TotalAmount:    h.TotalAmount,
		Notes:          h.Notes,
		IdempotencyKey: h.IdempotencyKey,
		CreatedAt:      time.Now().UTC(),
	}
	m.orders[o.ID] = &OrderWithItems{Order: o, Items: []domain.OrderItem{}}
	m.byKey[h.IdempotencyKey] = o.ID
	return o, true, nil
}

func (m *mockRepo) CreateOrderLines(ctx context.Context, orderID uuid.UUID, lines []LineInput) ([]domain.OrderItem, error) {
	if m.linesDelay > 0 {
		select {
		case <-time.After(m.linesDelay):
		case <-ctx.Done():
			return nil, &domain.PersistenceError{Detail: "insert canceled", Cause: ctx.Err()}
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.linesCalled++
	if m.linesErr != nil {
		return nil, m.linesErr
	}
	o, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		item := domain.OrderItem{
			ID:         uuid.New(),
			OrderID:    orderID,
			MenuItemID: l.MenuItemID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			Notes:      l.Notes,
		}
		o.Items = append(o.Items, item)
		out = append(out, item)
	}
	return out, nil
}

func (m *mockRepo) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(m.orders, id)
	delete(m.byKey, o.IdempotencyKey)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (OrderWithItems, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return OrderWithItems{}, domain.ErrNotFound
	}
	return *o, nil
}

func (m *mockRepo) List(ctx context.Context) ([]OrderWithItems, error) { return nil, nil }
func (m *mockRepo) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]OrderWithItems, error) {
	return nil, nil
}
func (m *mockRepo) ListByTable(ctx context.Context, tableID uuid.UUID) ([]OrderWithItems, error) {
	return nil, nil
}

func (m *mockRepo) OpenOrderCount(ctx context.Context, tableID, excludeOrderID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openCount, nil
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	o.Status = status
	return o.Order, nil
}

func (m *mockRepo) Stats(ctx context.Context) (Stats, error) { return Stats{}, nil }

type statusCall struct {
	id uuid.UUID
	to domain.TableStatus
}

type mockTables struct {
	mu      sync.Mutex
	tables  map[uuid.UUID]*domain.Table
	calls   []statusCall
	failSet int // remaining SetStatus calls to fail
}

func newMockTables(tbls ...domain.Table) *mockTables {
	m := &mockTables{tables: make(map[uuid.UUID]*domain.Table)}
	for i := range tbls {
		t := tbls[i]
		m.tables[t.ID] = &t
	}
	return m
}

func (m *mockTables) GetByID(ctx context.Context, id uuid.UUID) (domain.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[id]
	if !ok {
		return domain.Table{}, domain.ErrNotFound
	}
	return *t, nil
}

func (m *mockTables) SetStatus(ctx context.Context, id uuid.UUID, to domain.TableStatus) (domain.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, statusCall{id: id, to: to})
	if m.failSet > 0 {
		m.failSet--
		return domain.Table{}, &domain.PersistenceError{Detail: "set status failed"}
	}
	t, ok := m.tables[id]
	if !ok {
		return domain.Table{}, domain.ErrNotFound
	}
	if !t.Status.CanTransition(to) {
		return domain.Table{}, domain.ErrInvalidTransition
	}
	t.Status = to
	return *t, nil
}

func (m *mockTables) occupyCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.to == domain.TableOccupied {
			n++
		}
	}
	return n
}

type published struct {
	exchange string
	key      string
	payload  any
}

type mockPublisher struct {
	mu     sync.Mutex
	events []published
}

func (m *mockPublisher) Publish(ctx context.Context, exchange, key string, priority uint8, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, published{exchange: exchange, key: key, payload: v})
	return nil
}

func setup(t *testing.T, table domain.Table) (*Service, *mockRepo, *mockTables, *mockPublisher) {
	t.Helper()
	repo := newMockRepo()
	reg := newMockTables(table)
	pub := &mockPublisher{}
	svc := NewService(repo, reg, pub, logger.New("error"), time.Second)
	return svc, repo, reg, pub
}

func availableTable() domain.Table {
	return domain.Table{ID: uuid.New(), Number: 7, Seats: 4, Status: domain.TableAvailable}
}

func lineFor(price float64, qty int) session.Line {
	return session.Line{MenuItemID: uuid.New(), Name: "item", UnitPrice: price, PrepTime: 10, Quantity: qty}
}

func TestSubmit(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		table := availableTable()
		svc, repo, reg, pub := setup(t, table)

		result, err := svc.Submit(context.Background(), Submission{
			Table: table,
			Lines: []session.Line{lineFor(10.00, 2), lineFor(5.00, 1)},
		})
		require.NoError(t, err)

		assert.InDelta(t, 25.00, result.TotalAmount, 1e-9)
		assert.Equal(t, domain.OrderPending, result.Status)
		assert.Len(t, result.Items, 2)

		// table occupied exactly once, after order and lines persisted
		assert.Equal(t, 1, reg.occupyCalls())
		stored, _ := reg.GetByID(context.Background(), table.ID)
		assert.Equal(t, domain.TableOccupied, stored.Status)

		require.Len(t, pub.events, 1)
		msg, ok := pub.events[0].payload.(domain.OrderCreatedMsg)
		require.True(t, ok)
		assert.Equal(t, result.ID, msg.OrderID)
		assert.Equal(t, 1, msg.Priority)

		assert.Equal(t, 1, repo.createCalled)
		assert.Equal(t, 1, repo.linesCalled)
	})

	t.Run("EmptyOrderNoNetworkCalls", func(t *testing.T) {
		table := availableTable()
		svc, repo, reg, _ := setup(t, table)

		_, err := svc.Submit(context.Background(), Submission{Table: table})
		require.ErrorIs(t, err, domain.ErrEmptyOrder)
		assert.Zero(t, repo.createCalled)
		assert.Empty(t, reg.calls)
	})

	t.Run("NoActiveTable", func(t *testing.T) {
		svc, repo, _, _ := setup(t, availableTable())

		_, err := svc.Submit(context.Background(), Submission{Lines: []session.Line{lineFor(10, 1)}})
		require.ErrorIs(t, err, domain.ErrNoActiveTable)
		assert.Zero(t, repo.createCalled)
	})

	t.Run("HeaderFailureSurfacesStage", func(t *testing.T) {
		table := availableTable()
		svc, repo, reg, _ := setup(t, table)
		repo.createErr = &domain.PersistenceError{Detail: "connection refused"}

		_, err := svc.Submit(context.Background(), Submission{
			Table: table,
			Lines: []session.Line{lineFor(10, 1)},
		})
		var subErr *domain.SubmissionError
		require.ErrorAs(t, err, &subErr)
		assert.Equal(t, domain.StageCreateOrder, subErr.Stage)
		assert.Empty(t, reg.calls)
	})

	t.Run("LineFailureCompensatesHeader", func(t *testing.T) {
		table := availableTable()
		svc, repo, reg, _ := setup(t, table)
		repo.linesErr = &domain.PersistenceError{Detail: "constraint violation"}

		_, err := svc.Submit(context.Background(), Submission{
			Table: table,
			Lines: []session.Line{lineFor(10, 2)},
		})
		var subErr *domain.SubmissionError
		require.ErrorAs(t, err, &subErr)
		assert.Equal(t, domain.StageCreateLines, subErr.Stage)
		assert.NoError(t, subErr.Compensation)

		// headless order header was deleted, table untouched
		require.Len(t, repo.deleted, 1)
		assert.Empty(t, repo.orders)
		assert.Zero(t, reg.occupyCalls())
	})

	t.Run("OccupyFailureRetriesOnce", func(t *testing.T) {
		table := availableTable()
		svc, _, reg, _ := setup(t, table)
		reg.failSet = 1

		result, err := svc.Submit(context.Background(), Submission{
			Table: table,
			Lines: []session.Line{lineFor(10, 1)},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, reg.occupyCalls())

		stored, _ := reg.GetByID(context.Background(), table.ID)
		assert.Equal(t, domain.TableOccupied, stored.Status)
		assert.NotEqual(t, uuid.Nil, result.ID)
	})

	t.Run("OccupyFailureKeepsOrder", func(t *testing.T) {
		table := availableTable()
		svc, repo, reg, _ := setup(t, table)
		reg.failSet = 2

		_, err := svc.Submit(context.Background(), Submission{
			Table: table,
			Lines: []session.Line{lineFor(10, 1)},
		})
		var subErr *domain.SubmissionError
		require.ErrorAs(t, err, &subErr)
		assert.Equal(t, domain.StageOccupyTable, subErr.Stage)

		// order is durable; only the table flag is stale
		assert.Len(t, repo.orders, 1)
		assert.Empty(t, repo.deleted)
	})

	t.Run("RetryAfterOccupyFailureOccupiesTable", func(t *testing.T) {
		table := availableTable()
		svc, _, reg, _ := setup(t, table)
		reg.failSet = 2

		sub := Submission{
			Table:          table,
			Lines:          []session.Line{lineFor(10, 1)},
			IdempotencyKey: uuid.New(),
		}
		_, err := svc.Submit(context.Background(), sub)
		var subErr *domain.SubmissionError
		require.ErrorAs(t, err, &subErr)
		require.Equal(t, domain.StageOccupyTable, subErr.Stage)

		// the stale table flag from the failed attempt is repaired on replay
		result, err := svc.Submit(context.Background(), sub)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, result.ID)

		stored, _ := reg.GetByID(context.Background(), table.ID)
		assert.Equal(t, domain.TableOccupied, stored.Status)
	})

	t.Run("HeaderFailureDoesNotBurnKey", func(t *testing.T) {
		table := availableTable()
		svc, repo, reg, _ := setup(t, table)
		repo.createErr = &domain.PersistenceError{Detail: "connection refused"}

		sub := Submission{
			Table:          table,
			Lines:          []session.Line{lineFor(10, 1)},
			IdempotencyKey: uuid.New(),
		}
		_, err := svc.Submit(context.Background(), sub)
		require.Error(t, err)
		assert.Empty(t, repo.orders)

		// a failed header write leaves nothing behind, so the same key
		// creates the order cleanly on retry
		repo.createErr = nil
		result, err := svc.Submit(context.Background(), sub)
		require.NoError(t, err)
		assert.Len(t, repo.orders, 1)
		assert.Equal(t, domain.OrderPending, result.Status)

		stored, _ := reg.GetByID(context.Background(), table.ID)
		assert.Equal(t, domain.TableOccupied, stored.Status)
	})

	t.Run("DuplicateKeyReturnsFirstResult", func(t *testing.T) {
		table := availableTable()
		svc, repo, reg, _ := setup(t, table)

		key := uuid.New()
		sub := Submission{
			Table:          table,
			Lines:          []session.Line{lineFor(12.50, 2)},
			IdempotencyKey: key,
		}
		first, err := svc.Submit(context.Background(), sub)
		require.NoError(t, err)

		second, err := svc.Submit(context.Background(), sub)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		// no second set of writes happened
		assert.Equal(t, 1, repo.linesCalled)
		assert.Equal(t, 1, reg.occupyCalls())
	})

	t.Run("HighTotalGetsHighPriority", func(t *testing.T) {
		table := availableTable()
		svc, _, _, pub := setup(t, table)

		_, err := svc.Submit(context.Background(), Submission{
			Table: table,
			Lines: []session.Line{lineFor(60.00, 2)},
		})
		require.NoError(t, err)

		require.Len(t, pub.events, 1)
		msg := pub.events[0].payload.(domain.OrderCreatedMsg)
		assert.Equal(t, 10, msg.Priority)
		assert.Equal(t, "kitchen.10", pub.events[0].key)
	})

	t.Run("Timeout", func(t *testing.T) {
		table := availableTable()
		repo := newMockRepo()
		repo.linesDelay = 200 * time.Millisecond
		reg := newMockTables(table)
		svc := NewService(repo, reg, &mockPublisher{}, logger.New("error"), 20*time.Millisecond)

		_, err := svc.Submit(context.Background(), Submission{
			Table: table,
			Lines: []session.Line{lineFor(10, 1)},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrSubmissionTimedOut)

		var subErr *domain.SubmissionError
		require.ErrorAs(t, err, &subErr)
		assert.Equal(t, domain.StageCreateLines, subErr.Stage)
	})
}

func TestSubmitSession(t *testing.T) {
	t.Run("SuccessResetsSession", func(t *testing.T) {
		table := availableTable()
		svc, _, _, _ := setup(t, table)

		sess := session.New()
		require.NoError(t, sess.SelectTable(table))
		item := domain.MenuItem{ID: uuid.New(), Name: "Risotto", Price: 16.00, PrepTime: 18, IsAvailable: true}
		require.NoError(t, sess.AddItem(item))

		result, err := svc.SubmitSession(context.Background(), sess, nil, nil)
		require.NoError(t, err)
		assert.InDelta(t, 16.00, result.TotalAmount, 1e-9)

		_, active := sess.ActiveTable()
		assert.False(t, active)
		assert.True(t, sess.Empty())
	})

	t.Run("FailureKeepsSessionForRetry", func(t *testing.T) {
		table := availableTable()
		svc, repo, _, _ := setup(t, table)
		repo.linesErr = &domain.PersistenceError{Detail: "down"}

		sess := session.New()
		require.NoError(t, sess.SelectTable(table))
		item := domain.MenuItem{ID: uuid.New(), Name: "Risotto", Price: 16.00, PrepTime: 18, IsAvailable: true}
		require.NoError(t, sess.AddItem(item))

		_, err := svc.SubmitSession(context.Background(), sess, nil, nil)
		require.Error(t, err)

		// lines survive, guard released, retry possible
		assert.Equal(t, 1, sess.ItemCount())
		repo.linesErr = nil
		_, err = svc.SubmitSession(context.Background(), sess, nil, nil)
		require.NoError(t, err)
	})

	t.Run("EmptySessionRejected", func(t *testing.T) {
		table := availableTable()
		svc, _, _, _ := setup(t, table)

		sess := session.New()
		require.NoError(t, sess.SelectTable(table))
		_, err := svc.SubmitSession(context.Background(), sess, nil, nil)
		assert.ErrorIs(t, err, domain.ErrEmptyOrder)
	})
}

func TestAdvance(t *testing.T) {
	submitOne := func(t *testing.T, svc *Service, table domain.Table) OrderWithItems {
		t.Helper()
		result, err := svc.Submit(context.Background(), Submission{
			Table: table,
			Lines: []session.Line{lineFor(10, 1)},
		})
		require.NoError(t, err)
		return result
	}

	t.Run("ForwardSequence", func(t *testing.T) {
		table := availableTable()
		svc, _, _, _ := setup(t, table)
		order := submitOne(t, svc, table)

		for _, next := range []domain.OrderStatus{domain.OrderPreparing, domain.OrderReady, domain.OrderServed} {
			updated, err := svc.Advance(context.Background(), order.ID, next)
			require.NoError(t, err)
			assert.Equal(t, next, updated.Status)
		}
	})

	t.Run("SkippingRejected", func(t *testing.T) {
		table := availableTable()
		svc, _, _, _ := setup(t, table)
		order := submitOne(t, svc, table)

		_, err := svc.Advance(context.Background(), order.ID, domain.OrderServed)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("ServedFreesTableWhenLastOpenOrder", func(t *testing.T) {
		table := availableTable()
		svc, repo, reg, _ := setup(t, table)
		order := submitOne(t, svc, table)
		repo.openCount = 0

		_, err := svc.Advance(context.Background(), order.ID, domain.OrderPreparing)
		require.NoError(t, err)
		_, err = svc.Advance(context.Background(), order.ID, domain.OrderReady)
		require.NoError(t, err)
		_, err = svc.Advance(context.Background(), order.ID, domain.OrderServed)
		require.NoError(t, err)

		stored, _ := reg.GetByID(context.Background(), table.ID)
		assert.Equal(t, domain.TableAvailable, stored.Status)
	})

	t.Run("ServedKeepsTableWhileOtherOrdersOpen", func(t *testing.T) {
		table := availableTable()
		svc, repo, reg, _ := setup(t, table)
		first := submitOne(t, svc, table)
		second := submitOne(t, svc, table)

		advance := func(id uuid.UUID, to ...domain.OrderStatus) {
			for _, next := range to {
				_, err := svc.Advance(context.Background(), id, next)
				require.NoError(t, err)
			}
		}

		// first order is served while the second is still open
		repo.openCount = 1
		advance(first.ID, domain.OrderPreparing, domain.OrderReady, domain.OrderServed)

		stored, _ := reg.GetByID(context.Background(), table.ID)
		assert.Equal(t, domain.TableOccupied, stored.Status)

		// once the second order is served too, the table frees
		repo.openCount = 0
		advance(second.ID, domain.OrderPreparing, domain.OrderReady, domain.OrderServed)

		stored, _ = reg.GetByID(context.Background(), table.ID)
		assert.Equal(t, domain.TableAvailable, stored.Status)
	})

	t.Run("CancelFromPending", func(t *testing.T) {
		table := availableTable()
		svc, _, _, _ := setup(t, table)
		order := submitOne(t, svc, table)

		updated, err := svc.Advance(context.Background(), order.ID, domain.OrderCancelled)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderCancelled, updated.Status)

		// terminal: nothing further allowed
		_, err = svc.Advance(context.Background(), order.ID, domain.OrderPreparing)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("PublishesStatusEvent", func(t *testing.T) {
		table := availableTable()
		svc, _, _, pub := setup(t, table)
		order := submitOne(t, svc, table)

		_, err := svc.Advance(context.Background(), order.ID, domain.OrderPreparing)
		require.NoError(t, err)

		var statusEvents []domain.OrderStatusChangedMsg
		for _, e := range pub.events {
			if msg, ok := e.payload.(domain.OrderStatusChangedMsg); ok {
				statusEvents = append(statusEvents, msg)
			}
		}
		require.Len(t, statusEvents, 1)
		assert.Equal(t, domain.OrderPending, statusEvents[0].OldStatus)
		assert.Equal(t, domain.OrderPreparing, statusEvents[0].NewStatus)
	})
}

func TestDelete(t *testing.T) {
	t.Run("FreesIdleTable", func(t *testing.T) {
		table := availableTable()
		svc, repo, reg, _ := setup(t, table)
		order, err := svc.Submit(context.Background(), Submission{
			Table: table,
			Lines: []session.Line{lineFor(10, 1)},
		})
		require.NoError(t, err)

		repo.openCount = 0
		require.NoError(t, svc.Delete(context.Background(), order.ID))

		stored, _ := reg.GetByID(context.Background(), table.ID)
		assert.Equal(t, domain.TableAvailable, stored.Status)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, _, _, _ := setup(t, availableTable())
		err := svc.Delete(context.Background(), uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
