// Package session implements the in-memory order builder: the client-local
// aggregation of menu selections for one table, kept entirely off the wire
// until submission.
package session

import (
	"github.com/google/uuid"

	"tableside/internal/domain"
)

// Line is one (menu item, quantity) aggregate. UnitPrice and PrepTime are
// frozen at the moment the item is first added, so a catalog price change
// mid-session never shifts the running total under the guest.
type Line struct {
	MenuItemID uuid.UUID
	Name       string
	UnitPrice  float64
	PrepTime   int
	Quantity   int
	Note       string
}

// Session accumulates order lines for the currently selected table. Mutations
// are driven by discrete UI actions and are expected to be serialized by the
// caller; Session itself is not safe for concurrent use.
type Session struct {
	table      *domain.Table
	lines      []Line
	submitting bool
	key        uuid.UUID
}

func New() *Session {
	return &Session{}
}

// SelectTable starts a session on the given table, discarding any lines from
// a previous selection. Only available tables may start a session.
func (s *Session) SelectTable(t domain.Table) error {
	if t.Status != domain.TableAvailable {
		return domain.ErrInvalidSelection
	}
	s.table = &t
	s.lines = nil
	s.key = uuid.Nil
	return nil
}

// ActiveTable returns the selected table, or false when none is selected.
func (s *Session) ActiveTable() (domain.Table, bool) {
	if s.table == nil {
		return domain.Table{}, false
	}
	return *s.table, true
}

// AddItem merges one unit of the menu item into the session. An existing line
// for the same item is incremented; otherwise a new line is created with the
// catalog price captured now.
func (s *Session) AddItem(mi domain.MenuItem) error {
	if s.table == nil {
		return domain.ErrNoActiveTable
	}
	if !mi.IsAvailable {
		return domain.ErrInvalidSelection
	}
	for i := range s.lines {
		if s.lines[i].MenuItemID == mi.ID {
			s.lines[i].Quantity++
			return nil
		}
	}
	s.lines = append(s.lines, Line{
		MenuItemID: mi.ID,
		Name:       mi.Name,
		UnitPrice:  mi.Price,
		PrepTime:   mi.PrepTime,
		Quantity:   1,
	})
	return nil
}

// RemoveItem decrements the line for the given menu item, deleting it when
// the quantity reaches zero. Removing an item that is not present is a no-op.
func (s *Session) RemoveItem(menuItemID uuid.UUID) {
	for i := range s.lines {
		if s.lines[i].MenuItemID != menuItemID {
			continue
		}
		s.lines[i].Quantity--
		if s.lines[i].Quantity <= 0 {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
		}
		return
	}
}

// SetNote attaches a free-text note to an existing line. Unknown items are
// ignored, mirroring RemoveItem.
func (s *Session) SetNote(menuItemID uuid.UUID, note string) {
	for i := range s.lines {
		if s.lines[i].MenuItemID == menuItemID {
			s.lines[i].Note = note
			return
		}
	}
}

// Total is the running sum over lines of frozen unit price times quantity.
func (s *Session) Total() float64 {
	var total float64
	for _, l := range s.lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

// ItemCount is the sum of quantities across all lines.
func (s *Session) ItemCount() int {
	var n int
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// MaxPrepTime returns the largest prep-time estimate among the lines, in
// minutes, used as the ETA signal. Zero when the session is empty.
func (s *Session) MaxPrepTime() int {
	var max int
	for _, l := range s.lines {
		if l.PrepTime > max {
			max = l.PrepTime
		}
	}
	return max
}

// Lines returns a snapshot of the current lines in insertion order.
func (s *Session) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Session) Empty() bool { return len(s.lines) == 0 }

// BeginSubmit marks the session as submitting and returns its idempotency
// key. The key is minted on the first call and kept across manual retries, so
// a re-submitted session cannot create a duplicate order. A second call while
// a submission is outstanding fails with ErrSubmissionInFlight.
func (s *Session) BeginSubmit() (uuid.UUID, error) {
	if s.submitting {
		return uuid.Nil, domain.ErrSubmissionInFlight
	}
	if s.table == nil {
		return uuid.Nil, domain.ErrNoActiveTable
	}
	if len(s.lines) == 0 {
		return uuid.Nil, domain.ErrEmptyOrder
	}
	if s.key == uuid.Nil {
		s.key = uuid.New()
	}
	s.submitting = true
	return s.key, nil
}

// EndSubmit releases the submission guard. Call after the submission settles,
// whether it succeeded or failed.
func (s *Session) EndSubmit() {
	s.submitting = false
}

// Reset clears the session after a successful submission or an explicit
// discard. A discarded session has no server-side effect.
func (s *Session) Reset() {
	s.table = nil
	s.lines = nil
	s.submitting = false
	s.key = uuid.Nil
}
