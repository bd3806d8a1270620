package domain

import (
	"time"

	"github.com/google/uuid"
)

// Messages published to the broker when orders and tables change. Consumers
// (kitchen displays, notification screens) bind to the exchanges declared in
// internal/mq.

type OrderItemMsg struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unit_price"`
	Notes      *string   `json:"notes,omitempty"`
}

type OrderCreatedMsg struct {
	OrderID      uuid.UUID      `json:"order_id"`
	TableID      uuid.UUID      `json:"table_id"`
	TableNumber  int            `json:"table_number"`
	CustomerName *string        `json:"customer_name,omitempty"`
	Items        []OrderItemMsg `json:"items"`
	TotalAmount  float64        `json:"total_amount"`
	Priority     int            `json:"priority"`
	MaxPrepTime  int            `json:"max_prep_time"`
	CreatedAt    time.Time      `json:"created_at"`
}

type OrderStatusChangedMsg struct {
	OrderID   uuid.UUID   `json:"order_id"`
	TableID   uuid.UUID   `json:"table_id"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
	ChangedAt time.Time   `json:"changed_at"`
}

type TableStatusChangedMsg struct {
	TableID     uuid.UUID   `json:"table_id"`
	TableNumber int         `json:"table_number"`
	OldStatus   TableStatus `json:"old_status"`
	NewStatus   TableStatus `json:"new_status"`
	ChangedAt   time.Time   `json:"changed_at"`
}
