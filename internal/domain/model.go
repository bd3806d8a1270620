package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StringList is a text list persisted as a JSONB array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

type Table struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	Number    int         `json:"table_number" db:"table_number"`
	Seats     int         `json:"seats" db:"seats"`
	Status    TableStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type MenuItem struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description,omitempty" db:"description"`
	Price       float64    `json:"price" db:"price"`
	CategoryID  uuid.UUID  `json:"category_id" db:"category_id"`
	ImageURL    *string    `json:"image_url,omitempty" db:"image_url"`
	PrepTime    int        `json:"prep_time" db:"prep_time"` // minutes
	Ingredients StringList `json:"ingredients" db:"ingredients"`
	Calories    *int       `json:"calories,omitempty" db:"calories"`
	SpiceLevel  *int       `json:"spice_level,omitempty" db:"spice_level"`
	IsPopular   bool       `json:"is_popular" db:"is_popular"`
	IsAvailable bool       `json:"is_available" db:"is_available"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

type InventoryItem struct {
	ID            uuid.UUID         `json:"id" db:"id"`
	Name          string            `json:"name" db:"name"`
	Description   *string           `json:"description,omitempty" db:"description"`
	Category      InventoryCategory `json:"category" db:"category"`
	CurrentStock  float64           `json:"current_stock" db:"current_stock"`
	MinStock      float64           `json:"min_stock" db:"min_stock"`
	MaxStock      float64           `json:"max_stock" db:"max_stock"`
	Unit          string            `json:"unit" db:"unit"`
	UnitPrice     float64           `json:"unit_price" db:"unit_price"`
	Supplier      *string           `json:"supplier,omitempty" db:"supplier"`
	LastRestocked *time.Time        `json:"last_restocked,omitempty" db:"last_restocked"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
}

type Order struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	TableID        uuid.UUID   `json:"table_id" db:"table_id"`
	CustomerName   *string     `json:"customer_name,omitempty" db:"customer_name"`
	Status         OrderStatus `json:"status" db:"status"`
	TotalAmount    float64     `json:"total_amount" db:"total_amount"`
	Notes          *string     `json:"notes,omitempty" db:"notes"`
	IdempotencyKey uuid.UUID   `json:"-" db:"idempotency_key"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

type OrderItem struct {
	ID         uuid.UUID `json:"id" db:"id"`
	OrderID    uuid.UUID `json:"order_id" db:"order_id"`
	MenuItemID uuid.UUID `json:"menu_item_id" db:"menu_item_id"`
	Quantity   int       `json:"quantity" db:"quantity"`
	UnitPrice  float64   `json:"unit_price" db:"unit_price"` // price at submission time
	Notes      *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Restaurant is the single-row venue profile edited from the settings page.
type Restaurant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	LogoURL   *string   `json:"logo_url,omitempty" db:"logo_url"`
	Address   *string   `json:"address,omitempty" db:"address"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Email     *string   `json:"email,omitempty" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
