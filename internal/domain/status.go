package domain

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
	TableCleaning  TableStatus = "cleaning"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableCleaning:
		return true
	}
	return false
}

// tableTransitions holds the only permitted status changes. Reserved and
// cleaning are reachable from available only, and always return to available.
var tableTransitions = map[TableStatus][]TableStatus{
	TableAvailable: {TableOccupied, TableReserved, TableCleaning},
	TableOccupied:  {TableAvailable},
	TableReserved:  {TableAvailable},
	TableCleaning:  {TableAvailable},
}

func (s TableStatus) CanTransition(to TableStatus) bool {
	for _, next := range tableTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderServed    OrderStatus = "served"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPreparing, OrderReady, OrderServed, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderServed || s == OrderCancelled
}

// orderTransitions enforces the forward-only kitchen flow. No skipping:
// pending -> preparing -> ready -> served, with cancellation allowed from any
// pre-served state.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderPreparing, OrderCancelled},
	OrderPreparing: {OrderReady, OrderCancelled},
	OrderReady:     {OrderServed, OrderCancelled},
}

func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type InventoryCategory string

const (
	InventoryIngredients InventoryCategory = "ingredients"
	InventoryBeverages   InventoryCategory = "beverages"
	InventorySupplies    InventoryCategory = "supplies"
	InventoryEquipment   InventoryCategory = "equipment"
)

func (c InventoryCategory) Valid() bool {
	switch c {
	case InventoryIngredients, InventoryBeverages, InventorySupplies, InventoryEquipment:
		return true
	}
	return false
}
