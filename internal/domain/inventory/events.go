package inventory

import "time"

const (
	FailureReasonNotFound          = "not_found"
	FailureReasonInvalidArgument   = "invalid_argument"
	FailureReasonInsufficientStock = "insufficient_stock"
	FailureReasonPersistenceError  = "persist_error"
)

// StockAddedEvent is emitted when quantity is added to an item.
type StockAddedEvent struct {
	Name       string
	Quantity   int
	Total      int
	OccurredAt time.Time
}

func (StockAddedEvent) EventName() string { return "stock.added" }

func NewStockAddedEvent(name string, quantity, total int) StockAddedEvent {
	return StockAddedEvent{
		Name:       name,
		Quantity:   quantity,
		Total:      total,
		OccurredAt: time.Now().UTC(),
	}
}

// StockRemovedEvent is emitted when quantity is deducted from an item.
type StockRemovedEvent struct {
	Name       string
	Quantity   int
	Remaining  int
	OccurredAt time.Time
}

func (StockRemovedEvent) EventName() string { return "stock.removed" }

func NewStockRemovedEvent(name string, quantity, remaining int) StockRemovedEvent {
	return StockRemovedEvent{
		Name:       name,
		Quantity:   quantity,
		Remaining:  remaining,
		OccurredAt: time.Now().UTC(),
	}
}

// StockDepletedEvent is emitted when a removal drains an item to zero and the
// entry is dropped from the mapping.
type StockDepletedEvent struct {
	Name       string
	OccurredAt time.Time
}

func (StockDepletedEvent) EventName() string { return "stock.depleted" }

func NewStockDepletedEvent(name string) StockDepletedEvent {
	return StockDepletedEvent{
		Name:       name,
		OccurredAt: time.Now().UTC(),
	}
}
