package stock

import (
	domjournal "github.com/Zhima-Mochi/stockroom/internal/domain/journal"
)

// AddStockCommand adds quantity to an item, creating the entry when absent.
type AddStockCommand struct {
	Name     string
	Quantity int
}

type AddStockResult struct {
	Quantity int
	Log      []domjournal.Entry
}

// RemoveStockCommand deducts quantity from an item. Draining an item to zero
// drops its entry from the mapping.
type RemoveStockCommand struct {
	Name     string
	Quantity int
}

type RemoveStockResult struct {
	Remaining int
	Depleted  bool
	Log       []domjournal.Entry
}

type QuantityCommand struct {
	Name string
}

type ReportCommand struct{}

// StockLine is one row of the inventory report.
type StockLine struct {
	Name     string
	Quantity int
}

type LowStockCommand struct {
	// Threshold defaults to DefaultLowStockThreshold when <= 0.
	Threshold int
}

type SnapshotCommand struct{}

type SnapshotResult struct {
	Path  string
	Items int
}

type RestoreCommand struct{}

type RestoreResult struct {
	Items int
}
