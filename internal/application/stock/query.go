package stock

import (
	"context"
	"errors"
	"fmt"

	dominv "github.com/Zhima-Mochi/stockroom/internal/domain/inventory"
	"github.com/Zhima-Mochi/stockroom/internal/observability"
)

const (
	useCaseQuantity = "stock.quantity"
	useCaseReport   = "stock.report"
	useCaseLowStock = "stock.low_stock"

	// DefaultLowStockThreshold mirrors the reorder threshold the report uses
	// when the caller does not supply one.
	DefaultLowStockThreshold = 5
)

// QuantityQuery reads the stored quantity for an item. Absent items read as
// zero rather than failing, so callers never need a lookup guard.
type QuantityQuery struct {
	invRepo    dominv.Repository
	reqCounter observability.Counter
}

func NewQuantityQuery(invRepo dominv.Repository, tel observability.Observability) *QuantityQuery {
	_, _, metrics := telemetryOr(tel)
	return &QuantityQuery{
		invRepo:    invRepo,
		reqCounter: metrics.Counter(observability.MStoreOps),
	}
}

func (q *QuantityQuery) Execute(ctx context.Context, cmd QuantityCommand) (int, error) {
	item, err := q.invRepo.Get(ctx, cmd.Name)
	if errors.Is(err, dominv.ErrNotFound) {
		count(q.reqCounter, useCaseQuantity, "miss")
		return 0, nil
	}
	if err != nil {
		count(q.reqCounter, useCaseQuantity, "error")
		return 0, fmt.Errorf("stock: quantity: %w", err)
	}
	count(q.reqCounter, useCaseQuantity, "hit")
	return item.Quantity, nil
}

// ReportQuery lists every stocked item ordered by name.
type ReportQuery struct {
	invRepo    dominv.Repository
	reqCounter observability.Counter
}

func NewReportQuery(invRepo dominv.Repository, tel observability.Observability) *ReportQuery {
	_, _, metrics := telemetryOr(tel)
	return &ReportQuery{
		invRepo:    invRepo,
		reqCounter: metrics.Counter(observability.MStoreOps),
	}
}

func (q *ReportQuery) Execute(ctx context.Context, _ ReportCommand) ([]StockLine, error) {
	items, err := q.invRepo.List(ctx)
	if err != nil {
		count(q.reqCounter, useCaseReport, "error")
		return nil, fmt.Errorf("stock: report: %w", err)
	}
	lines := make([]StockLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, StockLine{Name: item.Name, Quantity: item.Quantity})
	}
	count(q.reqCounter, useCaseReport, "success")
	return lines, nil
}

// LowStockQuery lists the names of items whose quantity sits below the
// threshold, ordered by name.
type LowStockQuery struct {
	invRepo    dominv.Repository
	reqCounter observability.Counter
}

func NewLowStockQuery(invRepo dominv.Repository, tel observability.Observability) *LowStockQuery {
	_, _, metrics := telemetryOr(tel)
	return &LowStockQuery{
		invRepo:    invRepo,
		reqCounter: metrics.Counter(observability.MStoreOps),
	}
}

func (q *LowStockQuery) Execute(ctx context.Context, cmd LowStockCommand) ([]string, error) {
	threshold := cmd.Threshold
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}

	items, err := q.invRepo.List(ctx)
	if err != nil {
		count(q.reqCounter, useCaseLowStock, "error")
		return nil, fmt.Errorf("stock: low stock: %w", err)
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		if item.Quantity < threshold {
			names = append(names, item.Name)
		}
	}
	count(q.reqCounter, useCaseLowStock, "success")
	return names, nil
}

func count(counter observability.Counter, useCase, outcome string) {
	if counter == nil {
		return
	}
	counter.Add(1,
		observability.L("use_case", useCase),
		observability.L("outcome", outcome),
	)
}
