package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	dominv "github.com/Zhima-Mochi/stockroom/internal/domain/inventory"
	domjournal "github.com/Zhima-Mochi/stockroom/internal/domain/journal"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/id"
	"github.com/Zhima-Mochi/stockroom/internal/observability"
	"github.com/Zhima-Mochi/stockroom/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	stockService   = "stock-service"
	spanPrefix     = "UC."
	useCaseAdd     = "stock.add"
	useCaseRemove  = "stock.remove"
	publishTimeout = 300 * time.Millisecond
)

// AddStockUseCase increments an item's quantity, creating the entry when the
// name is unknown.
type AddStockUseCase struct {
	invRepo      dominv.Repository
	publisher    domjournal.Publisher
	ids          id.Generator
	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewAddStockUseCase(invRepo dominv.Repository, publisher domjournal.Publisher, ids id.Generator, tel observability.Observability) *AddStockUseCase {
	log, tracer, metrics := telemetryOr(tel)
	return &AddStockUseCase{
		invRepo:      invRepo,
		publisher:    publisher,
		ids:          ids,
		log:          log,
		tracer:       tracer,
		reqCounter:   metrics.Counter(observability.MStoreOps),
		durHistogram: metrics.Histogram(observability.MStoreOpDuration),
	}
}

func (uc *AddStockUseCase) Execute(ctx context.Context, cmd AddStockCommand) (_ *AddStockResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCaseAdd),
		observability.F("item", cmd.Name),
		observability.F("quantity", cmd.Quantity),
	)

	ctx, span := uc.tracer.Start(ctx, spanPrefix+"AddStock",
		attribute.String("use_case", useCaseAdd),
		attribute.String("item.name", cmd.Name),
		attribute.Int("item.quantity", cmd.Quantity),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		finishSpan(span, err, statusText)
		uc.observe(useCaseAdd, outcome, time.Since(start).Seconds())
		logDone(ctx, logger, outcome, statusText, time.Since(start).Seconds(), err)
	}()

	if cmd.Name == "" {
		outcome, statusText = "error", "INVALID_ARGUMENT"
		return nil, fmt.Errorf("stock: add: %w", dominv.ErrInvalidName)
	}
	if cmd.Quantity <= 0 {
		outcome, statusText = "error", "INVALID_ARGUMENT"
		return nil, fmt.Errorf("stock: add: %w", dominv.ErrInvalidQuantity)
	}

	item, err := uc.invRepo.Get(ctx, cmd.Name)
	switch {
	case errors.Is(err, dominv.ErrNotFound):
		item, err = dominv.NewItem(cmd.Name, cmd.Quantity)
		if err != nil {
			outcome, statusText = "error", "INVALID_ARGUMENT"
			return nil, fmt.Errorf("stock: add: %w", err)
		}
	case err != nil:
		outcome, statusText = "error", "GET_FAILED"
		return nil, fmt.Errorf("stock: add: get: %w", err)
	default:
		if err = item.Add(cmd.Quantity); err != nil {
			outcome, statusText = "error", "INVALID_ARGUMENT"
			return nil, fmt.Errorf("stock: add: %w", err)
		}
	}

	if err = uc.invRepo.Save(ctx, item); err != nil {
		outcome, statusText = "error", "SAVE_FAILED"
		return nil, fmt.Errorf("stock: add: save: %w", err)
	}

	span.AddEvent("stock.added",
		trace.WithAttributes(
			attribute.String("item.name", cmd.Name),
			attribute.Int("item.total", item.Quantity),
		),
	)

	if pubErr := publishEvent(ctx, uc.publisher, dominv.NewStockAddedEvent(cmd.Name, cmd.Quantity, item.Quantity)); pubErr != nil {
		logger.Warn("stock_event_publish_failed",
			observability.F("event", "stock.added"),
			observability.F("error", pubErr.Error()),
		)
	}

	// A fresh log slice per execution: independent call sequences must never
	// observe each other's entries.
	entries := []domjournal.Entry{
		uc.newEntry(domjournal.ActionAdd, cmd.Name, cmd.Quantity),
	}

	return &AddStockResult{Quantity: item.Quantity, Log: entries}, nil
}

func (uc *AddStockUseCase) newEntry(action, name string, qty int) domjournal.Entry {
	entryID := ""
	if uc.ids != nil {
		entryID = uc.ids.NewID()
	}
	return domjournal.Entry{
		ID:       entryID,
		At:       time.Now().UTC(),
		Action:   action,
		Item:     name,
		Quantity: qty,
	}
}

func (uc *AddStockUseCase) observe(useCase, outcome string, latencySeconds float64) {
	observe(uc.reqCounter, uc.durHistogram, useCase, outcome, latencySeconds)
}

// RemoveStockUseCase deducts quantity from an item. A deduction that would go
// below zero fails and leaves the mapping unchanged; draining an item to zero
// drops its entry.
type RemoveStockUseCase struct {
	invRepo      dominv.Repository
	publisher    domjournal.Publisher
	ids          id.Generator
	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewRemoveStockUseCase(invRepo dominv.Repository, publisher domjournal.Publisher, ids id.Generator, tel observability.Observability) *RemoveStockUseCase {
	log, tracer, metrics := telemetryOr(tel)
	return &RemoveStockUseCase{
		invRepo:      invRepo,
		publisher:    publisher,
		ids:          ids,
		log:          log,
		tracer:       tracer,
		reqCounter:   metrics.Counter(observability.MStoreOps),
		durHistogram: metrics.Histogram(observability.MStoreOpDuration),
	}
}

func (uc *RemoveStockUseCase) Execute(ctx context.Context, cmd RemoveStockCommand) (_ *RemoveStockResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCaseRemove),
		observability.F("item", cmd.Name),
		observability.F("quantity", cmd.Quantity),
	)

	ctx, span := uc.tracer.Start(ctx, spanPrefix+"RemoveStock",
		attribute.String("use_case", useCaseRemove),
		attribute.String("item.name", cmd.Name),
		attribute.Int("item.quantity", cmd.Quantity),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	var failureReason string

	defer func() {
		finishSpan(span, err, statusText)
		observe(uc.reqCounter, uc.durHistogram, useCaseRemove, outcome, time.Since(start).Seconds())
		fields := doneFields(ctx, outcome, statusText, time.Since(start).Seconds(), err)
		if failureReason != "" {
			fields = append(fields, observability.F("failure_reason", failureReason))
		}
		logger.Info("use_case_done", fields...)
	}()

	if cmd.Name == "" {
		outcome, statusText = "error", "INVALID_ARGUMENT"
		failureReason = dominv.FailureReasonInvalidArgument
		return nil, fmt.Errorf("stock: remove: %w", dominv.ErrInvalidName)
	}

	item, err := uc.invRepo.Get(ctx, cmd.Name)
	if err != nil {
		outcome, statusText = "error", "NOT_FOUND"
		failureReason = failureReasonFromError(err)
		return nil, fmt.Errorf("stock: remove: %w", err)
	}

	if err = item.Deduct(cmd.Quantity); err != nil {
		outcome, statusText = "error", "DEDUCT_FAILED"
		failureReason = failureReasonFromError(err)
		return nil, fmt.Errorf("stock: remove: %w", err)
	}

	depleted := item.Depleted()
	if depleted {
		if err = uc.invRepo.Delete(ctx, cmd.Name); err != nil {
			outcome, statusText = "error", "DELETE_FAILED"
			failureReason = dominv.FailureReasonPersistenceError
			return nil, fmt.Errorf("stock: remove: delete: %w", err)
		}
	} else {
		if err = uc.invRepo.Save(ctx, item); err != nil {
			outcome, statusText = "error", "SAVE_FAILED"
			failureReason = dominv.FailureReasonPersistenceError
			return nil, fmt.Errorf("stock: remove: save: %w", err)
		}
	}

	if pubErr := publishEvent(ctx, uc.publisher, dominv.NewStockRemovedEvent(cmd.Name, cmd.Quantity, item.Quantity)); pubErr != nil {
		logger.Warn("stock_event_publish_failed",
			observability.F("event", "stock.removed"),
			observability.F("error", pubErr.Error()),
		)
	}
	if depleted {
		span.AddEvent("stock.depleted", trace.WithAttributes(attribute.String("item.name", cmd.Name)))
		if pubErr := publishEvent(ctx, uc.publisher, dominv.NewStockDepletedEvent(cmd.Name)); pubErr != nil {
			logger.Warn("stock_event_publish_failed",
				observability.F("event", "stock.depleted"),
				observability.F("error", pubErr.Error()),
			)
		}
	}

	entryID := ""
	if uc.ids != nil {
		entryID = uc.ids.NewID()
	}
	entries := []domjournal.Entry{{
		ID:       entryID,
		At:       time.Now().UTC(),
		Action:   domjournal.ActionRemove,
		Item:     cmd.Name,
		Quantity: cmd.Quantity,
	}}

	return &RemoveStockResult{Remaining: item.Quantity, Depleted: depleted, Log: entries}, nil
}

// telemetryOr unpacks an Observability provider, degrading to nops so use
// cases stay constructible with a nil provider in tests.
func telemetryOr(tel observability.Observability) (observability.Logger, observability.Tracer, observability.Metrics) {
	log := observability.NopLogger()
	tracer := observability.NopTracer()
	metrics := observability.NopMetrics()
	if tel != nil {
		log = tel.Logger().With(observability.F("service", stockService))
		tracer = tel.Tracer()
		metrics = tel.Metrics()
	}
	return log, tracer, metrics
}

func publishEvent(ctx context.Context, p domjournal.Publisher, e domjournal.Event) error {
	if p == nil || e == nil {
		return nil
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return p.Publish(pubCtx, e)
}

func observe(counter observability.Counter, hist observability.Histogram, useCase, outcome string, latencySeconds float64) {
	if counter != nil {
		counter.Add(1,
			observability.L("use_case", useCase),
			observability.L("outcome", outcome),
		)
	}
	if hist != nil {
		hist.Observe(latencySeconds,
			observability.L("use_case", useCase),
		)
	}
}

func finishSpan(span trace.Span, err error, statusText string) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, statusText)
	} else {
		span.SetStatus(codes.Ok, statusText)
	}
	span.End()
}

func doneFields(ctx context.Context, outcome, statusText string, latencySeconds float64, err error) []observability.Field {
	fields := []observability.Field{
		observability.F("outcome", outcome),
		observability.F("status", statusText),
		observability.F("latency_seconds", latencySeconds),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}
	return fields
}

func logDone(ctx context.Context, logger observability.Logger, outcome, statusText string, latencySeconds float64, err error) {
	logger.Info("use_case_done", doneFields(ctx, outcome, statusText, latencySeconds, err)...)
}

func failureReasonFromError(err error) string {
	switch {
	case errors.Is(err, dominv.ErrNotFound):
		return dominv.FailureReasonNotFound
	case errors.Is(err, dominv.ErrInvalidName), errors.Is(err, dominv.ErrInvalidQuantity):
		return dominv.FailureReasonInvalidArgument
	case errors.Is(err, dominv.ErrInsufficientStock):
		return dominv.FailureReasonInsufficientStock
	default:
		return err.Error()
	}
}
