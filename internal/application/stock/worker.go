package stock

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/stockroom/internal/application"
	dominv "github.com/Zhima-Mochi/stockroom/internal/domain/inventory"
	domjournal "github.com/Zhima-Mochi/stockroom/internal/domain/journal"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/id"
	"github.com/Zhima-Mochi/stockroom/internal/observability"
	"github.com/Zhima-Mochi/stockroom/internal/observability/logctx"

	"go.opentelemetry.io/otel/trace"
)

const (
	workerService        = "autosave_worker"
	defaultAutosaveDelay = 500 * time.Millisecond
)

// AutosaveWorker listens for stock mutations and writes a snapshot after each
// burst of changes. Kicks are coalesced: many events inside one delay window
// produce a single write.
type AutosaveWorker struct {
	subscriber domjournal.Subscriber
	useCase    application.UseCase[SnapshotCommand, SnapshotResult]
	ids        id.Generator
	delay      time.Duration

	log        observability.Logger
	reqCounter observability.Counter

	dirty chan struct{}
}

func NewAutosaveWorker(
	subscriber domjournal.Subscriber,
	useCase application.UseCase[SnapshotCommand, SnapshotResult],
	ids id.Generator,
	tel observability.Observability,
	delay time.Duration,
) *AutosaveWorker {
	log, _, metrics := telemetryOr(tel)
	if delay <= 0 {
		delay = defaultAutosaveDelay
	}
	return &AutosaveWorker{
		subscriber: subscriber,
		useCase:    useCase,
		ids:        ids,
		delay:      delay,
		log:        log.With(observability.F("service", workerService)),
		reqCounter: metrics.Counter(observability.MJournalEvents),
		dirty:      make(chan struct{}, 1),
	}
}

func (w *AutosaveWorker) Start(ctx context.Context) {
	if w.subscriber == nil || w.useCase == nil {
		return
	}
	w.subscriber.Subscribe(dominv.StockAddedEvent{}.EventName(), w.handleStockChanged)
	w.subscriber.Subscribe(dominv.StockRemovedEvent{}.EventName(), w.handleStockChanged)
	w.subscriber.Subscribe(dominv.StockDepletedEvent{}.EventName(), w.handleStockChanged)
	go w.loop(ctx)
}

func (w *AutosaveWorker) handleStockChanged(ctx context.Context, e domjournal.Event) error {
	logger := logctx.FromOr(ctx, w.log).With(observability.F("event", e.EventName()))
	select {
	case w.dirty <- struct{}{}:
		w.count(e.EventName(), "scheduled")
		logger.Debug("autosave_scheduled")
	default:
		// A save is already pending; this event rides along with it.
		w.count(e.EventName(), "coalesced")
	}
	return nil
}

func (w *AutosaveWorker) count(event, outcome string) {
	if w.reqCounter == nil {
		return
	}
	w.reqCounter.Add(1,
		observability.L("event", event),
		observability.L("outcome", outcome),
	)
}

func (w *AutosaveWorker) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.dirty:
			timer := time.NewTimer(w.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			w.save(ctx)
		}
	}
}

func (w *AutosaveWorker) save(ctx context.Context) {
	saveID := ""
	if w.ids != nil {
		saveID = w.ids.NewID()
	}
	logger := w.log.With(observability.F("save_id", saveID))
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		logger = logger.With(
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	ctx = logctx.With(ctx, logger)

	res, err := w.useCase.Execute(ctx, SnapshotCommand{})
	if err != nil {
		logger.Warn("autosave_failed",
			observability.F("error", err.Error()),
		)
		return
	}
	logger.Info("autosave_done",
		observability.F("path", res.Path),
		observability.F("items", res.Items),
	)
}
