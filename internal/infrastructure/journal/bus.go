package journal

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	domjournal "github.com/Zhima-Mochi/stockroom/internal/domain/journal"
	"github.com/Zhima-Mochi/stockroom/internal/observability"
	"github.com/Zhima-Mochi/stockroom/internal/observability/logctx"
)

// ErrStopped is returned by Publish once the bus has been stopped.
var ErrStopped = errors.New("journal: bus stopped")

// Bus is an in-memory event bus carrying stock events to subscribers such as
// the autosave worker. It is not durable; events in flight are lost at exit.
type Bus struct {
	mu          sync.RWMutex
	subs        map[string][]domjournal.Handler
	queue       chan domjournal.Event
	stopped     chan struct{}
	startOnce   sync.Once
	stopOnce    sync.Once
	cancel      context.CancelFunc
	concurrency int
	log         observability.Logger
	events      observability.Counter
}

const (
	componentJournal = "journal_bus"
	handlerTimeout   = 30 * time.Second
)

// NewBus creates a bus with a buffered queue and a per-event fanout cap.
func NewBus(logger observability.Logger, tel observability.Observability) *Bus {
	if logger == nil {
		logger = observability.NopLogger()
	}
	metrics := observability.NopMetrics()
	if tel != nil {
		metrics = tel.Metrics()
	}
	return &Bus{
		subs:        make(map[string][]domjournal.Handler),
		queue:       make(chan domjournal.Event, 1024),
		stopped:     make(chan struct{}),
		concurrency: 8,
		log:         logger.With(observability.F("component", componentJournal)),
		events:      metrics.Counter(observability.MJournalEvents),
	}
}

func (b *Bus) Subscribe(eventName string, h domjournal.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], h)
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		bg, cancel := context.WithCancel(ctx)
		b.cancel = cancel
		go b.dispatchLoop(bg)
		logger := logctx.FromOr(ctx, b.log)
		logger.Info("journal_bus_started")
	})
}

// Stop cancels dispatch and rejects further publishes. The queue channel is
// never closed, so a racing Publish can not panic; undelivered events are
// simply dropped.
func (b *Bus) Stop(ctx context.Context) {
	b.stopOnce.Do(func() {
		if b.cancel != nil {
			b.cancel()
		}

		close(b.stopped)
		logger := logctx.FromOr(ctx, b.log)
		logger.Info("journal_bus_stopped")
	})
}

func (b *Bus) Publish(ctx context.Context, e domjournal.Event) error {
	if e == nil {
		return nil
	}
	select {
	case <-b.stopped:
		return ErrStopped
	default:
	}
	select {
	case b.queue <- e:
		logger := logctx.FromOr(ctx, b.log).With(observability.F("event", e.EventName()))
		logger.Debug("event_enqueued")
		return nil
	case <-b.stopped:
		return ErrStopped
	case <-ctx.Done():
		logger := logctx.FromOr(ctx, b.log).With(observability.F("event", e.EventName()))
		logger.Warn("event_enqueue_aborted",
			observability.F("error", ctx.Err()),
		)
		return ctx.Err()
	}
}

func (b *Bus) dispatchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-b.queue:
			b.fanout(ctx, e)
		}
	}
}

func (b *Bus) fanout(ctx context.Context, e domjournal.Event) {
	name := e.EventName()

	b.mu.RLock()
	handlers := append([]domjournal.Handler(nil), b.subs[name]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.count(name, "dropped")
		logger := logctx.FromOr(ctx, b.log).With(observability.F("event", name))
		logger.Debug("event_dropped_no_subscriber")
		return
	}

	ctx = context.WithoutCancel(ctx)
	baseLogger := b.log
	ctx = logctx.With(ctx, baseLogger)

	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup

	for _, h := range handlers {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					b.count(name, "panic")
					baseLogger.Error("event_handler_panic",
						observability.F("event", name),
						observability.F("panic", r),
						observability.F("stack", string(debug.Stack())),
					)
				}
				<-sem
				wg.Done()
			}()

			hctx, cancel := context.WithTimeout(ctx, handlerTimeout)
			hctx = logctx.With(hctx, baseLogger.With(observability.F("event", name)))
			err := h(hctx, e)
			cancel()
			if err != nil {
				b.count(name, "error")
				baseLogger.Warn("event_handler_error",
					observability.F("event", name),
					observability.F("error", err),
				)
				return
			}
			b.count(name, "success")
		}()
	}

	wg.Wait()

	baseLogger.Debug("event_fanned_out",
		observability.F("event", name),
		observability.F("handlers", len(handlers)),
	)
}

func (b *Bus) count(event, outcome string) {
	if b.events == nil {
		return
	}
	b.events.Add(1,
		observability.L("event", event),
		observability.L("outcome", outcome),
	)
}
