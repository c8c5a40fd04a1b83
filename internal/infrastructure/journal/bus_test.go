package journal

import (
	"context"
	"testing"
	"time"

	dominv "github.com/Zhima-Mochi/stockroom/internal/domain/inventory"
	domjournal "github.com/Zhima-Mochi/stockroom/internal/domain/journal"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToSubscriber(t *testing.T) {
	bus := NewBus(nil, nil)

	received := make(chan domjournal.Event, 1)
	bus.Subscribe(dominv.StockAddedEvent{}.EventName(), func(_ context.Context, e domjournal.Event) error {
		received <- e
		return nil
	})

	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	evt := dominv.NewStockAddedEvent("apple", 10, 10)
	require.NoError(t, bus.Publish(context.Background(), evt))

	select {
	case got := <-received:
		added, ok := got.(dominv.StockAddedEvent)
		require.True(t, ok)
		require.Equal(t, "apple", added.Name)
		require.Equal(t, 10, added.Total)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestBusDropsEventWithoutSubscriber(t *testing.T) {
	bus := NewBus(nil, nil)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	// Must not block or panic.
	require.NoError(t, bus.Publish(context.Background(), dominv.NewStockDepletedEvent("apple")))
}

func TestBusRecoversFromHandlerPanic(t *testing.T) {
	bus := NewBus(nil, nil)

	name := dominv.StockRemovedEvent{}.EventName()
	done := make(chan struct{}, 1)
	bus.Subscribe(name, func(context.Context, domjournal.Event) error {
		panic("boom")
	})
	bus.Subscribe(name, func(context.Context, domjournal.Event) error {
		done <- struct{}{}
		return nil
	})

	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	require.NoError(t, bus.Publish(context.Background(), dominv.NewStockRemovedEvent("apple", 1, 9)))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("surviving handler did not run")
	}
}

func TestBusPublishAfterStopReturnsErrStopped(t *testing.T) {
	bus := NewBus(nil, nil)
	bus.Start(context.Background())
	bus.Stop(context.Background())

	// Must fail cleanly, never panic on a stopped bus.
	err := bus.Publish(context.Background(), dominv.NewStockAddedEvent("apple", 1, 1))
	require.ErrorIs(t, err, ErrStopped)
}

func TestBusPublishAbortsOnCanceledContext(t *testing.T) {
	bus := NewBus(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Either the enqueue wins the select or ctx.Err comes back; only a hang
	// would be wrong.
	_ = bus.Publish(ctx, dominv.NewStockAddedEvent("apple", 1, 1))
}
