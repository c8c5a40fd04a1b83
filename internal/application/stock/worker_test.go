package stock

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	dominv "github.com/Zhima-Mochi/stockroom/internal/domain/inventory"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/id"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/journal"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/snapshot"
	"github.com/stretchr/testify/require"
)

func TestAutosaveWorkerWritesSnapshotAfterChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := memory.NewInventoryRepository()
	ids := id.NewUUIDGenerator()
	path := filepath.Join(t.TempDir(), "inventory.json")
	files := snapshot.NewFileStore(path)

	bus := journal.NewBus(nil, nil)
	bus.Start(ctx)
	defer bus.Stop(context.Background())

	worker := NewAutosaveWorker(bus, NewSnapshotUseCase(repo, files, nil), ids, nil, 5*time.Millisecond)
	worker.Start(ctx)

	add := NewAddStockUseCase(repo, bus, ids, nil)
	_, err := add.Execute(ctx, AddStockCommand{Name: "apple", Quantity: 10})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, statErr := os.Stat(path)
		return statErr == nil
	}, 2*time.Second, 10*time.Millisecond)

	items, err := files.Read()
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "apple", items[0].Name)
	require.Equal(t, 10, items[0].Quantity)
}

func TestAutosaveWorkerCoalescesBursts(t *testing.T) {
	worker := NewAutosaveWorker(journal.NewBus(nil, nil), NewSnapshotUseCase(memory.NewInventoryRepository(), snapshot.NewFileStore(filepath.Join(t.TempDir(), "s.json")), nil), nil, nil, time.Minute)

	// Without a running loop draining the channel, repeated kicks collapse
	// into the single pending save slot.
	evt := dominv.NewStockAddedEvent("apple", 1, 1)
	for i := 0; i < 10; i++ {
		require.NoError(t, worker.handleStockChanged(context.Background(), evt))
	}
	require.Len(t, worker.dirty, 1)
}
