package memory

import (
	"context"
	"testing"

	domain "github.com/Zhima-Mochi/stockroom/internal/domain/inventory"
	"github.com/stretchr/testify/require"
)

func mustItem(t *testing.T, name string, qty int) *domain.Item {
	t.Helper()
	item, err := domain.NewItem(name, qty)
	require.NoError(t, err)
	return item
}

func TestInventoryRepositoryGetMissing(t *testing.T) {
	repo := NewInventoryRepository()

	_, err := repo.Get(context.Background(), "apple")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInventoryRepositorySaveGet(t *testing.T) {
	ctx := context.Background()
	repo := NewInventoryRepository()

	require.NoError(t, repo.Save(ctx, mustItem(t, "apple", 10)))

	got, err := repo.Get(ctx, "apple")
	require.NoError(t, err)
	require.Equal(t, 10, got.Quantity)

	// Mutating the returned clone must not leak into the store.
	got.Quantity = 99
	again, err := repo.Get(ctx, "apple")
	require.NoError(t, err)
	require.Equal(t, 10, again.Quantity)
}

func TestInventoryRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewInventoryRepository()

	require.ErrorIs(t, repo.Delete(ctx, "apple"), domain.ErrNotFound)

	require.NoError(t, repo.Save(ctx, mustItem(t, "apple", 1)))
	require.NoError(t, repo.Delete(ctx, "apple"))

	_, err := repo.Get(ctx, "apple")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInventoryRepositoryListSorted(t *testing.T) {
	ctx := context.Background()
	repo := NewInventoryRepository()

	require.NoError(t, repo.Save(ctx, mustItem(t, "pear", 3)))
	require.NoError(t, repo.Save(ctx, mustItem(t, "apple", 10)))
	require.NoError(t, repo.Save(ctx, mustItem(t, "mango", 7)))

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "apple", items[0].Name)
	require.Equal(t, "mango", items[1].Name)
	require.Equal(t, "pear", items[2].Name)
}

func TestInventoryRepositoryReset(t *testing.T) {
	ctx := context.Background()
	repo := NewInventoryRepository()

	require.NoError(t, repo.Save(ctx, mustItem(t, "apple", 10)))
	require.NoError(t, repo.Save(ctx, mustItem(t, "pear", 3)))

	require.NoError(t, repo.Reset(ctx, []*domain.Item{mustItem(t, "mango", 7)}))

	_, err := repo.Get(ctx, "apple")
	require.ErrorIs(t, err, domain.ErrNotFound)

	got, err := repo.Get(ctx, "mango")
	require.NoError(t, err)
	require.Equal(t, 7, got.Quantity)
}
