package snapshot

import (
	"os"
	"path/filepath"
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

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "inventory.json"))

	in := []*domain.Item{
		mustItem(t, "apple", 10),
		mustItem(t, "pear", 3),
	}
	require.NoError(t, store.Write(in))

	out, err := store.Read()
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "apple", out[0].Name)
	require.Equal(t, 10, out[0].Quantity)
	require.Equal(t, "pear", out[1].Name)
	require.Equal(t, 3, out[1].Quantity)
}

func TestFileStoreReadMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))

	_, err := store.Read()
	require.ErrorIs(t, err, ErrNotExist)
}

func TestFileStoreReadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Read()
	require.ErrorIs(t, err, ErrMalformed)
}

func TestFileStoreReadInvalidRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":1,"items":{"apple":-3}}`), 0o644))

	_, err := NewFileStore(path).Read()
	require.ErrorIs(t, err, ErrMalformed)
}

func TestFileStoreReadUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":42,"items":{}}`), 0o644))

	_, err := NewFileStore(path).Read()
	require.ErrorIs(t, err, ErrMalformed)
}

func TestFileStoreWriteBlockedParentIsIOError(t *testing.T) {
	// A regular file where the snapshot's parent directory should be makes
	// every write fail with the IO kind, not NotExist or Malformed.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("in the way"), 0o644))

	store := NewFileStore(filepath.Join(blocker, "inventory.json"))
	err := store.Write([]*domain.Item{mustItem(t, "apple", 1)})
	require.ErrorIs(t, err, ErrIO)
}

func TestFileStoreReadDirectoryIsIOError(t *testing.T) {
	// Pointing the store at a directory is a filesystem failure, distinct
	// from a missing file and from malformed content.
	dir := t.TempDir()

	_, err := NewFileStore(dir).Read()
	require.ErrorIs(t, err, ErrIO)
}

func TestFileStoreWriteSkipsDepleted(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "inventory.json"))

	empty := &domain.Item{Name: "gone", Quantity: 0}
	require.NoError(t, store.Write([]*domain.Item{mustItem(t, "apple", 1), empty}))

	out, err := store.Read()
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "apple", out[0].Name)
}

func TestFileStoreWriteReplacesExisting(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "inventory.json"))

	require.NoError(t, store.Write([]*domain.Item{mustItem(t, "apple", 1)}))
	require.NoError(t, store.Write([]*domain.Item{mustItem(t, "pear", 2)}))

	out, err := store.Read()
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "pear", out[0].Name)
	require.Equal(t, 2, out[0].Quantity)
}
