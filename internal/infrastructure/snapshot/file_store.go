package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	domain "github.com/Zhima-Mochi/stockroom/internal/domain/inventory"
)

var (
	ErrNotExist  = errors.New("snapshot: file does not exist")
	ErrMalformed = errors.New("snapshot: malformed snapshot data")
	ErrIO        = errors.New("snapshot: filesystem failure")
)

const formatVersion = 1

// document is the on-disk shape: a UTF-8 JSON object carrying a plain
// name->quantity map so the file stays hand-editable.
type document struct {
	Version int            `json:"version"`
	SavedAt time.Time      `json:"saved_at"`
	Items   map[string]int `json:"items"`
}

// FileStore persists the inventory mapping as a single JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

// Write serializes the items and atomically replaces the snapshot file, so a
// crash mid-write never leaves a truncated snapshot behind. Depleted items
// are skipped; absent names read back as quantity zero anyway.
func (s *FileStore) Write(items []*domain.Item) error {
	doc := document{
		Version: formatVersion,
		SavedAt: time.Now().UTC(),
		Items:   make(map[string]int, len(items)),
	}
	for _, item := range items {
		if item == nil || item.Quantity == 0 {
			continue
		}
		doc.Items[item.Name] = item.Quantity
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrIO, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write: %v", ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync: %v", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", ErrIO, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: replace: %v", ErrIO, err)
	}
	return nil
}

// Read loads the snapshot file and validates every record. A missing file,
// unparseable content, and any other filesystem failure surface as the
// distinct ErrNotExist, ErrMalformed, and ErrIO kinds.
func (s *FileStore) Read() ([]*domain.Item, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, s.path)
		}
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformed, doc.Version)
	}

	items := make([]*domain.Item, 0, len(doc.Items))
	for name, qty := range doc.Items {
		item, err := domain.NewItem(name, qty)
		if err != nil {
			return nil, fmt.Errorf("%w: item %q quantity %d: %v", ErrMalformed, name, qty, err)
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}
