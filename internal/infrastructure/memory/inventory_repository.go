package memory

import (
	"context"
	"sort"
	"sync"

	domain "github.com/Zhima-Mochi/stockroom/internal/domain/inventory"
)

// InventoryRepository keeps the whole mapping in process memory behind one
// mutex, so concurrent callers never observe a quantity below zero.
type InventoryRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.Item
}

func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		items: make(map[string]*domain.Item),
	}
}

func (r *InventoryRepository) Get(ctx context.Context, name string) (*domain.Item, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneItem(item), nil
}

func (r *InventoryRepository) Save(ctx context.Context, item *domain.Item) error {
	_ = ctx
	if item == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.Name] = cloneItem(item)
	return nil
}

func (r *InventoryRepository) Delete(ctx context.Context, name string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[name]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, name)
	return nil
}

// List returns clones of every item ordered by name.
func (r *InventoryRepository) List(ctx context.Context) ([]*domain.Item, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Item, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, cloneItem(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Reset replaces the whole mapping with the given items in one step.
func (r *InventoryRepository) Reset(ctx context.Context, items []*domain.Item) error {
	_ = ctx

	next := make(map[string]*domain.Item, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		next[item.Name] = cloneItem(item)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = next
	return nil
}

func cloneItem(item *domain.Item) *domain.Item {
	if item == nil {
		return nil
	}
	clone := *item
	return &clone
}
