package inventory

import (
	"context"
)

// Repository is the persistence port for stock items. Get returns ErrNotFound
// for absent names; List returns items ordered by name; Reset replaces the
// whole mapping in one step.
type Repository interface {
	Get(ctx context.Context, name string) (*Item, error)
	Save(ctx context.Context, item *Item) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]*Item, error)
	Reset(ctx context.Context, items []*Item) error
}
