package inventory

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("inventory: item not found")
	ErrInvalidName       = errors.New("inventory: item name must not be empty")
	ErrInvalidQuantity   = errors.New("inventory: quantity must be greater than zero")
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
)

type Item struct {
	Name      string
	Quantity  int
	UpdatedAt time.Time
}

func NewItem(name string, quantity int) (*Item, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &Item{
		Name:      name,
		Quantity:  quantity,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

func (i *Item) Add(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	i.Quantity += quantity
	i.touch()
	return nil
}

func (i *Item) Deduct(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > i.Quantity {
		return ErrInsufficientStock
	}
	i.Quantity -= quantity
	i.touch()
	return nil
}

// Depleted reports whether the item has no stock left.
func (i *Item) Depleted() bool {
	return i.Quantity == 0
}

func (i *Item) touch() {
	i.UpdatedAt = time.Now().UTC()
}
