package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	item, err := NewItem("apple", 10)
	require.NoError(t, err)
	require.Equal(t, "apple", item.Name)
	require.Equal(t, 10, item.Quantity)
	require.False(t, item.UpdatedAt.IsZero())

	_, err = NewItem("", 10)
	require.ErrorIs(t, err, ErrInvalidName)

	_, err = NewItem("apple", 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewItem("apple", -2)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestItemAdd(t *testing.T) {
	item, err := NewItem("apple", 10)
	require.NoError(t, err)

	require.NoError(t, item.Add(5))
	require.Equal(t, 15, item.Quantity)

	require.ErrorIs(t, item.Add(0), ErrInvalidQuantity)
	require.ErrorIs(t, item.Add(-1), ErrInvalidQuantity)
	require.Equal(t, 15, item.Quantity)
}

func TestItemDeduct(t *testing.T) {
	item, err := NewItem("apple", 10)
	require.NoError(t, err)

	require.NoError(t, item.Deduct(3))
	require.Equal(t, 7, item.Quantity)

	// Underflow fails and leaves the quantity unchanged.
	require.ErrorIs(t, item.Deduct(8), ErrInsufficientStock)
	require.Equal(t, 7, item.Quantity)

	require.ErrorIs(t, item.Deduct(0), ErrInvalidQuantity)

	require.NoError(t, item.Deduct(7))
	require.Equal(t, 0, item.Quantity)
	require.True(t, item.Depleted())
}
