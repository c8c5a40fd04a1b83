package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEntryString(t *testing.T) {
	at := time.Date(2026, time.August, 29, 12, 30, 0, 0, time.UTC)
	entry := Entry{
		ID:       "e-1",
		At:       at,
		Action:   ActionAdd,
		Item:     "apple",
		Quantity: 5,
	}

	require.Equal(t, "2026-08-29T12:30:00Z: added 5 of apple", entry.String())
}
