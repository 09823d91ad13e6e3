package reservations

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/D0mbrowski/Site-Camping/internal/logging"
)

func staticSource(text string) Source {
	return SourceFunc(func(ctx context.Context) ([][]string, error) {
		return ParseExport(text), nil
	})
}

func failingSource() Source {
	return SourceFunc(func(ctx context.Context) ([][]string, error) {
		return nil, errors.New("dial tcp: no route to host")
	})
}

func TestAvailabilityBlocked(t *testing.T) {
	a := NewAvailability(staticSource(export), false, logging.Discard())

	got, err := a.Blocked(context.Background(), "Cabana 2")
	require.NoError(t, err)
	assert.Equal(t, []BlockedInterval{{From: "2024-06-02", To: "2024-06-05"}}, got)
}

func TestAvailabilityRejectsEmptyCabin(t *testing.T) {
	a := NewAvailability(staticSource(export), false, logging.Discard())
	_, err := a.Blocked(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyCabin)
}

func TestAvailabilityFailOpen(t *testing.T) {
	a := NewAvailability(failingSource(), false, logging.Discard())

	got, err := a.Blocked(context.Background(), "Cabana 1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAvailabilityFailClosed(t *testing.T) {
	a := NewAvailability(failingSource(), true, logging.Discard())

	got, err := a.Blocked(context.Background(), "Cabana 1")
	require.Error(t, err)
	assert.Nil(t, got)
}
