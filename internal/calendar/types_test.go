package calendar

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotBounds(t *testing.T) {
	start, end, err := SlotBounds(june11, 13, 17, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 11, 13, 0, 0, 0, time.UTC), start)
	assert.Equal(t, 4*time.Hour, end.Sub(start))

	_, end, err = SlotBounds(june11, 0, 24, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), end)

	invalid := []struct {
		date       civil.Date
		start, end int
	}{
		{june11, 5, 3},
		{june11, 3, 3},
		{june11, -1, 3},
		{june11, 20, 25},
		{civil.Date{Year: 2024, Month: 2, Day: 30}, 9, 10},
	}
	for _, tt := range invalid {
		_, _, err := SlotBounds(tt.date, tt.start, tt.end, time.UTC)
		assert.ErrorIs(t, err, ErrInvalidRange, "%v %d-%d", tt.date, tt.start, tt.end)
	}
}

func TestEventSummary_Overlaps(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2024, 6, 11, h, 0, 0, 0, time.UTC) }
	e := EventSummary{Start: at(10), End: at(12)}

	assert.True(t, e.Overlaps(at(9), at(11)))
	assert.True(t, e.Overlaps(at(11), at(13)))
	assert.True(t, e.Overlaps(at(9), at(13)))
	assert.False(t, e.Overlaps(at(12), at(13)))
	assert.False(t, e.Overlaps(at(8), at(10)))
	assert.False(t, EventSummary{}.Overlaps(at(8), at(10)))
}
