package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/schedule"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 5, 1, hour, minute, 0, 0, time.Local)
}

func TestIsQuietWindow(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before", at(0, 29), false},
		{"start inclusive", at(0, 30), true},
		{"inside", at(3, 0), true},
		{"end inclusive", at(5, 30), true},
		{"after", at(5, 31), false},
		{"afternoon", at(14, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schedule.IsQuietWindow(tt.now))
		})
	}
}

func TestWindowEndComparesSeconds(t *testing.T) {
	w, err := schedule.NewQuietWindow("00:30", "05:30", "UTC")
	require.NoError(t, err)

	sec := func(h, m, s int) time.Time { return time.Date(2024, 5, 1, h, m, s, 0, time.UTC) }
	assert.False(t, w.Contains(sec(0, 29, 59)))
	assert.True(t, w.Contains(sec(0, 30, 0)))
	assert.True(t, w.Contains(sec(5, 30, 0)))
	assert.False(t, w.Contains(sec(5, 30, 1)))
	assert.False(t, w.Contains(sec(5, 30, 59)))

	night, err := schedule.NewQuietWindow("22:00", "02:00", "UTC")
	require.NoError(t, err)
	assert.True(t, night.Contains(sec(2, 0, 0)))
	assert.False(t, night.Contains(sec(2, 0, 30)))
}

func TestWindowCrossingMidnight(t *testing.T) {
	w, err := schedule.NewQuietWindow("22:00", "02:00", "UTC")
	require.NoError(t, err)

	utc := func(h, m int) time.Time { return time.Date(2024, 5, 1, h, m, 0, 0, time.UTC) }
	assert.True(t, w.Contains(utc(23, 15)))
	assert.True(t, w.Contains(utc(1, 59)))
	assert.True(t, w.Contains(utc(2, 0)))
	assert.False(t, w.Contains(utc(2, 1)))
	assert.False(t, w.Contains(utc(12, 0)))
	assert.Equal(t, "22:00-02:00 UTC", w.String())
}

func TestWindowConvertsZone(t *testing.T) {
	w, err := schedule.NewQuietWindow("00:30", "05:30", "Asia/Kolkata")
	require.NoError(t, err)

	// 20:00 UTC is 01:30 in Kolkata.
	assert.True(t, w.Contains(time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)))
}

func TestNewQuietWindowErrors(t *testing.T) {
	_, err := schedule.NewQuietWindow("25:00", "05:30", "")
	assert.True(t, errors.IsValidationError(err))

	_, err = schedule.NewQuietWindow("00:30", "05:30", "Mars/Olympus")
	assert.True(t, errors.IsValidationError(err))
}
