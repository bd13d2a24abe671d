package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shiftpay/internal/domain/models"
)

func TestDiffMinutes(t *testing.T) {
	cases := []struct {
		name     string
		actual   string
		baseline string
		grace    int
		want     int
	}{
		{"late check-in", "09:20", "09:00", 5, 15},
		{"inside grace", "09:05", "09:00", 5, 0},
		{"one past grace", "09:06", "09:00", 5, 1},
		{"early", "08:40", "09:00", 5, 0},
		{"overtime", "18:45", "18:00", 30, 15},
		{"overtime inside grace", "18:30", "18:00", 30, 0},
		{"single digit hour", "9:20", "09:00", 5, 15},
		{"seconds dropped", "09:20:59", "09:00", 5, 15},
		{"no grace", "10:00", "09:00", 0, 60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DiffMinutes(tc.actual, tc.baseline, tc.grace)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDiffMinutes_InvalidFormat(t *testing.T) {
	for _, bad := range []string{"", "9am", "25:00", "09:75", "0900"} {
		_, err := DiffMinutes(bad, "09:00", 5)
		assert.ErrorIs(t, err, models.ErrInvalidTimeFormat, "actual %q", bad)

		_, err = DiffMinutes("09:00", bad, 5)
		assert.ErrorIs(t, err, models.ErrInvalidTimeFormat, "baseline %q", bad)
	}
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock(" 18:05 ")
	require.NoError(t, err)
	assert.Equal(t, Clock(18*60+5), c)
	assert.Equal(t, "18:05", c.String())
}
