package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/mamadbah2/shiftpay/internal/domain/models"
)

// Clock is a wall-clock time of day in minutes after civil midnight.
type Clock int

// ParseClock reads "HH:mm" (seconds, if given as "HH:mm:ss", are dropped).
func ParseClock(value string) (Clock, error) {
	s := strings.TrimSpace(value)
	layout := clockLayout
	if strings.Count(s, ":") == 2 {
		layout = clockLayout + ":05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidTimeFormat, value)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

// String renders the clock as HH:mm.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// DiffMinutes returns how many minutes actual runs past baseline plus grace, or zero
// when it does not. Both values are HH:mm on the same civil day.
func DiffMinutes(actual, baseline string, grace int) (int, error) {
	a, err := ParseClock(actual)
	if err != nil {
		return 0, err
	}
	b, err := ParseClock(baseline)
	if err != nil {
		return 0, err
	}
	diff := int(a) - (int(b) + grace)
	if diff <= 0 {
		return 0, nil
	}
	return diff, nil
}
