// Package schedule answers whether a reconciliation pass may run right now.
// The reconciler never sleeps or schedules itself; triggers consult QuietWindow.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/ordersync/pkg/errors"
)

// ClockTime is a wall-clock time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return ClockTime{}, errors.NewValidationError("clock", s, "expected HH:MM")
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// String renders the time as "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// seconds is the offset from midnight; the bound sits on second zero of its minute.
func (c ClockTime) seconds() int {
	return c.Hour*3600 + c.Minute*60
}

// QuietWindow is a daily interval during which passes are skipped.
// Both bounds are inclusive and the window may cross midnight.
type QuietWindow struct {
	Start    ClockTime
	End      ClockTime
	Location *time.Location
}

// DefaultQuietWindow is 00:30 to 05:30 in the local zone.
func DefaultQuietWindow() QuietWindow {
	return QuietWindow{
		Start:    ClockTime{Hour: 0, Minute: 30},
		End:      ClockTime{Hour: 5, Minute: 30},
		Location: time.Local,
	}
}

// NewQuietWindow parses bounds as "HH:MM" and loads the named zone.
// An empty zone name means local time.
func NewQuietWindow(start, end, zone string) (QuietWindow, error) {
	s, err := ParseClock(start)
	if err != nil {
		return QuietWindow{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return QuietWindow{}, err
	}
	loc := time.Local
	if zone != "" {
		if loc, err = time.LoadLocation(zone); err != nil {
			return QuietWindow{}, errors.NewValidationError("timezone", zone, err.Error())
		}
	}
	return QuietWindow{Start: s, End: e, Location: loc}, nil
}

// Contains reports whether now falls inside the window, compared to the second:
// with an end of 05:30, 05:30:00 is quiet and 05:30:01 is not.
func (w QuietWindow) Contains(now time.Time) bool {
	if w.Location != nil {
		now = now.In(w.Location)
	}
	sec := now.Hour()*3600 + now.Minute()*60 + now.Second()
	start, end := w.Start.seconds(), w.End.seconds()

	if start <= end {
		return sec >= start && sec <= end
	}
	return sec >= start || sec <= end
}

// String implements fmt.Stringer.
func (w QuietWindow) String() string {
	zone := "Local"
	if w.Location != nil {
		zone = w.Location.String()
	}
	return fmt.Sprintf("%s-%s %s", w.Start, w.End, zone)
}

// IsQuietWindow reports whether now is inside the default quiet window.
func IsQuietWindow(now time.Time) bool {
	return DefaultQuietWindow().Contains(now)
}
