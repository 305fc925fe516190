// Package period computes the bi-weekly launch windows.
//
// Windows open at 08:00 UTC on Mondays and Thursdays. A window is half-open:
// it contains its Start and excludes its End, which is the next boundary.
package period

import "time"

const boundaryHour = 8

// KeyLayout formats a window start into its storage and cache key.
const KeyLayout = "2006-01-02T15"

type Window struct {
	Start time.Time
	End   time.Time
}

// Current returns the window containing now. Only the instant matters, never its zone.
func Current(now time.Time) Window {
	now = now.UTC()
	start := lastBoundary(now)
	return windowFrom(start)
}

func lastBoundary(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), boundaryHour, 0, 0, 0, time.UTC)
	if now.Before(day) {
		day = day.AddDate(0, 0, -1)
	}
	for !isBoundaryDay(day.Weekday()) {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

func isBoundaryDay(d time.Weekday) bool {
	return d == time.Monday || d == time.Thursday
}

func windowFrom(start time.Time) Window {
	days := 4
	if start.Weekday() == time.Monday {
		days = 3
	}
	return Window{Start: start, End: start.AddDate(0, 0, days)}
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Remaining is the countdown until the window closes, clamped at zero.
func (w Window) Remaining(now time.Time) time.Duration {
	d := w.End.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

func (w Window) Next() Window {
	return windowFrom(w.End)
}

func (w Window) Key() string {
	return w.Start.Format(KeyLayout)
}

// Length is the window duration: 72h for Monday windows, 96h for Thursday windows.
func (w Window) Length() time.Duration {
	return w.End.Sub(w.Start)
}
