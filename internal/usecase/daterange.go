package usecase

import "time"

// Accepted timestamp shapes: full ISO 8601 from imported data, bare dates
// from the UI pickers.
var whenLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseWhen(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range whenLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// dayOf truncates to midnight of the calendar day, discarding time-of-day
// and zone so a date-only picker compares cleanly with timestamped records.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// InRange reports whether timestamp falls inside the inclusive, day-granular
// [from, to] window. An empty or unparseable bound is unbounded on that
// side. An unparseable timestamp passes: the range filter must not silently
// drop records with broken dates.
func InRange(timestamp, from, to string) bool {
	if from == "" && to == "" {
		return true
	}

	ts, ok := parseWhen(timestamp)
	if !ok {
		return true
	}
	day := dayOf(ts)

	if f, ok := parseWhen(from); ok && day.Before(dayOf(f)) {
		return false
	}
	if t, ok := parseWhen(to); ok && day.After(dayOf(t)) {
		return false
	}
	return true
}
