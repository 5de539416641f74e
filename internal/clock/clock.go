// Package clock provides the calendar-date source for vault operations.
// Pure computations (streak, tokens) never read it directly; the
// coordinator resolves "today" once per logical operation and passes it in.
package clock

import "time"

// DateFormat is the calendar-date layout used throughout the vault
// (frontmatter fields, daily-note filenames).
const DateFormat = "2006-01-02"

// Clock supplies the current instant. Tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

// System reads the real time.
type System struct{}

// Now returns the current instant.
func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant.
type Fixed struct {
	T time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time { return f.T }

// Today formats c's current instant as a calendar date in loc.
func Today(c Clock, loc *time.Location) string {
	return c.Now().In(loc).Format(DateFormat)
}

// PrevDay returns the calendar date one day before date, which must be in
// DateFormat. Malformed input returns an empty string.
func PrevDay(date string) string {
	t, err := time.Parse(DateFormat, date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(DateFormat)
}
