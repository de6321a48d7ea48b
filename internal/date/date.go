// Package date provides the DD/MM/YYYY creation stamp used on tasks.
package date

import (
	"time"

	"github.com/tcsenpai/TG-Manager/internal/clierr"
)

// Layout is the fixed on-disk stamp format.
const Layout = "02/01/2006"

// Date represents a calendar date without time or timezone.
type Date struct {
	time.Time
}

// New creates a Date from year, month, day.
func New(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns today's date in local time.
func Today() Date {
	return From(time.Now())
}

// From truncates t to its local calendar date.
func From(t time.Time) Date {
	return New(t.Year(), t.Month(), t.Day())
}

// Now returns the current date formatted as DD/MM/YYYY.
func Now() string {
	return Today().String()
}

// Parse parses a DD/MM/YYYY string. It never coerces: a string that does not
// reproduce itself when reformatted is rejected.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil || t.Format(Layout) != s {
		return Date{}, clierr.Newf(clierr.InvalidDate, "invalid date %q: expected DD/MM/YYYY", s).
			WithDetails(map[string]any{"input": s})
	}
	return Date{t}, nil
}

// Validate reports whether s is a well-formed DD/MM/YYYY date.
func Validate(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// String returns the date as DD/MM/YYYY.
func (d Date) String() string {
	return d.Format(Layout)
}

// Compare orders two stamps by calendar date, returning -1, 0 or 1.
// Malformed stamps sort before well-formed ones and compare equal to each other.
func Compare(a, b string) int {
	da, errA := Parse(a)
	db, errB := Parse(b)
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return da.Compare(db.Time)
}
