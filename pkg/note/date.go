package note

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var datePrefixPattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)

// CombineDateTime pins a wall-clock string to a calendar day, in the day's
// zone. Out-of-range values like "25:99" normalize through time.Date rather
// than erroring; the grammar guarantees the digits, not their range.
func CombineDateTime(day time.Time, clock string) time.Time {
	hh, mm, _ := strings.Cut(clock, ":")
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location())
}

// FormatClock renders an instant as the "HH:MM" wall-clock text used by
// timed lines.
func FormatClock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}

// DateFromName extracts a leading YYYY-MM-DD date from a note name.
func DateFromName(name string, loc *time.Location) (time.Time, bool) {
	m := datePrefixPattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, loc), true
}

// DayBounds returns the first and last instant of the day holding t.
// The end is derived from the next midnight in t's zone, so days shortened
// or stretched by a DST transition still close at 23:59:59.999 wall time.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location()).Add(-time.Millisecond)
	return start, end
}
