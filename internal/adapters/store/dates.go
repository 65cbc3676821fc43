package store

import "time"

const (
	dateLayout = "2006-01-02"
	// Timestamps are stored without a zone so the calendar date a user saw
	// when typing is the date the row groups under.
	timestampLayout = "2006-01-02T15:04:05"
)

// weekWindow returns the Monday-anchored bounds of the week weeksBack weeks
// before the week containing today. Consecutive values of weeksBack yield
// adjacent, non-overlapping windows.
func weekWindow(today time.Time, weeksBack int) (start, end time.Time) {
	offset := (int(today.Weekday()) + 6) % 7 // Monday = 0
	start = today.AddDate(0, 0, -(offset + 7*weeksBack))
	end = start.AddDate(0, 0, 6)
	return start, end
}
