package overdue

import "time"

// DateLayout is the calendar date format the Jira REST API uses for duedate
const DateLayout = "2006-01-02"

// IsWeekend reports whether the date falls on Saturday or Sunday
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// NextWorkingDay returns the first day on or after t that is not a weekend
// day. Weekdays map to themselves; Saturday and Sunday advance to Monday.
func NextWorkingDay(t time.Time) time.Time {
	for IsWeekend(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// RescheduleTarget computes the shared due date a run moves overdue issues
// to: the next working day strictly after today.
func RescheduleTarget(today time.Time) time.Time {
	return NextWorkingDay(today.AddDate(0, 0, 1))
}
