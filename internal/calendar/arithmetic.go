package calendar

import "time"

// WeekOfMonth identifies which occurrence of a weekday within a month a
// monthly-by-weekday rule targets.
type WeekOfMonth string

const (
	WeekFirst  WeekOfMonth = "1st"
	WeekSecond WeekOfMonth = "2nd"
	WeekThird  WeekOfMonth = "3rd"
	WeekFourth WeekOfMonth = "4th"
	WeekLast   WeekOfMonth = "last"
)

// ordinal returns the 1-based week number for the fixed weeks. The last week
// has no fixed ordinal and reports ok=false.
func (w WeekOfMonth) ordinal() (int, bool) {
	switch w {
	case WeekFirst:
		return 1, true
	case WeekSecond:
		return 2, true
	case WeekThird:
		return 3, true
	case WeekFourth:
		return 4, true
	default:
		return 0, false
	}
}

// Valid reports whether the value is one of the recognized week selectors.
func (w WeekOfMonth) Valid() bool {
	if _, ok := w.ordinal(); ok {
		return true
	}
	return w == WeekLast
}

// NextWeekdayOccurrence scans the seven days following reference for the
// first date whose weekday belongs to set, then advances the match by
// (intervalWeeks-1) whole weeks. ok is false when the set matches none of
// the scanned days, which only happens for an empty or malformed set since
// every weekday recurs within seven days.
func NextWeekdayOccurrence(reference time.Time, set WeekdaySet, intervalWeeks int) (time.Time, bool) {
	if set.Empty() {
		return time.Time{}, false
	}
	for offset := 1; offset <= 7; offset++ {
		candidate := reference.AddDate(0, 0, offset)
		if set.Contains(candidate.Weekday()) {
			if intervalWeeks > 1 {
				candidate = candidate.AddDate(0, 0, (intervalWeeks-1)*7)
			}
			return candidate, true
		}
	}
	return time.Time{}, false
}

// NthWeekdayOfMonth computes the date of the requested occurrence of weekday
// within the given month. Fixed weeks offset the first occurrence by whole
// weeks; WeekLast walks forward in week steps and keeps the final date that
// still falls inside the month. Computation is done on the UTC calendar so
// month boundaries do not shift with local timezones.
func NthWeekdayOfMonth(year int, month time.Month, week WeekOfMonth, weekday time.Weekday) time.Time {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	dayOfMonth := 1 + (int(weekday)-int(firstOfMonth.Weekday())+7)%7

	if n, ok := week.ordinal(); ok {
		dayOfMonth += (n - 1) * 7
	} else if week == WeekLast {
		lastDay := daysInMonth(year, month)
		for dayOfMonth+7 <= lastDay {
			dayOfMonth += 7
		}
	}

	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

// daysInMonth returns the number of calendar days in the given month.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
