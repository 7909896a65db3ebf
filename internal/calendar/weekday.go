package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownWeekday indicates a weekday name that is not part of the calendar.
var ErrUnknownWeekday = errors.New("calendar: unknown weekday")

// weekdayNames maps full weekday names, keyed lowercase, to Go weekday
// ordinals (Sunday = 0).
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// weekdayAbbreviations maps the three-letter forms used by tenant settings.
var weekdayAbbreviations = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseWeekday resolves a full weekday name to its ordinal. Matching is case
// insensitive, so "Monday" and the "monday" form the API serializes both
// parse.
func ParseWeekday(name string) (time.Weekday, error) {
	if day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return day, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWeekday, name)
}

// ParseWeekdayAbbreviation resolves a lowercase three-letter weekday
// abbreviation such as "mon" to its ordinal.
func ParseWeekdayAbbreviation(abbr string) (time.Weekday, error) {
	if day, ok := weekdayAbbreviations[strings.ToLower(strings.TrimSpace(abbr))]; ok {
		return day, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWeekday, abbr)
}

// Abbreviation returns the lowercase three-letter form of a weekday.
func Abbreviation(day time.Weekday) string {
	switch day {
	case time.Sunday:
		return "sun"
	case time.Monday:
		return "mon"
	case time.Tuesday:
		return "tue"
	case time.Wednesday:
		return "wed"
	case time.Thursday:
		return "thu"
	case time.Friday:
		return "fri"
	case time.Saturday:
		return "sat"
	default:
		return ""
	}
}

// WeekdaySet represents an unordered selection of weekdays.
type WeekdaySet map[time.Weekday]struct{}

// NewWeekdaySet builds a set from the provided weekdays, discarding values
// outside the Sunday..Saturday range.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	set := make(WeekdaySet, len(days))
	for _, day := range days {
		if day < time.Sunday || day > time.Saturday {
			continue
		}
		set[day] = struct{}{}
	}
	return set
}

// Contains reports whether the set includes the given weekday.
func (s WeekdaySet) Contains(day time.Weekday) bool {
	_, ok := s[day]
	return ok
}

// Empty reports whether no weekday is selected.
func (s WeekdaySet) Empty() bool {
	return len(s) == 0
}
