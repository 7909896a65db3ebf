package recurrence

import (
	"errors"
	"time"

	"github.com/example/cmms-backend/internal/calendar"
)

// ErrNoRecurrence indicates the rule type is none; there is nothing to compute.
var ErrNoRecurrence = errors.New("recurrence: rule has no recurrence")

// ErrMissingInterval indicates a recurring rule without a positive interval.
var ErrMissingInterval = errors.New("recurrence: interval is required")

// ErrMissingDetails indicates the detail payload for the rule type is absent.
var ErrMissingDetails = errors.New("recurrence: details are required")

// ErrUnresolvableWeekdays indicates a weekly rule whose weekday selection
// matches no day within the scan window.
var ErrUnresolvableWeekdays = errors.New("recurrence: no matching weekday")

// NextWindow computes the next start/due window for a recurring work order.
//
// start anchors every type except yearly, which anchors on due's year. The
// returned window keeps start untouched and replaces due with the computed
// occurrence. Errors mean "leave the document alone": the caller must not
// persist anything when an error is returned. An unrecognized rule type is a
// no-op and yields the input window unchanged.
//
// The working-day set is consulted by daily rules only; an empty set falls
// back to all seven days.
func NextWindow(rule Rule, start, due time.Time, workingDays calendar.WorkingDays) (DateWindow, error) {
	window := DateWindow{Start: start, Due: due}

	if !rule.Type.Known() {
		return window, nil
	}
	if rule.Type == TypeNone {
		return DateWindow{}, ErrNoRecurrence
	}
	if rule.Interval <= 0 {
		return DateWindow{}, ErrMissingInterval
	}

	switch rule.Type {
	case TypeDaily:
		window.Due = nextWorkingDay(start, rule.Interval, workingDays)

	case TypeWeekly:
		if rule.Weekly == nil {
			return DateWindow{}, ErrMissingDetails
		}
		next, ok := calendar.NextWeekdayOccurrence(start, calendar.NewWeekdaySet(rule.Weekly.DaysOfWeek...), rule.Interval)
		if !ok {
			return DateWindow{}, ErrUnresolvableWeekdays
		}
		window.Due = next

	case TypeMonthlyByDate:
		if rule.MonthlyByDate == nil {
			return DateWindow{}, ErrMissingDetails
		}
		anchor := start.UTC()
		// No day-of-month clamping: a date past the target month's length
		// rolls into the following month.
		window.Due = time.Date(anchor.Year(), anchor.Month()+time.Month(rule.Interval), rule.MonthlyByDate.DateOfMonth, 0, 0, 0, 0, time.UTC)

	case TypeMonthlyByWeekday:
		if rule.MonthlyByWeekday == nil || !rule.MonthlyByWeekday.Week.Valid() {
			return DateWindow{}, ErrMissingDetails
		}
		anchor := start.UTC()
		target := time.Date(anchor.Year(), anchor.Month()+time.Month(rule.Interval), 1, 0, 0, 0, 0, time.UTC)
		window.Due = calendar.NthWeekdayOfMonth(target.Year(), target.Month(), rule.MonthlyByWeekday.Week, rule.MonthlyByWeekday.Day)

	case TypeYearly:
		if rule.Yearly == nil {
			return DateWindow{}, ErrMissingDetails
		}
		// Anchors on due's year rather than start's, matching the observed
		// behavior of the legacy scheduler.
		window.Due = time.Date(due.UTC().Year()+rule.Interval, time.Month(rule.Yearly.MonthOfYear), 1, 0, 0, 0, 0, time.UTC)
	}

	return window, nil
}

// nextWorkingDay advances one calendar day at a time from start, counting
// only days in the working set, until count working days have passed.
func nextWorkingDay(start time.Time, count int, workingDays calendar.WorkingDays) time.Time {
	if len(workingDays) == 0 {
		workingDays = calendar.DefaultWorkingDays()
	}

	current := start
	for added := 0; added < count; {
		current = current.AddDate(0, 0, 1)
		if workingDays.Contains(current.Weekday()) {
			added++
		}
	}
	return current
}
