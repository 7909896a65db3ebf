package recurrence

import (
	"time"

	"github.com/example/cmms-backend/internal/calendar"
)

// Type identifies how a work order repeats.
type Type string

const (
	// TypeNone marks a non-recurring work order.
	TypeNone Type = "none"
	// TypeDaily repeats every Interval working days.
	TypeDaily Type = "daily"
	// TypeWeekly repeats on selected weekdays every Interval weeks.
	TypeWeekly Type = "weekly"
	// TypeMonthlyByDate repeats on a fixed date every Interval months.
	TypeMonthlyByDate Type = "monthlyByDate"
	// TypeMonthlyByWeekday repeats on the nth weekday every Interval months.
	TypeMonthlyByWeekday Type = "monthlyByWeekday"
	// TypeYearly repeats in a fixed month every Interval years.
	TypeYearly Type = "yearly"
)

// Known reports whether the type is one of the recognized recurrence kinds.
func (t Type) Known() bool {
	switch t {
	case TypeNone, TypeDaily, TypeWeekly, TypeMonthlyByDate, TypeMonthlyByWeekday, TypeYearly:
		return true
	default:
		return false
	}
}

// WeeklyDetails selects the weekdays a weekly rule fires on.
type WeeklyDetails struct {
	DaysOfWeek []time.Weekday
}

// MonthlyByDateDetails selects the calendar date a monthly rule fires on.
// DateOfMonth is taken as provided; values past the target month's length
// roll over into the following month.
type MonthlyByDateDetails struct {
	DateOfMonth int
}

// MonthlyByWeekdayDetails selects the nth weekday a monthly rule fires on.
type MonthlyByWeekdayDetails struct {
	Week calendar.WeekOfMonth
	Day  time.Weekday
}

// YearlyDetails selects the month a yearly rule fires in (1 = January).
type YearlyDetails struct {
	MonthOfYear int
}

// Rule is the recurrence configuration embedded in a work order. Exactly one
// of the detail fields is meaningful, keyed by Type; the rest stay nil. The
// calculator treats rules as immutable input.
type Rule struct {
	Type     Type
	Interval int

	Weekly           *WeeklyDetails
	MonthlyByDate    *MonthlyByDateDetails
	MonthlyByWeekday *MonthlyByWeekdayDetails
	Yearly           *YearlyDetails
}

// None returns the rule used by non-recurring work orders.
func None() Rule {
	return Rule{Type: TypeNone}
}

// IsRecurring reports whether the rule requests any recurrence at all.
func (r Rule) IsRecurring() bool {
	return r.Type != "" && r.Type != TypeNone
}

// DateWindow is the start/due pair carried by a work order.
type DateWindow struct {
	Start time.Time
	Due   time.Time
}
