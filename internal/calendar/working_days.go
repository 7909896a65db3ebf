package calendar

import "time"

// WorkingDays designates which weekdays are staffed for a tenant. An empty
// value is treated as "every day" by the callers that consume it.
type WorkingDays WeekdaySet

// DefaultWorkingDays returns a set covering all seven days. It is the
// fallback applied when a tenant has no working-day configuration.
func DefaultWorkingDays() WorkingDays {
	return WorkingDays(NewWeekdaySet(
		time.Sunday,
		time.Monday,
		time.Tuesday,
		time.Wednesday,
		time.Thursday,
		time.Friday,
		time.Saturday,
	))
}

// WorkingDaysFromAbbreviations builds a set from tenant-setting values such
// as ["mon", "tue", "fri"]. Unknown abbreviations are skipped. When the input
// yields no valid day, the default all-day set is returned.
func WorkingDaysFromAbbreviations(abbrs []string) WorkingDays {
	set := make(WeekdaySet, len(abbrs))
	for _, abbr := range abbrs {
		day, err := ParseWeekdayAbbreviation(abbr)
		if err != nil {
			continue
		}
		set[day] = struct{}{}
	}
	if len(set) == 0 {
		return DefaultWorkingDays()
	}
	return WorkingDays(set)
}

// Contains reports whether the given weekday is a working day.
func (w WorkingDays) Contains(day time.Weekday) bool {
	return WeekdaySet(w).Contains(day)
}

// Clone returns an independent copy of the set.
func (w WorkingDays) Clone() WorkingDays {
	if w == nil {
		return nil
	}
	out := make(WorkingDays, len(w))
	for day := range w {
		out[day] = struct{}{}
	}
	return out
}

// Abbreviations returns the set in canonical "sun".."sat" ordinal order,
// suitable for persistence.
func (w WorkingDays) Abbreviations() []string {
	out := make([]string, 0, len(w))
	for day := time.Sunday; day <= time.Saturday; day++ {
		if w.Contains(day) {
			out = append(out, Abbreviation(day))
		}
	}
	return out
}
