package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextWeekdayOccurrence(t *testing.T) {
	t.Parallel()

	t.Run("first match after reference", func(t *testing.T) {
		t.Parallel()

		// 2025-01-01 is a Wednesday; the next Monday is 2025-01-06.
		reference := date(2025, time.January, 1)
		got, ok := NextWeekdayOccurrence(reference, NewWeekdaySet(time.Monday), 1)
		if !ok {
			t.Fatal("expected a match")
		}
		if want := date(2025, time.January, 6); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("same weekday as reference lands a week later", func(t *testing.T) {
		t.Parallel()

		// The scan starts the day after the reference, so a Wednesday
		// reference with a Wednesday-only set matches seven days out.
		reference := date(2025, time.January, 1)
		got, ok := NextWeekdayOccurrence(reference, NewWeekdaySet(time.Wednesday), 1)
		if !ok {
			t.Fatal("expected a match")
		}
		if want := date(2025, time.January, 8); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("interval extends by whole weeks", func(t *testing.T) {
		t.Parallel()

		reference := date(2025, time.January, 1)
		got, ok := NextWeekdayOccurrence(reference, NewWeekdaySet(time.Monday), 3)
		if !ok {
			t.Fatal("expected a match")
		}
		if want := date(2025, time.January, 20); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("earliest weekday in the set wins", func(t *testing.T) {
		t.Parallel()

		reference := date(2025, time.January, 1) // Wednesday
		got, ok := NextWeekdayOccurrence(reference, NewWeekdaySet(time.Friday, time.Thursday), 1)
		if !ok {
			t.Fatal("expected a match")
		}
		if want := date(2025, time.January, 2); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("empty set yields no match", func(t *testing.T) {
		t.Parallel()

		if _, ok := NextWeekdayOccurrence(date(2025, time.January, 1), NewWeekdaySet(), 1); ok {
			t.Error("empty set should not match")
		}
	})

	t.Run("result properties hold across references", func(t *testing.T) {
		t.Parallel()

		set := NewWeekdaySet(time.Tuesday, time.Saturday)
		for offset := 0; offset < 14; offset++ {
			reference := date(2025, time.March, 1).AddDate(0, 0, offset)
			for interval := 1; interval <= 4; interval++ {
				got, ok := NextWeekdayOccurrence(reference, set, interval)
				if !ok {
					t.Fatalf("no match for reference %v", reference)
				}
				if !got.After(reference) {
					t.Errorf("result %v not after reference %v", got, reference)
				}
				if !set.Contains(got.Weekday()) {
					t.Errorf("result %v has weekday %v outside the set", got, got.Weekday())
				}
				firstMatch := got.AddDate(0, 0, -(interval-1)*7)
				if days := int(firstMatch.Sub(reference).Hours() / 24); days < 1 || days > 7 {
					t.Errorf("first qualifying date %v is %d days from reference", firstMatch, days)
				}
			}
		}
	})
}

func TestNthWeekdayOfMonth(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		year    int
		month   time.Month
		week    WeekOfMonth
		weekday time.Weekday
		want    time.Time
	}{
		{"first monday", 2025, time.September, WeekFirst, time.Monday, date(2025, time.September, 1)},
		{"second sunday", 2025, time.September, WeekSecond, time.Sunday, date(2025, time.September, 14)},
		{"third friday", 2025, time.June, WeekThird, time.Friday, date(2025, time.June, 20)},
		{"fourth wednesday", 2025, time.February, WeekFourth, time.Wednesday, date(2025, time.February, 26)},
		{"last friday", 2025, time.August, WeekLast, time.Friday, date(2025, time.August, 29)},
		{"last day is also last weekday", 2025, time.June, WeekLast, time.Monday, date(2025, time.June, 30)},
		{"last in leap february", 2024, time.February, WeekLast, time.Thursday, date(2024, time.February, 29)},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := NthWeekdayOfMonth(tc.year, tc.month, tc.week, tc.weekday)
			if !got.Equal(tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
			if got.Weekday() != tc.weekday {
				t.Errorf("result weekday %v, want %v", got.Weekday(), tc.weekday)
			}
		})
	}

	t.Run("last has no later occurrence in the month", func(t *testing.T) {
		t.Parallel()

		for month := time.January; month <= time.December; month++ {
			for day := time.Sunday; day <= time.Saturday; day++ {
				got := NthWeekdayOfMonth(2025, month, WeekLast, day)
				if got.Month() != month {
					t.Fatalf("last %v of %v overflowed into %v", day, month, got.Month())
				}
				if next := got.AddDate(0, 0, 7); next.Month() == month {
					t.Errorf("last %v of %v has a later occurrence %v", day, month, next)
				}
			}
		}
	})
}

func TestWorkingDays(t *testing.T) {
	t.Parallel()

	t.Run("defaults cover the whole week", func(t *testing.T) {
		t.Parallel()

		days := DefaultWorkingDays()
		for day := time.Sunday; day <= time.Saturday; day++ {
			if !days.Contains(day) {
				t.Errorf("default set missing %v", day)
			}
		}
	})

	t.Run("parses tenant abbreviations", func(t *testing.T) {
		t.Parallel()

		days := WorkingDaysFromAbbreviations([]string{"mon", "tue", "wed", "thu", "fri"})
		if days.Contains(time.Saturday) || days.Contains(time.Sunday) {
			t.Error("weekend should not be a working day")
		}
		if !days.Contains(time.Monday) {
			t.Error("Monday should be a working day")
		}
		want := []string{"mon", "tue", "wed", "thu", "fri"}
		got := days.Abbreviations()
		if len(got) != len(want) {
			t.Fatalf("Abbreviations() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Abbreviations()[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("empty or invalid input falls back to all days", func(t *testing.T) {
		t.Parallel()

		for _, input := range [][]string{nil, {}, {"bogus"}} {
			days := WorkingDaysFromAbbreviations(input)
			if len(days) != 7 {
				t.Errorf("WorkingDaysFromAbbreviations(%v) yielded %d days, want 7", input, len(days))
			}
		}
	})
}
