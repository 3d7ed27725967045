package core

import (
	"sort"
	"time"
)

// Today returns the canonical calendar-date string for t in UTC.
func Today(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// ComputeStreak reduces a set of check-in dates to the current
// consecutive-day streak as of today. The streak is alive only when the
// most recent date is today or yesterday; an older anchor yields 0 no
// matter how long past runs were. From the anchor the descending sequence
// is walked pairwise and stops at the first gap. Differences are taken on
// calendar days, never wall-clock timestamps.
//
// The full recomputation on every call keeps the derived value
// self-healing against historical edits, clock changes and migrations.
func ComputeStreak(dates []string, today string) int {
	if len(dates) == 0 {
		return 0
	}

	anchor, err := time.ParseInLocation(DayFormat, today, time.UTC)
	if err != nil {
		return 0
	}

	days := make([]time.Time, 0, len(dates))
	for _, date := range dates {
		day, err := time.ParseInLocation(DayFormat, date, time.UTC)
		if err != nil {
			// Unparseable entries come from corrupt storage; they cannot
			// extend a run, so they are skipped rather than fatal.
			continue
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return 0
	}

	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	if gap := daysBetween(days[0], anchor); gap != 0 && gap != 1 {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if daysBetween(days[i], days[i-1]) != 1 {
			break
		}
		streak++
	}
	return streak
}

// daysBetween returns the whole calendar days from a to b. Both values are
// UTC midnights, so the division is exact.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
