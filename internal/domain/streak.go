package domain

import "time"

// LookbackWindow is the number of most recent records examined per streak computation.
const LookbackWindow = 30

// StreakResult is derived on every request and never stored.
type StreakResult struct {
	UserID          string
	Streak          int
	LastSessionDate *string
}

// CalculateStreak scans records in descending date order and counts completed
// sessions anchored at today.
//
// Records with a missing or malformed date, or with a falsy completion flag, are
// skipped without breaking the scan. The scan stops at the first gap larger than
// one day, and also stops right after counting a record that is at least one day
// older than its reference point, so at most one day-to-day step is ever
// confirmed.
func CalculateStreak(userID string, records []SessionRecord, today time.Time) StreakResult {
	result := StreakResult{UserID: userID}

	reference := calendarDate(today)
	var last time.Time
	counted := false

	for _, record := range records {
		if record.Date == "" {
			continue
		}
		date, err := time.ParseInLocation(DateLayout, record.Date, time.UTC)
		if err != nil {
			continue
		}
		if !record.WakeCompleted.IsCompleted() {
			continue
		}

		if counted {
			reference = last
		}
		daysDiff := daysBetween(reference, date)
		if daysDiff > 1 {
			break
		}

		result.Streak++
		last = date
		counted = true

		if daysDiff >= 1 {
			break
		}
	}

	if counted {
		formatted := last.Format(DateLayout)
		result.LastSessionDate = &formatted
	}
	return result
}

// calendarDate drops the clock part of t, keeping the date as observed in t's location.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns later - earlier in whole days. Both arguments are UTC midnights.
func daysBetween(later, earlier time.Time) int {
	return int(later.Sub(earlier).Hours() / 24)
}
