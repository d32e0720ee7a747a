// Package birthdate holds the pure date arithmetic behind the bot:
// days-until-next-birthday, the Feb-29 fallback and upcoming ordering.
package birthdate

import (
	"sort"
	"time"

	"birthday-bot/pkg/models"
)

// IsLeapYear reports whether year has a Feb 29.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// midnight strips the time-of-day part, keeping only the calendar date.
// All comparisons run on UTC dates so DST shifts cannot skew day counts.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// occurrenceInYear places (month, day) into the given year. A Feb 29
// birthday in a non-leap year is observed on Feb 28; this is deliberate
// policy, not clamping of invalid input.
func occurrenceInYear(year int, month time.Month, day int) time.Time {
	if month == time.February && day == 29 && !IsLeapYear(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NextOccurrence returns the next calendar date (today included) on which
// the birthday (month, day) is observed, relative to today's date.
func NextOccurrence(month time.Month, day int, today time.Time) time.Time {
	t := midnight(today)
	occ := occurrenceInYear(t.Year(), month, day)
	if occ.Before(t) {
		occ = occurrenceInYear(t.Year()+1, month, day)
	}
	return occ
}

// DaysUntilNext returns how many days remain until the birthday (month, day)
// is next observed. The result is 0 iff the birthday is today, and never
// exceeds 365.
func DaysUntilNext(month time.Month, day int, today time.Time) int {
	t := midnight(today)
	return int(NextOccurrence(month, day, today).Sub(t) / (24 * time.Hour))
}

// ObservedToday reports whether a birthday stored as (month, day) is
// observed on today's date, honoring the Feb-29/Feb-28 fallback.
func ObservedToday(month time.Month, day int, today time.Time) bool {
	return DaysUntilNext(month, day, today) == 0
}

// SortUpcoming orders records by ascending days until their next birthday,
// breaking ties by username, and truncates the result to limit. The input
// slice is not modified.
func SortUpcoming(records []models.BirthdayRecord, today time.Time, limit int) []models.BirthdayRecord {
	out := make([]models.BirthdayRecord, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		di := DaysUntilNext(time.Month(out[i].Month), out[i].Day, today)
		dj := DaysUntilNext(time.Month(out[j].Month), out[j].Day, today)
		if di != dj {
			return di < dj
		}
		return out[i].Username < out[j].Username
	})

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
