package birthdate

import (
	"time"

	"birthday-bot/pkg/models"
)

const dateLayout = "02.01.2006"

// ParseDate parses a birthday in DD.MM.YYYY form. Invalid dates such as
// 31.04.2000 or 29.02.1999 produce a ValidationError; nothing is clamped.
func ParseDate(s string) (month time.Month, day int, year int, err error) {
	t, perr := time.Parse(dateLayout, s)
	if perr != nil {
		return 0, 0, 0, models.NewValidationError("invalid date %q, expected DD.MM.YYYY", s)
	}
	return t.Month(), t.Day(), t.Year(), nil
}

// ValidateMonthDay checks a stored (month, day) pair without a year.
// Feb 29 is accepted; it is observed on Feb 28 in non-leap years.
func ValidateMonthDay(month time.Month, day int) error {
	if month < time.January || month > time.December {
		return models.NewValidationError("month %d out of range", int(month))
	}
	if day < 1 || day > daysInMonth(month) {
		return models.NewValidationError("day %d out of range for %s", day, month)
	}
	return nil
}

func daysInMonth(month time.Month) int {
	switch month {
	case time.February:
		return 29
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}
