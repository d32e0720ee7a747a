package models

import "time"

// BirthdayRecord is a single row of the birthdays table, keyed by the
// Telegram user ID. Year is 0 when the user did not share their birth year.
type BirthdayRecord struct {
	UserID       int64      `db:"user_id" json:"user_id"`
	Username     string     `db:"username" json:"username"`
	FirstName    string     `db:"first_name" json:"first_name,omitempty"`
	LastName     string     `db:"last_name" json:"last_name,omitempty"`
	Month        int        `db:"month" json:"month"`
	Day          int        `db:"day" json:"day"`
	Year         int        `db:"year" json:"year,omitempty"`
	DMPreference bool       `db:"dm_preference" json:"dm_preference"`
	NotifiedOn   *time.Time `db:"notified_on" json:"-"`
}

// DisplayName picks the friendliest name we have for the user.
func (r *BirthdayRecord) DisplayName() string {
	switch {
	case r.FirstName != "" && r.LastName != "":
		return r.FirstName + " " + r.LastName
	case r.FirstName != "":
		return r.FirstName
	default:
		return r.Username
	}
}

// Age returns the age the user turns on their birthday in the given year,
// or 0 if the birth year is unknown.
func (r *BirthdayRecord) Age(inYear int) int {
	if r.Year <= 0 {
		return 0
	}
	return inYear - r.Year
}

// Caller identifies the Telegram user who issued a command.
type Caller struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// DispatchReport summarizes one birthday dispatch run.
type DispatchReport struct {
	Announced  []string `json:"announced"`
	DMFailures []string `json:"dm_failures,omitempty"`
}
