package repository

import (
	"context"
	"time"

	"birthday-bot/pkg/models"
	"birthday-bot/pkg/postgres"
)

type Repositories struct {
	BirthdayRepository
}

func NewRepositories(mgr *postgres.Manager) *Repositories {
	return &Repositories{BirthdayRepository: NewBirthdayRepository(mgr)}
}

type BirthdayRepository interface {
	// Upsert inserts or fully replaces the mutable fields of a record,
	// keyed by user_id. Idempotent under repeated identical input.
	Upsert(ctx context.Context, rec models.BirthdayRecord) error
	// Get returns the record for userID or models.ErrNotFound.
	Get(ctx context.Context, userID int64) (models.BirthdayRecord, error)
	// ListAll returns every record, ordered by username.
	ListAll(ctx context.Context) ([]models.BirthdayRecord, error)
	// ListDueToday returns records observed on today's date that have not
	// been marked notified for it yet.
	ListDueToday(ctx context.Context, today time.Time) ([]models.BirthdayRecord, error)
	// MarkNotified records that the user was announced on the given date.
	// A second call for the same date is a no-op.
	MarkNotified(ctx context.Context, userID int64, date time.Time) error
	// SetDMPreference toggles the direct-message opt-in flag.
	SetDMPreference(ctx context.Context, userID int64, enabled bool) error
	// Delete removes the record entirely.
	Delete(ctx context.Context, userID int64) error
}
