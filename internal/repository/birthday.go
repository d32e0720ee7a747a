package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"

	"birthday-bot/pkg/birthdate"
	"birthday-bot/pkg/models"
	"birthday-bot/pkg/postgres"
)

const dateOnly = "2006-01-02"

type BirthdayRepositoryImpl struct {
	mgr *postgres.Manager
}

func NewBirthdayRepository(mgr *postgres.Manager) *BirthdayRepositoryImpl {
	return &BirthdayRepositoryImpl{mgr: mgr}
}

// run executes fn against the current connection, retrying once after a
// reconnect on transient failure. ErrNotFound passes through untouched;
// anything still failing after the retry is wrapped as a StorageError.
func (r *BirthdayRepositoryImpl) run(ctx context.Context, op string, fn func(db *sqlx.DB) error) error {
	err := fn(r.mgr.DB())
	if err == nil || errors.Is(err, models.ErrNotFound) || ctx.Err() != nil {
		return err
	}

	log.Warnf("%s failed, reconnecting and retrying once: %v", op, err)
	if rerr := r.mgr.Reconnect(ctx); rerr != nil {
		return &models.StorageError{Op: op, Err: err}
	}
	if err = fn(r.mgr.DB()); err != nil && !errors.Is(err, models.ErrNotFound) {
		return &models.StorageError{Op: op, Err: err}
	}
	return err
}

func (r *BirthdayRepositoryImpl) Upsert(ctx context.Context, rec models.BirthdayRecord) error {
	return r.run(ctx, "upsert", func(db *sqlx.DB) error {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO birthdays (user_id, username, first_name, last_name, month, day, year, dm_preference)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (user_id) DO UPDATE SET
				username      = EXCLUDED.username,
				first_name    = EXCLUDED.first_name,
				last_name     = EXCLUDED.last_name,
				month         = EXCLUDED.month,
				day           = EXCLUDED.day,
				year          = EXCLUDED.year,
				dm_preference = EXCLUDED.dm_preference`,
			rec.UserID, rec.Username, rec.FirstName, rec.LastName,
			rec.Month, rec.Day, rec.Year, rec.DMPreference,
		)
		if err != nil {
			return err
		}
		return tx.Commit()
	})
}

func (r *BirthdayRepositoryImpl) Get(ctx context.Context, userID int64) (models.BirthdayRecord, error) {
	var rec models.BirthdayRecord
	err := r.run(ctx, "get", func(db *sqlx.DB) error {
		err := db.GetContext(ctx, &rec, `
			SELECT user_id, username, first_name, last_name, month, day, year, dm_preference, notified_on
			FROM birthdays
			WHERE user_id = $1`, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrNotFound
		}
		return err
	})
	return rec, err
}

func (r *BirthdayRepositoryImpl) ListAll(ctx context.Context) ([]models.BirthdayRecord, error) {
	var recs []models.BirthdayRecord
	err := r.run(ctx, "list all", func(db *sqlx.DB) error {
		recs = recs[:0]
		return db.SelectContext(ctx, &recs, `
			SELECT user_id, username, first_name, last_name, month, day, year, dm_preference, notified_on
			FROM birthdays
			ORDER BY username`)
	})
	return recs, err
}

// ListDueToday matches on today's month/day. On Feb 28 of a non-leap year
// it also picks up Feb 29 records, which are observed a day early.
func (r *BirthdayRepositoryImpl) ListDueToday(ctx context.Context, today time.Time) ([]models.BirthdayRecord, error) {
	observeLeap := today.Month() == time.February && today.Day() == 28 &&
		!birthdate.IsLeapYear(today.Year())

	var recs []models.BirthdayRecord
	err := r.run(ctx, "list due today", func(db *sqlx.DB) error {
		recs = recs[:0]
		return db.SelectContext(ctx, &recs, `
			SELECT user_id, username, first_name, last_name, month, day, year, dm_preference, notified_on
			FROM birthdays
			WHERE ((month = $1 AND day = $2) OR ($3 AND month = 2 AND day = 29))
			  AND (notified_on IS NULL OR notified_on <> $4::date)
			ORDER BY username`,
			int(today.Month()), today.Day(), observeLeap, today.Format(dateOnly))
	})
	return recs, err
}

func (r *BirthdayRepositoryImpl) MarkNotified(ctx context.Context, userID int64, date time.Time) error {
	return r.run(ctx, "mark notified", func(db *sqlx.DB) error {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		res, err := tx.ExecContext(ctx, `
			UPDATE birthdays
			SET notified_on = $2::date
			WHERE user_id = $1`, userID, date.Format(dateOnly))
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return models.ErrNotFound
		}
		return tx.Commit()
	})
}

func (r *BirthdayRepositoryImpl) SetDMPreference(ctx context.Context, userID int64, enabled bool) error {
	return r.run(ctx, "set dm preference", func(db *sqlx.DB) error {
		res, err := db.ExecContext(ctx, `
			UPDATE birthdays
			SET dm_preference = $2
			WHERE user_id = $1`, userID, enabled)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}

func (r *BirthdayRepositoryImpl) Delete(ctx context.Context, userID int64) error {
	return r.run(ctx, "delete", func(db *sqlx.DB) error {
		res, err := db.ExecContext(ctx, `DELETE FROM birthdays WHERE user_id = $1`, userID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}
