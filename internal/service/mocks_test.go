package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"birthday-bot/pkg/birthdate"
	"birthday-bot/pkg/models"
)

// fakeRepo is an in-memory BirthdayRepository with the same observable
// behavior as the Postgres implementation.
type fakeRepo struct {
	records map[int64]models.BirthdayRecord
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[int64]models.BirthdayRecord)}
}

func (f *fakeRepo) Upsert(_ context.Context, rec models.BirthdayRecord) error {
	if existing, ok := f.records[rec.UserID]; ok {
		rec.NotifiedOn = existing.NotifiedOn
	}
	f.records[rec.UserID] = rec
	return nil
}

func (f *fakeRepo) Get(_ context.Context, userID int64) (models.BirthdayRecord, error) {
	rec, ok := f.records[userID]
	if !ok {
		return models.BirthdayRecord{}, models.ErrNotFound
	}
	return rec, nil
}

func (f *fakeRepo) ListAll(_ context.Context) ([]models.BirthdayRecord, error) {
	var recs []models.BirthdayRecord
	for _, rec := range f.records {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Username < recs[j].Username })
	return recs, nil
}

func (f *fakeRepo) ListDueToday(_ context.Context, today time.Time) ([]models.BirthdayRecord, error) {
	var recs []models.BirthdayRecord
	for _, rec := range f.records {
		if !birthdate.ObservedToday(time.Month(rec.Month), rec.Day, today) {
			continue
		}
		if rec.NotifiedOn != nil && sameDate(*rec.NotifiedOn, today) {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Username < recs[j].Username })
	return recs, nil
}

func (f *fakeRepo) MarkNotified(_ context.Context, userID int64, date time.Time) error {
	rec, ok := f.records[userID]
	if !ok {
		return models.ErrNotFound
	}
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	rec.NotifiedOn = &d
	f.records[userID] = rec
	return nil
}

func (f *fakeRepo) SetDMPreference(_ context.Context, userID int64, enabled bool) error {
	rec, ok := f.records[userID]
	if !ok {
		return models.ErrNotFound
	}
	rec.DMPreference = enabled
	f.records[userID] = rec
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, userID int64) error {
	if _, ok := f.records[userID]; !ok {
		return models.ErrNotFound
	}
	delete(f.records, userID)
	return nil
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// fakeSender records outgoing messages and can simulate send failures.
type fakeSender struct {
	channel    []string
	dms        map[int64][]string
	channelErr error
	dmErr      error
}

func newFakeSender() *fakeSender {
	return &fakeSender{dms: make(map[int64][]string)}
}

func (f *fakeSender) SendChannelMessage(text string) error {
	if f.channelErr != nil {
		return f.channelErr
	}
	f.channel = append(f.channel, text)
	return nil
}

func (f *fakeSender) SendDirectMessage(userID int64, text string) error {
	if f.dmErr != nil {
		return f.dmErr
	}
	f.dms[userID] = append(f.dms[userID], text)
	return nil
}

var errSendFailed = errors.New("send failed")
