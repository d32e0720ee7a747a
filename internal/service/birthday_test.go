package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"birthday-bot/pkg/config"
	"birthday-bot/pkg/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Birthday: config.BirthdayConfig{UpcomingLimit: 5},
	}
}

func caller(id int64, username string) models.Caller {
	return models.Caller{ID: id, Username: username}
}

func TestSetBirthday_InvalidDateWritesNothing(t *testing.T) {
	repo := newFakeRepo()
	s := NewBirthdayService(repo, testConfig())

	_, err := s.SetBirthday(context.Background(), caller(1, "anna"), "31.04.2000", "", "")
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if len(repo.records) != 0 {
		t.Fatalf("record written despite invalid date: %v", repo.records)
	}
}

func TestSetBirthday_RoundTripAndIdempotence(t *testing.T) {
	repo := newFakeRepo()
	s := NewBirthdayService(repo, testConfig())
	ctx := context.Background()

	if _, err := s.SetBirthday(ctx, caller(1, "anna"), "15.03.1990", "Anna", "Schmidt"); err != nil {
		t.Fatalf("SetBirthday: %v", err)
	}

	got, err := repo.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := models.BirthdayRecord{
		UserID: 1, Username: "anna", FirstName: "Anna", LastName: "Schmidt",
		Month: 3, Day: 15, Year: 1990,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("stored record = %+v, want %+v", got, want)
	}

	// Identical repeat leaves the record unchanged.
	if _, err := s.SetBirthday(ctx, caller(1, "anna"), "15.03.1990", "Anna", "Schmidt"); err != nil {
		t.Fatalf("repeat SetBirthday: %v", err)
	}
	again, _ := repo.Get(ctx, 1)
	if !reflect.DeepEqual(again, got) {
		t.Fatalf("repeat upsert changed record: %+v -> %+v", got, again)
	}
}

func TestSetBirthday_PreservesDMOptIn(t *testing.T) {
	repo := newFakeRepo()
	s := NewBirthdayService(repo, testConfig())
	ctx := context.Background()

	if _, err := s.SetBirthday(ctx, caller(1, "anna"), "15.03.1990", "", ""); err != nil {
		t.Fatalf("SetBirthday: %v", err)
	}
	if _, err := s.SetDMPreference(ctx, caller(1, "anna"), true); err != nil {
		t.Fatalf("SetDMPreference: %v", err)
	}
	if _, err := s.SetBirthday(ctx, caller(1, "anna"), "16.03.1990", "", ""); err != nil {
		t.Fatalf("second SetBirthday: %v", err)
	}

	rec, _ := repo.Get(ctx, 1)
	if !rec.DMPreference {
		t.Fatal("updating the birthday reset the DM opt-in")
	}
	if rec.Day != 16 {
		t.Fatalf("birthday not updated: day = %d", rec.Day)
	}
}

func TestSetBirthdayFor_FuzzyMatch(t *testing.T) {
	repo := newFakeRepo()
	repo.records[1] = models.BirthdayRecord{UserID: 1, Username: "johnny", FirstName: "John", LastName: "Doe", Month: 1, Day: 1}
	repo.records[2] = models.BirthdayRecord{UserID: 2, Username: "maria", Month: 2, Day: 2}
	s := NewBirthdayService(repo, testConfig())

	reply, err := s.SetBirthdayFor(context.Background(), "jhon", "12.08.1985", "", "")
	if err != nil {
		t.Fatalf("SetBirthdayFor: %v", err)
	}
	if !strings.Contains(reply, "John") {
		t.Errorf("unexpected reply: %q", reply)
	}

	rec, _ := repo.Get(context.Background(), 1)
	if rec.Month != 8 || rec.Day != 12 || rec.Year != 1985 {
		t.Fatalf("birthday not applied to matched user: %+v", rec)
	}
	if rec.FirstName != "John" || rec.LastName != "Doe" {
		t.Fatalf("stored names overwritten: %+v", rec)
	}
}

func TestSetBirthdayFor_NoMatch(t *testing.T) {
	repo := newFakeRepo()
	repo.records[1] = models.BirthdayRecord{UserID: 1, Username: "johnny", Month: 1, Day: 1}
	s := NewBirthdayService(repo, testConfig())

	_, err := s.SetBirthdayFor(context.Background(), "zzzzzz", "12.08.1985", "", "")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("want ErrNotFound for unmatched name, got %v", err)
	}
	if rec, _ := repo.Get(context.Background(), 1); rec.Month != 1 {
		t.Fatalf("record modified despite no match: %+v", rec)
	}
}

func TestUpcoming_LimitTruncatesAndOrders(t *testing.T) {
	repo := newFakeRepo()
	usernames := []string{"ann", "ben", "cai", "dan", "eli", "fay", "gus"}
	for i, u := range usernames {
		repo.records[int64(i+1)] = models.BirthdayRecord{
			UserID: int64(i + 1), Username: u, Month: 4, Day: i + 2,
		}
	}
	s := NewBirthdayService(repo, testConfig())

	today := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	recs, err := s.UpcomingRecords(context.Background(), 5, today)
	if err != nil {
		t.Fatalf("UpcomingRecords: %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("want 5 records, got %d", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Day < recs[i-1].Day {
			t.Fatalf("not ordered ascending: %v", recs)
		}
	}
}

func TestNextBirthday_NoArgPicksNearest(t *testing.T) {
	repo := newFakeRepo()
	repo.records[1] = models.BirthdayRecord{UserID: 1, Username: "far", Month: 12, Day: 24}
	repo.records[2] = models.BirthdayRecord{UserID: 2, Username: "near", Month: 7, Day: 2}
	s := NewBirthdayService(repo, testConfig())

	today := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	reply, err := s.NextBirthday(context.Background(), "", today)
	if err != nil {
		t.Fatalf("NextBirthday: %v", err)
	}
	if !strings.Contains(reply, "near") || !strings.Contains(reply, "tomorrow") {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestSetDMPreference_RequiresRecord(t *testing.T) {
	s := NewBirthdayService(newFakeRepo(), testConfig())

	_, err := s.SetDMPreference(context.Background(), caller(9, "ghost"), true)
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError for missing record, got %v", err)
	}
}

func TestForget_RemovesRecord(t *testing.T) {
	repo := newFakeRepo()
	repo.records[1] = models.BirthdayRecord{UserID: 1, Username: "johnny", Month: 1, Day: 1}
	s := NewBirthdayService(repo, testConfig())

	if _, err := s.Forget(context.Background(), "johnny"); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if len(repo.records) != 0 {
		t.Fatalf("record not deleted: %v", repo.records)
	}
}
