package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"birthday-bot/internal/repository"
	"birthday-bot/pkg/birthdate"
	"birthday-bot/pkg/config"
	"birthday-bot/pkg/models"
)

// matchThreshold is the similarity cut-off below which a name lookup is
// treated as "no such user" rather than guessing.
const matchThreshold = 0.7

const maxUpcomingLimit = 25

type BirthdayServiceImpl struct {
	repo repository.BirthdayRepository
	cfg  *config.Config
}

func NewBirthdayService(repo repository.BirthdayRepository, cfg *config.Config) *BirthdayServiceImpl {
	return &BirthdayServiceImpl{repo: repo, cfg: cfg}
}

func (s *BirthdayServiceImpl) SetBirthday(ctx context.Context, caller models.Caller, date, firstName, lastName string) (string, error) {
	month, day, year, err := birthdate.ParseDate(date)
	if err != nil {
		return "", err
	}

	// Preserve the DM opt-in across repeated /setbirthday calls; it is
	// toggled only via /notifyme.
	dmPref := false
	if existing, err := s.repo.Get(ctx, caller.ID); err == nil {
		dmPref = existing.DMPreference
	} else if !errors.Is(err, models.ErrNotFound) {
		return "", err
	}

	username := caller.Username
	if username == "" {
		username = caller.FirstName
	}

	rec := models.BirthdayRecord{
		UserID:       caller.ID,
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		Month:        int(month),
		Day:          day,
		Year:         year,
		DMPreference: dmPref,
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return "", err
	}
	return fmt.Sprintf("Birthday saved: %s 🎂", date), nil
}

func (s *BirthdayServiceImpl) SetBirthdayFor(ctx context.Context, name, date, firstName, lastName string) (string, error) {
	month, day, year, err := birthdate.ParseDate(date)
	if err != nil {
		return "", err
	}

	match, err := s.findByName(ctx, name)
	if err != nil {
		return "", err
	}

	if firstName == "" {
		firstName = match.FirstName
	}
	if lastName == "" {
		lastName = match.LastName
	}

	rec := models.BirthdayRecord{
		UserID:       match.UserID,
		Username:     match.Username,
		FirstName:    firstName,
		LastName:     lastName,
		Month:        int(month),
		Day:          day,
		Year:         year,
		DMPreference: match.DMPreference,
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return "", err
	}
	return fmt.Sprintf("Birthday for %s saved: %s 🎂", rec.DisplayName(), date), nil
}

func (s *BirthdayServiceImpl) NextBirthday(ctx context.Context, name string, today time.Time) (string, error) {
	if name != "" {
		rec, err := s.findByName(ctx, name)
		if err != nil {
			return "", err
		}
		return nextBirthdayText(rec, today), nil
	}

	recs, err := s.repo.ListAll(ctx)
	if err != nil {
		return "", err
	}
	if len(recs) == 0 {
		return "No birthdays stored yet.", nil
	}
	next := birthdate.SortUpcoming(recs, today, 1)
	return nextBirthdayText(&next[0], today), nil
}

func (s *BirthdayServiceImpl) Upcoming(ctx context.Context, limit int, today time.Time) (string, error) {
	recs, err := s.UpcomingRecords(ctx, limit, today)
	if err != nil {
		return "", err
	}
	return upcomingText(recs, today), nil
}

func (s *BirthdayServiceImpl) UpcomingRecords(ctx context.Context, limit int, today time.Time) ([]models.BirthdayRecord, error) {
	if limit <= 0 {
		limit = s.cfg.Birthday.UpcomingLimit
	}
	if limit > maxUpcomingLimit {
		limit = maxUpcomingLimit
	}
	recs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return birthdate.SortUpcoming(recs, today, limit), nil
}

func (s *BirthdayServiceImpl) SetDMPreference(ctx context.Context, caller models.Caller, enabled bool) (string, error) {
	if err := s.repo.SetDMPreference(ctx, caller.ID, enabled); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.NewValidationError("you don't have a birthday stored yet, use /setbirthday first")
		}
		return "", err
	}
	if enabled {
		return "You will receive a birthday DM. 🎉", nil
	}
	return "Birthday DMs disabled.", nil
}

func (s *BirthdayServiceImpl) Forget(ctx context.Context, name string) (string, error) {
	match, err := s.findByName(ctx, name)
	if err != nil {
		return "", err
	}
	if err := s.repo.Delete(ctx, match.UserID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Removed birthday record for %s.", match.DisplayName()), nil
}

// findByName resolves a free-form name to a stored record by Jaro-Winkler
// similarity against username, first/last and full name. Jaro-Winkler is
// forgiving of typos and transpositions, which is the point of the lookup.
func (s *BirthdayServiceImpl) findByName(ctx context.Context, name string) (*models.BirthdayRecord, error) {
	recs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	jw := metrics.NewJaroWinkler()
	jw.CaseSensitive = false

	var best *models.BirthdayRecord
	bestScore := 0.0
	for i := range recs {
		rec := &recs[i]
		candidates := []string{rec.Username, rec.FirstName, rec.LastName}
		if rec.FirstName != "" && rec.LastName != "" {
			candidates = append(candidates, rec.FirstName+" "+rec.LastName)
		}
		for _, cand := range candidates {
			if cand == "" {
				continue
			}
			if score := strutil.Similarity(name, cand, jw); score > bestScore {
				bestScore = score
				best = rec
			}
		}
	}

	if best == nil || bestScore < matchThreshold {
		return nil, fmt.Errorf("no user matching %q: %w", name, models.ErrNotFound)
	}
	return best, nil
}
