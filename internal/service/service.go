package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"birthday-bot/internal/repository"
	"birthday-bot/pkg/config"
	"birthday-bot/pkg/models"
)

type Services struct {
	BirthdayService
	NotificationService
	TelegramService
}

type Deps struct {
	Repos  *repository.Repositories
	Config *config.Config
}

func NewServices(deps Deps) (*Services, error) {
	birthdaySvc := NewBirthdayService(deps.Repos.BirthdayRepository, deps.Config)

	tg, err := NewTelegramService(deps.Config, log.WithField("component", "telegram"))
	if err != nil {
		return nil, err
	}

	notifSvc := NewNotificationService(deps.Repos.BirthdayRepository, tg,
		log.WithField("component", "notify"))
	tg.Bind(birthdaySvc, notifSvc)

	return &Services{
		BirthdayService:     birthdaySvc,
		NotificationService: notifSvc,
		TelegramService:     tg,
	}, nil
}

// BirthdayService is the command surface: each method takes parsed command
// arguments and returns the user-visible reply text or a typed error.
type BirthdayService interface {
	SetBirthday(ctx context.Context, caller models.Caller, date, firstName, lastName string) (string, error)
	SetBirthdayFor(ctx context.Context, name, date, firstName, lastName string) (string, error)
	NextBirthday(ctx context.Context, name string, today time.Time) (string, error)
	Upcoming(ctx context.Context, limit int, today time.Time) (string, error)
	UpcomingRecords(ctx context.Context, limit int, today time.Time) ([]models.BirthdayRecord, error)
	SetDMPreference(ctx context.Context, caller models.Caller, enabled bool) (string, error)
	Forget(ctx context.Context, name string) (string, error)
}

type NotificationService interface {
	Dispatch(ctx context.Context, today time.Time) (*models.DispatchReport, error)
	PostNotifyPrompt() error
	TestDMAll(ctx context.Context) (string, error)
}

// Sender abstracts the chat transport for dispatch, so notification logic
// stays testable without a live bot.
type Sender interface {
	SendChannelMessage(text string) error
	SendDirectMessage(userID int64, text string) error
}

type TelegramService interface {
	Start(ctx context.Context) error
}
