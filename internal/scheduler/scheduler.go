package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	log "github.com/sirupsen/logrus"

	"birthday-bot/internal/service"
	"birthday-bot/pkg/config"
)

// Start schedules the daily birthday check at cfg.Birthday.CheckAt in the
// configured timezone. Dispatch is idempotent per day, so an overlap with an
// admin-triggered manual check cannot double-announce anyone.
func Start(cfg *config.Config, notif service.NotificationService) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(cfg.Location())

	_, err := s.Every(1).Day().At(cfg.Birthday.CheckAt).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		today := time.Now().In(cfg.Location())
		report, err := notif.Dispatch(ctx, today)
		if err != nil {
			log.Errorf("daily birthday check failed: %v", err)
			return
		}
		log.WithField("announced", len(report.Announced)).Info("daily birthday check done")
	})
	if err != nil {
		return nil, err
	}

	s.StartAsync()
	log.Infof("birthday check scheduled daily at %s (%s)", cfg.Birthday.CheckAt, cfg.Birthday.Timezone)
	return s, nil
}
