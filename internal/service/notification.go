package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"birthday-bot/internal/repository"
	"birthday-bot/pkg/models"
)

type NotificationServiceImpl struct {
	repo   repository.BirthdayRepository
	sender Sender
	log    *logrus.Entry
}

func NewNotificationService(repo repository.BirthdayRepository, sender Sender, log *logrus.Entry) *NotificationServiceImpl {
	return &NotificationServiceImpl{repo: repo, sender: sender, log: log}
}

// Dispatch announces every due user once and DMs those who opted in.
// A DM failure never blocks the public announcement or the notified mark;
// it is collected into the report instead. Re-running on the same day is a
// no-op because announced users are excluded from the due list.
func (n *NotificationServiceImpl) Dispatch(ctx context.Context, today time.Time) (*models.DispatchReport, error) {
	due, err := n.repo.ListDueToday(ctx, today)
	if err != nil {
		return nil, err
	}

	report := &models.DispatchReport{}
	for i := range due {
		rec := &due[i]

		if err := n.sender.SendChannelMessage(announcementText(rec, today)); err != nil {
			// Not marked notified, so the next tick retries this user.
			n.log.WithField("user_id", rec.UserID).Errorf("announcement failed: %v", err)
			continue
		}
		report.Announced = append(report.Announced, rec.Username)

		if rec.DMPreference {
			if err := n.sender.SendDirectMessage(rec.UserID, dmGreeting); err != nil {
				n.log.WithField("user_id", rec.UserID).Warnf("birthday DM failed: %v", err)
				report.DMFailures = append(report.DMFailures, fmt.Sprintf("%s: %v", rec.Username, err))
			}
		}

		if err := n.repo.MarkNotified(ctx, rec.UserID, today); err != nil {
			n.log.WithField("user_id", rec.UserID).Errorf("mark notified failed: %v", err)
		}
	}

	if len(report.Announced) > 0 {
		n.log.Infof("announced %d birthday(s)", len(report.Announced))
	}
	return report, nil
}

// PostNotifyPrompt posts the DM opt-in prompt to the announcement channel.
func (n *NotificationServiceImpl) PostNotifyPrompt() error {
	return n.sender.SendChannelMessage(notifyPrompt)
}

// TestDMAll sends a test direct message to every opted-in user so an admin
// can verify deliverability before a birthday is missed. Failures are
// counted per user, never aborting the rest of the batch.
func (n *NotificationServiceImpl) TestDMAll(ctx context.Context) (string, error) {
	recs, err := n.repo.ListAll(ctx)
	if err != nil {
		return "", err
	}

	var sent, failed int
	for i := range recs {
		rec := &recs[i]
		if !rec.DMPreference {
			continue
		}
		if err := n.sender.SendDirectMessage(rec.UserID, testDMText); err != nil {
			n.log.WithField("user_id", rec.UserID).Warnf("test DM failed: %v", err)
			failed++
			continue
		}
		sent++
	}

	if sent+failed == 0 {
		return "Nobody has opted in to birthday DMs yet.", nil
	}
	return fmt.Sprintf("Test DM sent to %d user(s), %d failed.", sent, failed), nil
}
