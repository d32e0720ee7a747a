package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"birthday-bot/pkg/birthdate"
	"birthday-bot/pkg/config"
	"birthday-bot/pkg/models"
)

// Telegram adapts bot updates to the command surface and implements Sender
// for the notification dispatch.
type Telegram struct {
	bot      *tgbotapi.BotAPI
	cfg      *config.Config
	log      *logrus.Entry
	birthday BirthdayService
	notif    NotificationService
}

func NewTelegramService(cfg *config.Config, log *logrus.Entry) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Infof("authorized on account %s", bot.Self.UserName)

	return &Telegram{bot: bot, cfg: cfg, log: log}, nil
}

// Bind attaches the services the command handlers delegate to. Separate from
// the constructor because the notification service needs the Telegram sender
// first.
func (t *Telegram) Bind(birthday BirthdayService, notif NotificationService) {
	t.birthday = birthday
	t.notif = notif
}

func (t *Telegram) SendChannelMessage(text string) error {
	_, err := t.bot.Send(tgbotapi.NewMessage(t.cfg.Telegram.ChannelID, text))
	return err
}

func (t *Telegram) SendDirectMessage(userID int64, text string) error {
	_, err := t.bot.Send(tgbotapi.NewMessage(userID, text))
	return err
}

// Start runs the long-poll loop until the context is canceled.
func (t *Telegram) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			return nil
		case upd := <-updates:
			if upd.Message == nil || upd.Message.From == nil {
				continue
			}
			if !upd.Message.IsCommand() {
				if upd.Message.Chat.IsPrivate() {
					t.reply(upd.Message.Chat.ID, "Sorry, I didn't understand that. Try /help.")
				}
				continue
			}
			t.handleCommand(ctx, upd.Message)
		}
	}
}

func (t *Telegram) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	caller := models.Caller{
		ID:        msg.From.ID,
		Username:  msg.From.UserName,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
	}
	args := strings.Fields(msg.CommandArguments())
	now := time.Now().In(t.cfg.Location())

	var (
		reply string
		err   error
	)
	switch msg.Command() {
	case "start", "help":
		reply = helpText(t.cfg.IsAdmin(caller.ID))

	case "setbirthday":
		if len(args) < 1 {
			reply = "Usage: /setbirthday DD.MM.YYYY [first name [last name]]"
			break
		}
		first, last := optionalNames(args[1:])
		reply, err = t.birthday.SetBirthday(ctx, caller, args[0], first, last)

	case "setbirthdayfor":
		name, date, rest, ok := splitSetForArgs(args)
		if !ok {
			reply = "Usage: /setbirthdayfor <name> DD.MM.YYYY [first name [last name]]"
			break
		}
		first, last := optionalNames(rest)
		reply, err = t.birthday.SetBirthdayFor(ctx, name, date, first, last)

	case "nextbirthday":
		reply, err = t.birthday.NextBirthday(ctx, strings.Join(args, " "), now)

	case "upcoming":
		limit := t.cfg.Birthday.UpcomingLimit
		if len(args) > 0 {
			n, convErr := strconv.Atoi(args[0])
			if convErr != nil || n < 1 {
				reply = "Usage: /upcoming [count]"
				break
			}
			limit = n
		}
		reply, err = t.birthday.Upcoming(ctx, limit, now)

	case "notifyme":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			reply = "Usage: /notifyme on|off"
			break
		}
		reply, err = t.birthday.SetDMPreference(ctx, caller, args[0] == "on")

	case "birthdaycheck":
		if !t.cfg.IsAdmin(caller.ID) {
			err = models.ErrUnauthorized
			break
		}
		var report *models.DispatchReport
		if report, err = t.notif.Dispatch(ctx, now); err == nil {
			reply = dispatchReportText(report)
		}

	case "setupnotify":
		if !t.cfg.IsAdmin(caller.ID) {
			err = models.ErrUnauthorized
			break
		}
		if err = t.notif.PostNotifyPrompt(); err == nil {
			reply = "Opt-in prompt posted to the channel."
		}

	case "testdm":
		if !t.cfg.IsAdmin(caller.ID) {
			err = models.ErrUnauthorized
			break
		}
		reply, err = t.notif.TestDMAll(ctx)

	case "forget":
		if !t.cfg.IsAdmin(caller.ID) {
			err = models.ErrUnauthorized
			break
		}
		if len(args) < 1 {
			reply = "Usage: /forget <name>"
			break
		}
		reply, err = t.birthday.Forget(ctx, strings.Join(args, " "))

	default:
		reply = "Unknown command. Try /help."
	}

	if err != nil {
		t.log.WithFields(logrus.Fields{
			"command": msg.Command(),
			"user_id": caller.ID,
		}).Errorf("command failed: %v", err)
		reply = userFacingError(err)
	}
	t.reply(msg.Chat.ID, reply)
}

func (t *Telegram) reply(chatID int64, text string) {
	if text == "" {
		return
	}
	if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		t.log.Errorf("send reply failed: %v", err)
	}
}

// splitSetForArgs splits /setbirthdayfor arguments around the date token, so
// multi-word names like "John Doe" work. Everything before the first token
// that parses as DD.MM.YYYY is the name; everything after is passed on as
// first/last name overrides.
func splitSetForArgs(args []string) (name, date string, rest []string, ok bool) {
	for i, a := range args {
		if _, _, _, err := birthdate.ParseDate(a); err == nil {
			if i == 0 {
				return "", "", nil, false
			}
			return strings.Join(args[:i], " "), a, args[i+1:], true
		}
	}
	return "", "", nil, false
}

// optionalNames splits trailing command arguments into first and last name.
func optionalNames(args []string) (first, last string) {
	if len(args) > 0 {
		first = args[0]
	}
	if len(args) > 1 {
		last = strings.Join(args[1:], " ")
	}
	return first, last
}

// userFacingError maps the error taxonomy to reply text. Authorization
// failures stay deliberately vague; storage problems become a generic
// apology instead of leaking internals.
func userFacingError(err error) string {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, models.ErrNotFound):
		return "I couldn't find that user."
	case errors.Is(err, models.ErrUnauthorized):
		return "You are not allowed to do that."
	default:
		return "Something went wrong. Please try again later."
	}
}
