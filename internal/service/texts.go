package service

import (
	"fmt"
	"strings"
	"time"

	"birthday-bot/pkg/birthdate"
	"birthday-bot/pkg/models"
)

const (
	dmGreeting = "🎉 Happy birthday! I hope you have a wonderful day! 🎂"

	notifyPrompt = "🎂 Want a personal birthday greeting? Send me /notifyme on " +
		"and I'll message you directly on your birthday."

	testDMText = "🔔 This is a test message. Your birthday DMs are working!"
)

func helpText(isAdmin bool) string {
	text := `🎂 Birthday Bot commands:
/setbirthday DD.MM.YYYY [first name [last name]] - save your birthday
/setbirthdayfor <name> DD.MM.YYYY [first name [last name]] - save a birthday for someone else
/nextbirthday [name] - show the next upcoming birthday
/upcoming [count] - show the next birthdays in order
/notifyme on|off - toggle the personal birthday DM
/help - show this help`
	if isAdmin {
		text += `

Admin commands:
/birthdaycheck - run today's birthday check now
/setupnotify - post the DM opt-in prompt to the channel
/testdm - send a test DM to everyone opted in
/forget <name> - remove a birthday record`
	}
	return text
}

func announcementText(rec *models.BirthdayRecord, today time.Time) string {
	name := rec.DisplayName()
	if rec.Username != "" && name != rec.Username {
		name += " (@" + rec.Username + ")"
	}
	text := fmt.Sprintf("🎉 Happy birthday, %s! 🎂", name)
	if age := rec.Age(today.Year()); age > 0 {
		text += fmt.Sprintf(" %d today!", age)
	}
	return text
}

func nextBirthdayText(rec *models.BirthdayRecord, today time.Time) string {
	days := birthdate.DaysUntilNext(time.Month(rec.Month), rec.Day, today)
	return fmt.Sprintf("🎂 Next birthday: %s on %02d.%02d. (%s)",
		rec.DisplayName(), rec.Day, rec.Month, inDays(days))
}

func upcomingText(recs []models.BirthdayRecord, today time.Time) string {
	if len(recs) == 0 {
		return "No upcoming birthdays found."
	}
	var b strings.Builder
	b.WriteString("📅 Upcoming birthdays:\n")
	for i := range recs {
		rec := &recs[i]
		days := birthdate.DaysUntilNext(time.Month(rec.Month), rec.Day, today)
		fmt.Fprintf(&b, "• %s: %02d.%02d. (%s)\n", rec.DisplayName(), rec.Day, rec.Month, inDays(days))
	}
	return strings.TrimRight(b.String(), "\n")
}

func dispatchReportText(rep *models.DispatchReport) string {
	if len(rep.Announced) == 0 {
		return "Birthday check complete. Nobody is due today."
	}
	text := "Birthday check complete. Announced: " + strings.Join(rep.Announced, ", ") + "."
	if len(rep.DMFailures) > 0 {
		text += " DM failures: " + strings.Join(rep.DMFailures, "; ") + "."
	}
	return text
}

func inDays(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}
