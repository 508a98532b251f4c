package dispatch

import (
	"time"

	"github.com/magabrotheeeer/charge-reminder/internal/models"
)

// DueReminders возвращает напоминания, наступившие к моменту now.
//
// Используется политика абсолютного дедлайна: напоминание считается
// наступившим, если оно не отправлено и scheduled_for <= now (граница
// включительно). Однажды наступившее напоминание остается таковым до
// обработки, сколько бы времени ни простоял сервис.
func DueReminders(now time.Time, reminders []*models.Reminder) []*models.Reminder {
	var due []*models.Reminder
	for _, r := range reminders {
		if r.Sent {
			continue
		}
		if !r.ScheduledFor.After(now) {
			due = append(due, r)
		}
	}
	return due
}
