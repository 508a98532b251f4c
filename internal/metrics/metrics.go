// Package metrics содержит счетчики Prometheus для наблюдения за рассылкой.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemindersProcessed считает напоминания, помеченные отправленными.
	RemindersProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "charge_reminder_reminders_processed_total",
		Help: "Number of reminders marked as sent.",
	})

	// EmailsSent считает успешно отправленные письма.
	EmailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "charge_reminder_emails_sent_total",
		Help: "Number of reminder emails sent successfully.",
	})

	// EmailsFailed считает неудачные попытки отправки.
	EmailsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "charge_reminder_emails_failed_total",
		Help: "Number of reminder emails that failed to send.",
	})

	// SweepsSkipped считает пропущенные тики, когда прошлый проход еще не завершился.
	SweepsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "charge_reminder_sweeps_skipped_total",
		Help: "Number of sweep ticks skipped because a sweep was already running.",
	})
)
