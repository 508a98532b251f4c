// Package dispatch реализует ядро сервиса: определение наступивших
// напоминаний, рассылку писем всем неоплаченным записям и фиксацию
// результата. Напоминание не привязано к записям - связь "это напоминание
// сработало, этим клиентам ушли письма" возникает только в момент прохода.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/charge-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/charge-reminder/internal/metrics"
	"github.com/magabrotheeeer/charge-reminder/internal/models"
)

const (
	mailSubject = "Reminder: Pending Venue Charges"

	mailBodyTemplate = `Dear %s,

This is a gentle reminder that your venue charges are still pending.
Kindly arrange the payment at your earliest convenience to avoid any delay in processing.

If you have already made the payment, please ignore this message or share the confirmation.

Thank you for your prompt attention.`

	// Предел одновременных отправок внутри одного прохода.
	maxConcurrentSends = 10
)

// ReminderRepository определяет методы для работы с напоминаниями в хранилище.
type ReminderRepository interface {
	// FindUnsent возвращает все необработанные напоминания.
	FindUnsent(ctx context.Context) ([]*models.Reminder, error)
	// MarkReminderSent помечает напоминание обработанным.
	MarkReminderSent(ctx context.Context, id string) error
}

// EntryRepository определяет выборку записей-получателей рассылки.
type EntryRepository interface {
	// FindPendingWithEmail возвращает неоплаченные записи с непустой почтой.
	FindPendingWithEmail(ctx context.Context) ([]*models.Entry, error)
}

// Sender описывает отправку одного письма с таймаутом на попытку.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body, cc string) error
	Preflight(ctx context.Context) error
}

// ReportPublisher публикует отчет о проходе для журнала аудита.
type ReportPublisher interface {
	Publish(report models.DispatchReport) error
}

// Service оркестрирует проход рассылки: резолвер наступивших напоминаний,
// выборку получателей, ограниченный по параллельности веер отправок и
// фиксацию sent-флага после того, как все попытки по напоминанию завершились.
type Service struct {
	reminders   ReminderRepository
	entries     EntryRepository
	sender      Sender
	publisher   ReportPublisher // может быть nil, аудит best-effort
	oversightCC string
	// maxReminderAge ограничивает повторную обработку напоминаний без
	// получателей. 0 означает обрабатывать бессрочно.
	maxReminderAge time.Duration
	log            *slog.Logger

	// sweepMu сериализует проходы по напоминаниям: пересекающиеся проходы
	// гонялись бы за пометкой одних и тех же напоминаний.
	sweepMu sync.Mutex
}

// New создает новый экземпляр Service.
func New(reminders ReminderRepository, entries EntryRepository, sender Sender,
	publisher ReportPublisher, oversightCC string, maxReminderAge time.Duration,
	log *slog.Logger) *Service {
	return &Service{
		reminders:      reminders,
		entries:        entries,
		sender:         sender,
		publisher:      publisher,
		oversightCC:    oversightCC,
		maxReminderAge: maxReminderAge,
		log:            log,
	}
}

// RunSweep обрабатывает все наступившие напоминания: каждому неоплаченному
// клиенту с почтой уходит письмо, после чего напоминание помечается
// обработанным независимо от числа успешных отправок. Повторный вызов во
// время работающего прохода возвращает ErrSweepBusy и ничего не трогает.
func (s *Service) RunSweep(ctx context.Context) (models.DispatchSummary, error) {
	const op = "dispatch.RunSweep"

	if !s.sweepMu.TryLock() {
		metrics.SweepsSkipped.Inc()
		s.log.Warn("sweep already in progress, skipping")
		return models.DispatchSummary{}, ErrSweepBusy
	}
	defer s.sweepMu.Unlock()

	now := time.Now().UTC()

	unsent, err := s.reminders.FindUnsent(ctx)
	if err != nil {
		return models.DispatchSummary{}, fmt.Errorf("%s: %w", op, err)
	}

	due := DueReminders(now, unsent)
	if len(due) == 0 {
		s.log.Info("no due reminders")
		return models.DispatchSummary{}, nil
	}
	s.log.Info("found due reminders", slog.Int("count", len(due)))

	pending, err := s.entries.FindPendingWithEmail(ctx)
	if err != nil {
		return models.DispatchSummary{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(pending) == 0 {
		// Напоминания остаются необработанными: появившиеся позже записи
		// все еще должны получить письмо на следующем проходе.
		s.log.Info("no pending entries with email, reminders left unsent")
		s.expireStale(ctx, now, due)
		return models.DispatchSummary{}, nil
	}

	if err := s.sender.Preflight(ctx); err != nil {
		s.log.Error("mail transport preflight failed", sl.Err(err))
		return models.DispatchSummary{}, fmt.Errorf("%s: %w", op, err)
	}

	var summary models.DispatchSummary
	for _, reminder := range due {
		sent, failures := s.fanOut(ctx, pending)
		summary.Sent += sent
		summary.Failed += len(failures)
		summary.FailedDetails = append(summary.FailedDetails, failures...)

		// Пометка выполняется только после завершения всех попыток по
		// напоминанию - ровно один раз за проход, даже если часть отправок
		// не удалась. Это защита от бесконечного дублирования писем.
		if err := s.reminders.MarkReminderSent(ctx, reminder.ID); err != nil {
			s.log.Error("critical inconsistency: emails sent but reminder not marked, duplicates possible on next sweep",
				slog.String("reminder_id", reminder.ID), sl.Err(err))
		} else {
			metrics.RemindersProcessed.Inc()
		}
		summary.Processed++
	}

	s.log.Info("sweep finished",
		slog.Int("processed", summary.Processed),
		slog.Int("sent", summary.Sent),
		slog.Int("failed", summary.Failed))
	s.publishReport(models.DispatchModeSweep, summary, now)

	return summary, nil
}

// SendNow выполняет разовую рассылку всем неоплаченным записям с почтой,
// не обращаясь к хранилищу напоминаний и не отслеживая идемпотентность:
// каждый вызов безусловно шлет письма заново.
func (s *Service) SendNow(ctx context.Context) (models.DispatchSummary, error) {
	const op = "dispatch.SendNow"

	now := time.Now().UTC()

	pending, err := s.entries.FindPendingWithEmail(ctx)
	if err != nil {
		return models.DispatchSummary{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(pending) == 0 {
		s.log.Info("no pending entries with email, nothing to send")
		return models.DispatchSummary{}, nil
	}

	if err := s.sender.Preflight(ctx); err != nil {
		s.log.Error("mail transport preflight failed", sl.Err(err))
		return models.DispatchSummary{}, fmt.Errorf("%s: %w", op, err)
	}

	var summary models.DispatchSummary
	sent, failures := s.fanOut(ctx, pending)
	summary.Sent = sent
	summary.Failed = len(failures)
	summary.FailedDetails = failures

	s.log.Info("blast finished",
		slog.Int("sent", summary.Sent),
		slog.Int("failed", summary.Failed))
	s.publishReport(models.DispatchModeBlast, summary, now)

	return summary, nil
}

// fanOut отправляет письма всем получателям с ограниченной параллельностью.
// Ошибка по одному получателю не прерывает отправку остальным. Возвращает
// число успешных отправок и детали по каждой неудаче.
func (s *Service) fanOut(ctx context.Context, entries []*models.Entry) (int, []models.SendFailure) {
	type sendResult struct {
		recipient string
		err       error
	}

	sem := make(chan struct{}, maxConcurrentSends)
	results := make(chan sendResult, len(entries))

	for _, entry := range entries {
		sem <- struct{}{}
		go func(entry *models.Entry) {
			defer func() { <-sem }()
			body := fmt.Sprintf(mailBodyTemplate, entry.Name)
			err := s.sender.Send(ctx, entry.Email, mailSubject, body, s.oversightCC)
			results <- sendResult{recipient: entry.Email, err: err}
		}(entry)
	}

	// Счетчики накапливает единственный читатель канала результатов.
	var sent int
	var failures []models.SendFailure
	for range entries {
		res := <-results
		if res.err != nil {
			s.log.Error("failed to send email", slog.String("recipient", res.recipient), sl.Err(res.err))
			failures = append(failures, models.SendFailure{
				Recipient: res.recipient,
				Error:     res.err.Error(),
			})
			metrics.EmailsFailed.Inc()
			continue
		}
		sent++
		metrics.EmailsSent.Inc()
	}
	return sent, failures
}

// expireStale помечает обработанными напоминания, которые дольше
// maxReminderAge ждут появления хотя бы одного получателя. При нулевой
// настройке такие напоминания живут до первого успешного прохода.
func (s *Service) expireStale(ctx context.Context, now time.Time, due []*models.Reminder) {
	if s.maxReminderAge <= 0 {
		return
	}
	for _, reminder := range due {
		if now.Sub(reminder.ScheduledFor) <= s.maxReminderAge {
			continue
		}
		if err := s.reminders.MarkReminderSent(ctx, reminder.ID); err != nil {
			s.log.Error("failed to expire stale reminder", slog.String("reminder_id", reminder.ID), sl.Err(err))
			continue
		}
		s.log.Warn("expired stale reminder with no recipients",
			slog.String("reminder_id", reminder.ID),
			slog.Time("scheduled_for", reminder.ScheduledFor))
	}
}

func (s *Service) publishReport(mode string, summary models.DispatchSummary, ranAt time.Time) {
	if s.publisher == nil {
		return
	}
	report := models.DispatchReport{
		Mode:    mode,
		Summary: summary,
		RanAt:   ranAt,
	}
	if err := s.publisher.Publish(report); err != nil {
		s.log.Error("failed to publish dispatch report", sl.Err(err))
	}
}
