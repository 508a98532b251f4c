package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/charge-reminder/internal/models"
)

// CreateReminder вставляет новое напоминание и возвращает его ID.
func (s *Storage) CreateReminder(ctx context.Context, scheduledFor time.Time, createdBy string) (string, error) {
	const op = "storage.CreateReminder"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO reminders (scheduled_for, created_by, sent)
			  VALUES ($1, $2, false)
			  RETURNING id`
	var newID string
	if err := s.DB.QueryRowContext(ctx, query, scheduledFor, createdBy).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// FindUnsent возвращает все напоминания, которые еще не были обработаны.
func (s *Storage) FindUnsent(ctx context.Context) ([]*models.Reminder, error) {
	const op = "storage.FindUnsent"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, scheduled_for, created_by, sent, created_at
			  FROM reminders
			  WHERE sent = false
			  ORDER BY scheduled_for`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Reminder
	for rows.Next() {
		var item models.Reminder
		if err := rows.Scan(&item.ID, &item.ScheduledFor, &item.CreatedBy,
			&item.Sent, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkReminderSent помечает напоминание обработанным. Обратного перехода нет.
func (s *Storage) MarkReminderSent(ctx context.Context, id string) error {
	const op = "storage.MarkReminderSent"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE reminders SET sent = true WHERE id = $1`
	if _, err := s.DB.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListReminders возвращает список напоминаний, ближайшие первыми.
func (s *Storage) ListReminders(ctx context.Context, limit, offset int) ([]*models.Reminder, error) {
	const op = "storage.ListReminders"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, scheduled_for, created_by, sent, created_at
			  FROM reminders
			  ORDER BY scheduled_for
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Reminder
	for rows.Next() {
		var item models.Reminder
		if err := rows.Scan(&item.ID, &item.ScheduledFor, &item.CreatedBy,
			&item.Sent, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
