// Package reminder содержит бизнес-логику планирования напоминаний.
package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/charge-reminder/internal/models"
)

// Repository определяет методы для работы с напоминаниями в хранилище.
type Repository interface {
	// CreateReminder добавляет новое напоминание и возвращает его ID.
	CreateReminder(ctx context.Context, scheduledFor time.Time, createdBy string) (string, error)
	// ListReminders возвращает список напоминаний с пагинацией.
	ListReminders(ctx context.Context, limit, offset int) ([]*models.Reminder, error)
}

// Service реализует планирование напоминаний.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Schedule создает напоминание на заданный момент времени.
// Дата наступления после создания не меняется.
func (s *Service) Schedule(ctx context.Context, scheduledFor time.Time, createdBy string) (string, error) {
	id, err := s.repo.CreateReminder(ctx, scheduledFor, createdBy)
	if err != nil {
		return "", err
	}
	s.log.Info("reminder scheduled",
		slog.String("id", id),
		slog.Time("scheduled_for", scheduledFor))
	return id, nil
}

// List возвращает список напоминаний с пагинацией.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.Reminder, error) {
	return s.repo.ListReminders(ctx, limit, offset)
}
