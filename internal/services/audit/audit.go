// Package audit сохраняет отчеты о проходах рассылки в журнал для разбора инцидентов.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/charge-reminder/internal/models"
)

// Repository определяет методы для записи отчетов в хранилище.
type Repository interface {
	SaveDispatchReport(ctx context.Context, report models.DispatchReport) (int, error)
}

// Service обрабатывает события отчетов из брокера сообщений.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// HandleReport разбирает сообщение с итогами прохода и сохраняет его.
// Ошибка разбора возвращается наверх, чтобы сообщение ушло в повторную доставку.
func (s *Service) HandleReport(msg []byte) error {
	const op = "audit.HandleReport"

	var report models.DispatchReport
	if err := json.Unmarshal(msg, &report); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.SaveDispatchReport(context.Background(), report)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("dispatch report stored",
		slog.Int("id", id),
		slog.String("mode", report.Mode),
		slog.Int("processed", report.Summary.Processed),
		slog.Int("sent", report.Summary.Sent),
		slog.Int("failed", report.Summary.Failed))
	return nil
}
