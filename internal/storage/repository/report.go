package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/magabrotheeeer/charge-reminder/internal/models"
)

// SaveDispatchReport сохраняет отчет о проходе рассылки в журнал аудита.
func (s *Storage) SaveDispatchReport(ctx context.Context, report models.DispatchReport) (int, error) {
	const op = "storage.SaveDispatchReport"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	failures, err := json.Marshal(report.Summary.FailedDetails)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO dispatch_reports (mode, processed, sent, failed, ran_at, failures)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err = s.DB.QueryRowContext(ctx, query,
		report.Mode, report.Summary.Processed, report.Summary.Sent,
		report.Summary.Failed, report.RanAt, failures).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}
