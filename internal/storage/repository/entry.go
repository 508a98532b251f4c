package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/charge-reminder/internal/models"
)

// CreateEntry вставляет новую запись о сборе и возвращает её ID.
func (s *Storage) CreateEntry(ctx context.Context, entry models.Entry) (string, error) {
	const op = "storage.CreateEntry"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO entries (name, email, charges, status, collected_by, collected_by_name)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		entry.Name, nullString(entry.Email), entry.Charges, entry.Status,
		entry.CollectedBy, entry.CollectedByName).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadEntry возвращает запись о сборе по её ID.
func (s *Storage) ReadEntry(ctx context.Context, id string) (*models.Entry, error) {
	const op = "storage.ReadEntry"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, email, charges, status, collected_by, collected_by_name,
			      created_at, updated_at
			  FROM entries WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Entry
	var email sql.NullString
	if err := row.Scan(&result.ID, &result.Name, &email, &result.Charges, &result.Status,
		&result.CollectedBy, &result.CollectedByName, &result.CreatedAt, &result.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result.Email = email.String
	return &result, nil
}

// UpdateEntry обновляет переданные поля записи и возвращает количество изменённых строк.
// Nil-поле оставляет значение в базе без изменений.
func (s *Storage) UpdateEntry(ctx context.Context, id string, req models.DummyEntryUpdate) (int, error) {
	const op = "storage.UpdateEntry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE entries
			  SET name = COALESCE($1, name),
			      email = COALESCE($2, email),
			      charges = COALESCE($3, charges),
			      status = COALESCE($4, status),
			      updated_at = now()
			  WHERE id = $5`
	result, err := s.DB.ExecContext(ctx, query,
		req.Name, req.Email, req.Charges, req.Status, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveEntry удаляет запись о сборе по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveEntry(ctx context.Context, id string) (int, error) {
	const op = "storage.RemoveEntry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM entries WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListEntries возвращает список всех записей о сборах, новые первыми.
func (s *Storage) ListEntries(ctx context.Context, limit, offset int) ([]*models.Entry, error) {
	const op = "storage.ListEntries"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, email, charges, status, collected_by, collected_by_name,
			      created_at, updated_at
			  FROM entries
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Entry
	for rows.Next() {
		var item models.Entry
		var email sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &email, &item.Charges, &item.Status,
			&item.CollectedBy, &item.CollectedByName, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.Email = email.String
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindPendingWithEmail возвращает все неоплаченные записи с непустой почтой.
// Именно эти записи становятся получателями рассылки напоминаний.
func (s *Storage) FindPendingWithEmail(ctx context.Context) ([]*models.Entry, error) {
	const op = "storage.FindPendingWithEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, email, charges, status, collected_by, collected_by_name,
			      created_at, updated_at
			  FROM entries
			  WHERE status = $1 AND email IS NOT NULL AND email <> ''`
	rows, err := s.DB.QueryContext(ctx, query, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Entry
	for rows.Next() {
		var item models.Entry
		if err := rows.Scan(&item.ID, &item.Name, &item.Email, &item.Charges, &item.Status,
			&item.CollectedBy, &item.CollectedByName, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
