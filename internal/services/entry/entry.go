// Package entry содержит бизнес-логику для управления записями о сборах и их кешированием.
package entry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/charge-reminder/internal/models"
)

// Repository определяет методы для работы с записями о сборах в хранилище.
type Repository interface {
	// CreateEntry добавляет новую запись и возвращает её ID.
	CreateEntry(ctx context.Context, entry models.Entry) (string, error)
	// ReadEntry возвращает запись по ID.
	ReadEntry(ctx context.Context, id string) (*models.Entry, error)
	// UpdateEntry обновляет переданные поля записи по ID.
	UpdateEntry(ctx context.Context, id string, req models.DummyEntryUpdate) (int, error)
	// RemoveEntry удаляет запись по ID и возвращает количество удалённых строк.
	RemoveEntry(ctx context.Context, id string) (int, error)
	// ListEntries возвращает список записей с пагинацией.
	ListEntries(ctx context.Context, limit, offset int) ([]*models.Entry, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Service реализует бизнес-логику работы с записями, включая кеширование.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create создает новую запись о сборе и возвращает её ID.
// Имя сборщика фиксируется как снимок на момент создания.
func (s *Service) Create(ctx context.Context, collectorUID, collectorName string, req models.DummyEntry) (string, error) {
	status := req.Status
	if status == "" {
		status = models.StatusPending
	}

	entry := models.Entry{
		Name:            req.Name,
		Email:           req.Email,
		Charges:         req.Charges,
		Status:          status,
		CollectedBy:     collectorUID,
		CollectedByName: collectorName,
	}

	id, err := s.repo.CreateEntry(ctx, entry)
	if err != nil {
		return "", err
	}

	s.log.Info("created new entry", slog.String("id", id))

	cacheKey := fmt.Sprintf("entry:%s", id)
	if err := s.cache.Set(cacheKey, entry, time.Hour); err != nil {
		s.log.Warn("failed to cache entry", slog.String("key", cacheKey), slog.Any("err", err))
	}

	return id, nil
}

// Read возвращает запись по ID, используя кеш или репозиторий.
func (s *Service) Read(ctx context.Context, id string) (*models.Entry, error) {
	var result *models.Entry
	cacheKey := fmt.Sprintf("entry:%s", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		return nil, err
	}
	if found {
		return result, nil
	}
	result, err = s.repo.ReadEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if result != nil {
		if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
			s.log.Warn("failed to add to cache", slog.String("key", cacheKey), slog.Any("err", err))
		}
	}
	return result, nil
}

// Update обновляет запись и инвалидирует кеш. Возвращает количество
// изменённых строк; ноль означает, что записи не существует.
func (s *Service) Update(ctx context.Context, id string, req models.DummyEntryUpdate) (int, error) {
	res, err := s.repo.UpdateEntry(ctx, id, req)
	if err != nil {
		return 0, err
	}

	cacheKey := fmt.Sprintf("entry:%s", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return res, nil
}

// Remove удаляет запись по ID и инвалидирует кеш.
func (s *Service) Remove(ctx context.Context, id string) (int, error) {
	cacheKey := fmt.Sprintf("entry:%s", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}

	count, err := s.repo.RemoveEntry(ctx, id)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// List возвращает список записей с пагинацией, новые первыми.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.Entry, error) {
	return s.repo.ListEntries(ctx, limit, offset)
}
