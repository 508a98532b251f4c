// Package list реализует HTTP-обработчик для получения списка напоминаний.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/charge-reminder/internal/http/response"
	"github.com/magabrotheeeer/charge-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/charge-reminder/internal/models"
)

const (
	defaultLimit  = 50
	defaultOffset = 0
)

// Handler управляет HTTP-запросами на получение списка напоминаний.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка напоминаний.
type Service interface {
	List(ctx context.Context, limit, offset int) ([]*models.Reminder, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список напоминаний
// @Description Возвращает напоминания с пагинацией, ближайшие первыми.
// @Tags Reminders
// @Produce  json
// @Param limit query int false "Максимум напоминаний в ответе"
// @Param offset query int false "Смещение выборки"
// @Success 200 {object} map[string]any "Список напоминаний"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /reminders [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reminder.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	offset := defaultOffset
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	reminders, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list reminders", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list reminders"))
		return
	}

	log.Info("reminders listed", slog.Int("count", len(reminders)))
	render.JSON(w, r, response.OKWithData(reminders))
}
