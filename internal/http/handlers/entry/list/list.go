// Package list реализует HTTP-обработчик для получения списка записей о сборах.
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

// Handler управляет HTTP-запросами на получение списка записей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка записей.
type Service interface {
	List(ctx context.Context, limit, offset int) ([]*models.Entry, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список записей о сборах
// @Description Возвращает записи о сборах с пагинацией, новые первыми.
// @Tags Entries
// @Produce  json
// @Param limit query int false "Максимум записей в ответе"
// @Param offset query int false "Смещение выборки"
// @Success 200 {object} map[string]any "Список записей"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /entries [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entry.list"
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

	entries, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list entries", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list entries"))
		return
	}

	log.Info("entries listed", slog.Int("count", len(entries)))
	render.JSON(w, r, response.OKWithData(entries))
}
