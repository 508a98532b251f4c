// Package run реализует HTTP-обработчик запуска прохода по напоминаниям.
//
// Маршрут открытый, но защищен секретным ключом в query-параметре:
// его дергает внешний мониторинг по расписанию, без JWT.
package run

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/charge-reminder/internal/http/response"
	"github.com/magabrotheeeer/charge-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/charge-reminder/internal/models"
	"github.com/magabrotheeeer/charge-reminder/internal/services/dispatch"
)

// Handler управляет HTTP-запросами на запуск прохода.
type Handler struct {
	log     *slog.Logger
	service Service
	runKey  string
}

// Service описывает интерфейс запуска прохода по напоминаниям.
type Service interface {
	RunSweep(ctx context.Context) (models.DispatchSummary, error)
}

// New создает новый Handler с переданными логгером, сервисом и секретным ключом.
func New(log *slog.Logger, service Service, runKey string) *Handler {
	return &Handler{
		log:     log,
		service: service,
		runKey:  runKey,
	}
}

// ServeHTTP godoc
// @Summary Запустить проход по напоминаниям
// @Description Обрабатывает все наступившие напоминания и возвращает сводку рассылки.
// @Tags Reminders
// @Produce  json
// @Param key query string true "Секретный ключ запуска"
// @Success 200 {object} models.DispatchSummary "Сводка рассылки"
// @Failure 401 {object} response.ErrorResponse "Неверный ключ"
// @Failure 409 {object} response.ErrorResponse "Проход уже выполняется"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /reminders/run [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reminder.run"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	key := r.URL.Query().Get("key")
	if h.runKey == "" || key != h.runKey {
		log.Error("invalid or missing run key")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	summary, err := h.service.RunSweep(r.Context())
	if err != nil {
		if errors.Is(err, dispatch.ErrSweepBusy) {
			log.Warn("sweep already in progress")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("sweep already in progress"))
			return
		}
		log.Error("sweep failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process reminders"))
		return
	}

	log.Info("sweep finished",
		slog.Int("processed", summary.Processed),
		slog.Int("sent", summary.Sent),
		slog.Int("failed", summary.Failed))
	render.JSON(w, r, response.OKWithData(summary))
}
