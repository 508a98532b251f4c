// Package schedule реализует HTTP-обработчик планирования напоминаний.
//
// Дата приходит строкой в формате 2006-01-02; непарсибельная или
// отсутствующая дата отклоняется без каких-либо побочных эффектов.
package schedule

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/charge-reminder/internal/http/middlewarectx"
	"github.com/magabrotheeeer/charge-reminder/internal/http/response"
	"github.com/magabrotheeeer/charge-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/charge-reminder/internal/models"
)

// Handler управляет HTTP-запросами на планирование напоминаний.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики планирования.
type Service interface {
	Schedule(ctx context.Context, scheduledFor time.Time, createdBy string) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Запланировать напоминание
// @Description Создает напоминание на заданную дату. В момент наступления письма уйдут всем неоплаченным записям с почтой.
// @Tags Reminders
// @Accept  json
// @Produce  json
// @Param request body models.DummyReminder true "Дата напоминания в формате 2006-01-02"
// @Success 201 {object} map[string]any "Напоминание создано"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или дата"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /reminders/schedule [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reminder.schedule"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyReminder
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	scheduledFor, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		log.Error("invalid date format", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid date format, expected 2006-01-02"))
		return
	}

	createdBy, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || createdBy == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id, err := h.service.Schedule(r.Context(), scheduledFor, createdBy)
	if err != nil {
		log.Error("failed to schedule reminder", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not schedule reminder"))
		return
	}

	log.Info("reminder scheduled", slog.String("id", id))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"reminder_id":   id,
		"scheduled_for": scheduledFor,
	}))
}
