// Package create реализует HTTP-обработчик для создания новых записей о сборах.
//
// Handler принимает JSON-запрос с данными записи, валидирует их, извлекает
// данные сборщика из контекста, вызывает бизнес-логику создания записи через
// сервис и возвращает ID созданной записи в JSON-формате.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/charge-reminder/internal/http/middlewarectx"
	"github.com/magabrotheeeer/charge-reminder/internal/http/response"
	"github.com/magabrotheeeer/charge-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/charge-reminder/internal/models"
)

// Handler управляет HTTP-запросами на создание записей о сборах.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания записи.
type Service interface {
	Create(ctx context.Context, collectorUID, collectorName string, req models.DummyEntry) (string, error)
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
// @Summary Создать запись о сборе
// @Description Создает новую запись о сборе с клиента. Возвращает ID созданной записи.
// @Tags Entries
// @Accept  json
// @Produce  json
// @Param request body models.DummyEntry true "Данные новой записи"
// @Success 201 {object} map[string]any "Успешное создание записи"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при создании записи"
// @Router /entries [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entry.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyEntry
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

	collectorUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || collectorUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	collectorName, _ := r.Context().Value(middlewarectx.UserName).(string)

	id, err := h.service.Create(r.Context(), collectorUID, collectorName, req)
	if err != nil {
		log.Error("failed to create entry", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create entry"))
		return
	}

	log.Info("entry created", slog.String("id", id))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"entry_id": id,
	}))
}
