// Package sendnow реализует HTTP-обработчик разовой рассылки.
//
// Рассылка идет всем неоплаченным записям с почтой, минуя хранилище
// напоминаний: каждый вызов безусловно шлет письма заново.
package sendnow

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/charge-reminder/internal/http/response"
	"github.com/magabrotheeeer/charge-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/charge-reminder/internal/models"
)

// Handler управляет HTTP-запросами на разовую рассылку.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс разовой рассылки.
type Service interface {
	SendNow(ctx context.Context) (models.DispatchSummary, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Разослать напоминания немедленно
// @Description Шлет письма всем неоплаченным записям с почтой, не трогая запланированные напоминания.
// @Tags Reminders
// @Produce  json
// @Success 200 {object} models.DispatchSummary "Сводка рассылки"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /reminders/send-now [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reminder.sendnow"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	summary, err := h.service.SendNow(r.Context())
	if err != nil {
		log.Error("blast failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not send reminders"))
		return
	}

	log.Info("blast finished",
		slog.Int("sent", summary.Sent),
		slog.Int("failed", summary.Failed))
	render.JSON(w, r, response.OKWithData(summary))
}
