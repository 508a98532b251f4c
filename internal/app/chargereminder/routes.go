// Package chargereminder собирает HTTP-приложение сервиса напоминаний о сборах.
package chargereminder

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/charge-reminder/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/charge-reminder/internal/http/handlers/auth/register"
	entrycreate "github.com/magabrotheeeer/charge-reminder/internal/http/handlers/entry/create"
	entrylist "github.com/magabrotheeeer/charge-reminder/internal/http/handlers/entry/list"
	entryremove "github.com/magabrotheeeer/charge-reminder/internal/http/handlers/entry/remove"
	entryupdate "github.com/magabrotheeeer/charge-reminder/internal/http/handlers/entry/update"
	"github.com/magabrotheeeer/charge-reminder/internal/http/handlers/health"
	reminderlist "github.com/magabrotheeeer/charge-reminder/internal/http/handlers/reminder/list"
	"github.com/magabrotheeeer/charge-reminder/internal/http/handlers/reminder/run"
	"github.com/magabrotheeeer/charge-reminder/internal/http/handlers/reminder/schedule"
	"github.com/magabrotheeeer/charge-reminder/internal/http/handlers/reminder/sendnow"
	"github.com/magabrotheeeer/charge-reminder/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/charge-reminder/internal/services/auth"
	dispatchservice "github.com/magabrotheeeer/charge-reminder/internal/services/dispatch"
	entryservice "github.com/magabrotheeeer/charge-reminder/internal/services/entry"
	reminderservice "github.com/magabrotheeeer/charge-reminder/internal/services/reminder"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.Service,
	entryService *entryservice.Service,
	reminderService *reminderservice.Service,
	dispatchService *dispatchservice.Service,
	runKey string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Запуск прохода защищен секретным ключом, а не JWT: маршрут
		// дергает внешний мониторинг по расписанию.
		r.Get("/reminders/run", run.New(logger, dispatchService, runKey).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/entries", entrycreate.New(logger, entryService).ServeHTTP)
			r.Get("/entries", entrylist.New(logger, entryService).ServeHTTP)
			r.Put("/entries/{id}", entryupdate.New(logger, entryService).ServeHTTP)
			r.Delete("/entries/{id}", entryremove.New(logger, entryService).ServeHTTP)
			r.Post("/reminders/schedule", schedule.New(logger, reminderService).ServeHTTP)
			r.Get("/reminders", reminderlist.New(logger, reminderService).ServeHTTP)
			r.Post("/reminders/send-now", sendnow.New(logger, dispatchService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
