package chargereminder

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/charge-reminder/internal/config"
	"github.com/magabrotheeeer/charge-reminder/internal/lib/jwt"
	"github.com/magabrotheeeer/charge-reminder/internal/lib/rabbitmq"
	smtptransport "github.com/magabrotheeeer/charge-reminder/internal/lib/smtp"
	"github.com/magabrotheeeer/charge-reminder/internal/migrations"
	"github.com/magabrotheeeer/charge-reminder/internal/models"
	authservice "github.com/magabrotheeeer/charge-reminder/internal/services/auth"
	dispatchservice "github.com/magabrotheeeer/charge-reminder/internal/services/dispatch"
	entryservice "github.com/magabrotheeeer/charge-reminder/internal/services/entry"
	reminderservice "github.com/magabrotheeeer/charge-reminder/internal/services/reminder"
	"github.com/magabrotheeeer/charge-reminder/internal/storage/cache"
	"github.com/magabrotheeeer/charge-reminder/internal/storage/repository"
)

// App связывает все компоненты сервиса: HTTP-сервер, периодический
// проход по напоминаниям и подключения к внешним системам.
type App struct {
	server  *http.Server
	sweeper *dispatchservice.Sweeper
	logger  *slog.Logger
	db      *repository.Storage
	rmqConn *amqp.Connection
	rmqCh   *amqp.Channel
}

// reportPublisher отправляет итоги прохода в очередь аудита.
type reportPublisher struct {
	ch *amqp.Channel
}

func (p *reportPublisher) Publish(report models.DispatchReport) error {
	return rabbitmq.PublishMessage(p.ch, rabbitmq.Exchange, "report", report)
}

// New собирает приложение из конфига: хранилище, кеш, брокер,
// почтовый транспорт, сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	if err = repository.CheckDatabaseReady(db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rmqConn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	rmqCh, err := rabbitmq.SetupChannel(rmqConn, rabbitmq.GetDispatchQueues())
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	transport := smtptransport.NewTransport(cfg, logger)
	sender := dispatchservice.NewMailSender(transport, cfg.SendTimeout, logger)

	authService := authservice.NewService(db, jwtMaker)
	entryService := entryservice.NewService(db, cacheRedis, logger)
	reminderService := reminderservice.NewService(db, logger)
	dispatchService := dispatchservice.New(db, db, sender,
		&reportPublisher{ch: rmqCh}, cfg.OversightCC, cfg.MaxReminderAge, logger)
	sweeper := dispatchservice.NewSweeper(dispatchService, cfg.SweepInterval, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, entryService, reminderService,
		dispatchService, cfg.RunKey)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:  srv,
		sweeper: sweeper,
		logger:  logger,
		db:      db,
		rmqConn: rmqConn,
		rmqCh:   rmqCh,
	}, nil
}

// Run запускает HTTP-сервер и периодический проход, блокируется до
// отмены контекста или фатальной ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go a.sweeper.Run(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.rmqCh.Close()
		_ = a.rmqConn.Close()
		_ = a.db.DB.Close()
		return err
	}
}
