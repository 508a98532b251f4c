// Package audit собирает воркер, читающий отчеты рассылки из брокера.
package audit

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/charge-reminder/internal/config"
	"github.com/magabrotheeeer/charge-reminder/internal/lib/rabbitmq"
	auditservice "github.com/magabrotheeeer/charge-reminder/internal/services/audit"
	"github.com/magabrotheeeer/charge-reminder/internal/storage/repository"
)

type App struct {
	conn         *amqp.Connection
	ch           *amqp.Channel
	auditService *auditservice.Service
	logger       *slog.Logger
	db           *repository.Storage
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetDispatchQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	auditService := auditservice.NewService(db, logger)

	return &App{
		conn:         conn,
		ch:           ch,
		auditService: auditService,
		logger:       logger,
		db:           db,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, "dispatch_report_queue", a.auditService.HandleReport)
	if err != nil {
		a.logger.Error("failed to start dispatch_report_queue consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("audit worker shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database", slog.Any("err", err))
	}
	return nil
}
