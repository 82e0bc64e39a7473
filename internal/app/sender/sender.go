// Package sender assembles the notification-sender worker: it consumes the
// verification email queue and delivers over SMTP.
package sender

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/edilconnect/platform/internal/config"
	"github.com/edilconnect/platform/internal/lib/smtp"
	"github.com/edilconnect/platform/internal/rabbitmq"
	senderservice "github.com/edilconnect/platform/internal/services/sender"
)

// App is the assembled worker with its owned broker connection.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	emailQueue    string
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New connects the broker and builds the sender service.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitURL, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, cfg.EmailQueue)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := senderservice.NewSenderService(transport, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		emailQueue:    cfg.EmailQueue,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run consumes the email queue until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumeMessages(ctx, a.ch, a.emailQueue, a.senderService.SendVerificationEmail)
	if err != nil {
		a.logger.Error("failed to start email consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	return nil
}
