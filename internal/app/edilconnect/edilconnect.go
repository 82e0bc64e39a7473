// Package edilconnect assembles the API server: storage, cache, object
// store, broker and billing client are built once here and threaded into
// the services and handlers.
package edilconnect

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/edilconnect/platform/internal/billing"
	"github.com/edilconnect/platform/internal/cache"
	"github.com/edilconnect/platform/internal/config"
	"github.com/edilconnect/platform/internal/files"
	"github.com/edilconnect/platform/internal/lib/jwt"
	"github.com/edilconnect/platform/internal/migrations"
	"github.com/edilconnect/platform/internal/rabbitmq"
	authservice "github.com/edilconnect/platform/internal/services/auth"
	projectservice "github.com/edilconnect/platform/internal/services/project"
	subservice "github.com/edilconnect/platform/internal/services/subscription"
	verifservice "github.com/edilconnect/platform/internal/services/verification"
	"github.com/edilconnect/platform/internal/storage/repository"
)

// App is the assembled API server with its owned connections.
type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	rabbitConn *amqp.Connection
}

// New builds the App from configuration: opens the database and runs the
// migrations, connects cache, object store and broker, and registers every
// route on a fresh router.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	fileStore, err := files.NewMinioStore(ctx, cfg.ObjectStore)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitURL, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(rabbitConn, cfg.EmailQueue)
	if err != nil {
		return nil, err
	}
	emailPublisher := rabbitmq.NewEmailPublisher(ch)

	jwtMaker := jwt.NewMaker(cfg.JWT.AccessSecret, cfg.JWT.AccessTTL,
		cfg.JWT.RefreshSecret, cfg.JWT.RefreshTTL)
	billingClient := billing.NewClient(cfg.Billing)

	authService := authservice.NewAuthService(db, db, jwtMaker, emailPublisher,
		cfg.AdminCode, cfg.Verification.EmailTokenTTL, cfg.Verification.BaseURL, logger)
	verificationService := verifservice.NewVerificationService(db, fileStore, logger)
	subscriptionService := subservice.NewSubscriptionService(db, db, billingClient,
		cacheRedis, cfg.Billing.SuccessURL, cfg.Billing.CancelURL, logger)
	projectService := projectservice.NewProjectService(db, fileStore, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, authService, verificationService,
		subscriptionService, projectService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		rabbitConn: rabbitConn,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully and closes the owned connections.
func (a *App) Run(ctx context.Context) error {
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
		_ = a.rabbitConn.Close()
		_ = a.db.DB.Close()
		return err
	}
}
