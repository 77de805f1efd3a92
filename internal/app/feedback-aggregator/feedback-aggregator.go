// Package feedbackaggregator собирает основное HTTP-приложение:
// хранилище, кеш, брокер сообщений, сервисы и маршруты.
package feedbackaggregator

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/feedback-aggregator/internal/auth"
	"github.com/magabrotheeeer/feedback-aggregator/internal/cache"
	"github.com/magabrotheeeer/feedback-aggregator/internal/config"
	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/jwt"
	"github.com/magabrotheeeer/feedback-aggregator/internal/migrations"
	"github.com/magabrotheeeer/feedback-aggregator/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/feedback-aggregator/internal/services/auth"
	contactservice "github.com/magabrotheeeer/feedback-aggregator/internal/services/contact"
	formservice "github.com/magabrotheeeer/feedback-aggregator/internal/services/form"
	hotelservice "github.com/magabrotheeeer/feedback-aggregator/internal/services/hotel"
	notificationservice "github.com/magabrotheeeer/feedback-aggregator/internal/services/notification"
	reviewservice "github.com/magabrotheeeer/feedback-aggregator/internal/services/review"
	"github.com/magabrotheeeer/feedback-aggregator/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection, 5, 2*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close rabbitmq connection", slog.Any("err", closeErr))
		}
		return nil, err
	}

	sessions := auth.NewRedisSessionStore(cacheRedis, cfg.SessionTTL)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	publisher := notificationservice.NewAMQPPublisher(ch)
	notificationService := notificationservice.NewNotificationService(db, publisher, logger)
	authService := authservice.NewAuthService(db, db, sessions, jwtMaker, true)
	reviewService := reviewservice.NewReviewService(db, db, db, db, notificationService, logger)
	formService := formservice.NewFormService(db, db, cacheRedis, logger)
	hotelService := hotelservice.NewHotelService(db, db, notificationService, logger)
	contactService := contactservice.NewContactService(db, db, db, notificationService, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, cfg, db,
		authService, reviewService, formService, hotelService,
		contactService, notificationService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

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
		if closeErr := a.ch.Close(); closeErr != nil {
			a.logger.Error("failed to close rabbitmq channel", slog.Any("err", closeErr))
		}
		if closeErr := a.conn.Close(); closeErr != nil {
			a.logger.Error("failed to close rabbitmq connection", slog.Any("err", closeErr))
		}
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", closeErr))
		}
		return err
	}
}
