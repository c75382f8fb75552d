// Package reddigen собирает зависимости и HTTP-сервер приложения.
package reddigen

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/reddigen-backend/internal/auth"
	"github.com/magabrotheeeer/reddigen-backend/internal/cache"
	"github.com/magabrotheeeer/reddigen-backend/internal/config"
	"github.com/magabrotheeeer/reddigen-backend/internal/gemini"
	"github.com/magabrotheeeer/reddigen-backend/internal/lib/sl"
	"github.com/magabrotheeeer/reddigen-backend/internal/migrations"
	"github.com/magabrotheeeer/reddigen-backend/internal/rabbitmq"
	"github.com/magabrotheeeer/reddigen-backend/internal/redditrules"
	generationservice "github.com/magabrotheeeer/reddigen-backend/internal/services/generation"
	paymentservice "github.com/magabrotheeeer/reddigen-backend/internal/services/payment"
	userservice "github.com/magabrotheeeer/reddigen-backend/internal/services/user"
	"github.com/magabrotheeeer/reddigen-backend/internal/storage/repository"
)

// App объединяет HTTP-сервер и ресурсы, требующие закрытия при остановке.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New создает приложение: хранилище с миграциями, кэш, клиентов внешних
// сервисов, бизнес-сервисы и маршруты.
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

	authClient := auth.NewClient(cfg.SupabaseURL, cfg.ServiceKey)
	var verifier auth.TokenVerifier = authClient
	if cfg.SupabaseAuth.Mode == "local" {
		verifier = auth.NewLocalVerifier(cfg.JWTSecret)
	}

	geminiClient := gemini.NewClient(cfg.Gemini)
	rulesClient := redditrules.NewClient()

	var publisher paymentservice.EventPublisher
	if cfg.RabbitAddress != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitAddress, cfg.RabbitRetries, cfg.RabbitDelay)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitQueue)
		if err != nil {
			return nil, err
		}
		publisher = rabbitmq.NewPublisher(ch, cfg.RabbitQueue)
	} else {
		logger.Warn("rabbitmq address is empty, activation events disabled")
	}

	userService := userservice.New(db, authClient, logger)
	generationService := generationservice.New(db, geminiClient, logger)
	paymentService := paymentservice.New(db, publisher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, Deps{
		Verifier:          verifier,
		Cache:             cacheRedis,
		GeminiClient:      geminiClient,
		RulesClient:       rulesClient,
		UserService:       userService,
		GenerationService: generationService,
		PaymentService:    paymentService,
	})

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
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
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
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", sl.Err(closeErr))
		}
		return err
	}
}
