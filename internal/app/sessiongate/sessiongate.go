// Package sessiongate собирает сервис шлюза сессий из хранилища, кэша,
// брокера и HTTP-слоя.
package sessiongate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/finance-tracker/internal/cache"
	"github.com/magabrotheeeer/finance-tracker/internal/config"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/clock"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/finance-tracker/internal/migrations"
	"github.com/magabrotheeeer/finance-tracker/internal/services/auth"
	"github.com/magabrotheeeer/finance-tracker/internal/services/sessions"
	"github.com/magabrotheeeer/finance-tracker/internal/session"
	"github.com/magabrotheeeer/finance-tracker/internal/storage/repository"

	"github.com/streadway/amqp"
)

const shutdownTimeout = 15 * time.Second

// App сервис шлюза сессий.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *repository.Storage
	cache     *cache.Cache
	amqp      *amqp.Connection
	publisher *rabbitmq.Publisher
	sessions  *sessions.Manager
}

// New поднимает зависимости и собирает HTTP-сервер. ctx ограничивает
// время жизни фоновых задач сессий.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "sessiongate.New"

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}

	deps := sessions.Deps{
		Accounts: db,
		Tickets:  db,
		Revoker:  cacheRedis,
		Clock:    clock.System(),
		Log:      logger,
	}
	if cfg.RabbitMQURL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitRetries, cfg.RabbitDelay)
		if err != nil {
			app.closeStores()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange)
		if err != nil {
			_ = conn.Close()
			app.closeStores()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.amqp = conn
		app.publisher = rabbitmq.NewPublisher(ch, cfg.Exchange)
		deps.Events = app.publisher
	} else {
		logger.Info("rabbitmq url is empty, decision events are disabled")
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := auth.NewService(db, db, jwtMaker, cacheRedis, logger)

	app.sessions = sessions.NewManager(ctx, deps, sessions.Options{
		Routes:            routesFromConfig(cfg.Routes),
		RecheckInterval:   cfg.RecheckInterval,
		HeartbeatInterval: cfg.HeartbeatInterval,
		IdleTTL:           cfg.IdleTTL,
	})
	app.sessions.StartSweeper(cfg.SweepInterval)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Auth:     authService,
		Sessions: app.sessions,
		Storage:  db,
		Cache:    cacheRedis,
	}, cfg.HTTPServer)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run обслуживает HTTP до отмены ctx, затем корректно останавливает сервер
// и закрывает сессии и соединения.
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

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}

	a.sessions.Close()
	if a.publisher != nil {
		if cerr := a.publisher.Close(); cerr != nil {
			a.logger.Warn("failed to close rabbitmq channel", sl.Err(cerr))
		}
		if cerr := a.amqp.Close(); cerr != nil {
			a.logger.Warn("failed to close rabbitmq connection", sl.Err(cerr))
		}
	}
	a.closeStores()
	return err
}

func (a *App) closeStores() {
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close postgres", sl.Err(err))
	}
}

func routesFromConfig(r config.Routes) session.Routes {
	return session.Routes{
		Entry:     r.Entry,
		Landing:   r.Landing,
		Home:      r.Home,
		Expired:   r.Expired,
		AppPrefix: r.AppPrefix,
		Public:    r.Public,
	}
}
