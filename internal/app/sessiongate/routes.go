package sessiongate

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/finance-tracker/internal/cache"
	"github.com/magabrotheeeer/finance-tracker/internal/config"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/admin/accounts"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/health"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/session/get"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/session/logout"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/session/route"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/subscription/renew"
	"github.com/magabrotheeeer/finance-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/finance-tracker/internal/services/auth"
	"github.com/magabrotheeeer/finance-tracker/internal/services/sessions"
	"github.com/magabrotheeeer/finance-tracker/internal/storage/repository"
)

// Services зависимости HTTP-слоя.
type Services struct {
	Auth     *auth.Service
	Sessions *sessions.Manager
	Storage  *repository.Storage
	Cache    *cache.Cache
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services, cfg config.HTTPServer) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimitRPS, cfg.RateBurst))
			r.Post("/auth/register", register.New(logger, s.Auth).ServeHTTP)
			r.Post("/auth/login", login.New(logger, s.Auth, s.Sessions).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Get("/session", get.New(logger, s.Sessions).ServeHTTP)
			r.Put("/session/route", route.New(logger, s.Sessions).ServeHTTP)
			r.Post("/session/logout", logout.New(logger, s.Sessions).ServeHTTP)
			r.Post("/subscription/renew", renew.New(logger, s.Sessions).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminMiddleware(s.Storage, logger))
				r.Patch("/admin/accounts/{id}", accounts.New(logger, s.Storage).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, map[string]health.Checker{
		"postgres": s.Storage.DB.PingContext,
		"redis": func(ctx context.Context) error {
			return s.Cache.Db.Ping(ctx).Err()
		},
	}).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
