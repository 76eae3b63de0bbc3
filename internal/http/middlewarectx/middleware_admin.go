package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/finance-tracker/internal/http/response"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/finance-tracker/internal/models"
	"github.com/magabrotheeeer/finance-tracker/internal/storage/repository"
)

// AccountReader читает запись аккаунта.
type AccountReader interface {
	GetAccount(ctx context.Context, userID string) (*models.Account, error)
}

// AdminMiddleware пропускает только активных администраторов. Роль читается
// из записи аккаунта, а не из токена, чтобы снятие роли действовало сразу.
func AdminMiddleware(accounts AccountReader, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AdminMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			acc, err := accounts.GetAccount(r.Context(), claims.Subject)
			if err != nil && !errors.Is(err, repository.ErrAccountNotFound) {
				log.Error("failed to get account", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}
			if acc == nil || acc.Role != models.RoleAdmin || acc.Status == models.StatusBlocked {
				log.Warn("admin access denied", slog.String("user_id", claims.Subject))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
