// Package middlewarectx содержит HTTP middleware: проверку токена сессии,
// ограничение частоты запросов и проверку роли администратора.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/finance-tracker/internal/http/response"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// Claims ключ claims токена в контексте.
const Claims Key = "claims"

// Authenticator проверяет токен сессии.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*jwt.CustomClaims, error)
}

// JWTMiddleware проверяет Bearer-токен (подпись, срок, отзыв) и кладёт его
// claims в контекст. Иначе отвечает 401 Unauthorized.
func JWTMiddleware(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := auth.Authenticate(r.Context(), tokenStr)
			if err != nil {
				log.Warn("invalid, expired or revoked token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			ctx := context.WithValue(r.Context(), Claims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext возвращает claims, положенные JWTMiddleware.
func ClaimsFromContext(ctx context.Context) (*jwt.CustomClaims, bool) {
	claims, ok := ctx.Value(Claims).(*jwt.CustomClaims)
	return claims, ok && claims != nil
}
