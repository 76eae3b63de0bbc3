// Package logout реализует выход из аккаунта.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/finance-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/finance-tracker/internal/http/response"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/finance-tracker/internal/services/sessions"
)

// Sessions закрывает сессию с выходом из аккаунта.
type Sessions interface {
	Logout(ctx context.Context, claims *jwt.CustomClaims) (sessions.View, error)
}

// Handler обрабатывает выход.
type Handler struct {
	log      *slog.Logger
	sessions Sessions
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, sessions Sessions) *Handler {
	return &Handler{log: log, sessions: sessions}
}

// ServeHTTP godoc
// @Summary Выход из аккаунта
// @Description Сбрасывает отметку присутствия, отзывает токен и возвращает маршрут лендинга.
// @Tags Session
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Состояние сессии"
// @Failure 401 {object} response.ErrorResponse "Нет действующего токена"
// @Failure 500 {object} response.ErrorResponse "Токен не удалось отозвать"
// @Router /session/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	claims, ok := middlewarectx.ClaimsFromContext(r.Context())
	if !ok {
		log.Error("user identification missing")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	view, err := h.sessions.Logout(r.Context(), claims)
	if err != nil {
		log.Error("logout failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to logout"))
		return
	}
	log.Info("user logged out", slog.String("user_id", claims.Subject))
	render.JSON(w, r, response.StatusOKWithData(view))
}
