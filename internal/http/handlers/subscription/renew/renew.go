// Package renew уводит пользователя на продление подписки.
package renew

import (
	"context"
	"errors"
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

// Sessions закрывает сессию для продления подписки.
type Sessions interface {
	Renew(ctx context.Context, claims *jwt.CustomClaims) (sessions.View, error)
}

// Handler обрабатывает запрос продления.
type Handler struct {
	log      *slog.Logger
	sessions Sessions
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, sessions Sessions) *Handler {
	return &Handler{log: log, sessions: sessions}
}

// ServeHTTP godoc
// @Summary Продление подписки
// @Description Выходит из аккаунта и возвращает маршрут точки входа, где продлением занимается лендинг.
// @Tags Subscription
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Состояние сессии"
// @Failure 404 {object} response.ErrorResponse "Нет живой сессии"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /subscription/renew [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.renew"

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

	view, err := h.sessions.Renew(r.Context(), claims)
	if errors.Is(err, sessions.ErrNoSession) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("no live session"))
		return
	}
	if err != nil {
		log.Error("renew failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to renew subscription"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(view))
}
