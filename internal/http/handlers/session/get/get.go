// Package get отдаёт состояние браузерной сессии и восстанавливает её
// после перезагрузки страницы.
package get

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

// Sessions находит или восстанавливает сессию токена.
type Sessions interface {
	Get(ctx context.Context, claims *jwt.CustomClaims, route string) (sessions.View, error)
}

// Handler обрабатывает запросы состояния сессии.
type Handler struct {
	log      *slog.Logger
	sessions Sessions
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, sessions Sessions) *Handler {
	return &Handler{log: log, sessions: sessions}
}

// ServeHTTP godoc
// @Summary Состояние сессии
// @Description Возвращает состояние сессии и маршрут клиента. Если живой сессии нет, восстанавливает её по токену.
// @Tags Session
// @Produce  json
// @Security BearerAuth
// @Param route query string false "Текущий маршрут клиента"
// @Success 200 {object} response.Response "Состояние сессии"
// @Failure 401 {object} response.ErrorResponse "Нет действующего токена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /session [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.get"

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

	view, err := h.sessions.Get(r.Context(), claims, r.URL.Query().Get("route"))
	if err != nil {
		log.Error("failed to get session", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to get session"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(view))
}
