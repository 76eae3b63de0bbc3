// Package route принимает от клиента маршрут, на который он перешёл сам.
package route

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/finance-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/finance-tracker/internal/http/response"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/finance-tracker/internal/services/sessions"
)

// Request — новый маршрут клиента.
type Request struct {
	Route string `json:"route" validate:"required,startswith=/,max=2048"`
}

// Sessions обновляет маршрут живой сессии.
type Sessions interface {
	SetRoute(claims *jwt.CustomClaims, route string) (sessions.View, error)
}

// Handler обрабатывает смену маршрута.
type Handler struct {
	log      *slog.Logger
	sessions Sessions
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, sessions Sessions) *Handler {
	return &Handler{log: log, sessions: sessions, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Смена маршрута клиента
// @Tags Session
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Маршрут"
// @Success 200 {object} response.Response "Состояние сессии"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Нет живой сессии"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /session/route [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.route"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	view, err := h.sessions.SetRoute(claims, req.Route)
	if errors.Is(err, sessions.ErrNoSession) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("no live session"))
		return
	}
	if err != nil {
		log.Error("failed to set route", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to set route"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(view))
}
