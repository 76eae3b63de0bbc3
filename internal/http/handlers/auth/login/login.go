// Package login реализует HTTP-обработчик входа по учётным данным.
//
// После обмена учётных данных на токен открывается браузерная сессия и
// выполняется первая оценка доступа. Ответ содержит токен и состояние сессии
// с маршрутом, на который клиент должен перейти.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/finance-tracker/internal/http/response"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/finance-tracker/internal/services/auth"
	"github.com/magabrotheeeer/finance-tracker/internal/services/sessions"
	"github.com/magabrotheeeer/finance-tracker/internal/session"
)

// Request — входные данные для входа. Route — текущий маршрут клиента.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Route    string `json:"route" validate:"omitempty,startswith=/"`
}

// Service описывает проверку учётных данных.
type Service interface {
	Login(ctx context.Context, email, password string) (string, *jwt.CustomClaims, error)
}

// Sessions открывает браузерную сессию.
type Sessions interface {
	Login(ctx context.Context, claims *jwt.CustomClaims, route string) (sessions.View, error)
}

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log      *slog.Logger
	auth     Service
	sessions Sessions
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth Service, sessions Sessions) *Handler {
	return &Handler{
		log:      log,
		auth:     auth,
		sessions: sessions,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет учётные данные, открывает сессию и возвращает токен и состояние сессии.
// @Description Для заблокированного аккаунта токен не выдаётся, а состояние содержит алерт.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} response.Response "Состояние сессии"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	token, claims, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		log.Warn("invalid credentials")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	}
	if err != nil {
		log.Error("login failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to login"))
		return
	}

	view, err := h.sessions.Login(r.Context(), claims, req.Route)
	if err != nil {
		log.Error("failed to open session", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to open session"))
		return
	}

	data := map[string]any{"session": view}
	if view.Phase == session.PhaseAuthenticated {
		data["token"] = token
	}
	log.Info("login finished", slog.String("user_id", claims.Subject), slog.String("phase", string(view.Phase)))
	render.JSON(w, r, response.StatusOKWithData(data))
}
