// Package accounts реализует административное изменение записи аккаунта:
// блокировку, смену роли и даты окончания подписки. Живые сессии замечают
// изменения при следующей периодической перепроверке.
package accounts

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/finance-tracker/internal/http/response"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/calendar"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/finance-tracker/internal/models"
)

// Request — изменяемые поля. Отсутствующее поле не меняется, пустая строка
// в subscription_expires_at снимает ограничение по сроку.
type Request struct {
	DisplayName           *string `json:"display_name" validate:"omitempty,min=1,max=100"`
	Email                 *string `json:"email" validate:"omitempty,email"`
	Role                  *string `json:"role" validate:"omitempty,oneof=user admin"`
	Status                *string `json:"status" validate:"omitempty,oneof=active blocked"`
	SubscriptionExpiresAt *string `json:"subscription_expires_at"`
}

// Accounts обновляет запись аккаунта.
type Accounts interface {
	UpdateAccount(ctx context.Context, userID string, patch models.AccountPatch) error
}

// Handler обрабатывает изменение аккаунта.
type Handler struct {
	log      *slog.Logger
	accounts Accounts
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, accounts Accounts) *Handler {
	return &Handler{log: log, accounts: accounts, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Изменение аккаунта
// @Description Частично обновляет запись аккаунта. Доступно только администраторам.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "UUID пользователя"
// @Param request body Request true "Изменяемые поля"
// @Success 200 {object} response.Response "Аккаунт обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Нет прав администратора"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /admin/accounts/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.accounts"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		log.Warn("invalid account id", slog.String("id", id))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid account id"))
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

	patch, err := req.patch()
	if err != nil {
		log.Warn("invalid expiry date", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("field SubscriptionExpiresAt must be a date in format YYYY-MM-DD"))
		return
	}
	if patch.Empty() {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("nothing to update"))
		return
	}

	if err := h.accounts.UpdateAccount(r.Context(), id, patch); err != nil {
		log.Error("failed to update account", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update account"))
		return
	}

	log.Info("account updated", slog.String("user_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user_id": id,
		"message": "account updated",
	}))
}

func (req Request) patch() (models.AccountPatch, error) {
	patch := models.AccountPatch{
		DisplayName: req.DisplayName,
		Email:       req.Email,
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		patch.Role = &role
	}
	if req.Status != nil {
		status := models.Status(*req.Status)
		patch.Status = &status
	}
	if req.SubscriptionExpiresAt != nil {
		if *req.SubscriptionExpiresAt == "" {
			patch.ClearSubscriptionExpiry = true
		} else {
			t, err := calendar.Parse(*req.SubscriptionExpiresAt)
			if err != nil {
				return models.AccountPatch{}, err
			}
			patch.SubscriptionExpiresAt = &t
		}
	}
	return patch, nil
}
