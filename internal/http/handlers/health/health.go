// Package health отдаёт готовность сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/finance-tracker/internal/http/response"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/sl"
)

// Checker проверяет доступность зависимости.
type Checker func(ctx context.Context) error

// Handler проверяет зависимости сервиса.
type Handler struct {
	log    *slog.Logger
	checks map[string]Checker
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, checks map[string]Checker) *Handler {
	return &Handler{log: log, checks: checks}
}

// ServeHTTP godoc
// @Summary Готовность сервиса
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response "Все зависимости доступны"
// @Failure 503 {object} response.Response "Часть зависимостей недоступна"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	statuses := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			h.log.Warn("dependency unavailable", slog.String("op", op), slog.String("dependency", name), sl.Err(err))
			statuses[name] = "unavailable"
			healthy = false
			continue
		}
		statuses[name] = "ok"
	}

	if !healthy {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Response{Status: response.StatusError, Error: "dependency unavailable", Data: statuses})
		return
	}
	render.JSON(w, r, response.StatusOKWithData(statuses))
}
