// Package presence периодически отмечает время последней активности
// пользователя в записи аккаунта и в тикете поддержки.
package presence

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/finance-tracker/internal/lib/clock"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/repeat"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/finance-tracker/internal/metrics"
	"github.com/magabrotheeeer/finance-tracker/internal/storage/repository"
)

// DefaultInterval период отметки присутствия.
const DefaultInterval = 60 * time.Second

// AccountToucher обновляет отметку в существующей записи аккаунта.
type AccountToucher interface {
	TouchAccount(ctx context.Context, userID string, at time.Time) error
}

// TicketToucher обновляет отметку в тикете поддержки.
type TicketToucher interface {
	TouchTicket(ctx context.Context, userID string, at time.Time) error
}

// Heartbeat пишет LastSeen, пока сессия аутентифицирована. Записи не
// создаются: отсутствие аккаунта или тикета пропускается. Ошибки записи
// только логируются и считаются в метриках.
type Heartbeat struct {
	accounts AccountToucher
	tickets  TicketToucher
	clock    clock.Clock
	interval time.Duration
	log      *slog.Logger

	ctx    context.Context
	mu     sync.Mutex
	task   *repeat.Task
	last   *repeat.Task
	writes sync.WaitGroup
}

// NewHeartbeat создаёт отметку присутствия. ctx ограничивает время жизни всех
// её задач.
func NewHeartbeat(ctx context.Context, accounts AccountToucher, tickets TicketToucher, clk clock.Clock, interval time.Duration, log *slog.Logger) *Heartbeat {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clk == nil {
		clk = clock.System()
	}
	return &Heartbeat{
		accounts: accounts,
		tickets:  tickets,
		clock:    clk,
		interval: interval,
		log:      log,
		ctx:      ctx,
	}
}

// Start сразу отмечает присутствие userID и дальше повторяет каждые interval.
// Повторный Start заменяет предыдущую задачу.
func (h *Heartbeat) Start(userID string) {
	task := repeat.Every(h.ctx, h.clock, h.interval, true, func(ctx context.Context) {
		h.beat(ctx, userID)
	})

	h.mu.Lock()
	prev := h.task
	h.task = task
	h.last = task
	h.mu.Unlock()
	prev.Stop()
}

// Stop отменяет задачу. После возврата новых отметок не будет, а начатые
// записи получат отменённый контекст.
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	task := h.task
	h.task = nil
	h.mu.Unlock()
	task.Stop()
}

// Wait после Stop ждёт выхода последней задачи и всех начатых записей.
func (h *Heartbeat) Wait() {
	h.mu.Lock()
	task := h.last
	h.mu.Unlock()
	task.Wait()
	h.writes.Wait()
}

func (h *Heartbeat) beat(ctx context.Context, userID string) {
	now := h.clock.Now()
	log := h.log.With(slog.String("user_id", userID))

	h.writes.Add(2)
	go func() {
		defer h.writes.Done()
		err := h.accounts.TouchAccount(ctx, userID, now)
		h.report(log, "account", err, repository.ErrAccountNotFound)
	}()
	go func() {
		defer h.writes.Done()
		err := h.tickets.TouchTicket(ctx, userID, now)
		h.report(log, "ticket", err, repository.ErrTicketNotFound)
	}()
}

func (h *Heartbeat) report(log *slog.Logger, target string, err, missing error) {
	switch {
	case errors.Is(err, missing):
		metrics.PresenceWrites.WithLabelValues(target, "skipped").Inc()
		return
	case err != nil:
		metrics.PresenceWrites.WithLabelValues(target, "error").Inc()
		log.Debug("failed to update presence", slog.String("target", target), sl.Err(err))
		return
	}
	metrics.PresenceWrites.WithLabelValues(target, "ok").Inc()
}
