package session

import (
	"context"

	"github.com/magabrotheeeer/finance-tracker/internal/lib/repeat"
	"github.com/magabrotheeeer/finance-tracker/internal/models"
)

// Watch подписывает контроллер на события провайдера аутентификации.
// При входе запускаются отметка присутствия и периодическая перепроверка,
// при выходе обе останавливаются. ctx ограничивает время жизни фоновых задач.
//
// Возвращённая функция отписывается и останавливает все задачи сессии.
func (c *Controller) Watch(ctx context.Context, presence Presence) (stop func()) {
	if presence == nil {
		presence = nopPresence{}
	}
	c.mu.Lock()
	c.presence = presence
	c.mu.Unlock()

	unsubscribe := c.auth.OnAuthStateChanged(func(ev models.AuthEvent) {
		if ev.User == nil {
			presence.Stop()
			c.OnUnauthenticated()
			return
		}
		user := *ev.User
		presence.Start(user.ID)
		c.StartRecheck(ctx, user)
		if ev.Reason == models.AuthSignedIn {
			_, _ = c.OnLoginSuccess(ctx, user)
			return
		}
		_, _ = c.OnAuthenticated(ctx, user, false)
	})

	return func() {
		unsubscribe()
		presence.Stop()
		c.StopRecheck()
	}
}

// StartRecheck запускает периодическую перепроверку сессии пользователя,
// заменяя предыдущую.
func (c *Controller) StartRecheck(ctx context.Context, user models.AuthUser) {
	if c.recheckInterval <= 0 {
		return
	}
	task := repeat.Every(ctx, c.clock, c.recheckInterval, false, func(ctx context.Context) {
		_, _ = c.OnAuthenticated(ctx, user, true)
	})

	c.mu.Lock()
	prev := c.recheck
	c.recheck = task
	c.mu.Unlock()
	prev.Stop()
}

// StopRecheck останавливает периодическую перепроверку.
func (c *Controller) StopRecheck() {
	c.mu.Lock()
	task := c.recheck
	c.recheck = nil
	c.mu.Unlock()
	task.Stop()
}

type nopPresence struct{}

func (nopPresence) Start(string) {}
func (nopPresence) Stop() {}
func (nopPresence) Wait() {}
