package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/magabrotheeeer/finance-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/finance-tracker/internal/models"
)

// ClientSession — провайдер аутентификации одной браузерной сессии (одного
// токена). Подписчики оповещаются синхронно и вне мьютекса, поэтому
// обработчик может вызывать методы ClientSession.
type ClientSession struct {
	claims  *jwt.CustomClaims
	revoker TokenRevoker

	mu        sync.Mutex
	user      *models.AuthUser
	listeners map[int]func(models.AuthEvent)
	next      int
}

// NewClientSession создаёт провайдер для токена с claims.
func NewClientSession(claims *jwt.CustomClaims, revoker TokenRevoker) *ClientSession {
	return &ClientSession{
		claims:    claims,
		revoker:   revoker,
		listeners: make(map[int]func(models.AuthEvent)),
	}
}

// OnAuthStateChanged подписывает fn на смену состояния аутентификации.
func (c *ClientSession) OnAuthStateChanged(fn func(models.AuthEvent)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// SignIn сообщает о входе по учётным данным.
func (c *ClientSession) SignIn() {
	c.authenticate(models.AuthSignedIn)
}

// Restore сообщает о восстановлении сессии по действующему токену.
func (c *ClientSession) Restore() {
	c.authenticate(models.AuthRestored)
}

// SignOut отзывает токен и сообщает о выходе. Подписчики оповещаются даже
// при ошибке отзыва. Повторный вызов ничего не делает.
func (c *ClientSession) SignOut(ctx context.Context) error {
	const op = "auth.SignOut"
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil
	}
	c.user = nil
	c.mu.Unlock()

	err := RevokeToken(ctx, c.revoker, c.claims)
	c.emit(models.AuthEvent{Reason: models.AuthSignedOut})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// User возвращает текущего пользователя или nil после выхода.
func (c *ClientSession) User() *models.AuthUser {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// TokenID возвращает jti токена сессии.
func (c *ClientSession) TokenID() string {
	return c.claims.ID
}

func (c *ClientSession) authenticate(reason models.AuthReason) {
	user := c.claims.User()
	c.mu.Lock()
	c.user = &user
	c.mu.Unlock()

	c.emit(models.AuthEvent{User: &user, Reason: reason})
}

func (c *ClientSession) emit(ev models.AuthEvent) {
	c.mu.Lock()
	fns := make([]func(models.AuthEvent), 0, len(c.listeners))
	for i := 0; i < c.next; i++ {
		if fn, ok := c.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
