// Package sessions держит в памяти браузерные сессии: на каждый токен свой
// контроллер сессии, роутер, провайдер аутентификации и отметка присутствия.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/finance-tracker/internal/lib/clock"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/repeat"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/finance-tracker/internal/metrics"
	"github.com/magabrotheeeer/finance-tracker/internal/models"
	"github.com/magabrotheeeer/finance-tracker/internal/presence"
	"github.com/magabrotheeeer/finance-tracker/internal/services/auth"
	"github.com/magabrotheeeer/finance-tracker/internal/session"
)

// ErrNoSession у токена нет живой сессии.
var ErrNoSession = errors.New("no live session")

// Deps зависимости менеджера. Events необязателен.
type Deps struct {
	Accounts session.AccountRepository
	Tickets  presence.TicketToucher
	Revoker  auth.TokenRevoker
	Events   session.EventPublisher
	Clock    clock.Clock
	Log      *slog.Logger
}

// Options настройки сессий.
type Options struct {
	Routes            session.Routes
	RecheckInterval   time.Duration
	HeartbeatInterval time.Duration
	IdleTTL           time.Duration
}

// View — ответ клиенту: состояние сессии и маршрут, на котором клиент
// должен находиться.
type View struct {
	session.State
	Route string `json:"route"`
}

type entry struct {
	ctrl      *session.Controller
	router    *session.MemoryRouter
	client    *auth.ClientSession
	heartbeat *presence.Heartbeat
	cancel    context.CancelFunc
	stop      func()

	mu         sync.Mutex
	lastActive time.Time
}

func (e *entry) view() View {
	return View{State: e.ctrl.State(), Route: e.router.CurrentRoute()}
}

func (e *entry) touch(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastActive = now
}

func (e *entry) idleSince() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastActive
}

// close останавливает фоновые задачи сессии, не выходя из аккаунта.
func (e *entry) close() {
	e.stop()
	e.cancel()
}

// Manager создаёт, находит и закрывает браузерные сессии по jti токена.
type Manager struct {
	deps Deps
	opts Options
	ctx  context.Context

	mu       sync.Mutex
	sessions map[string]*entry
	sweeper  *repeat.Task
}

// NewManager создаёт менеджер. ctx ограничивает время жизни всех сессий.
func NewManager(ctx context.Context, deps Deps, opts Options) *Manager {
	if deps.Clock == nil {
		deps.Clock = clock.System()
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Manager{
		deps:     deps,
		opts:     opts,
		ctx:      ctx,
		sessions: make(map[string]*entry),
	}
}

// Login открывает сессию после обмена учётных данных на токен.
func (m *Manager) Login(ctx context.Context, claims *jwt.CustomClaims, route string) (View, error) {
	return m.open(ctx, claims, route, models.AuthSignedIn)
}

// Get возвращает живую сессию токена. Если её нет (перезагрузка страницы,
// рестарт сервиса, вытеснение по простою), сессия восстанавливается.
func (m *Manager) Get(ctx context.Context, claims *jwt.CustomClaims, route string) (View, error) {
	if e := m.lookup(claims.ID); e != nil {
		return e.view(), nil
	}
	return m.open(ctx, claims, route, models.AuthRestored)
}

// SetRoute фиксирует маршрут, на который клиент перешёл сам.
func (m *Manager) SetRoute(claims *jwt.CustomClaims, route string) (View, error) {
	const op = "sessions.SetRoute"
	e := m.lookup(claims.ID)
	if e == nil {
		return View{}, fmt.Errorf("%s: %w", op, ErrNoSession)
	}
	e.router.SetCurrent(route)
	return e.view(), nil
}

// Logout выходит из аккаунта и закрывает сессию. Без живой сессии токен
// просто отзывается.
func (m *Manager) Logout(ctx context.Context, claims *jwt.CustomClaims) (View, error) {
	const op = "sessions.Logout"
	e := m.remove(claims.ID)
	if e == nil {
		if err := auth.RevokeToken(ctx, m.deps.Revoker, claims); err != nil {
			return View{}, fmt.Errorf("%s: %w", op, err)
		}
		return View{
			State: session.State{Phase: session.PhaseUnauthenticated},
			Route: m.opts.Routes.Landing,
		}, nil
	}
	defer e.close()

	err := e.ctrl.OnLogout(ctx)
	v := e.view()
	if err != nil {
		return v, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// Renew выходит из аккаунта для продления подписки и закрывает сессию.
func (m *Manager) Renew(ctx context.Context, claims *jwt.CustomClaims) (View, error) {
	const op = "sessions.Renew"
	e := m.remove(claims.ID)
	if e == nil {
		return View{}, fmt.Errorf("%s: %w", op, ErrNoSession)
	}
	defer e.close()

	err := e.ctrl.OnRenewSubscription(ctx)
	v := e.view()
	if err != nil {
		return v, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// Len возвращает число живых сессий.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StartSweeper запускает вытеснение сессий, простаивающих дольше IdleTTL.
func (m *Manager) StartSweeper(interval time.Duration) {
	if m.opts.IdleTTL <= 0 || interval <= 0 {
		return
	}
	task := repeat.Every(m.ctx, m.deps.Clock, interval, false, func(context.Context) {
		m.Sweep()
	})

	m.mu.Lock()
	prev := m.sweeper
	m.sweeper = task
	m.mu.Unlock()
	prev.Stop()
}

// Sweep закрывает простаивающие сессии. Токен остаётся действительным,
// следующий запрос восстановит сессию.
func (m *Manager) Sweep() int {
	deadline := m.deps.Clock.Now().Add(-m.opts.IdleTTL)

	m.mu.Lock()
	var idle []*entry
	for id, e := range m.sessions {
		if e.idleSince().Before(deadline) {
			idle = append(idle, e)
			delete(m.sessions, id)
		}
	}
	metrics.LiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	for _, e := range idle {
		e.close()
	}
	if len(idle) > 0 {
		m.deps.Log.Debug("idle sessions evicted", slog.Int("count", len(idle)))
	}
	return len(idle)
}

// Close закрывает все сессии и останавливает вытеснение.
func (m *Manager) Close() {
	m.mu.Lock()
	sweeper := m.sweeper
	m.sweeper = nil
	all := m.sessions
	m.sessions = make(map[string]*entry)
	metrics.LiveSessions.Set(0)
	m.mu.Unlock()

	sweeper.Stop()
	sweeper.Wait()
	for _, e := range all {
		e.close()
		e.heartbeat.Wait()
	}
}

func (m *Manager) open(ctx context.Context, claims *jwt.CustomClaims, route string, reason models.AuthReason) (View, error) {
	const op = "sessions.open"
	if route == "" {
		route = m.opts.Routes.Landing
	}
	log := m.deps.Log.With(
		slog.String("user_id", claims.Subject),
		slog.String("token_id", claims.ID),
	)

	// Фоновые задачи сессии живут дольше запроса, который её открыл.
	sctx, cancel := context.WithCancel(m.ctx)
	e := &entry{
		router:     session.NewMemoryRouter(route),
		client:     auth.NewClientSession(claims, m.deps.Revoker),
		cancel:     cancel,
		lastActive: m.deps.Clock.Now(),
	}
	e.heartbeat = presence.NewHeartbeat(sctx, m.deps.Accounts, m.deps.Tickets, m.deps.Clock, m.opts.HeartbeatInterval, log)
	e.ctrl = session.NewController(session.Deps{
		Accounts: m.deps.Accounts,
		Auth:     e.client,
		Router:   e.router,
		Clock:    m.deps.Clock,
		Events:   m.deps.Events,
		Log:      log,
	}, session.Options{
		Routes:          m.opts.Routes,
		RecheckInterval: m.opts.RecheckInterval,
	})
	e.stop = e.ctrl.Watch(sctx, e.heartbeat)

	// Оценка выполняется синхронно внутри уведомления провайдера.
	if reason == models.AuthSignedIn {
		e.client.SignIn()
	} else {
		e.client.Restore()
	}
	if err := ctx.Err(); err != nil {
		e.close()
		return View{}, fmt.Errorf("%s: %w", op, err)
	}

	v := e.view()
	if v.Phase != session.PhaseAuthenticated {
		// Заблокированный аккаунт или отказ при чтении записи: сессия
		// уже разлогинена, держать её незачем.
		e.close()
		log.Info("session not established", slog.String("decision", v.Decision), slog.String("alert", v.Alert))
		return v, nil
	}

	m.mu.Lock()
	prev := m.sessions[claims.ID]
	m.sessions[claims.ID] = e
	metrics.LiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()
	if prev != nil {
		prev.close()
	}

	log.Debug("session opened", slog.String("decision", v.Decision), sl.Op(op))
	return v, nil
}

func (m *Manager) lookup(tokenID string) *entry {
	m.mu.Lock()
	e := m.sessions[tokenID]
	m.mu.Unlock()
	if e != nil {
		e.touch(m.deps.Clock.Now())
	}
	return e
}

func (m *Manager) remove(tokenID string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.sessions[tokenID]
	delete(m.sessions, tokenID)
	metrics.LiveSessions.Set(float64(len(m.sessions)))
	return e
}
