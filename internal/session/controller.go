// Package session реализует шлюз сессии: чистую оценку доступа по записи
// аккаунта и контроллер, который применяет решение к локальному состоянию
// сессии и навигации клиента.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/finance-tracker/internal/lib/calendar"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/clock"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/repeat"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/finance-tracker/internal/metrics"
	"github.com/magabrotheeeer/finance-tracker/internal/models"
	"github.com/magabrotheeeer/finance-tracker/internal/storage/repository"
)

// AccountRepository — чтение записи аккаунта и отметка присутствия в ней.
type AccountRepository interface {
	// GetAccount возвращает repository.ErrAccountNotFound, если записи нет.
	GetAccount(ctx context.Context, userID string) (*models.Account, error)
	// TouchAccount не создаёт запись; без неё возвращает repository.ErrAccountNotFound.
	TouchAccount(ctx context.Context, userID string, at time.Time) error
}

// AuthProvider — провайдер аутентификации браузерной сессии.
type AuthProvider interface {
	// OnAuthStateChanged подписывает fn на смену состояния и возвращает отписку.
	OnAuthStateChanged(fn func(models.AuthEvent)) (unsubscribe func())
	SignOut(ctx context.Context) error
}

// EventPublisher публикует применённые решения для внешних потребителей.
type EventPublisher interface {
	PublishDecision(ctx context.Context, event models.DecisionEvent) error
}

// Presence — отметка присутствия, живущая столько же, сколько аутентификация.
type Presence interface {
	Start(userID string)
	Stop()
	// Wait после Stop ждёт завершения начатых записей.
	Wait()
}

// Deps — зависимости контроллера. Events и Presence необязательны.
type Deps struct {
	Accounts AccountRepository
	Auth     AuthProvider
	Router   Router
	Clock    clock.Clock
	Events   EventPublisher
	Log      *slog.Logger
}

// Options — настройки контроллера.
type Options struct {
	Routes          Routes
	RecheckInterval time.Duration // 0 отключает периодическую перепроверку
}

// Controller связывает оценку сессии с её состоянием и навигацией.
//
// Каждая оценка получает номер поколения. Побочные эффекты оценки
// применяются, только если после её начала не было применено более новое
// поколение; выход из аккаунта делает все начатые оценки устаревшими.
// Мьютекс защищает только состояние и никогда не удерживается во время
// ввода-вывода: провайдер аутентификации вызывает контроллер обратно из SignOut.
type Controller struct {
	accounts AccountRepository
	auth     AuthProvider
	router   Router
	clock    clock.Clock
	events   EventPublisher
	log      *slog.Logger

	routes          Routes
	recheckInterval time.Duration

	mu          sync.Mutex
	gen         uint64
	committed   uint64
	interactive uint64 // последнее применённое не периодическое поколение или сброс
	awaiting    bool   // ещё не было ни одного события аутентификации
	loading     int
	user        *models.Account
	decision    *Decision
	warning     Warning
	alert       string
	recheck     *repeat.Task
	presence    Presence
}

// NewController создаёт контроллер в состоянии LoadingAuth.
func NewController(deps Deps, opts Options) *Controller {
	if deps.Clock == nil {
		deps.Clock = clock.System()
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Controller{
		accounts:        deps.Accounts,
		auth:            deps.Auth,
		router:          deps.Router,
		clock:           deps.Clock,
		events:          deps.Events,
		log:             deps.Log,
		routes:          opts.Routes,
		recheckInterval: opts.RecheckInterval,
		awaiting:        true,
	}
}

// OnAuthenticated загружает запись аккаунта, оценивает её и применяет решение.
// Периодическая перепроверка не включает индикатор загрузки, не показывает
// алерт, не делает редиректов с публичных экранов и при ошибке чтения
// оставляет текущее состояние нетронутым.
//
// Возвращённая ошибка уже обработана и залогирована.
func (c *Controller) OnAuthenticated(ctx context.Context, user models.AuthUser, periodic bool) (Decision, error) {
	const op = "session.OnAuthenticated"
	log := c.log.With(
		sl.Op(op),
		slog.String("user_id", user.ID),
		slog.Bool("periodic", periodic),
	)

	gen := c.begin(periodic)
	defer c.finish(periodic)

	acc, err := c.fetch(ctx, user)
	if err != nil {
		log.Error("failed to fetch account", sl.Err(err))
		metrics.SessionEvaluationErrors.WithLabelValues(metrics.Bool(periodic)).Inc()
		if !periodic && c.commit(gen, periodic, func() { c.clearLocked() }) {
			c.router.Navigate(c.routes.Entry)
		}
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}

	today := calendar.Midnight(c.clock.Now())
	d := Evaluate(*acc, today)
	log = log.With(slog.String("decision", d.String()))

	if d.Kind == KindBlocked {
		c.applyBlocked(ctx, log, gen, acc, d, periodic)
		return d, nil
	}

	applied := c.commit(gen, periodic, func() {
		c.user = acc
		c.decision = &d
		c.alert = ""
		if d.Kind == KindWarningActive {
			c.warning = Warning{Show: true, DaysRemaining: d.DaysRemaining}
		} else {
			c.warning = Warning{}
		}
	})
	if !applied {
		log.Debug("discarding stale evaluation")
		if !periodic && c.supersededByPeriodic(gen) {
			c.redirectFromPublic()
		}
		return d, nil
	}
	c.record(ctx, log, acc, d, periodic)

	switch d.Kind {
	case KindExpired:
		c.router.Navigate(c.routes.Expired)
	case KindWarningActive, KindActive:
		if !periodic && c.routes.IsPublic(c.router.CurrentRoute()) {
			c.router.Navigate(c.routes.Home)
		}
	}
	log.Debug("session decision applied")
	return d, nil
}

// OnLoginSuccess вызывается сразу после успешного обмена учётных данных.
func (c *Controller) OnLoginSuccess(ctx context.Context, user models.AuthUser) (Decision, error) {
	return c.OnAuthenticated(ctx, user, false)
}

// OnUnauthenticated сбрасывает локальную сессию и уводит клиента из
// авторизованной зоны на точку входа.
func (c *Controller) OnUnauthenticated() {
	c.StopRecheck()
	c.reset()
	if c.routes.InApp(c.router.CurrentRoute()) {
		c.router.Navigate(c.routes.Entry)
	}
}

// OnLogout останавливает отметку присутствия, помечает присутствие эпохой,
// выходит из аккаунта и ведёт на лендинг. Ошибка записи присутствия не
// мешает выходу; локальное состояние сбрасывается даже при ошибке SignOut.
func (c *Controller) OnLogout(ctx context.Context) error {
	const op = "session.OnLogout"
	log := c.log.With(sl.Op(op))

	c.stopPresence()
	if user := c.currentUserID(); user != "" {
		epoch := time.Unix(0, 0).UTC()
		err := c.accounts.TouchAccount(ctx, user, epoch)
		if err != nil && !errors.Is(err, repository.ErrAccountNotFound) {
			log.Debug("failed to reset last seen", slog.String("user_id", user), sl.Err(err))
		}
	}

	err := c.auth.SignOut(ctx)
	if err != nil {
		log.Error("failed to sign out", sl.Err(err))
	}
	c.StopRecheck()
	c.reset()
	c.router.Navigate(c.routes.Landing)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// OnRenewSubscription выходит из аккаунта и ведёт на точку входа, где
// продлением занимается лендинг.
func (c *Controller) OnRenewSubscription(ctx context.Context) error {
	const op = "session.OnRenewSubscription"

	err := c.auth.SignOut(ctx)
	if err != nil {
		c.log.Error("failed to sign out for renewal", sl.Op(op), sl.Err(err))
	}
	c.StopRecheck()
	c.reset()
	c.router.Navigate(c.routes.Entry)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// State возвращает копию состояния для слоя отображения.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		IsLoadingAuth:     c.awaiting || c.loading > 0,
		ExpirationWarning: c.warning,
		Alert:             c.alert,
	}
	if c.user != nil {
		u := *c.user
		st.CurrentUser = &u
	}
	if c.decision != nil {
		st.Decision = c.decision.Kind.String()
	}
	switch {
	case st.CurrentUser != nil:
		st.Phase = PhaseAuthenticated
	case st.IsLoadingAuth:
		st.Phase = PhaseLoadingAuth
	default:
		st.Phase = PhaseUnauthenticated
	}
	return st
}

func (c *Controller) applyBlocked(ctx context.Context, log *slog.Logger, gen uint64, acc *models.Account, d Decision, periodic bool) {
	applied := c.commit(gen, periodic, func() {
		c.clearLocked()
		if !periodic {
			c.alert = AlertBlocked
		}
	})
	if !applied {
		log.Debug("discarding stale evaluation")
		return
	}
	c.record(ctx, log, acc, d, periodic)

	// Локальное состояние уже сброшено, так что ошибка выхода не оставит
	// на экране авторизованный контент.
	if err := c.auth.SignOut(ctx); err != nil {
		log.Error("failed to sign out blocked account", sl.Err(err))
	}
	c.router.Navigate(c.routes.Entry)
	log.Info("blocked account signed out")
}

func (c *Controller) fetch(ctx context.Context, user models.AuthUser) (*models.Account, error) {
	acc, err := c.accounts.GetAccount(ctx, user.ID)
	if errors.Is(err, repository.ErrAccountNotFound) {
		def := models.DefaultAccount(user)
		return &def, nil
	}
	if err != nil {
		return nil, err
	}
	if acc.ID == "" {
		acc.ID = user.ID
	}
	return acc, nil
}

func (c *Controller) begin(periodic bool) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if !periodic {
		c.loading++
	}
	return c.gen
}

func (c *Controller) finish(periodic bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.awaiting = false
	if !periodic && c.loading > 0 {
		c.loading--
	}
}

// commit применяет fn, если поколение gen новее последнего применённого.
func (c *Controller) commit(gen uint64, periodic bool, fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen <= c.committed {
		metrics.StaleEvaluations.Inc()
		return false
	}
	c.committed = gen
	if !periodic {
		c.interactive = gen
	}
	fn()
	return true
}

// supersededByPeriodic сообщает, что поколение gen обогнали только
// периодические перепроверки, а сессия по-прежнему аутентифицирована.
func (c *Controller) supersededByPeriodic(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen > c.interactive && c.user != nil
}

// redirectFromPublic уводит с публичного экрана домой, если применённое
// решение открывает доступ.
func (c *Controller) redirectFromPublic() {
	c.mu.Lock()
	open := c.decision != nil && (c.decision.Kind == KindActive || c.decision.Kind == KindWarningActive)
	c.mu.Unlock()
	if open && c.routes.IsPublic(c.router.CurrentRoute()) {
		c.router.Navigate(c.routes.Home)
	}
}

func (c *Controller) stopPresence() {
	c.mu.Lock()
	p := c.presence
	c.mu.Unlock()
	if p == nil {
		return
	}
	p.Stop()
	p.Wait()
}

// reset сбрасывает сессию и делает устаревшими все начатые оценки.
func (c *Controller) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.committed = c.gen
	c.interactive = c.gen
	c.awaiting = false
	c.loading = 0
	c.clearLocked()
}

func (c *Controller) clearLocked() {
	c.user = nil
	c.decision = nil
	c.warning = Warning{}
}

func (c *Controller) currentUserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return ""
	}
	return c.user.ID
}

// record обновляет метрики и публикует событие, не дожидаясь брокера.
func (c *Controller) record(ctx context.Context, log *slog.Logger, acc *models.Account, d Decision, periodic bool) {
	metrics.SessionDecisions.WithLabelValues(d.Kind.String(), metrics.Bool(periodic)).Inc()
	if c.events == nil {
		return
	}
	event := models.DecisionEvent{
		EventID:       uuid.NewString(),
		UserID:        acc.ID,
		Email:         acc.Email,
		Decision:      d.Kind.String(),
		DaysRemaining: d.DaysRemaining,
		DaysOverdue:   d.DaysOverdue,
		Periodic:      periodic,
		At:            c.clock.Now(),
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := c.events.PublishDecision(ctx, event); err != nil {
			log.Debug("failed to publish decision event", sl.Err(err))
		}
	}()
}
