package session

import "sync"

// Router — навигация клиента. Контроллер ею пользуется, но ей не владеет.
type Router interface {
	Navigate(route string)
	CurrentRoute() string
}

// maxHistory сколько последних переходов помнит MemoryRouter.
const maxHistory = 32

// MemoryRouter хранит текущий маршрут браузерной сессии на стороне сервера.
// Клиент сообщает свой маршрут через SetCurrent и читает решение через CurrentRoute.
type MemoryRouter struct {
	mu      sync.Mutex
	current string
	history []string
}

// NewMemoryRouter создаёт роутер, стоящий на маршруте initial.
func NewMemoryRouter(initial string) *MemoryRouter {
	return &MemoryRouter{current: initial}
}

// Navigate переводит клиента на маршрут.
func (r *MemoryRouter) Navigate(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = route
	if len(r.history) == maxHistory {
		copy(r.history, r.history[1:])
		r.history = r.history[:maxHistory-1]
	}
	r.history = append(r.history, route)
}

// SetCurrent фиксирует маршрут, на который клиент перешёл сам.
func (r *MemoryRouter) SetCurrent(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = route
}

// CurrentRoute возвращает текущий маршрут.
func (r *MemoryRouter) CurrentRoute() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigations возвращает последние маршруты, на которые вёл контроллер, по порядку.
func (r *MemoryRouter) Navigations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}
