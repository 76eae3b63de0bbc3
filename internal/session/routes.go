package session

import "strings"

// Routes — маршруты клиента, которые контроллер использует для навигации.
type Routes struct {
	Entry     string   // публичная точка входа (экран логина)
	Landing   string   // лендинг, куда ведёт выход из аккаунта
	Home      string   // домашний маршрут авторизованной зоны
	Expired   string   // экран истёкшей подписки
	AppPrefix string   // префикс авторизованной зоны
	Public    []string // экраны, доступные без входа
}

// DefaultRoutes возвращает маршруты веб-клиента по умолчанию.
func DefaultRoutes() Routes {
	return Routes{
		Entry:     "/login",
		Landing:   "/",
		Home:      "/app",
		Expired:   "/app/expired",
		AppPrefix: "/app",
		Public:    []string{"/login", "/register", "/register/confirm", "/", "/terms", "/privacy"},
	}
}

// IsPublic сообщает, что маршрут является одним из публичных экранов.
func (r Routes) IsPublic(route string) bool {
	route = normalize(route)
	for _, p := range r.Public {
		if normalize(p) == route {
			return true
		}
	}
	return false
}

// InApp сообщает, что маршрут лежит внутри авторизованной зоны.
func (r Routes) InApp(route string) bool {
	route = normalize(route)
	prefix := normalize(r.AppPrefix)
	if prefix == "" || prefix == "/" {
		return false
	}
	return route == prefix || strings.HasPrefix(route, prefix+"/")
}

func normalize(route string) string {
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
	}
	return route
}
