// Package models содержит доменные структуры трекера: учётные данные,
// запись аккаунта, тикет поддержки и события решений сессии.
package models

import "time"

// User учётные данные пользователя, которыми владеет провайдер аутентификации.
type User struct {
	UUID         string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта, используется как логин
	DisplayName  string    // Отображаемое имя
	PasswordHash string    // bcrypt-хэш пароля
	CreatedAt    time.Time // Дата регистрации
}

// AuthUser профиль, который провайдер аутентификации отдаёт после входа.
type AuthUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Profile возвращает публичный профиль пользователя.
func (u User) Profile() AuthUser {
	return AuthUser{ID: u.UUID, Email: u.Email, DisplayName: u.DisplayName}
}

// AuthReason причина смены состояния аутентификации.
type AuthReason int

const (
	// AuthSignedIn пользователь только что обменял учётные данные на токен.
	AuthSignedIn AuthReason = iota + 1
	// AuthRestored сессия восстановлена по действующему токену (перезагрузка страницы).
	AuthRestored
	// AuthSignedOut пользователь вышел или был разлогинен.
	AuthSignedOut
)

// AuthEvent событие провайдера аутентификации. User равен nil при выходе.
type AuthEvent struct {
	User   *AuthUser
	Reason AuthReason
}
