package session

import "github.com/magabrotheeeer/finance-tracker/internal/models"

// Phase состояние локальной сессии.
type Phase string

const (
	PhaseLoadingAuth     Phase = "loading_auth"
	PhaseUnauthenticated Phase = "unauthenticated"
	PhaseAuthenticated   Phase = "authenticated"
)

// AlertBlocked показывается пользователю при блокировке аккаунта.
const AlertBlocked = "your account has been blocked, please contact support"

// Warning предупреждение о скором окончании подписки.
type Warning struct {
	Show          bool `json:"show"`
	DaysRemaining int  `json:"days_remaining"`
}

// State всё, на что реагирует слой отображения. Это копия, изменения
// состояния идут только через операции Controller.
type State struct {
	IsLoadingAuth     bool            `json:"is_loading_auth"`
	CurrentUser       *models.Account `json:"current_session_user"`
	ExpirationWarning Warning         `json:"expiration_warning"`
	Phase             Phase           `json:"phase"`
	Decision          string          `json:"decision,omitempty"`
	Alert             string          `json:"alert,omitempty"`
}
