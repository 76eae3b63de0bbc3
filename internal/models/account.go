package models

import "time"

// Role — роль аккаунта.
type Role string

// Status — статус аккаунта, выставляемый администратором.
type Status string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"

	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
)

// Account — снимок записи аккаунта, прочитанный из хранилища.
// В пределах одной оценки сессии не изменяется.
//
// SubscriptionExpiresAt — календарная дата (полночь по локальному времени),
// nil означает, что срок подписки не контролируется.
type Account struct {
	ID                    string     `json:"id"`
	DisplayName           string     `json:"display_name"`
	Email                 string     `json:"email"`
	Role                  Role       `json:"role"`
	Status                Status     `json:"status"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at,omitempty"`
	LastSeen              *time.Time `json:"last_seen,omitempty"`
}

// DefaultAccount строит аккаунт для пользователя, у которого ещё нет записи.
func DefaultAccount(user AuthUser) Account {
	return Account{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Role:        RoleUser,
		Status:      StatusActive,
	}
}

// AccountPatch — частичное обновление записи аккаунта.
// Записываются только заданные поля, остальные в хранилище не трогаются.
type AccountPatch struct {
	DisplayName             *string
	Email                   *string
	Role                    *Role
	Status                  *Status
	SubscriptionExpiresAt   *time.Time
	ClearSubscriptionExpiry bool
	LastSeen                *time.Time
}

// Empty сообщает, что патч ничего не меняет.
func (p AccountPatch) Empty() bool {
	return p.DisplayName == nil && p.Email == nil && p.Role == nil && p.Status == nil &&
		p.SubscriptionExpiresAt == nil && !p.ClearSubscriptionExpiry && p.LastSeen == nil
}
