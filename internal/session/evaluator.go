package session

import (
	"time"

	"github.com/magabrotheeeer/finance-tracker/internal/lib/calendar"
	"github.com/magabrotheeeer/finance-tracker/internal/models"
)

// WarningWindowDays — за сколько дней до окончания подписки показывается предупреждение.
const WarningWindowDays = 5

// Evaluate классифицирует доступ по снимку аккаунта на дату today.
// Функция чистая: без ввода-вывода и без чтения часов.
//
// Порядок проверок важен: блокировка перекрывает всё, администраторы
// не проверяются на срок подписки.
func Evaluate(acc models.Account, today time.Time) Decision {
	if acc.Status == models.StatusBlocked {
		return Blocked()
	}
	if acc.Role == models.RoleAdmin {
		return Active()
	}
	if acc.SubscriptionExpiresAt == nil {
		return Active()
	}

	diff := calendar.DaysBetween(today, *acc.SubscriptionExpiresAt)
	switch {
	case diff < 0:
		return Expired(-diff)
	case diff <= WarningWindowDays:
		return WarningActive(diff)
	default:
		return Active()
	}
}
