package session

import "fmt"

// Kind тип решения по сессии.
type Kind int

const (
	// KindActive обычный доступ без предупреждения.
	KindActive Kind = iota + 1
	// KindWarningActive доступ есть, но подписка истекает в ближайшие дни.
	KindWarningActive
	// KindExpired подписка истекла, доступен только экран продления.
	KindExpired
	// KindBlocked аккаунт заблокирован, сессия принудительно завершается.
	KindBlocked
)

func (k Kind) String() string {
	switch k {
	case KindActive:
		return "active"
	case KindWarningActive:
		return "warning_active"
	case KindExpired:
		return "expired"
	case KindBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Decision результат оценки сессии. DaysRemaining заполняется только для
// KindWarningActive, DaysOverdue только для KindExpired.
type Decision struct {
	Kind          Kind
	DaysRemaining int
	DaysOverdue   int
}

// Active возвращает решение об обычном доступе.
func Active() Decision { return Decision{Kind: KindActive} }

// Blocked возвращает решение о блокировке.
func Blocked() Decision { return Decision{Kind: KindBlocked} }

// WarningActive возвращает решение о доступе с предупреждением.
func WarningActive(daysRemaining int) Decision {
	return Decision{Kind: KindWarningActive, DaysRemaining: daysRemaining}
}

// Expired возвращает решение об истёкшей подписке.
func Expired(daysOverdue int) Decision {
	return Decision{Kind: KindExpired, DaysOverdue: daysOverdue}
}

func (d Decision) String() string {
	switch d.Kind {
	case KindWarningActive:
		return fmt.Sprintf("%s(%d days remaining)", d.Kind, d.DaysRemaining)
	case KindExpired:
		return fmt.Sprintf("%s(%d days overdue)", d.Kind, d.DaysOverdue)
	default:
		return d.Kind.String()
	}
}
