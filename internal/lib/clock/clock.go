// Package clock абстрагирует текущее время и тикеры, чтобы границы дат
// и интервалы фоновых задач можно было проверять детерминированно.
package clock

import "time"

// Clock выдаёт текущее время и создаёт тикеры.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker минимальный интерфейс time.Ticker.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type systemClock struct{}

// System возвращает часы на основе пакета time.
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) C() <-chan time.Time {
	return s.t.C
}

func (s systemTicker) Stop() {
	s.t.Stop()
}
