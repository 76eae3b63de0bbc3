// Package calendar работает с календарными датами без времени суток.
//
// Даты подписки хранятся строкой "YYYY-MM-DD" и сравниваются по дням,
// поэтому разница во времени суток никогда не даёт ошибку на единицу.
package calendar

import (
	"fmt"
	"time"
)

// Layout — формат хранения даты окончания подписки.
const Layout = "2006-01-02"

// Parse разбирает дату "YYYY-MM-DD" в полночь по локальному времени.
func Parse(s string) (time.Time, error) {
	const op = "calendar.Parse"
	t, err := time.ParseInLocation(Layout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// ParseOptional разбирает дату из хранилища. Пустая или битая строка
// означает отсутствие даты.
func ParseOptional(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := Parse(s)
	if err != nil {
		return nil
	}
	return &t
}

// Format возвращает дату в формате хранения.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Midnight отбрасывает время суток, оставляя дату в локации t.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween возвращает число календарных дней от from до to.
// Результат положительный, если to позже from.
//
// Даты переносятся в UTC по их году, месяцу и дню, так что переход на
// летнее время (23- и 25-часовые сутки) не влияет на результат.
func DaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	// Через секунды, а не time.Duration: разность дат дальше ~292 лет
	// переполняет Duration.
	return int((b.Unix() - a.Unix()) / secondsPerDay)
}
