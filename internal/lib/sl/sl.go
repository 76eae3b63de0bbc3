// Package sl содержит вспомогательные атрибуты для логгера slog.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error".
// Для nil-ошибки значение пустое, чтобы best-effort ветки могли логировать без проверки.
//
// Пример:
//
//	log.Error("failed to fetch account", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Op возвращает атрибут с именем операции в формате "пакет.Функция".
func Op(op string) slog.Attr {
	return slog.String("op", op)
}
