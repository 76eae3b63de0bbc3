// Package metrics регистрирует метрики Prometheus шлюза сессий.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionDecisions считает применённые решения по типу и источнику вызова.
	SessionDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_decisions_total",
		Help: "Session decisions applied, by decision kind and whether the evaluation was a periodic recheck.",
	}, []string{"decision", "periodic"})

	// SessionEvaluationErrors считает оценки, завершившиеся ошибкой чтения.
	SessionEvaluationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_evaluation_errors_total",
		Help: "Session evaluations that failed to fetch the account record.",
	}, []string{"periodic"})

	// StaleEvaluations считает оценки, чьи побочные эффекты отброшены.
	StaleEvaluations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_stale_evaluations_total",
		Help: "Evaluations whose side effects were discarded because a newer one superseded them.",
	})

	// PresenceWrites считает записи отметки присутствия.
	PresenceWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "presence_writes_total",
		Help: "Best-effort last-seen writes, by target record and result.",
	}, []string{"target", "result"})

	// LiveSessions число браузерных сессий в памяти.
	LiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sessions_live",
		Help: "Browser sessions currently held by the session manager.",
	})
)

// Bool переводит флаг в значение метки.
func Bool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
