// Package repeat запускает функцию по интервалу в отменяемой фоновой задаче,
// привязанной к времени жизни сессии.
package repeat

import (
	"context"
	"sync"
	"time"

	"github.com/magabrotheeeer/finance-tracker/internal/lib/clock"
)

// Task запущенная повторяющаяся задача.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Every вызывает fn каждые interval, пока не отменён ctx или не вызван Stop.
// При immediate первый вызов выполняется сразу.
//
// Тикер создаётся до возврата из Every, поэтому Advance фейковых часов
// сразу после запуска не теряется.
func Every(ctx context.Context, clk clock.Clock, interval time.Duration, immediate bool, fn func(ctx context.Context)) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	ticker := clk.NewTicker(interval)

	go func() {
		defer close(t.done)
		defer ticker.Stop()

		if immediate && ctx.Err() == nil {
			fn(ctx)
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				// select не гарантирует приоритет Done над уже готовым тиком.
				if ctx.Err() != nil {
					return
				}
				fn(ctx)
			}
		}
	}()
	return t
}

// Stop отменяет задачу и не ждёт её завершения, поэтому его можно вызывать
// из самой fn. После возврата из Stop новый вызов fn не начнётся.
func (t *Task) Stop() {
	if t == nil {
		return
	}
	t.once.Do(t.cancel)
}

// Wait блокируется до выхода из горутины задачи.
func (t *Task) Wait() {
	if t == nil {
		return
	}
	<-t.done
}

// Done закрывается после выхода из горутины задачи.
func (t *Task) Done() <-chan struct{} {
	return t.done
}
