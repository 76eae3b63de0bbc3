package repeat

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/finance-tracker/internal/lib/clock"
)

const waitFor = time.Second

func TestEvery_ImmediateAndTicks(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	var calls atomic.Int32

	task := Every(context.Background(), clk, time.Minute, true, func(context.Context) {
		calls.Add(1)
	})
	defer task.Stop()

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, waitFor, time.Millisecond)

	clk.Advance(time.Minute)
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, waitFor, time.Millisecond)

	clk.Advance(time.Minute)
	assert.Eventually(t, func() bool { return calls.Load() == 3 }, waitFor, time.Millisecond)
}

func TestEvery_NotImmediate(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	var calls atomic.Int32

	task := Every(context.Background(), clk, time.Minute, false, func(context.Context) {
		calls.Add(1)
	})
	defer task.Stop()

	assert.Never(t, func() bool { return calls.Load() > 0 }, 20*time.Millisecond, time.Millisecond)

	clk.Advance(time.Minute)
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, waitFor, time.Millisecond)
}

func TestTask_StopPreventsFurtherCalls(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	var calls atomic.Int32

	task := Every(context.Background(), clk, time.Minute, true, func(context.Context) {
		calls.Add(1)
	})
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, waitFor, time.Millisecond)

	task.Stop()
	task.Wait()
	clk.Advance(time.Minute)
	clk.Advance(time.Minute)

	assert.Never(t, func() bool { return calls.Load() > 1 }, 20*time.Millisecond, time.Millisecond)
	assert.Equal(t, 0, clk.Tickers())
}

func TestTask_StopFromInsideFn(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	var task *Task
	started := make(chan struct{})

	task = Every(context.Background(), clk, time.Minute, false, func(ctx context.Context) {
		<-started
		task.Stop()
		assert.Error(t, ctx.Err())
	})
	close(started)
	clk.Advance(time.Minute)

	select {
	case <-task.Done():
	case <-time.After(waitFor):
		t.Fatal("task did not exit after Stop from fn")
	}
}

func TestTask_ParentContextCancel(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	ctx, cancel := context.WithCancel(context.Background())

	task := Every(ctx, clk, time.Minute, false, func(context.Context) {})
	cancel()

	select {
	case <-task.Done():
	case <-time.After(waitFor):
		t.Fatal("task did not exit after parent cancel")
	}
}

func TestTask_NilSafe(t *testing.T) {
	var task *Task
	assert.NotPanics(t, func() {
		task.Stop()
		task.Wait()
	})
}
