package poll

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStart_RunsImmediately(t *testing.T) {
	ran := make(chan struct{})
	h := Start(context.Background(), time.Hour, func(ctx context.Context) {
		close(ran)
	})
	defer h.Stop()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("first run did not happen immediately")
	}
}

func TestStart_TicksUntilStopped(t *testing.T) {
	var runs atomic.Int32
	h := Start(context.Background(), 10*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
	})

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	h.Stop()
	after := runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no runs after Stop")
}

func TestStop_IsIdempotent(t *testing.T) {
	h := Start(context.Background(), time.Hour, func(ctx context.Context) {})
	h.Stop()
	h.Stop()
}

func TestStart_ParentCancelStopsPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32
	h := Start(ctx, 10*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
	})

	cancel()
	time.Sleep(30 * time.Millisecond)
	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load())

	h.Stop()
}

func TestStop_WaitsForInFlightRun(t *testing.T) {
	started := make(chan struct{})
	var finished atomic.Bool
	h := Start(context.Background(), time.Hour, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		finished.Store(true)
	})

	<-started
	h.Stop()
	assert.True(t, finished.Load(), "Stop returns only after the running fn")
}
