// Package poll provides a cancellable periodic runner. Start returns a handle
// and the owning component's teardown path always calls Stop, so timers never
// outlive the view or service that created them.
package poll

import (
	"context"
	"sync"
	"time"
)

// Handle controls a running poller.
type Handle struct {
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// Start runs fn immediately and then once per interval until Stop is called
// or ctx is cancelled. fn receives a context that is cancelled on Stop; a
// late completion after Stop is discarded, never delivered.
func Start(ctx context.Context, interval time.Duration, fn func(context.Context)) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(h.done)

		fn(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()

	return h
}

// Stop cancels the poller and waits for the in-flight run, if any, to return.
// Safe to call more than once.
func (h *Handle) Stop() {
	h.stopOnce.Do(func() {
		h.cancel()
		<-h.done
	})
}
