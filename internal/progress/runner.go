// Package progress drives the simulated order-tracking timeline.
package progress

import (
	"context"
	"sync"
	"time"

	"github.com/w24010/delightful/internal/domain"
)

// DefaultInterval is the tick period of the tracking view.
const DefaultInterval = 3 * time.Second

// Runner advances a domain.Progress on a ticker and reports every state to
// its callback. It stops on its own at 100%, on Stop, or when ctx is done.
type Runner struct {
	interval time.Duration
	onUpdate func(domain.Progress)

	mu      sync.Mutex
	state   domain.Progress
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewRunner returns a runner at the initial state. onUpdate is called from
// the runner goroutine and must not block for long.
func NewRunner(interval time.Duration, onUpdate func(domain.Progress)) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Runner{
		interval: interval,
		onUpdate: onUpdate,
		state:    domain.NewProgress(),
		done:     make(chan struct{}),
	}
}

// Start launches the ticker goroutine. Calling Start twice is a no-op.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	go r.run(ctx)
}

func (r *Runner) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			r.state = r.state.Tick()
			state := r.state
			r.mu.Unlock()

			if r.onUpdate != nil {
				r.onUpdate(state)
			}
			if state.Done() {
				return
			}
		}
	}
}

// State returns the current progress.
func (r *Runner) State() domain.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Stop cancels the ticker and waits for the goroutine to exit.
// It is safe to call more than once and before Start.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, started := r.cancel, r.started
	r.mu.Unlock()

	if !started {
		return
	}
	cancel()
	<-r.done
}

// Done is closed once the runner goroutine has exited.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}
