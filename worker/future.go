package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/netgrid-io/connector-go/types"
)

// Future is a one-shot synchronization object carrying either a
// result value or an error, signaled exactly once by the worker that
// created it.
type Future struct {
	name   string
	done   atomic.Bool
	signal chan struct{}
	once   sync.Once

	mu     sync.RWMutex
	result any
	err    error
}

func newFuture(name string) *Future {
	return &Future{name: name, signal: make(chan struct{})}
}

// Name returns the worker-supplied label, used for logging only.
func (f *Future) Name() string { return f.name }

// Done reports whether the worker has signaled completion.
func (f *Future) Done() bool { return f.done.Load() }

// Running reports whether the worker has started but not yet completed.
func (f *Future) Running() bool { return !f.done.Load() }

// Wait blocks until the worker signals completion or ctx is done,
// whichever comes first. It returns ctx.Err() on timeout/cancellation;
// Done() still reflects whether the worker actually completed.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.signal:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Result returns the stored value, or the stored error, or
// ErrFutureNotDone if the worker has not yet signaled completion.
func (f *Future) Result() (any, error) {
	if !f.done.Load() {
		return nil, types.ErrFutureNotDone
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// complete stores the outcome and signals waiters exactly once.
func (f *Future) complete(result any, err error) {
	f.once.Do(func() {
		f.mu.Lock()
		f.result = result
		f.err = err
		f.mu.Unlock()
		f.done.Store(true)
		close(f.signal)
	})
}
