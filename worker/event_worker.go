package worker

import "sync"

// CompletionHook inspects the raw transport-level outcome (nil on
// success) and returns the error that should be surfaced to the
// caller — translating transport errors into the caller's domain
// error taxonomy. It runs exactly once, immediately before the
// worker's Future is signaled.
type CompletionHook func(transportErr error) error

// EventWorker is a completion handle threaded into a single transport
// call (subscribe, unsubscribe, publish, connect). It does not run
// any code itself: the transport keeps it in its set of pending
// workers and invokes Signal when the call's acknowledgement arrives,
// or when the transport disconnects with all pending acks abandoned.
type EventWorker struct {
	name   string
	future *Future

	mu       sync.Mutex
	hook     CompletionHook
	signaled bool
}

// NewEventWorker constructs an EventWorker labeled name.
func NewEventWorker(name string) *EventWorker {
	return &EventWorker{name: name, future: newFuture(name)}
}

// Future returns the worker's Future.
func (w *EventWorker) Future() *Future { return w.future }

// SetCompletionHook installs the translation hook invoked by Signal.
// Must be called before the worker is handed to the transport.
func (w *EventWorker) SetCompletionHook(hook CompletionHook) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hook = hook
}

// Signal completes the worker exactly once: it runs the installed
// completion hook (if any) against transportErr and stores the
// resulting error on the Future. transportErr is nil on success.
func (w *EventWorker) Signal(transportErr error) {
	w.mu.Lock()
	if w.signaled {
		w.mu.Unlock()
		return
	}
	w.signaled = true
	hook := w.hook
	w.mu.Unlock()

	final := transportErr
	if hook != nil {
		final = hook(transportErr)
	}
	w.future.complete(nil, final)
}
