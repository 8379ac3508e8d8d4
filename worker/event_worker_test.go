package worker

import (
	"errors"
	"testing"
)

func TestEventWorker_SignalWithoutHook(t *testing.T) {
	w := NewEventWorker("test")
	w.Signal(nil)

	if _, err := w.Future().Result(); err != nil {
		t.Fatalf("Result() error = %v, want nil", err)
	}
}

func TestEventWorker_CompletionHookTranslatesError(t *testing.T) {
	domainErr := errors.New("domain: device connect not allowed")
	w := NewEventWorker("test")
	w.SetCompletionHook(func(transportErr error) error {
		if transportErr != nil {
			return domainErr
		}
		return nil
	})

	w.Signal(errors.New("suback 128"))

	_, err := w.Future().Result()
	if !errors.Is(err, domainErr) {
		t.Fatalf("Result() error = %v, want %v", err, domainErr)
	}
}

func TestEventWorker_SignalOnlyOnce(t *testing.T) {
	w := NewEventWorker("test")
	calls := 0
	w.SetCompletionHook(func(transportErr error) error {
		calls++
		return transportErr
	})

	w.Signal(nil)
	w.Signal(errors.New("late duplicate ack"))

	if calls != 1 {
		t.Errorf("completion hook invoked %d times, want 1", calls)
	}
	if _, err := w.Future().Result(); err != nil {
		t.Fatalf("Result() error = %v, want nil (first signal wins)", err)
	}
}
