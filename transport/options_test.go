package transport

import (
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", o.timeout)
	}
	if o.maxRetries != 3 {
		t.Errorf("maxRetries = %d, want 3", o.maxRetries)
	}
	if o.metrics {
		t.Error("metrics default = true, want false")
	}
}

func TestApplyOptions(t *testing.T) {
	o := defaultOptions()
	applyOptions(o, []Option{
		WithTimeout(5 * time.Second),
		WithMaxRetries(7),
		WithMetrics(true),
		WithBasicAuth("alice", "s3cret"),
	})

	if o.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", o.timeout)
	}
	if o.maxRetries != 7 {
		t.Errorf("maxRetries = %d, want 7", o.maxRetries)
	}
	if !o.metrics {
		t.Error("metrics = false, want true")
	}
	if o.username != "alice" || o.password != "s3cret" {
		t.Errorf("username/password = %q/%q, want alice/s3cret", o.username, o.password)
	}
}
