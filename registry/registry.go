package registry

import (
	"fmt"
	"sync"

	"github.com/netgrid-io/connector-go/types"
)

// Logger is the minimal logging contract registry needs. Concrete
// loggers live outside this module; nil is valid and silences
// logging entirely.
type Logger interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Registry is the local view of known devices, keyed by local
// device ID. It never itself talks to the backend — HubController
// owns reconciliation; Registry just tracks what has been accepted.
type Registry struct {
	log Logger

	mu      sync.RWMutex
	devices map[string]*types.Device
}

// New returns an empty Registry. log may be nil.
func New(log Logger) *Registry {
	return &Registry{log: log, devices: make(map[string]*types.Device)}
}

func (r *Registry) warnf(format string, args ...any) {
	if r.log != nil {
		r.log.Warnf(format, args...)
	}
}

// Add registers device. If a device with the same local ID is
// already present, Add logs a warning and leaves the existing entry
// untouched — it does not overwrite.
func (r *Registry) Add(device *types.Device) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.devices[device.LocalID]; exists {
		r.warnf("registry: device %q already present, ignoring add", device.LocalID)
		return
	}
	r.devices[device.LocalID] = device
}

// Delete removes the device identified by localID. If no such
// device is registered, Delete logs a warning and is otherwise a
// no-op.
func (r *Registry) Delete(localID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.devices[localID]; !exists {
		r.warnf("registry: device %q not present, ignoring delete", localID)
		return
	}
	delete(r.devices, localID)
}

// Get returns the device identified by localID, or a wrapped
// ErrDeviceNotFound if it is not registered.
func (r *Registry) Get(localID string) (*types.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	device, exists := r.devices[localID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", types.ErrDeviceNotFound, localID)
	}
	return device, nil
}

// Clear removes every registered device.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices = make(map[string]*types.Device)
}

// Devices returns a snapshot slice of every registered device. The
// slice is safe to range over without holding any lock; it does not
// reflect subsequent Add/Delete calls.
func (r *Registry) Devices() []*types.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*types.Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	return out
}
