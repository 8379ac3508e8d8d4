package types

import "sync"

// Device is a descriptor for a device managed by the integrator. The
// core holds only a copy of these attributes; lifecycle and semantic
// interpretation of the device belong to the integrator.
type Device struct {
	Tags         map[string]string
	LocalID      string
	Name         string
	DeviceTypeID string

	mu       sync.RWMutex
	remoteID string
	hasID    bool
}

// NewDevice constructs a Device. LocalID must be non-empty; it is
// assigned exactly once and never changes afterward.
func NewDevice(localID, name, deviceTypeID string, tags map[string]string) *Device {
	if tags == nil {
		tags = make(map[string]string)
	}
	return &Device{
		LocalID:      localID,
		Name:         name,
		DeviceTypeID: deviceTypeID,
		Tags:         tags,
	}
}

// RemoteID returns the platform-assigned id, and whether it has been set.
func (d *Device) RemoteID() (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.remoteID, d.hasID
}

// SetRemoteID assigns the platform-issued id exactly once. A second
// call returns ErrRemoteIDAlreadySet and leaves the device unchanged.
func (d *Device) SetRemoteID(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hasID {
		return ErrRemoteIDAlreadySet
	}
	d.remoteID = id
	d.hasID = true
	return nil
}
