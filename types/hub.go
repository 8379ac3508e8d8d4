package types

import "sync"

// Hub is the platform-side grouping object that references a set of
// device local ids and carries a content hash used to detect drift
// between the local device pool and the remote registry.
type Hub struct {
	mu             sync.RWMutex
	id             string
	name           string
	hash           string
	deviceLocalIDs []string
	initialized    bool
}

// NewHub returns a Hub seeded with an optionally pre-known id/name
// (e.g. loaded from configuration on a prior run).
func NewHub(id, name string) *Hub {
	return &Hub{id: id, name: name}
}

// ID returns the hub's platform-assigned id, or "" if unset.
func (h *Hub) ID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.id
}

// SetID assigns the hub's platform id.
func (h *Hub) SetID(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.id = id
}

// ClearID resets the hub id, forcing the next InitHub to recreate it.
// Also clears the initialized flag.
func (h *Hub) ClearID() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.id = ""
	h.initialized = false
}

// Name returns the hub's display name.
func (h *Hub) Name() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.name
}

// SetName assigns the hub's display name.
func (h *Hub) SetName(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.name = name
}

// Hash returns the last-synced canonical device-set hash.
func (h *Hub) Hash() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.hash
}

// SetHash records the canonical device-set hash after a successful sync.
func (h *Hub) SetHash(hash string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hash = hash
}

// DeviceLocalIDs returns the prefixed device ids recorded at the last sync.
func (h *Hub) DeviceLocalIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, len(h.deviceLocalIDs))
	copy(out, h.deviceLocalIDs)
	return out
}

// SetDeviceLocalIDs records the prefixed device ids for the current sync.
func (h *Hub) SetDeviceLocalIDs(ids []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deviceLocalIDs = append([]string(nil), ids...)
}

// Initialized reports whether InitHub has successfully completed.
func (h *Hub) Initialized() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.initialized
}

// SetInitialized marks the hub as initialized (or not).
func (h *Hub) SetInitialized(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.initialized = v
}
