package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/user"
	"sync"
	"time"

	"github.com/netgrid-io/connector-go/events"
	"github.com/netgrid-io/connector-go/transport"
	"github.com/netgrid-io/connector-go/types"
)

// Logger is the minimal logging contract the hub package needs.
// Concrete loggers live outside this module; nil silences logging.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Controller implements hub initialization, hub sync, and
// per-device add/update/delete against the HTTP control plane.
type Controller struct {
	http   transport.HttpRequester
	auth   types.AuthProvider
	cfg    types.APIConfig
	hub    *types.Hub
	prefix string
	log    Logger

	// syncMu serializes SyncHub against itself (Lock) and against
	// AddDevice/UpdateDevice/DeleteDevice (RLock). See doc.go.
	syncMu sync.RWMutex

	bus *events.Bus
}

// Option configures a Controller.
type Option func(*Controller)

// WithBus attaches an events.Bus that hub/device lifecycle
// transitions are published to. Without it, Controller publishes
// nothing.
func WithBus(bus *events.Bus) Option {
	return func(c *Controller) { c.bus = bus }
}

// New constructs a Controller. hub is the shared hub descriptor
// (owned by the caller and also readable via SessionManager for
// client-id derivation); prefix is the stable device-id prefix
// derived once at startup.
func New(requester transport.HttpRequester, authProvider types.AuthProvider, cfg types.APIConfig, h *types.Hub, prefix string, log Logger, opts ...Option) *Controller {
	c := &Controller{http: requester, auth: authProvider, cfg: cfg, hub: h, prefix: prefix, log: log}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) publish(e events.Event) {
	if c.bus != nil {
		c.bus.Publish(e)
	}
}

func (c *Controller) debugf(format string, args ...any) {
	if c.log != nil {
		c.log.Debugf(format, args...)
	}
}

func (c *Controller) warnf(format string, args ...any) {
	if c.log != nil {
		c.log.Warnf(format, args...)
	}
}

func (c *Controller) baseURL() string {
	scheme := "http"
	if c.cfg.TLS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.cfg.Host)
}

func (c *Controller) hubURL(suffix string) string {
	if suffix == "" {
		return fmt.Sprintf("%s/%s", c.baseURL(), c.cfg.HubEndpoint)
	}
	return fmt.Sprintf("%s/%s/%s", c.baseURL(), c.cfg.HubEndpoint, suffix)
}

func (c *Controller) deviceURL(suffix string) string {
	if suffix == "" {
		return fmt.Sprintf("%s/%s", c.baseURL(), c.cfg.DeviceEndpoint)
	}
	return fmt.Sprintf("%s/%s/%s", c.baseURL(), c.cfg.DeviceEndpoint, suffix)
}

// do obtains a bearer token and performs one HTTP exchange.
func (c *Controller) do(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	token, err := c.auth.GetAccessToken(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", types.ErrNoToken, err)
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()
	return c.http.Do(reqCtx, method, url, body, token)
}

// InitHub creates the hub on the platform if no hub id is known yet,
// or verifies an existing one, per spec §4.2.
func (c *Controller) InitHub(ctx context.Context) error {
	if id := c.hub.ID(); id != "" {
		status, _, err := c.do(ctx, http.MethodHead, c.hubURL(id), nil)
		if err != nil {
			return fmt.Errorf("%w: %w", types.ErrHubInitialization, err)
		}
		switch status {
		case http.StatusOK:
			c.hub.SetInitialized(true)
			c.publish(events.NewHubEvent(events.TypeHubInitialized, id, time.Now()))
			return nil
		case http.StatusNotFound:
			c.hub.ClearID()
			return fmt.Errorf("%w: hub %q", types.ErrHubNotFound, id)
		default:
			return fmt.Errorf("%w: HEAD status %d", types.ErrHubInitialization, status)
		}
	}

	name := c.hub.Name()
	if name == "" {
		name = defaultHubName()
	}

	body, err := json.Marshal(hubDTO{ID: nil, Name: name, Hash: nil, DeviceLocalIDs: []string{}})
	if err != nil {
		return fmt.Errorf("%w: encode request: %w", types.ErrHubInitialization, err)
	}

	status, respBody, err := c.do(ctx, http.MethodPost, c.hubURL(""), body)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrHubInitialization, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: create status %d", types.ErrHubInitialization, status)
	}

	var dto hubDTO
	if err := json.Unmarshal(respBody, &dto); err != nil || dto.ID == nil {
		return fmt.Errorf("%w: decode create response: %w", types.ErrHubInitialization, err)
	}

	c.hub.SetName(name)
	c.hub.SetID(*dto.ID)
	c.hub.SetInitialized(true)
	c.publish(events.NewHubEvent(events.TypeHubInitialized, *dto.ID, time.Now()))
	return nil
}

func defaultHubName() string {
	osUser := "unknown"
	if u, err := user.Current(); err == nil && u.Username != "" {
		osUser = u.Username
	}
	return fmt.Sprintf("%s-%s", osUser, time.Now().UTC().Format(time.RFC3339))
}

// SyncHub reconciles the supplied device set against the platform's
// record of the hub: it fetches the hub, adopts the remote name if it
// differs, and pushes an updated descriptor if the device-set hash
// differs. See spec §4.2 and §5 for the exclusion semantics.
func (c *Controller) SyncHub(ctx context.Context, devices []*types.Device) error {
	c.syncMu.Lock()
	defer c.syncMu.Unlock()

	if !c.hub.Initialized() {
		return types.ErrHubNotInitialized
	}

	ids := make([]string, len(devices))
	for i, d := range devices {
		ids[i] = types.PrefixDeviceID(c.prefix, d.LocalID)
	}
	hash := types.HashDevices(devices)

	id := c.hub.ID()
	status, respBody, err := c.do(ctx, http.MethodGet, c.hubURL(id), nil)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrHubSync, err)
	}
	if status == http.StatusNotFound {
		c.hub.ClearID()
		return fmt.Errorf("%w: hub %q", types.ErrHubNotFound, id)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: GET status %d", types.ErrHubSync, status)
	}

	var remote hubDTO
	if err := json.Unmarshal(respBody, &remote); err != nil {
		return fmt.Errorf("%w: decode GET response: %w", types.ErrHubSync, err)
	}

	name := c.hub.Name()
	if remote.Name != "" && remote.Name != name {
		name = remote.Name
		c.hub.SetName(name)
	}

	remoteHash := ""
	if remote.Hash != nil {
		remoteHash = *remote.Hash
	}
	if remoteHash == hash {
		c.hub.SetHash(hash)
		c.hub.SetDeviceLocalIDs(ids)
		c.publish(events.NewHubEvent(events.TypeHubSynced, id, time.Now()))
		return nil
	}

	body, err := json.Marshal(hubDTO{ID: &id, Name: name, Hash: &hash, DeviceLocalIDs: ids})
	if err != nil {
		return fmt.Errorf("%w: encode PUT body: %w", types.ErrHubSync, err)
	}

	status, _, err = c.do(ctx, http.MethodPut, c.hubURL(id), body)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrHubSync, err)
	}
	switch status {
	case http.StatusOK:
		c.hub.SetHash(hash)
		c.hub.SetDeviceLocalIDs(ids)
		c.publish(events.NewHubEvent(events.TypeHubSynced, id, time.Now()))
		return nil
	case http.StatusBadRequest:
		return fmt.Errorf("%w: platform rejected device set", types.ErrHubSyncDevice)
	case http.StatusNotFound:
		c.hub.ClearID()
		return fmt.Errorf("%w: hub %q", types.ErrHubNotFound, id)
	default:
		return fmt.Errorf("%w: PUT status %d", types.ErrHubSync, status)
	}
}

// AddDevice registers device with the platform. If a device with the
// same prefixed local id already exists remotely, AddDevice records
// its remote id and dispatches an update instead of failing.
func (c *Controller) AddDevice(ctx context.Context, device *types.Device) error {
	c.syncMu.RLock()
	defer c.syncMu.RUnlock()

	wireID := types.PrefixDeviceID(c.prefix, device.LocalID)

	status, probeBody, err := c.do(ctx, http.MethodGet, c.deviceURL(wireID), nil)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrDeviceAdd, err)
	}

	switch status {
	case http.StatusNotFound:
		body, err := json.Marshal(deviceDTO{Name: device.Name, DeviceTypeID: device.DeviceTypeID, LocalID: wireID})
		if err != nil {
			return fmt.Errorf("%w: encode create body: %w", types.ErrDeviceAdd, err)
		}
		status, respBody, err := c.do(ctx, http.MethodPost, c.deviceURL(""), body)
		if err != nil {
			return fmt.Errorf("%w: %w", types.ErrDeviceAdd, err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("%w: create status %d", types.ErrDeviceAdd, status)
		}
		var dto deviceDTO
		if err := json.Unmarshal(respBody, &dto); err != nil || dto.ID == "" {
			return fmt.Errorf("%w: decode create response: %w", types.ErrDeviceAdd, err)
		}
		if err := device.SetRemoteID(dto.ID); err != nil {
			return fmt.Errorf("%w: %w", types.ErrDeviceAdd, err)
		}
		if c.cfg.EventualConsistencyDelay > 0 {
			time.Sleep(c.cfg.EventualConsistencyDelay)
		}
		c.publish(events.NewDeviceEvent(events.TypeDeviceAdded, device.LocalID, time.Now()))
		return nil

	case http.StatusOK:
		var dto deviceDTO
		if err := json.Unmarshal(probeBody, &dto); err != nil || dto.ID == "" {
			return fmt.Errorf("%w: decode probe response: %w", types.ErrDeviceAdd, err)
		}
		if err := device.SetRemoteID(dto.ID); err != nil && !errors.Is(err, types.ErrRemoteIDAlreadySet) {
			return fmt.Errorf("%w: %w", types.ErrDeviceAdd, err)
		}
		return c.updateLocked(ctx, device, wireID)

	default:
		return fmt.Errorf("%w: probe status %d", types.ErrDeviceAdd, status)
	}
}

// UpdateDevice pushes device's current attributes to the platform.
func (c *Controller) UpdateDevice(ctx context.Context, device *types.Device) error {
	c.syncMu.RLock()
	defer c.syncMu.RUnlock()
	wireID := types.PrefixDeviceID(c.prefix, device.LocalID)
	return c.updateLocked(ctx, device, wireID)
}

func (c *Controller) updateLocked(ctx context.Context, device *types.Device, wireID string) error {
	remoteID, _ := device.RemoteID()
	body, err := json.Marshal(deviceDTO{ID: remoteID, Name: device.Name, DeviceTypeID: device.DeviceTypeID, LocalID: wireID})
	if err != nil {
		return fmt.Errorf("%w: encode body: %w", types.ErrDeviceUpdate, err)
	}
	status, _, err := c.do(ctx, http.MethodPut, c.deviceURL(wireID), body)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrDeviceUpdate, err)
	}
	switch status {
	case http.StatusOK:
		c.publish(events.NewDeviceEvent(events.TypeDeviceUpdated, device.LocalID, time.Now()))
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", types.ErrDeviceNotFound, wireID)
	default:
		return fmt.Errorf("%w: status %d", types.ErrDeviceUpdate, status)
	}
}

// DeleteDevice removes the device identified by localID from the
// platform. A 404 is treated as already-deleted: it is logged and
// reported as success.
func (c *Controller) DeleteDevice(ctx context.Context, localID string) error {
	c.syncMu.RLock()
	defer c.syncMu.RUnlock()

	wireID := types.PrefixDeviceID(c.prefix, localID)
	status, _, err := c.do(ctx, http.MethodDelete, c.deviceURL(wireID), nil)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrDeviceDelete, err)
	}
	switch status {
	case http.StatusOK:
		c.publish(events.NewDeviceEvent(events.TypeDeviceDeleted, localID, time.Now()))
		return nil
	case http.StatusNotFound:
		c.warnf("hub: delete device %q: already absent remotely", wireID)
		c.publish(events.NewDeviceEvent(events.TypeDeviceDeleted, localID, time.Now()))
		return nil
	default:
		return fmt.Errorf("%w: status %d", types.ErrDeviceDelete, status)
	}
}
