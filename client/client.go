package client

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/netgrid-io/connector-go/events"
	"github.com/netgrid-io/connector-go/hub"
	"github.com/netgrid-io/connector-go/registry"
	"github.com/netgrid-io/connector-go/session"
	"github.com/netgrid-io/connector-go/transport"
	"github.com/netgrid-io/connector-go/types"
	"github.com/netgrid-io/connector-go/worker"
)

// Logger is the minimal logging contract the client package needs.
// Concrete loggers live outside this module; nil silences logging.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Client is the integrator-facing facade: it owns the SessionManager,
// HubController, and device Registry, enforces input validation, and
// mediates the sync/async variants of every operation.
type Client struct {
	cfg      *types.Config
	hub      *types.Hub
	registry *registry.Registry
	hubCtl   *hub.Controller
	session  *session.Manager
	events   *events.Bus
}

var (
	instance   *Client
	instanceMu sync.Once
)

const defaultCommandQueueSize = 256

// New returns the process-wide Client instance, constructing it on
// the first call from cfg and its collaborators. Subsequent calls
// ignore their arguments and return the original instance.
func New(cfg *types.Config, mqttTransport transport.MqttTransport, httpRequester transport.HttpRequester, authProvider types.AuthProvider, log Logger) *Client {
	instanceMu.Do(func() {
		instance = newClient(cfg, mqttTransport, httpRequester, authProvider, log)
	})
	return instance
}

func newClient(cfg *types.Config, mqttTransport transport.MqttTransport, httpRequester transport.HttpRequester, authProvider types.AuthProvider, log Logger) *Client {
	prefix := cfg.Device.IDPrefix
	if prefix == "" {
		prefix = types.DeriveDeviceIDPrefix(cfg.Credentials.User, time.Now())
	}

	hubDesc := types.NewHub(cfg.Hub.ID, cfg.Hub.Name)
	reg := registry.New(log)
	bus := events.NewBus()
	hubCtl := hub.New(httpRequester, authProvider, cfg.API, hubDesc, prefix, log, hub.WithBus(bus))
	sessionMgr := session.New(mqttTransport, cfg.Connector, hubDesc, cfg.Credentials.User, prefix, defaultCommandQueueSize, log, session.WithBus(bus))

	return &Client{
		cfg:      cfg,
		hub:      hubDesc,
		registry: reg,
		hubCtl:   hubCtl,
		session:  sessionMgr,
		events:   bus,
	}
}

// Events returns the Client's internal lifecycle event bus. Subscribe
// to it to observe connection, hub, and device lifecycle transitions
// independently of the blocking/async call that triggered them.
func (c *Client) Events() *events.Bus {
	return c.events
}

func runAsync(name string, task worker.Task) *worker.Future {
	return worker.NewThreadWorker(name, task).Start()
}

// SetConnectCallback installs cb, fired whenever the broker
// connection is established, including after a reconnect.
func (c *Client) SetConnectCallback(cb func()) {
	c.session.SetConnectCallback(cb)
}

// SetDisconnectCallback installs cb, fired whenever the broker
// connection is lost. code is 0 for a user-initiated disconnect.
func (c *Client) SetDisconnectCallback(cb func(code int, reason string)) {
	c.session.SetDisconnectCallback(cb)
}

// Connect blocks until the broker session is established or the
// attempt fails. If reconnect is true, a subsequent non-user-initiated
// disconnect starts the bounded-exponential reconnect loop.
func (c *Client) Connect(ctx context.Context, reconnect bool) error {
	return c.session.Connect(ctx, reconnect)
}

// ConnectAsync starts Connect on a dedicated goroutine and returns
// its Future immediately.
func (c *Client) ConnectAsync(ctx context.Context, reconnect bool) *worker.Future {
	return runAsync("connect", func() (any, error) { return nil, c.session.Connect(ctx, reconnect) })
}

// Disconnect requests an orderly, user-initiated shutdown of the
// broker session. No further reconnect attempts are made.
func (c *Client) Disconnect() {
	c.session.Disconnect()
}

// State returns the current connection state.
func (c *Client) State() types.ConnectionState {
	return c.session.State()
}

// InitHub creates the hub on the platform if none is known locally,
// or verifies an existing one.
func (c *Client) InitHub(ctx context.Context) error {
	return c.hubCtl.InitHub(ctx)
}

// InitHubAsync starts InitHub on a dedicated goroutine.
func (c *Client) InitHubAsync(ctx context.Context) *worker.Future {
	return runAsync("init-hub", func() (any, error) { return nil, c.hubCtl.InitHub(ctx) })
}

// SyncHub reconciles the platform's record of the hub against the
// locally registered device set.
func (c *Client) SyncHub(ctx context.Context) error {
	return c.hubCtl.SyncHub(ctx, c.registry.Devices())
}

// SyncHubAsync starts SyncHub on a dedicated goroutine.
func (c *Client) SyncHubAsync(ctx context.Context) *worker.Future {
	return runAsync("sync-hub", func() (any, error) { return nil, c.hubCtl.SyncHub(ctx, c.registry.Devices()) })
}

// AddDevice registers device both locally and with the platform. If
// the platform registration fails, device is not retained locally.
func (c *Client) AddDevice(ctx context.Context, device *types.Device) error {
	c.registry.Add(device)
	if err := c.hubCtl.AddDevice(ctx, device); err != nil {
		c.registry.Delete(device.LocalID)
		return err
	}
	return nil
}

// AddDeviceAsync starts AddDevice on a dedicated goroutine.
func (c *Client) AddDeviceAsync(ctx context.Context, device *types.Device) *worker.Future {
	return runAsync("add-device-"+device.LocalID, func() (any, error) { return nil, c.AddDevice(ctx, device) })
}

// UpdateDevice pushes device's current attributes to the platform.
func (c *Client) UpdateDevice(ctx context.Context, device *types.Device) error {
	return c.hubCtl.UpdateDevice(ctx, device)
}

// UpdateDeviceAsync starts UpdateDevice on a dedicated goroutine.
func (c *Client) UpdateDeviceAsync(ctx context.Context, device *types.Device) *worker.Future {
	return runAsync("update-device-"+device.LocalID, func() (any, error) { return nil, c.hubCtl.UpdateDevice(ctx, device) })
}

// DeleteDevice removes device from the platform and the local registry.
func (c *Client) DeleteDevice(ctx context.Context, device *types.Device) error {
	if err := c.hubCtl.DeleteDevice(ctx, device.LocalID); err != nil {
		return err
	}
	c.registry.Delete(device.LocalID)
	return nil
}

// DeleteDeviceAsync starts DeleteDevice on a dedicated goroutine.
func (c *Client) DeleteDeviceAsync(ctx context.Context, device *types.Device) *worker.Future {
	return runAsync("delete-device-"+device.LocalID, func() (any, error) { return nil, c.DeleteDevice(ctx, device) })
}

// ConnectDevice subscribes to localID's command topic, required
// before commands for that device can be received.
func (c *Client) ConnectDevice(ctx context.Context, localID string) error {
	return c.session.ConnectDevice(ctx, localID)
}

// ConnectDeviceAsync starts ConnectDevice on a dedicated goroutine.
func (c *Client) ConnectDeviceAsync(ctx context.Context, localID string) *worker.Future {
	return runAsync("connect-device-"+localID, func() (any, error) { return nil, c.session.ConnectDevice(ctx, localID) })
}

// DisconnectDevice unsubscribes from localID's command topic.
func (c *Client) DisconnectDevice(ctx context.Context, localID string) error {
	return c.session.DisconnectDevice(ctx, localID)
}

// DisconnectDeviceAsync starts DisconnectDevice on a dedicated goroutine.
func (c *Client) DisconnectDeviceAsync(ctx context.Context, localID string) *worker.Future {
	return runAsync("disconnect-device-"+localID, func() (any, error) { return nil, c.session.DisconnectDevice(ctx, localID) })
}

// ReceiveCommand dequeues the next inbound command. If block is
// false, it fails immediately with ErrCommandQueueEmpty when none is
// queued; if true, it waits until one arrives or ctx is done.
func (c *Client) ReceiveCommand(ctx context.Context, block bool) (*types.CommandEnvelope, error) {
	return c.session.ReceiveCommand(ctx, block)
}

// SendResponse publishes a response to an inbound command.
func (c *Client) SendResponse(ctx context.Context, env *types.CommandEnvelope) error {
	return c.session.SendResponse(ctx, env)
}

// SendResponseAsync starts SendResponse on a dedicated goroutine.
func (c *Client) SendResponseAsync(ctx context.Context, env *types.CommandEnvelope) *worker.Future {
	return runAsync("send-response-"+env.CorrelationID, func() (any, error) { return nil, c.session.SendResponse(ctx, env) })
}

// EmitEvent publishes an integrator-originated event. If env carries
// no correlation id, one is generated.
func (c *Client) EmitEvent(ctx context.Context, env *types.EventEnvelope) error {
	if env.CorrelationID == "" {
		env.CorrelationID = uuid.NewString()
	}
	return c.session.EmitEvent(ctx, env)
}

// EmitEventAsync starts EmitEvent on a dedicated goroutine.
func (c *Client) EmitEventAsync(ctx context.Context, env *types.EventEnvelope) *worker.Future {
	return runAsync("send-event-"+env.CorrelationID, func() (any, error) { return nil, c.EmitEvent(ctx, env) })
}

// Close tears down the session and clears local state. It does not
// reset the singleton: a subsequent New call still returns this
// instance.
func (c *Client) Close(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		c.session.Disconnect()
		return nil
	})
	g.Go(func() error {
		c.registry.Clear()
		return nil
	})
	err := g.Wait()
	c.events.Close()
	return err
}
