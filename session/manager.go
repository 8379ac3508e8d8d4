package session

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/netgrid-io/connector-go/events"
	"github.com/netgrid-io/connector-go/transport"
	"github.com/netgrid-io/connector-go/types"
	"github.com/netgrid-io/connector-go/worker"
)

// Logger is the minimal logging contract the session package needs.
// Concrete loggers live outside this module; nil silences logging.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Manager owns the MQTT connection state machine described in spec
// §4.3–§4.7: connect/reconnect, per-device subscribe/unsubscribe,
// command ingress, and response/event egress.
type Manager struct {
	mqtt   transport.MqttTransport
	cfg    types.ConnectorConfig
	hub    *types.Hub
	user   string
	prefix string
	qos    types.QoS
	log    Logger

	// connectMu is the connectLock of spec §5: held across a connect
	// attempt, serializing Connect against itself.
	connectMu     sync.Mutex
	reconnectFlag atomic.Bool

	stopMu sync.Mutex
	stopCh chan struct{}

	// callbackMu is the setCallbackLock of spec §5.
	callbackMu      sync.Mutex
	onConnectCbs    []func()
	onDisconnectCbs []func(code int, reason string)

	queue chan *types.CommandEnvelope

	bus *events.Bus
}

// Option configures a Manager.
type Option func(*Manager)

// WithBus attaches an events.Bus that lifecycle transitions are
// published to. Without it, Manager publishes nothing.
func WithBus(bus *events.Bus) Option {
	return func(m *Manager) { m.bus = bus }
}

// New constructs a Manager. hub supplies the client-id derivation
// rule (hub id once initialized, else md5(user)); queueSize bounds
// the inbound command queue.
func New(mqttTransport transport.MqttTransport, cfg types.ConnectorConfig, hub *types.Hub, user, devicePrefix string, queueSize int, log Logger, opts ...Option) *Manager {
	m := &Manager{
		mqtt:   mqttTransport,
		cfg:    cfg,
		hub:    hub,
		user:   user,
		prefix: devicePrefix,
		qos:    types.ParseQoS(cfg.QoS),
		log:    log,
		queue:  make(chan *types.CommandEnvelope, queueSize),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.mqtt.OnMessage(m.handleMessage)
	m.mqtt.OnConnect(m.handleConnect)
	m.mqtt.OnDisconnect(m.handleDisconnect)
	return m
}

func (m *Manager) publish(e events.Event) {
	if m.bus != nil {
		m.bus.Publish(e)
	}
}

// SetConnectCallback installs cb, fired on a detached goroutine every
// time the broker connection is established, including after a
// reconnect. A second call replaces the previous callback list.
func (m *Manager) SetConnectCallback(cb func()) {
	m.callbackMu.Lock()
	defer m.callbackMu.Unlock()
	m.onConnectCbs = []func(){cb}
}

// SetDisconnectCallback installs cb, fired on a detached goroutine
// whenever the connection is lost. code is 0 for a user-initiated
// disconnect.
func (m *Manager) SetDisconnectCallback(cb func(code int, reason string)) {
	m.callbackMu.Lock()
	defer m.callbackMu.Unlock()
	m.onDisconnectCbs = []func(int, string){cb}
}

func (m *Manager) deriveClientID() string {
	if m.hub.Initialized() {
		if id := m.hub.ID(); id != "" {
			return id
		}
	}
	sum := md5.Sum([]byte(m.user))
	return hex.EncodeToString(sum[:])
}

// State returns the current connection state.
func (m *Manager) State() types.ConnectionState {
	return m.mqtt.State()
}

// Connect attempts to establish the broker session, blocking until
// the attempt succeeds or fails. If reconnect is true, a disconnect
// that is not user-initiated starts the bounded-exponential reconnect
// loop (spec §4.4) instead of surfacing to the caller. If the first
// attempt itself fails and reconnect is true, the error is returned
// and the reconnect loop is started as well.
func (m *Manager) Connect(ctx context.Context, reconnect bool) error {
	m.connectMu.Lock()
	defer m.connectMu.Unlock()

	if m.mqtt.State() == types.StateConnected {
		return types.ErrAlreadyConnected
	}

	m.reconnectFlag.Store(reconnect)
	stop := make(chan struct{})
	m.stopMu.Lock()
	m.stopCh = stop
	m.stopMu.Unlock()

	err := m.connectOnce(ctx)
	if err != nil && reconnect {
		m.warnf("session: connect failed, starting reconnect loop: %v", err)
		go m.reconnectLoop(stop)
	}
	return err
}

func (m *Manager) connectOnce(ctx context.Context) error {
	clientID := m.deriveClientID()
	ew := worker.NewEventWorker("connect")
	m.mqtt.Connect(ctx, clientID, ew)
	if err := ew.Future().Wait(ctx); err != nil {
		return err
	}
	_, err := ew.Future().Result()
	return err
}

// Disconnect requests an orderly, user-initiated shutdown: it stops
// any in-progress reconnect loop and asks the transport to disconnect.
func (m *Manager) Disconnect() {
	m.reconnectFlag.Store(false)
	m.stopMu.Lock()
	if m.stopCh != nil {
		close(m.stopCh)
		m.stopCh = nil
	}
	m.stopMu.Unlock()
	m.mqtt.Disconnect()
}

func (m *Manager) handleConnect() {
	m.publish(events.NewConnectionEvent(events.TypeConnected, time.Now()))
	m.callbackMu.Lock()
	cbs := append([]func(){}, m.onConnectCbs...)
	m.callbackMu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

// handleConnect and handleDisconnect are registered once, at
// construction, as the transport's own on-connect/on-disconnect
// hooks. The transport already dispatches them on a detached
// goroutine (see transport.PahoTransport), so the user callbacks
// invoked here run on that same detached goroutine rather than
// spawning another.
func (m *Manager) handleDisconnect(code int, reason string) {
	m.publish(events.NewDisconnectEvent(code, reason, time.Now()))
	m.callbackMu.Lock()
	cbs := append([]func(int, string){}, m.onDisconnectCbs...)
	m.callbackMu.Unlock()
	for _, cb := range cbs {
		cb(code, reason)
	}

	if code == 0 {
		m.debugf("session: disconnected by user request")
		return
	}

	m.warnf("session: connection lost: %s", reason)
	if m.reconnectFlag.Load() {
		m.stopMu.Lock()
		stop := m.stopCh
		m.stopMu.Unlock()
		go m.reconnectLoop(stop)
	}
}

// reconnectLoop implements spec §4.4: it sleeps for the
// bounded-exponential backoff duration, attempts a reconnect, and
// repeats until it succeeds or stop is closed by Disconnect.
func (m *Manager) reconnectLoop(stop chan struct{}) {
	attempt := 1
	minSec := m.cfg.ReconnDelayMin.Seconds()
	maxSec := m.cfg.ReconnDelayMax.Seconds()
	factor := m.cfg.ReconnDelayFactor

	for m.reconnectFlag.Load() {
		delaySec := types.CalcReconnectDelay(minSec, maxSec, attempt, factor)
		m.infof("session: reconnecting in %s (attempt %d)", humanDuration(delaySec), attempt)
		m.publish(events.NewConnectionEvent(events.TypeReconnecting, time.Now()))

		select {
		case <-stop:
			return
		case <-time.After(time.Duration(delaySec * float64(time.Second))):
		}

		if !m.reconnectFlag.Load() {
			return
		}

		clientID := m.deriveClientID()
		m.mqtt.Reset(clientID)

		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.LoopTime+m.cfg.MsgRetry)
		err := m.connectOnce(ctx)
		cancel()
		if err == nil {
			return
		}
		m.warnf("session: reconnect attempt %d failed: %v", attempt, err)
		attempt++
	}
}

func humanDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	minutes := int(d.Minutes())
	secs := int(d.Seconds()) - minutes*60
	if minutes > 0 {
		return fmt.Sprintf("%dm and %ds", minutes, secs)
	}
	return fmt.Sprintf("%ds", secs)
}

// ConnectDevice subscribes to the given device's command topic at the
// configured QoS. See spec §4.5.
func (m *Manager) ConnectDevice(ctx context.Context, localID string) error {
	if m.mqtt.State() != types.StateConnected {
		return types.ErrNotConnected
	}
	topic := fmt.Sprintf("command/%s/+", types.PrefixDeviceID(m.prefix, localID))
	ew := worker.NewEventWorker("connect-device")
	ew.SetCompletionHook(func(transportErr error) error {
		if transportErr == nil {
			return nil
		}
		if errors.Is(transportErr, types.ErrDeviceConnectNotAllowed) || errors.Is(transportErr, types.ErrNotConnected) {
			return transportErr
		}
		return fmt.Errorf("%w: %w", types.ErrDeviceConnect, transportErr)
	})
	m.mqtt.Subscribe(ctx, topic, m.qos, ew)
	if err := ew.Future().Wait(ctx); err != nil {
		return err
	}
	if _, err := ew.Future().Result(); err != nil {
		return err
	}
	m.publish(events.NewDeviceEvent(events.TypeDeviceConnected, localID, time.Now()))
	return nil
}

// DisconnectDevice unsubscribes from the given device's command
// topic. See spec §4.5.
func (m *Manager) DisconnectDevice(ctx context.Context, localID string) error {
	topic := fmt.Sprintf("command/%s/+", types.PrefixDeviceID(m.prefix, localID))
	ew := worker.NewEventWorker("disconnect-device")
	ew.SetCompletionHook(func(transportErr error) error {
		if transportErr == nil {
			return nil
		}
		if errors.Is(transportErr, types.ErrNotConnected) {
			return transportErr
		}
		return fmt.Errorf("%w: %w", types.ErrDeviceDisconnect, transportErr)
	})
	m.mqtt.Unsubscribe(ctx, topic, ew)
	if err := ew.Future().Wait(ctx); err != nil {
		return err
	}
	if _, err := ew.Future().Result(); err != nil {
		return err
	}
	m.publish(events.NewDeviceEvent(events.TypeDeviceDisconnected, localID, time.Now()))
	return nil
}

// handleMessage implements command ingress (spec §4.6): it runs on
// the transport's own message-dispatch goroutine and must not block.
func (m *Manager) handleMessage(topic string, payload []byte) {
	parts := strings.SplitN(topic, "/", 3)
	if len(parts) != 3 || parts[0] != "command" {
		m.warnf("session: dropping message on malformed topic %q", topic)
		return
	}
	localID, err := types.ParseDeviceID(m.prefix, parts[1])
	if err != nil {
		m.warnf("session: dropping message: %v", err)
		return
	}
	cmd, err := types.DecodeCommand(localID, parts[2], payload)
	if err != nil {
		m.warnf("session: dropping malformed command on %q: %v", topic, err)
		return
	}
	select {
	case m.queue <- cmd:
	default:
		m.warnf("session: command queue full, dropping command for device %q", localID)
	}
}

// ReceiveCommand dequeues the next inbound command. If block is
// false, it fails immediately with ErrCommandQueueEmpty when no
// command is queued; if true, it waits until one arrives or ctx is
// done.
func (m *Manager) ReceiveCommand(ctx context.Context, block bool) (*types.CommandEnvelope, error) {
	if !block {
		select {
		case cmd := <-m.queue:
			return cmd, nil
		default:
			return nil, types.ErrCommandQueueEmpty
		}
	}
	select {
	case cmd := <-m.queue:
		return cmd, nil
	case <-ctx.Done():
		return nil, types.ErrCommandQueueEmpty
	}
}

// SendResponse publishes a response to an inbound command. See spec §4.7.
func (m *Manager) SendResponse(ctx context.Context, env *types.CommandEnvelope) error {
	payload, err := types.EncodeResponse(env)
	if err != nil {
		return fmt.Errorf("%w: encode response: %w", types.ErrSendResponse, err)
	}
	topic := fmt.Sprintf("response/%s/%s", types.PrefixDeviceID(m.prefix, env.DeviceLocalID), env.ServiceURI)
	return m.send(ctx, topic, payload, types.ErrSendResponse)
}

// EmitEvent publishes an integrator-originated event. See spec §4.7.
func (m *Manager) EmitEvent(ctx context.Context, env *types.EventEnvelope) error {
	payload, err := types.EncodeEvent(env)
	if err != nil {
		return fmt.Errorf("%w: encode event: %w", types.ErrSendEvent, err)
	}
	topic := fmt.Sprintf("event/%s/%s", types.PrefixDeviceID(m.prefix, env.DeviceLocalID), env.ServiceURI)
	return m.send(ctx, topic, payload, types.ErrSendEvent)
}

// send is the shared publish path used by both SendResponse and
// EmitEvent, differing only in the domain error kind a non-transport
// failure is wrapped as.
func (m *Manager) send(ctx context.Context, topic string, payload []byte, kind error) error {
	ew := worker.NewEventWorker("send")
	ew.SetCompletionHook(func(transportErr error) error {
		if transportErr == nil {
			m.debugf("session: sending successful on %q", topic)
			return nil
		}
		if errors.Is(transportErr, types.ErrNotConnected) {
			return transportErr
		}
		return fmt.Errorf("%w: %w", kind, transportErr)
	})
	m.mqtt.Publish(ctx, topic, m.qos, payload, ew)
	if err := ew.Future().Wait(ctx); err != nil {
		return err
	}
	_, err := ew.Future().Result()
	return err
}

func (m *Manager) debugf(format string, args ...any) {
	if m.log != nil {
		m.log.Debugf(format, args...)
	}
}

func (m *Manager) infof(format string, args ...any) {
	if m.log != nil {
		m.log.Infof(format, args...)
	}
}

func (m *Manager) warnf(format string, args ...any) {
	if m.log != nil {
		m.log.Warnf(format, args...)
	}
}
