package transport

import (
	"context"
	"fmt"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/netgrid-io/connector-go/types"
	"github.com/netgrid-io/connector-go/worker"
)

// PahoTransport is the MqttTransport implementation backed by
// github.com/eclipse/paho.mqtt.golang. It is safe for concurrent use.
type PahoTransport struct {
	broker string
	opts   *options

	mu     sync.Mutex
	client mqtt.Client

	stateMu sync.RWMutex
	state   types.ConnectionState

	handlerMu  sync.RWMutex
	msgHandler MessageHandler

	callbackMu  sync.Mutex
	onConnect   []func()
	onDisconnect []func(code int, reason string)

	// pendingMu guards pending, the in-flight EventWorkers for
	// Subscribe/Unsubscribe/Publish calls that have not yet been
	// acknowledged by the broker. Mirrors __events/__cleanEvents in
	// the original implementation: on disconnect, every still-pending
	// worker is failed with ErrNotConnected instead of being left to
	// wait (possibly forever) on a token that will never complete.
	pendingMu sync.Mutex
	pending   map[*worker.EventWorker]struct{}
}

// NewPahoTransport constructs a PahoTransport dialing broker (e.g.
// "tcp://broker.example.com:1883" or "ssl://broker.example.com:8883").
func NewPahoTransport(broker string, opts ...Option) *PahoTransport {
	o := defaultOptions()
	applyOptions(o, opts)
	return &PahoTransport{
		broker:  broker,
		opts:    o,
		state:   types.StateDisconnected,
		pending: make(map[*worker.EventWorker]struct{}),
	}
}

// trackPending registers ew as awaiting a broker acknowledgement.
func (t *PahoTransport) trackPending(ew *worker.EventWorker) {
	t.pendingMu.Lock()
	t.pending[ew] = struct{}{}
	t.pendingMu.Unlock()
}

// untrackPending removes ew once its own goroutine has signaled it,
// whether that happened via the broker's ack or via failPending.
func (t *PahoTransport) untrackPending(ew *worker.EventWorker) {
	t.pendingMu.Lock()
	delete(t.pending, ew)
	t.pendingMu.Unlock()
}

// failPending signals ErrNotConnected to every EventWorker still
// awaiting a broker ack and clears the registry. EventWorker.Signal is
// a no-op past its first call, so this races harmlessly against a
// token that completes concurrently.
func (t *PahoTransport) failPending() {
	t.pendingMu.Lock()
	pending := t.pending
	t.pending = make(map[*worker.EventWorker]struct{})
	t.pendingMu.Unlock()
	for ew := range pending {
		ew.Signal(types.ErrNotConnected)
	}
}

// Connect implements MqttTransport. The underlying client's automatic
// reconnect is disabled: reconnection is the SessionManager's concern.
func (t *PahoTransport) Connect(ctx context.Context, clientID string, ew *worker.EventWorker) {
	t.setState(types.StateConnecting)

	mqttOpts := mqtt.NewClientOptions().
		AddBroker(t.broker).
		SetClientID(clientID).
		SetAutoReconnect(false).
		SetCleanSession(true).
		SetConnectTimeout(t.opts.connTimeout).
		SetKeepAlive(t.opts.keepalive).
		SetMessageChannelDepth(64).
		SetOnConnectHandler(t.handleConnect).
		SetConnectionLostHandler(t.handleConnectionLost)

	if t.opts.username != "" {
		mqttOpts.SetUsername(t.opts.username)
		mqttOpts.SetPassword(t.opts.password)
	}
	if t.opts.tlsConfig != nil {
		mqttOpts.SetTLSConfig(t.opts.tlsConfig)
	}

	t.mu.Lock()
	t.client = mqtt.NewClient(mqttOpts)
	client := t.client
	t.mu.Unlock()

	token := client.Connect()
	go func() {
		done := make(chan struct{})
		go func() {
			token.Wait()
			close(done)
		}()
		select {
		case <-ctx.Done():
			ew.Signal(ctx.Err())
		case <-done:
			if err := token.Error(); err != nil {
				t.setState(types.StateDisconnected)
				ew.Signal(fmt.Errorf("%w: %w", types.ErrConnect, err))
				return
			}
			ew.Signal(nil)
		}
	}()
}

// handleConnect is paho's own on-connect hook; it fires on every
// successful (re)connect, independent of which call to Connect
// triggered it.
func (t *PahoTransport) handleConnect(mqtt.Client) {
	t.setState(types.StateConnected)
	t.callbackMu.Lock()
	cbs := append([]func(){}, t.onConnect...)
	t.callbackMu.Unlock()
	for _, cb := range cbs {
		go cb()
	}
}

// handleConnectionLost is paho's own connection-lost hook.
func (t *PahoTransport) handleConnectionLost(_ mqtt.Client, err error) {
	t.setState(types.StateDisconnected)
	t.failPending()
	t.callbackMu.Lock()
	cbs := append([]func(int, string){}, t.onDisconnect...)
	t.callbackMu.Unlock()
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	code := 1
	if err == nil {
		code = 0
	}
	for _, cb := range cbs {
		go cb(code, reason)
	}
}

// Disconnect implements MqttTransport.
func (t *PahoTransport) Disconnect() {
	t.mu.Lock()
	client := t.client
	t.mu.Unlock()
	if client == nil {
		return
	}
	client.Disconnect(250)
	t.setState(types.StateDisconnected)
	t.failPending()
	t.callbackMu.Lock()
	cbs := append([]func(int, string){}, t.onDisconnect...)
	t.callbackMu.Unlock()
	for _, cb := range cbs {
		go cb(0, "user requested disconnect")
	}
}

// Reset implements MqttTransport: it tears down any existing client so
// the next Connect call uses a fresh client id.
func (t *PahoTransport) Reset(string) {
	t.mu.Lock()
	if t.client != nil && t.client.IsConnected() {
		t.client.Disconnect(250)
	}
	t.client = nil
	t.mu.Unlock()
}

// Subscribe implements MqttTransport.
func (t *PahoTransport) Subscribe(ctx context.Context, topic string, qos types.QoS, ew *worker.EventWorker) {
	t.mu.Lock()
	client := t.client
	t.mu.Unlock()
	if client == nil || !client.IsConnected() {
		ew.Signal(types.ErrNotConnected)
		return
	}

	token := client.Subscribe(topic, byte(qos), func(_ mqtt.Client, msg mqtt.Message) {
		t.handlerMu.RLock()
		h := t.msgHandler
		t.handlerMu.RUnlock()
		if h != nil {
			h(msg.Topic(), msg.Payload())
		}
	})

	t.trackPending(ew)
	go func() {
		defer t.untrackPending(ew)
		waitToken(ctx, token)
		if err := token.Error(); err != nil {
			ew.Signal(err)
			return
		}
		if st, ok := token.(*mqtt.SubscribeToken); ok {
			for _, granted := range st.Result() {
				if granted == 0x80 {
					ew.Signal(types.ErrDeviceConnectNotAllowed)
					return
				}
			}
		}
		ew.Signal(nil)
	}()
}

// Unsubscribe implements MqttTransport.
func (t *PahoTransport) Unsubscribe(ctx context.Context, topic string, ew *worker.EventWorker) {
	t.mu.Lock()
	client := t.client
	t.mu.Unlock()
	if client == nil || !client.IsConnected() {
		ew.Signal(types.ErrNotConnected)
		return
	}

	token := client.Unsubscribe(topic)
	t.trackPending(ew)
	go func() {
		defer t.untrackPending(ew)
		waitToken(ctx, token)
		ew.Signal(token.Error())
	}()
}

// Publish implements MqttTransport.
func (t *PahoTransport) Publish(ctx context.Context, topic string, qos types.QoS, payload []byte, ew *worker.EventWorker) {
	t.mu.Lock()
	client := t.client
	t.mu.Unlock()
	if client == nil || !client.IsConnected() {
		ew.Signal(types.ErrNotConnected)
		return
	}

	token := client.Publish(topic, byte(qos), false, payload)

	if qos == types.QoSLow {
		ew.Signal(nil)
		return
	}

	t.trackPending(ew)
	go func() {
		defer t.untrackPending(ew)
		waitToken(ctx, token)
		ew.Signal(token.Error())
	}()
}

// OnMessage implements MqttTransport.
func (t *PahoTransport) OnMessage(handler MessageHandler) {
	t.handlerMu.Lock()
	t.msgHandler = handler
	t.handlerMu.Unlock()
}

// State implements MqttTransport.
func (t *PahoTransport) State() types.ConnectionState {
	t.stateMu.RLock()
	defer t.stateMu.RUnlock()
	return t.state
}

// OnConnect implements MqttTransport.
func (t *PahoTransport) OnConnect(cb func()) {
	t.callbackMu.Lock()
	defer t.callbackMu.Unlock()
	t.onConnect = append(t.onConnect, cb)
}

// OnDisconnect implements MqttTransport.
func (t *PahoTransport) OnDisconnect(cb func(code int, reason string)) {
	t.callbackMu.Lock()
	defer t.callbackMu.Unlock()
	t.onDisconnect = append(t.onDisconnect, cb)
}

func (t *PahoTransport) setState(s types.ConnectionState) {
	t.stateMu.Lock()
	t.state = s
	t.stateMu.Unlock()
}

// waitToken blocks until token completes or ctx is done, whichever
// comes first, mirroring the context-bounded wait used throughout this
// codebase's transport implementations.
func waitToken(ctx context.Context, token mqtt.Token) {
	done := make(chan struct{})
	go func() {
		token.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
	case <-done:
	}
}
