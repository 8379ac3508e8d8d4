package session

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/netgrid-io/connector-go/transport"
	"github.com/netgrid-io/connector-go/types"
	"github.com/netgrid-io/connector-go/worker"
)

type fakeTransport struct {
	mu sync.Mutex

	state          types.ConnectionState
	connectErr     error
	subscribeErr   error
	unsubscribeErr error
	publishErr     error

	msgHandler      transport.MessageHandler
	onConnectCbs    []func()
	onDisconnectCbs []func(code int, reason string)

	connectCalls []string
	resetCalls   []string

	// holdPublish, when set, makes Publish stash the EventWorker instead
	// of signaling it immediately, so a test can simulate an in-flight
	// publish that is still outstanding when the broker connection drops.
	holdPublish bool
	heldPublish *worker.EventWorker
}

func (t *fakeTransport) Connect(ctx context.Context, clientID string, ew *worker.EventWorker) {
	t.mu.Lock()
	t.connectCalls = append(t.connectCalls, clientID)
	err := t.connectErr
	if err == nil {
		t.state = types.StateConnected
	}
	t.mu.Unlock()
	ew.Signal(err)
}

func (t *fakeTransport) Disconnect() {
	t.mu.Lock()
	t.state = types.StateDisconnected
	t.mu.Unlock()
}

func (t *fakeTransport) Reset(clientID string) {
	t.mu.Lock()
	t.resetCalls = append(t.resetCalls, clientID)
	t.mu.Unlock()
}

func (t *fakeTransport) Subscribe(ctx context.Context, topic string, qos types.QoS, ew *worker.EventWorker) {
	ew.Signal(t.subscribeErr)
}

func (t *fakeTransport) Unsubscribe(ctx context.Context, topic string, ew *worker.EventWorker) {
	ew.Signal(t.unsubscribeErr)
}

func (t *fakeTransport) Publish(ctx context.Context, topic string, qos types.QoS, payload []byte, ew *worker.EventWorker) {
	t.mu.Lock()
	if t.holdPublish {
		t.heldPublish = ew
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()
	ew.Signal(t.publishErr)
}

// simulateConnectionDrop mimics PahoTransport.handleConnectionLost/
// failPending: it fails any held (in-flight) publish with
// types.ErrNotConnected and invokes the registered OnDisconnect callbacks,
// the same sequence a real broker drop produces while a publish is still
// awaiting its ack.
func (t *fakeTransport) simulateConnectionDrop() {
	t.mu.Lock()
	t.state = types.StateDisconnected
	held := t.heldPublish
	t.heldPublish = nil
	cbs := t.onDisconnectCbs
	t.mu.Unlock()
	if held != nil {
		held.Signal(types.ErrNotConnected)
	}
	for _, cb := range cbs {
		cb(1, "connection lost")
	}
}

func (t *fakeTransport) OnMessage(handler transport.MessageHandler) { t.msgHandler = handler }

func (t *fakeTransport) State() types.ConnectionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *fakeTransport) OnConnect(cb func()) { t.onConnectCbs = append(t.onConnectCbs, cb) }

func (t *fakeTransport) OnDisconnect(cb func(code int, reason string)) {
	t.onDisconnectCbs = append(t.onDisconnectCbs, cb)
}

func testConnectorCfg() types.ConnectorConfig {
	return types.ConnectorConfig{
		QoS:               "normal",
		ReconnDelayMin:    10 * time.Millisecond,
		ReconnDelayMax:    40 * time.Millisecond,
		ReconnDelayFactor: 2,
		LoopTime:          time.Second,
		MsgRetry:          time.Second,
	}
}

func TestManager_Connect_Success(t *testing.T) {
	tr := &fakeTransport{state: types.StateDisconnected}
	h := types.NewHub("", "")
	m := New(tr, testConnectorCfg(), h, "alice", "prefix1", 16, nil)

	if err := m.Connect(context.Background(), false); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if m.State() != types.StateConnected {
		t.Errorf("State() = %v, want %v", m.State(), types.StateConnected)
	}
}

func TestManager_Connect_AlreadyConnectedFails(t *testing.T) {
	tr := &fakeTransport{state: types.StateConnected}
	h := types.NewHub("", "")
	m := New(tr, testConnectorCfg(), h, "alice", "prefix1", 16, nil)

	err := m.Connect(context.Background(), false)
	if !errors.Is(err, types.ErrAlreadyConnected) {
		t.Fatalf("Connect() error = %v, want ErrAlreadyConnected", err)
	}
}

func TestManager_DeriveClientID_UsesHubIDWhenInitialized(t *testing.T) {
	tr := &fakeTransport{}
	h := types.NewHub("hub-1", "")
	h.SetInitialized(true)
	m := New(tr, testConnectorCfg(), h, "alice", "prefix1", 16, nil)

	m.Connect(context.Background(), false)

	if len(tr.connectCalls) != 1 || tr.connectCalls[0] != "hub-1" {
		t.Errorf("connectCalls = %v, want [hub-1]", tr.connectCalls)
	}
}

func TestManager_DeriveClientID_FallsBackToMD5OfUser(t *testing.T) {
	tr := &fakeTransport{}
	h := types.NewHub("", "")
	m := New(tr, testConnectorCfg(), h, "alice", "prefix1", 16, nil)

	m.Connect(context.Background(), false)

	if len(tr.connectCalls) != 1 || tr.connectCalls[0] == "" {
		t.Fatalf("connectCalls = %v, want one non-empty id", tr.connectCalls)
	}
	if tr.connectCalls[0] == "hub-1" {
		t.Error("used hub id though hub was never initialized")
	}
	sum := md5.Sum([]byte("alice"))
	if want := hex.EncodeToString(sum[:]); tr.connectCalls[0] != want {
		t.Errorf("client id = %q, want md5 of user %q", tr.connectCalls[0], want)
	}
}

func TestManager_ConnectDevice_NotConnectedFails(t *testing.T) {
	tr := &fakeTransport{state: types.StateDisconnected}
	h := types.NewHub("", "")
	m := New(tr, testConnectorCfg(), h, "alice", "prefix1", 16, nil)

	err := m.ConnectDevice(context.Background(), "device-1")
	if !errors.Is(err, types.ErrNotConnected) {
		t.Fatalf("ConnectDevice() error = %v, want ErrNotConnected", err)
	}
}

func TestManager_ConnectDevice_NotAllowedIsPreserved(t *testing.T) {
	tr := &fakeTransport{state: types.StateConnected, subscribeErr: types.ErrDeviceConnectNotAllowed}
	h := types.NewHub("", "")
	m := New(tr, testConnectorCfg(), h, "alice", "prefix1", 16, nil)

	err := m.ConnectDevice(context.Background(), "device-1")
	if !errors.Is(err, types.ErrDeviceConnectNotAllowed) {
		t.Fatalf("ConnectDevice() error = %v, want ErrDeviceConnectNotAllowed", err)
	}
}

func TestManager_ConnectDevice_Success(t *testing.T) {
	tr := &fakeTransport{state: types.StateConnected}
	h := types.NewHub("", "")
	m := New(tr, testConnectorCfg(), h, "alice", "prefix1", 16, nil)

	if err := m.ConnectDevice(context.Background(), "device-1"); err != nil {
		t.Fatalf("ConnectDevice() error = %v", err)
	}
}

func TestManager_HandleMessage_EnqueuesDecodedCommand(t *testing.T) {
	tr := &fakeTransport{}
	h := types.NewHub("", "")
	m := New(tr, testConnectorCfg(), h, "alice", "prefix1", 16, nil)

	topic := "command/prefix1-device-1/switch/set"
	payload := []byte(`{"correlation_id":"c1","completion_strategy":"optimistic","timestamp":1,"payload":{"data":"on","metadata":""}}`)
	tr.msgHandler(topic, payload)

	cmd, err := m.ReceiveCommand(context.Background(), false)
	if err != nil {
		t.Fatalf("ReceiveCommand() error = %v", err)
	}
	if cmd.DeviceLocalID != "device-1" {
		t.Errorf("DeviceLocalID = %q, want %q", cmd.DeviceLocalID, "device-1")
	}
	if cmd.ServiceURI != "switch/set" {
		t.Errorf("ServiceURI = %q, want %q", cmd.ServiceURI, "switch/set")
	}
}

func TestManager_HandleMessage_DropsMalformedTopic(t *testing.T) {
	tr := &fakeTransport{}
	h := types.NewHub("", "")
	m := New(tr, testConnectorCfg(), h, "alice", "prefix1", 16, nil)

	tr.msgHandler("not-a-command-topic", []byte(`{}`))

	_, err := m.ReceiveCommand(context.Background(), false)
	if !errors.Is(err, types.ErrCommandQueueEmpty) {
		t.Fatalf("ReceiveCommand() error = %v, want ErrCommandQueueEmpty", err)
	}
}

func TestManager_ReceiveCommand_NonBlockingEmpty(t *testing.T) {
	tr := &fakeTransport{}
	h := types.NewHub("", "")
	m := New(tr, testConnectorCfg(), h, "alice", "prefix1", 16, nil)

	_, err := m.ReceiveCommand(context.Background(), false)
	if !errors.Is(err, types.ErrCommandQueueEmpty) {
		t.Fatalf("ReceiveCommand() error = %v, want ErrCommandQueueEmpty", err)
	}
}

func TestManager_ReceiveCommand_BlockingTimesOutAsQueueEmpty(t *testing.T) {
	tr := &fakeTransport{}
	h := types.NewHub("", "")
	m := New(tr, testConnectorCfg(), h, "alice", "prefix1", 16, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.ReceiveCommand(ctx, true)
	if !errors.Is(err, types.ErrCommandQueueEmpty) {
		t.Fatalf("ReceiveCommand() error = %v, want ErrCommandQueueEmpty (not ctx.Err())", err)
	}
}

func TestManager_HandleMessage_DropsWhenQueueFull(t *testing.T) {
	tr := &fakeTransport{}
	h := types.NewHub("", "")
	m := New(tr, testConnectorCfg(), h, "alice", "prefix1", 1, nil)

	payload := []byte(`{"correlation_id":"c1","completion_strategy":"optimistic","timestamp":1,"payload":{"data":"on","metadata":""}}`)
	tr.msgHandler("command/prefix1-device-1/switch/set", payload)
	tr.msgHandler("command/prefix1-device-2/switch/set", payload)

	cmd, err := m.ReceiveCommand(context.Background(), false)
	if err != nil {
		t.Fatalf("ReceiveCommand() error = %v", err)
	}
	if cmd.DeviceLocalID != "device-1" {
		t.Errorf("DeviceLocalID = %q, want %q (second enqueue should have been dropped)", cmd.DeviceLocalID, "device-1")
	}
	if _, err := m.ReceiveCommand(context.Background(), false); !errors.Is(err, types.ErrCommandQueueEmpty) {
		t.Error("a second command was queued though the buffer size was 1")
	}
}

func TestManager_SendResponse_Success(t *testing.T) {
	tr := &fakeTransport{state: types.StateConnected}
	h := types.NewHub("", "")
	m := New(tr, testConnectorCfg(), h, "alice", "prefix1", 16, nil)

	env := types.NewCommandEnvelope("device-1", "switch/set", types.Message{Data: "on"}, "c1", types.CompletionOptimistic, 1)
	if err := m.SendResponse(context.Background(), env); err != nil {
		t.Fatalf("SendResponse() error = %v", err)
	}
}

func TestManager_SendResponse_TransportErrorWrapped(t *testing.T) {
	tr := &fakeTransport{state: types.StateConnected, publishErr: errors.New("broker unreachable")}
	h := types.NewHub("", "")
	m := New(tr, testConnectorCfg(), h, "alice", "prefix1", 16, nil)

	env := types.NewCommandEnvelope("device-1", "switch/set", types.Message{Data: "on"}, "c1", types.CompletionOptimistic, 1)
	err := m.SendResponse(context.Background(), env)
	if !errors.Is(err, types.ErrSendResponse) {
		t.Fatalf("SendResponse() error = %v, want wrapped ErrSendResponse", err)
	}
}

func TestManager_EmitEvent_Success(t *testing.T) {
	tr := &fakeTransport{state: types.StateConnected}
	h := types.NewHub("", "")
	m := New(tr, testConnectorCfg(), h, "alice", "prefix1", 16, nil)

	env := types.NewEventEnvelope("device-1", "temperature/reading", types.Message{Data: "21.5"}, "c2")
	if err := m.EmitEvent(context.Background(), env); err != nil {
		t.Fatalf("EmitEvent() error = %v", err)
	}
}

// TestManager_EmitEvent_InFlightPublishFailsOnConnectionDrop exercises the
// scenario from the original cc_lib client's __cleanEvents: a publish
// already sent to the transport and still awaiting its ack must not hang
// or leak a raw transport error when the broker connection drops mid-flight
// — it must resolve with ErrNotConnected instead.
func TestManager_EmitEvent_InFlightPublishFailsOnConnectionDrop(t *testing.T) {
	tr := &fakeTransport{state: types.StateConnected, holdPublish: true}
	h := types.NewHub("", "")
	m := New(tr, testConnectorCfg(), h, "alice", "prefix1", 16, nil)

	env := types.NewEventEnvelope("device-1", "temperature/reading", types.Message{Data: "21.5"}, "c3")

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.EmitEvent(context.Background(), env)
	}()

	deadline := time.After(time.Second)
	for {
		tr.mu.Lock()
		held := tr.heldPublish != nil
		tr.mu.Unlock()
		if held {
			break
		}
		select {
		case <-deadline:
			t.Fatal("Publish never reached the transport")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	tr.simulateConnectionDrop()

	select {
	case err := <-errCh:
		if !errors.Is(err, types.ErrNotConnected) {
			t.Fatalf("EmitEvent() error = %v, want ErrNotConnected after a mid-flight connection drop", err)
		}
	case <-time.After(time.Second):
		t.Fatal("EmitEvent() did not return after the connection drop; the in-flight worker was left hanging")
	}
}

func TestManager_SetConnectCallback_FiresOnConnect(t *testing.T) {
	tr := &fakeTransport{}
	h := types.NewHub("", "")
	m := New(tr, testConnectorCfg(), h, "alice", "prefix1", 16, nil)

	done := make(chan struct{})
	m.SetConnectCallback(func() { close(done) })

	// The transport's own OnConnect hook was registered at construction;
	// invoke it the way the real transport would on a successful connect.
	for _, cb := range tr.onConnectCbs {
		cb()
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("connect callback was not invoked")
	}
}

func TestManager_Disconnect_ClearsReconnectFlag(t *testing.T) {
	tr := &fakeTransport{state: types.StateDisconnected}
	h := types.NewHub("", "")
	m := New(tr, testConnectorCfg(), h, "alice", "prefix1", 16, nil)

	m.Connect(context.Background(), true)
	m.Disconnect()

	if m.reconnectFlag.Load() {
		t.Error("reconnectFlag still set after Disconnect()")
	}
}

func TestHumanDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{30, "30s"},
		{90, "1m and 30s"},
		{300, "5m and 0s"},
	}
	for _, tt := range tests {
		if got := humanDuration(tt.seconds); got != tt.want {
			t.Errorf("humanDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
