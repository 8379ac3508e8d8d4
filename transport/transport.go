package transport

import (
	"context"

	"github.com/netgrid-io/connector-go/types"
	"github.com/netgrid-io/connector-go/worker"
)

// MessageHandler is invoked for every inbound message on a subscribed
// topic. It must not block: slow handling belongs on a detached
// goroutine, mirroring the "user callbacks on detached contexts"
// design note.
type MessageHandler func(topic string, payload []byte)

// MqttTransport is the broker connection owned exclusively by the
// SessionManager. Each of Subscribe, Unsubscribe, and Publish accepts
// a completion handle signaled asynchronously by the matching broker
// acknowledgement (or immediately, for a QoS 0 publish).
type MqttTransport interface {
	// Connect attempts a TCP+MQTT CONNECT using clientID, signaling ew
	// with the outcome. Connect does not block past accepting the
	// connection attempt; completion is reported through ew.
	Connect(ctx context.Context, clientID string, ew *worker.EventWorker)

	// Disconnect requests an orderly, user-initiated shutdown. Any
	// EventWorkers still pending are failed with types.ErrNotConnected.
	Disconnect()

	// Reset discards the underlying client so that the next Connect
	// builds a fresh one. The session manager calls it before each
	// reconnect attempt. PahoTransport ignores clientID; the id in
	// effect is the one passed to the following Connect.
	Reset(clientID string)

	// Subscribe issues a SUBSCRIBE at qos, signaling ew on SUBACK.
	Subscribe(ctx context.Context, topic string, qos types.QoS, ew *worker.EventWorker)

	// Unsubscribe issues an UNSUBSCRIBE, signaling ew on UNSUBACK.
	Unsubscribe(ctx context.Context, topic string, ew *worker.EventWorker)

	// Publish issues a PUBLISH at qos. For QoS 0, ew is signaled
	// synchronously before Publish returns; for QoS >= 1, ew is
	// signaled on PUBACK/PUBCOMP.
	Publish(ctx context.Context, topic string, qos types.QoS, payload []byte, ew *worker.EventWorker)

	// OnMessage installs the handler invoked for inbound messages on
	// any subscribed topic.
	OnMessage(handler MessageHandler)

	// State returns the current connection state.
	State() types.ConnectionState

	// OnConnect registers a callback fired whenever the connection is
	// established (including after a reconnect).
	OnConnect(func())

	// OnDisconnect registers a callback fired whenever the connection
	// is lost. code is 0 for a user-initiated disconnect.
	OnDisconnect(func(code int, reason string))
}

// HttpRequester is the synchronous request/response contract used by
// HubController. It is an external collaborator per the module's
// scope: only request/response with a per-call timeout matters here.
type HttpRequester interface {
	// Do executes method against url with the given body (nil for no
	// body) and bearer token, returning the response status code and
	// body bytes.
	Do(ctx context.Context, method, url string, body []byte, bearerToken string) (status int, respBody []byte, err error)
}
