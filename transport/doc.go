// Package transport provides the broker and HTTP plumbing used by the
// session and hub subsystems.
//
// MqttTransport wraps github.com/eclipse/paho.mqtt.golang: Connect,
// Subscribe, Unsubscribe, and Publish all accept a *worker.EventWorker
// completion handle, signaled asynchronously by the matching broker
// acknowledgement (or synchronously for a QoS 0 publish). The
// SessionManager owns reconnect policy itself — PahoTransport disables
// the underlying library's automatic reconnect and instead reports
// connection loss through OnDisconnect, so retries stay visible to and
// governed by the manager's state machine.
//
// HttpRequester is the synchronous request/response contract used by
// HubController; DefaultHttpRequester wraps *http.Client with
// retry-with-backoff (github.com/cenkalti/backoff/v4) and, optionally,
// OpenTelemetry instrumentation (otelhttp).
package transport
