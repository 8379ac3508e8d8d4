// Package session implements the SessionManager: the MQTT connection
// state machine, bounded-exponential reconnect, per-device
// subscribe/unsubscribe, command ingress into a bounded queue, and
// response/event egress. It exclusively owns the transport.MqttTransport
// handed to it at construction.
package session
