package types

import "encoding/json"

// CompletionStrategy hints at how a command response is consumed by
// the platform: optimistic responses are advisory, pessimistic ones
// are required before the platform considers the command complete.
type CompletionStrategy string

const (
	// CompletionOptimistic indicates a response is advisory.
	CompletionOptimistic CompletionStrategy = "optimistic"

	// CompletionPessimistic indicates a response is required.
	CompletionPessimistic CompletionStrategy = "pessimistic"
)

// Message carries the opaque service payload shared by commands and events.
type Message struct {
	Data     string `json:"data"`
	Metadata string `json:"metadata"`
}

// CommandEnvelope wraps an inbound command dispatched to the
// integrator via ReceiveCommand. It is immutable after construction.
type CommandEnvelope struct {
	DeviceLocalID      string             `json:"-"`
	ServiceURI         string             `json:"-"`
	Message            Message            `json:"message"`
	CorrelationID      string             `json:"correlation_id"`
	CompletionStrategy CompletionStrategy `json:"completion_strategy"`
	Timestamp          int64              `json:"timestamp"`
}

// wireCommand is the inbound JSON shape, which nests the payload and
// omits the device/service fields (those come from the topic).
type wireCommand struct {
	CorrelationID      string             `json:"correlation_id"`
	CompletionStrategy CompletionStrategy `json:"completion_strategy"`
	Timestamp          int64              `json:"timestamp"`
	Payload            struct {
		Data     string `json:"data"`
		Metadata string `json:"metadata"`
	} `json:"payload"`
}

// EventEnvelope wraps an outbound event created by the integrator and
// emitted via EmitEvent. It is not modified after construction, except
// that client.EmitEvent fills in a blank CorrelationID before sending.
type EventEnvelope struct {
	DeviceLocalID string  `json:"-"`
	ServiceURI    string  `json:"-"`
	Message       Message `json:"-"`
	CorrelationID string  `json:"-"`
}

// NewCommandEnvelope constructs a CommandEnvelope with the given
// fields, as produced by command ingress.
func NewCommandEnvelope(deviceLocalID, serviceURI string, msg Message, corrID string, strategy CompletionStrategy, timestamp int64) *CommandEnvelope {
	return &CommandEnvelope{
		DeviceLocalID:      deviceLocalID,
		ServiceURI:         serviceURI,
		Message:            msg,
		CorrelationID:      corrID,
		CompletionStrategy: strategy,
		Timestamp:          timestamp,
	}
}

// NewEventEnvelope constructs an EventEnvelope for emission.
func NewEventEnvelope(deviceLocalID, serviceURI string, msg Message, corrID string) *EventEnvelope {
	return &EventEnvelope{
		DeviceLocalID: deviceLocalID,
		ServiceURI:    serviceURI,
		Message:       msg,
		CorrelationID: corrID,
	}
}

// DecodeCommand parses the JSON payload of an inbound command message,
// associating it with the device and service uri taken from the topic.
func DecodeCommand(deviceLocalID, serviceURI string, payload []byte) (*CommandEnvelope, error) {
	var wire wireCommand
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, err
	}
	return NewCommandEnvelope(
		deviceLocalID,
		serviceURI,
		Message{Data: wire.Payload.Data, Metadata: wire.Payload.Metadata},
		wire.CorrelationID,
		wire.CompletionStrategy,
		wire.Timestamp,
	), nil
}

// EncodeResponse marshals a CommandEnvelope into its outbound wire
// representation (used when the integrator answers a command).
func EncodeResponse(env *CommandEnvelope) ([]byte, error) {
	return json.Marshal(env)
}

// EncodeEvent marshals an EventEnvelope's message into its outbound
// wire representation.
func EncodeEvent(env *EventEnvelope) ([]byte, error) {
	return json.Marshal(env.Message)
}
