package events

import (
	"testing"
	"time"
)

func TestNewDisconnectEvent_CarriesCodeAndReason(t *testing.T) {
	at := time.Now()
	e := NewDisconnectEvent(7, "keepalive timeout", at)

	if e.Type() != TypeDisconnected {
		t.Errorf("Type() = %q, want %q", e.Type(), TypeDisconnected)
	}
	if e.Code != 7 {
		t.Errorf("Code = %d, want 7", e.Code)
	}
	if e.Reason != "keepalive timeout" {
		t.Errorf("Reason = %q, want %q", e.Reason, "keepalive timeout")
	}
	if !e.Timestamp().Equal(at) {
		t.Errorf("Timestamp() = %v, want %v", e.Timestamp(), at)
	}
}

func TestNewHubEvent_CarriesHubID(t *testing.T) {
	e := NewHubEvent(TypeHubSynced, "hub-1", time.Now())
	if e.Type() != TypeHubSynced {
		t.Errorf("Type() = %q, want %q", e.Type(), TypeHubSynced)
	}
	if e.HubID != "hub-1" {
		t.Errorf("HubID = %q, want %q", e.HubID, "hub-1")
	}
}

func TestNewDeviceEvent_CarriesLocalID(t *testing.T) {
	e := NewDeviceEvent(TypeDeviceAdded, "device-1", time.Now())
	if e.Type() != TypeDeviceAdded {
		t.Errorf("Type() = %q, want %q", e.Type(), TypeDeviceAdded)
	}
	if e.LocalID != "device-1" {
		t.Errorf("LocalID = %q, want %q", e.LocalID, "device-1")
	}
}
