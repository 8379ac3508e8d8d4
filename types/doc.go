// Package types defines the connector's data model: devices, hubs,
// command/event envelopes, connection state, configuration, and the
// sentinel error taxonomy shared by every other package in this module.
package types
