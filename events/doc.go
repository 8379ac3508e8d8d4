// Package events is an internal notification bus for connection,
// hub, and device lifecycle fan-out. It sits alongside, not inside,
// the session and hub packages: those packages publish onto a Bus
// they are handed at construction, and the integrator (or any other
// in-process observer — metrics, an admin UI) subscribes to it
// independently of the request/response and callback surfaces those
// packages already expose.
package events
