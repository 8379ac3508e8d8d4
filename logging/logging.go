// Package logging declares the Logger contract accepted throughout
// this module. No concrete sink is bundled — callers wire in
// whatever structured logger they already use — but a no-op
// implementation is provided so construction never requires a
// nil-check.
package logging

// Logger is the leveled logging contract accepted by every package
// in this module that logs. session.Logger and client.Logger have the
// same method set as this interface; hub.Logger and registry.Logger
// declare subsets of it. Any implementation of this interface
// therefore satisfies all of them.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type noop struct{}

func (noop) Debugf(string, ...any) {}
func (noop) Infof(string, ...any)  {}
func (noop) Warnf(string, ...any)  {}
func (noop) Errorf(string, ...any) {}

// NoOp returns a Logger that discards everything.
func NoOp() Logger { return noop{} }
