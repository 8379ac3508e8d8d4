// Package client provides Client, the single integrator-facing
// facade over the session, hub, registry, and worker packages. Client
// is a process-wide singleton: New always returns the first instance
// constructed, guarded by sync.Once, mirroring the language-specific
// metaclass singleton of the system this module was modeled on.
//
// Every operation that performs network I/O has two forms: a
// blocking one that returns once the operation completes, and an
// Async variant that returns immediately with a *worker.Future the
// caller can poll or wait on. This module prefers two named methods
// over a boolean "asynchronous" parameter, which is the idiomatic Go
// shape for this kind of bimodal API.
package client
