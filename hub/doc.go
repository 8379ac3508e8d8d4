// Package hub implements the hash-based device-registry reconciliation
// protocol over the HTTP control plane: hub initialization, hub sync
// (hash-compare and update), and per-device add/update/delete.
//
// Controller serializes SyncHub against AddDevice/DeleteDevice with a
// single sync.RWMutex: SyncHub takes the write lock (mutually
// exclusive with itself and with any in-flight add/delete), while
// AddDevice/DeleteDevice/UpdateDevice take the read lock. This single
// primitive plays two roles the design calls out separately — the
// "hubSyncLock held for the sync's entire duration" and the "join
// pending add/delete workers before syncing" — because Go's RWMutex
// already blocks a pending writer's Lock until every held RLock
// releases, and blocks new RLock acquisitions once a writer is
// waiting.
package hub
