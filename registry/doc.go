// Package registry holds the set of devices the client facade
// (client.Client) currently knows about. It is a plain in-memory,
// mutex-guarded map — the hub reconciliation protocol in the hub
// package is the only thing that talks to the backend registry.
package registry
