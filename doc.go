// Package connector provides a client-side library that bridges a
// user-owned IoT application to a remote platform over an authenticated
// MQTT session, with an HTTP control plane for hub and device lifecycle.
//
// # Overview
//
// Three subsystems make up the core of the library:
//
//   - session: owns the MQTT connection state machine, coordinates
//     per-device subscriptions, and implements bounded-exponential
//     reconnect with user-visible lifecycle callbacks.
//   - worker: a uniform future/worker abstraction that turns
//     fire-and-forget broker acknowledgements and synchronous HTTP
//     calls into results an integrator can await blockingly or as a
//     handle.
//   - hub: a synchronization protocol that keeps a remote registry of
//     devices consistent with the locally-managed set using a content
//     hash, tolerant of concurrent device add/remove activity.
//
// # Quick Start
//
//	cfg := types.NewConfig(
//	    types.WithCredentials("alice", "secret"),
//	    types.WithConnector("broker.example.com", 8883, true),
//	    types.WithAPI("api.example.com", true),
//	)
//	mqttTransport := transport.NewPahoTransport("ssl://broker.example.com:8883")
//	httpRequester := transport.NewHTTPRequester()
//	c := client.New(cfg, mqttTransport, httpRequester, authProvider, nil)
//	if err := c.Connect(ctx, true); err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Disconnect()
//
//	if err := c.InitHub(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Package Organization
//
//   - types: device, hub, and envelope data model, configuration, and
//     the sentinel error taxonomy.
//   - worker: Future, ThreadWorker, and EventWorker completion
//     primitives.
//   - transport: the MQTT transport (paho.mqtt.golang) and the default
//     HTTP requester.
//   - auth: bearer-token sources implementing types.AuthProvider.
//   - registry: the process-local device pool.
//   - hub: the hub reconciliation protocol (init/sync/add/update/delete).
//   - session: the connection state machine, subscribe/unsubscribe,
//     command ingress, and response/event egress.
//   - events: an internal notification bus used to fan out connection
//     and hub lifecycle changes to multiple observers.
//   - client: the integrator-facing facade that glues the above
//     together as a process-wide singleton.
//
// # Thread Safety
//
// All exported types are safe for concurrent use unless otherwise
// documented.
//
// # License
//
// MIT License.
package connector
