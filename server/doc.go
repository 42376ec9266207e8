// Package server binds launchpad's listener and dispatches requests.
//
// System routes (liveness, readiness, info, version, metrics) live on a gin
// engine that is consulted before the application. Everything else goes to
// the application handler wrapped in the request middleware chain, so the
// liveness route never waits behind application middleware. The listener
// speaks HTTP/1.1 and cleartext HTTP/2 (h2c).
//
// Start binds synchronously and fails with a BIND_ERROR when the address
// cannot be acquired; it never retries.
package server
