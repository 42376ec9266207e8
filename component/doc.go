// Package component defines lifecycle-managed pieces of a launchpad service
// and the registry that starts, stops and health-checks them.
//
// Components are started in registration order before the listener is
// bound and stopped in reverse order after it is closed. Their health feeds
// the readiness endpoint; liveness never consults them.
//
//   - Component: lifecycle (Start/Stop) plus Health
//   - Describable: a line in the startup summary
//   - RouteProvider: routes listed in the startup summary
//   - Lazy: deferred, retryable initialization for clients of remote services
package component
