// Package endpoint provides the gin handlers for launchpad's system routes:
// liveness, readiness, info, version and runtime metrics. None of them
// require authentication.
package endpoint
