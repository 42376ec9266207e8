// Package health implements both sides of the liveness contract between a
// service and its external supervisor: the check Policy (interval, timeout,
// start period, retries), a single HTTP Prober, and a Monitor that applies
// the policy the way a container runtime does.
package health
