// Package dependency checks the backing services the application needs
// before it can take traffic. Each check is a component.Component whose
// Health is consulted by the readiness endpoint; none of them is ever
// consulted by liveness, and an unavailable dependency never blocks
// startup.
package dependency
