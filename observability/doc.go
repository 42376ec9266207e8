// Package observability holds the health model shared by the liveness and
// readiness endpoints, and the optional OpenTelemetry wiring.
//
// Health:
//
//	sh := observability.NewServiceHealth("launchpad", "1.0.0")
//	sh.AddComponent(observability.Health{Name: "redis", Status: observability.HealthStatusDown})
//
// Telemetry (no-op unless enabled):
//
//	shutdown, err := observability.Init(ctx, cfg, "launchpad", "1.0.0", "production")
//	defer shutdown(ctx)
//
//	m, _ := observability.NewMetrics(observability.Meter("launchpad"))
//	m.RecordRequest(ctx, "GET", 200, elapsed)
package observability
