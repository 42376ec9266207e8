package endpoint

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/launchpad/component"
	"github.com/kbukum/launchpad/observability"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// Readiness returns a handler reporting whether the service and the
// components it depends on can take traffic. Any unhealthy component, or a
// service that is not live, answers 503 with status "down"; a degraded
// component answers 200 with status "degraded".
func Readiness(serviceName, serviceVersion string, live LivenessFunc, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.NewServiceHealth(serviceName, serviceVersion)

		if up, state := live(); !up {
			sh.AddComponent(observability.Health{
				Name:    "lifecycle",
				Status:  observability.HealthStatusDown,
				Message: state,
			})
		}
		if checker != nil {
			for _, ch := range checker(c.Request.Context()) {
				sh.AddComponent(observability.Health{
					Name:    ch.Name,
					Status:  toStatus(ch.Status),
					Message: ch.Message,
				})
			}
		}

		code := http.StatusOK
		if sh.Status == observability.HealthStatusDown {
			code = http.StatusServiceUnavailable
		}
		c.Header("Cache-Control", "no-store")
		c.JSON(code, sh)
	}
}

func toStatus(s component.HealthStatus) observability.HealthStatus {
	switch s {
	case component.StatusHealthy:
		return observability.HealthStatusUp
	case component.StatusDegraded:
		return observability.HealthStatusDegraded
	default:
		return observability.HealthStatusDown
	}
}
