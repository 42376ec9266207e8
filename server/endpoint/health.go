package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/launchpad/observability"
)

// LivenessFunc reports whether the service accepts traffic, together with
// the lifecycle state name shown in the response.
type LivenessFunc func() (up bool, state string)

// ProbeRecorder counts answered probes.
type ProbeRecorder interface {
	RecordProbe(ctx context.Context, status observability.HealthStatus)
}

// HealthResponse is the liveness body.
type HealthResponse struct {
	Status    observability.HealthStatus `json:"status"`
	Service   string                     `json:"service"`
	State     string                     `json:"state,omitempty"`
	Timestamp string                     `json:"timestamp"`
}

// Health returns the liveness handler. It answers from the lifecycle state
// alone and never consults dependencies: 200 {"status":"up"} while
// listening, 503 {"status":"down"} otherwise.
func Health(serviceName string, live LivenessFunc, rec ProbeRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		up, state := live()
		status := observability.HealthStatusDown
		code := http.StatusServiceUnavailable
		if up {
			status = observability.HealthStatusUp
			code = http.StatusOK
		}
		if rec != nil {
			rec.RecordProbe(c.Request.Context(), status)
		}

		c.Header("Cache-Control", "no-store")
		c.JSON(code, HealthResponse{
			Status:    status,
			Service:   serviceName,
			State:     state,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}
