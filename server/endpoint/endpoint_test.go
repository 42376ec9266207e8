package endpoint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/launchpad/component"
	"github.com/kbukum/launchpad/observability"
)

func init() { gin.SetMode(gin.TestMode) }

type countingRecorder struct {
	got []observability.HealthStatus
}

func (r *countingRecorder) RecordProbe(_ context.Context, s observability.HealthStatus) {
	r.got = append(r.got, s)
}

func serve(t *testing.T, path string, h gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := gin.New()
	r.GET(path, h)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%q)", err, rr.Body.String())
	}
	return rr, body
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		up       bool
		state    string
		wantCode int
		want     string
	}{
		{"listening", true, "LISTENING", http.StatusOK, "up"},
		{"shutting down", false, "SHUTTING_DOWN", http.StatusServiceUnavailable, "down"},
		{"starting", false, "STARTING", http.StatusServiceUnavailable, "down"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &countingRecorder{}
			live := func() (bool, string) { return tc.up, tc.state }
			rr, body := serve(t, "/health", Health("launchpad", live, rec))

			if rr.Code != tc.wantCode {
				t.Errorf("expected %d, got %d", tc.wantCode, rr.Code)
			}
			if body["status"] != tc.want {
				t.Errorf("expected status %q, got %v", tc.want, body["status"])
			}
			if body["state"] != tc.state {
				t.Errorf("expected state %q, got %v", tc.state, body["state"])
			}
			if len(rec.got) != 1 || string(rec.got[0]) != tc.want {
				t.Errorf("expected one recorded probe %q, got %v", tc.want, rec.got)
			}
		})
	}
}

func TestReadiness(t *testing.T) {
	upLive := func() (bool, string) { return true, "LISTENING" }
	tests := []struct {
		name     string
		live     LivenessFunc
		statuses []component.HealthStatus
		wantCode int
		want     string
	}{
		{"no components", upLive, nil, http.StatusOK, "up"},
		{"all healthy", upLive, []component.HealthStatus{component.StatusHealthy}, http.StatusOK, "up"},
		{"degraded", upLive, []component.HealthStatus{component.StatusHealthy, component.StatusDegraded}, http.StatusOK, "degraded"},
		{"unhealthy", upLive, []component.HealthStatus{component.StatusUnhealthy}, http.StatusServiceUnavailable, "down"},
		{"not live", func() (bool, string) { return false, "SHUTTING_DOWN" }, nil, http.StatusServiceUnavailable, "down"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			checker := func(ctx context.Context) []component.Health {
				out := make([]component.Health, 0, len(tc.statuses))
				for _, s := range tc.statuses {
					out = append(out, component.Health{Name: "redis", Status: s})
				}
				return out
			}
			rr, body := serve(t, "/ready", Readiness("launchpad", "1.0.0", tc.live, checker))
			if rr.Code != tc.wantCode {
				t.Errorf("expected %d, got %d", tc.wantCode, rr.Code)
			}
			if body["status"] != tc.want {
				t.Errorf("expected status %q, got %v", tc.want, body["status"])
			}
		})
	}
}

func TestInfoReportsIdentity(t *testing.T) {
	identity := func() (int, int) { return 1001, 1002 }
	rr, body := serve(t, "/info", Info("launchpad", "1.0.0", "production", identity))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body["uid"] != float64(1001) || body["gid"] != float64(1002) {
		t.Errorf("expected uid/gid 1001/1002, got %v/%v", body["uid"], body["gid"])
	}
	if body["service"] != "launchpad" || body["environment"] != "production" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestVersionAndMetrics(t *testing.T) {
	if rr, body := serve(t, "/version", Version()); rr.Code != http.StatusOK || body["version"] == nil {
		t.Errorf("unexpected version response %d %v", rr.Code, body)
	}
	if rr, body := serve(t, "/metrics", Metrics()); rr.Code != http.StatusOK || body["goroutines"] == nil {
		t.Errorf("unexpected metrics response %d %v", rr.Code, body)
	}
}
