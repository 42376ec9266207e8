package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/launchpad/config"
	"github.com/kbukum/launchpad/errors"
	"github.com/kbukum/launchpad/logger"
	"github.com/kbukum/launchpad/proxy"
)

func init() { gin.SetMode(gin.TestMode) }

func resolved(t *testing.T, host string, port string) config.ServiceConfig {
	t.Helper()
	s := &config.Settings{Name: "launchpad"}
	s.Server.Host = host
	s.ApplyDefaults()
	cfg, err := config.Resolve(s, func(key string) (string, bool) { return port, port != "" })
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestProbeURL(t *testing.T) {
	tests := []struct {
		name       string
		host       string
		port       string
		path       string
		healthPort int
		want       string
	}{
		{"any interface", "0.0.0.0", "9090", "/health", 0, "http://127.0.0.1:9090/health"},
		{"any ipv6", "::", "9090", "/health", 0, "http://127.0.0.1:9090/health"},
		{"specific host", "10.0.0.5", "", "/live", 0, "http://10.0.0.5:8000/live"},
		{"dedicated health port", "0.0.0.0", "9090", "/health", 9091, "http://127.0.0.1:9091/health"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := probeURL(resolved(t, tc.host, tc.port), tc.path, tc.healthPort)
			if got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestBuiltinApp(t *testing.T) {
	s := &config.Settings{Name: "launchpad", Version: "2.0.0"}
	s.ApplyDefaults()
	h := builtinApp(s)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["service"] != "launchpad" || body["health"] != "/health" {
		t.Errorf("unexpected body %v", body)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestAppHandlerChoosesProxy(t *testing.T) {
	s := &config.Settings{Name: "launchpad"}
	s.Upstream.URL = "http://127.0.0.1:9000"
	s.ApplyDefaults()

	h, err := appHandler(s, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := h.(*proxy.Proxy); !ok {
		t.Errorf("expected proxy handler, got %T", h)
	}
}

func TestUpstreamProcess(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		command []string
		want    bool
	}{
		{"no command", "http://127.0.0.1:9000", nil, false},
		{"command", "http://127.0.0.1:9000", []string{"gunicorn", "app:app"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &config.Settings{Name: "launchpad"}
			s.Upstream.URL = tc.url
			s.Upstream.Process.Command = tc.command
			s.ApplyDefaults()

			p, err := upstreamProcess(s, logger.NewNop())
			if err != nil {
				t.Fatal(err)
			}
			if (p != nil) != tc.want {
				t.Errorf("expected process %v, got %v", tc.want, p)
			}
		})
	}
}

func TestHealthcheckCommand(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"up"}`))
	}))
	defer up.Close()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"down"}`))
	}))
	defer down.Close()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(cfgPath, []byte("name: launchpad\nlogging:\n  level: error\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		url      string
		wantExit int
	}{
		{"up", up.URL + "/health", errors.ExitOK},
		{"down", down.URL + "/health", errors.ExitFailure},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetArgs([]string{"healthcheck", "--config", cfgPath, "--url", tc.url, "--timeout", "1s"})
			err := rootCmd.Execute()
			if errors.ExitCode(err) != tc.wantExit {
				t.Errorf("expected exit %d, got %d (%v)", tc.wantExit, errors.ExitCode(err), err)
			}
			if tc.wantExit == errors.ExitOK && !strings.HasPrefix(out.String(), "up") {
				t.Errorf("unexpected output %q", out.String())
			}
		})
	}
}

func TestServeRejectsBadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(cfgPath, []byte("name: launchpad\nenvironment: qa\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rootCmd.SetArgs([]string{"serve", "--config", cfgPath})
	if err := rootCmd.Execute(); errors.ExitCode(err) != errors.ExitConfiguration {
		t.Errorf("expected configuration exit code, got %v", err)
	}
}
