package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestClient_Do_GET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/health" {
			t.Errorf("expected /health, got %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") != "launchpad" {
			t.Errorf("expected default header, got %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"up"}`))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, Headers: map[string]string{"User-Agent": "launchpad"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := c.Do(context.Background(), Request{Path: "/health"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsSuccess() || resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if string(resp.Body) != `{"status":"up"}` {
		t.Errorf("unexpected body %q", resp.Body)
	}
	if resp.Headers["Content-Type"] != "application/json" {
		t.Errorf("unexpected headers %v", resp.Headers)
	}
}

func TestClient_Do_ClassifiesStatus(t *testing.T) {
	tests := []struct {
		status  int
		wantErr bool
		code    ErrorCode
	}{
		{http.StatusOK, false, 0},
		{http.StatusNotModified, false, 0},
		{http.StatusNotFound, true, ErrCodeClient},
		{http.StatusServiceUnavailable, true, ErrCodeServer},
	}
	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			c, _ := New(Config{})
			resp, err := c.Do(context.Background(), Request{Path: srv.URL})
			if (err != nil) != tc.wantErr {
				t.Fatalf("Do() error = %v, wantErr %v", err, tc.wantErr)
			}
			if resp == nil || resp.StatusCode != tc.status {
				t.Fatalf("expected the response with status %d, got %+v", tc.status, resp)
			}
			if tc.wantErr {
				e, ok := err.(*Error)
				if !ok || e.Code != tc.code || StatusCode(err) != tc.status {
					t.Errorf("expected %s error, got %v", tc.code, err)
				}
			}
		})
	}
}

func TestClient_Do_NoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := New(Config{})
	if _, err := c.Do(context.Background(), Request{Path: srv.URL}); err == nil {
		t.Fatal("expected error")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected exactly one attempt, got %d", n)
	}
}

func TestClient_Do_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, _ := New(Config{Timeout: 50 * time.Millisecond})
	_, err := c.Do(context.Background(), Request{Path: srv.URL})
	if !IsTimeout(err) {
		t.Errorf("expected timeout error, got %v", err)
	}

	c, _ = New(Config{})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Do(ctx, Request{Path: srv.URL})
	if !IsTimeout(err) {
		t.Errorf("expected timeout error from context, got %v", err)
	}
}

func TestClient_Do_ConnectionRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	_ = l.Close()

	c, _ := New(Config{Timeout: time.Second})
	_, err = c.Do(context.Background(), Request{Path: "http://" + addr + "/health"})
	if !IsConnection(err) {
		t.Errorf("expected connection error, got %v", err)
	}
}

func TestClient_Do_LimitsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	c, _ := New(Config{MaxResponseBytes: 10})
	resp, err := c.Do(context.Background(), Request{Path: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Body) != 10 {
		t.Errorf("expected body capped at 10 bytes, got %d", len(resp.Body))
	}
}

func TestClient_Do_InvalidRequest(t *testing.T) {
	c, _ := New(Config{})
	_, err := c.Do(context.Background(), Request{Method: "BAD METHOD", Path: "http://localhost"})
	e, ok := err.(*Error)
	if !ok || e.Code != ErrCodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestNewTransport(t *testing.T) {
	tr, err := NewTransport(Config{
		DisableKeepAlives:     true,
		ResponseHeaderTimeout: 3 * time.Second,
		TLS:                   &TLSConfig{SkipVerify: true, ServerName: "upstream"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !tr.DisableKeepAlives || tr.ResponseHeaderTimeout != 3*time.Second {
		t.Errorf("settings not applied: keepalives=%v header=%v", tr.DisableKeepAlives, tr.ResponseHeaderTimeout)
	}
	if tr.TLSClientConfig == nil || !tr.TLSClientConfig.InsecureSkipVerify || tr.TLSClientConfig.ServerName != "upstream" {
		t.Errorf("TLS not applied: %+v", tr.TLSClientConfig)
	}
	if tr == http.DefaultTransport {
		t.Error("expected a clone of the default transport")
	}
}

func TestClient_Do_TLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	strict, _ := New(Config{Timeout: time.Second})
	if _, err := strict.Do(context.Background(), Request{Path: srv.URL}); err == nil {
		t.Error("expected certificate verification to fail")
	}

	lax, _ := New(Config{Timeout: time.Second, TLS: &TLSConfig{SkipVerify: true}})
	if _, err := lax.Do(context.Background(), Request{Path: srv.URL}); err != nil {
		t.Errorf("expected skip_verify to accept the test certificate: %v", err)
	}
}
