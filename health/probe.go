package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/launchpad/errors"
	"github.com/kbukum/launchpad/httpclient"
	"github.com/kbukum/launchpad/observability"
)

// Result is the outcome of one probe.
type Result struct {
	Status     observability.HealthStatus
	StatusCode int
	Latency    time.Duration
	Err        error
}

// Up reports whether the probe succeeded.
func (r Result) Up() bool { return r.Status == observability.HealthStatusUp }

// Prober issues single liveness probes against an HTTP endpoint.
type Prober struct {
	url     string
	timeout time.Duration
	client  *httpclient.Client
	err     error
}

// NewProber creates a prober for url bounded by timeout per attempt. Every
// probe dials a new connection.
func NewProber(url string, timeout time.Duration) *Prober {
	client, err := httpclient.New(httpclient.Config{
		Timeout:           timeout,
		DisableKeepAlives: true,
		MaxResponseBytes:  64 << 10,
	})
	return &Prober{url: url, timeout: timeout, client: client, err: err}
}

// URL returns the probed endpoint.
func (p *Prober) URL() string { return p.url }

// Probe performs one GET. Any transport error, timeout, non-2xx/3xx status
// or a body reporting "down" is a failure.
func (p *Prober) Probe(ctx context.Context) Result {
	res := Result{Status: observability.HealthStatusDown}
	if p.err != nil {
		res.Err = errors.HealthCheckFailed(p.url, p.err)
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: p.url})
	res.Latency = time.Since(start)
	if resp != nil {
		res.StatusCode = resp.StatusCode
	}
	if err != nil {
		res.Err = errors.HealthCheckFailed(p.url, err)
		return res
	}

	var body struct {
		Status observability.HealthStatus `json:"status"`
	}
	if json.Unmarshal(resp.Body, &body) == nil && body.Status == observability.HealthStatusDown {
		res.Err = errors.HealthCheckFailed(p.url, fmt.Errorf("reported down"))
		return res
	}

	res.Status = observability.HealthStatusUp
	return res
}

// Check adapts the prober to a CheckFunc.
func (p *Prober) Check(ctx context.Context) error {
	return p.Probe(ctx).Err
}
