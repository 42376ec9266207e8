// Package proxy forwards application traffic to an upstream process,
// typically an application server bound to loopback inside the same
// container.
package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/kbukum/launchpad/component"
	"github.com/kbukum/launchpad/httpclient"
	"github.com/kbukum/launchpad/logger"
	"github.com/kbukum/launchpad/util"
)

// Proxy is an http.Handler that forwards every request to the upstream.
type Proxy struct {
	target *url.URL
	rp     *httputil.ReverseProxy
	log    *logger.Logger
}

// New builds a proxy for cfg.URL.
func New(cfg Config, log *logger.Logger) (*Proxy, error) {
	cfg.ApplyDefaults()
	if !cfg.Enabled() {
		return nil, fmt.Errorf("upstream.url is not set")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	target, _ := url.Parse(cfg.URL)

	transport, err := httpclient.NewTransport(httpclient.Config{
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		TLS:                   &cfg.TLS,
	})
	if err != nil {
		return nil, fmt.Errorf("upstream.tls: %w", err)
	}

	p := &Proxy{target: target, log: log.WithComponent("proxy")}
	p.rp = &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.SetXForwarded()
		},
		Transport:    transport,
		ErrorHandler: p.handleError,
	}
	return p, nil
}

// ServeHTTP forwards the request.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.rp.ServeHTTP(w, r)
}

// Target returns the upstream URL.
func (p *Proxy) Target() string { return p.target.String() }

// Describe returns the summary line.
func (p *Proxy) Describe() component.Description {
	return component.Description{
		Name:    "Upstream",
		Type:    "proxy",
		Details: util.RedactURL(p.target.String()),
	}
}

func (p *Proxy) handleError(w http.ResponseWriter, r *http.Request, err error) {
	p.log.WithContext(r.Context()).Warn("upstream request failed", logger.Fields(
		"method", r.Method,
		"path", r.URL.Path,
		logger.FieldError, err.Error(),
	))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "bad_gateway",
		"message": "upstream unavailable",
	})
}
