// Package httpclient provides the outbound HTTP plumbing shared by the
// liveness prober and the upstream proxy: transport construction with TLS,
// single-attempt requests and typed error classification.
//
// Requests are never retried; a caller that wants another attempt makes
// one.
//
//	client, err := httpclient.New(httpclient.Config{Timeout: 10 * time.Second})
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodGet,
//	    Path:   "http://127.0.0.1:8000/health",
//	})
package httpclient
