package httpclient

import "io"

// Request describes an outbound HTTP request.
type Request struct {
	// Method defaults to GET.
	Method string
	// Path is appended to the client's BaseURL, or used as is when it is
	// an absolute URL.
	Path string
	// Headers override the client defaults.
	Headers map[string]string
	// Body may be nil.
	Body io.Reader
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// IsSuccess returns true for 2xx and 3xx status codes.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 400
}
