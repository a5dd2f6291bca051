package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Transport records every backend round trip
type Transport struct {
	Base http.RoundTripper
}

// NewTransport wraps base, or http.DefaultTransport when base is nil
func NewTransport(base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.Base.RoundTrip(req)

	result := "error"
	if err == nil {
		result = strconv.Itoa(resp.StatusCode)
	}
	ObserveBackendCall(req.Method, Endpoint(req.URL.Path), result, time.Since(start))
	return resp, err
}

// Endpoint collapses numeric path segments so /users/42 and /users/7 share a
// label
func Endpoint(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}
