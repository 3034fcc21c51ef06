package integrations

import (
	"errors"
	"net"
	"net/http"
	"time"
)

const httpTimeout = 60 * time.Second

var (
	// ErrNotFound is returned when the remote resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with standard timeouts for API
// requests. The overall timeout bounds search requests; downloads build
// their own client without one.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: NewTransport(),
		Timeout:   httpTimeout,
	}
}

// NewTransport returns an outbound transport with bounded dial and TLS
// handshake times and a modest idle pool.
func NewTransport() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
}
