// Package transport builds the shared HTTP client used for Soroban RPC and
// Horizon requests.
package transport

import (
	"net/http"
	"time"

	"resty.dev/v3"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// New returns a resty client with a pooled transport. A non-positive timeout
// selects DefaultTimeout. Callers own the client and must Close it.
func New(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	return resty.NewWithClient(hc).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
}
