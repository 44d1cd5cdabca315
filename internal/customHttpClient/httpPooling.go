package customHttpClient

import (
	"net/http"
	"time"

	"github.com/davifus/dogvet-rag/internal/config"
)

var pooledTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// NewPooledClient returns an http.Client sharing the process-wide connection
// pool. The crawler fetches many pages from the same host, so connection
// reuse matters more here than anywhere else in the service.
func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: pooledTransport,
		Timeout:   timeout,
	}
}
