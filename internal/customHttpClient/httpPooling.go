package customHttpClient

import (
	"net/http"

	"github.com/akolanti/DocChatAPI/internal/config"
)

var pooledTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// GetPooledClient hands external SDKs a shared connection-reusing client so
// embedding and generation calls don't pay a handshake per request.
func GetPooledClient() *http.Client {
	return &http.Client{Transport: pooledTransport}
}
