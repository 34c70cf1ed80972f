package webclient

import (
	"github.com/raysh454/go2web/internal/logging"
)

func init() {
	RegisterDefaultBackends()
}

// RegisterDefaultBackends registers the rawsocket and nethttp backends.
func RegisterDefaultBackends() {
	RegisterBackend(string(ClientRawSocket), func(cfg Config, logger logging.Logger) (WebClient, error) {
		return NewRawSocketClient(cfg, logger), nil
	})

	RegisterBackend(string(ClientNetHTTP), func(cfg Config, logger logging.Logger) (WebClient, error) {
		return NewNetHTTPClient(cfg, logger, nil)
	})
}
