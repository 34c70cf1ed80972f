package webclient

import (
	"crypto/tls"
	"time"
)

type Client string

const (
	ClientRawSocket Client = "rawsocket"
	ClientNetHTTP   Client = "nethttp"
)

// DefaultReadChunk is the socket read size used when Config.ReadChunk is zero.
const DefaultReadChunk = 4096

// Config controls backend selection and socket behaviour.
// Zero timeouts mean the operation blocks until the OS gives up.
type Config struct {
	Client Client

	DialTimeout time.Duration
	IOTimeout   time.Duration
	ReadChunk   int

	// TLSConfig is cloned per connection; ServerName is always overwritten
	// with the request host. Nil uses the platform trust store.
	TLSConfig *tls.Config
}
