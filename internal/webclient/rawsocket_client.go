package webclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/raysh454/go2web/internal/logging"
	"github.com/raysh454/go2web/internal/model"
	"github.com/raysh454/go2web/internal/utils"
)

// RawSocketClient speaks HTTP/1.1 directly over a TCP (or TLS) connection.
// Each Do opens a fresh connection and reads until the server closes it.
type RawSocketClient struct {
	cfg    Config
	dialer *net.Dialer
	logger logging.Logger
}

func NewRawSocketClient(cfg Config, logger logging.Logger) *RawSocketClient {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	if cfg.ReadChunk <= 0 {
		cfg.ReadChunk = DefaultReadChunk
	}

	componentLogger := logger.With(logging.Field{Key: "backend", Value: string(ClientRawSocket)})
	componentLogger.Debug("created rawsocket webclient",
		logging.Field{Key: "dial_timeout", Value: cfg.DialTimeout.String()},
		logging.Field{Key: "io_timeout", Value: cfg.IOTimeout.String()})

	return &RawSocketClient{
		cfg:    cfg,
		dialer: &net.Dialer{Timeout: cfg.DialTimeout},
		logger: componentLogger,
	}
}

// Do sends req and parses whatever comes back.
func (c *RawSocketClient) Do(ctx context.Context, req *model.Request) (*model.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrRequestFailed)
	}

	raw, err := c.RoundTrip(ctx, req)
	if err != nil {
		c.logger.Warn("raw request failed",
			logging.Field{Key: "url", Value: req.URL()},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, err
	}

	resp := ParseResponse(raw)
	resp.FetchedAt = time.Now()

	c.logger.Debug("received response",
		logging.Field{Key: "url", Value: req.URL()},
		logging.Field{Key: "status", Value: resp.StatusCode},
		logging.Field{Key: "bytes", Value: len(raw)})
	return resp, nil
}

// RoundTrip performs the exchange and returns the unparsed bytes.
func (c *RawSocketClient) RoundTrip(ctx context.Context, req *model.Request) ([]byte, error) {
	host := utils.DialHost(req.Host)
	addr := net.JoinHostPort(host, strconv.Itoa(int(req.EffectivePort())))

	c.logger.Debug("dialing", logging.Field{Key: "addr", Value: addr}, logging.Field{Key: "scheme", Value: req.Scheme})

	conn, err := c.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", ErrRequestFailed, addr, err)
	}
	defer conn.Close()

	// Unblock reads and writes when ctx ends.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	var rw net.Conn = conn
	if req.Scheme == model.SchemeHTTPS {
		tlsConn := tls.Client(conn, c.tlsConfig(host))
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return nil, fmt.Errorf("%w: tls handshake with %s: %w", ErrRequestFailed, addr, err)
		}
		defer tlsConn.Close()
		rw = tlsConn
	}

	c.touchDeadline(ctx, rw)
	if _, err := rw.Write(BuildRequest(req)); err != nil {
		return nil, c.ioError(ctx, "write", addr, err)
	}

	var buf bytes.Buffer
	chunk := make([]byte, c.cfg.ReadChunk)
	for {
		c.touchDeadline(ctx, rw)
		n, err := rw.Read(chunk)
		buf.Write(chunk[:n])
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, c.ioError(ctx, "read", addr, err)
		}
	}

	return buf.Bytes(), nil
}

func (c *RawSocketClient) Close() error {
	c.logger.Debug("closing rawsocket webclient")
	return nil
}

func (c *RawSocketClient) tlsConfig(serverName string) *tls.Config {
	var cfg *tls.Config
	if c.cfg.TLSConfig != nil {
		cfg = c.cfg.TLSConfig.Clone()
	} else {
		cfg = &tls.Config{}
	}
	cfg.ServerName = serverName
	// HTTP/1.1 only
	cfg.NextProtos = []string{"http/1.1"}
	return cfg
}

// touchDeadline pushes the per-operation IO deadline forward, never past
// the context deadline.
func (c *RawSocketClient) touchDeadline(ctx context.Context, conn net.Conn) {
	if c.cfg.IOTimeout <= 0 || ctx.Err() != nil {
		return
	}
	deadline := time.Now().Add(c.cfg.IOTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetDeadline(deadline)
}

func (c *RawSocketClient) ioError(ctx context.Context, op, addr string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, op, addr, err)
}
