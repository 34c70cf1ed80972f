package webclient_test

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/raysh454/go2web/internal/model"
)

// rawServer accepts a single connection, records the request head, writes
// response verbatim and closes the connection.
type rawServer struct {
	addr     string
	port     uint16
	requests chan string
}

func newRawServer(t *testing.T, response string) *rawServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	srv := &rawServer{
		addr:     ln.Addr().String(),
		port:     portOf(t, ln.Addr().String()),
		requests: make(chan string, 1),
	}

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		var head strings.Builder
		for {
			line, err := r.ReadString('\n')
			head.WriteString(line)
			if err != nil || line == "\r\n" {
				break
			}
		}
		srv.requests <- head.String()
		_, _ = conn.Write([]byte(response))
	}()

	return srv
}

func (s *rawServer) request(host string, path string) *model.Request {
	return &model.Request{
		Method: "GET",
		Scheme: "http",
		Host:   host,
		Port:   s.port,
		Path:   path,
	}
}

func portOf(t *testing.T, addr string) uint16 {
	t.Helper()
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split %q: %v", addr, err)
	}
	n, err := strconv.ParseUint(p, 10, 16)
	if err != nil {
		t.Fatalf("port %q: %v", p, err)
	}
	return uint16(n)
}
