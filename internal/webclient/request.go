package webclient

import (
	"bytes"
	"strings"

	"github.com/raysh454/go2web/internal/model"
)

// BuildRequest serializes req as an HTTP/1.1 request head.
// Headers are written in order. Host is prepended and "Connection: close"
// appended when the caller left them out, since the read loop relies on the
// peer closing the connection.
func BuildRequest(req *model.Request) []byte {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = "GET"
	}
	path := req.Path
	if path == "" {
		path = "/"
	}

	headers := req.Headers.Clone()
	if !headers.Has("Host") {
		headers = append(model.Headers{{Name: "Host", Value: req.Authority()}}, headers...)
	}
	headers.Set("Connection", "close")

	var buf bytes.Buffer
	buf.WriteString(method)
	buf.WriteByte(' ')
	buf.WriteString(path)
	buf.WriteString(" HTTP/1.1\r\n")
	for _, h := range headers {
		buf.WriteString(h.Name)
		buf.WriteString(": ")
		buf.WriteString(h.Value)
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	return buf.Bytes()
}
