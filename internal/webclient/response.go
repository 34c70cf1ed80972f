package webclient

import (
	"bytes"
	"io"
	"mime"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	"github.com/raysh454/go2web/internal/model"
)

var headerSeparator = []byte("\r\n\r\n")

// ParseResponse splits a raw response at the first blank line and parses the
// head. It never fails: a missing separator means the whole buffer is the
// head, and an unreadable status line leaves StatusCode at 0.
func ParseResponse(raw []byte) *model.Response {
	head, body, found := bytes.Cut(raw, headerSeparator)
	if !found {
		head, body = raw, nil
	}

	resp := &model.Response{}
	lines := strings.Split(string(head), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}

	parseStatusLine(lines[0], resp)
	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		resp.Headers.Set(name, strings.TrimSpace(value))
	}

	if len(body) > 0 {
		resp.Body = append([]byte(nil), body...)
	}
	return resp
}

// parseStatusLine reads "HTTP/<version> <code> <reason>".
func parseStatusLine(line string, resp *model.Response) {
	parts := strings.SplitN(strings.TrimSpace(line), " ", 3)
	if len(parts) < 2 || !strings.HasPrefix(parts[0], "HTTP/") {
		return
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil || code < 0 {
		return
	}
	resp.Proto = parts[0]
	resp.StatusCode = code
	if len(parts) == 3 {
		resp.Reason = strings.TrimSpace(parts[2])
	}
}

// DecodeBody converts body to text using the charset named in contentType.
// Invalid sequences become U+FFFD; decoding never fails.
func DecodeBody(contentType string, body []byte) string {
	label := ""
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		label = strings.ToLower(strings.TrimSpace(params["charset"]))
	}

	if label != "" && label != "utf-8" && label != "utf8" && label != "us-ascii" {
		if r, err := charset.NewReaderLabel(label, bytes.NewReader(body)); err == nil {
			if decoded, err := io.ReadAll(r); err == nil {
				return strings.ToValidUTF8(string(decoded), string(utf8.RuneError))
			}
		}
	}
	return strings.ToValidUTF8(string(body), string(utf8.RuneError))
}
