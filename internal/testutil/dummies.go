// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/raysh454/go2web/internal/logging"
	"github.com/raysh454/go2web/internal/model"
	"github.com/raysh454/go2web/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns the number of recorded warnings.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient.
// Responses are looked up by the absolute request URL. Unknown URLs get
// status 200 with body "ok:<url>". Set FailURLs[url] = true to force a
// transport error for a specific URL.
type DummyWebClient struct {
	ResponseDelay time.Duration
	FailURLs      map[string]bool

	mu        sync.Mutex
	responses map[string]*model.Response
	Requests  []*model.Request
}

// Respond scripts the response returned for url.
func (d *DummyWebClient) Respond(url string, status int, headers model.Headers, body string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.responses == nil {
		d.responses = make(map[string]*model.Response)
	}
	d.responses[url] = &model.Response{
		Proto:      "HTTP/1.1",
		StatusCode: status,
		Headers:    headers,
		Body:       []byte(body),
	}
}

// Redirect scripts a redirect from url to location.
func (d *DummyWebClient) Redirect(url string, status int, location string) {
	d.Respond(url, status, model.Headers{{Name: "Location", Value: location}}, "")
}

func (d *DummyWebClient) Do(ctx context.Context, req *model.Request) (*model.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", webclient.ErrRequestFailed)
	}
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", webclient.ErrRequestFailed, ctx.Err())
		}
	}

	url := req.URL()
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	scripted := d.responses[url]
	fail := d.FailURLs[url]
	d.mu.Unlock()

	if fail {
		return nil, fmt.Errorf("%w: %w", webclient.ErrRequestFailed, errors.New("dummy fetch fail"))
	}
	if scripted == nil {
		return &model.Response{
			Proto:      "HTTP/1.1",
			StatusCode: 200,
			Body:       []byte("ok:" + url),
			FetchedAt:  time.Now(),
		}, nil
	}

	resp := *scripted
	resp.Headers = scripted.Headers.Clone()
	resp.Body = append([]byte(nil), scripted.Body...)
	resp.FetchedAt = time.Now()
	return &resp, nil
}

// RequestedURLs returns the URLs requested so far, in order.
func (d *DummyWebClient) RequestedURLs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.Requests))
	for i, r := range d.Requests {
		out[i] = r.URL()
	}
	return out
}

func (d *DummyWebClient) Close() error { return nil }
