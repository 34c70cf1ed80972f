package webclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/raysh454/go2web/internal/logging"
	"github.com/raysh454/go2web/internal/model"
)

// net/http backed implementation of webclient. Redirects are returned to the
// caller instead of being followed.
type NetHTTPClient struct {
	client *http.Client
	logger logging.Logger
}

func NewNetHTTPClient(cfg Config, logger logging.Logger, httpClient *http.Client) (WebClient, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	componentLogger := logger.With(logging.Field{Key: "backend", Value: string(ClientNetHTTP)})

	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.DisableKeepAlives = true
		transport.DisableCompression = true
		transport.ForceAttemptHTTP2 = false
		if cfg.TLSConfig != nil {
			transport.TLSClientConfig = cfg.TLSConfig.Clone()
		}
		httpClient = &http.Client{Transport: transport, Timeout: cfg.IOTimeout}
	}
	httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	componentLogger.Debug("created nethttp webclient",
		logging.Field{Key: "timeout", Value: httpClient.Timeout.String()})

	return &NetHTTPClient{
		client: httpClient,
		logger: componentLogger,
	}, nil
}

// Do implements the generic request execution using net/http.
func (nhc *NetHTTPClient) Do(ctx context.Context, req *model.Request) (*model.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrRequestFailed)
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	url := req.URL()

	nhc.logger.Debug("sending http request",
		logging.Field{Key: "method", Value: method},
		logging.Field{Key: "url", Value: url})

	httpReq, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrRequestFailed, err)
	}
	httpReq.Close = true
	for _, h := range req.Headers {
		switch strings.ToLower(h.Name) {
		case "host":
			httpReq.Host = h.Value
		case "connection":
			// httpReq.Close already sends "Connection: close"
		default:
			httpReq.Header.Set(h.Name, h.Value)
		}
	}

	resp, err := nhc.client.Do(httpReq)
	if err != nil {
		nhc.logger.Warn("http request failed",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("%w: http do: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		nhc.logger.Warn("failed to read response body",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("%w: read body: %w", ErrRequestFailed, err)
	}

	return &model.Response{
		Proto:      resp.Proto,
		StatusCode: resp.StatusCode,
		Reason:     strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))),
		Headers:    flattenHeader(resp.Header),
		Body:       body,
		FetchedAt:  time.Now(),
	}, nil
}

func (nhc *NetHTTPClient) Close() error {
	nhc.logger.Debug("closing nethttp webclient")
	nhc.client.CloseIdleConnections()
	return nil
}

// flattenHeader keeps the last value of each header, in sorted name order.
func flattenHeader(h http.Header) model.Headers {
	names := make([]string, 0, len(h))
	for k := range h {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make(model.Headers, 0, len(names))
	for _, k := range names {
		vs := h[k]
		if len(vs) == 0 {
			continue
		}
		out = append(out, model.Header{Name: k, Value: vs[len(vs)-1]})
	}
	return out
}
