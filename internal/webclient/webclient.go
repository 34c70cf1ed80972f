package webclient

import (
	"context"
	"errors"

	"github.com/raysh454/go2web/internal/model"
)

// ErrRequestFailed wraps every transport failure: DNS, connect, TLS, write and read.
var ErrRequestFailed = errors.New("request failed")

// WebClient performs exactly one request/response exchange per Do call.
// Redirects are never followed here.
type WebClient interface {
	Do(ctx context.Context, req *model.Request) (*model.Response, error)

	Close() error
}
