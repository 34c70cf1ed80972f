package fetcher

import (
	"errors"
	"fmt"
)

// ErrTooManyRedirects is returned when the hop budget runs out while the
// server keeps redirecting.
var ErrTooManyRedirects = errors.New("too many redirects")

// RedirectError records where the redirect chain was when it was cut off.
type RedirectError struct {
	URL  string
	Hops int
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("too many redirects: gave up at %s after %d hops", e.URL, e.Hops)
}

func (e *RedirectError) Is(target error) bool {
	return target == ErrTooManyRedirects
}
