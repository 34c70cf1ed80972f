package fetcher

// DefaultMaxRedirects is the hop budget for one transaction.
const DefaultMaxRedirects = 5

// DefaultUserAgent is sent on every request unless overridden.
const DefaultUserAgent = "go2web/1.0"

type Config struct {
	// MaxRedirects is how many 301/302 responses may be followed before the
	// transaction fails. Zero means DefaultMaxRedirects; negative allows no
	// hops, so the first 301/302 with a Location fails with ErrTooManyRedirects.
	MaxRedirects int
	UserAgent    string
}

func (c Config) budget() int {
	switch {
	case c.MaxRedirects < 0:
		return 0
	case c.MaxRedirects == 0:
		return DefaultMaxRedirects
	default:
		return c.MaxRedirects
	}
}

func (c Config) userAgent() string {
	if c.UserAgent == "" {
		return DefaultUserAgent
	}
	return c.UserAgent
}
