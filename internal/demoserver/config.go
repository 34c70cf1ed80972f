package demoserver

// Config holds configuration for the demo server.
type Config struct {
	// Port is the port on which the demo server listens.
	Port int

	// SearchResults is how many fake results the search page lists.
	SearchResults int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:          9999,
		SearchResults: 12,
	}
}
