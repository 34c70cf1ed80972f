package webclient_test

import (
	"testing"

	"github.com/raysh454/go2web/internal/logging"
	"github.com/raysh454/go2web/internal/webclient"
)

// TestNewWebClient_DefaultBackend verifies that empty backend defaults to rawsocket
func TestNewWebClient_DefaultBackend(t *testing.T) {
	t.Parallel()
	logger := logging.NopLogger{}

	client, err := webclient.NewWebClient(webclient.Config{}, logger)
	if err != nil {
		t.Fatalf("Failed to create default client: %v", err)
	}
	if client == nil {
		t.Fatal("client is nil")
	}
	defer client.Close()

	if _, ok := client.(*webclient.RawSocketClient); !ok {
		t.Errorf("expected *RawSocketClient, got %T", client)
	}
}

// TestNewWebClient_NetHTTP verifies that the factory can create a nethttp client
func TestNewWebClient_NetHTTP(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewWebClient(webclient.Config{Client: "NetHTTP"}, nil)
	if err != nil {
		t.Fatalf("Failed to create nethttp client: %v", err)
	}
	if client == nil {
		t.Fatal("client is nil")
	}
	defer client.Close()

	if _, ok := client.(*webclient.NetHTTPClient); !ok {
		t.Errorf("expected *NetHTTPClient, got %T", client)
	}
}

// TestNewWebClient_UnknownBackend verifies that unknown backend returns error
func TestNewWebClient_UnknownBackend(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewWebClient(webclient.Config{Client: "unknown"}, logging.NopLogger{})
	if err == nil {
		t.Fatal("Expected error for unknown backend, got nil")
	}
	if client != nil {
		t.Fatal("Expected nil client for unknown backend")
	}
}

func TestListBackends_IncludesDefaults(t *testing.T) {
	t.Parallel()
	got := map[string]bool{}
	for _, name := range webclient.ListBackends() {
		got[name] = true
	}
	for _, want := range []string{"rawsocket", "nethttp"} {
		if !got[want] {
			t.Errorf("backend %q not registered: %v", want, webclient.ListBackends())
		}
	}
}
