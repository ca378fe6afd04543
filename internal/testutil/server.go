package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// ServerInstance represents a running HTTP test server.
type ServerInstance struct {
	BaseURL string
	Close   func()
}

// StartServer serves handler on a loopback port until the test ends.
func StartServer(t *testing.T, handler http.Handler) *ServerInstance {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &ServerInstance{
		BaseURL: server.URL,
		Close:   server.Close,
	}
}
