package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"
)

// GetJSON issues a GET and decodes a JSON body into out. It returns the
// status code.
func GetJSON(t testing.TB, url string, out any) int {
	t.Helper()
	status, body := Get(t, url)
	if out != nil && status >= 200 && status < 300 {
		if err := json.Unmarshal(body, out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return status
}

// Get issues a GET and returns the status and body.
func Get(t testing.TB, url string) (int, []byte) {
	t.Helper()
	ctx := Context(t, 2*time.Second)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http request: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp.StatusCode, body
}
