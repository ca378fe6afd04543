package cli

import (
	"io"
	"testing"
)

// TestResolveUIMode verifies ui mode decision logic.
func TestResolveUIMode(t *testing.T) {
	cases := []struct {
		name       string
		mode       string
		configured string
		isTTY      bool
		expectLive bool
		wantWarn   bool
		wantErr    bool
	}{
		{name: "auto tty", mode: "auto", isTTY: true, expectLive: true},
		{name: "auto non-tty", mode: "auto", isTTY: false, expectLive: false},
		{name: "plain", mode: "plain", isTTY: true, expectLive: false},
		{name: "configured plain", configured: "plain", isTTY: true, expectLive: false},
		{name: "flag beats config", mode: "live", configured: "plain", isTTY: true, expectLive: true},
		{name: "empty defaults to auto", isTTY: true, expectLive: true},
		{name: "live non-tty warning", mode: "live", isTTY: false, expectLive: false, wantWarn: true},
		{name: "invalid mode", mode: "nope", isTTY: true, wantErr: true},
	}

	original := isTerminal
	t.Cleanup(func() { isTerminal = original })

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			isTerminal = func(_ io.Writer) bool { return tc.isTTY }
			decision, err := resolveUIMode(tc.mode, tc.configured, nil)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if decision.useLive != tc.expectLive {
				t.Fatalf("expected useLive=%v, got %v", tc.expectLive, decision.useLive)
			}
			if tc.wantWarn != (decision.warning != "") {
				t.Fatalf("unexpected warning %q", decision.warning)
			}
		})
	}
}
