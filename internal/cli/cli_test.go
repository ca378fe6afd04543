package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"surveyforge/internal/testutil"
)

// quietConfig writes a project file that keeps logs out of test output.
func quietConfig(t *testing.T, dir string) string {
	t.Helper()
	return testutil.WriteFile(t, dir, ".surveyforge.yml", "version: 1\nlog_level: error\noutput_dir: "+filepath.Join(dir, "out")+"\n")
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRootHelp(t *testing.T) {
	code, out, errOut := run(t, "--help")
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d", ExitOK, code)
	}
	if errOut != "" {
		t.Fatalf("expected no stderr output, got %q", errOut)
	}
	if !strings.Contains(out, "Usage:") {
		t.Fatalf("expected usage header, got %q", out)
	}
	for _, cmd := range commands {
		if !strings.Contains(out, cmd.Name) {
			t.Fatalf("expected command %q in output", cmd.Name)
		}
	}
}

func TestNoArgsShowsUsage(t *testing.T) {
	code, out, errOut := run(t)
	if code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if errOut != "" {
		t.Fatalf("expected no stderr output, got %q", errOut)
	}
	if !strings.Contains(out, "Usage:") {
		t.Fatalf("expected usage output, got %q", out)
	}
}

func TestUnknownCommand(t *testing.T) {
	code, out, errOut := run(t, "nope")
	if code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if out != "" {
		t.Fatalf("expected no stdout output, got %q", out)
	}
	if !strings.Contains(errOut, "Unknown command") || !strings.Contains(errOut, "Usage:") {
		t.Fatalf("expected unknown command error with usage, got %q", errOut)
	}
}

func TestCommandHelp(t *testing.T) {
	for _, cmd := range commands {
		code, out, _ := run(t, cmd.Name, "--help")
		if code != ExitOK {
			t.Fatalf("%s: expected exit %d, got %d", cmd.Name, ExitOK, code)
		}
		if !strings.Contains(out, "surveyforge "+cmd.Name) {
			t.Fatalf("%s: expected usage line, got %q", cmd.Name, out)
		}
	}
}

func TestCommandsRejectPositionalArguments(t *testing.T) {
	code, _, errOut := run(t, "validate", "--survey", "s.json", "extra")
	if code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if !strings.Contains(errOut, "unexpected arguments: extra") {
		t.Fatalf("unexpected stderr %q", errOut)
	}
}

func TestMissingRequiredFlag(t *testing.T) {
	for _, name := range []string{"validate", "normalize", "render", "loi", "serve"} {
		code, _, errOut := run(t, name)
		if code != ExitUsage {
			t.Fatalf("%s: expected exit %d, got %d", name, ExitUsage, code)
		}
		if !strings.Contains(errOut, "Missing --survey") {
			t.Fatalf("%s: unexpected stderr %q", name, errOut)
		}
	}
}

func TestSkillsListsMethodologyChecks(t *testing.T) {
	code, out, _ := run(t, "skills")
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d", ExitOK, code)
	}
	for _, want := range []string{"METH_001", "pricing-study", "van_westendorp", "METH_025", "segmentation"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Index(out, "METH_001") > strings.Index(out, "METH_025") {
		t.Fatalf("expected checks ordered by id:\n%s", out)
	}
}
