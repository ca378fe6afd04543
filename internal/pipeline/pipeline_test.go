package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"surveyforge/internal/render"
	"surveyforge/internal/survey"
	"surveyforge/internal/testutil"
	"surveyforge/internal/validate"
)

// TestBuildStaticAssetsRendersCleanSurvey verifies a clean survey gets a UI spec.
func TestBuildStaticAssetsRendersCleanSurvey(t *testing.T) {
	assets, err := BuildStaticAssets(testutil.ParseSurvey(t, testutil.MinimalSurvey))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(assets.Issues) != 0 {
		t.Fatalf("unexpected issues: %+v", assets.Issues)
	}
	if assets.UISpec == nil || assets.UISpec.Version != render.Version {
		t.Fatalf("expected a rendered ui spec, got %+v", assets.UISpec)
	}
}

// TestBuildStaticAssetsWithholdsSpec verifies issues block the UI spec.
func TestBuildStaticAssetsWithholdsSpec(t *testing.T) {
	raw := strings.Replace(testutil.MinimalSurvey, `"question_type": "open_ended", "options": []`,
		`"question_type": "open_ended", "options": ["x"]`, 1)
	assets, err := BuildStaticAssets(testutil.ParseSurvey(t, raw))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if assets.UISpec != nil {
		t.Fatalf("ui spec should be withheld")
	}
	want := map[string][]string{"MAIN_SECTION": {"ISSUE_0001"}, "MAIN_SECTION:MS1": {"ISSUE_0001"}}
	if diff := cmp.Diff(want, assets.IssuesGrouped); diff != "" {
		t.Fatalf("unexpected grouping (-want +got):\n%s", diff)
	}
}

// TestProcessBlockedByErrors verifies error results block rendering but keep the validated copy.
func TestProcessBlockedByErrors(t *testing.T) {
	raw := strings.Replace(testutil.MinimalSurvey, `"Which brands do you buy?"`,
		`"How likely are you to recommend Brand A to a friend?"`, 1)
	out, err := Process(testutil.ParseSurvey(t, raw), validate.New(survey.Brief{}))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !errors.Is(out.Blocked, render.ErrBlocked) {
		t.Fatalf("expected ErrBlocked, got %v", out.Blocked)
	}
	if out.Spec != nil || out.Validated == nil {
		t.Fatalf("expected validated survey without spec")
	}
	if out.Log().Status != validate.StatusFailed {
		t.Fatalf("expected failed log status")
	}
}

// TestProcessSkipsValidationWhenSectionsMissing verifies the short-circuit.
func TestProcessSkipsValidationWhenSectionsMissing(t *testing.T) {
	out, err := Process(testutil.ParseSurvey(t, `{"SCREENER": {"questions": []}}`), validate.New(survey.Brief{}))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.Validated != nil || len(out.Results) != 0 {
		t.Fatalf("validation should not run on a survey missing sections")
	}
	if len(out.Issues) != 5 {
		t.Fatalf("expected one issue per missing section, got %d", len(out.Issues))
	}
}

func TestWriteOutputs(t *testing.T) {
	out, err := Process(testutil.ParseSurvey(t, testutil.MinimalSurvey), nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	paths, err := WriteOutputs(t.TempDir(), out)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, path := range []string{paths.Validated, paths.Log, paths.UISpec} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s: %v", path, err)
		}
	}
	spec, err := os.ReadFile(paths.UISpec)
	if err != nil {
		t.Fatalf("read ui spec: %v", err)
	}
	if !strings.Contains(string(spec), `"ui_spec_version": "1.0"`) {
		t.Fatalf("unexpected ui spec: %s", spec)
	}
}

// TestFormatRunID verifies run ID formatting.
func TestFormatRunID(t *testing.T) {
	timestamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := FormatRunID(timestamp, "deadbeef"); got != "20240102T030405Z-deadbeef" {
		t.Fatalf("unexpected run id: %q", got)
	}
}

// TestNewRunIDWithRand verifies deterministic run ID generation with a reader.
func TestNewRunIDWithRand(t *testing.T) {
	timestamp := time.Date(2024, 6, 7, 8, 9, 10, 0, time.UTC)
	reader := bytes.NewReader(bytes.Repeat([]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77}, 2))
	got, err := NewRunIDWithRand(timestamp, reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "20240607T080910Z-001122334455" {
		t.Fatalf("unexpected run id: %q", got)
	}
	if _, err := NewRunIDWithRand(timestamp, bytes.NewReader(nil)); err == nil {
		t.Fatalf("expected error for exhausted reader")
	}
}

type memoryRecorder struct {
	mu      sync.Mutex
	records []Record
}

func (m *memoryRecorder) Record(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

// TestRunBatch verifies per-survey statuses, ordering and recording.
func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		testutil.WriteFile(t, dir, "clean.json", testutil.MinimalSurvey),
		testutil.WriteFile(t, dir, "broken.json", `{"STUDY_METADATA": {}}`),
		testutil.WriteFile(t, dir, "garbage.json", `not json`),
	}
	recorder := &memoryRecorder{}
	var progress bytes.Buffer
	ids := 0
	var idMu sync.Mutex
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := testutil.NewFakeClock(start)
	clock.Step = time.Second
	results, summary, err := RunBatch(testutil.Context(t, 0), paths, nil, BatchOptions{
		Workers:   2,
		OutputDir: filepath.Join(dir, "out"),
		Recorder:  recorder,
		Observer:  NewProgressObserver(&progress),
		Now:       clock.Now,
		RunID: func() (string, error) {
			idMu.Lock()
			defer idMu.Unlock()
			ids++
			return FormatRunID(time.Unix(0, 0), strings.Repeat("0", ids)), nil
		},
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	var statuses []string
	for _, res := range results {
		statuses = append(statuses, res.Status)
	}
	if diff := cmp.Diff([]string{StatusPassed, StatusFailed, StatusInvalid}, statuses); diff != "" {
		t.Fatalf("unexpected statuses (-want +got):\n%s", diff)
	}
	want := BatchSummary{Total: 3, Passed: 1, Failed: 1, Invalid: 1, PassRate: 1.0 / 3}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Fatalf("unexpected summary (-want +got):\n%s", diff)
	}
	if len(recorder.records) != 2 {
		t.Fatalf("expected two recorded runs, got %d", len(recorder.records))
	}
	for _, rec := range recorder.records {
		if rec.StartedAt.Before(start) || rec.Duration < time.Second {
			t.Fatalf("unexpected timing for %s: %s %s", rec.SurveyPath, rec.StartedAt, rec.Duration)
		}
	}
	if !results[0].Rendered || results[0].OutputDir != filepath.Join(dir, "out", "clean.json") {
		t.Fatalf("unexpected clean result: %+v", results[0])
	}
	if strings.Count(progress.String(), "\n") != 3 {
		t.Fatalf("expected one progress line per survey, got %q", progress.String())
	}
}

func TestRunBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := testutil.WriteFile(t, t.TempDir(), "clean.json", testutil.MinimalSurvey)
	if _, _, err := RunBatch(ctx, []string{path}, nil, BatchOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func npsSurvey() string {
	return strings.Replace(testutil.MinimalSurvey, `"Which brands do you buy?"`,
		`"How likely are you to recommend Brand A to a friend?"`, 1)
}

// TestWriteOutputsRemovesStaleUISpec verifies a blocked rerun leaves no UI spec behind.
func TestWriteOutputsRemovesStaleUISpec(t *testing.T) {
	dir := t.TempDir()
	clean, err := Process(testutil.ParseSurvey(t, testutil.MinimalSurvey), validate.New(survey.Brief{}))
	if err != nil {
		t.Fatalf("process clean: %v", err)
	}
	if _, err := WriteOutputs(dir, clean); err != nil {
		t.Fatalf("write clean: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, UISpecFile)); err != nil {
		t.Fatalf("expected ui spec after clean run: %v", err)
	}

	blocked, err := Process(testutil.ParseSurvey(t, npsSurvey()), validate.New(survey.Brief{}))
	if err != nil {
		t.Fatalf("process blocked: %v", err)
	}
	paths, err := WriteOutputs(dir, blocked)
	if err != nil {
		t.Fatalf("write blocked: %v", err)
	}
	if paths.UISpec != "" {
		t.Fatalf("expected no ui spec path, got %s", paths.UISpec)
	}
	if _, err := os.Stat(filepath.Join(dir, UISpecFile)); !os.IsNotExist(err) {
		t.Fatalf("expected stale ui spec removed, got %v", err)
	}
}

// TestRunBatchKeepsExtensionInOutputDir verifies surveys sharing a stem get their own directories.
func TestRunBatchKeepsExtensionInOutputDir(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	paths := []string{
		testutil.WriteFile(t, dir, "survey.json", testutil.MinimalSurvey),
		testutil.WriteFile(t, dir, "survey.yml", npsSurvey()),
	}
	results, _, err := RunBatch(testutil.Context(t, 0), paths, validate.New(survey.Brief{}), BatchOptions{
		Workers:   2,
		OutputDir: out,
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if results[0].Status != StatusPassed || results[1].Status != StatusFailed {
		t.Fatalf("unexpected statuses: %s, %s", results[0].Status, results[1].Status)
	}
	if _, err := os.Stat(filepath.Join(out, "survey.json", UISpecFile)); err != nil {
		t.Fatalf("expected ui spec for survey.json: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "survey.yml", UISpecFile)); !os.IsNotExist(err) {
		t.Fatalf("expected no ui spec for survey.yml, got %v", err)
	}
	data, err := os.ReadFile(filepath.Join(out, "survey.json", LogFile))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"status": "passed"`) {
		t.Fatalf("clean survey log overwritten: %s", data)
	}
}

// TestRunBatchRejectsSharedOutputNames verifies same-named surveys from different dirs are refused.
func TestRunBatchRejectsSharedOutputNames(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		testutil.WriteFile(t, dir, filepath.Join("a", "survey.json"), testutil.MinimalSurvey),
		testutil.WriteFile(t, dir, filepath.Join("b", "survey.json"), testutil.MinimalSurvey),
	}
	_, _, err := RunBatch(testutil.Context(t, 0), paths, nil, BatchOptions{OutputDir: filepath.Join(dir, "out")})
	if !errors.Is(err, ErrOutputCollision) {
		t.Fatalf("expected ErrOutputCollision, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out")); !os.IsNotExist(err) {
		t.Fatalf("expected nothing written, got %v", err)
	}
}

// TestProgressObserverSerializesWrites verifies concurrent reports produce whole lines.
func TestProgressObserverSerializesWrites(t *testing.T) {
	var buf bytes.Buffer
	observer := NewProgressObserver(&buf)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			observer.OnDocumentEnd(DocumentResult{Path: "s.json", Status: StatusPassed})
		}()
	}
	wg.Wait()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 32 {
		t.Fatalf("expected 32 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "passed  s.json") {
			t.Fatalf("garbled line %q", line)
		}
	}
}
