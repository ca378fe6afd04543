package normalize

import (
	"fmt"

	"surveyforge/internal/jsonpatch"
	"surveyforge/internal/survey"
)

const repairNote = "Return RFC6902 JSON Patch operations that fix ONLY the issue at json_path (or within fragment)."

// RepairPayload is handed to a repair collaborator that answers with patch
// operations scoped to exactly one issue.
type RepairPayload struct {
	Task        string         `json:"task"`
	IssueID     string         `json:"issue_id"`
	Fingerprint string         `json:"issue_fingerprint"`
	ErrorCode   string         `json:"error_code"`
	JSONPath    string         `json:"json_path"`
	Message     string         `json:"message"`
	Fragment    any            `json:"fragment"`
	Expected    RepairExpected `json:"expected"`
}

// RepairExpected describes the answer format.
type RepairExpected struct {
	Note   string       `json:"note"`
	Format RepairFormat `json:"format"`
}

// RepairFormat shows the patch shape with placeholder values.
type RepairFormat struct {
	Patch []map[string]string `json:"patch"`
}

// BuildRepairPayload describes a single issue for targeted repair.
func BuildRepairPayload(issue Issue) RepairPayload {
	return RepairPayload{
		Task:        "targeted_json_repair",
		IssueID:     issue.IssueID,
		Fingerprint: issue.Fingerprint,
		ErrorCode:   issue.ErrorCode,
		JSONPath:    issue.JSONPath,
		Message:     issue.Message,
		Fragment:    issue.Fragment,
		Expected: RepairExpected{
			Note: repairNote,
			Format: RepairFormat{Patch: []map[string]string{
				{"op": "replace|add|remove", "path": "<json_pointer>", "value": "<any>"},
			}},
		},
	}
}

// RepairOutcome reports the effect of applying a repair patch.
type RepairOutcome struct {
	Result   Result
	Resolved bool
	// Introduced lists fingerprints that did not exist before the patch.
	Introduced []string
}

// ApplyRepair applies patch ops to doc, re-normalizes, and checks whether
// the issue's fingerprint is gone. doc is not modified.
func ApplyRepair(doc *survey.Document, issue Issue, ops []jsonpatch.Operation) (RepairOutcome, error) {
	before := Normalize(doc)
	patched, err := jsonpatch.Apply(doc.Tree(), ops)
	if err != nil {
		return RepairOutcome{}, err
	}
	root, ok := patched.(map[string]any)
	if !ok {
		return RepairOutcome{}, fmt.Errorf("repair %s: %w", issue.IssueID, survey.ErrNotObject)
	}
	after := Normalize(survey.NewDocument(root, doc.Keys))

	known := map[string]bool{}
	for _, prev := range before.Issues {
		known[prev.Fingerprint] = true
	}
	outcome := RepairOutcome{Result: after, Resolved: true}
	for _, next := range after.Issues {
		if next.Fingerprint == issue.Fingerprint {
			outcome.Resolved = false
		}
		if !known[next.Fingerprint] {
			outcome.Introduced = append(outcome.Introduced, next.Fingerprint)
		}
	}
	return outcome, nil
}
