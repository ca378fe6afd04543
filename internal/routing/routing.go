// Package routing derives per-question routing from the free-text rules in
// a survey's FLOW section.
package routing

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"surveyforge/internal/survey"
)

// Entry lists the rules that affect one question.
type Entry struct {
	ShownBy          []string `json:"shown_by_rules"`
	SkippedBy        []string `json:"skipped_by_rules"`
	TerminatedBy     []string `json:"terminate_by_rules"`
	DisplaysArtefact *string  `json:"displays_artefact"`
}

// Routed reports whether any rule touches the question.
func (e Entry) Routed() bool {
	return len(e.ShownBy) > 0 || len(e.SkippedBy) > 0 || len(e.TerminatedBy) > 0
}

func newEntry() *Entry {
	return &Entry{ShownBy: []string{}, SkippedBy: []string{}, TerminatedBy: []string{}}
}

// Index maps question ids to their routing entry.
type Index map[string]*Entry

// Lookup returns the entry for qid, or an empty one.
func (idx Index) Lookup(qid string) Entry {
	if e, ok := idx[qid]; ok {
		return *e
	}
	return *newEntry()
}

func (idx Index) ensure(qid string) *Entry {
	e, ok := idx[qid]
	if !ok {
		e = newEntry()
		idx[qid] = e
	}
	return e
}

// Assignment describes a randomised artefact rotation found in a rule.
type Assignment struct {
	ID          string   `json:"assignment_id"`
	RuleID      string   `json:"rule_id"`
	Method      string   `json:"method"`
	Artefacts   []string `json:"artefacts"`
	Description string   `json:"description"`
}

// RuleMeta is the raw and rewritten text of one rule.
type RuleMeta struct {
	Condition      string      `json:"condition"`
	Action         string      `json:"action"`
	PlainCondition string      `json:"plain_condition"`
	Assignment     *Assignment `json:"artefact_assignment,omitempty"`
	// Unsupported lists action clauses no pattern recognised.
	Unsupported []string `json:"unsupported_clauses,omitempty"`
}

// Build indexes the routing rules of flow against the known question ids.
// Show and skip clauses name their targets; terminate clauses apply to the
// questions named in the rule condition.
func Build(flow map[string]any, questionIDs []string) (Index, map[string]RuleMeta) {
	index := Index{}
	meta := map[string]RuleMeta{}
	rules, ok := survey.AsArray(flow["routing_rules"])
	if !ok {
		return index, meta
	}
	known := make(map[string]bool, len(questionIDs))
	for _, id := range questionIDs {
		known[id] = true
	}
	knownTokens := func(text string) []string {
		var out []string
		for _, token := range identifiers(text) {
			if known[token] {
				out = append(out, token)
			}
		}
		return out
	}

	assignments := DetectAssignments(flow)
	for _, item := range rules {
		rule, ok := item.(map[string]any)
		if !ok {
			continue
		}
		ruleID := strings.TrimSpace(survey.Str(rule, "rule_id"))
		condition, action := survey.Str(rule, "condition"), survey.Str(rule, "action")
		m := RuleMeta{Condition: condition, Action: action, PlainCondition: PlainCondition(condition)}
		for i := range assignments {
			if assignments[i].RuleID == ruleID {
				m.Assignment = &assignments[i]
			}
		}

		if match := displayArtefact.FindStringSubmatch(action); match != nil {
			artefactID := match[1]
			index.ensure(match[2]).DisplaysArtefact = &artefactID
		}
		for _, effect := range ParseAction(action) {
			switch effect.Kind {
			case KindShow:
				for _, qid := range knownTokens(strings.Join(effect.Targets, " ")) {
					e := index.ensure(qid)
					e.ShownBy = append(e.ShownBy, ruleID)
				}
			case KindSkip:
				for _, qid := range knownTokens(strings.Join(effect.Targets, " ")) {
					e := index.ensure(qid)
					e.SkippedBy = append(e.SkippedBy, ruleID)
				}
			case KindTerminate:
				for _, qid := range knownTokens(condition) {
					e := index.ensure(qid)
					e.TerminatedBy = append(e.TerminatedBy, ruleID)
				}
			case KindUnsupported:
				m.Unsupported = append(m.Unsupported, effect.Clause)
			}
		}
		meta[ruleID] = m
	}
	for _, e := range index {
		e.ShownBy = sortedSet(e.ShownBy)
		e.SkippedBy = sortedSet(e.SkippedBy)
		e.TerminatedBy = sortedSet(e.TerminatedBy)
	}
	return index, meta
}

var (
	artefactToken = regexp.MustCompile(`\b([A-Z]\d+)\b`)
	letterRun     = regexp.MustCompile(`\b([A-Z]{2,})\b`)
)

// DetectAssignments finds rules whose action randomly assigns or rotates
// artefacts. Artefacts are named directly (A1, A2) or as letter orders
// (ABC, BCA), where letter N maps to artefact AN.
func DetectAssignments(flow map[string]any) []Assignment {
	var out []Assignment
	for _, rule := range survey.Objects(flow["routing_rules"]) {
		action := survey.Str(rule, "action")
		if !assignmentVerb.MatchString(action) {
			continue
		}
		artefacts := assignedArtefacts(action)
		if len(artefacts) == 0 {
			continue
		}
		id := "concept_rotation"
		if len(out) > 0 {
			id = fmt.Sprintf("concept_rotation_%d", len(out)+1)
		}
		out = append(out, Assignment{
			ID:          id,
			RuleID:      survey.Str(rule, "rule_id"),
			Method:      "random_permutation",
			Artefacts:   artefacts,
			Description: action,
		})
	}
	return out
}

func assignedArtefacts(action string) []string {
	ids := artefactToken.FindAllString(action, -1)
	if len(ids) == 0 {
		letters := map[rune]bool{}
		for _, run := range letterRun.FindAllString(action, -1) {
			for _, r := range run {
				letters[r] = true
			}
		}
		for r := range letters {
			ids = append(ids, fmt.Sprintf("A%d", r-'A'+1))
		}
	}
	return sortedSet(ids)
}

func sortedSet(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
