package survey

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Brief is the research brief a survey was generated from.
type Brief struct {
	Objective           string      `json:"objective"`
	Description         string      `json:"description,omitempty"`
	TargetAudience      string      `json:"target_audience"`
	KeyDimensions       []string    `json:"key_dimensions"`
	StudyType           string      `json:"study_type,omitempty"`
	PrimaryMethodology  string      `json:"primary_methodology,omitempty"`
	SecondaryObjectives []string    `json:"secondary_objectives,omitempty"`
	Skills              []string    `json:"skills"`
	TotalSampleSize     int         `json:"total_sample_size,omitempty"`
	Quotas              []Quota     `json:"quotas,omitempty"`
	StudyDesign         StudyDesign `json:"study_design"`
	Constraints         Constraints `json:"constraints"`
}

// Quota is a sampling target from the brief.
type Quota struct {
	Attribute string       `json:"attribute"`
	Type      string       `json:"type"`
	Groups    []QuotaGroup `json:"groups"`
	Target    float64      `json:"target,omitempty"`
}

// QuotaGroup is one answer group of a quota.
type QuotaGroup struct {
	Label      string   `json:"label"`
	Min        *int     `json:"min,omitempty"`
	Max        *int     `json:"max,omitempty"`
	Proportion *float64 `json:"proportion,omitempty"`
}

// StudyDesign holds the design details the validators read.
type StudyDesign struct {
	AttributeTesting AttributeTesting `json:"attribute_testing"`
}

// AttributeTesting lists conjoint attributes and their levels. Briefs carry
// it either as {attributes, levels} or as [{attribute_name, levels}].
type AttributeTesting struct {
	Attributes []string
	Levels     map[string][]string
	Defined    bool
}

// UnmarshalJSON accepts both attribute testing layouts.
func (a *AttributeTesting) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = AttributeTesting{}
		return nil
	}
	out := AttributeTesting{Levels: map[string][]string{}}
	if trimmed[0] == '[' {
		var items []struct {
			AttributeName string   `json:"attribute_name"`
			Levels        []string `json:"levels"`
		}
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("attribute_testing: %w", err)
		}
		for _, item := range items {
			out.Attributes = append(out.Attributes, item.AttributeName)
			out.Levels[item.AttributeName] = item.Levels
		}
		out.Defined = len(items) > 0
		*a = out
		return nil
	}
	var obj struct {
		Attributes []string            `json:"attributes"`
		Levels     map[string][]string `json:"levels"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return fmt.Errorf("attribute_testing: %w", err)
	}
	out.Attributes = obj.Attributes
	for k, v := range obj.Levels {
		out.Levels[k] = v
	}
	out.Defined = len(obj.Attributes) > 0 || len(obj.Levels) > 0
	*a = out
	return nil
}

// MarshalJSON writes the object layout.
func (a AttributeTesting) MarshalJSON() ([]byte, error) {
	if !a.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(map[string]any{"attributes": a.Attributes, "levels": a.Levels})
}

// Constraints is either a structured object or free text.
type Constraints struct {
	SampleSize int
	Text       string
}

// UnmarshalJSON accepts an object with sample_size or a plain string.
func (c *Constraints) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*c = Constraints{}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &c.Text)
	}
	var obj map[string]any
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return fmt.Errorf("constraints: %w", err)
	}
	c.SampleSize = Int(obj["sample_size"], 0)
	return nil
}

// MarshalJSON writes the structured form when a sample size is set.
func (c Constraints) MarshalJSON() ([]byte, error) {
	if c.SampleSize > 0 {
		return json.Marshal(map[string]int{"sample_size": c.SampleSize})
	}
	if c.Text != "" {
		return json.Marshal(c.Text)
	}
	return []byte("null"), nil
}

// HasSkill reports whether a skill is selected.
func (b Brief) HasSkill(name string) bool {
	for _, skill := range b.Skills {
		if skill == name {
			return true
		}
	}
	return false
}

// QuotaByAttribute indexes quotas by attribute name.
func (b Brief) QuotaByAttribute() map[string]Quota {
	out := make(map[string]Quota, len(b.Quotas))
	for _, q := range b.Quotas {
		out[q.Attribute] = q
	}
	return out
}

// LoadBrief reads a brief from JSON or YAML.
func LoadBrief(path string) (Brief, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Brief{}, fmt.Errorf("read brief: %w", err)
	}
	return ParseBrief(data, path)
}

// ParseBrief decodes a brief. YAML input is converted to JSON first so both
// formats share the same field handling.
func ParseBrief(data []byte, path string) (Brief, error) {
	if strings.ToLower(filepath.Ext(path)) != ".json" {
		var generic any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return Brief{}, fmt.Errorf("parse brief yaml: %w", err)
		}
		converted, err := json.Marshal(jsonCompatible(generic))
		if err != nil {
			return Brief{}, fmt.Errorf("parse brief yaml: %w", err)
		}
		data = converted
	}
	var brief Brief
	if err := json.Unmarshal(data, &brief); err != nil {
		return Brief{}, fmt.Errorf("parse brief: %w", err)
	}
	brief.Skills = cleanStrings(brief.Skills)
	brief.KeyDimensions = cleanStrings(brief.KeyDimensions)
	brief.PrimaryMethodology = strings.ToLower(strings.TrimSpace(brief.PrimaryMethodology))
	return brief, nil
}

func cleanStrings(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SampleSize is the planned sample: constraints first, then the total
// sample size, then the sum of quota targets.
func (b Brief) SampleSize() int {
	if b.Constraints.SampleSize > 0 {
		return b.Constraints.SampleSize
	}
	if b.TotalSampleSize > 0 {
		return b.TotalSampleSize
	}
	total := 0.0
	for _, q := range b.Quotas {
		total += q.Target
	}
	return int(total)
}
