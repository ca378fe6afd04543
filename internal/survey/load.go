package survey

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a survey document. Files ending in .json are parsed as JSON,
// everything else as YAML.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read survey: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes a survey document, choosing the format from the file name.
func Parse(data []byte, path string) (*Document, error) {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// ParseJSON decodes a JSON object and keeps its top-level key order.
func ParseJSON(data []byte) (*Document, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	tok, err := decoder.Token()
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}
	root := map[string]any{}
	var keys []string
	for decoder.More() {
		tok, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("parse json: unexpected token %v", tok)
		}
		var value any
		if err := decoder.Decode(&value); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		if _, dup := root[key]; !dup {
			keys = append(keys, key)
		}
		root[key] = value
	}
	if _, err := decoder.Token(); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if _, err := decoder.Token(); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("parse json: multiple documents are not supported")
		}
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return &Document{Keys: keys, Root: root}, nil
}

// ParseYAML decodes a YAML mapping and keeps its top-level key order.
func ParseYAML(data []byte) (*Document, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	var node yaml.Node
	if err := decoder.Decode(&node); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("parse yaml: multiple YAML documents are not supported")
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	mapping := &node
	if mapping.Kind == yaml.DocumentNode && len(mapping.Content) > 0 {
		mapping = mapping.Content[0]
	}
	if mapping.Kind != yaml.MappingNode {
		return nil, ErrNotObject
	}
	root := map[string]any{}
	var keys []string
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		var value any
		if err := mapping.Content[i+1].Decode(&value); err != nil {
			return nil, fmt.Errorf("parse yaml: %s: %w", key, err)
		}
		if _, dup := root[key]; !dup {
			keys = append(keys, key)
		}
		root[key] = jsonCompatible(value)
	}
	return &Document{Keys: keys, Root: root}, nil
}

// WriteJSON writes any value as indented JSON without HTML escaping.
func WriteJSON(path string, value any) error {
	data, err := MarshalIndent(value)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// MarshalIndent renders value as two-space indented JSON with a trailing newline.
func MarshalIndent(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return buf.Bytes(), nil
}
