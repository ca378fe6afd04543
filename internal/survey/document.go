package survey

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrNotObject is returned when a survey payload is not a JSON/YAML object.
var ErrNotObject = errors.New("survey: document is not an object")

// Document is a survey document whose top-level key order is preserved.
// Section order carries meaning (DEMOGRAPHICS must follow MAIN_SECTION), so
// Keys is the authoritative order and Root holds the values.
type Document struct {
	Keys []string
	Root map[string]any
}

// NewDocument wraps a generic tree. Keys missing from order are appended
// alphabetically.
func NewDocument(root map[string]any, order []string) *Document {
	if root == nil {
		root = map[string]any{}
	}
	doc := &Document{Root: root}
	seen := map[string]bool{}
	for _, key := range order {
		if _, ok := root[key]; ok && !seen[key] {
			doc.Keys = append(doc.Keys, key)
			seen[key] = true
		}
	}
	for _, key := range sortedKeys(root) {
		if !seen[key] {
			doc.Keys = append(doc.Keys, key)
		}
	}
	return doc
}

// Get returns a top-level value.
func (d *Document) Get(key string) (any, bool) {
	if d == nil || d.Root == nil {
		return nil, false
	}
	v, ok := d.Root[key]
	return v, ok
}

// Has reports whether a top-level key exists.
func (d *Document) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Set stores a top-level value, appending the key when new.
func (d *Document) Set(key string, value any) {
	if d.Root == nil {
		d.Root = map[string]any{}
	}
	if _, ok := d.Root[key]; !ok {
		d.Keys = append(d.Keys, key)
	}
	d.Root[key] = value
}

// Delete removes a top-level key.
func (d *Document) Delete(key string) {
	if _, ok := d.Root[key]; !ok {
		return
	}
	delete(d.Root, key)
	for i, k := range d.Keys {
		if k == key {
			d.Keys = append(d.Keys[:i], d.Keys[i+1:]...)
			break
		}
	}
}

// KeyIndex returns the position of a top-level key or -1.
func (d *Document) KeyIndex(key string) int {
	for i, k := range d.Keys {
		if k == key {
			return i
		}
	}
	return -1
}

// Object returns a top-level value as an object, or nil.
func (d *Document) Object(key string) map[string]any {
	v, _ := d.Get(key)
	m, _ := v.(map[string]any)
	return m
}

// Clone returns a deep copy that shares nothing with d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	root, _ := Clone(d.Root).(map[string]any)
	keys := append([]string(nil), d.Keys...)
	return &Document{Keys: keys, Root: root}
}

// Tree exposes the document as a generic tree for pointer operations.
func (d *Document) Tree() any {
	return d.Root
}

// MarshalJSON writes the top-level keys in document order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, key := range d.Keys {
		value, ok := d.Root[key]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valueJSON, err := marshalNoEscape(value)
		if err != nil {
			return nil, err
		}
		buf.Write(valueJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses an object and records its key order.
func (d *Document) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}

func marshalNoEscape(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
