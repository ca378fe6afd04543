// Package jsonpatch implements the add, replace and remove subset of RFC 6902
// over generic JSON trees (map[string]any / []any).
package jsonpatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Supported operation names.
const (
	OpAdd     = "add"
	OpReplace = "replace"
	OpRemove  = "remove"
)

// Operation is a single patch step. Path is a pointer; nil means the member
// was absent in the source JSON. Value is always encoded so an explicit null
// survives a round-trip.
type Operation struct {
	Op    string  `json:"op"`
	Path  *string `json:"path"`
	Value any     `json:"value"`
}

// NewOperation builds an operation with a path.
func NewOperation(op, path string, value any) Operation {
	return Operation{Op: op, Path: &path, Value: value}
}

// PatchError reports why an operation could not be applied.
type PatchError struct {
	Op     string
	Path   string
	Reason string
}

func (e *PatchError) Error() string {
	switch {
	case e.Op != "" && e.Path != "":
		return fmt.Sprintf("json patch: %s %s: %s", e.Op, e.Path, e.Reason)
	case e.Path != "":
		return fmt.Sprintf("json patch: %s: %s", e.Path, e.Reason)
	case e.Op != "":
		return fmt.Sprintf("json patch: %s: %s", e.Op, e.Reason)
	default:
		return "json patch: " + e.Reason
	}
}

var (
	errIndexOutOfRange = errors.New("array index out of range")
	errBadIndex        = errors.New("invalid array index")
)

func errInvalidIndex(token string) error {
	return fmt.Errorf("%w %q", errBadIndex, token)
}

func errIndexRange(token string) error {
	return fmt.Errorf("%w: %s", errIndexOutOfRange, token)
}

// ParseOperations decodes an RFC 6902 operation array. A bare object with a
// "patch" member is accepted too, matching the repair payload format.
func ParseOperations(data []byte) ([]Operation, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapper struct {
			Patch []Operation `json:"patch"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("parse patch: %w", err)
		}
		return wrapper.Patch, nil
	}
	var ops []Operation
	if err := json.Unmarshal(trimmed, &ops); err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}
	return ops, nil
}

// Apply runs ops in order against a deep copy of doc and returns the result.
// On error the original document is untouched.
func Apply(doc any, ops []Operation) (any, error) {
	out := deepCopy(doc)
	for _, op := range ops {
		var err error
		out, err = applyOne(out, op)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func applyOne(doc any, op Operation) (any, error) {
	switch op.Op {
	case OpAdd, OpReplace, OpRemove:
	default:
		return nil, &PatchError{Op: op.Op, Reason: fmt.Sprintf("unsupported op %q", op.Op)}
	}
	if op.Path == nil {
		return nil, &PatchError{Op: op.Op, Reason: "missing path"}
	}
	path := *op.Path
	tokens, err := ParsePointer(path)
	if err != nil {
		var perr *PatchError
		if errors.As(err, &perr) {
			perr.Op = op.Op
		}
		return nil, err
	}
	if len(tokens) == 0 {
		if op.Op == OpRemove {
			return nil, &PatchError{Op: op.Op, Path: path, Reason: "cannot remove the document root"}
		}
		return deepCopy(op.Value), nil
	}

	parent, err := resolveParent(doc, tokens)
	if err != nil {
		return nil, &PatchError{Op: op.Op, Path: path, Reason: err.Error()}
	}
	key := tokens[len(tokens)-1]
	value := deepCopy(op.Value)

	switch node := parent.(type) {
	case map[string]any:
		if op.Op == OpRemove {
			delete(node, key)
		} else {
			node[key] = value
		}
		return doc, nil
	case []any:
		updated, err := applyArray(node, op.Op, key, value)
		if err != nil {
			return nil, &PatchError{Op: op.Op, Path: path, Reason: err.Error()}
		}
		return setChild(doc, tokens[:len(tokens)-1], updated)
	default:
		return nil, &PatchError{Op: op.Op, Path: path, Reason: "cannot traverse non-container"}
	}
}

// applyArray returns the array after the operation. Slices may be
// reallocated, so the caller stores the result back into the tree.
func applyArray(arr []any, op, token string, value any) ([]any, error) {
	if op == OpAdd && token == "-" {
		return append(arr, value), nil
	}
	max := len(arr) - 1
	if op == OpAdd {
		max = len(arr)
	}
	idx, err := arrayIndex(token, max)
	if err != nil {
		return nil, err
	}
	switch op {
	case OpAdd:
		if idx == len(arr) {
			return append(arr, value), nil
		}
		arr = append(arr, nil)
		copy(arr[idx+1:], arr[idx:])
		arr[idx] = value
		return arr, nil
	case OpReplace:
		arr[idx] = value
		return arr, nil
	default:
		return append(arr[:idx], arr[idx+1:]...), nil
	}
}

// resolveParent walks every token except the last.
func resolveParent(doc any, tokens []string) (any, error) {
	current := doc
	for _, token := range tokens[:len(tokens)-1] {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[token]
			if !ok {
				return nil, fmt.Errorf("path segment %q not found", token)
			}
			current = next
		case []any:
			idx, err := arrayIndex(token, len(node)-1)
			if err != nil {
				return nil, err
			}
			current = node[idx]
		default:
			return nil, errors.New("cannot traverse non-container")
		}
	}
	return current, nil
}

// setChild stores value at the location named by tokens.
func setChild(doc any, tokens []string, value any) (any, error) {
	if len(tokens) == 0 {
		return value, nil
	}
	parent, err := resolveParent(doc, tokens)
	if err != nil {
		return nil, err
	}
	key := tokens[len(tokens)-1]
	switch node := parent.(type) {
	case map[string]any:
		node[key] = value
	case []any:
		idx, err := arrayIndex(key, len(node)-1)
		if err != nil {
			return nil, err
		}
		node[idx] = value
	}
	return doc, nil
}

func deepCopy(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[key] = deepCopy(inner)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = deepCopy(inner)
		}
		return out
	default:
		return v
	}
}
