package jsonpatch

import (
	"strconv"
	"strings"
)

// ParsePointer splits a JSON pointer into unescaped reference tokens.
// The empty pointer refers to the whole document and yields no tokens.
func ParsePointer(pointer string) ([]string, error) {
	if pointer == "" {
		return nil, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, &PatchError{Path: pointer, Reason: "pointer must start with '/'"}
	}
	parts := strings.Split(pointer[1:], "/")
	for i, part := range parts {
		parts[i] = Unescape(part)
	}
	return parts, nil
}

// Unescape decodes a single reference token.
func Unescape(token string) string {
	return strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
}

// Escape encodes a single reference token.
func Escape(token string) string {
	return strings.ReplaceAll(strings.ReplaceAll(token, "~", "~0"), "/", "~1")
}

// Join builds a pointer from raw tokens.
func Join(tokens ...string) string {
	var b strings.Builder
	for _, token := range tokens {
		b.WriteByte('/')
		b.WriteString(Escape(token))
	}
	return b.String()
}

// Get resolves a pointer against doc.
func Get(doc any, pointer string) (any, error) {
	tokens, err := ParsePointer(pointer)
	if err != nil {
		return nil, err
	}
	current := doc
	for _, token := range tokens {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[token]
			if !ok {
				return nil, &PatchError{Path: pointer, Reason: "path not found"}
			}
			current = next
		case []any:
			idx, err := arrayIndex(token, len(node)-1)
			if err != nil {
				return nil, &PatchError{Path: pointer, Reason: err.Error()}
			}
			current = node[idx]
		default:
			return nil, &PatchError{Path: pointer, Reason: "cannot traverse non-container"}
		}
	}
	return current, nil
}

// arrayIndex parses a decimal array index no greater than max.
func arrayIndex(token string, max int) (int, error) {
	if token == "" || (len(token) > 1 && token[0] == '0') {
		return 0, errInvalidIndex(token)
	}
	idx, err := strconv.Atoi(token)
	if err != nil || idx < 0 {
		return 0, errInvalidIndex(token)
	}
	if idx > max {
		return 0, errIndexRange(token)
	}
	return idx, nil
}
