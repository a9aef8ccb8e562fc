package tree

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind is the JSON type an [ID] was parsed from.
type Kind uint8

// ID kinds.
const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindBool
)

// ID is a node identifier: any JSON scalar.
// The zero value is the JSON null id.
type ID struct {
	kind Kind
	text string // canonical string form
	raw  string // JSON number text, kept for MarshalJSON
}

// IntID returns a numeric id.
func IntID(n int) ID {
	s := strconv.Itoa(n)
	return ID{kind: KindNumber, text: s, raw: s}
}

// StringID returns a string id.
func StringID(s string) ID {
	return ID{kind: KindString, text: s}
}

// BoolID returns a boolean id.
func BoolID(b bool) ID {
	s := strconv.FormatBool(b)
	return ID{kind: KindBool, text: s}
}

// NumberID returns a numeric id from JSON number text.
func NumberID(n json.Number) ID {
	return ID{kind: KindNumber, text: canonicalNumber(string(n)), raw: string(n)}
}

// Kind returns the JSON type of the id.
func (id ID) Kind() Kind { return id.kind }

// String returns the canonical string form used as the graph key.
// Numbers print without exponent or trailing zeros where possible
// (1.0 and 1 both become "1"), strings print unquoted, null prints "null".
func (id ID) String() string {
	if id.kind == KindNull {
		return "null"
	}
	return id.text
}

// MarshalJSON writes the id back as the scalar it was parsed from.
func (id ID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case KindNumber:
		return []byte(id.raw), nil
	case KindString:
		return json.Marshal(id.text)
	case KindBool:
		return []byte(id.text), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON scalar.
func (id *ID) UnmarshalJSON(data []byte) error {
	v, err := decodeValue(data)
	if err != nil {
		return err
	}
	parsed, ok := idFromValue(v)
	if !ok {
		return &json.UnmarshalTypeError{Value: describe(v), Type: idType}
	}
	*id = parsed
	return nil
}

// canonicalNumber normalizes JSON number text to the shortest decimal form.
func canonicalNumber(s string) string {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	if a := math.Abs(f); a != 0 && (a >= 1e21 || a < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Node is one entry of a reasoning tree.
type Node struct {
	ID        ID      `json:"id"`
	Brief     *string `json:"brief,omitempty"`
	Reasoning *string `json:"reasoning,omitempty"`
	Children  []*Node `json:"children"`
}

// HasReasoning reports whether the node carries reasoning text with at least
// one non-whitespace character.
func (n *Node) HasReasoning() bool {
	return n.Reasoning != nil && strings.TrimSpace(*n.Reasoning) != ""
}

// MarshalJSON always writes children as an array, never null.
func (n *Node) MarshalJSON() ([]byte, error) {
	type plain Node
	p := plain(*n)
	if p.Children == nil {
		p.Children = []*Node{}
	}
	return json.Marshal(p)
}

// Walk visits every node in pre-order: the node itself, then each child
// subtree in array order. Returning false from fn stops the walk.
func Walk(root *Node, fn func(n *Node, depth int) bool) {
	walk(root, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n, depth) {
		return false
	}
	for _, c := range n.Children {
		if !walk(c, depth+1, fn) {
			return false
		}
	}
	return true
}

// Count returns the total number of nodes in the tree rooted at root.
func Count(root *Node) int {
	n := 0
	Walk(root, func(*Node, int) bool {
		n++
		return true
	})
	return n
}

// Str returns a pointer to s, for building nodes in code.
func Str(s string) *string { return &s }
