package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/matzehuels/reasontree/pkg/errors"
)

// MaxDepth is the deepest nesting Parse accepts.
const MaxDepth = 4096

var idType = reflect.TypeOf(ID{})

// Parse decodes a reasoning-tree document.
//
// Invalid JSON yields a load failure whose message is the parser's own text.
// A document that is valid JSON but not a well-formed tree (non-object nodes,
// non-array children, non-scalar ids, non-string brief or reasoning, duplicate
// ids) yields a load failure naming the JSON path of the problem.
//
// A missing id is read as JSON null. A null brief, reasoning or children is
// treated as absent.
func Parse(data []byte) (*Node, error) {
	var probe json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, errors.LoadFailure(err)
	}

	v, err := decodeValue(data)
	if err != nil {
		return nil, errors.LoadFailure(err)
	}

	p := parser{seen: make(map[string]string)}
	return p.node(v, "$", 0)
}

// Decode reads r to the end and parses the result with [Parse].
func Decode(r io.Reader) (*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "read tree")
	}
	return Parse(data)
}

// ReadFile reads and parses the tree document at path.
func ReadFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "file not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "read %s", path)
	}
	return Parse(data)
}

// WriteFile writes root as indented JSON, matching the snapshot format.
func WriteFile(path string, root *Node) error {
	data, err := json.MarshalIndent(root, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func loadFailure(format string, args ...any) error {
	return errors.New(errors.ErrCodeLoadFailure, format, args...)
}

func decodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

type parser struct {
	seen map[string]string // canonical id -> path of first occurrence
}

func (p *parser) node(v any, path string, depth int) (*Node, error) {
	if depth > MaxDepth {
		return nil, loadFailure("%s: tree deeper than %d levels", path, MaxDepth)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, loadFailure("%s: expected object, got %s", path, describe(v))
	}

	n := &Node{}
	if raw, ok := obj["id"]; ok {
		id, ok := idFromValue(raw)
		if !ok {
			return nil, loadFailure("%s.id: expected scalar, got %s", path, describe(raw))
		}
		n.ID = id
	}

	key := n.ID.String()
	if first, dup := p.seen[key]; dup {
		return nil, loadFailure("%s: duplicate id %q (first used at %s)", path, key, first)
	}
	p.seen[key] = path

	var err error
	if n.Brief, err = optionalString(obj, "brief", path); err != nil {
		return nil, err
	}
	if n.Reasoning, err = optionalString(obj, "reasoning", path); err != nil {
		return nil, err
	}

	switch children := obj["children"].(type) {
	case nil:
	case []any:
		n.Children = make([]*Node, 0, len(children))
		for i, c := range children {
			child, err := p.node(c, fmt.Sprintf("%s.children[%d]", path, i), depth+1)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		}
	default:
		return nil, loadFailure("%s.children: expected array, got %s", path, describe(children))
	}

	return n, nil
}

func optionalString(obj map[string]any, key, path string) (*string, error) {
	switch v := obj[key].(type) {
	case nil:
		return nil, nil
	case string:
		return &v, nil
	default:
		return nil, loadFailure("%s.%s: expected string, got %s", path, key, describe(v))
	}
}

func idFromValue(v any) (ID, bool) {
	switch v := v.(type) {
	case nil:
		return ID{}, true
	case json.Number:
		return NumberID(v), true
	case string:
		return StringID(v), true
	case bool:
		return BoolID(v), true
	default:
		return ID{}, false
	}
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
