package eval

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NodeKind discriminates the three shapes a structured record node can take.
type NodeKind int

const (
	KindObject NodeKind = iota
	KindArray
	KindScalar
)

// nullSentinel is the stringified form of a JSON null. It is distinct from
// the empty string so a null leaf never fuzzy-matches a blank candidate.
const nullSentinel = "null"

// Node is one node of a parsed structured record. Object children keep the
// key order of the source text. Nodes are never mutated after parse.
type Node struct {
	Kind     NodeKind
	Keys     []string
	Children []*Node
	Elems    []*Node
	Value    string
}

// FlatEntry is a (path, stringified leaf value) pair produced by Flatten.
type FlatEntry struct {
	Path  string
	Value string
}

// ParseRecord decodes JSON text into an order-preserving Node tree.
// Numbers keep their source decimal form.
func ParseRecord(text string) (*Node, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	node, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	// Reject trailing garbage after the first value.
	if dec.More() {
		return nil, fmt.Errorf("unexpected trailing data after JSON value")
	}
	return node, nil
}

func parseValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading token: %w", err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return &Node{Kind: KindScalar, Value: t}, nil
	case json.Number:
		return &Node{Kind: KindScalar, Value: t.String()}, nil
	case bool:
		if t {
			return &Node{Kind: KindScalar, Value: "true"}, nil
		}
		return &Node{Kind: KindScalar, Value: "false"}, nil
	case nil:
		return &Node{Kind: KindScalar, Value: nullSentinel}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func parseObject(dec *json.Decoder) (*Node, error) {
	node := &Node{Kind: KindObject}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading object key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", tok)
		}
		child, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		node.Keys = append(node.Keys, key)
		node.Children = append(node.Children, child)
	}
	// Consume closing '}'.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading object end: %w", err)
	}
	return node, nil
}

func parseArray(dec *json.Decoder) (*Node, error) {
	node := &Node{Kind: KindArray}
	for dec.More() {
		elem, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		node.Elems = append(node.Elems, elem)
	}
	// Consume closing ']'.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading array end: %w", err)
	}
	return node, nil
}

// Flatten walks a record tree and emits one FlatEntry per scalar leaf.
// Object keys append as "prefix.key", array indices as "prefix[i]".
func Flatten(n *Node) []FlatEntry {
	var out []FlatEntry
	flattenInto(n, "", &out)
	return out
}

func flattenInto(n *Node, prefix string, out *[]FlatEntry) {
	switch n.Kind {
	case KindObject:
		for i, key := range n.Keys {
			childPrefix := key
			if prefix != "" {
				childPrefix = prefix + "." + key
			}
			flattenInto(n.Children[i], childPrefix, out)
		}
	case KindArray:
		for i, elem := range n.Elems {
			flattenInto(elem, fmt.Sprintf("%s[%d]", prefix, i), out)
		}
	case KindScalar:
		*out = append(*out, FlatEntry{Path: prefix, Value: n.Value})
	}
}

// FlattenToMap flattens a record and indexes the entries by path.
// Paths are unique for well-formed records, so later entries never clobber
// meaningfully distinct values.
func FlattenToMap(n *Node) map[string]string {
	entries := Flatten(n)
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.Path] = e.Value
	}
	return m
}
