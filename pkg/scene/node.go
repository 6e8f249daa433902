package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matzehuels/nestlayout/pkg/errors"
)

// Kind distinguishes ordinary shapes from edge pseudo-nodes.
// It is decided once, when a node is decoded.
type Kind int

const (
	// KindShape is an ordinary node that receives a position.
	KindShape Kind = iota
	// KindEdge is a pseudo-node whose pointers name two endpoints.
	KindEdge
)

// String returns "shape" or "edge".
func (k Kind) String() string {
	if k == KindEdge {
		return "edge"
	}
	return "shape"
}

// Well-known keys of a scene node object.
const (
	keyID       = "id"
	keyChildren = "children"
	keyPointers = "pointers"
	keyRegistry = "registry"
	keySrc      = "src"
	keyDst      = "dst"
	keyPosition = "position"
)

// Node is one element of a scene tree.
//
// Fields the layout does not interpret (including the raw pointers object)
// are kept verbatim and written back unchanged by MarshalJSON.
type Node struct {
	// ID is the node identifier. Empty until assigned when absent in the input.
	ID string

	// Kind is KindEdge when both pointers.src and pointers.dst are truthy.
	Kind Kind

	// Src and Dst are the endpoint ids of an edge. Empty for shapes.
	Src, Dst string

	// Children in input order. Nil when the input had no children key.
	Children []*Node

	// Registry is the mutable annotation slot. Nil when absent.
	Registry map[string]json.RawMessage

	hasChildren bool
	rawID       json.RawMessage
	fields      map[string]json.RawMessage
}

// Position is a computed layout coordinate stored under registry.position.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsEdge reports whether the node is an edge pseudo-node.
func (n *Node) IsEdge() bool { return n.Kind == KindEdge }

// Partition splits the children into edges and shapes, preserving order.
func (n *Node) Partition() (edges, shapes []*Node) {
	for _, c := range n.Children {
		if c.IsEdge() {
			edges = append(edges, c)
		} else {
			shapes = append(shapes, c)
		}
	}
	return edges, shapes
}

// Shapes returns the non-edge children in order.
func (n *Node) Shapes() []*Node {
	_, shapes := n.Partition()
	return shapes
}

// SetPosition writes {x, y} into registry.position, creating the registry
// when absent. Other registry entries are preserved.
func (n *Node) SetPosition(x, y float64) {
	if n.Registry == nil {
		n.Registry = make(map[string]json.RawMessage)
		delete(n.fields, keyRegistry)
	}
	data, _ := json.Marshal(Position{X: x, Y: y})
	n.Registry[keyPosition] = data
}

// Position returns registry.position if present and well-formed.
func (n *Node) Position() (Position, bool) {
	raw, ok := n.Registry[keyPosition]
	if !ok {
		return Position{}, false
	}
	var p Position
	if err := json.Unmarshal(raw, &p); err != nil {
		return Position{}, false
	}
	return p, true
}

// Field returns a passthrough field by key.
func (n *Node) Field(key string) (json.RawMessage, bool) {
	raw, ok := n.fields[key]
	return raw, ok
}

// UnmarshalJSON decodes a scene node and classifies it.
func (n *Node) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return errors.New(errors.ErrCodeInvalidInput, "scene node must be a JSON object, got %s", abbreviate(data))
	}

	*n = Node{fields: make(map[string]json.RawMessage, len(obj))}
	for k, v := range obj {
		switch k {
		case keyID:
			if id, ok := scalarString(v); ok {
				n.ID = id
				n.rawID = v
			} else {
				n.fields[k] = v
			}
		case keyChildren:
			if err := n.decodeChildren(v); err != nil {
				return err
			}
		case keyRegistry:
			var reg map[string]json.RawMessage
			if err := json.Unmarshal(v, &reg); err == nil && reg != nil {
				n.Registry = reg
			} else {
				n.fields[k] = v
			}
		default:
			n.fields[k] = v
		}
	}

	if raw, ok := obj[keyPointers]; ok {
		n.classify(raw)
	}
	return nil
}

func (n *Node) decodeChildren(raw json.RawMessage) error {
	if isNull(raw) {
		n.fields[keyChildren] = raw
		return nil
	}
	var children []*Node
	if err := json.Unmarshal(raw, &children); err != nil {
		if errors.GetCode(err) != "" {
			return err
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "children must be an array of objects")
	}
	for i, c := range children {
		if c == nil {
			return errors.New(errors.ErrCodeInvalidInput, "child %d is null", i)
		}
	}
	n.Children = children
	n.hasChildren = true
	return nil
}

func (n *Node) classify(raw json.RawMessage) {
	var ptrs map[string]json.RawMessage
	if err := json.Unmarshal(raw, &ptrs); err != nil || ptrs == nil {
		return
	}
	if !Truthy(ptrs[keySrc]) || !Truthy(ptrs[keyDst]) {
		return
	}
	n.Kind = KindEdge
	n.Src = refString(ptrs[keySrc])
	n.Dst = refString(ptrs[keyDst])
}

// MarshalJSON writes the node back with its passthrough fields. Keys are
// written in sorted order.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.fields)+3)
	for k, v := range n.fields {
		out[k] = v
	}
	if n.ID != "" {
		out[keyID] = n.ID
		if id, ok := scalarString(n.rawID); ok && id == n.ID {
			// Numeric ids keep their input form.
			out[keyID] = n.rawID
		}
	}
	if n.hasChildren || len(n.Children) > 0 {
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		out[keyChildren] = children
	}
	if n.Registry != nil {
		out[keyRegistry] = n.Registry
	}
	return marshalNoEscape(out)
}

// Truthy applies JavaScript truthiness to a raw JSON value: null, false, 0
// and "" are false, everything else (including empty objects and arrays) is true.
func Truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

// scalarString returns a truthy string or number as an id string.
func scalarString(raw json.RawMessage) (string, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, t != ""
	case float64:
		if t == 0 {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	}
	return "", false
}

// refString renders a pointer value as the id it refers to.
func refString(raw json.RawMessage) string {
	if s, ok := scalarString(raw); ok {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func abbreviate(data []byte) string {
	const max = 64
	s := string(bytes.TrimSpace(data))
	if len(s) > max {
		return fmt.Sprintf("%s...", s[:max])
	}
	return s
}
