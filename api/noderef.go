package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// RefKind is the form a node reference was written in.
type RefKind uint8

const (
	RefNone      RefKind = iota // absent optional reference
	RefNumbered                 // original numbered-node id
	RefNamed                    // symbolic name from nodes2
	RefGenerated                // node generated by a cinecam or wheel construct
	RefIndex                    // canonical index written directly in the document
)

// RefState distinguishes raw file references from ones already mapped into
// the canonical node array.
type RefState uint8

const (
	StateRaw RefState = iota
	StateResolved
	StateUnresolved
)

// UnresolvedIndex is what CanonicalIndex reports for anything that is not a
// resolved reference. It is never a valid array position.
const UnresolvedIndex = -1

// GeneratedRef addresses one node produced by a generating construct:
// the Construct-th cinecam or wheel of section From, ray SubIndex, and the
// tyre/rim Detail within that ray.
type GeneratedRef struct {
	From      Keyword `json:"generated" yaml:"generated"`
	Construct int     `json:"construct" yaml:"construct"`
	SubIndex  int     `json:"sub_index" yaml:"sub_index"`
	Detail    Detail  `json:"detail,omitempty" yaml:"detail,omitempty"`
}

func (g GeneratedRef) String() string {
	if g.Detail == DetailNone {
		return fmt.Sprintf("%s[%d].%d", g.From, g.Construct, g.SubIndex)
	}
	return fmt.Sprintf("%s[%d].%d.%s", g.From, g.Construct, g.SubIndex, g.Detail)
}

// NodeRef is one occurrence of a node reference in a document.
// Resolution rewrites State and Index and keeps the written form for
// diagnostics and round-tripping.
type NodeRef struct {
	Kind   RefKind
	Number int
	Name   string
	Gen    GeneratedRef
	State  RefState
	Index  int
}

// Num returns a raw reference to a numbered node.
func Num(n int) NodeRef { return NodeRef{Kind: RefNumbered, Number: n} }

// Named returns a raw reference to a named node.
func Named(name string) NodeRef { return NodeRef{Kind: RefNamed, Name: name} }

// Generated returns a raw reference to a generated node. The detail is part
// of the address: the nodes of one wheel ray share subIndex and differ only
// by detail (tyre_a, tyre_b, rim_a, rim_b). Cinecam nodes use DetailNone and
// rigidity nodes DetailRigidity.
func Generated(from Keyword, construct, subIndex int, detail Detail) NodeRef {
	return NodeRef{Kind: RefGenerated, Gen: GeneratedRef{From: from, Construct: construct, SubIndex: subIndex, Detail: detail}}
}

// Index returns a reference that already carries a canonical index.
func Index(i int) NodeRef { return NodeRef{Kind: RefIndex, State: StateResolved, Index: i} }

func (r NodeRef) IsSet() bool        { return r.Kind != RefNone }
func (r NodeRef) IsResolved() bool   { return r.State == StateResolved }
func (r NodeRef) IsUnresolved() bool { return r.State == StateUnresolved }

// CanonicalIndex returns the canonical array position, or UnresolvedIndex.
func (r NodeRef) CanonicalIndex() int {
	if r.State != StateResolved {
		return UnresolvedIndex
	}
	return r.Index
}

// WithIndex returns a copy of r resolved to idx.
func (r NodeRef) WithIndex(idx int) NodeRef {
	r.State = StateResolved
	r.Index = idx
	return r
}

// AsUnresolved returns a copy of r carrying the unresolved marker.
func (r NodeRef) AsUnresolved() NodeRef {
	r.State = StateUnresolved
	r.Index = UnresolvedIndex
	return r
}

// Written returns the reference as it appeared in the file.
func (r NodeRef) Written() string {
	switch r.Kind {
	case RefNumbered:
		return fmt.Sprintf("%d", r.Number)
	case RefNamed:
		return fmt.Sprintf("%q", r.Name)
	case RefGenerated:
		return r.Gen.String()
	case RefIndex:
		return fmt.Sprintf("@%d", r.Index)
	}
	return "<none>"
}

func (r NodeRef) String() string {
	switch r.State {
	case StateResolved:
		if r.Kind == RefIndex {
			return r.Written()
		}
		return fmt.Sprintf("%s->@%d", r.Written(), r.Index)
	case StateUnresolved:
		return r.Written() + "->?"
	}
	return r.Written()
}

// NodeRange is an inclusive pair of node references, e.g. a rail segment or
// a flexbody forset entry. Invalid is set when resolution failed on either
// endpoint.
type NodeRange struct {
	Start   NodeRef
	End     NodeRef
	Invalid bool
}

func Range(start, end NodeRef) NodeRange { return NodeRange{Start: start, End: end} }

// encode produces the generic value shared by the JSON and YAML encoders.
func (r NodeRef) encode() any {
	switch r.State {
	case StateResolved:
		if r.Kind == RefIndex {
			return map[string]any{"index": r.Index}
		}
		return map[string]any{"index": r.Index, "source": r.raw()}
	case StateUnresolved:
		return map[string]any{"unresolved": r.raw()}
	}
	return r.raw()
}

func (r NodeRef) raw() any {
	switch r.Kind {
	case RefNumbered:
		return r.Number
	case RefNamed:
		return r.Name
	case RefGenerated:
		return r.Gen
	case RefIndex:
		return map[string]any{"index": r.Index}
	}
	return nil
}

// ParseRefValue converts a decoded scalar or map into a NodeRef.
// Integers are numbered ids, strings are names; maps carry a canonical
// index, an unresolved marker or a generated-node address.
func ParseRefValue(v any) (NodeRef, error) {
	switch val := v.(type) {
	case nil:
		return NodeRef{}, nil
	case string:
		return Named(val), nil
	case map[string]any:
		return parseRefObject(val)
	}
	n, ok := toInt(v)
	if !ok {
		return NodeRef{}, fmt.Errorf("invalid node reference %v (%T)", v, v)
	}
	return Num(n), nil
}

func parseRefObject(m map[string]any) (NodeRef, error) {
	if raw, ok := m["index"]; ok {
		idx, ok := toInt(raw)
		if !ok || idx < 0 {
			return NodeRef{}, fmt.Errorf("invalid canonical index %v", raw)
		}
		src, ok := m["source"]
		if !ok {
			return Index(idx), nil
		}
		ref, err := ParseRefValue(src)
		if err != nil {
			return NodeRef{}, fmt.Errorf("source of index %d: %w", idx, err)
		}
		return ref.WithIndex(idx), nil
	}
	if raw, ok := m["unresolved"]; ok {
		ref, err := ParseRefValue(raw)
		if err != nil {
			return NodeRef{}, fmt.Errorf("unresolved marker: %w", err)
		}
		return ref.AsUnresolved(), nil
	}
	if raw, ok := m["generated"]; ok {
		from, ok := raw.(string)
		if !ok {
			return NodeRef{}, fmt.Errorf("generated: expected section name, got %T", raw)
		}
		construct, _ := toInt(m["construct"])
		sub, _ := toInt(m["sub_index"])
		detail, _ := m["detail"].(string)
		return Generated(Keyword(from), construct, sub, Detail(detail)), nil
	}
	return NodeRef{}, fmt.Errorf("node reference object needs one of index, unresolved, generated")
}

// ParseRangeValue converts a two-element list into a NodeRange.
func ParseRangeValue(v any) (NodeRange, error) {
	list, ok := v.([]any)
	if !ok || len(list) != 2 {
		return NodeRange{}, fmt.Errorf("node range must be a two-element list, got %v", v)
	}
	start, err := ParseRefValue(list[0])
	if err != nil {
		return NodeRange{}, fmt.Errorf("range start: %w", err)
	}
	end, err := ParseRefValue(list[1])
	if err != nil {
		return NodeRange{}, fmt.Errorf("range end: %w", err)
	}
	return NodeRange{Start: start, End: end, Invalid: start.IsUnresolved() || end.IsUnresolved()}, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}

func (r NodeRef) MarshalJSON() ([]byte, error) { return json.Marshal(r.encode()) }

func (r *NodeRef) UnmarshalJSON(data []byte) error {
	v, err := decodeJSONValue(data)
	if err != nil {
		return err
	}
	ref, err := ParseRefValue(v)
	if err != nil {
		return err
	}
	*r = ref
	return nil
}

func (r NodeRef) MarshalYAML() (any, error) { return r.encode(), nil }

func (r *NodeRef) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	ref, err := ParseRefValue(v)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*r = ref
	return nil
}

func (r NodeRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.Start.encode(), r.End.encode()})
}

func (r *NodeRange) UnmarshalJSON(data []byte) error {
	v, err := decodeJSONValue(data)
	if err != nil {
		return err
	}
	rng, err := ParseRangeValue(v)
	if err != nil {
		return err
	}
	*r = rng
	return nil
}

func (r NodeRange) MarshalYAML() (any, error) {
	return []any{r.Start.encode(), r.End.encode()}, nil
}

func (r *NodeRange) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	rng, err := ParseRangeValue(v)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*r = rng
	return nil
}

// decodeJSONValue keeps numbers as json.Number so ids are not rounded.
func decodeJSONValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
