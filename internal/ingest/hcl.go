package ingest

import (
	"errors"
	"fmt"

	"github.com/agentic-research/rigseq/api"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// HCL documents use one block per section entry:
//
//	name = "pickup"
//
//	module "_root_" {
//	  nodes { id = 0 position = [0, 0, 0] }
//	  nodes2 { name = "axle_l" }
//	  wheels { rays = 12 node1 = 0 node2 = "axle_l" }
//	  beams { node1 = 0 node2 = { generated = "wheels", construct = 0, sub_index = 3, detail = "tyre_a" } }
//	  fixes = [0, "axle_l"]
//	}
//
// Node references are HCL values with the same meaning as in JSON.

type hclFile struct {
	Name    string      `hcl:"name,optional"`
	Modules []hclModule `hcl:"module,block"`
}

type hclModule struct {
	Name string `hcl:"name,label"`

	Nodes          []hclNode      `hcl:"nodes,block"`
	NamedNodes     []hclNamedNode `hcl:"nodes2,block"`
	Cinecams       []hclCinecam   `hcl:"cinecam,block"`
	Wheels         []hclWheel     `hcl:"wheels,block"`
	Wheels2        []hclWheel     `hcl:"wheels2,block"`
	MeshWheels     []hclWheel     `hcl:"meshwheels,block"`
	MeshWheels2    []hclWheel     `hcl:"meshwheels2,block"`
	FlexBodyWheels []hclWheel     `hcl:"flexbodywheels,block"`

	Beams      []hclLink      `hcl:"beams,block"`
	Shocks     []hclLink      `hcl:"shocks,block"`
	Hydros     []hclLink      `hcl:"hydros,block"`
	Commands   []hclLink      `hcl:"commands2,block"`
	Triggers   []hclLink      `hcl:"triggers,block"`
	Ropes      []hclRope      `hcl:"ropes,block"`
	Ropables   []hclRopable   `hcl:"ropables,block"`
	Ties       []hclTie       `hcl:"ties,block"`
	Hooks      []hclHook      `hcl:"hooks,block"`
	SlideNodes []hclSlideNode `hcl:"slidenodes,block"`
	RailGroups []hclRailGroup `hcl:"railgroups,block"`
	Cameras    []hclCamera    `hcl:"cameras,block"`
	Axles      []hclAxle      `hcl:"axles,block"`
	FlexBodies []hclFlexBody  `hcl:"flexbodies,block"`
	Props      []hclProp      `hcl:"props,block"`
	Submeshes  []hclSubmesh   `hcl:"submesh,block"`

	Fixes      hcl.Expression `hcl:"fixes,optional"`
	Contacters hcl.Expression `hcl:"contacters,optional"`

	// Anything else is kept as an extension attribute.
	Remain hcl.Body `hcl:",remain"`
}

type hclNode struct {
	ID       uint32    `hcl:"id"`
	Position []float64 `hcl:"position,optional"`
	Options  string    `hcl:"options,optional"`
}

type hclNamedNode struct {
	Name     string    `hcl:"name"`
	Position []float64 `hcl:"position,optional"`
	Options  string    `hcl:"options,optional"`
}

type hclCinecam struct {
	Position []float64     `hcl:"position,optional"`
	Nodes    hcl.Expression `hcl:"nodes"`
}

type hclWheel struct {
	Rays             int            `hcl:"rays"`
	Node1            hcl.Expression `hcl:"node1"`
	Node2            hcl.Expression `hcl:"node2"`
	RigidityNode     hcl.Expression `hcl:"rigidity_node,optional"`
	ReferenceArmNode hcl.Expression `hcl:"reference_arm_node,optional"`
	Radius           float64        `hcl:"radius,optional"`
	Mesh             string         `hcl:"mesh,optional"`
}

type hclLink struct {
	Node1   hcl.Expression `hcl:"node1"`
	Node2   hcl.Expression `hcl:"node2"`
	Options string         `hcl:"options,optional"`
}

type hclRope struct {
	Root hcl.Expression `hcl:"root"`
	End  hcl.Expression `hcl:"end"`
}

type hclRopable struct {
	Node  hcl.Expression `hcl:"node"`
	Group int            `hcl:"group,optional"`
}

type hclTie struct {
	Root      hcl.Expression `hcl:"root"`
	MaxLength float64        `hcl:"max_length,optional"`
}

type hclHook struct {
	Node      hcl.Expression `hcl:"node"`
	LockNodes hcl.Expression `hcl:"lock_nodes,optional"`
}

type hclSlideNode struct {
	Node  hcl.Expression `hcl:"node"`
	Rails hcl.Expression `hcl:"rails"`
}

type hclRailGroup struct {
	ID     int            `hcl:"id"`
	Ranges hcl.Expression `hcl:"ranges"`
}

type hclCamera struct {
	Center hcl.Expression `hcl:"center"`
	Back   hcl.Expression `hcl:"back"`
	Left   hcl.Expression `hcl:"left"`
}

type hclAxle struct {
	Wheel1 hcl.Expression `hcl:"wheel1"`
	Wheel2 hcl.Expression `hcl:"wheel2"`
}

type hclFlexBody struct {
	Reference hcl.Expression `hcl:"reference"`
	X         hcl.Expression `hcl:"x"`
	Y         hcl.Expression `hcl:"y"`
	Mesh      string         `hcl:"mesh,optional"`
	ForSet    hcl.Expression `hcl:"forset,optional"`
}

type hclProp struct {
	Reference hcl.Expression `hcl:"reference"`
	X         hcl.Expression `hcl:"x"`
	Y         hcl.Expression `hcl:"y"`
	Mesh      string         `hcl:"mesh,optional"`
}

type hclSubmesh struct {
	Cab []hclCabTriangle `hcl:"cab,block"`
}

type hclCabTriangle struct {
	Node1   hcl.Expression `hcl:"node1"`
	Node2   hcl.Expression `hcl:"node2"`
	Node3   hcl.Expression `hcl:"node3"`
	Options string         `hcl:"options,optional"`
}

func decodeHCL(data []byte, filename string) (*api.Document, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse hcl %s: %w", filename, diags)
	}
	var raw hclFile
	if diags := gohcl.DecodeBody(f.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode hcl %s: %w", filename, diags)
	}

	c := &hclConverter{}
	doc := &api.Document{Name: raw.Name}
	for i := range raw.Modules {
		doc.Modules = append(doc.Modules, c.module(&raw.Modules[i]))
	}
	if c.err != nil {
		return nil, fmt.Errorf("failed to decode hcl %s: %w", filename, c.err)
	}
	return doc, nil
}

// hclConverter turns decoded blocks into document types. It keeps the first
// error and turns later conversions into no-ops.
type hclConverter struct {
	err error
}

func (c *hclConverter) fail(rng hcl.Range, err error) {
	if c.err == nil {
		c.err = fmt.Errorf("%s: %w", rng, err)
	}
}

func (c *hclConverter) value(expr hcl.Expression) (any, bool) {
	if c.err != nil || expr == nil {
		return nil, false
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		c.fail(expr.Range(), diags)
		return nil, false
	}
	g, err := ctyToGo(v)
	if err != nil {
		c.fail(expr.Range(), err)
		return nil, false
	}
	return g, true
}

func (c *hclConverter) ref(expr hcl.Expression) api.NodeRef {
	v, ok := c.value(expr)
	if !ok {
		return api.NodeRef{}
	}
	r, err := api.ParseRefValue(v)
	if err != nil {
		c.fail(expr.Range(), err)
	}
	return r
}

func (c *hclConverter) refs(expr hcl.Expression) []api.NodeRef {
	v, ok := c.value(expr)
	if !ok || v == nil {
		return nil
	}
	items, isList := v.([]any)
	if !isList {
		c.fail(expr.Range(), errors.New("expected a list of node references"))
		return nil
	}
	out := make([]api.NodeRef, 0, len(items))
	for _, item := range items {
		r, err := api.ParseRefValue(item)
		if err != nil {
			c.fail(expr.Range(), err)
			return nil
		}
		out = append(out, r)
	}
	return out
}

func (c *hclConverter) ranges(expr hcl.Expression) []api.NodeRange {
	v, ok := c.value(expr)
	if !ok || v == nil {
		return nil
	}
	items, isList := v.([]any)
	if !isList {
		c.fail(expr.Range(), errors.New("expected a list of node ranges"))
		return nil
	}
	out := make([]api.NodeRange, 0, len(items))
	for _, item := range items {
		r, err := api.ParseRangeValue(item)
		if err != nil {
			c.fail(expr.Range(), err)
			return nil
		}
		out = append(out, r)
	}
	return out
}

func (c *hclConverter) axleWheel(expr hcl.Expression) api.AxleWheel {
	refs := c.refs(expr)
	if c.err == nil && len(refs) != 2 {
		c.fail(expr.Range(), fmt.Errorf("axle wheel needs 2 nodes, got %d", len(refs)))
		return api.AxleWheel{}
	}
	if len(refs) != 2 {
		return api.AxleWheel{}
	}
	return api.AxleWheel{Node1: refs[0], Node2: refs[1]}
}

func (c *hclConverter) position(what string, p []float64) api.Vec3 {
	var v api.Vec3
	if p == nil {
		return v
	}
	if len(p) != 3 && c.err == nil {
		c.err = fmt.Errorf("%s: position needs 3 components, got %d", what, len(p))
	}
	if len(p) != 3 {
		return v
	}
	copy(v[:], p)
	return v
}

func (c *hclConverter) wheels(ws []hclWheel) []api.Wheel {
	var out []api.Wheel
	for _, w := range ws {
		out = append(out, api.Wheel{
			NumRays:          w.Rays,
			Node1:            c.ref(w.Node1),
			Node2:            c.ref(w.Node2),
			RigidityNode:     c.ref(w.RigidityNode),
			ReferenceArmNode: c.ref(w.ReferenceArmNode),
			Radius:           w.Radius,
			Mesh:             w.Mesh,
		})
	}
	return out
}

func (c *hclConverter) links(ls []hclLink) []api.Link {
	var out []api.Link
	for _, l := range ls {
		out = append(out, api.Link{Node1: c.ref(l.Node1), Node2: c.ref(l.Node2), Options: l.Options})
	}
	return out
}

func (c *hclConverter) module(hm *hclModule) *api.Module {
	m := &api.Module{Name: hm.Name}
	for _, n := range hm.Nodes {
		m.Nodes = append(m.Nodes, api.Node{ID: n.ID, Position: c.position(fmt.Sprintf("node %d", n.ID), n.Position), Options: n.Options})
	}
	for _, n := range hm.NamedNodes {
		m.NamedNodes = append(m.NamedNodes, api.NamedNode{Name: n.Name, Position: c.position(fmt.Sprintf("node %q", n.Name), n.Position), Options: n.Options})
	}
	for _, cc := range hm.Cinecams {
		m.Cinecams = append(m.Cinecams, api.Cinecam{Position: c.position("cinecam", cc.Position), Nodes: c.refs(cc.Nodes)})
	}
	m.Wheels = c.wheels(hm.Wheels)
	m.Wheels2 = c.wheels(hm.Wheels2)
	m.MeshWheels = c.wheels(hm.MeshWheels)
	m.MeshWheels2 = c.wheels(hm.MeshWheels2)
	m.FlexBodyWheels = c.wheels(hm.FlexBodyWheels)

	m.Beams = c.links(hm.Beams)
	m.Shocks = c.links(hm.Shocks)
	m.Hydros = c.links(hm.Hydros)
	m.Commands = c.links(hm.Commands)
	m.Triggers = c.links(hm.Triggers)

	for _, r := range hm.Ropes {
		m.Ropes = append(m.Ropes, api.Rope{Root: c.ref(r.Root), End: c.ref(r.End)})
	}
	for _, r := range hm.Ropables {
		m.Ropables = append(m.Ropables, api.Ropable{Node: c.ref(r.Node), Group: r.Group})
	}
	for _, t := range hm.Ties {
		m.Ties = append(m.Ties, api.Tie{Root: c.ref(t.Root), MaxLength: t.MaxLength})
	}
	m.Fixes = c.refs(hm.Fixes)
	m.Contacters = c.refs(hm.Contacters)
	for _, h := range hm.Hooks {
		m.Hooks = append(m.Hooks, api.Hook{Node: c.ref(h.Node), LockNodes: c.refs(h.LockNodes)})
	}
	for _, s := range hm.SlideNodes {
		m.SlideNodes = append(m.SlideNodes, api.SlideNode{Node: c.ref(s.Node), RailRanges: c.ranges(s.Rails)})
	}
	for _, g := range hm.RailGroups {
		m.RailGroups = append(m.RailGroups, api.RailGroup{ID: g.ID, Ranges: c.ranges(g.Ranges)})
	}
	for _, cam := range hm.Cameras {
		m.Cameras = append(m.Cameras, api.Camera{Center: c.ref(cam.Center), Back: c.ref(cam.Back), Left: c.ref(cam.Left)})
	}
	for _, a := range hm.Axles {
		m.Axles = append(m.Axles, api.Axle{Wheel1: c.axleWheel(a.Wheel1), Wheel2: c.axleWheel(a.Wheel2)})
	}
	for _, f := range hm.FlexBodies {
		m.FlexBodies = append(m.FlexBodies, api.FlexBody{
			Reference: c.ref(f.Reference), X: c.ref(f.X), Y: c.ref(f.Y),
			Mesh: f.Mesh, ForSet: c.ranges(f.ForSet),
		})
	}
	for _, p := range hm.Props {
		m.Props = append(m.Props, api.Prop{Reference: c.ref(p.Reference), X: c.ref(p.X), Y: c.ref(p.Y), Mesh: p.Mesh})
	}
	for _, s := range hm.Submeshes {
		var sm api.Submesh
		for _, t := range s.Cab {
			sm.Cab = append(sm.Cab, api.CabTriangle{
				Node1: c.ref(t.Node1), Node2: c.ref(t.Node2), Node3: c.ref(t.Node3), Options: t.Options,
			})
		}
		m.Submeshes = append(m.Submeshes, sm)
	}
	m.Extensions = c.extensions(hm.Remain)
	return m
}

func (c *hclConverter) extensions(body hcl.Body) map[string]any {
	if body == nil || c.err != nil {
		return nil
	}
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		c.fail(body.MissingItemRange(), diags)
		return nil
	}
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		v, ok := c.value(attr.Expr)
		if !ok {
			return nil
		}
		out[name] = v
	}
	return out
}

// ctyToGo converts a literal cty value into the generic Go shapes the
// reference decoders accept. Integral numbers become int64.
func ctyToGo(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, errors.New("value is not known")
	}
	t := v.Type()
	switch {
	case t == cty.String:
		return v.AsString(), nil
	case t == cty.Bool:
		return v.True(), nil
	case t == cty.Number:
		var i int64
		if err := gocty.FromCtyValue(v, &i); err == nil {
			return i, nil
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}
		return f, nil
	case t.IsObjectType() || t.IsMapType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			g, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = g
		}
		return out, nil
	case t.IsTupleType() || t.IsListType() || t.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			g, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, g)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value of type %s", t.FriendlyName())
}
