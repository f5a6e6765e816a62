package api

import "fmt"

// RootModuleName is the name given to the first module when the document
// does not name it.
const RootModuleName = "_root_"

// Document is a parsed truck file: the root module followed by any
// section modules, in document order.
type Document struct {
	Name    string    `json:"name,omitempty" yaml:"name,omitempty"`
	Modules []*Module `json:"modules" yaml:"modules"`
}

// Vec3 is a position in vehicle space.
type Vec3 [3]float64

// Module holds the sections of one module. Only sections that define or
// reference nodes are modelled; anything else is carried opaquely in
// Extensions and never touched by node resolution.
type Module struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	Nodes          []Node      `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	NamedNodes     []NamedNode `json:"nodes2,omitempty" yaml:"nodes2,omitempty"`
	Cinecams       []Cinecam   `json:"cinecam,omitempty" yaml:"cinecam,omitempty"`
	Wheels         []Wheel     `json:"wheels,omitempty" yaml:"wheels,omitempty"`
	Wheels2        []Wheel     `json:"wheels2,omitempty" yaml:"wheels2,omitempty"`
	MeshWheels     []Wheel     `json:"meshwheels,omitempty" yaml:"meshwheels,omitempty"`
	MeshWheels2    []Wheel     `json:"meshwheels2,omitempty" yaml:"meshwheels2,omitempty"`
	FlexBodyWheels []Wheel     `json:"flexbodywheels,omitempty" yaml:"flexbodywheels,omitempty"`

	Beams      []Link      `json:"beams,omitempty" yaml:"beams,omitempty"`
	Shocks     []Link      `json:"shocks,omitempty" yaml:"shocks,omitempty"`
	Hydros     []Link      `json:"hydros,omitempty" yaml:"hydros,omitempty"`
	Commands   []Link      `json:"commands2,omitempty" yaml:"commands2,omitempty"`
	Triggers   []Link      `json:"triggers,omitempty" yaml:"triggers,omitempty"`
	Ropes      []Rope      `json:"ropes,omitempty" yaml:"ropes,omitempty"`
	Ropables   []Ropable   `json:"ropables,omitempty" yaml:"ropables,omitempty"`
	Ties       []Tie       `json:"ties,omitempty" yaml:"ties,omitempty"`
	Fixes      []NodeRef   `json:"fixes,omitempty" yaml:"fixes,omitempty"`
	Contacters []NodeRef   `json:"contacters,omitempty" yaml:"contacters,omitempty"`
	Hooks      []Hook      `json:"hooks,omitempty" yaml:"hooks,omitempty"`
	SlideNodes []SlideNode `json:"slidenodes,omitempty" yaml:"slidenodes,omitempty"`
	RailGroups []RailGroup `json:"railgroups,omitempty" yaml:"railgroups,omitempty"`
	Cameras    []Camera    `json:"cameras,omitempty" yaml:"cameras,omitempty"`
	Axles      []Axle      `json:"axles,omitempty" yaml:"axles,omitempty"`
	FlexBodies []FlexBody  `json:"flexbodies,omitempty" yaml:"flexbodies,omitempty"`
	Props      []Prop      `json:"props,omitempty" yaml:"props,omitempty"`
	Submeshes  []Submesh   `json:"submesh,omitempty" yaml:"submesh,omitempty"`

	Extensions map[string]any `json:"extensions,omitempty" yaml:"extensions,omitempty"`
}

// Node is an entry of the "nodes" section, identified by number.
type Node struct {
	ID       uint32 `json:"id" yaml:"id"`
	Position Vec3   `json:"position" yaml:"position,flow"`
	Options  string `json:"options,omitempty" yaml:"options,omitempty"`
}

// NamedNode is an entry of the "nodes2" section, identified by name.
type NamedNode struct {
	Name     string `json:"name" yaml:"name"`
	Position Vec3   `json:"position" yaml:"position,flow"`
	Options  string `json:"options,omitempty" yaml:"options,omitempty"`
}

// Cinecam generates one node at Position, held by spring beams to the
// eight attachment Nodes.
type Cinecam struct {
	Position Vec3      `json:"position" yaml:"position,flow"`
	Nodes    []NodeRef `json:"nodes" yaml:"nodes,flow"`
}

// Wheel is shared by all wheel families; the family is the section it is
// listed under.
type Wheel struct {
	NumRays          int     `json:"rays" yaml:"rays"`
	Node1            NodeRef `json:"node1" yaml:"node1"`
	Node2            NodeRef `json:"node2" yaml:"node2"`
	RigidityNode     NodeRef `json:"rigidity_node" yaml:"rigidity_node"`
	ReferenceArmNode NodeRef `json:"reference_arm_node" yaml:"reference_arm_node"`
	Radius           float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
	Mesh             string  `json:"mesh,omitempty" yaml:"mesh,omitempty"`
}

// Link is any two-node construct: beams, shocks, hydros, commands, triggers.
type Link struct {
	Node1   NodeRef `json:"node1" yaml:"node1"`
	Node2   NodeRef `json:"node2" yaml:"node2"`
	Options string  `json:"options,omitempty" yaml:"options,omitempty"`
}

type Rope struct {
	Root NodeRef `json:"root" yaml:"root"`
	End  NodeRef `json:"end" yaml:"end"`
}

type Ropable struct {
	Node  NodeRef `json:"node" yaml:"node"`
	Group int     `json:"group,omitempty" yaml:"group,omitempty"`
}

type Tie struct {
	Root      NodeRef `json:"root" yaml:"root"`
	MaxLength float64 `json:"max_length,omitempty" yaml:"max_length,omitempty"`
}

type Hook struct {
	Node      NodeRef   `json:"node" yaml:"node"`
	LockNodes []NodeRef `json:"lock_nodes,omitempty" yaml:"lock_nodes,omitempty,flow"`
}

type SlideNode struct {
	Node       NodeRef     `json:"node" yaml:"node"`
	RailRanges []NodeRange `json:"rails" yaml:"rails"`
}

type RailGroup struct {
	ID     int         `json:"id" yaml:"id"`
	Ranges []NodeRange `json:"ranges" yaml:"ranges"`
}

type Camera struct {
	Center NodeRef `json:"center" yaml:"center"`
	Back   NodeRef `json:"back" yaml:"back"`
	Left   NodeRef `json:"left" yaml:"left"`
}

type AxleWheel struct {
	Node1 NodeRef `json:"node1" yaml:"node1"`
	Node2 NodeRef `json:"node2" yaml:"node2"`
}

type Axle struct {
	Wheel1 AxleWheel `json:"wheel1" yaml:"wheel1"`
	Wheel2 AxleWheel `json:"wheel2" yaml:"wheel2"`
}

type FlexBody struct {
	Reference NodeRef     `json:"reference" yaml:"reference"`
	X         NodeRef     `json:"x" yaml:"x"`
	Y         NodeRef     `json:"y" yaml:"y"`
	Mesh      string      `json:"mesh,omitempty" yaml:"mesh,omitempty"`
	ForSet    []NodeRange `json:"forset,omitempty" yaml:"forset,omitempty"`
}

type Prop struct {
	Reference NodeRef `json:"reference" yaml:"reference"`
	X         NodeRef `json:"x" yaml:"x"`
	Y         NodeRef `json:"y" yaml:"y"`
	Mesh      string  `json:"mesh,omitempty" yaml:"mesh,omitempty"`
}

type CabTriangle struct {
	Node1   NodeRef `json:"node1" yaml:"node1"`
	Node2   NodeRef `json:"node2" yaml:"node2"`
	Node3   NodeRef `json:"node3" yaml:"node3"`
	Options string  `json:"options,omitempty" yaml:"options,omitempty"`
}

type Submesh struct {
	Cab []CabTriangle `json:"cab" yaml:"cab"`
}

// ModuleName returns the display name of the i-th module.
func (d *Document) ModuleName(i int) string {
	if i < 0 || i >= len(d.Modules) || d.Modules[i] == nil {
		return ""
	}
	if name := d.Modules[i].Name; name != "" {
		return name
	}
	if i == 0 {
		return RootModuleName
	}
	return fmt.Sprintf("module_%d", i)
}
