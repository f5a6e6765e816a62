package importer

import (
	"fmt"
	"strconv"

	"github.com/agentic-research/rigseq/api"
	"github.com/agentic-research/rigseq/internal/diag"
)

// canonicalOrder lists the node-defining sections in array order.
var canonicalOrder = [...]api.Keyword{
	api.KeywordNodes,
	api.KeywordNodes2,
	api.KeywordCinecam,
	api.KeywordWheels,
	api.KeywordWheels2,
	api.KeywordMeshWheels,
	api.KeywordMeshWheels2,
	api.KeywordFlexBodyWheels,
}

const numCategories = len(canonicalOrder)

// CanonicalOrder returns the node-defining sections in the order their nodes
// appear in the canonical array.
func CanonicalOrder() []api.Keyword {
	out := make([]api.Keyword, numCategories)
	copy(out, canonicalOrder[:])
	return out
}

func categoryOf(kw api.Keyword) (int, bool) {
	for i, k := range canonicalOrder {
		if k == kw {
			return i, true
		}
	}
	return -1, false
}

// Per-ray node layout of each wheel family.
var (
	tyreOnly    = []api.Detail{api.DetailTyreA, api.DetailTyreB}
	rimAndTyre  = []api.Detail{api.DetailRimA, api.DetailRimB, api.DetailTyreA, api.DetailTyreB}
	rayPatterns = map[api.Keyword][]api.Detail{
		api.KeywordWheels:         tyreOnly,
		api.KeywordWheels2:        rimAndTyre,
		api.KeywordMeshWheels:     tyreOnly,
		api.KeywordMeshWheels2:    tyreOnly,
		api.KeywordFlexBodyWheels: rimAndTyre,
	}
)

// NodesPerRay returns how many nodes a wheel family generates per ray,
// or 0 for sections that are not wheel families.
func NodesPerRay(kw api.Keyword) int { return len(rayPatterns[kw]) }

// RayPattern returns the per-ray detail layout of a wheel family.
func RayPattern(kw api.Keyword) []api.Detail {
	p := rayPatterns[kw]
	out := make([]api.Detail, len(p))
	copy(out, p)
	return out
}

// hasRigidityNode reports whether a family links its rim to the rigidity
// node through a node of its own.
func hasRigidityNode(kw api.Keyword) bool {
	return len(rayPatterns[kw]) == len(rimAndTyre)
}

// Origin is the provenance of one canonical node.
// Implemented by NumberedOrigin, NamedOrigin and GeneratedOrigin.
type Origin interface {
	Keyword() api.Keyword
	SourceID() string
}

type NumberedOrigin struct {
	ID uint32
}

func (NumberedOrigin) Keyword() api.Keyword { return api.KeywordNodes }
func (o NumberedOrigin) SourceID() string {
	return strconv.FormatUint(uint64(o.ID), 10)
}

type NamedOrigin struct {
	Name string
}

func (NamedOrigin) Keyword() api.Keyword { return api.KeywordNodes2 }
func (o NamedOrigin) SourceID() string   { return o.Name }

// GeneratedOrigin is a node produced by the Construct-th cinecam or wheel of
// section From.
type GeneratedOrigin struct {
	From      api.Keyword
	Construct int
	SubIndex  int
	Detail    api.Detail
}

func (o GeneratedOrigin) Keyword() api.Keyword { return o.From }
func (o GeneratedOrigin) SourceID() string     { return o.Ref().String() }

// Ref returns the reference that addresses this node.
func (o GeneratedOrigin) Ref() api.GeneratedRef {
	return api.GeneratedRef{From: o.From, Construct: o.Construct, SubIndex: o.SubIndex, Detail: o.Detail}
}

// NodeEntry is one slot of the canonical node array.
type NodeEntry struct {
	Index  int
	Origin Origin
}

func (e NodeEntry) Keyword() api.Keyword { return e.Origin.Keyword() }
func (e NodeEntry) SourceID() string     { return e.Origin.SourceID() }

func (e NodeEntry) Detail() api.Detail {
	if g, ok := e.Origin.(GeneratedOrigin); ok {
		return g.Detail
	}
	return api.DetailNone
}

func (e NodeEntry) SubIndex() int {
	if g, ok := e.Origin.(GeneratedOrigin); ok {
		return g.SubIndex
	}
	return 0
}

// OriginKind names the provenance variant: numbered, named or generated.
func (e NodeEntry) OriginKind() string {
	switch e.Origin.(type) {
	case NumberedOrigin:
		return "numbered"
	case NamedOrigin:
		return "named"
	case GeneratedOrigin:
		return "generated"
	}
	return "unknown"
}

// Construct returns the ordinal of the generating construct for generated
// nodes.
func (e NodeEntry) Construct() (int, bool) {
	if g, ok := e.Origin.(GeneratedOrigin); ok {
		return g.Construct, true
	}
	return 0, false
}

func (e NodeEntry) String() string {
	return fmt.Sprintf("@%d %s %s", e.Index, e.Keyword(), e.SourceID())
}

// admit checks that a node of section kw may be appended now. The table only
// grows in canonical order so that no registered index ever moves.
func (im *Importer) admit(kw api.Keyword) (int, bool) {
	cat, ok := categoryOf(kw)
	if !ok {
		im.addMessage(diag.Fatal, kw, "section %s does not define nodes", kw)
		return -1, false
	}
	if cat < im.lastCategory {
		im.addMessage(diag.Fatal, kw,
			"cannot add %s nodes after %s nodes, node table must be filled in canonical order",
			kw, canonicalOrder[im.lastCategory])
		return -1, false
	}
	return cat, true
}

func (im *Importer) appendEntry(cat int, origin Origin) int {
	idx := len(im.entries)
	im.entries = append(im.entries, NodeEntry{Index: idx, Origin: origin})
	im.counts[cat]++
	im.lastCategory = cat
	return idx
}

// AddNumberedNode registers node id from the "nodes" section. A duplicate id
// is reported and ignored; the first definition keeps its slot.
func (im *Importer) AddNumberedNode(id uint32) bool {
	if !im.enabled {
		return false
	}
	if im.numberedIDs.Contains(id) {
		im.addMessage(diag.Warning, api.KeywordNodes,
			"duplicate numbered node %d, keeping first definition at index %d", id, im.numbered[id])
		return false
	}
	cat, ok := im.admit(api.KeywordNodes)
	if !ok {
		return false
	}
	idx := im.appendEntry(cat, NumberedOrigin{ID: id})
	im.numberedIDs.Add(id)
	im.numbered[id] = idx
	return true
}

// AddNamedNode registers a node from the "nodes2" section. Duplicate names
// are reported and ignored.
func (im *Importer) AddNamedNode(name string) bool {
	if !im.enabled {
		return false
	}
	if name == "" {
		im.addMessage(diag.Error, api.KeywordNodes2, "named node without a name")
		return false
	}
	if idx, dup := im.named[name]; dup {
		im.addMessage(diag.Warning, api.KeywordNodes2,
			"duplicate named node %q, keeping first definition at index %d", name, idx)
		return false
	}
	cat, ok := im.admit(api.KeywordNodes2)
	if !ok {
		return false
	}
	im.named[name] = im.appendEntry(cat, NamedOrigin{Name: name})
	return true
}

// AddGeneratedNode registers the single node generated by one construct of
// section from (a cinecam). Each call is a new construct.
func (im *Importer) AddGeneratedNode(from api.Keyword, detail api.Detail) {
	if !im.enabled {
		return
	}
	if from != api.KeywordCinecam {
		im.addMessage(diag.Fatal, from, "section %s does not generate single nodes", from)
		return
	}
	construct := im.constructs[from]
	im.constructs[from]++
	cat, ok := im.admit(from)
	if !ok {
		return
	}
	im.addGenerated(cat, GeneratedOrigin{From: from, Construct: construct, Detail: detail})
}

// GenerateNodesForWheel registers the nodes of one wheel of family from:
// numRays times the family's per-ray pattern, plus a rigidity node for
// families with a separate rim when hasRigidityNode is set.
func (im *Importer) GenerateNodesForWheel(from api.Keyword, numRays int, hasRigidity bool) {
	if !im.enabled {
		return
	}
	if !from.IsWheelFamily() {
		im.addMessage(diag.Fatal, from, "section %s is not a wheel family", from)
		return
	}
	// Construct ordinals follow document order even for rejected wheels.
	construct := im.constructs[from]
	im.constructs[from]++
	cat, ok := im.admit(from)
	if !ok {
		return
	}
	if numRays < 1 {
		im.addMessage(diag.Error, from, "wheel %d has %d rays, no nodes generated", construct, numRays)
		return
	}
	for ray := 0; ray < numRays; ray++ {
		for _, detail := range rayPatterns[from] {
			im.addGenerated(cat, GeneratedOrigin{From: from, Construct: construct, SubIndex: ray, Detail: detail})
		}
	}
	if hasRigidity && hasRigidityNode(from) {
		im.addGenerated(cat, GeneratedOrigin{From: from, Construct: construct, SubIndex: numRays, Detail: api.DetailRigidity})
	}
}

func (im *Importer) addGenerated(cat int, origin GeneratedOrigin) {
	im.generated[origin.Ref()] = im.appendEntry(cat, origin)
}

// NodeArrayOffset returns the canonical index of the first node of section
// kw: the number of nodes in all sections before it. The second result is
// false for sections that define no nodes.
func (im *Importer) NodeArrayOffset(kw api.Keyword) (int, bool) {
	cat, ok := categoryOf(kw)
	if !ok {
		return 0, false
	}
	offset := 0
	for _, n := range im.counts[:cat] {
		offset += n
	}
	return offset, true
}

// NodeCount returns how many nodes section kw has contributed so far.
func (im *Importer) NodeCount(kw api.Keyword) int {
	cat, ok := categoryOf(kw)
	if !ok {
		return 0
	}
	return im.counts[cat]
}

// NumNodes returns the size of the canonical node array.
func (im *Importer) NumNodes() int { return len(im.entries) }

// Nodes returns a copy of the canonical node table.
func (im *Importer) Nodes() []NodeEntry {
	out := make([]NodeEntry, len(im.entries))
	copy(out, im.entries)
	return out
}

// Entry returns the node at canonical index idx.
func (im *Importer) Entry(idx int) (NodeEntry, bool) {
	if idx < 0 || idx >= len(im.entries) {
		return NodeEntry{}, false
	}
	return im.entries[idx], true
}
