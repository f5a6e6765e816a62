package importer

import (
	"github.com/agentic-research/rigseq/api"
	"github.com/agentic-research/rigseq/internal/diag"
	"github.com/agentic-research/rigseq/internal/logging"
)

// cinecamAttachments is the number of nodes a cinecam is held by.
const cinecamAttachments = 8

// Process runs a full pass over doc: every node-defining section is
// registered in canonical order, then every node reference in every module
// is resolved in place. Modules are visited in document order.
//
// A disabled Importer leaves doc untouched.
func (im *Importer) Process(doc *api.Document) {
	if !im.enabled {
		im.logger.Debug().Msg("Node remapping disabled, references kept as written")
		return
	}
	if doc == nil {
		im.addMessage(diag.Fatal, api.KeywordInvalid, "no document to process")
		return
	}

	done := logging.LogOperationStart(im.logger, "process")
	defer done()
	defer im.setScope(api.KeywordInvalid, "")

	for i, m := range doc.Modules {
		if m == nil {
			im.addMessage(diag.Fatal, api.KeywordInvalid, "module %d is missing", i)
		}
	}

	// Sections are the outer loop so that several modules still fill the
	// table category by category.
	for _, kw := range canonicalOrder {
		for i, m := range doc.Modules {
			if m == nil {
				continue
			}
			im.setScope(kw, doc.ModuleName(i))
			im.registerSection(kw, m)
		}
	}

	im.walking = true
	defer func() { im.walking = false }()
	cinecams := 0
	for i, m := range doc.Modules {
		if m == nil {
			continue
		}
		im.module = doc.ModuleName(i)
		cinecams = im.resolveModule(m, cinecams)
	}
}

func (im *Importer) registerSection(kw api.Keyword, m *api.Module) {
	switch kw {
	case api.KeywordNodes:
		for _, n := range m.Nodes {
			im.AddNumberedNode(n.ID)
		}
	case api.KeywordNodes2:
		for _, n := range m.NamedNodes {
			im.AddNamedNode(n.Name)
		}
	case api.KeywordCinecam:
		for range m.Cinecams {
			im.AddGeneratedNode(api.KeywordCinecam, api.DetailNone)
		}
	default:
		for _, w := range wheelSection(m, kw) {
			im.GenerateNodesForWheel(kw, w.NumRays, w.RigidityNode.IsSet())
		}
	}
}

func wheelSection(m *api.Module, kw api.Keyword) []api.Wheel {
	switch kw {
	case api.KeywordWheels:
		return m.Wheels
	case api.KeywordWheels2:
		return m.Wheels2
	case api.KeywordMeshWheels:
		return m.MeshWheels
	case api.KeywordMeshWheels2:
		return m.MeshWheels2
	case api.KeywordFlexBodyWheels:
		return m.FlexBodyWheels
	}
	return nil
}

// resolveModule rewrites every reference of m. cinecams is the number of
// cinecams seen in earlier modules; the updated count is returned.
func (im *Importer) resolveModule(m *api.Module, cinecams int) int {
	im.keyword = api.KeywordCinecam
	for i := range m.Cinecams {
		c := &m.Cinecams[i]
		if len(c.Nodes) != cinecamAttachments {
			im.addMessage(diag.Warning, api.KeywordCinecam,
				"cinecam %d has %d attachment nodes, expected %d", cinecams, len(c.Nodes), cinecamAttachments)
		}
		anchor := NoAnchor
		if idx, ok := im.generated[api.GeneratedRef{From: api.KeywordCinecam, Construct: cinecams}]; ok {
			anchor = idx
		}
		im.resolveList(anchor, c.Nodes)
		cinecams++
	}

	for _, kw := range canonicalOrder[3:] {
		im.keyword = kw
		ws := wheelSection(m, kw)
		for i := range ws {
			w := &ws[i]
			im.resolveConstruct(&w.Node1, &w.Node2, &w.RigidityNode, &w.ReferenceArmNode)
		}
	}

	im.resolveLinks(api.KeywordBeams, m.Beams)
	im.resolveLinks(api.KeywordShocks, m.Shocks)
	im.resolveLinks(api.KeywordHydros, m.Hydros)
	im.resolveLinks(api.KeywordCommands2, m.Commands)
	im.resolveLinks(api.KeywordTriggers, m.Triggers)

	im.keyword = api.KeywordRopes
	for i := range m.Ropes {
		im.resolveConstruct(&m.Ropes[i].Root, &m.Ropes[i].End)
	}
	im.keyword = api.KeywordRopables
	for i := range m.Ropables {
		im.resolveConstruct(&m.Ropables[i].Node)
	}
	im.keyword = api.KeywordTies
	for i := range m.Ties {
		im.resolveConstruct(&m.Ties[i].Root)
	}
	im.keyword = api.KeywordFixes
	im.resolveList(NoAnchor, m.Fixes)
	im.keyword = api.KeywordContacters
	im.resolveList(NoAnchor, m.Contacters)

	im.keyword = api.KeywordHooks
	for i := range m.Hooks {
		h := &m.Hooks[i]
		h.Node = im.ResolveNode(h.Node)
		im.resolveList(h.Node.CanonicalIndex(), h.LockNodes)
	}
	im.keyword = api.KeywordSlideNodes
	for i := range m.SlideNodes {
		s := &m.SlideNodes[i]
		s.Node = im.ResolveNode(s.Node)
		im.resolveRangesFrom(s.Node.CanonicalIndex(), s.RailRanges)
	}
	im.keyword = api.KeywordRailGroups
	for i := range m.RailGroups {
		im.ResolveNodeRanges(m.RailGroups[i].Ranges)
	}

	im.keyword = api.KeywordCameras
	for i := range m.Cameras {
		c := &m.Cameras[i]
		im.resolveConstruct(&c.Center, &c.Back, &c.Left)
	}
	im.keyword = api.KeywordAxles
	for i := range m.Axles {
		a := &m.Axles[i]
		im.resolveConstruct(&a.Wheel1.Node1, &a.Wheel1.Node2, &a.Wheel2.Node1, &a.Wheel2.Node2)
	}
	im.keyword = api.KeywordFlexBodies
	for i := range m.FlexBodies {
		f := &m.FlexBodies[i]
		im.resolveConstruct(&f.Reference, &f.X, &f.Y)
		im.resolveRangesFrom(f.Reference.CanonicalIndex(), f.ForSet)
	}
	im.keyword = api.KeywordProps
	for i := range m.Props {
		p := &m.Props[i]
		im.resolveConstruct(&p.Reference, &p.X, &p.Y)
	}
	im.keyword = api.KeywordSubmesh
	for i := range m.Submeshes {
		cab := m.Submeshes[i].Cab
		for j := range cab {
			im.resolveConstruct(&cab[j].Node1, &cab[j].Node2, &cab[j].Node3)
		}
	}
	return cinecams
}

func (im *Importer) resolveLinks(kw api.Keyword, links []api.Link) {
	im.keyword = kw
	for i := range links {
		im.resolveConstruct(&links[i].Node1, &links[i].Node2)
	}
}
