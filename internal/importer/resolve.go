package importer

import (
	"math"

	"github.com/agentic-research/rigseq/api"
	"github.com/agentic-research/rigseq/internal/diag"
)

// ResolveNode maps a written reference to its canonical index. A reference
// that names no registered node is reported and returned with the
// unresolved marker. References that are already resolved or unresolved,
// and unset references, come back unchanged. Inside Process an incoming
// unresolved marker is reported once as an error.
func (im *Importer) ResolveNode(ref api.NodeRef) api.NodeRef {
	return im.ResolveNodeFrom(NoAnchor, ref)
}

// ResolveNodeFrom is ResolveNode for a reference made by a construct whose
// own node sits at canonical index anchor. Resolving to the anchor counts as
// a self-reference in the statistics.
func (im *Importer) ResolveNodeFrom(anchor int, ref api.NodeRef) api.NodeRef {
	if !im.enabled || !ref.IsSet() || ref.State == api.StateResolved {
		return ref
	}
	if ref.State == api.StateUnresolved {
		if im.walking {
			im.numUnresolved++
			im.addMessage(diag.Error, im.keyword, "node %s is marked unresolved in the input", ref.Written())
		}
		return ref
	}
	idx, ok := im.lookup(ref)
	if !ok {
		im.numUnresolved++
		im.addMessage(diag.Error, im.keyword, "%s", describeMiss(ref))
		return ref.AsUnresolved()
	}
	im.totalResolved++
	im.referenced.Add(uint32(idx))
	if anchor != NoAnchor && idx == anchor {
		im.resolvedToSelf++
	}
	return ref.WithIndex(idx)
}

// lookup consults the table matching the reference kind. Numbered, named
// and generated references never match each other's entries.
func (im *Importer) lookup(ref api.NodeRef) (int, bool) {
	switch ref.Kind {
	case api.RefNumbered:
		if ref.Number < 0 || uint64(ref.Number) > math.MaxUint32 {
			return 0, false
		}
		idx, ok := im.numbered[uint32(ref.Number)]
		return idx, ok
	case api.RefNamed:
		idx, ok := im.named[ref.Name]
		return idx, ok
	case api.RefGenerated:
		idx, ok := im.generated[ref.Gen]
		return idx, ok
	case api.RefIndex:
		return ref.Index, ref.Index >= 0 && ref.Index < len(im.entries)
	}
	return 0, false
}

func describeMiss(ref api.NodeRef) string {
	switch ref.Kind {
	case api.RefNumbered:
		return "numbered node " + ref.Written() + " not found"
	case api.RefNamed:
		return "named node " + ref.Written() + " not found"
	case api.RefGenerated:
		return "generated node " + ref.Written() + " not found"
	}
	return "node " + ref.Written() + " not found"
}

// ResolveNodeRanges resolves both endpoints of every range in place. A range
// with a missing or unresolvable endpoint is marked Invalid; one error is
// recorded per bad endpoint.
func (im *Importer) ResolveNodeRanges(ranges []api.NodeRange) {
	im.resolveRangesFrom(NoAnchor, ranges)
}

func (im *Importer) resolveRangesFrom(anchor int, ranges []api.NodeRange) {
	if !im.enabled {
		return
	}
	for i := range ranges {
		r := &ranges[i]
		r.Start = im.resolveEndpoint(anchor, i, "start", r.Start)
		r.End = im.resolveEndpoint(anchor, i, "end", r.End)
		r.Invalid = !r.Start.IsResolved() || !r.End.IsResolved()
	}
}

func (im *Importer) resolveEndpoint(anchor, i int, which string, ref api.NodeRef) api.NodeRef {
	if !ref.IsSet() {
		im.addMessage(diag.Error, im.keyword, "node range %d has no %s node", i, which)
		return ref
	}
	return im.ResolveNodeFrom(anchor, ref)
}

// resolveConstruct resolves the references of one construct in place. The
// first reference anchors the rest for self-reference accounting.
func (im *Importer) resolveConstruct(refs ...*api.NodeRef) {
	anchor := NoAnchor
	for i, r := range refs {
		*r = im.ResolveNodeFrom(anchor, *r)
		if i == 0 {
			anchor = r.CanonicalIndex()
		}
	}
}

func (im *Importer) resolveList(anchor int, refs []api.NodeRef) {
	for i := range refs {
		refs[i] = im.ResolveNodeFrom(anchor, refs[i])
	}
}
