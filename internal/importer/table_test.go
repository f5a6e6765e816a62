package importer

import (
	"testing"

	"github.com/agentic-research/rigseq/api"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnabled(t *testing.T) *Importer {
	t.Helper()
	im := New(WithLogger(zerolog.Nop()))
	im.Init(true)
	return im
}

func TestNew_StartsDisabled(t *testing.T) {
	im := New(WithLogger(zerolog.Nop()))
	assert.False(t, im.IsEnabled())
	assert.False(t, im.AddNumberedNode(1))
	assert.Zero(t, im.NumNodes())
	assert.Zero(t, im.NumErrors())
}

func TestRegister_NumberedThenNamed(t *testing.T) {
	im := newEnabled(t)
	for id := uint32(0); id < 3; id++ {
		require.True(t, im.AddNumberedNode(id))
	}
	require.True(t, im.AddNamedNode("axle_l"))

	ref := im.ResolveNode(api.Named("axle_l"))
	assert.True(t, ref.IsResolved())
	assert.Equal(t, 3, ref.CanonicalIndex())
	assert.Equal(t, "axle_l", ref.Name, "written form is kept")
	assert.Zero(t, im.NumErrors())
}

func TestGenerateNodesForWheel_TwoNodesPerRay(t *testing.T) {
	im := newEnabled(t)
	for id := uint32(0); id < 5; id++ {
		im.AddNumberedNode(id)
	}
	base := im.NumNodes()

	im.GenerateNodesForWheel(api.KeywordWheels, 4, false)
	require.Equal(t, base+8, im.NumNodes())

	offset, ok := im.NodeArrayOffset(api.KeywordWheels)
	require.True(t, ok)
	assert.Equal(t, base, offset)

	tyreA := im.ResolveNode(api.Generated(api.KeywordWheels, 0, 3, api.DetailTyreA))
	tyreB := im.ResolveNode(api.Generated(api.KeywordWheels, 0, 3, api.DetailTyreB))
	assert.Equal(t, base+2*3, tyreA.CanonicalIndex())
	assert.Equal(t, base+2*3+1, tyreB.CanonicalIndex())

	entry, ok := im.Entry(tyreB.CanonicalIndex())
	require.True(t, ok)
	assert.Equal(t, api.KeywordWheels, entry.Keyword())
	assert.Equal(t, 3, entry.SubIndex())
	assert.Equal(t, api.DetailTyreB, entry.Detail())

	rim := im.ResolveNode(api.Generated(api.KeywordWheels, 0, 3, api.DetailRimA))
	assert.True(t, rim.IsUnresolved(), "wheels have no rim nodes")
	assert.Equal(t, 1, im.NumErrors())
}

func TestGenerateNodesForWheel_RimFamilies(t *testing.T) {
	im := newEnabled(t)

	im.GenerateNodesForWheel(api.KeywordWheels2, 3, true)
	assert.Equal(t, 3*4+1, im.NumNodes())

	last, ok := im.Entry(im.NumNodes() - 1)
	require.True(t, ok)
	assert.Equal(t, api.DetailRigidity, last.Detail())
	assert.Equal(t, 3, last.SubIndex())

	first, _ := im.Entry(0)
	assert.Equal(t, api.DetailRimA, first.Detail())

	// Tyre-only families ignore the rigidity flag.
	im.GenerateNodesForWheel(api.KeywordMeshWheels, 2, true)
	assert.Equal(t, 4, im.NodeCount(api.KeywordMeshWheels))

	assert.Equal(t, 4, NodesPerRay(api.KeywordFlexBodyWheels))
	assert.Equal(t, 2, NodesPerRay(api.KeywordMeshWheels2))
	assert.Zero(t, NodesPerRay(api.KeywordBeams))
}

func TestGenerateNodesForWheel_Rejections(t *testing.T) {
	im := newEnabled(t)

	im.GenerateNodesForWheel(api.KeywordWheels, 0, false)
	assert.Zero(t, im.NumNodes())
	assert.Equal(t, 1, im.NumErrors())
	assert.Zero(t, im.NumFatal())

	// The rejected wheel still takes construct 0.
	im.GenerateNodesForWheel(api.KeywordWheels, 1, false)
	ref := im.ResolveNode(api.Generated(api.KeywordWheels, 1, 0, api.DetailTyreA))
	assert.Equal(t, 0, ref.CanonicalIndex())

	im.GenerateNodesForWheel(api.KeywordBeams, 4, false)
	assert.Equal(t, 1, im.NumFatal())
	assert.Equal(t, 2, im.NumNodes())
}

func TestAddGeneratedNode(t *testing.T) {
	im := newEnabled(t)
	im.AddNumberedNode(1)
	im.AddGeneratedNode(api.KeywordCinecam, api.DetailNone)
	im.AddGeneratedNode(api.KeywordCinecam, api.DetailNone)

	second := im.ResolveNode(api.Generated(api.KeywordCinecam, 1, 0, api.DetailNone))
	assert.Equal(t, 2, second.CanonicalIndex())

	im.AddGeneratedNode(api.KeywordWheels, api.DetailTyreA)
	assert.Equal(t, 1, im.NumFatal())
	assert.Equal(t, 3, im.NumNodes())
}

func TestRegister_DuplicateKeepsFirst(t *testing.T) {
	im := newEnabled(t)
	require.True(t, im.AddNumberedNode(7))
	require.True(t, im.AddNumberedNode(8))
	assert.False(t, im.AddNumberedNode(7))

	assert.Equal(t, 1, im.NumWarnings())
	assert.Zero(t, im.NumErrors())
	assert.Equal(t, 2, im.NumNodes())
	assert.Equal(t, 0, im.ResolveNode(api.Num(7)).CanonicalIndex())

	count := 0
	for _, e := range im.Nodes() {
		if o, ok := e.Origin.(NumberedOrigin); ok && o.ID == 7 {
			count++
		}
	}
	assert.Equal(t, 1, count)

	require.True(t, im.AddNamedNode("hub"))
	assert.False(t, im.AddNamedNode("hub"))
	assert.Equal(t, 2, im.NumWarnings())

	assert.False(t, im.AddNamedNode(""))
	assert.Equal(t, 1, im.NumErrors())
}

func TestRegister_OutOfCanonicalOrderIsFatal(t *testing.T) {
	im := newEnabled(t)
	im.AddNamedNode("a")
	assert.False(t, im.AddNumberedNode(1))

	assert.Equal(t, 1, im.NumFatal())
	assert.Equal(t, 1, im.NumErrors(), "fatal counts as an error")
	assert.Equal(t, 1, im.NumNodes())

	// Same category after a rejection is still accepted.
	assert.True(t, im.AddNamedNode("b"))
}

func TestRegister_DisjointNamespaces(t *testing.T) {
	im := newEnabled(t)
	require.True(t, im.AddNumberedNode(5))
	require.True(t, im.AddNamedNode("5"))

	byNumber := im.ResolveNode(api.Num(5))
	byName := im.ResolveNode(api.Named("5"))
	assert.Equal(t, 0, byNumber.CanonicalIndex())
	assert.Equal(t, 1, byName.CanonicalIndex())
}

func TestRegister_AppendOnlyAndOffsetAdditivity(t *testing.T) {
	im := newEnabled(t)
	steps := []func(){
		func() { im.AddNumberedNode(3) },
		func() { im.AddNumberedNode(1) },
		func() { im.AddNamedNode("left") },
		func() { im.AddGeneratedNode(api.KeywordCinecam, api.DetailNone) },
		func() { im.GenerateNodesForWheel(api.KeywordWheels2, 2, true) },
		func() { im.GenerateNodesForWheel(api.KeywordMeshWheels2, 3, false) },
		func() { im.GenerateNodesForWheel(api.KeywordFlexBodyWheels, 1, false) },
	}

	var prev []NodeEntry
	for _, step := range steps {
		step()
		cur := im.Nodes()
		require.GreaterOrEqual(t, len(cur), len(prev))
		assert.Equal(t, prev, cur[:len(prev)], "registered entries never move")
		prev = cur

		sum := 0
		for _, kw := range CanonicalOrder() {
			offset, ok := im.NodeArrayOffset(kw)
			require.True(t, ok)
			assert.Equal(t, sum, offset, "offset of %s", kw)
			sum += im.NodeCount(kw)
		}
		assert.Equal(t, im.NumNodes(), sum)
	}

	_, ok := im.NodeArrayOffset(api.KeywordBeams)
	assert.False(t, ok)
}

func TestDisable_MidPass(t *testing.T) {
	im := newEnabled(t)
	im.AddNumberedNode(0)
	im.AddNumberedNode(1)

	im.Disable()
	im.Disable()
	assert.False(t, im.IsEnabled())
	assert.Zero(t, im.NumNodes())

	assert.False(t, im.AddNumberedNode(2))
	im.GenerateNodesForWheel(api.KeywordWheels, 3, false)
	assert.Zero(t, im.NumNodes())

	raw := api.Num(1)
	assert.Equal(t, raw, im.ResolveNode(raw))
	assert.Zero(t, im.NumErrors())
}

func TestInit_StartsFreshPass(t *testing.T) {
	im := newEnabled(t)
	im.AddNumberedNode(0)
	im.ResolveNode(api.Num(4))
	require.Equal(t, 1, im.NumErrors())

	im.Init(true)
	assert.Zero(t, im.NumNodes())
	assert.Zero(t, im.NumErrors())
	assert.Empty(t, im.Messages())
	assert.True(t, im.AddNumberedNode(0))
}
