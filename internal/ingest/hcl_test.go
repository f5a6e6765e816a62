package ingest

import (
	"testing"

	"github.com/agentic-research/rigseq/api"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const pickupHCL = `
name = "pickup"

module "_root_" {
  nodes {
    id       = 0
    position = [0, 0, 0]
  }
  nodes {
    id       = 1
    position = [1, 0, 0]
  }
  nodes {
    id       = 2
    position = [0, 1, 0]
  }
  nodes2 {
    name     = "axle_l"
    position = [0, 0, 1]
  }
  wheels {
    rays  = 4
    node1 = 0
    node2 = "axle_l"
  }
  beams {
    node1 = 0
    node2 = "axle_l"
  }
  beams {
    node1 = 2
    node2 = { generated = "wheels", construct = 0, sub_index = 3, detail = "tyre_a" }
  }
  beams {
    node1 = 1
    node2 = "missing"
  }
  slidenodes {
    node  = 2
    rails = [[0, 1], ["ghost", 1]]
  }
}
`

func TestDecodeHCL_MatchesJSON(t *testing.T) {
	fromHCL, err := Decode([]byte(pickupHCL), FormatHCL, "pickup.hcl")
	require.NoError(t, err)
	fromJSON, err := Decode([]byte(pickupJSON), FormatJSON, "pickup.json")
	require.NoError(t, err)

	// only the HCL fixture names its module, only the JSON one has extensions
	fromHCL.Modules[0].Name = ""
	fromJSON.Modules[0].Extensions = nil
	if diff := cmp.Diff(fromJSON, fromHCL); diff != "" {
		t.Errorf("hcl decodes differently from json (-json +hcl):\n%s", diff)
	}
}

func TestDecodeHCL_AllSections(t *testing.T) {
	src := `
module "trailer" {
  nodes { id = 5 }
  cinecam {
    position = [0, 0, 2]
    nodes    = [5, 5, 5, 5, 5, 5, 5, 5]
  }
  wheels2 {
    rays               = 2
    node1              = 5
    node2              = 5
    rigidity_node      = 5
    reference_arm_node = "arm"
    radius             = 0.5
  }
  ropes {
    root = 5
    end  = "hook"
  }
  ropables {
    node  = 5
    group = 2
  }
  ties {
    root       = 5
    max_length = 3.5
  }
  hooks {
    node       = 5
    lock_nodes = [1, "x"]
  }
  railgroups {
    id     = 1
    ranges = [[1, 2]]
  }
  cameras {
    center = 1
    back   = 2
    left   = 3
  }
  axles {
    wheel1 = [1, 2]
    wheel2 = [3, 4]
  }
  flexbodies {
    reference = 1
    x         = 2
    y         = 3
    mesh      = "body.mesh"
    forset    = [[1, 3]]
  }
  props {
    reference = 1
    x         = 2
    y         = 3
  }
  submesh {
    cab {
      node1 = 1
      node2 = 2
      node3 = { index = 7 }
    }
  }
  fixes      = [1]
  contacters = [{ unresolved = "lost" }]
  guid       = "abc-123"
}
`
	doc, err := Decode([]byte(src), FormatHCL, "trailer.hcl")
	require.NoError(t, err)
	require.Len(t, doc.Modules, 1)
	m := doc.Modules[0]

	assert.Equal(t, "trailer", m.Name)
	assert.Equal(t, api.Vec3{0, 0, 2}, m.Cinecams[0].Position)
	assert.Len(t, m.Cinecams[0].Nodes, 8)
	assert.Equal(t, api.Named("arm"), m.Wheels2[0].ReferenceArmNode)
	assert.Equal(t, 0.5, m.Wheels2[0].Radius)
	assert.Equal(t, api.Named("hook"), m.Ropes[0].End)
	assert.Equal(t, 2, m.Ropables[0].Group)
	assert.Equal(t, 3.5, m.Ties[0].MaxLength)
	assert.Equal(t, []api.NodeRef{api.Num(1), api.Named("x")}, m.Hooks[0].LockNodes)
	assert.Equal(t, []api.NodeRange{api.Range(api.Num(1), api.Num(2))}, m.RailGroups[0].Ranges)
	assert.Equal(t, api.Num(3), m.Cameras[0].Left)
	assert.Equal(t, api.AxleWheel{Node1: api.Num(3), Node2: api.Num(4)}, m.Axles[0].Wheel2)
	assert.Equal(t, "body.mesh", m.FlexBodies[0].Mesh)
	assert.Len(t, m.FlexBodies[0].ForSet, 1)
	assert.Equal(t, api.Num(2), m.Props[0].X)
	assert.Equal(t, api.Index(7), m.Submeshes[0].Cab[0].Node3)
	assert.Equal(t, []api.NodeRef{api.Num(1)}, m.Fixes)
	assert.True(t, m.Contacters[0].IsUnresolved())
	assert.Equal(t, map[string]any{"guid": "abc-123"}, m.Extensions)
}

func TestDecodeHCL_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", "module \"x\" {", "failed to parse hcl"},
		{"missing attribute", "module \"x\" {\n  beams {\n    node1 = 1\n  }\n}\n", "node2"},
		{"bad reference", "module \"x\" {\n  beams {\n    node1 = true\n    node2 = 1\n  }\n}\n", "invalid node reference"},
		{"bad position", "module \"x\" {\n  nodes {\n    id       = 1\n    position = [1, 2]\n  }\n}\n", "position needs 3 components"},
		{"bad axle", "module \"x\" {\n  axles {\n    wheel1 = [1]\n    wheel2 = [1, 2]\n  }\n}\n", "axle wheel needs 2 nodes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.src), FormatHCL, "bad.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCtyToGo(t *testing.T) {
	v, err := ctyToGo(cty.ObjectVal(map[string]cty.Value{
		"n":    cty.NumberIntVal(3),
		"f":    cty.NumberFloatVal(1.5),
		"s":    cty.StringVal("x"),
		"list": cty.TupleVal([]cty.Value{cty.True, cty.NullVal(cty.String)}),
	}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"n":    int64(3),
		"f":    1.5,
		"s":    "x",
		"list": []any{true, nil},
	}, v)

	_, err = ctyToGo(cty.UnknownVal(cty.String))
	assert.Error(t, err)
}
