package api

// Keyword names a truck-file section. It is used as a provenance and
// diagnostics tag; nothing depends on its value beyond equality.
type Keyword string

const (
	KeywordInvalid Keyword = ""

	// Node-defining sections, in canonical order.
	KeywordNodes          Keyword = "nodes"
	KeywordNodes2         Keyword = "nodes2"
	KeywordCinecam        Keyword = "cinecam"
	KeywordWheels         Keyword = "wheels"
	KeywordWheels2        Keyword = "wheels2"
	KeywordMeshWheels     Keyword = "meshwheels"
	KeywordMeshWheels2    Keyword = "meshwheels2"
	KeywordFlexBodyWheels Keyword = "flexbodywheels"

	// Reference-bearing sections.
	KeywordBeams      Keyword = "beams"
	KeywordShocks     Keyword = "shocks"
	KeywordHydros     Keyword = "hydros"
	KeywordCommands2  Keyword = "commands2"
	KeywordRopes      Keyword = "ropes"
	KeywordRopables   Keyword = "ropables"
	KeywordTies       Keyword = "ties"
	KeywordFixes      Keyword = "fixes"
	KeywordHooks      Keyword = "hooks"
	KeywordSlideNodes Keyword = "slidenodes"
	KeywordRailGroups Keyword = "railgroups"
	KeywordContacters Keyword = "contacters"
	KeywordCameras    Keyword = "cameras"
	KeywordAxles      Keyword = "axles"
	KeywordFlexBodies Keyword = "flexbodies"
	KeywordProps      Keyword = "props"
	KeywordTriggers   Keyword = "triggers"
	KeywordSubmesh    Keyword = "submesh"
)

func (k Keyword) String() string {
	if k == KeywordInvalid {
		return "<none>"
	}
	return string(k)
}

// IsWheelFamily reports whether k is one of the wheel sections that generate
// per-ray nodes.
func (k Keyword) IsWheelFamily() bool {
	switch k {
	case KeywordWheels, KeywordWheels2, KeywordMeshWheels, KeywordMeshWheels2, KeywordFlexBodyWheels:
		return true
	}
	return false
}

// Detail disambiguates the nodes a single construct generates.
// DetailNone is the "not applicable" sentinel.
type Detail string

const (
	DetailNone     Detail = ""
	DetailTyreA    Detail = "tyre_a"
	DetailTyreB    Detail = "tyre_b"
	DetailRimA     Detail = "rim_a"
	DetailRimB     Detail = "rim_b"
	DetailRigidity Detail = "rigidity"
)

func (d Detail) String() string {
	if d == DetailNone {
		return "-"
	}
	return string(d)
}
