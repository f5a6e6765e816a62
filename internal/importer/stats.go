package importer

import "github.com/agentic-research/rigseq/api"

// Stats summarizes the node table and the resolution work of a pass.
type Stats struct {
	Numbered       int `json:"numbered" yaml:"numbered"`
	Named          int `json:"named" yaml:"named"`
	Cinecam        int `json:"cinecam" yaml:"cinecam"`
	Wheels         int `json:"wheels" yaml:"wheels"`
	Wheels2        int `json:"wheels2" yaml:"wheels2"`
	MeshWheels     int `json:"meshwheels" yaml:"meshwheels"`
	MeshWheels2    int `json:"meshwheels2" yaml:"meshwheels2"`
	FlexBodyWheels int `json:"flexbodywheels" yaml:"flexbodywheels"`
	Total          int `json:"total" yaml:"total"`

	Resolved       int `json:"resolved" yaml:"resolved"`
	ResolvedToSelf int `json:"resolved_to_self" yaml:"resolved_to_self"`
	Unresolved     int `json:"unresolved" yaml:"unresolved"`
	Unreferenced   int `json:"unreferenced" yaml:"unreferenced"`
}

// Pairs returns the statistics as ordered key/value pairs.
func (s Stats) Pairs() []StatPair {
	return []StatPair{
		{"numbered", s.Numbered},
		{"named", s.Named},
		{"cinecam", s.Cinecam},
		{"wheels", s.Wheels},
		{"wheels2", s.Wheels2},
		{"meshwheels", s.MeshWheels},
		{"meshwheels2", s.MeshWheels2},
		{"flexbodywheels", s.FlexBodyWheels},
		{"total", s.Total},
		{"resolved", s.Resolved},
		{"resolved_to_self", s.ResolvedToSelf},
		{"unresolved", s.Unresolved},
		{"unreferenced", s.Unreferenced},
	}
}

type StatPair struct {
	Key   string
	Value int
}

func (im *Importer) Stats() Stats {
	return Stats{
		Numbered:       im.NodeCount(api.KeywordNodes),
		Named:          im.NodeCount(api.KeywordNodes2),
		Cinecam:        im.NodeCount(api.KeywordCinecam),
		Wheels:         im.NodeCount(api.KeywordWheels),
		Wheels2:        im.NodeCount(api.KeywordWheels2),
		MeshWheels:     im.NodeCount(api.KeywordMeshWheels),
		MeshWheels2:    im.NodeCount(api.KeywordMeshWheels2),
		FlexBodyWheels: im.NodeCount(api.KeywordFlexBodyWheels),
		Total:          len(im.entries),
		Resolved:       im.totalResolved,
		ResolvedToSelf: im.resolvedToSelf,
		Unresolved:     im.numUnresolved,
		Unreferenced:   len(im.entries) - int(im.referenced.GetCardinality()),
	}
}

// LogNodeStatistics writes the statistics at info level.
func (im *Importer) LogNodeStatistics() {
	if !im.enabled {
		return
	}
	ev := im.logger.Info()
	for _, p := range im.Stats().Pairs() {
		ev = ev.Int(p.Key, p.Value)
	}
	ev.Msg("Node statistics")
}

// LogAllNodes dumps the node table at debug level, one line per node.
func (im *Importer) LogAllNodes() {
	if !im.enabled {
		return
	}
	for _, e := range im.entries {
		im.logger.Debug().
			Int("index", e.Index).
			Str("keyword", e.Keyword().String()).
			Str("source", e.SourceID()).
			Int("sub_index", e.SubIndex()).
			Str("detail", e.Detail().String()).
			Msg("Node")
	}
}
