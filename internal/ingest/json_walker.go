package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/agentic-research/rigseq/api"
	"github.com/agentic-research/rigseq/internal/importer"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// JSONWalker implements Walker with JSONPath selectors.
type JSONWalker struct{}

func NewJSONWalker() *JSONWalker {
	return &JSONWalker{}
}

// Query implements Walker.
func (w *JSONWalker) Query(root any, selector string) ([]Match, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}

	results := x.Get(root)

	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = &jsonMatch{value: r}
	}
	return matches, nil
}

type jsonMatch struct {
	value any
}

// Values implements Match.
func (m *jsonMatch) Values() map[string]any {
	switch v := m.value.(type) {
	case map[string]any:
		return v
	default:
		return map[string]any{"value": v}
	}
}

// Context implements Match.
func (m *jsonMatch) Context() any {
	return m.value
}

// NodeRecord is the generic form of one canonical node, shared by queries
// and the SQLite export. Numbers are int64 so JSONPath filters compare them
// as integers.
func NodeRecord(e importer.NodeEntry) map[string]any {
	rec := map[string]any{
		"index":     int64(e.Index),
		"keyword":   string(e.Keyword()),
		"origin":    e.OriginKind(),
		"source":    e.SourceID(),
		"sub_index": int64(e.SubIndex()),
	}
	if c, ok := e.Construct(); ok {
		rec["construct"] = int64(c)
	}
	if d := e.Detail(); d != api.DetailNone {
		rec["detail"] = string(d)
	}
	return rec
}

// TableRecords converts a canonical table into a list of records.
func TableRecords(entries []importer.NodeEntry) []any {
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = NodeRecord(e)
	}
	return out
}

// DocumentRecords returns doc in its generic JSON form, with references in
// their serialized shape ({"index": n, "source": ...}).
func DocumentRecords(doc *api.Document) (any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	v, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse document json: %w", err)
	}
	return v, nil
}
