package ingest

// Walker runs a selector against a tree of generic values.
type Walker interface {
	// Query executes selector against root and returns the matches in
	// document order.
	Query(root any, selector string) ([]Match, error)
}

// Match is a single result from a query.
type Match interface {
	// Values returns the matched object's fields. A primitive match is
	// returned under the "value" key.
	Values() map[string]any

	// Context returns the matched value itself, usable as the root of a
	// further query.
	Context() any
}
