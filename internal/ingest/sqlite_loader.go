package ingest

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// NodeRow is one row of an exported nodes table.
type NodeRow struct {
	Index     int
	Keyword   string
	Origin    string
	Source    string
	Construct sql.NullInt64
	SubIndex  int
	Detail    sql.NullString
}

// Record returns the row in the shape NodeRecord produces.
func (r NodeRow) Record() map[string]any {
	rec := map[string]any{
		"index":     int64(r.Index),
		"keyword":   r.Keyword,
		"origin":    r.Origin,
		"source":    r.Source,
		"sub_index": int64(r.SubIndex),
	}
	if r.Construct.Valid {
		rec["construct"] = r.Construct.Int64
	}
	if r.Detail.Valid {
		rec["detail"] = r.Detail.String
	}
	return rec
}

// StreamNodeRows iterates over the nodes table in canonical order, calling
// fn for each row.
func StreamNodeRows(dbPath string, fn func(NodeRow) error) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	rows, err := db.Query("SELECT idx, keyword, origin, source, construct, sub_index, detail FROM nodes ORDER BY idx")
	if err != nil {
		return fmt.Errorf("query nodes: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	for rows.Next() {
		var r NodeRow
		if err := rows.Scan(&r.Index, &r.Keyword, &r.Origin, &r.Source, &r.Construct, &r.SubIndex, &r.Detail); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

// LoadNodeRows reads the whole nodes table.
func LoadNodeRows(dbPath string) ([]NodeRow, error) {
	var out []NodeRow
	err := StreamNodeRows(dbPath, func(r NodeRow) error {
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadNodeRecords reads the nodes table as generic records for queries.
func LoadNodeRecords(dbPath string) ([]any, error) {
	var out []any
	err := StreamNodeRows(dbPath, func(r NodeRow) error {
		out = append(out, r.Record())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MessageRow is one row of an exported messages table.
type MessageRow struct {
	Seq      int
	Severity string
	Keyword  string
	Module   sql.NullString
	Text     string
}

// LoadMessageRows reads the messages table in emission order.
func LoadMessageRows(dbPath string) ([]MessageRow, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	rows, err := db.Query("SELECT seq, severity, keyword, module, text FROM messages ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var out []MessageRow
	for rows.Next() {
		var m MessageRow
		if err := rows.Scan(&m.Seq, &m.Severity, &m.Keyword, &m.Module, &m.Text); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// LoadStats reads the stats table.
func LoadStats(dbPath string) (map[string]int, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	rows, err := db.Query("SELECT key, value FROM stats")
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	out := make(map[string]int)
	for rows.Next() {
		var k string
		var v int
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
