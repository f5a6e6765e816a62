package ingest

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/agentic-research/rigseq/api"
	"github.com/agentic-research/rigseq/internal/diag"
	"github.com/agentic-research/rigseq/internal/importer"
	"github.com/agentic-research/rigseq/internal/logging"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS nodes (
	idx INTEGER PRIMARY KEY,
	keyword TEXT NOT NULL,
	origin TEXT NOT NULL,
	source TEXT NOT NULL,
	construct INTEGER,
	sub_index INTEGER NOT NULL DEFAULT 0,
	detail TEXT
);

CREATE TABLE IF NOT EXISTS messages (
	seq INTEGER PRIMARY KEY,
	severity TEXT NOT NULL,
	keyword TEXT,
	module TEXT,
	text TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS stats (
	key TEXT PRIMARY KEY,
	value INTEGER NOT NULL
) WITHOUT ROWID;
`

// SQLiteWriter streams a canonical node table and its diagnostics into a
// SQLite database. Inserts are batched in transactions.
type SQLiteWriter struct {
	db        *sql.DB
	tx        *sql.Tx
	stmtNode  *sql.Stmt
	stmtMsg   *sql.Stmt
	batchSize int
	count     int
	seq       int
	mu        sync.Mutex
	logger    zerolog.Logger
}

// NewSQLiteWriter opens dbPath and creates the schema. Rows from an earlier
// export are deleted in the first transaction, so the database only ever
// holds one table.
func NewSQLiteWriter(dbPath string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Bulk insert tuning
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	w := &SQLiteWriter{
		db:        db,
		batchSize: 10000,
		logger:    logging.GetLogger("sqlite"),
	}
	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	for _, table := range []string{"nodes", "messages", "stats"} {
		if _, err := w.tx.Exec("DELETE FROM " + table); err != nil {
			_ = w.tx.Rollback()
			_ = db.Close()
			return nil, fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return w, nil
}

func (w *SQLiteWriter) beginTx() error {
	var err error
	w.tx, err = w.db.Begin()
	if err != nil {
		return err
	}
	w.stmtNode, err = w.tx.Prepare(`
		INSERT OR REPLACE INTO nodes (idx, keyword, origin, source, construct, sub_index, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	w.stmtMsg, err = w.tx.Prepare(`
		INSERT OR REPLACE INTO messages (seq, severity, keyword, module, text)
		VALUES (?, ?, ?, ?, ?)
	`)
	return err
}

func (w *SQLiteWriter) commitTx() error {
	if w.stmtNode != nil {
		_ = w.stmtNode.Close()
	}
	if w.stmtMsg != nil {
		_ = w.stmtMsg.Close()
	}
	return w.tx.Commit()
}

// step counts one insert and rolls the transaction over at batchSize.
func (w *SQLiteWriter) step() {
	w.count++
	if w.count < w.batchSize {
		return
	}
	if err := w.commitTx(); err != nil {
		w.logger.Error().Err(err).Msg("SQLiteWriter: commit failed")
	}
	if err := w.beginTx(); err != nil {
		w.logger.Error().Err(err).Msg("SQLiteWriter: begin failed")
	}
	w.count = 0
}

// AddNode writes one canonical node.
func (w *SQLiteWriter) AddNode(e importer.NodeEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var construct *int
	if c, ok := e.Construct(); ok {
		construct = &c
	}
	var detail *string
	if d := e.Detail(); d != api.DetailNone {
		s := string(d)
		detail = &s
	}

	_, err := w.stmtNode.Exec(
		e.Index,
		string(e.Keyword()),
		e.OriginKind(),
		e.SourceID(),
		construct,
		e.SubIndex(),
		detail,
	)
	if err != nil {
		return fmt.Errorf("insert node %d: %w", e.Index, err)
	}
	w.step()
	return nil
}

// AddMessage appends one diagnostic. Messages are numbered in call order.
func (w *SQLiteWriter) AddMessage(m diag.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var module *string
	if m.Module != "" {
		module = &m.Module
	}
	_, err := w.stmtMsg.Exec(w.seq, m.Severity.String(), string(m.Keyword), module, m.Text)
	if err != nil {
		return fmt.Errorf("insert message %d: %w", w.seq, err)
	}
	w.seq++
	w.step()
	return nil
}

// SetStats records the pass statistics.
func (w *SQLiteWriter) SetStats(s importer.Stats) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, p := range s.Pairs() {
		if _, err := w.tx.Exec(`INSERT OR REPLACE INTO stats (key, value) VALUES (?, ?)`, p.Key, p.Value); err != nil {
			return fmt.Errorf("insert stat %s: %w", p.Key, err)
		}
	}
	return nil
}

func (w *SQLiteWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.commitTx(); err != nil {
		_ = w.db.Close()
		return err
	}

	if _, err := w.db.Exec(`CREATE INDEX IF NOT EXISTS idx_nodes_keyword ON nodes(keyword, construct)`); err != nil {
		w.logger.Warn().Err(err).Msg("SQLiteWriter: index creation failed")
	}
	return w.db.Close()
}

// ExportSQLite writes the node table, messages and statistics of a
// finished pass to dbPath.
func ExportSQLite(dbPath string, im *importer.Importer) error {
	w, err := NewSQLiteWriter(dbPath)
	if err != nil {
		return err
	}
	for _, e := range im.Nodes() {
		if err := w.AddNode(e); err != nil {
			_ = w.Close()
			return err
		}
	}
	for _, m := range im.Messages() {
		if err := w.AddMessage(m); err != nil {
			_ = w.Close()
			return err
		}
	}
	if err := w.SetStats(im.Stats()); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
