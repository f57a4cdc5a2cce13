package query

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/ohler55/ojg/oj"

	"github.com/spektr-org/vizgroup/engine"
	"github.com/spektr-org/vizgroup/helpers"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteSearcher keeps objects as JSON documents in a single table and serves
// them as a Searcher.
type SQLiteSearcher struct {
	conn *sql.DB
	log  logr.Logger
}

// OpenSQLite opens or creates an object store. Use ":memory:" for a
// throwaway store.
func OpenSQLite(ctx context.Context, path string, log logr.Logger) (*SQLiteSearcher, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open object store %s", path)
	}
	// an in-memory database lives and dies with its connection
	conn.SetMaxOpenConns(1)

	s := &SQLiteSearcher{conn: conn, log: log}
	if err := s.initializeSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSearcher) initializeSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS objects (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			body TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_objects_type ON objects(type);`
	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to initialize object schema")
	}
	return nil
}

// Close closes the database.
func (s *SQLiteSearcher) Close() error {
	return s.conn.Close()
}

// Insert appends records of an object type.
func (s *SQLiteSearcher) Insert(ctx context.Context, objectType string, records ...engine.Record) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin insert")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO objects (type, body) VALUES (?, ?)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare insert")
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, objectType, engine.Canonical(r)); err != nil {
			return errors.Wrapf(err, "failed to insert %s record %d", objectType, i)
		}
	}
	return errors.Wrap(tx.Commit(), "failed to commit insert")
}

// Search returns the stored objects of a type, in insertion order, filtered
// by a JSONPath query.
func (s *SQLiteSearcher) Search(ctx context.Context, objectType, q string) ([]engine.Record, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT body FROM objects WHERE type = ? ORDER BY id`, objectType)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query %s objects", objectType)
	}
	defer rows.Close()

	var docs []any
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, errors.Wrap(err, "failed to scan object")
		}
		doc, err := oj.ParseString(body)
		if err != nil {
			return nil, errors.Wrapf(err, "corrupt %s object", objectType)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read objects")
	}
	if len(docs) == 0 {
		return []engine.Record{}, nil
	}

	records, err := helpers.ToRecords(docs)
	if err != nil {
		return nil, err
	}
	out, err := Filter(records, q)
	if err != nil {
		return nil, err
	}
	s.log.V(1).Info("sqlite search", "type", objectType, "loaded", len(records), "matched", len(out))
	return out, nil
}
