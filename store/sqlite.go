package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gaurav-prasanna/letterpipe/core"

	_ "modernc.org/sqlite"
)

// SQLite keeps the collection in a local SQLite database. Insertion order
// is kept in the position column; Save rewrites the table in one transaction.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at the given path and runs migrations.
func NewSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS newsletters (
	position     INTEGER NOT NULL,
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL DEFAULT '',
	date         TEXT NOT NULL DEFAULT '',
	summary      TEXT NOT NULL DEFAULT '',
	tags         TEXT NOT NULL DEFAULT '[]',
	content_html TEXT NOT NULL DEFAULT ''
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Load reads every record in insertion order.
func (s *SQLite) Load(ctx context.Context) (*core.Collection, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, title, date, summary, tags, content_html
FROM newsletters
ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query newsletters: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		var (
			r    core.Record
			tags string
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Date, &r.Summary, &tags, &r.ContentHTML); err != nil {
			return nil, fmt.Errorf("scan newsletter: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate newsletters: %w", err)
	}
	return normalize(core.NewCollection(records...)), nil
}

// Save replaces the stored collection with c.
func (s *SQLite) Save(ctx context.Context, c *core.Collection) error {
	c = normalize(c)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM newsletters`); err != nil {
		return fmt.Errorf("clear newsletters: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO newsletters (position, id, title, date, summary, tags, content_html)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range c.Newsletters {
		tags, err := json.Marshal(r.Tags)
		if err != nil {
			return fmt.Errorf("encode tags of %s: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, i, r.ID, r.Title, r.Date, r.Summary, string(tags), r.ContentHTML); err != nil {
			return fmt.Errorf("insert %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
