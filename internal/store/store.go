// Package store persists the normalized corpus in SQLite and serves the
// lexical half of hybrid retrieval.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/dan1sh0/Baseera-AI/internal/corpus"
)

// Store wraps a sql.DB holding the document corpus.
type Store struct {
	*sql.DB
	path string
}

// Open creates or opens the corpus database at the given path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &Store{DB: sqlDB, path: path}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// OpenMemory creates an in-memory corpus database (useful for testing).
func OpenMemory() (*Store, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	s := &Store{DB: sqlDB, path: ":memory:"}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL CHECK(kind IN ('verse','hadith')),
    chapter INTEGER NOT NULL DEFAULT 0,
    verse INTEGER NOT NULL DEFAULT 0,
    collection TEXT NOT NULL DEFAULT '',
    number INTEGER NOT NULL DEFAULT 0,
    source_name TEXT NOT NULL,
    arabic TEXT NOT NULL,
    english TEXT NOT NULL,
    grade TEXT NOT NULL DEFAULT '',
    narrator TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_documents_kind ON documents(kind);

CREATE TABLE IF NOT EXISTS surahs (
    number INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    arabic_name TEXT NOT NULL DEFAULT '',
    revelation_type TEXT NOT NULL DEFAULT '',
    verse_count INTEGER NOT NULL DEFAULT 0
);
`

// ReplaceAll swaps the entire corpus in a single transaction. Readers see
// either the previous corpus or the new one, never a partial mix.
func (s *Store) ReplaceAll(ctx context.Context, docs []corpus.Document) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (id, kind, chapter, verse, collection, number, source_name, arabic, english, grade, narrator)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range docs {
		if _, err := stmt.ExecContext(ctx,
			d.ID, string(d.Kind),
			d.Locator.Chapter, d.Locator.Verse, d.Locator.Collection, d.Locator.Number,
			d.SourceName, d.Arabic, d.English, string(d.Grade), d.Narrator,
		); err != nil {
			return fmt.Errorf("inserting document %s: %w", d.ID, err)
		}
	}

	return tx.Commit()
}

// ReplaceSurahs swaps the chapter metadata table in a single transaction.
func (s *Store) ReplaceSurahs(ctx context.Context, surahs []corpus.Surah) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM surahs`); err != nil {
		return fmt.Errorf("clearing surahs: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO surahs (number, name, arabic_name, revelation_type, verse_count)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, su := range surahs {
		if _, err := stmt.ExecContext(ctx,
			su.Number, su.Name, su.ArabicName, su.RevelationType, su.VerseCount,
		); err != nil {
			return fmt.Errorf("inserting surah %d: %w", su.Number, err)
		}
	}

	return tx.Commit()
}

// Surahs returns all chapter metadata in chapter order.
func (s *Store) Surahs(ctx context.Context) ([]corpus.Surah, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT number, name, arabic_name, revelation_type, verse_count
		FROM surahs ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("listing surahs: %w", err)
	}
	defer rows.Close()

	var surahs []corpus.Surah
	for rows.Next() {
		var su corpus.Surah
		if err := rows.Scan(&su.Number, &su.Name, &su.ArabicName, &su.RevelationType, &su.VerseCount); err != nil {
			return nil, fmt.Errorf("scanning surah: %w", err)
		}
		surahs = append(surahs, su)
	}
	return surahs, rows.Err()
}

// Get returns the document with the given corpus key, or nil if absent.
func (s *Store) Get(ctx context.Context, id string) (*corpus.Document, error) {
	row := s.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting document %s: %w", id, err)
	}
	return &doc, nil
}

// All returns every document in the corpus, ordered by natural locator order.
func (s *Store) All(ctx context.Context) ([]corpus.Document, error) {
	rows, err := s.QueryContext(ctx, selectColumns+` ORDER BY kind DESC, collection, chapter, verse, number`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// SearchText performs a case-insensitive substring match of query against the
// English text, Arabic text and source name of every document.
func (s *Store) SearchText(ctx context.Context, query string) ([]corpus.Document, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := s.QueryContext(ctx, selectColumns+`
		WHERE lower(english) LIKE ?
		   OR lower(arabic) LIKE ?
		   OR lower(source_name) LIKE ?
		ORDER BY kind DESC, collection, chapter, verse, number`,
		pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// Count returns the number of documents in the corpus.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

const selectColumns = `
	SELECT id, kind, chapter, verse, collection, number, source_name, arabic, english, grade, narrator
	FROM documents`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(r rowScanner) (corpus.Document, error) {
	var d corpus.Document
	var kind, grade string
	err := r.Scan(&d.ID, &kind,
		&d.Locator.Chapter, &d.Locator.Verse, &d.Locator.Collection, &d.Locator.Number,
		&d.SourceName, &d.Arabic, &d.English, &grade, &d.Narrator)
	if err != nil {
		return corpus.Document{}, err
	}
	d.Kind = corpus.SourceKind(kind)
	d.Grade = corpus.Grade(grade)
	return d, nil
}

func collectDocuments(rows *sql.Rows) ([]corpus.Document, error) {
	var docs []corpus.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
