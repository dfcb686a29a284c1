package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/ideas-net-studio/shared-memory/internal/model"
	"github.com/ideas-net-studio/shared-memory/internal/token"
)

// IndexDir is the reserved location under the store root holding the
// persisted search index, kept apart from the per-type memory directories.
const IndexDir = ".index"

const indexFile = "search.db"

// SearchIndex maintains a term -> memory id posting list in SQLite. It is
// a recall structure, not a source of truth: the entity store always wins
// on disagreement, and Rebuild recovers the index from it at any time.
type SearchIndex struct {
	db   *sql.DB
	path string
}

// OpenIndex opens or creates the index database under root.
func OpenIndex(root string) (*SearchIndex, error) {
	dir := filepath.Join(root, IndexDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create index dir: %v", ErrIO, err)
	}
	path := filepath.Join(dir, indexFile)
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("%w: open index db: %v", ErrIO, err)
	}
	ix := &SearchIndex{db: db, path: path}
	if err := ix.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate index: %v", ErrIO, err)
	}
	return ix, nil
}

func (ix *SearchIndex) migrate() error {
	_, err := ix.db.Exec(`
	CREATE TABLE IF NOT EXISTS postings (
		term      TEXT NOT NULL,
		memory_id TEXT NOT NULL,
		PRIMARY KEY (term, memory_id)
	) WITHOUT ROWID;
	CREATE INDEX IF NOT EXISTS idx_postings_memory ON postings(memory_id);
	`)
	return err
}

// Close closes the underlying database.
func (ix *SearchIndex) Close() error {
	return ix.db.Close()
}

// SizeBytes returns the index file size on disk.
func (ix *SearchIndex) SizeBytes() int64 {
	if info, err := os.Stat(ix.path); err == nil {
		return info.Size()
	}
	return 0
}

// terms derives the full term set for a memory: title, content, and each
// tag, deduplicated across fields.
func terms(m *model.Memory) []string {
	fields := []string{m.Title, m.Content}
	fields = append(fields, m.Tags...)
	return token.FromFields(fields...)
}

// Add inserts the memory's id into the posting list of every term derived
// from it.
func (ix *SearchIndex) Add(ctx context.Context, m *model.Memory) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: index add: %v", ErrIO, err)
	}
	defer tx.Rollback()
	if err := addPostings(ctx, tx, m); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: index add: %v", ErrIO, err)
	}
	return nil
}

// Update replaces every posting for the memory with ones derived from its
// current field values. Remove-then-add in one transaction, so an edit
// never leaks stale postings.
func (ix *SearchIndex) Update(ctx context.Context, m *model.Memory) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: index update: %v", ErrIO, err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM postings WHERE memory_id = ?`, m.ID); err != nil {
		return fmt.Errorf("%w: index update: %v", ErrIO, err)
	}
	if err := addPostings(ctx, tx, m); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: index update: %v", ErrIO, err)
	}
	return nil
}

// Remove drops the id from every posting list it appears in.
func (ix *SearchIndex) Remove(ctx context.Context, id string) error {
	if _, err := ix.db.ExecContext(ctx, `DELETE FROM postings WHERE memory_id = ?`, id); err != nil {
		return fmt.Errorf("%w: index remove: %v", ErrIO, err)
	}
	return nil
}

// Lookup returns the posting list for one term.
func (ix *SearchIndex) Lookup(ctx context.Context, term string) ([]string, error) {
	rows, err := ix.db.QueryContext(ctx, `SELECT memory_id FROM postings WHERE term = ?`, term)
	if err != nil {
		return nil, fmt.Errorf("%w: index lookup: %v", ErrIO, err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: index lookup: %v", ErrIO, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: index lookup: %v", ErrIO, err)
	}
	return ids, nil
}

// LookupPrefix returns the union of posting lists for every term the
// given token prefixes. Query-side matching is by prefix so "oauth"
// finds records indexed under "oauth2". Tokens are alphanumeric, so the
// LIKE pattern needs no escaping.
func (ix *SearchIndex) LookupPrefix(ctx context.Context, tok string) ([]string, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT DISTINCT memory_id FROM postings WHERE term LIKE ?`, tok+"%")
	if err != nil {
		return nil, fmt.Errorf("%w: index lookup: %v", ErrIO, err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: index lookup: %v", ErrIO, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: index lookup: %v", ErrIO, err)
	}
	return ids, nil
}

// Rebuild discards the entire index and reprocesses the given records.
// Safe to call at any time; the result is equivalent to what incremental
// updates would have produced from the same store contents.
func (ix *SearchIndex) Rebuild(ctx context.Context, memories []*model.Memory) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: index rebuild: %v", ErrIO, err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM postings`); err != nil {
		return fmt.Errorf("%w: index rebuild: %v", ErrIO, err)
	}
	for _, m := range memories {
		if err := addPostings(ctx, tx, m); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: index rebuild: %v", ErrIO, err)
	}
	return nil
}

func addPostings(ctx context.Context, tx *sql.Tx, m *model.Memory) error {
	for _, t := range terms(m) {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO postings (term, memory_id) VALUES (?, ?)`, t, m.ID); err != nil {
			return fmt.Errorf("%w: index posting %q: %v", ErrIO, t, err)
		}
	}
	return nil
}
