package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matheuskafuri/forge/internal/api"
)

// Cache is a local snapshot of notes the backend has returned. It is never
// consulted for live state; it only feeds --cached and list --offline.
type Cache struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	c := &Cache{writeDB: writeDB}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}

	// The schema must exist before a read-only handle can see it.
	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	c.readDB = readDB
	return c, nil
}

func (c *Cache) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS notes (
			id         TEXT PRIMARY KEY,
			original   TEXT NOT NULL,
			title      TEXT NOT NULL,
			category   TEXT NOT NULL,
			markdown   TEXT NOT NULL DEFAULT '',
			links      TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			synced_at  TEXT,
			cached_at  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_notes_created ON notes(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_notes_category ON notes(category);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	var errs []error
	if c.readDB != nil {
		errs = append(errs, c.readDB.Close())
	}
	if c.writeDB != nil {
		errs = append(errs, c.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

func (c *Cache) UpsertNotes(notes []api.ProcessedNote) error {
	if len(notes) == 0 {
		return nil
	}
	tx, err := c.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO notes (id, original, title, category, markdown, links, created_at, synced_at, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			original = excluded.original,
			title = excluded.title,
			category = excluded.category,
			markdown = excluded.markdown,
			links = excluded.links,
			synced_at = excluded.synced_at,
			cached_at = excluded.cached_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, n := range notes {
		links, err := json.Marshal(n.Links)
		if err != nil {
			return fmt.Errorf("encoding links for %s: %w", n.ID, err)
		}
		var synced any
		if n.SyncedAt != nil {
			synced = n.SyncedAt.UTC().Format(time.RFC3339Nano)
		}
		_, err = stmt.Exec(n.ID, n.Original, n.Title, n.Category, n.Markdown, string(links),
			n.CreatedAt.UTC().Format(time.RFC3339Nano), synced, now)
		if err != nil {
			return fmt.Errorf("upserting note %s: %w", n.ID, err)
		}
	}

	return tx.Commit()
}

func (c *Cache) DeleteNote(id string) error {
	_, err := c.writeDB.Exec("DELETE FROM notes WHERE id = ?", id)
	return err
}

func (c *Cache) GetNotes(opts QueryOpts) ([]api.ProcessedNote, error) {
	var (
		where []string
		args  []interface{}
	)

	if opts.Category != "" {
		where = append(where, "category = ?")
		args = append(args, opts.Category)
	}

	if opts.Search != "" {
		where = append(where, "(title LIKE ? OR original LIKE ? OR markdown LIKE ?)")
		term := "%" + opts.Search + "%"
		args = append(args, term, term, term)
	}

	query := "SELECT id, original, title, category, markdown, links, created_at, synced_at FROM notes"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = api.DefaultLimit
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := c.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	var notes []api.ProcessedNote
	for rows.Next() {
		var (
			n       api.ProcessedNote
			links   string
			created string
			synced  sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.Original, &n.Title, &n.Category, &n.Markdown, &links, &created, &synced); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		if err := json.Unmarshal([]byte(links), &n.Links); err != nil {
			return nil, fmt.Errorf("decoding links for %s: %w", n.ID, err)
		}
		if n.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parsing created_at for %s: %w", n.ID, err)
		}
		if synced.Valid {
			t, err := time.Parse(time.RFC3339Nano, synced.String)
			if err == nil {
				n.SyncedAt = &t
			}
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Prune removes notes cached longer ago than olderThan.
func (c *Cache) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).Unix()
	res, err := c.writeDB.Exec("DELETE FROM notes WHERE cached_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning notes: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		c.writeDB.Exec("VACUUM")
	}
	return n, nil
}

func (c *Cache) Stats(dbPath string) (Stats, error) {
	var s Stats
	if err := c.readDB.QueryRow("SELECT COUNT(*) FROM notes").Scan(&s.Notes); err != nil {
		return s, fmt.Errorf("counting notes: %w", err)
	}
	if fi, err := os.Stat(dbPath); err == nil {
		s.Size = fi.Size()
	}
	s.LastSync, _ = c.LastSync()
	return s, nil
}

func (c *Cache) SetLastSync() error {
	_, err := c.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES ('last_sync', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, time.Now().Format(time.RFC3339))
	return err
}

func (c *Cache) LastSync() (time.Time, error) {
	var value string
	if err := c.readDB.QueryRow("SELECT value FROM meta WHERE key = 'last_sync'").Scan(&value); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}
