// Package history persists completed dictations in a local SQLite database.
// The store keeps a bounded number of entries; the oldest are pruned on
// every append.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"maestro/internal/domain"
)

// MaxEntries bounds the number of retained dictations.
const MaxEntries = 100

// SQLiteStore implements ports.HistoryStore using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
	limit   int
}

// NewSQLiteStore opens or creates the database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		limit:   MaxEntries,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS dictations (
		id            TEXT PRIMARY KEY,
		text          TEXT NOT NULL,
		original_text TEXT,
		mode_id       TEXT,
		provider      TEXT NOT NULL,
		model         TEXT,
		language      TEXT,
		created_at    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_dictations_created ON dictations(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Append(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	entry.ID = s.newID()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dictations (id, text, original_text, mode_id, provider, model, language, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Text, nullable(entry.OriginalText), nullable(entry.ModeID),
		entry.Provider, nullable(entry.Model), nullable(entry.Language),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("insert dictation: %w", err)
	}

	// ULIDs sort by creation time, so the id is the tie-breaker.
	_, err = s.db.ExecContext(ctx, `
		DELETE FROM dictations WHERE id NOT IN (
			SELECT id FROM dictations ORDER BY created_at DESC, id DESC LIMIT ?
		)`, s.limit)
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("prune dictations: %w", err)
	}

	return entry, nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, original_text, mode_id, provider, model, language, created_at
		FROM dictations ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list dictations: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		var original, modeID, model, language sql.NullString
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.Text, &original, &modeID, &entry.Provider, &model, &language, &createdAt); err != nil {
			return nil, fmt.Errorf("scan dictation: %w", err)
		}
		entry.OriginalText = original.String
		entry.ModeID = modeID.String
		entry.Model = model.String
		entry.Language = language.String
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			entry.CreatedAt = ts
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM dictations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete dictation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("dictation %q not found", id)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM dictations`); err != nil {
		return fmt.Errorf("clear dictations: %w", err)
	}
	return nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
