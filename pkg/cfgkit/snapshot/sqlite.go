package snapshot

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists snapshots to SQLite.
// It is suitable for single-process use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens or creates a snapshot database.
// The path should be a file path (e.g., "./snapshots.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Every ":memory:" connection is its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			name TEXT NOT NULL,
			label TEXT NOT NULL,
			id TEXT NOT NULL,
			version INTEGER NOT NULL,
			loads INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			tree BLOB NOT NULL,
			PRIMARY KEY (name, label)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_snapshots_name_sequence
		ON snapshots(name, sequence)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(snap *Snapshot) error {
	if err := snap.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO snapshots (name, label, id, version, loads, created_at, sequence, tree)
		VALUES (
			?, ?, ?, ?, ?, ?,
			COALESCE((SELECT MAX(sequence) FROM snapshots WHERE name = ?), 0) + 1,
			?
		)
		ON CONFLICT(name, label) DO UPDATE SET
			id = excluded.id,
			version = excluded.version,
			loads = excluded.loads,
			created_at = excluded.created_at,
			sequence = (SELECT MAX(sequence) FROM snapshots WHERE name = excluded.name) + 1,
			tree = excluded.tree
	`, snap.Name, snap.Label, snap.ID, snap.Version, snap.Loads,
		snap.Timestamp.UTC().Format(time.RFC3339Nano), snap.Name, []byte(snap.Tree))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(name, label string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	snap := &Snapshot{Name: name, Label: label}
	var created string
	var tree []byte
	err := s.db.QueryRow(`
		SELECT id, version, loads, created_at, tree FROM snapshots
		WHERE name = ? AND label = ?
	`, name, label).Scan(&snap.ID, &snap.Version, &snap.Loads, &created, &tree)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if snap.Timestamp, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("load snapshot: parse created_at: %w", err)
	}
	snap.Tree = tree
	return snap, nil
}

// List implements Store.
func (s *SQLiteStore) List(name string) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT label, id, version, loads, sequence, created_at, LENGTH(tree)
		FROM snapshots
		WHERE name = ?
		ORDER BY sequence
	`, name)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	infos := []Info{}
	for rows.Next() {
		info := Info{Name: name}
		var created string
		if err := rows.Scan(&info.Label, &info.ID, &info.Version, &info.Loads,
			&info.Sequence, &created, &info.Size); err != nil {
			return nil, fmt.Errorf("scan snapshot info: %w", err)
		}
		info.Timestamp, _ = time.Parse(time.RFC3339Nano, created)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return infos, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(name, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`
		DELETE FROM snapshots
		WHERE name = ? AND label = ?
	`, name, label); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
