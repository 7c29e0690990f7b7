package statestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"github.com/CWuestefeld/plex-rating-utils/internal/catalog"
	"github.com/CWuestefeld/plex-rating-utils/internal/ownership"
)

// ErrLocked indicates another runner instance holds the state lock.
var ErrLocked = errors.New("state store is locked by another process")

// Store manages shadow-state persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// LibraryRef identifies one library row in the store. Stamp is the
// identity recorded at first sight; callers compare it against the
// live library before trusting the rest of the state.
type LibraryRef struct {
	ID    int64
	Name  string
	Stamp string
}

// Checkpoint is one phase's resume cursor.
type Checkpoint struct {
	Phase     string
	LastKey   string
	Stamp     string
	UpdatedAt time.Time
}

// Open initializes or connects to the state database in dir and takes
// the single-instance lock. ErrLocked is returned when another process
// already holds it.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure state directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, "ratings.lock"))
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire state lock: %w", err)
	}
	if !acquired {
		return nil, ErrLocked
	}

	dbPath := filepath.Join(dir, "ratings.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close releases the database and the instance lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// EnsureLibrary returns the library row for name, creating it with the
// given stamp on first sight. The caller compares the returned Stamp
// against the live library's stamp to detect identity drift.
func (s *Store) EnsureLibrary(ctx context.Context, name, stamp string) (LibraryRef, error) {
	var ref LibraryRef
	err := s.db.QueryRowContext(ctx,
		"SELECT library_id, name, stamp FROM libraries WHERE name = ?", name,
	).Scan(&ref.ID, &ref.Name, &ref.Stamp)
	if err == nil {
		return ref, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return LibraryRef{}, fmt.Errorf("look up library: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO libraries (name, stamp) VALUES (?, ?)", name, stamp)
	if err != nil {
		return LibraryRef{}, fmt.Errorf("insert library: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return LibraryRef{}, fmt.Errorf("last insert id: %w", err)
	}
	return LibraryRef{ID: id, Name: name, Stamp: stamp}, nil
}

// UpdateLibraryStamp rebinds a library row to a new identity stamp.
// Used after the operator explicitly confirms a stamp mismatch.
func (s *Store) UpdateLibraryStamp(ctx context.Context, libraryID int64, stamp string) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE libraries SET stamp = ? WHERE library_id = ?", stamp, libraryID); err != nil {
		return fmt.Errorf("update library stamp: %w", err)
	}
	return nil
}

// LoadRecords reads the full ownership map for one library.
func (s *Store) LoadRecords(ctx context.Context, libraryID int64) (map[string]*ownership.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT item_id, kind, inferred, classification, COALESCE(twin_group, '') FROM ratings WHERE library_id = ?",
		libraryID)
	if err != nil {
		return nil, fmt.Errorf("load ownership records: %w", err)
	}
	defer rows.Close()

	records := make(map[string]*ownership.Record)
	for rows.Next() {
		rec := &ownership.Record{}
		var kind string
		if err := rows.Scan(&rec.ItemID, &kind, &rec.Inferred, &rec.Class, &rec.TwinGroup); err != nil {
			return nil, fmt.Errorf("scan ownership record: %w", err)
		}
		rec.Kind = catalog.Kind(kind)
		records[rec.ItemID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ownership records: %w", err)
	}
	return records, nil
}

// PutRecord upserts one ownership row.
func (s *Store) PutRecord(ctx context.Context, libraryID int64, rec *ownership.Record) error {
	if rec == nil || rec.ItemID == "" {
		return errors.New("put record: missing item id")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ratings (library_id, item_id, kind, inferred, classification, twin_group, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(library_id, item_id) DO UPDATE SET
             kind = excluded.kind,
             inferred = excluded.inferred,
             classification = excluded.classification,
             twin_group = excluded.twin_group,
             updated_at = excluded.updated_at`,
		libraryID, rec.ItemID, string(rec.Kind), rec.Inferred, string(rec.Class),
		nullableString(rec.TwinGroup), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert ownership record: %w", err)
	}
	return nil
}

// DeleteRecord resets an item to never-touched by removing its row.
func (s *Store) DeleteRecord(ctx context.Context, libraryID int64, itemID string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM ratings WHERE library_id = ? AND item_id = ?", libraryID, itemID); err != nil {
		return fmt.Errorf("delete ownership record: %w", err)
	}
	return nil
}

// CountByClass returns per-classification row counts for one library.
func (s *Store) CountByClass(ctx context.Context, libraryID int64) (map[ownership.Class]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT classification, COUNT(*) FROM ratings WHERE library_id = ? GROUP BY classification",
		libraryID)
	if err != nil {
		return nil, fmt.Errorf("count by classification: %w", err)
	}
	defer rows.Close()

	counts := make(map[ownership.Class]int)
	for rows.Next() {
		var class string
		var n int
		if err := rows.Scan(&class, &n); err != nil {
			return nil, fmt.Errorf("scan classification count: %w", err)
		}
		counts[ownership.Class(class)] = n
	}
	return counts, rows.Err()
}

// CountTwinLinked returns how many items carry a twin-group tag.
func (s *Store) CountTwinLinked(ctx context.Context, libraryID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ratings WHERE library_id = ? AND twin_group IS NOT NULL AND twin_group != ''",
		libraryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count twin-linked: %w", err)
	}
	return n, nil
}

// LoadCheckpoint returns the resume cursor for a phase, or nil when the
// phase has no checkpoint (not started, or completed).
func (s *Store) LoadCheckpoint(ctx context.Context, libraryID int64, phase string) (*Checkpoint, error) {
	cp := &Checkpoint{Phase: phase}
	var updated string
	err := s.db.QueryRowContext(ctx,
		"SELECT last_key, stamp, updated_at FROM checkpoints WHERE library_id = ? AND phase = ?",
		libraryID, phase).Scan(&cp.LastKey, &cp.Stamp, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	if ts, parseErr := time.Parse(time.RFC3339Nano, updated); parseErr == nil {
		cp.UpdatedAt = ts
	}
	return cp, nil
}

// SaveCheckpoint advances the resume cursor for a phase.
func (s *Store) SaveCheckpoint(ctx context.Context, libraryID int64, phase, lastKey, stamp string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checkpoints (library_id, phase, last_key, stamp, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(library_id, phase) DO UPDATE SET
             last_key = excluded.last_key,
             stamp = excluded.stamp,
             updated_at = excluded.updated_at`,
		libraryID, phase, lastKey, stamp, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// ClearCheckpoint removes a phase's cursor after completion.
func (s *Store) ClearCheckpoint(ctx context.Context, libraryID int64, phase string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM checkpoints WHERE library_id = ? AND phase = ?", libraryID, phase); err != nil {
		return fmt.Errorf("clear checkpoint: %w", err)
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
