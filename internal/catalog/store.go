package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fhinkel/music-janitor-core/internal/apperr"
)

const currentSchemaVersion = 1

// Store owns every connection to the catalog database; no other component
// may open one. SQLite is configured for a single writer with WAL mode,
// matching the teacher's single-writer pool sizing.
type Store struct {
	db *sql.DB
}

// Open opens or creates a catalog database at path and migrates it to the
// current schema version.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "catalog.Open", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, apperr.Wrap(apperr.KindInternal, "catalog.Open", fmt.Errorf("migration: %w", err))
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Transaction runs fn within a transaction, committing on success and
// rolling back on any error (including a panic re-thrown by fn).
func (s *Store) Transaction(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return apperr.Wrap(apperr.KindDatabaseLocked, "catalog.Transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.KindInternal, "catalog.Transaction", err)
	}
	return nil
}

func (s *Store) migrate() error {
	version, err := s.schemaVersion()
	if err != nil {
		return err
	}
	if version >= currentSchemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if version < 1 {
		if _, err := tx.Exec(schemaV1); err != nil {
			return fmt.Errorf("apply schema v1: %w", err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", 1); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) schemaVersion() (int, error) {
	var exists int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}
	var version int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

// CheckIntegrity runs PRAGMA integrity_check.
func (s *Store) CheckIntegrity() error {
	var result string
	if err := s.db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return apperr.Wrap(apperr.KindInternal, "catalog.CheckIntegrity", err)
	}
	if result != "ok" {
		return apperr.Wrap(apperr.KindInternal, "catalog.CheckIntegrity", fmt.Errorf("integrity check failed: %s", result))
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

// Filters narrows ListPage by optional field contains-matches.
type Filters struct {
	TitleContains  string
	ArtistContains string
	AlbumContains  string
}

// Insert adds a new Track, failing with KindConflict if FilePath already
// exists.
func (s *Store) Insert(ctx context.Context, t *Track) (int64, error) {
	now := time.Now()
	if t.DateAdded.IsZero() {
		t.DateAdded = now
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tracks (
			file_path, title, artist, album, genre, track_number, year,
			duration_seconds, file_size_bytes, bit_rate, sample_rate, file_type,
			last_modified, date_added, fingerprint, fingerprint_duration
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.FilePath, t.Title, t.Artist, t.Album, t.Genre, t.TrackNumber, t.Year,
		t.DurationSeconds, t.FileSizeBytes, t.BitRate, t.SampleRate, t.FileType,
		t.LastModified, t.DateAdded, t.Fingerprint, t.FingerprintDuration,
	)
	if isUniqueViolation(err) {
		return 0, apperr.Conflict("catalog.Insert", fmt.Errorf("track already catalogued: %s", t.FilePath))
	}
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "catalog.Insert", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "catalog.Insert", err)
	}
	t.ID = id
	return id, nil
}

// Update overwrites every mutable field of an existing Track by ID.
func (s *Store) Update(ctx context.Context, t *Track) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tracks SET
			file_path = ?, title = ?, artist = ?, album = ?, genre = ?,
			track_number = ?, year = ?, duration_seconds = ?, file_size_bytes = ?,
			bit_rate = ?, sample_rate = ?, file_type = ?, last_modified = ?,
			fingerprint = ?, fingerprint_duration = ?
		WHERE id = ?
	`,
		t.FilePath, t.Title, t.Artist, t.Album, t.Genre,
		t.TrackNumber, t.Year, t.DurationSeconds, t.FileSizeBytes,
		t.BitRate, t.SampleRate, t.FileType, t.LastModified,
		t.Fingerprint, t.FingerprintDuration, t.ID,
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("catalog.Update", fmt.Errorf("path already in use: %s", t.FilePath))
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "catalog.Update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "catalog.Update", err)
	}
	if n == 0 {
		return apperr.NotFound("catalog.Update", fmt.Errorf("track id %d", t.ID))
	}
	return nil
}

// Delete removes a Track by ID. It does not touch the underlying file;
// callers that need best-effort unlink (spec §3, §4.8) do it themselves
// after a successful Delete.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "catalog.Delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "catalog.Delete", err)
	}
	if n == 0 {
		return apperr.NotFound("catalog.Delete", fmt.Errorf("track id %d", id))
	}
	return nil
}

const selectCols = `
	id, file_path, title, artist, album, genre, track_number, year,
	duration_seconds, file_size_bytes, bit_rate, sample_rate, file_type,
	last_modified, date_added, fingerprint, fingerprint_duration
`

func scanTrack(row interface {
	Scan(dest ...interface{}) error
}) (*Track, error) {
	t := &Track{}
	err := row.Scan(
		&t.ID, &t.FilePath, &t.Title, &t.Artist, &t.Album, &t.Genre, &t.TrackNumber, &t.Year,
		&t.DurationSeconds, &t.FileSizeBytes, &t.BitRate, &t.SampleRate, &t.FileType,
		&t.LastModified, &t.DateAdded, &t.Fingerprint, &t.FingerprintDuration,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetByID returns the Track with the given id, or KindNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (*Track, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectCols+` FROM tracks WHERE id = ?`, id)
	t, err := scanTrack(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("catalog.GetByID", fmt.Errorf("track id %d", id))
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "catalog.GetByID", err)
	}
	return t, nil
}

// GetByPath returns the Track at the given file path, or KindNotFound.
func (s *Store) GetByPath(ctx context.Context, path string) (*Track, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectCols+` FROM tracks WHERE file_path = ?`, path)
	t, err := scanTrack(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("catalog.GetByPath", fmt.Errorf("path %s", path))
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "catalog.GetByPath", err)
	}
	return t, nil
}

// ListPage returns up to limit Tracks starting at offset, ordered by id,
// optionally narrowed by filters.
func (s *Store) ListPage(ctx context.Context, offset, limit int, filters *Filters) ([]*Track, error) {
	query := `SELECT ` + selectCols + ` FROM tracks`
	var args []interface{}
	var where []string
	if filters != nil {
		if filters.TitleContains != "" {
			where = append(where, "title LIKE ?")
			args = append(args, "%"+filters.TitleContains+"%")
		}
		if filters.ArtistContains != "" {
			where = append(where, "artist LIKE ?")
			args = append(args, "%"+filters.ArtistContains+"%")
		}
		if filters.AlbumContains != "" {
			where = append(where, "album LIKE ?")
			args = append(args, "%"+filters.AlbumContains+"%")
		}
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "catalog.ListPage", err)
	}
	defer rows.Close()

	var out []*Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "catalog.ListPage", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListAll returns every Track in the catalog, ordered by id. Used by the
// duplicate-scan controller to capture a single logical snapshot at scan
// start (spec §5: "inserts after that moment are ignored until the next
// scan").
func (s *Store) ListAll(ctx context.Context) ([]*Track, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectCols+` FROM tracks ORDER BY id`)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "catalog.ListAll", err)
	}
	defer rows.Close()

	var out []*Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "catalog.ListAll", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Count returns the total number of Tracks in the catalog.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks`).Scan(&n); err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "catalog.Count", err)
	}
	return n, nil
}

// PathExists reports whether a Track is already catalogued at path without
// a full row fetch. The scanner does not use it; it pre-loads AllPaths.
func (s *Store) PathExists(ctx context.Context, path string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM tracks WHERE file_path = ? LIMIT 1`, path).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "catalog.PathExists", err)
	}
	return true, nil
}

// AllPaths returns the set of every catalogued file path, used by the
// scanner to pre-load a dedup cache at session start.
func (s *Store) AllPaths(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT file_path FROM tracks`)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "catalog.AllPaths", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "catalog.AllPaths", err)
		}
		out[p] = true
	}
	return out, rows.Err()
}

// IterateMissingFingerprints calls fn for every Track whose fingerprint is
// NULL, in id order, stopping early if fn returns an error.
func (s *Store) IterateMissingFingerprints(ctx context.Context, fn func(*Track) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectCols+` FROM tracks WHERE fingerprint IS NULL ORDER BY id`)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "catalog.IterateMissingFingerprints", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "catalog.IterateMissingFingerprints", err)
		}
		if err := fn(t); err != nil {
			return err
		}
	}
	return rows.Err()
}

// SetFingerprint persists a computed fingerprint for an existing Track.
func (s *Store) SetFingerprint(ctx context.Context, id int64, fingerprint string, durationSec int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tracks SET fingerprint = ?, fingerprint_duration = ? WHERE id = ?`, fingerprint, durationSec, id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "catalog.SetFingerprint", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "catalog.SetFingerprint", err)
	}
	if n == 0 {
		return apperr.NotFound("catalog.SetFingerprint", fmt.Errorf("track id %d", id))
	}
	return nil
}
