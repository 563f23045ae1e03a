// Package store provides durable, crash-resilient persistence for the task
// set: a sqlite primary database plus a JSON snapshot used as a secondary
// recovery artifact. Both are inspectable with standard tools.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/deviprasad97/swiftFetch/internal/task"
	"github.com/deviprasad97/swiftFetch/internal/utils"
)

// StorageError indicates a persistence failure that survived the one
// automatic recovery attempt on the open path.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store persists tasks keyed by id.
type Store struct {
	db         *sql.DB
	path       string
	backupPath string
}

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id             TEXT PRIMARY KEY,
	gid            TEXT NOT NULL DEFAULT '',
	url            TEXT NOT NULL,
	filename       TEXT NOT NULL DEFAULT '',
	dir            TEXT NOT NULL DEFAULT '',
	total_size     INTEGER NOT NULL DEFAULT 0,
	completed_size INTEGER NOT NULL DEFAULT 0,
	status         TEXT NOT NULL,
	segments       INTEGER NOT NULL DEFAULT 1,
	speed_limit    INTEGER NOT NULL DEFAULT 0,
	error_message  TEXT NOT NULL DEFAULT '',
	referer        TEXT NOT NULL DEFAULT '',
	cookie         TEXT NOT NULL DEFAULT '',
	user_agent     TEXT NOT NULL DEFAULT '',
	created_at     INTEGER NOT NULL,
	started_at     INTEGER NOT NULL DEFAULT 0,
	completed_at   INTEGER NOT NULL DEFAULT 0
);
`

// Open opens the primary store at path, verifying its integrity first.
// A store that fails verification is quarantined (renamed aside with a
// timestamp suffix, never deleted), replaced with a fresh database, and
// repopulated best-effort from the backup snapshot.
func Open(path, backupPath string) (*Store, error) {
	s := &Store{path: path, backupPath: backupPath}

	if err := s.openVerified(); err != nil {
		utils.Debug("store: integrity check failed for %s: %v", path, err)
		if err := s.quarantineAndRecreate(); err != nil {
			return nil, &StorageError{Op: "open", Err: err}
		}
		if err := s.RestoreFromSnapshot(); err != nil {
			utils.Debug("store: snapshot restore after recovery: %v", err)
		}
	}

	return s, nil
}

// openVerified opens the database, runs the integrity check, and applies
// the schema. Any failure leaves the store closed.
func (s *Store) openVerified() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := s.verify(db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *Store) verify(db *sql.DB) error {
	if err := db.Ping(); err != nil {
		return err
	}

	// WAL and a busy timeout for concurrent readers (CLI while the
	// orchestrator holds the store open read-mostly).
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000; PRAGMA journal_mode = WAL;`); err != nil {
		return err
	}

	var result string
	if err := db.QueryRow(`PRAGMA integrity_check;`).Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity_check: %s", result)
	}

	_, err := db.Exec(schema)
	return err
}

// quarantineAndRecreate renames the corrupted database aside and opens a
// fresh one in its place. The original file is preserved for diagnosis.
func (s *Store) quarantineAndRecreate() error {
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}

	if _, err := os.Stat(s.path); err == nil {
		quarantine := fmt.Sprintf("%s.corrupt-%s", s.path, time.Now().Format("20060102-150405"))
		if err := os.Rename(s.path, quarantine); err != nil {
			return fmt.Errorf("quarantine %s: %w", s.path, err)
		}
		utils.Debug("store: corrupted database moved to %s", quarantine)
	}
	// Stale WAL artifacts would be replayed into the fresh database.
	_ = os.Remove(s.path + "-wal")
	_ = os.Remove(s.path + "-shm")

	return s.openVerified()
}

// Save upserts a task by id. Safe to call repeatedly with the same task.
// A failed write triggers exactly one quarantine-recreate-restore recovery
// attempt and a retry; a second failure is logged but not surfaced,
// trading strict write guarantees for availability.
func (s *Store) Save(t *task.Task) error {
	if err := s.save(t); err != nil {
		utils.Debug("store: save %s failed, attempting recovery: %v", t.ID, err)

		// Preserve whatever is still readable before discarding the file.
		if backupErr := s.BackupSnapshot(); backupErr != nil {
			utils.Debug("store: pre-recovery snapshot: %v", backupErr)
		}
		if recErr := s.quarantineAndRecreate(); recErr != nil {
			utils.Debug("store: recovery failed, dropping write for %s: %v", t.ID, recErr)
			return nil
		}
		if restoreErr := s.RestoreFromSnapshot(); restoreErr != nil {
			utils.Debug("store: snapshot restore after save failure: %v", restoreErr)
		}
		if retryErr := s.save(t); retryErr != nil {
			utils.Debug("store: save retry for %s failed, write dropped: %v", t.ID, retryErr)
		}
	}
	return nil
}

func (s *Store) save(t *task.Task) error {
	if s.db == nil {
		return fmt.Errorf("store is not open")
	}

	_, err := s.db.Exec(`
		INSERT INTO tasks (
			id, gid, url, filename, dir, total_size, completed_size, status,
			segments, speed_limit, error_message, referer, cookie, user_agent,
			created_at, started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			gid = excluded.gid,
			url = excluded.url,
			filename = excluded.filename,
			dir = excluded.dir,
			total_size = excluded.total_size,
			completed_size = excluded.completed_size,
			status = excluded.status,
			segments = excluded.segments,
			speed_limit = excluded.speed_limit,
			error_message = excluded.error_message,
			referer = excluded.referer,
			cookie = excluded.cookie,
			user_agent = excluded.user_agent,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at`,
		t.ID, t.GID, t.URL, t.Filename, t.Dir, t.TotalSize, t.CompletedSize,
		string(t.Status), t.Segments, t.SpeedLimit, t.ErrorMessage,
		t.Referer, t.Cookie, t.UserAgent,
		t.CreatedAt.UnixNano(), unixOrZero(t.StartedAt), unixOrZero(t.CompletedAt))
	return err
}

// LoadAll returns every non-removed task, newest first.
func (s *Store) LoadAll() ([]*task.Task, error) {
	if s.db == nil {
		return nil, &StorageError{Op: "load", Err: fmt.Errorf("store is not open")}
	}

	rows, err := s.db.Query(`
		SELECT id, gid, url, filename, dir, total_size, completed_size, status,
		       segments, speed_limit, error_message, referer, cookie, user_agent,
		       created_at, started_at, completed_at
		FROM tasks
		WHERE status != ?
		ORDER BY created_at DESC`, string(task.StatusRemoved))
	if err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, &StorageError{Op: "load", Err: err}
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}
	return tasks, nil
}

// Delete removes a task from the store. Subsequent LoadAll calls exclude it.
func (s *Store) Delete(id string) error {
	if s.db == nil {
		return &StorageError{Op: "delete", Err: fmt.Errorf("store is not open")}
	}
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return &StorageError{Op: "delete", Err: err}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func scanTask(rows *sql.Rows) (*task.Task, error) {
	var t task.Task
	var status string
	var createdAt, startedAt, completedAt int64

	err := rows.Scan(&t.ID, &t.GID, &t.URL, &t.Filename, &t.Dir,
		&t.TotalSize, &t.CompletedSize, &status, &t.Segments, &t.SpeedLimit,
		&t.ErrorMessage, &t.Referer, &t.Cookie, &t.UserAgent,
		&createdAt, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	t.Status = task.Status(status)
	t.CreatedAt = time.Unix(0, createdAt)
	if startedAt != 0 {
		t.StartedAt = time.Unix(0, startedAt)
	}
	if completedAt != 0 {
		t.CompletedAt = time.Unix(0, completedAt)
	}
	return &t, nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}
