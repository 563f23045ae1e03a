package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/deviprasad97/swiftFetch/internal/task"
	"github.com/deviprasad97/swiftFetch/internal/utils"
)

// snapshot is the on-disk shape of the backup artifact.
type snapshot struct {
	SavedAt time.Time    `json:"saved_at"`
	Tasks   []*task.Task `json:"tasks"`
}

// BackupSnapshot serializes the current task set to the secondary recovery
// artifact. Written atomically so a crash mid-write never destroys the
// previous snapshot.
func (s *Store) BackupSnapshot() error {
	tasks, err := s.LoadAll()
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}

	data, err := json.MarshalIndent(snapshot{SavedAt: time.Now(), Tasks: tasks}, "", "  ")
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.backupPath), 0755); err != nil {
		return fmt.Errorf("backup: %w", err)
	}

	tempPath := s.backupPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	if err := os.Rename(tempPath, s.backupPath); err != nil {
		return fmt.Errorf("backup: %w", err)
	}

	return nil
}

// RestoreFromSnapshot repopulates the store from the backup artifact.
// Best-effort: a missing snapshot is not an error, and individual rows that
// fail to insert are skipped with a log line. Only used during recovery.
func (s *Store) RestoreFromSnapshot() error {
	data, err := os.ReadFile(s.backupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("restore: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	restored := 0
	for _, t := range snap.Tasks {
		if err := s.save(t); err != nil {
			utils.Debug("store: restore skipped task %s: %v", t.ID, err)
			continue
		}
		restored++
	}
	utils.Debug("store: restored %d of %d tasks from snapshot %s",
		restored, len(snap.Tasks), s.backupPath)

	return nil
}
