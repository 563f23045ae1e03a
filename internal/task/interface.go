package task

import (
	"context"

	"github.com/deviprasad97/swiftFetch/internal/aria2"
)

// EngineClient is the subset of the engine RPC surface the manager drives.
// This abstraction keeps the manager testable against a fake engine and
// leaves the wire protocol to the aria2 package.
type EngineClient interface {
	// AddURI submits a new download and returns the engine-assigned handle.
	AddURI(ctx context.Context, uris []string, opts aria2.Options) (string, error)

	// TellStatus queries the status of a single download.
	TellStatus(ctx context.Context, gid string) (*aria2.TaskStatus, error)

	// Pause pauses an active or waiting download.
	Pause(ctx context.Context, gid string) error

	// Unpause resumes a paused download.
	Unpause(ctx context.Context, gid string) error

	// Remove cancels a download and drops it from the engine's queue.
	Remove(ctx context.Context, gid string) error

	// GetGlobalStat returns the engine-wide transfer aggregate.
	GetGlobalStat(ctx context.Context) (*aria2.GlobalStat, error)

	// ChangeGlobalOption updates engine-wide options.
	ChangeGlobalOption(ctx context.Context, opts map[string]string) error

	// Shutdown asks the engine process to exit.
	Shutdown(ctx context.Context) error
}

// Store is the persistence surface the manager writes through.
type Store interface {
	Save(t *Task) error
	LoadAll() ([]*Task, error)
	Delete(id string) error
	BackupSnapshot() error
}

// NotFoundError indicates an operation referenced an unknown task id, or a
// task the engine has not accepted yet.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "unknown task: " + e.ID
}
