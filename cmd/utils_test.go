package cmd

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deviprasad97/swiftFetch/internal/aria2"
	"github.com/deviprasad97/swiftFetch/internal/config"
	"github.com/deviprasad97/swiftFetch/internal/task"
)

type stubEngine struct{ gid int }

func (s *stubEngine) AddURI(context.Context, []string, aria2.Options) (string, error) {
	s.gid++
	return "gid-" + strconv.Itoa(s.gid), nil
}

func (s *stubEngine) TellStatus(_ context.Context, gid string) (*aria2.TaskStatus, error) {
	return &aria2.TaskStatus{GID: gid, Status: "waiting"}, nil
}

func (s *stubEngine) Pause(context.Context, string) error   { return nil }
func (s *stubEngine) Unpause(context.Context, string) error { return nil }
func (s *stubEngine) Remove(context.Context, string) error  { return nil }
func (s *stubEngine) GetGlobalStat(context.Context) (*aria2.GlobalStat, error) {
	return &aria2.GlobalStat{}, nil
}
func (s *stubEngine) ChangeGlobalOption(context.Context, map[string]string) error { return nil }
func (s *stubEngine) Shutdown(context.Context) error                              { return nil }

type nopStore struct{}

func (nopStore) Save(*task.Task) error          { return nil }
func (nopStore) LoadAll() ([]*task.Task, error) { return nil, nil }
func (nopStore) Delete(string) error            { return nil }
func (nopStore) BackupSnapshot() error          { return nil }

func TestResolveTaskID(t *testing.T) {
	mgr := task.NewManager(&stubEngine{}, nopStore{}, config.DefaultSettings())

	t1, err := mgr.Add(context.Background(), task.AddRequest{URL: "http://example.com/a"})
	require.NoError(t, err)
	t2, err := mgr.Add(context.Background(), task.AddRequest{URL: "http://example.com/b"})
	require.NoError(t, err)

	got, err := resolveTaskID(mgr, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, t1.ID, got)

	got, err = resolveTaskID(mgr, t2.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, t2.ID, got)

	_, err = resolveTaskID(mgr, "nope")
	assert.Error(t, err)

	// Empty prefix matches everything and must be rejected as ambiguous.
	_, err = resolveTaskID(mgr, "")
	assert.Error(t, err)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "12345678", shortID("123456789abc"))
	assert.Equal(t, "abc", shortID("abc"))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "-", formatSize(0))
	assert.Equal(t, "1.0 KiB", formatSize(1024))
	assert.Equal(t, "-", formatSpeed(0))
	assert.Equal(t, "1.0 MiB/s", formatSpeed(1<<20))
	assert.Equal(t, "-", formatETA(0))
	assert.Equal(t, "30s", formatETA(30*time.Second))
}
