package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"

	"github.com/deviprasad97/swiftFetch/internal/aria2"
	"github.com/deviprasad97/swiftFetch/internal/config"
	"github.com/deviprasad97/swiftFetch/internal/store"
	"github.com/deviprasad97/swiftFetch/internal/task"
)

// newManager builds a fully wired orchestrator: settings, store (with
// corruption recovery), engine client, and the loaded task set. The caller
// owns the returned store and must Close it.
func newManager() (*task.Manager, *store.Store, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}

	if err := os.MkdirAll(config.GetAppDir(), 0755); err != nil {
		return nil, nil, fmt.Errorf("create state dir: %w", err)
	}

	st, err := store.Open(config.GetStorePath(), config.GetBackupPath())
	if err != nil {
		return nil, nil, fmt.Errorf("open task store: %w", err)
	}

	engine := aria2.NewClient(settings.Engine.RPCURL, settings.Engine.Secret,
		settings.Engine.RequestTimeout)

	mgr := task.NewManager(engine, st, settings)
	if err := mgr.Load(); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("load tasks: %w", err)
	}
	return mgr, st, nil
}

// resolveTaskID matches an id argument against the task set, accepting any
// unambiguous prefix so users can paste the short form shown by list.
func resolveTaskID(mgr *task.Manager, arg string) (string, error) {
	if _, ok := mgr.Task(arg); ok {
		return arg, nil
	}

	var matches []string
	for _, t := range mgr.Tasks() {
		if strings.HasPrefix(t.ID, arg) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no task matches %q", arg)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q is ambiguous: matches %d tasks", arg, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var output = termenv.NewOutput(os.Stdout)

func statusLabel(s task.Status) string {
	var color string
	switch s {
	case task.StatusActive:
		color = "2" // green
	case task.StatusPaused:
		color = "3" // yellow
	case task.StatusCompleted:
		color = "4" // blue
	case task.StatusError:
		color = "1" // red
	default:
		color = "8"
	}
	return output.String(string(s)).Foreground(output.Color(color)).String()
}

func formatSize(n int64) string {
	if n <= 0 {
		return "-"
	}
	return humanize.IBytes(uint64(n))
}

func formatSpeed(n int64) string {
	if n <= 0 {
		return "-"
	}
	return humanize.IBytes(uint64(n)) + "/s"
}

func formatETA(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}
