package task

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/deviprasad97/swiftFetch/internal/aria2"
	"github.com/deviprasad97/swiftFetch/internal/config"
	"github.com/deviprasad97/swiftFetch/internal/segment"
	"github.com/deviprasad97/swiftFetch/internal/utils"
)

// GlobalStats is the ephemeral engine-wide aggregate, recomputed each
// reconciliation cycle. Never persisted.
type GlobalStats struct {
	DownloadSpeed int64
	UploadSpeed   int64
	NumActive     int
	NumWaiting    int
	NumStopped    int
}

// AddRequest describes a new download. URL is the only required field;
// everything else falls back to configured defaults. The browser bridge
// delivers requests in exactly this shape.
type AddRequest struct {
	URL        string
	Filename   string
	Dir        string
	Segments   int
	SpeedLimit int64
	Cookie     string
	Referer    string
	UserAgent  string
	Headers    map[string]string
}

// Manager owns the authoritative in-memory task set. All mutation of the
// set and all persistence writes are serialized through its mutex; callers
// only ever receive copies of tasks.
type Manager struct {
	engine   EngineClient
	store    Store
	segments *segment.Controller
	settings *config.Settings

	mu    sync.Mutex
	tasks map[string]*Task
	stats GlobalStats

	// cycling guarantees only one reconciliation cycle is in flight even
	// if a cycle outlasts the poll interval.
	cycling    atomic.Bool
	lastBackup time.Time

	stop chan struct{}
	done chan struct{}
}

// NewManager wires an orchestrator from its collaborators. Call Load to
// populate it from the store and Start to run the reconciliation loop.
func NewManager(engine EngineClient, store Store, settings *config.Settings) *Manager {
	return &Manager{
		engine:     engine,
		store:      store,
		segments:   segment.NewController(),
		settings:   settings,
		tasks:      make(map[string]*Task),
		lastBackup: time.Now(),
	}
}

// Load populates the in-memory task set from the store.
func (m *Manager) Load() error {
	tasks, err := m.store.LoadAll()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range tasks {
		m.tasks[t.ID] = t
	}
	return nil
}

// Add constructs a task, submits it to the engine, seeds its state with one
// status query, persists it, and adds it to the task set. The task is not
// added when the engine rejects it; the engine error is returned unmodified.
func (m *Manager) Add(ctx context.Context, req AddRequest) (*Task, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("add: empty URL")
	}

	filename := req.Filename
	if filename == "" {
		filename = utils.DeriveFilename(req.URL, headersOf(req.Headers))
	}

	dir := req.Dir
	if dir == "" {
		dir = m.settings.General.DefaultDownloadDir
	}
	if m.settings.General.CategoryFolders {
		dir = filepath.Join(dir, utils.Category(filename))
	}

	segments := req.Segments
	if segments == 0 {
		segments = m.settings.Transfer.DefaultSegments
	}
	if segments < segment.MinSegments {
		segments = segment.MinSegments
	}
	if segments > segment.MaxSegments {
		segments = segment.MaxSegments
	}

	t := &Task{
		ID:         uuid.NewString(),
		URL:        req.URL,
		Filename:   filename,
		Dir:        dir,
		Status:     StatusPending,
		Segments:   segments,
		SpeedLimit: req.SpeedLimit,
		Referer:    req.Referer,
		Cookie:     req.Cookie,
		UserAgent:  req.UserAgent,
		CreatedAt:  time.Now(),
	}

	gid, err := m.engine.AddURI(ctx, []string{t.URL}, engineOptions(t, req.Headers))
	if err != nil {
		return nil, err
	}
	t.GID = gid
	t.transitionTo(StatusWaiting)

	// Seed size and state so the task is presentable before the first
	// reconciliation cycle. Failure here is not fatal: the cycle catches up.
	if status, err := m.engine.TellStatus(ctx, gid); err != nil {
		utils.Debug("add: seed status query for %s: %v", t.ID, err)
	} else {
		mergeStatus(t, status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Save(t); err != nil {
		utils.Debug("add: persist %s: %v", t.ID, err)
	}
	m.tasks[t.ID] = t
	return t.clone(), nil
}

// Pause pauses a task through the engine. Local state changes only after
// the engine confirms.
func (m *Manager) Pause(ctx context.Context, id string) error {
	gid, err := m.remoteHandle(id)
	if err != nil {
		return err
	}

	if err := m.engine.Pause(ctx, gid); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok && t.transitionTo(StatusPaused) {
		t.Speed = 0
		t.ETA = 0
		if err := m.store.Save(t); err != nil {
			utils.Debug("pause: persist %s: %v", id, err)
		}
	}
	return nil
}

// Resume resumes a paused task through the engine.
func (m *Manager) Resume(ctx context.Context, id string) error {
	gid, err := m.remoteHandle(id)
	if err != nil {
		return err
	}

	if err := m.engine.Unpause(ctx, gid); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok && t.transitionTo(StatusWaiting) {
		if err := m.store.Save(t); err != nil {
			utils.Debug("resume: persist %s: %v", id, err)
		}
	}
	return nil
}

// Cancel removes a task. Remote removal is best-effort: local bookkeeping
// always succeeds even when the engine is unreachable, so cancellation is
// never blocked by remote unavailability.
func (m *Manager) Cancel(ctx context.Context, id string) error {
	m.mu.Lock()
	t, ok := m.tasks[id]
	var gid string
	if ok {
		gid = t.GID
	}
	m.mu.Unlock()

	if !ok {
		return &NotFoundError{ID: id}
	}

	if gid != "" {
		if err := m.engine.Remove(ctx, gid); err != nil {
			utils.Debug("cancel: engine remove for %s: %v", id, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		t.transitionTo(StatusRemoved)
		delete(m.tasks, id)
	}
	m.segments.Forget(id)
	if err := m.store.Delete(id); err != nil {
		utils.Debug("cancel: delete %s from store: %v", id, err)
	}
	return nil
}

// SetGlobalSpeedLimit caps the engine's overall download rate in
// bytes/second; 0 removes the cap. No local task state changes.
func (m *Manager) SetGlobalSpeedLimit(ctx context.Context, limit int64) error {
	return m.engine.ChangeGlobalOption(ctx, map[string]string{
		"max-overall-download-limit": strconv.FormatInt(limit, 10),
	})
}

// ShutdownEngine asks the engine process to exit.
func (m *Manager) ShutdownEngine(ctx context.Context) error {
	return m.engine.Shutdown(ctx)
}

// Task returns a copy of the task with the given id.
func (m *Manager) Task(id string) (*Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, false
	}
	return t.clone(), true
}

// Tasks returns copies of every task, newest first.
func (m *Manager) Tasks() []*Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t.clone())
	}
	sortByCreation(out)
	return out
}

// Views returns the three derived task views: transferring now, queued or
// otherwise not finished, and completed.
func (m *Manager) Views() (active, queued, completed []*Task) {
	for _, t := range m.Tasks() {
		switch t.Status {
		case StatusActive:
			active = append(active, t)
		case StatusCompleted:
			completed = append(completed, t)
		case StatusPending, StatusWaiting, StatusPaused, StatusError:
			queued = append(queued, t)
		}
	}
	return active, queued, completed
}

// Stats returns the engine aggregate captured by the last reconciliation
// cycle.
func (m *Manager) Stats() GlobalStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// GlobalStats queries the engine aggregate directly and caches it.
func (m *Manager) GlobalStats(ctx context.Context) (GlobalStats, error) {
	stat, err := m.engine.GetGlobalStat(ctx)
	if err != nil {
		return GlobalStats{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = globalStatsOf(stat)
	return m.stats, nil
}

// remoteHandle resolves a task id to its engine handle, failing with
// NotFoundError when the id is unknown or the engine never accepted it.
func (m *Manager) remoteHandle(id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.GID == "" {
		return "", &NotFoundError{ID: id}
	}
	return t.GID, nil
}

// engineOptions derives the engine option set for a task.
func engineOptions(t *Task, extraHeaders map[string]string) aria2.Options {
	opts := aria2.Options{
		Dir:       t.Dir,
		Out:       t.Filename,
		Split:     strconv.Itoa(t.Segments),
		Referer:   t.Referer,
		UserAgent: t.UserAgent,
	}
	if t.SpeedLimit > 0 {
		opts.MaxDownloadLimit = strconv.FormatInt(t.SpeedLimit, 10)
	}
	if t.Cookie != "" {
		opts.Header = append(opts.Header, "Cookie: "+t.Cookie)
	}
	for k, v := range extraHeaders {
		opts.Header = append(opts.Header, k+": "+v)
	}
	return opts
}

func headersOf(raw map[string]string) http.Header {
	if len(raw) == 0 {
		return nil
	}
	hdr := http.Header{}
	for k, v := range raw {
		hdr.Set(k, v)
	}
	return hdr
}

func globalStatsOf(stat *aria2.GlobalStat) GlobalStats {
	return GlobalStats{
		DownloadSpeed: stat.DownloadSpeed.Int64(),
		UploadSpeed:   stat.UploadSpeed.Int64(),
		NumActive:     int(stat.NumActive.Int64()),
		NumWaiting:    int(stat.NumWaiting.Int64()),
		NumStopped:    int(stat.NumStopped.Int64()),
	}
}

func sortByCreation(tasks []*Task) {
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}
