package task

import (
	"context"
	"errors"
	"time"

	"github.com/deviprasad97/swiftFetch/internal/aria2"
	"github.com/deviprasad97/swiftFetch/internal/utils"
)

// Start launches the reconciliation loop. The loop stops when ctx is
// cancelled or Stop is called.
func (m *Manager) Start(ctx context.Context) {
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.loop(ctx)
}

// Stop halts the reconciliation loop and waits for the in-flight cycle,
// if any, to finish.
func (m *Manager) Stop() {
	if m.stop == nil {
		return
	}
	close(m.stop)
	<-m.done
	m.stop = nil
}

func (m *Manager) loop(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.settings.Transfer.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stop:
			return
		case <-ticker.C:
			m.Reconcile(ctx)
		}
	}
}

// Reconcile runs one reconciliation cycle: poll the engine for every task
// with a known remote handle, merge the results, refresh global stats, and
// take the periodic backup when due. Only one cycle runs at a time; a tick
// arriving while the previous cycle is still polling is dropped.
func (m *Manager) Reconcile(ctx context.Context) {
	if !m.cycling.CompareAndSwap(false, true) {
		return
	}
	defer m.cycling.Store(false)

	type target struct{ id, gid string }

	m.mu.Lock()
	targets := make([]target, 0, len(m.tasks))
	for _, t := range m.tasks {
		if t.GID != "" && !t.Status.Terminal() {
			targets = append(targets, target{t.ID, t.GID})
		}
	}
	m.mu.Unlock()

	for _, tg := range targets {
		status, err := m.engine.TellStatus(ctx, tg.gid)
		if err != nil {
			// One task's remote error never aborts the cycle.
			utils.Debug("reconcile: status query for %s: %v", tg.id, err)
			continue
		}
		m.merge(tg.id, status)
	}

	if stat, err := m.engine.GetGlobalStat(ctx); err != nil {
		utils.Debug("reconcile: global stats: %v", err)
	} else {
		m.mu.Lock()
		m.stats = globalStatsOf(stat)
		m.mu.Unlock()
	}

	m.maybeBackup()
}

// ReconcileStartup re-validates persisted active and paused tasks against a
// possibly restarted engine. A task whose handle the engine no longer
// recognizes is parked in paused with an explanatory message rather than
// left claiming to transfer.
func (m *Manager) ReconcileStartup(ctx context.Context) {
	type target struct{ id, gid string }

	m.mu.Lock()
	targets := make([]target, 0, len(m.tasks))
	for _, t := range m.tasks {
		if t.GID == "" {
			continue
		}
		if t.Status == StatusActive || t.Status == StatusPaused || t.Status == StatusWaiting {
			targets = append(targets, target{t.ID, t.GID})
		}
	}
	m.mu.Unlock()

	for _, tg := range targets {
		status, err := m.engine.TellStatus(ctx, tg.gid)
		if err == nil {
			m.merge(tg.id, status)
			continue
		}

		var remoteErr *aria2.RemoteError
		forgotten := errors.As(err, &remoteErr)

		m.mu.Lock()
		if t, ok := m.tasks[tg.id]; ok {
			t.transitionTo(StatusPaused)
			t.Speed = 0
			t.ETA = 0
			t.ErrorMessage = "download engine restarted; transfer paused"
			if forgotten {
				// The handle is gone for good; the engine must re-accept
				// the task before it can move again.
				t.GID = ""
			}
			if err := m.store.Save(t); err != nil {
				utils.Debug("startup reconcile: persist %s: %v", tg.id, err)
			}
		}
		m.mu.Unlock()
	}
}

// merge folds one engine status report into the local task set.
func (m *Manager) merge(id string, status *aria2.TaskStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		// Cancelled while the query was in flight; do not resurrect it.
		return
	}

	prevTotal := t.TotalSize
	prevCompleted := t.CompletedSize
	prevStatus := t.Status

	mergeStatus(t, status)

	if rec := m.segments.Recommend(t.ID, float64(t.Speed), t.Segments, t.TotalSize); rec != t.Segments {
		// Recorded locally only. Pushing a new split to the engine would
		// require remove+re-add, which this design defers.
		t.Segments = rec
	}

	// Persist only on meaningful change to bound write amplification
	// under rapid polling. Terminal arrivals are status changes and are
	// therefore always persisted.
	if t.TotalSize != prevTotal || t.CompletedSize != prevCompleted || t.Status != prevStatus {
		if err := m.store.Save(t); err != nil {
			utils.Debug("reconcile: persist %s: %v", id, err)
		}
	}

	if t.Status.Terminal() {
		m.segments.Forget(t.ID)
	}
}

// mergeStatus maps an engine status report onto the local task model.
func mergeStatus(t *Task, status *aria2.TaskStatus) {
	if total := status.TotalLength.Int64(); total > 0 {
		t.TotalSize = total
	}

	completed := status.CompletedLength.Int64()
	// completedSize never regresses while the task is active.
	if t.Status == StatusActive && completed < t.CompletedSize {
		completed = t.CompletedSize
	}
	if t.TotalSize > 0 && completed > t.TotalSize {
		completed = t.TotalSize
	}
	t.CompletedSize = completed

	next := statusFromEngine(status.Status)
	if next == StatusError {
		msg := status.ErrorMessage
		if msg == "" {
			msg = "engine error " + status.ErrorCode
		}
		t.ErrorMessage = msg
	}
	if next != t.Status {
		t.transitionTo(next)
	}

	speed := status.DownloadSpeed.Int64()
	t.Speed = speed
	t.addSample(time.Now(), speed)

	if speed > 0 && t.TotalSize > t.CompletedSize {
		t.ETA = time.Duration((t.TotalSize-t.CompletedSize)/speed) * time.Second
	} else {
		t.ETA = 0
	}
	if t.Status.Terminal() {
		t.Speed = 0
		t.ETA = 0
	}
}

func (m *Manager) maybeBackup() {
	m.mu.Lock()
	due := time.Since(m.lastBackup) >= m.settings.Transfer.BackupInterval
	if due {
		m.lastBackup = time.Now()
	}
	m.mu.Unlock()

	if due {
		if err := m.store.BackupSnapshot(); err != nil {
			utils.Debug("reconcile: backup snapshot: %v", err)
		}
	}
}
