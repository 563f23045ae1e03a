// Package task owns the authoritative model of every download task and the
// orchestration logic that keeps it synchronized with the remote transfer
// engine.
package task

import (
	"time"
)

// maxSpeedSamples bounds the per-task throughput history kept for
// presentation and for feeding the segment controller.
const maxSpeedSamples = 60

// SpeedSample is one instantaneous throughput observation.
type SpeedSample struct {
	At          time.Time
	BytesPerSec int64
}

// Task is one download managed by the orchestrator. The Manager owns every
// Task instance exclusively; callers only ever see copies.
type Task struct {
	// ID is the locally generated identifier, stable for the task lifetime.
	ID string `json:"id"`
	// GID is the engine-assigned remote handle. Empty before the engine
	// accepts the task, and after a restarted engine forgets it.
	GID string `json:"gid,omitempty"`

	URL      string `json:"url"`
	Filename string `json:"filename"`
	Dir      string `json:"dir"`

	TotalSize     int64 `json:"total_size"`
	CompletedSize int64 `json:"completed_size"`

	Status       Status `json:"status"`
	Segments     int    `json:"segments"`
	SpeedLimit   int64  `json:"speed_limit,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	// Browser-bridge request context, forwarded to the engine on add.
	Referer   string `json:"referer,omitempty"`
	Cookie    string `json:"cookie,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`

	CreatedAt   time.Time `json:"created_at"`
	StartedAt   time.Time `json:"started_at,omitempty"`
	CompletedAt time.Time `json:"completed_at,omitempty"`

	// Ephemeral fields, recomputed every reconciliation cycle.
	Speed   int64         `json:"-"`
	ETA     time.Duration `json:"-"`
	Samples []SpeedSample `json:"-"`
}

// transitionTo moves the task to next if the state machine allows it,
// maintaining lifecycle timestamps and the error message.
func (t *Task) transitionTo(next Status) bool {
	if !t.Status.canTransition(next) {
		return false
	}

	prev := t.Status
	t.Status = next

	switch next {
	case StatusActive:
		if t.StartedAt.IsZero() {
			t.StartedAt = time.Now()
		}
	case StatusCompleted:
		if t.CompletedAt.IsZero() {
			t.CompletedAt = time.Now()
		}
	}

	// Leaving an error or interrupted-pause state clears the stale message.
	if (prev == StatusError || prev == StatusPaused) &&
		(next == StatusActive || next == StatusWaiting) {
		t.ErrorMessage = ""
	}

	return true
}

// addSample appends a throughput observation, evicting the oldest beyond
// the bounded history.
func (t *Task) addSample(at time.Time, bytesPerSec int64) {
	t.Samples = append(t.Samples, SpeedSample{At: at, BytesPerSec: bytesPerSec})
	if len(t.Samples) > maxSpeedSamples {
		t.Samples = t.Samples[len(t.Samples)-maxSpeedSamples:]
	}
}

// Progress returns completion as a fraction in [0, 1], or 0 when the total
// size is unknown.
func (t *Task) Progress() float64 {
	if t.TotalSize <= 0 {
		return 0
	}
	return float64(t.CompletedSize) / float64(t.TotalSize)
}

// clone returns a deep copy safe to hand to callers.
func (t *Task) clone() *Task {
	cp := *t
	cp.Samples = make([]SpeedSample, len(t.Samples))
	copy(cp.Samples, t.Samples)
	return &cp
}
