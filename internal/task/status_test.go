package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_AllowedEdges(t *testing.T) {
	cases := []struct {
		from, to Status
	}{
		{StatusPending, StatusWaiting},
		{StatusPending, StatusActive},
		{StatusWaiting, StatusActive},
		{StatusWaiting, StatusPaused},
		{StatusActive, StatusPaused},
		{StatusActive, StatusCompleted},
		{StatusPaused, StatusActive},
		{StatusPaused, StatusWaiting},
		{StatusPending, StatusRemoved},
		{StatusActive, StatusRemoved},
		{StatusError, StatusRemoved},
		{StatusActive, StatusError},
		{StatusWaiting, StatusError},
	}
	for _, tc := range cases {
		assert.True(t, tc.from.canTransition(tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}
}

func TestCanTransition_TerminalStatesAreFinal(t *testing.T) {
	all := []Status{StatusPending, StatusWaiting, StatusActive, StatusPaused,
		StatusCompleted, StatusError, StatusRemoved}

	for _, terminal := range []Status{StatusCompleted, StatusRemoved} {
		for _, to := range all {
			assert.False(t, terminal.canTransition(to), "%s -> %s should be rejected", terminal, to)
		}
	}
}

func TestCanTransition_RejectsSelfAndBackwards(t *testing.T) {
	assert.False(t, StatusActive.canTransition(StatusActive))
	assert.False(t, StatusCompleted.canTransition(StatusActive))
	assert.False(t, StatusActive.canTransition(StatusPending))
	assert.False(t, StatusWaiting.canTransition(StatusPending))
}

func TestTransitionTo_SetsLifecycleTimestamps(t *testing.T) {
	tk := &Task{ID: "t", Status: StatusPending}

	assert.True(t, tk.transitionTo(StatusWaiting))
	assert.True(t, tk.StartedAt.IsZero())

	assert.True(t, tk.transitionTo(StatusActive))
	assert.False(t, tk.StartedAt.IsZero())

	started := tk.StartedAt
	assert.True(t, tk.transitionTo(StatusPaused))
	assert.True(t, tk.transitionTo(StatusActive))
	assert.Equal(t, started, tk.StartedAt, "StartedAt set only once")

	assert.True(t, tk.transitionTo(StatusCompleted))
	assert.False(t, tk.CompletedAt.IsZero())
}

func TestTransitionTo_ClearsErrorMessageOnRecovery(t *testing.T) {
	tk := &Task{ID: "t", Status: StatusPaused, ErrorMessage: "engine restarted"}

	assert.True(t, tk.transitionTo(StatusWaiting))
	assert.Empty(t, tk.ErrorMessage)

	tk = &Task{ID: "t", Status: StatusError, ErrorMessage: "boom"}
	assert.True(t, tk.transitionTo(StatusActive))
	assert.Empty(t, tk.ErrorMessage)
}

func TestStatusFromEngine(t *testing.T) {
	assert.Equal(t, StatusActive, statusFromEngine("active"))
	assert.Equal(t, StatusWaiting, statusFromEngine("waiting"))
	assert.Equal(t, StatusPaused, statusFromEngine("paused"))
	assert.Equal(t, StatusCompleted, statusFromEngine("complete"))
	assert.Equal(t, StatusError, statusFromEngine("error"))
	assert.Equal(t, StatusRemoved, statusFromEngine("removed"))
	assert.Equal(t, StatusError, statusFromEngine("somethingnew"))
}

func TestAddSample_BoundedHistory(t *testing.T) {
	tk := &Task{ID: "t", Status: StatusActive}

	start := time.Now()
	for i := 0; i < maxSpeedSamples+10; i++ {
		tk.addSample(start.Add(time.Duration(i)*time.Second), int64(i))
	}

	assert.Len(t, tk.Samples, maxSpeedSamples)
	// Oldest evicted: the first surviving sample is number 10.
	assert.Equal(t, int64(10), tk.Samples[0].BytesPerSec)
	assert.Equal(t, int64(maxSpeedSamples+9), tk.Samples[len(tk.Samples)-1].BytesPerSec)
}

func TestClone_IsIndependent(t *testing.T) {
	tk := &Task{ID: "t", Status: StatusActive}
	tk.addSample(time.Now(), 100)

	cp := tk.clone()
	cp.CompletedSize = 999
	cp.Samples[0].BytesPerSec = 1

	assert.Zero(t, tk.CompletedSize)
	assert.Equal(t, int64(100), tk.Samples[0].BytesPerSec)
}

func TestProgress(t *testing.T) {
	tk := &Task{TotalSize: 0, CompletedSize: 10}
	assert.Zero(t, tk.Progress())

	tk = &Task{TotalSize: 200, CompletedSize: 50}
	assert.InDelta(t, 0.25, tk.Progress(), 1e-9)
}
