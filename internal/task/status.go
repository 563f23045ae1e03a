package task

// Status is the local lifecycle state of a download task.
type Status string

const (
	// StatusPending: created locally, not yet accepted by the engine.
	StatusPending Status = "pending"
	// StatusWaiting: accepted by the engine, queued behind other transfers.
	StatusWaiting Status = "waiting"
	// StatusActive: the engine is transferring bytes.
	StatusActive Status = "active"
	// StatusPaused: stopped by the user, by a remote interruption, or by
	// startup reconciliation finding the engine no longer knows the task.
	StatusPaused Status = "paused"
	// StatusCompleted: all bytes transferred. Terminal.
	StatusCompleted Status = "completed"
	// StatusError: unrecoverable engine failure.
	StatusError Status = "error"
	// StatusRemoved: cancelled by the user. Terminal, excluded from listings.
	StatusRemoved Status = "removed"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusRemoved
}

// transitions is the full edge set of the task state machine. Anything not
// listed here is rejected.
var transitions = map[Status][]Status{
	StatusPending:   {StatusWaiting, StatusActive, StatusError, StatusRemoved},
	StatusWaiting:   {StatusActive, StatusPaused, StatusCompleted, StatusError, StatusRemoved},
	StatusActive:    {StatusWaiting, StatusPaused, StatusCompleted, StatusError, StatusRemoved},
	StatusPaused:    {StatusWaiting, StatusActive, StatusError, StatusRemoved},
	StatusError:     {StatusWaiting, StatusActive, StatusRemoved},
	StatusCompleted: {},
	StatusRemoved:   {},
}

// canTransition reports whether the state machine allows moving to next.
func (s Status) canTransition(next Status) bool {
	if s == next {
		return false
	}
	for _, allowed := range transitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// statusFromEngine maps the engine's status vocabulary onto the local one.
func statusFromEngine(remote string) Status {
	switch remote {
	case "active":
		return StatusActive
	case "waiting":
		return StatusWaiting
	case "paused":
		return StatusPaused
	case "complete":
		return StatusCompleted
	case "error":
		return StatusError
	case "removed":
		return StatusRemoved
	default:
		return StatusError
	}
}
