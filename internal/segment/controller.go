// Package segment implements the adaptive parallelism controller. It watches
// per-task throughput and recommends how many segments (parallel connections)
// a task should use: stable throughput grows the count, noisy throughput
// shrinks it.
package segment

import "sync"

const (
	windowSize = 10
	minSamples = 3

	// MinSegments and MaxSegments bound every recommendation.
	MinSegments = 1
	MaxSegments = 16

	// A segment is only worth having for at least this many bytes.
	bytesPerSegment = 1 << 20
)

// Controller retains a bounded window of recent speed samples per task.
// Recommendations are deterministic given the same sample sequence.
type Controller struct {
	mu      sync.Mutex
	windows map[string][]float64
}

// NewController creates an empty controller.
func NewController() *Controller {
	return &Controller{windows: make(map[string][]float64)}
}

// Recommend records a throughput sample (bytes/sec) for the task and returns
// the suggested segment count given the current one. totalSize caps the
// result at one segment per MiB; pass 0 when the size is unknown.
func (c *Controller) Recommend(id string, sample float64, current int, totalSize int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	window := append(c.windows[id], sample)
	if len(window) > windowSize {
		window = window[len(window)-windowSize:]
	}
	c.windows[id] = window

	next := clamp(current)

	if len(window) >= minSamples {
		mean, variance := stats(window)
		switch {
		case variance > 0.3*mean:
			// Congestion: throughput is bouncing around, back off.
			next = clamp(current * 3 / 4)
		case variance < 0.1*mean:
			// Stable: the link has headroom, probe upward.
			next = clamp(current + 1)
		}
	}

	if totalSize > 0 {
		ceiling := int(totalSize / bytesPerSegment)
		if ceiling < MinSegments {
			ceiling = MinSegments
		}
		if next > ceiling {
			next = ceiling
		}
	}

	return next
}

// Forget drops the sample window for a task. Called when a task is
// cancelled or reaches a terminal state.
func (c *Controller) Forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.windows, id)
}

func clamp(n int) int {
	if n < MinSegments {
		return MinSegments
	}
	if n > MaxSegments {
		return MaxSegments
	}
	return n
}

func stats(window []float64) (mean, variance float64) {
	for _, v := range window {
		mean += v
	}
	mean /= float64(len(window))

	for _, v := range window {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(window))
	return mean, variance
}
