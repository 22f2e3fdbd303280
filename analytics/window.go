package analytics

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidArgument = errors.New("invalid argument")

// Window keeps the last Capacity() integer samples and their running sum.
//
// A Window has no internal locking: it is meant for one goroutine at a time.
// Callers sharing a window between goroutines must serialize access themselves.
type Window struct {
	values []int64
	index  int
	count  int
	sum    int64
}

func NewWindow(capacity int) (*Window, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: window capacity must be positive, got %d", ErrInvalidArgument, capacity)
	}
	return &Window{
		values: make([]int64, capacity),
	}, nil
}

func (w *Window) Add(sample int64) {
	if w.count < len(w.values) {
		w.count++
	} else {
		// slot at index holds the oldest sample once the window is full
		w.sum -= w.values[w.index]
	}
	w.values[w.index] = sample
	w.sum += sample
	w.index = (w.index + 1) % len(w.values)
}

// Average returns Sum()/Fill(), or NaN for an empty window.
func (w *Window) Average() float64 {
	if w.count == 0 {
		return math.NaN()
	}
	return float64(w.sum) / float64(w.count)
}

func (w *Window) Oldest() int64 {
	if w.count == 0 {
		return 0
	}
	if w.count < len(w.values) {
		return w.values[0]
	}
	return w.values[w.index]
}

func (w *Window) Newest() int64 {
	if w.count == 0 {
		return 0
	}
	return w.values[(w.index-1+len(w.values))%len(w.values)]
}

func (w *Window) Sum() int64 {
	return w.sum
}

func (w *Window) Fill() int {
	return w.count
}

func (w *Window) Capacity() int {
	return len(w.values)
}

// Snapshot returns a copy of the held samples, oldest first.
func (w *Window) Snapshot() []int64 {
	out := make([]int64, 0, w.count)
	if w.count < len(w.values) {
		return append(out, w.values[:w.count]...)
	}
	out = append(out, w.values[w.index:]...)
	return append(out, w.values[:w.index]...)
}
