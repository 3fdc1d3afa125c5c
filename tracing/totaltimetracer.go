package tracing

import (
	"sync"
)

// TotalTimeTracer sums the wall time spent in the tasks a filter accepts.
// Overlapping tasks, such as the preparations of several ranks, are summed
// independently.
type TotalTimeTracer struct {
	clock  TimeTeller
	filter TaskFilter

	lock    sync.Mutex
	total   float64
	count   int
	started map[string]float64
}

// NewTotalTimeTracer creates a TotalTimeTracer that reads time from clock.
func NewTotalTimeTracer(clock TimeTeller, filter TaskFilter) *TotalTimeTracer {
	return &TotalTimeTracer{
		clock:   clock,
		filter:  filter,
		started: make(map[string]float64),
	}
}

// TotalTime returns the summed duration of the ended tasks, in seconds.
func (t *TotalTimeTracer) TotalTime() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.total
}

// Count returns the number of ended tasks.
func (t *TotalTimeTracer) Count() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.count
}

// StartTask remembers when an accepted task starts.
func (t *TotalTimeTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	now := t.clock.CurrentTime()

	t.lock.Lock()
	t.started[task.ID] = now
	t.lock.Unlock()
}

// EndTask adds the duration of a task started earlier.
func (t *TotalTimeTracer) EndTask(task Task) {
	now := t.clock.CurrentTime()

	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.started[task.ID]
	if !ok {
		return
	}

	delete(t.started, task.ID)
	t.total += now - start
	t.count++
}
