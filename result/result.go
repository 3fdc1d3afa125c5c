// Package result collects the signals recorded during a simulation.
package result

import (
	"maps"
	"sync"
)

// A Signal is a series of samples of one recorded quantity.
type Signal struct {
	Name        string
	Unit        string
	Annotations map[string]any
	Times       []float64
	Values      []float64
}

// A Recorder produces signals when the simulation ends.
type Recorder interface {
	Flush() []Signal
}

// RecorderFunc is a function that implements the Recorder interface.
type RecorderFunc func() []Signal

// Flush calls the function.
func (f RecorderFunc) Flush() []Signal {
	return f()
}

// A Result holds the recorders of a simulation, and the signals they produced
// once flushed.
type Result struct {
	Simulation string

	lock      sync.Mutex
	recorders []Recorder
	signals   []Signal
	flushed   bool
}

// New creates an empty Result.
func New(simulation string) *Result {
	return &Result{Simulation: simulation}
}

// AddRecorder registers a recorder. Recorders added after Flush are ignored.
func (r *Result) AddRecorder(rec Recorder) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.flushed {
		return
	}

	r.recorders = append(r.recorders, rec)
}

// NumRecorders returns the number of registered recorders.
func (r *Result) NumRecorders() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	return len(r.recorders)
}

// Flush collects the signals of every recorder. Only the first call has an
// effect.
func (r *Result) Flush() {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.flushed {
		return
	}

	for _, rec := range r.recorders {
		r.signals = append(r.signals, rec.Flush()...)
	}

	r.flushed = true
}

// Flushed reports whether Flush has been called.
func (r *Result) Flushed() bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.flushed
}

// Signals returns the flushed signals.
func (r *Result) Signals() []Signal {
	r.lock.Lock()
	defer r.lock.Unlock()

	return append([]Signal(nil), r.signals...)
}

// A Trace is a Recorder that accumulates samples until it is flushed. Samples
// taken after the flush are dropped.
type Trace struct {
	lock   sync.Mutex
	signal Signal
	closed bool
}

// NewTrace creates a Trace. The annotations are copied.
func NewTrace(name, unit string, annotations map[string]any) *Trace {
	return &Trace{
		signal: Signal{
			Name:        name,
			Unit:        unit,
			Annotations: maps.Clone(annotations),
		},
	}
}

// Sample appends a sample.
func (t *Trace) Sample(time, value float64) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.closed {
		return
	}

	t.signal.Times = append(t.signal.Times, time)
	t.signal.Values = append(t.signal.Values, value)
}

// Len returns the number of samples.
func (t *Trace) Len() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return len(t.signal.Values)
}

// Flush closes the trace and returns its signal.
func (t *Trace) Flush() []Signal {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.closed = true

	return []Signal{t.signal}
}
