package adapter

import (
	"math"
	"time"

	"github.com/sarchlab/neuronbridge/hooking"
)

// HookPosProgress triggers after every step of a run. The hook item is the
// slice of simulations being run and the detail is the Progress tick.
var HookPosProgress = &hooking.HookPos{Name: "Progress"}

// HookPosPrepared triggers after a simulation is prepared. The hook item is
// the SimulationData.
var HookPosPrepared = &hooking.HookPos{Name: "Prepared"}

// A Progress is a snapshot of the advancement of a run.
type Progress struct {
	// Time is the simulation time reached, in ms.
	Time float64

	// Duration is the simulation time to reach, in ms.
	Duration float64

	// Elapsed is the wall time since the run started.
	Elapsed time.Duration

	// Done is set on the last tick.
	Done bool
}

// Fraction returns the completed fraction of the run, between 0 and 1.
func (p Progress) Fraction() float64 {
	if p.Duration <= 0 {
		return 1
	}

	return math.Min(p.Time/p.Duration, 1)
}

// Remaining estimates the wall time left.
func (p Progress) Remaining() time.Duration {
	f := p.Fraction()
	if f == 0 {
		return 0
	}

	return time.Duration(float64(p.Elapsed) * (1 - f) / f)
}

type progressTracker struct {
	duration float64
	start    time.Time
}

func newProgressTracker(duration float64) *progressTracker {
	return &progressTracker{duration: duration, start: time.Now()}
}

// steps returns the stop times of the steps that cover the duration. The last
// step ends exactly at the duration.
func (t *progressTracker) steps(step float64) []float64 {
	n := int(math.Ceil(t.duration / step))
	times := make([]float64, 0, n)

	for i := 1; i <= n; i++ {
		times = append(times, math.Min(float64(i)*step, t.duration))
	}

	return times
}

func (t *progressTracker) tick(at float64) Progress {
	return Progress{
		Time:     at,
		Duration: t.duration,
		Elapsed:  time.Since(t.start),
		Done:     at >= t.duration,
	}
}
