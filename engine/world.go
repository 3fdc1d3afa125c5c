package engine

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/sarchlab/neuronbridge/gid"
	"github.com/sarchlab/neuronbridge/hooking"
)

// A World is an in-process parallel engine. Each rank is driven by its own
// goroutine through the Context returned by Context(rank). The ranks meet at a
// barrier in every collective operation.
type World struct {
	barrier *barrier
	ranks   []*rankContext

	lock      sync.Mutex
	proposals []float64
	maxStep   float64
	owners    map[gid.GID]int
}

// NewWorld creates a World with size ranks.
func NewWorld(size int) *World {
	if size < 1 {
		panic("engine: a world needs at least one rank")
	}

	w := &World{
		barrier:   newBarrier(size),
		proposals: make([]float64, size),
		maxStep:   math.Inf(1),
		owners:    make(map[gid.GID]int),
	}

	for rank := 0; rank < size; rank++ {
		w.ranks = append(w.ranks, &rankContext{
			HookableBase: hooking.NewHookableBase(),
			world:        w,
			rank:         rank,
			owned:        make(map[gid.GID]*Source),
		})
	}

	return w
}

// Size returns the number of ranks.
func (w *World) Size() int {
	return len(w.ranks)
}

// Context returns the handle of a rank.
func (w *World) Context(rank int) Context {
	return w.ranks[rank]
}

// Abort releases every rank waiting in a collective operation. All following
// collective operations fail.
func (w *World) Abort(cause error) {
	w.barrier.abort(cause)
}

// Owner returns the rank that owned the GID at the last FInitialize.
func (w *World) Owner(g gid.GID) (int, bool) {
	w.lock.Lock()
	defer w.lock.Unlock()

	rank, ok := w.owners[g]

	return rank, ok
}

func (w *World) agreeOnMaxStep() error {
	w.lock.Lock()
	defer w.lock.Unlock()

	agreed := slices.Min(w.proposals)
	if agreed <= 0 {
		return fmt.Errorf("engine: max step must be positive, got %g", agreed)
	}

	w.maxStep = agreed

	return nil
}

func (w *World) currentMaxStep() float64 {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.maxStep
}

// validate builds the GID ownership table of all the ranks. It runs while
// every other rank is blocked in the barrier.
func (w *World) validate() error {
	w.lock.Lock()
	defer w.lock.Unlock()

	owners := make(map[gid.GID]int)
	for _, r := range w.ranks {
		for g, source := range r.owned {
			if other, taken := owners[g]; taken {
				return fmt.Errorf("engine: gid %d owned by ranks %d and %d", g, other, r.rank)
			}

			if source == nil {
				return fmt.Errorf("engine: gid %d on rank %d has no spike source", g, r.rank)
			}

			owners[g] = r.rank
		}
	}

	for _, r := range w.ranks {
		for _, nc := range r.netcons {
			if _, owned := owners[nc.GID]; !owned {
				return fmt.Errorf(
					"engine: rank %d listens to gid %d which no rank owns",
					r.rank, nc.GID)
			}
		}
	}

	w.owners = owners

	return nil
}
