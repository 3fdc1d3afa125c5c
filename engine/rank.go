package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sarchlab/neuronbridge/gid"
	"github.com/sarchlab/neuronbridge/hooking"
)

// ErrNotInitialized is returned by PSolve before FInitialize.
var ErrNotInitialized = errors.New("engine: not initialized")

type rankContext struct {
	*hooking.HookableBase

	world *World
	rank  int

	params Parameters
	vInit  float64

	timeLock    sync.RWMutex
	now         float64
	initialized bool

	// owned and netcons are guarded by world.lock, they are read by the
	// validation of FInitialize.
	owned   map[gid.GID]*Source
	netcons []*NetCon
}

func (c *rankContext) Rank() int {
	return c.rank
}

func (c *rankContext) Size() int {
	return c.world.Size()
}

func (c *rankContext) SetParameters(p Parameters) {
	c.params = p
}

func (c *rankContext) Parameters() Parameters {
	return c.params
}

func (c *rankContext) SetMaxStep(ctx context.Context, dt float64) (float64, error) {
	c.world.lock.Lock()
	c.world.proposals[c.rank] = dt
	c.world.lock.Unlock()

	err := c.world.barrier.wait(ctx, c.world.agreeOnMaxStep)
	if err != nil {
		return 0, err
	}

	return c.world.currentMaxStep(), nil
}

func (c *rankContext) FInitialize(ctx context.Context, v float64) error {
	err := c.world.barrier.wait(ctx, c.world.validate)
	if err != nil {
		return err
	}

	c.vInit = v
	c.writeNow(0)

	c.timeLock.Lock()
	c.initialized = true
	c.timeLock.Unlock()

	return nil
}

func (c *rankContext) PSolve(ctx context.Context, tstop float64) error {
	c.timeLock.RLock()
	initialized := c.initialized
	c.timeLock.RUnlock()

	if !initialized {
		return ErrNotInitialized
	}

	maxStep := c.world.currentMaxStep()
	for c.Time() < tstop {
		next := math.Min(c.Time()+maxStep, tstop)

		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosBeforeStep,
			Item:   next,
		})

		err := c.world.barrier.wait(ctx, nil)
		if err != nil {
			return err
		}

		c.writeNow(next)

		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosAfterStep,
			Item:   next,
		})
	}

	return nil
}

func (c *rankContext) Time() float64 {
	c.timeLock.RLock()
	defer c.timeLock.RUnlock()

	return c.now
}

func (c *rankContext) writeNow(t float64) {
	c.timeLock.Lock()
	c.now = t
	c.timeLock.Unlock()
}

func (c *rankContext) SetGID2Node(g gid.GID, rank int) error {
	if rank != c.rank {
		return nil
	}

	c.world.lock.Lock()
	defer c.world.lock.Unlock()

	if _, exists := c.owned[g]; exists {
		return fmt.Errorf("engine: gid %d already exists on rank %d", g, c.rank)
	}

	c.owned[g] = nil

	return nil
}

func (c *rankContext) Cell(g gid.GID, source Source) error {
	c.world.lock.Lock()
	defer c.world.lock.Unlock()

	current, owned := c.owned[g]
	if !owned {
		return fmt.Errorf("engine: gid %d is not owned by rank %d", g, c.rank)
	}

	if current != nil {
		return fmt.Errorf("engine: gid %d already has a spike source", g)
	}

	c.owned[g] = &source

	return nil
}

func (c *rankContext) GIDConnect(g gid.GID, target Target) (*NetCon, error) {
	if g < 0 {
		return nil, fmt.Errorf("engine: invalid gid %d", g)
	}

	nc := &NetCon{GID: g, Target: target}

	c.world.lock.Lock()
	c.netcons = append(c.netcons, nc)
	c.world.lock.Unlock()

	return nc, nil
}

func (c *rankContext) Release(r gid.Range) {
	c.world.lock.Lock()
	defer c.world.lock.Unlock()

	for g := range c.owned {
		if r.Contains(g) {
			delete(c.owned, g)
		}
	}

	kept := c.netcons[:0]
	for _, nc := range c.netcons {
		if !r.Contains(nc.GID) {
			kept = append(kept, nc)
		}
	}

	c.netcons = kept
}

func (c *rankContext) Abort(cause error) {
	c.world.Abort(cause)
}

var _ Context = (*rankContext)(nil)
