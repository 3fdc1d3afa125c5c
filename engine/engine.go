// Package engine defines what the adapter needs from a parallel simulation
// engine, and provides World, an in-process engine whose ranks are goroutines.
package engine

import (
	"context"

	"github.com/sarchlab/neuronbridge/gid"
	"github.com/sarchlab/neuronbridge/hooking"
)

// Parameters are the global integration parameters of the engine.
type Parameters struct {
	// DT is the integration time step in ms.
	DT float64

	// Celsius is the temperature in degrees Celsius.
	Celsius float64

	// TStop is the stop time in ms.
	TStop float64
}

// A Source is the spike detector of a transmitter.
type Source struct {
	Population string
	Cell       int
	Branch     int
}

// A Target is the synapse a received spike is delivered to.
type Target struct {
	Population string
	Cell       int
	Synapse    string
}

// A NetCon delivers the spikes of a GID to a target.
type NetCon struct {
	GID    gid.GID
	Target Target
	Weight float64
	Delay  float64
}

// HookPosBeforeStep triggers before the ranks advance to the next step
// boundary. The hook item is the time of the boundary.
var HookPosBeforeStep = &hooking.HookPos{Name: "BeforeStep"}

// HookPosAfterStep triggers once all the ranks reached the step boundary.
var HookPosAfterStep = &hooking.HookPos{Name: "AfterStep"}

// A Context is the handle of one rank on the parallel engine. Methods that
// take a context.Context are collective: every rank must call them, in the
// same order.
type Context interface {
	hooking.Hookable

	// Rank returns the rank of the caller.
	Rank() int

	// Size returns the number of ranks.
	Size() int

	// SetParameters sets the global integration parameters.
	SetParameters(p Parameters)

	// Parameters returns the global integration parameters.
	Parameters() Parameters

	// SetMaxStep proposes the maximum interval between two rendezvous of the
	// ranks and returns the interval agreed on, the smallest proposal.
	SetMaxStep(ctx context.Context, dt float64) (float64, error)

	// FInitialize sets every cell to the initial voltage and resets the time
	// to 0. It fails if a connected GID is not owned by exactly one rank.
	FInitialize(ctx context.Context, v float64) error

	// PSolve advances every rank to the time tstop.
	PSolve(ctx context.Context, tstop float64) error

	// Time returns the current simulation time.
	Time() float64

	// SetGID2Node declares that the GID is owned by the rank.
	SetGID2Node(g gid.GID, rank int) error

	// Cell attaches the spike detector of a locally owned GID.
	Cell(g gid.GID, source Source) error

	// GIDConnect creates a connection that listens to the GID.
	GIDConnect(g gid.GID, target Target) (*NetCon, error)

	// Release forgets the GIDs of the range owned or listened to by this rank.
	Release(r gid.Range)

	// Abort makes the pending and future collective operations of every rank
	// fail.
	Abort(cause error)
}
