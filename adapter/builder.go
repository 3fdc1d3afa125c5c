package adapter

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/neuronbridge/engine"
	"github.com/sarchlab/neuronbridge/gid"
	"github.com/sarchlab/neuronbridge/hooking"
	"github.com/sarchlab/neuronbridge/simulation"
)

// Builder can build NeuronAdapters.
type Builder struct {
	engine   engine.Context
	reserver *gid.Reserver
	logger   logrus.FieldLogger
}

// MakeBuilder creates a new Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithEngine sets the engine rank the adapter drives.
func (b Builder) WithEngine(e engine.Context) Builder {
	b.engine = e
	return b
}

// WithReserver sets where the GID ranges of the simulations come from. Every
// worker must reserve from a Reserver in the same state. By default, the
// adapter has its own Reserver starting at 0.
func (b Builder) WithReserver(r *gid.Reserver) Builder {
	b.reserver = r
	return b
}

// WithLogger sets the logger. The standard logrus logger is used by default.
func (b Builder) WithLogger(l logrus.FieldLogger) Builder {
	b.logger = l
	return b
}

// Build creates a new NeuronAdapter.
func (b Builder) Build() *NeuronAdapter {
	if b.engine == nil {
		panic("adapter engine is not set")
	}

	a := &NeuronAdapter{
		HookableBase: hooking.NewHookableBase(),
		engine:       b.engine,
		reserver:     b.reserver,
		logger:       b.logger,
		simdata:      make(map[*simulation.Simulation]*SimulationData),
		finished:     make(map[*simulation.Simulation]State),
	}

	if a.reserver == nil {
		a.reserver = gid.NewReserver()
	}

	if a.logger == nil {
		a.logger = logrus.StandardLogger()
	}

	return a
}
