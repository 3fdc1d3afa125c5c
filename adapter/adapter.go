// Package adapter prepares stored networks on a parallel engine and runs them.
//
// Every worker runs its own NeuronAdapter on its own engine rank. Preparing a
// simulation distributes the chunks of the network over the workers, creates
// the cells placed in the local chunks, allocates the GIDs of the spike
// transmitters and receivers, connects the cells and installs the devices.
// No message is exchanged during the preparation: every worker derives the
// same GIDs from the stored network.
package adapter

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/neuronbridge/chunk"
	"github.com/sarchlab/neuronbridge/connectivity"
	"github.com/sarchlab/neuronbridge/engine"
	"github.com/sarchlab/neuronbridge/gid"
	"github.com/sarchlab/neuronbridge/hooking"
	"github.com/sarchlab/neuronbridge/placement"
	"github.com/sarchlab/neuronbridge/result"
	"github.com/sarchlab/neuronbridge/simulation"
	"github.com/sarchlab/neuronbridge/tracing"
)

const (
	// InitialVoltage is the membrane potential every cell starts from, in mV.
	InitialVoltage = -65

	// MaxStep is the longest time the workers integrate without meeting, in
	// ms.
	MaxStep = 10

	// ProgressStep is the simulation time between two progress reports, in
	// ms.
	ProgressStep = 1
)

// A NeuronAdapter prepares and runs simulations on one engine rank.
type NeuronAdapter struct {
	*hooking.HookableBase

	engine   engine.Context
	reserver *gid.Reserver
	logger   logrus.FieldLogger

	lock     sync.Mutex
	simdata  map[*simulation.Simulation]*SimulationData
	finished map[*simulation.Simulation]State
}

// Name identifies the adapter by the rank it drives.
func (a *NeuronAdapter) Name() string {
	return fmt.Sprintf("Adapter[%d]", a.engine.Rank())
}

// Engine returns the engine rank the adapter drives.
func (a *NeuronAdapter) Engine() engine.Context {
	return a.engine
}

// State returns the lifecycle stage of a simulation.
func (a *NeuronAdapter) State(sim *simulation.Simulation) State {
	a.lock.Lock()
	defer a.lock.Unlock()

	if d, ok := a.simdata[sim]; ok {
		return d.State()
	}

	if s, ok := a.finished[sim]; ok {
		return s
	}

	return Unprepared
}

// Data returns the prepared state of a simulation.
func (a *NeuronAdapter) Data(sim *simulation.Simulation) (*SimulationData, bool) {
	a.lock.Lock()
	defer a.lock.Unlock()

	d, ok := a.simdata[sim]

	return d, ok
}

func (a *NeuronAdapter) log(sim *simulation.Simulation) logrus.FieldLogger {
	return a.logger.WithFields(logrus.Fields{
		"simulation": sim.Name(),
		"rank":       a.engine.Rank(),
	})
}

// Prepare builds the simulation on this worker. A failed preparation leaves
// nothing behind.
func (a *NeuronAdapter) Prepare(
	ctx context.Context,
	sim *simulation.Simulation,
) (*SimulationData, error) {
	a.lock.Lock()
	if _, ok := a.simdata[sim]; ok {
		a.lock.Unlock()
		return nil, fmt.Errorf("%s: %w", sim.Name(), ErrAlreadyPrepared)
	}

	data := newSimulationData(sim, a.engine)
	a.simdata[sim] = data
	delete(a.finished, sim)
	a.lock.Unlock()

	err := a.prepare(ctx, data)
	if err != nil {
		a.discard(data, Failed)
		return nil, fmt.Errorf("preparing %s: %w", sim.Name(), err)
	}

	data.setState(Prepared)
	a.InvokeHook(hooking.HookCtx{
		Domain: a,
		Pos:    HookPosPrepared,
		Item:   data,
	})

	return data, nil
}

func (a *NeuronAdapter) prepare(ctx context.Context, data *SimulationData) error {
	sim := data.simulation
	log := a.log(sim)

	task := xid.New().String()
	tracing.StartTask(task, "", a, "prepare", sim.Name(), data)
	defer tracing.EndTask(task, a)

	log.Info("Preparing simulation")
	a.engine.SetParameters(engine.Parameters{
		DT:      sim.Resolution(),
		Celsius: sim.Temperature(),
		TStop:   sim.Duration(),
	})

	log.Debug("Load balancing")
	err := a.phase(task, "load_balance", func() error {
		return a.loadBalance(ctx, data)
	})
	if err != nil {
		return err
	}

	log.Debug("Creating neurons")
	err = a.phase(task, "create_neurons", func() error {
		return a.createNeurons(ctx, data)
	})
	if err != nil {
		return err
	}

	log.Debug("Creating transmitters")
	err = a.phase(task, "create_connections", func() error {
		return a.createConnections(ctx, data)
	})
	if err != nil {
		return err
	}

	log.Debug("Creating devices")

	return a.phase(task, "create_devices", func() error {
		return a.createDevices(ctx, data)
	})
}

// phase traces f as a step of the parent task.
func (a *NeuronAdapter) phase(parent, what string, f func() error) error {
	id := xid.New().String()
	tracing.StartTask(id, parent, a, "phase", what, nil)
	defer tracing.EndTask(id, a)

	return f()
}

func (a *NeuronAdapter) loadBalance(ctx context.Context, data *SimulationData) error {
	stats, err := data.simulation.Storage().ChunkStats(ctx)
	if err != nil {
		return fmt.Errorf("loading chunk stats: %w", err)
	}

	data.allocation = chunk.NewAllocation(stats, a.engine.Size())
	data.chunks = data.allocation.Chunks(a.engine.Rank())

	// Reserved before any worker-local step can fail so that the reservers
	// of all workers stay in step.
	rng := a.reserver.Reserve(chunk.TotalOutgoing(stats))
	data.allocator = gid.NewAllocator(rng)
	a.log(data.simulation).Debugf("Allocated GIDs %d to %d", rng.First, rng.Last)

	return nil
}

func (a *NeuronAdapter) createNeurons(ctx context.Context, data *SimulationData) error {
	offset := 0

	for _, model := range data.simulation.CellModels() {
		ps, err := data.simulation.Storage().PlacementSet(ctx, model.CellType())
		if err != nil {
			return err
		}

		layout, err := placement.LayoutOf(ctx, ps, data.chunks)
		if err != nil {
			return fmt.Errorf("counting %s cells: %w", model.CellType(), err)
		}

		data.layouts[model.CellType()] = layout
		data.cellOffsets[model.CellType()] = offset

		if layout.Len() == 0 {
			continue
		}

		err = a.createPopulation(ctx, data, model, ps)
		if err != nil {
			return err
		}

		offset += layout.Len()
	}

	return nil
}

func (a *NeuronAdapter) createPopulation(
	ctx context.Context,
	data *SimulationData,
	model simulation.CellModel,
	ps placement.Set,
) error {
	loaded, err := placement.Load(ctx, ps, data.chunks)
	if err != nil {
		return fmt.Errorf("loading %s cells: %w", model.CellType(), err)
	}

	instances, err := model.CreateInstances(loaded)
	if err != nil {
		return fmt.Errorf("creating %s cells: %w", model.Name(), err)
	}

	if len(instances) != loaded.Len() {
		return fmt.Errorf("cell model %s created %d cells out of %d",
			model.Name(), len(instances), loaded.Len())
	}

	data.populations[model.CellType()] = NewPopulation(model, instances)

	return nil
}

func (a *NeuronAdapter) createConnections(ctx context.Context, data *SimulationData) error {
	sets, err := a.connectivitySets(ctx, data.simulation)
	if err != nil {
		return err
	}

	if err := a.allocateTransmitters(ctx, data, sets); err != nil {
		return err
	}

	for i, model := range data.simulation.ConnectionModels() {
		err := model.CreateConnections(ctx, data, sets[i])
		if err != nil {
			return fmt.Errorf("connecting %s: %w", model.Name(), err)
		}
	}

	return nil
}

// connectivitySets returns the connectivity set of every connection model,
// in connection model order.
func (a *NeuronAdapter) connectivitySets(
	ctx context.Context,
	sim *simulation.Simulation,
) ([]connectivity.Set, error) {
	models := sim.ConnectionModels()
	sets := make([]connectivity.Set, 0, len(models))

	for _, model := range models {
		cs, err := sim.Storage().ConnectivitySet(ctx, model.Name())
		if err != nil {
			return nil, err
		}

		sets = append(sets, cs)
	}

	return sets, nil
}

func (a *NeuronAdapter) allocateTransmitters(
	ctx context.Context,
	data *SimulationData,
	sets []connectivity.Set,
) error {
	layouts := make(map[string]gid.Layout)
	for _, cs := range sets {
		for _, cellType := range []string{cs.PreType(), cs.PostType()} {
			if err := a.ensureLayout(ctx, data, cellType); err != nil {
				return err
			}

			layouts[cellType] = data.layouts[cellType]
		}
	}

	tm, err := data.allocator.Allocate(ctx, sets, data.chunks, layouts)
	if err != nil {
		return err
	}

	data.transMap = tm

	return nil
}

// ensureLayout computes the layout of a cell type that no cell model created.
func (a *NeuronAdapter) ensureLayout(
	ctx context.Context,
	data *SimulationData,
	cellType string,
) error {
	if _, ok := data.layouts[cellType]; ok {
		return nil
	}

	ps, err := data.simulation.Storage().PlacementSet(ctx, cellType)
	if err != nil {
		return err
	}

	layout, err := placement.LayoutOf(ctx, ps, data.chunks)
	if err != nil {
		return fmt.Errorf("counting %s cells: %w", cellType, err)
	}

	data.layouts[cellType] = layout

	return nil
}

func (a *NeuronAdapter) createDevices(ctx context.Context, data *SimulationData) error {
	for _, device := range data.simulation.Devices() {
		if err := device.Implement(ctx, data); err != nil {
			return fmt.Errorf("implementing device %s: %w", device.Name(), err)
		}
	}

	return nil
}

// Run runs prepared simulations together, up to the longest duration. The
// simulations are released afterwards, whether the run succeeded or not. The
// results are returned even if the run failed.
//
// Run is collective: every worker must run the same simulations.
func (a *NeuronAdapter) Run(
	ctx context.Context,
	sims ...*simulation.Simulation,
) ([]*result.Result, error) {
	data, err := a.claim(sims)
	if err != nil {
		return nil, err
	}

	results := make([]*result.Result, len(data))
	for i, d := range data {
		results[i] = d.result
	}

	task := xid.New().String()
	tracing.StartTask(task, "", a, "run", simulationNames(sims), nil)
	err = a.run(ctx, sims)
	tracing.EndTask(task, a)

	state := Completed
	if err != nil {
		state = Failed
		a.engine.Abort(err)
	}

	for _, d := range data {
		a.discard(d, state)
	}

	return results, err
}

// claim moves the simulations to the running state.
func (a *NeuronAdapter) claim(sims []*simulation.Simulation) ([]*SimulationData, error) {
	a.lock.Lock()
	defer a.lock.Unlock()

	var unprepared []string
	for _, sim := range sims {
		d, ok := a.simdata[sim]
		if !ok || d.State() != Prepared {
			unprepared = append(unprepared, sim.Name())
		}
	}

	if len(unprepared) > 0 {
		return nil, &UnpreparedError{Simulations: unprepared}
	}

	data := make([]*SimulationData, 0, len(sims))
	for _, sim := range sims {
		d := a.simdata[sim]
		if slices.Contains(data, d) {
			return nil, fmt.Errorf("simulation %s listed twice", sim.Name())
		}

		data = append(data, d)
	}

	for _, d := range data {
		d.setState(Running)
	}

	return data, nil
}

func (a *NeuronAdapter) run(ctx context.Context, sims []*simulation.Simulation) error {
	log := a.logger.WithField("rank", a.engine.Rank())
	log.Info("Simulating...")

	if _, err := a.engine.SetMaxStep(ctx, MaxStep); err != nil {
		return err
	}

	if err := a.engine.FInitialize(ctx, InitialVoltage); err != nil {
		return err
	}

	duration := 0.0
	for _, sim := range sims {
		duration = max(duration, sim.Duration())
	}

	progress := newProgressTracker(duration)
	for _, t := range progress.steps(ProgressStep) {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := a.engine.PSolve(ctx, t); err != nil {
			return err
		}

		a.InvokeHook(hooking.HookCtx{
			Domain: a,
			Pos:    HookPosProgress,
			Item:   sims,
			Detail: progress.tick(t),
		})
	}

	log.Info("Finished simulation.")

	return nil
}

// discard releases the GIDs and forgets the simulation.
func (a *NeuronAdapter) discard(d *SimulationData, state State) {
	if d.allocator != nil {
		a.engine.Release(d.allocator.Range())
	}

	d.result.Flush()
	d.setState(state)

	a.lock.Lock()
	defer a.lock.Unlock()

	delete(a.simdata, d.simulation)
	a.finished[d.simulation] = state
}

// Simulate prepares the simulations then runs them. A failed preparation
// aborts the engine, so the workers that prepared successfully do not wait
// for this one in the run.
func (a *NeuronAdapter) Simulate(
	ctx context.Context,
	sims ...*simulation.Simulation,
) ([]*result.Result, error) {
	for i, sim := range sims {
		if _, err := a.Prepare(ctx, sim); err != nil {
			for _, prepared := range sims[:i] {
				if d, ok := a.Data(prepared); ok {
					a.discard(d, Failed)
				}
			}

			a.engine.Abort(err)

			return nil, err
		}
	}

	return a.Run(ctx, sims...)
}

// Prepared returns the simulations prepared and not run yet.
func (a *NeuronAdapter) Prepared() []*simulation.Simulation {
	a.lock.Lock()
	defer a.lock.Unlock()

	var sims []*simulation.Simulation
	for _, sim := range slices.Collect(maps.Keys(a.simdata)) {
		if a.simdata[sim].State() == Prepared {
			sims = append(sims, sim)
		}
	}

	slices.SortFunc(sims, func(x, y *simulation.Simulation) int {
		return strings.Compare(x.Name(), y.Name())
	})

	return sims
}

func simulationNames(sims []*simulation.Simulation) string {
	names := make([]string, len(sims))
	for i, sim := range sims {
		names[i] = sim.Name()
	}

	return strings.Join(names, ",")
}
