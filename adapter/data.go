package adapter

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/sarchlab/neuronbridge/chunk"
	"github.com/sarchlab/neuronbridge/engine"
	"github.com/sarchlab/neuronbridge/gid"
	"github.com/sarchlab/neuronbridge/placement"
	"github.com/sarchlab/neuronbridge/result"
	"github.com/sarchlab/neuronbridge/simulation"
)

// SimulationData is the state of one simulation prepared on this worker.
type SimulationData struct {
	simulation *simulation.Simulation
	engine     engine.Context

	lock  sync.Mutex
	state State

	allocation  *chunk.Allocation
	chunks      []chunk.Chunk
	populations map[string]*Population
	layouts     map[string]*placement.Layout
	cellOffsets map[string]int

	allocator   *gid.Allocator
	transMap    gid.TransMap
	sources     map[gid.GID]engine.Source
	connections map[string][]*engine.NetCon

	result *result.Result
}

func newSimulationData(sim *simulation.Simulation, e engine.Context) *SimulationData {
	return &SimulationData{
		simulation:  sim,
		engine:      e,
		state:       Unprepared,
		populations: make(map[string]*Population),
		layouts:     make(map[string]*placement.Layout),
		cellOffsets: make(map[string]int),
		sources:     make(map[gid.GID]engine.Source),
		connections: make(map[string][]*engine.NetCon),
		result:      result.New(sim.Name()),
	}
}

// Simulation returns the simulation the data was prepared for.
func (d *SimulationData) Simulation() *simulation.Simulation {
	return d.simulation
}

// Engine returns the engine handle of this worker.
func (d *SimulationData) Engine() engine.Context {
	return d.engine
}

// State returns the lifecycle stage of the simulation.
func (d *SimulationData) State() State {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.state
}

func (d *SimulationData) setState(s State) {
	d.lock.Lock()
	d.state = s
	d.lock.Unlock()
}

// Allocation returns the distribution of the chunks over the workers.
func (d *SimulationData) Allocation() *chunk.Allocation {
	return d.allocation
}

// Chunks returns the chunks owned by this worker.
func (d *SimulationData) Chunks() []chunk.Chunk {
	return d.chunks
}

// Populations returns the local populations by cell type.
func (d *SimulationData) Populations() map[string]*Population {
	return d.populations
}

// Population returns the local cells of a cell type.
func (d *SimulationData) Population(cellType string) ([]simulation.Instance, bool) {
	p, ok := d.populations[cellType]
	if !ok {
		return nil, false
	}

	return p.Instances(), true
}

// Layout returns the worker-local layout of a cell type.
func (d *SimulationData) Layout(cellType string) (*placement.Layout, bool) {
	l, ok := d.layouts[cellType]
	return l, ok
}

// CellOffsets returns, by cell type, the number of local cells of the cell
// types created before it.
func (d *SimulationData) CellOffsets() map[string]int {
	return d.cellOffsets
}

// Range returns the GIDs reserved for the simulation.
func (d *SimulationData) Range() gid.Range {
	if d.allocator == nil {
		return gid.Range{}
	}

	return d.allocator.Range()
}

// Blocks returns the GID blocks of the connectivity sets, in allocation
// order.
func (d *SimulationData) Blocks() []gid.Block {
	if d.allocator == nil {
		return nil
	}

	return d.allocator.Blocks()
}

// TransMap returns the GIDs of this worker, by connectivity set.
func (d *SimulationData) TransMap() gid.TransMap {
	return d.transMap
}

// Transmit makes the GID send the spikes of the source.
func (d *SimulationData) Transmit(g gid.GID, source engine.Source) error {
	if current, ok := d.sources[g]; ok {
		if current != source {
			return fmt.Errorf("gid %d already transmits %v, cannot transmit %v",
				g, current, source)
		}

		return nil
	}

	if err := d.engine.SetGID2Node(g, d.engine.Rank()); err != nil {
		return err
	}

	if err := d.engine.Cell(g, source); err != nil {
		return err
	}

	d.sources[g] = source

	return nil
}

// Transmitters returns the GIDs this worker transmits on, sorted.
func (d *SimulationData) Transmitters() []gid.GID {
	return slices.Sorted(maps.Keys(d.sources))
}

// AddConnections records the connections made by a connection model.
func (d *SimulationData) AddConnections(model string, ncs []*engine.NetCon) {
	d.connections[model] = append(d.connections[model], ncs...)
}

// Connections returns the connections made by a connection model.
func (d *SimulationData) Connections(model string) []*engine.NetCon {
	return d.connections[model]
}

// NumConnections returns the number of connections made on this worker.
func (d *SimulationData) NumConnections() int {
	n := 0
	for _, ncs := range d.connections {
		n += len(ncs)
	}

	return n
}

// Result returns the result of the simulation.
func (d *SimulationData) Result() *result.Result {
	return d.result
}

var _ simulation.Prepared = (*SimulationData)(nil)
