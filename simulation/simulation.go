// Package simulation describes a simulation: the stored network to simulate,
// the integration settings and the models that turn the network into engine
// objects.
package simulation

import (
	"context"
	"slices"
	"strings"

	"github.com/sarchlab/neuronbridge/chunk"
	"github.com/sarchlab/neuronbridge/connectivity"
	"github.com/sarchlab/neuronbridge/engine"
	"github.com/sarchlab/neuronbridge/gid"
	"github.com/sarchlab/neuronbridge/placement"
	"github.com/sarchlab/neuronbridge/result"
	"github.com/sarchlab/neuronbridge/storage"
)

// An Instance is a cell created on this worker by a cell model.
type Instance interface {
	// ID returns the population id of the cell.
	ID() int

	// CellType returns the cell type of the cell.
	CellType() string
}

// A CellModel creates the cells of one cell type.
type CellModel interface {
	Name() string
	CellType() string

	// CreateInstances creates one instance per loaded cell, in order.
	CreateInstances(data *placement.Data) ([]Instance, error)
}

// A ConnectionModel turns the connectivity set of the same name into engine
// connections.
type ConnectionModel interface {
	Name() string
	CreateConnections(ctx context.Context, data Prepared, cs connectivity.Set) error
}

// A Device stimulates or records the prepared network.
type Device interface {
	Name() string
	Implement(ctx context.Context, data Prepared) error
}

// Prepared is the state of a simulation being prepared on one worker, as seen
// by the connection models and the devices.
type Prepared interface {
	Simulation() *Simulation
	Engine() engine.Context

	// Chunks returns the chunks owned by this worker.
	Chunks() []chunk.Chunk

	// TransMap returns the GIDs of this worker, by connectivity set.
	TransMap() gid.TransMap

	// Population returns the local instances of a cell type.
	Population(cellType string) ([]Instance, bool)

	// Layout returns the worker-local layout of a cell type.
	Layout(cellType string) (*placement.Layout, bool)

	// Transmit makes the GID send the spikes of the source. Transmitting the
	// same source on the same GID again does nothing.
	Transmit(g gid.GID, source engine.Source) error

	// AddConnections records the connections made by a connection model.
	AddConnections(model string, ncs []*engine.NetCon)

	Result() *result.Result
}

// A Simulation is the description of one simulation.
type Simulation struct {
	id          string
	name        string
	resolution  float64
	temperature float64
	duration    float64
	storage     storage.Storage

	cellModels       []CellModel
	connectionModels []ConnectionModel
	devices          []Device
}

// ID returns the unique id of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Name returns the name of the simulation.
func (s *Simulation) Name() string {
	return s.name
}

// Resolution returns the integration time step in ms.
func (s *Simulation) Resolution() float64 {
	return s.resolution
}

// Temperature returns the temperature in degrees Celsius.
func (s *Simulation) Temperature() float64 {
	return s.temperature
}

// Duration returns the simulated time in ms.
func (s *Simulation) Duration() float64 {
	return s.duration
}

// Storage returns the network to simulate.
func (s *Simulation) Storage() storage.Storage {
	return s.storage
}

// CellModels returns the cell models sorted by name.
func (s *Simulation) CellModels() []CellModel {
	return s.cellModels
}

// ConnectionModels returns the connection models sorted by name.
func (s *Simulation) ConnectionModels() []ConnectionModel {
	return s.connectionModels
}

// Devices returns the devices sorted by name.
func (s *Simulation) Devices() []Device {
	return s.devices
}

// CellModel returns the cell model of a cell type.
func (s *Simulation) CellModel(cellType string) (CellModel, bool) {
	i := slices.IndexFunc(s.cellModels, func(m CellModel) bool {
		return m.CellType() == cellType
	})
	if i < 0 {
		return nil, false
	}

	return s.cellModels[i], true
}

func byName[T interface{ Name() string }](a, b T) int {
	return strings.Compare(a.Name(), b.Name())
}
