package simulation

import (
	"fmt"
	"slices"

	"github.com/rs/xid"

	"github.com/sarchlab/neuronbridge/storage"
)

// Builder can be used to build a simulation.
type Builder struct {
	name        string
	resolution  float64
	temperature float64
	duration    float64
	storage     storage.Storage

	cellModels       []CellModel
	connectionModels []ConnectionModel
	devices          []Device
}

// MakeBuilder creates a new builder with a 0.1 ms resolution, at 32 °C, for
// 1000 ms.
func MakeBuilder() Builder {
	return Builder{
		resolution:  0.1,
		temperature: 32,
		duration:    1000,
	}
}

// WithName sets the name of the simulation. The id is used by default.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithStorage sets the network to simulate.
func (b Builder) WithStorage(s storage.Storage) Builder {
	b.storage = s
	return b
}

// WithResolution sets the integration time step in ms.
func (b Builder) WithResolution(dt float64) Builder {
	b.resolution = dt
	return b
}

// WithTemperature sets the temperature in degrees Celsius.
func (b Builder) WithTemperature(celsius float64) Builder {
	b.temperature = celsius
	return b
}

// WithDuration sets the simulated time in ms.
func (b Builder) WithDuration(duration float64) Builder {
	b.duration = duration
	return b
}

// WithCellModel adds a cell model.
func (b Builder) WithCellModel(m CellModel) Builder {
	b.cellModels = append(slices.Clone(b.cellModels), m)
	return b
}

// WithConnectionModel adds a connection model.
func (b Builder) WithConnectionModel(m ConnectionModel) Builder {
	b.connectionModels = append(slices.Clone(b.connectionModels), m)
	return b
}

// WithDevice adds a device.
func (b Builder) WithDevice(d Device) Builder {
	b.devices = append(slices.Clone(b.devices), d)
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.storage == nil {
		panic("simulation storage is not set")
	}

	if b.resolution <= 0 {
		panic("simulation resolution must be positive")
	}

	if b.duration < 0 {
		panic("simulation duration cannot be negative")
	}

	mustBeUnique("cell model", names(b.cellModels))
	mustBeUnique("connection model", names(b.connectionModels))
	mustBeUnique("device", names(b.devices))

	cellTypes := make([]string, 0, len(b.cellModels))
	for _, m := range b.cellModels {
		cellTypes = append(cellTypes, m.CellType())
	}

	mustBeUnique("cell type", cellTypes)
}

func names[T interface{ Name() string }](items []T) []string {
	n := make([]string, 0, len(items))
	for _, item := range items {
		n = append(n, item.Name())
	}

	return n
}

func mustBeUnique(kind string, names []string) {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			panic(fmt.Sprintf("%s %s defined twice", kind, name))
		}

		seen[name] = true
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:               xid.New().String(),
		name:             b.name,
		resolution:       b.resolution,
		temperature:      b.temperature,
		duration:         b.duration,
		storage:          b.storage,
		cellModels:       slices.SortedFunc(slices.Values(b.cellModels), byName),
		connectionModels: slices.SortedFunc(slices.Values(b.connectionModels), byName),
		devices:          slices.SortedFunc(slices.Values(b.devices), byName),
	}

	if s.name == "" {
		s.name = s.id
	}

	return s
}
