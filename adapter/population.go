package adapter

import (
	"fmt"

	"github.com/sarchlab/neuronbridge/simulation"
)

// A Population is the ordered list of the cells a cell model created on this
// worker.
type Population struct {
	model     simulation.CellModel
	instances []simulation.Instance
}

// NewPopulation creates a Population.
func NewPopulation(model simulation.CellModel, instances []simulation.Instance) *Population {
	return &Population{model: model, instances: instances}
}

// Model returns the cell model of the population.
func (p *Population) Model() simulation.CellModel {
	return p.model
}

// Len returns the number of cells.
func (p *Population) Len() int {
	return len(p.instances)
}

// At returns the i-th cell.
func (p *Population) At(i int) simulation.Instance {
	return p.instances[i]
}

// Instances returns the cells.
func (p *Population) Instances() []simulation.Instance {
	return p.instances
}

// Select returns the population of the cells at the indices, in the order of
// the indices.
func (p *Population) Select(indices ...int) (*Population, error) {
	selected := make([]simulation.Instance, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(p.instances) {
			return nil, fmt.Errorf("index %d out of population of %d cells",
				i, len(p.instances))
		}

		selected = append(selected, p.instances[i])
	}

	return NewPopulation(p.model, selected), nil
}

// Mask returns the population of the cells whose mask entry is true. Cells
// beyond the end of the mask are dropped.
func (p *Population) Mask(mask []bool) *Population {
	selected := make([]simulation.Instance, 0, len(p.instances))
	for i, keep := range mask {
		if keep && i < len(p.instances) {
			selected = append(selected, p.instances[i])
		}
	}

	return NewPopulation(p.model, selected)
}
