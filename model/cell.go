// Package model provides the cell models, connection models and devices that
// come with neuronbridge.
package model

import (
	"github.com/sarchlab/neuronbridge/placement"
	"github.com/sarchlab/neuronbridge/simulation"
)

// A PointCell is a cell without geometry.
type PointCell struct {
	id         int
	cellType   string
	Position   placement.Vec3
	Morphology string
	Rotation   placement.Vec3
	Parameters map[string]float64
}

// ID returns the population id of the cell.
func (c *PointCell) ID() int {
	return c.id
}

// CellType returns the cell type of the cell.
func (c *PointCell) CellType() string {
	return c.cellType
}

// PointCellModel creates PointCells. The parameters of a cell are the model
// parameters overridden by the additional datasets of the cell.
type PointCellModel struct {
	name       string
	cellType   string
	parameters map[string]float64
}

// NewPointCellModel creates a PointCellModel.
func NewPointCellModel(name, cellType string) *PointCellModel {
	return &PointCellModel{
		name:       name,
		cellType:   cellType,
		parameters: make(map[string]float64),
	}
}

// WithParameter sets the default value of a parameter.
func (m *PointCellModel) WithParameter(name string, value float64) *PointCellModel {
	m.parameters[name] = value
	return m
}

// Name returns the name of the model.
func (m *PointCellModel) Name() string {
	return m.name
}

// CellType returns the cell type the model creates cells of.
func (m *PointCellModel) CellType() string {
	return m.cellType
}

// CreateInstances creates one PointCell per loaded cell.
func (m *PointCellModel) CreateInstances(data *placement.Data) ([]simulation.Instance, error) {
	instances := make([]simulation.Instance, data.Len())

	for i, id := range data.IDs {
		c := &PointCell{
			id:         id,
			cellType:   m.cellType,
			Parameters: make(map[string]float64, len(m.parameters)),
		}

		c.Position, _ = data.Positions.At(i)
		c.Morphology, _ = data.Morphologies.At(i)
		c.Rotation, _ = data.Rotations.At(i)

		for name, value := range m.parameters {
			c.Parameters[name] = value
		}

		extra, _ := data.Additional.At(i)
		for name, value := range extra {
			c.Parameters[name] = value
		}

		instances[i] = c
	}

	return instances, nil
}

var _ simulation.CellModel = (*PointCellModel)(nil)
