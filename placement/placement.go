// Package placement provides read access to the cells placed in the chunks of
// a network.
package placement

import (
	"context"
	"errors"

	"github.com/sarchlab/neuronbridge/chunk"
)

// ErrDatasetNotFound is returned when a placement set does not store an
// optional dataset.
var ErrDatasetNotFound = errors.New("dataset not found")

// Vec3 is a 3D vector.
type Vec3 [3]float64

// A Set gives access to the cells of one cell type. Cells are returned in
// chunk id order, and in placement order within a chunk.
type Set interface {
	CellType() string

	// ChunkCounts returns the number of cells in each chunk that has cells.
	ChunkCounts(ctx context.Context) (map[chunk.Chunk]int, error)

	// IDs returns the population ids of the cells in the chunks.
	IDs(ctx context.Context, chunks []chunk.Chunk) ([]int, error)

	// Positions, Morphologies, Rotations and Additional return
	// ErrDatasetNotFound if the set does not have the dataset.
	Positions(ctx context.Context, chunks []chunk.Chunk) ([]Vec3, error)
	Morphologies(ctx context.Context, chunks []chunk.Chunk) ([]string, error)
	Rotations(ctx context.Context, chunks []chunk.Chunk) ([]Vec3, error)
	Additional(ctx context.Context, chunks []chunk.Chunk) (map[string][]float64, error)
}

// Data is everything loaded for the cells of one population on one worker.
type Data struct {
	IDs          []int
	Positions    Column[Vec3]
	Morphologies Column[string]
	Rotations    Column[Vec3]
	Additional   Column[map[string]float64]
}

// Len returns the number of cells.
func (d *Data) Len() int {
	return len(d.IDs)
}

// Load reads the ids and all the optional datasets of the cells in the chunks.
// A missing optional dataset becomes an absent column.
func Load(ctx context.Context, s Set, chunks []chunk.Chunk) (*Data, error) {
	ids, err := s.IDs(ctx, chunks)
	if err != nil {
		return nil, err
	}

	d := &Data{IDs: ids}

	d.Positions, err = Optional(func() ([]Vec3, error) {
		return s.Positions(ctx, chunks)
	})
	if err != nil {
		return nil, err
	}

	d.Morphologies, err = Optional(func() ([]string, error) {
		return s.Morphologies(ctx, chunks)
	})
	if err != nil {
		return nil, err
	}

	d.Rotations, err = Optional(func() ([]Vec3, error) {
		return s.Rotations(ctx, chunks)
	})
	if err != nil {
		return nil, err
	}

	d.Additional, err = Optional(func() ([]map[string]float64, error) {
		columns, err := s.Additional(ctx, chunks)
		if err != nil {
			return nil, err
		}

		return transpose(columns, len(ids)), nil
	})
	if err != nil {
		return nil, err
	}

	return d, nil
}

func transpose(columns map[string][]float64, n int) []map[string]float64 {
	rows := make([]map[string]float64, n)
	for i := range rows {
		rows[i] = make(map[string]float64, len(columns))
		for name, values := range columns {
			if i < len(values) {
				rows[i][name] = values[i]
			}
		}
	}

	return rows
}
