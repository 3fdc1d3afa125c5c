package placement

import (
	"context"
	"maps"
	"slices"

	"github.com/sarchlab/neuronbridge/chunk"
)

// ChunkData holds the cells placed in one chunk. Every dataset other than
// Positions is optional and may be left nil.
type ChunkData struct {
	Positions    []Vec3
	Morphologies []string
	Rotations    []Vec3
	Additional   map[string][]float64
}

// MemorySet is a Set held in memory.
type MemorySet struct {
	cellType string
	chunks   map[chunk.Chunk]ChunkData
	offsets  map[chunk.Chunk]int
}

// NewMemorySet creates a MemorySet. Population ids are assigned in chunk id
// order.
func NewMemorySet(cellType string, chunks map[chunk.Chunk]ChunkData) *MemorySet {
	s := &MemorySet{
		cellType: cellType,
		chunks:   maps.Clone(chunks),
		offsets:  make(map[chunk.Chunk]int),
	}

	offset := 0
	for _, c := range chunk.NewSet(slices.Collect(maps.Keys(chunks))...) {
		s.offsets[c] = offset
		offset += len(chunks[c].Positions)
	}

	return s
}

// CellType returns the cell type of the set.
func (s *MemorySet) CellType() string {
	return s.cellType
}

// GlobalID returns the population id of the local-th cell of the chunk.
func (s *MemorySet) GlobalID(c chunk.Chunk, local int) int {
	return s.offsets[c] + local
}

// Len returns the number of cells in the set.
func (s *MemorySet) Len() int {
	n := 0
	for _, d := range s.chunks {
		n += len(d.Positions)
	}

	return n
}

// ChunkCounts returns the number of cells per chunk.
func (s *MemorySet) ChunkCounts(_ context.Context) (map[chunk.Chunk]int, error) {
	counts := make(map[chunk.Chunk]int)
	for c, d := range s.chunks {
		if len(d.Positions) > 0 {
			counts[c] = len(d.Positions)
		}
	}

	return counts, nil
}

// IDs returns the population ids of the cells in the chunks.
func (s *MemorySet) IDs(_ context.Context, chunks []chunk.Chunk) ([]int, error) {
	ids := []int{}
	for _, c := range chunk.NewSet(chunks...) {
		for i := range s.chunks[c].Positions {
			ids = append(ids, s.offsets[c]+i)
		}
	}

	return ids, nil
}

// Positions returns the positions of the cells in the chunks.
func (s *MemorySet) Positions(_ context.Context, chunks []chunk.Chunk) ([]Vec3, error) {
	return gather(s, chunks, func(d ChunkData) []Vec3 { return d.Positions })
}

// Morphologies returns the morphology names of the cells in the chunks.
func (s *MemorySet) Morphologies(_ context.Context, chunks []chunk.Chunk) ([]string, error) {
	return gather(s, chunks, func(d ChunkData) []string { return d.Morphologies })
}

// Rotations returns the rotations of the cells in the chunks.
func (s *MemorySet) Rotations(_ context.Context, chunks []chunk.Chunk) ([]Vec3, error) {
	return gather(s, chunks, func(d ChunkData) []Vec3 { return d.Rotations })
}

// Additional returns the additional columns of the cells in the chunks. Only
// the columns stored for every non-empty chunk are returned.
func (s *MemorySet) Additional(_ context.Context, chunks []chunk.Chunk) (map[string][]float64, error) {
	var names []string
	for _, d := range s.chunks {
		if len(d.Positions) == 0 {
			continue
		}

		if len(d.Additional) == 0 {
			return nil, ErrDatasetNotFound
		}

		keys := slices.Sorted(maps.Keys(d.Additional))
		if names == nil {
			names = keys
		} else if !slices.Equal(names, keys) {
			return nil, ErrDatasetNotFound
		}
	}

	if names == nil {
		return nil, ErrDatasetNotFound
	}

	columns := make(map[string][]float64, len(names))
	for _, name := range names {
		columns[name] = []float64{}
		for _, c := range chunk.NewSet(chunks...) {
			columns[name] = append(columns[name], s.chunks[c].Additional[name]...)
		}
	}

	return columns, nil
}

func gather[T any](
	s *MemorySet,
	chunks []chunk.Chunk,
	field func(ChunkData) []T,
) ([]T, error) {
	for _, d := range s.chunks {
		if len(d.Positions) > 0 && len(field(d)) != len(d.Positions) {
			return nil, ErrDatasetNotFound
		}
	}

	values := []T{}
	for _, c := range chunk.NewSet(chunks...) {
		values = append(values, field(s.chunks[c])...)
	}

	return values, nil
}

var _ Set = (*MemorySet)(nil)
