package storage

import (
	"context"
	"fmt"
	"slices"

	"github.com/sarchlab/neuronbridge/chunk"
	"github.com/sarchlab/neuronbridge/connectivity"
	"github.com/sarchlab/neuronbridge/placement"
)

// Memory is a Storage that keeps the whole network in memory.
type Memory struct {
	placements map[string]*placement.MemorySet
	sets       map[string]*connectivity.MemorySet
}

// NewMemory creates an empty Memory storage.
func NewMemory() *Memory {
	return &Memory{
		placements: make(map[string]*placement.MemorySet),
		sets:       make(map[string]*connectivity.MemorySet),
	}
}

// AddPlacementSet stores a placement set. It panics if the cell type is
// already stored.
func (m *Memory) AddPlacementSet(s *placement.MemorySet) {
	if _, ok := m.placements[s.CellType()]; ok {
		panic(fmt.Sprintf("placement set %s already stored", s.CellType()))
	}

	m.placements[s.CellType()] = s
}

// AddConnectivitySet stores a connectivity set. It panics if the name is
// already used.
func (m *Memory) AddConnectivitySet(s *connectivity.MemorySet) {
	if _, ok := m.sets[s.Name()]; ok {
		panic(fmt.Sprintf("connectivity set %s already stored", s.Name()))
	}

	m.sets[s.Name()] = s
}

// CellTypes returns the stored cell types, sorted.
func (m *Memory) CellTypes() []string {
	types := make([]string, 0, len(m.placements))
	for t := range m.placements {
		types = append(types, t)
	}

	slices.Sort(types)

	return types
}

// ChunkStats counts the cells placed in each chunk and the edges that leave
// and enter it.
func (m *Memory) ChunkStats(ctx context.Context) (map[chunk.Chunk]chunk.Stats, error) {
	stats := make(map[chunk.Chunk]chunk.Stats)

	for _, ps := range m.placements {
		counts, err := ps.ChunkCounts(ctx)
		if err != nil {
			return nil, err
		}

		for c, n := range counts {
			s := stats[c]
			s.Placed += n
			stats[c] = s
		}
	}

	for _, cs := range m.sets {
		edges, err := cs.All(ctx)
		if err != nil {
			return nil, err
		}

		for _, e := range edges {
			out := stats[e.Pre.Chunk]
			out.ConnectionsOut++
			stats[e.Pre.Chunk] = out

			in := stats[e.Post.Chunk]
			in.ConnectionsIn++
			stats[e.Post.Chunk] = in
		}
	}

	return stats, nil
}

// PlacementSet returns the placement set of the cell type.
func (m *Memory) PlacementSet(_ context.Context, cellType string) (placement.Set, error) {
	s, ok := m.placements[cellType]
	if !ok {
		return nil, fmt.Errorf("placement set %s: %w", cellType, ErrNotFound)
	}

	return s, nil
}

// ConnectivitySets returns every connectivity set, sorted by name.
func (m *Memory) ConnectivitySets(_ context.Context) ([]connectivity.Set, error) {
	sets := make([]connectivity.Set, 0, len(m.sets))
	for _, s := range m.sets {
		sets = append(sets, s)
	}

	return connectivity.SortedSets(sets), nil
}

// ConnectivitySet returns a connectivity set by name.
func (m *Memory) ConnectivitySet(_ context.Context, name string) (connectivity.Set, error) {
	s, ok := m.sets[name]
	if !ok {
		return nil, fmt.Errorf("connectivity set %s: %w", name, ErrNotFound)
	}

	return s, nil
}

var _ Storage = (*Memory)(nil)
