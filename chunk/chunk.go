// Package chunk describes the spatial partition units of a network and how
// they are distributed over the workers of a parallel run.
package chunk

import (
	"fmt"
	"slices"
)

// A Chunk is a spatial partition of the simulated volume, identified by its
// integer coordinates on the chunk grid.
type Chunk struct {
	X, Y, Z int16
}

// ID packs the chunk coordinates into a single integer. Chunks are ordered by
// their ID.
func (c Chunk) ID() uint64 {
	return uint64(uint16(c.X)) |
		uint64(uint16(c.Y))<<16 |
		uint64(uint16(c.Z))<<32
}

// FromID restores a chunk from its packed ID.
func FromID(id uint64) Chunk {
	return Chunk{
		X: int16(uint16(id)),
		Y: int16(uint16(id >> 16)),
		Z: int16(uint16(id >> 32)),
	}
}

func (c Chunk) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}

// Compare orders chunks by ID.
func Compare(a, b Chunk) int {
	ai, bi := a.ID(), b.ID()

	switch {
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	default:
		return 0
	}
}

// Stats holds the traffic statistics of a chunk.
type Stats struct {
	Placed         int
	ConnectionsIn  int
	ConnectionsOut int
}

// TotalOutgoing sums the outgoing connections of all the chunks.
func TotalOutgoing(stats map[Chunk]Stats) int {
	total := 0
	for _, s := range stats {
		total += s.ConnectionsOut
	}

	return total
}

// A Set is a sorted collection of distinct chunks.
type Set []Chunk

// NewSet sorts the chunks and removes duplicates.
func NewSet(chunks ...Chunk) Set {
	s := slices.Clone(chunks)
	slices.SortFunc(s, Compare)

	return Set(slices.Compact(s))
}

// Contains reports whether the chunk is part of the set.
func (s Set) Contains(c Chunk) bool {
	_, found := slices.BinarySearchFunc(s, c, Compare)
	return found
}
