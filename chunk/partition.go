package chunk

import (
	"maps"
	"slices"
)

// Partition distributes the chunks over size workers. The chunks are sorted by
// ID and dealt round robin, so worker r owns sorted[r], sorted[r+size], ...
// The result only depends on the chunk ids, every worker computes the same
// partition.
func Partition(chunks []Chunk, size int) [][]Chunk {
	if size <= 0 {
		return nil
	}

	sorted := NewSet(chunks...)
	nodes := make([][]Chunk, size)

	for rank := range nodes {
		nodes[rank] = []Chunk{}
		for i := rank; i < len(sorted); i += size {
			nodes[rank] = append(nodes[rank], sorted[i])
		}
	}

	return nodes
}

// An Allocation records which worker owns which chunk.
type Allocation struct {
	NodeChunks [][]Chunk
	ChunkNode  map[Chunk]int
}

// NewAllocation partitions the chunks that appear in the statistics over size
// workers. The statistics themselves do not weigh in.
func NewAllocation(stats map[Chunk]Stats, size int) *Allocation {
	chunks := slices.Collect(maps.Keys(stats))

	a := &Allocation{
		NodeChunks: Partition(chunks, size),
		ChunkNode:  make(map[Chunk]int),
	}

	for node, owned := range a.NodeChunks {
		for _, c := range owned {
			a.ChunkNode[c] = node
		}
	}

	return a
}

// NumNodes returns the number of workers in the allocation.
func (a *Allocation) NumNodes() int {
	return len(a.NodeChunks)
}

// Chunks returns the chunks owned by the given rank.
func (a *Allocation) Chunks(rank int) []Chunk {
	if rank < 0 || rank >= len(a.NodeChunks) {
		return nil
	}

	return a.NodeChunks[rank]
}

// Owner returns the rank that owns the chunk.
func (a *Allocation) Owner(c Chunk) (int, bool) {
	node, ok := a.ChunkNode[c]
	return node, ok
}
