package connectivity

import (
	"context"
	"slices"

	"github.com/sarchlab/neuronbridge/chunk"
)

// MemorySet is a Set that keeps its edges in memory.
type MemorySet struct {
	name     string
	preType  string
	postType string
	edges    []Edge
}

// NewMemorySet creates a MemorySet.
func NewMemorySet(name, preType, postType string, edges []Edge) *MemorySet {
	return &MemorySet{
		name:     name,
		preType:  preType,
		postType: postType,
		edges:    slices.Clone(edges),
	}
}

// Name returns the name of the set.
func (s *MemorySet) Name() string {
	return s.name
}

// PreType returns the pre-synaptic cell type.
func (s *MemorySet) PreType() string {
	return s.preType
}

// PostType returns the post-synaptic cell type.
func (s *MemorySet) PostType() string {
	return s.postType
}

// Len returns the number of edges.
func (s *MemorySet) Len() int {
	return len(s.edges)
}

// All returns all the edges.
func (s *MemorySet) All(_ context.Context) ([]Edge, error) {
	return slices.Clone(s.edges), nil
}

// From returns the edges leaving the chunks.
func (s *MemorySet) From(_ context.Context, chunks []chunk.Chunk) ([]Edge, error) {
	return FilterFrom(s.edges, chunks), nil
}

// To returns the edges arriving in the chunks.
func (s *MemorySet) To(_ context.Context, chunks []chunk.Chunk) ([]Edge, error) {
	return FilterTo(s.edges, chunks), nil
}

var _ Set = (*MemorySet)(nil)
