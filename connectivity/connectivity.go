// Package connectivity provides read-only views over the connectivity sets of
// a network.
package connectivity

import (
	"context"
	"slices"
	"strings"

	"github.com/sarchlab/neuronbridge/chunk"
)

// An Endpoint is one side of a connection.
type Endpoint struct {
	// Chunk is the chunk the cell is placed in.
	Chunk chunk.Chunk

	// Local is the index of the cell within its chunk.
	Local int

	// Global is the id of the cell within its population.
	Global int

	Branch int
	Point  int
}

// An Edge is a directed connection between two cells.
type Edge struct {
	Pre  Endpoint
	Post Endpoint
}

// A Set is a named collection of edges from one cell type to another.
type Set interface {
	Name() string
	PreType() string
	PostType() string

	// All returns every edge of the set.
	All(ctx context.Context) ([]Edge, error)

	// From returns the edges whose pre-synaptic cell is in one of the chunks.
	From(ctx context.Context, chunks []chunk.Chunk) ([]Edge, error)

	// To returns the edges whose post-synaptic cell is in one of the chunks.
	To(ctx context.Context, chunks []chunk.Chunk) ([]Edge, error)
}

// SortedSets returns the sets ordered by name.
func SortedSets(sets []Set) []Set {
	sorted := slices.Clone(sets)
	slices.SortStableFunc(sorted, func(a, b Set) int {
		return strings.Compare(a.Name(), b.Name())
	})

	return sorted
}

// FilterFrom keeps the edges whose pre-synaptic cell is in the chunks.
func FilterFrom(edges []Edge, chunks []chunk.Chunk) []Edge {
	set := chunk.NewSet(chunks...)

	return slices.DeleteFunc(slices.Clone(edges), func(e Edge) bool {
		return !set.Contains(e.Pre.Chunk)
	})
}

// FilterTo keeps the edges whose post-synaptic cell is in the chunks.
func FilterTo(edges []Edge, chunks []chunk.Chunk) []Edge {
	set := chunk.NewSet(chunks...)

	return slices.DeleteFunc(slices.Clone(edges), func(e Edge) bool {
		return !set.Contains(e.Post.Chunk)
	})
}
