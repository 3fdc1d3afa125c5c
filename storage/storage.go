// Package storage defines the network description read by the adapter: chunk
// statistics, placement sets and connectivity sets.
package storage

import (
	"context"
	"errors"

	"github.com/sarchlab/neuronbridge/chunk"
	"github.com/sarchlab/neuronbridge/connectivity"
	"github.com/sarchlab/neuronbridge/placement"
)

// ErrNotFound is returned when a placement set or a connectivity set does not
// exist.
var ErrNotFound = errors.New("not found")

// Storage gives access to a stored network.
type Storage interface {
	// ChunkStats returns the statistics of every chunk of the network.
	ChunkStats(ctx context.Context) (map[chunk.Chunk]chunk.Stats, error)

	// PlacementSet returns the cells of a cell type.
	PlacementSet(ctx context.Context, cellType string) (placement.Set, error)

	// ConnectivitySets returns every connectivity set of the network.
	ConnectivitySets(ctx context.Context) ([]connectivity.Set, error)

	// ConnectivitySet returns a connectivity set by name.
	ConnectivitySet(ctx context.Context, name string) (connectivity.Set, error)
}
