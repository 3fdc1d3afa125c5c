package placement

import (
	"context"

	"github.com/sarchlab/neuronbridge/chunk"
)

// A Layout maps the cells of a population placed on a worker's chunks to
// their index in the worker-local population. Chunks are laid out in id order.
type Layout struct {
	chunks  chunk.Set
	offsets map[chunk.Chunk]int
	counts  map[chunk.Chunk]int
	length  int
}

// NewLayout builds the layout of the chunks given the per chunk cell counts.
func NewLayout(counts map[chunk.Chunk]int, chunks []chunk.Chunk) *Layout {
	l := &Layout{
		chunks:  chunk.NewSet(chunks...),
		offsets: make(map[chunk.Chunk]int),
		counts:  make(map[chunk.Chunk]int),
	}

	for _, c := range l.chunks {
		l.offsets[c] = l.length
		l.counts[c] = counts[c]
		l.length += counts[c]
	}

	return l
}

// LayoutOf reads the chunk counts of the placement set and builds the layout
// of the chunks.
func LayoutOf(ctx context.Context, s Set, chunks []chunk.Chunk) (*Layout, error) {
	counts, err := s.ChunkCounts(ctx)
	if err != nil {
		return nil, err
	}

	return NewLayout(counts, chunks), nil
}

// Len returns the number of cells in the layout.
func (l *Layout) Len() int {
	return l.length
}

// Chunks returns the chunks of the layout.
func (l *Layout) Chunks() []chunk.Chunk {
	return l.chunks
}

// Index returns the worker-local index of the local-th cell of the chunk.
func (l *Layout) Index(c chunk.Chunk, local int) (int, bool) {
	offset, ok := l.offsets[c]
	if !ok || local < 0 || local >= l.counts[c] {
		return 0, false
	}

	return offset + local, true
}
