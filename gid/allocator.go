package gid

import (
	"context"
	"fmt"
	"slices"

	"github.com/sarchlab/neuronbridge/chunk"
	"github.com/sarchlab/neuronbridge/connectivity"
)

// A Layout maps a cell placed in a chunk to its index in the worker-local
// population.
type Layout interface {
	Index(c chunk.Chunk, local int) (int, bool)
}

// An Allocator assigns the GIDs of one simulation preparation. It is not safe
// for concurrent use and must not be shared between simulations.
type Allocator struct {
	rng    Range
	next   GID
	blocks []Block

	// Both registries are keyed by pre-synaptic population. The transmitter
	// registry holds every sender of every processed set, the receiver
	// registry what this worker resolved for its incoming edges.
	transmitters map[string]map[Key]GID
	receivers    map[string]map[Key]GID
}

// NewAllocator creates an Allocator that draws GIDs from the range.
func NewAllocator(r Range) *Allocator {
	return &Allocator{
		rng:          r,
		next:         r.First,
		transmitters: make(map[string]map[Key]GID),
		receivers:    make(map[string]map[Key]GID),
	}
}

// Range returns the range the allocator draws from.
func (a *Allocator) Range() Range {
	return a.rng
}

// Next returns the start of the next block.
func (a *Allocator) Next() GID {
	return a.next
}

// Blocks returns the blocks allocated so far, in allocation order.
func (a *Allocator) Blocks() []Block {
	return slices.Clone(a.blocks)
}

// Transmitter returns the GID assigned to a sender of the population, if the
// sender took part in a processed set.
func (a *Allocator) Transmitter(population string, k Key) (GID, bool) {
	g, ok := a.transmitters[population][k]
	return g, ok
}

// Allocate assigns the GIDs of the sets, in set name order. The chunks are the
// chunks owned by this worker and layouts maps cell types to the layout of
// their population on this worker.
func (a *Allocator) Allocate(
	ctx context.Context,
	sets []connectivity.Set,
	chunks []chunk.Chunk,
	layouts map[string]Layout,
) (TransMap, error) {
	tm := make(TransMap, len(sets))

	for _, s := range connectivity.SortedSets(sets) {
		if _, dup := tm[s.Name()]; dup {
			return nil, fmt.Errorf("gid: connectivity set %q listed twice", s.Name())
		}

		t, err := a.AllocateSet(ctx, s, chunks, layouts[s.PreType()])
		if err != nil {
			return nil, err
		}

		tm[s.Name()] = t
	}

	return tm, nil
}

// AllocateSet assigns the GIDs of one set and advances the allocator by the
// number of distinct senders of the whole set.
func (a *Allocator) AllocateSet(
	ctx context.Context,
	s connectivity.Set,
	chunks []chunk.Chunk,
	layout Layout,
) (*Transceivers, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading edges of %s: %w", s.Name(), err)
	}

	senders := distinctSenders(all)
	first := a.next
	last := first + GID(len(senders))
	if last > a.rng.Last {
		return nil, inconsistent(s.Name(),
			"block [%d, %d) exceeds reserved range %s", first, last, a.rng)
	}

	gids := a.resolveSenders(s.PreType(), senders, first)

	t := &Transceivers{PreType: s.PreType()}

	t.Transmitters, err = a.mapTransmitters(ctx, s, chunks, layout, senders, gids)
	if err != nil {
		return nil, err
	}

	t.Receivers, err = a.mapReceivers(ctx, s, chunks, senders, gids)
	if err != nil {
		return nil, err
	}

	a.next = last
	a.blocks = append(a.blocks, Block{Set: s.Name(), First: first, Size: len(senders)})

	return t, nil
}

func distinctSenders(edges []connectivity.Edge) []Key {
	keys := make([]Key, 0, len(edges))
	for _, e := range edges {
		keys = append(keys, KeyOf(e.Pre))
	}

	slices.SortFunc(keys, CompareKeys)

	return slices.Compact(keys)
}

// resolveSenders returns the GID of every sender. Senders of the population
// that already have a GID keep it; the others take the GID of their index in
// the block.
func (a *Allocator) resolveSenders(population string, senders []Key, first GID) []GID {
	registry, ok := a.transmitters[population]
	if !ok {
		registry = make(map[Key]GID, len(senders))
		a.transmitters[population] = registry
	}

	gids := make([]GID, len(senders))
	for i, k := range senders {
		if g, seen := registry[k]; seen {
			gids[i] = g
			continue
		}

		gids[i] = first + GID(i)
		registry[k] = gids[i]
	}

	return gids
}

func indexOf(senders []Key, k Key) (int, bool) {
	return slices.BinarySearchFunc(senders, k, CompareKeys)
}

func (a *Allocator) mapTransmitters(
	ctx context.Context,
	s connectivity.Set,
	chunks []chunk.Chunk,
	layout Layout,
	senders []Key,
	gids []GID,
) (map[Coord]GID, error) {
	outgoing, err := s.From(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("loading outgoing edges of %s: %w", s.Name(), err)
	}

	transmitters := make(map[Coord]GID)
	if len(outgoing) == 0 {
		return transmitters, nil
	}

	if layout == nil {
		return nil, inconsistent(s.Name(),
			"no local population of %s for %d outgoing edges",
			s.PreType(), len(outgoing))
	}

	owners := make(map[Coord]Key)
	for _, e := range outgoing {
		k := KeyOf(e.Pre)

		i, found := indexOf(senders, k)
		if !found {
			return nil, inconsistent(s.Name(),
				"local sender %s is not a sender of the set", k)
		}

		cell, ok := layout.Index(e.Pre.Chunk, e.Pre.Local)
		if !ok {
			return nil, inconsistent(s.Name(),
				"sender %s in chunk %s is not placed on this worker", k, e.Pre.Chunk)
		}

		c := Coord{Cell: cell, Branch: e.Pre.Branch}
		if owner, mapped := owners[c]; mapped && owner != k {
			return nil, inconsistent(s.Name(),
				"local coordinate %s resolves to both %s and %s", c, owner, k)
		}

		if g, mapped := transmitters[c]; mapped && g != gids[i] {
			return nil, inconsistent(s.Name(),
				"local coordinate %s resolves to gids %d and %d", c, g, gids[i])
		}

		owners[c] = k
		transmitters[c] = gids[i]
	}

	return transmitters, nil
}

func (a *Allocator) mapReceivers(
	ctx context.Context,
	s connectivity.Set,
	chunks []chunk.Chunk,
	senders []Key,
	gids []GID,
) (map[Key]GID, error) {
	incoming, err := s.To(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("loading incoming edges of %s: %w", s.Name(), err)
	}

	registry, ok := a.receivers[s.PreType()]
	if !ok {
		registry = make(map[Key]GID)
		a.receivers[s.PreType()] = registry
	}

	receivers := make(map[Key]GID)
	for _, e := range incoming {
		k := KeyOf(e.Pre)

		i, found := indexOf(senders, k)
		if !found {
			return nil, inconsistent(s.Name(),
				"receiver listens to %s which is not a sender of the set", k)
		}

		g := gids[i]
		if prev, seen := registry[k]; seen && prev != g {
			return nil, inconsistent(s.Name(),
				"receiver of %s resolves to gid %d, previously %d", k, g, prev)
		}

		registry[k] = g
		receivers[k] = g
	}

	return receivers, nil
}
