// Package gid assigns global identifiers to the spike transmission endpoints
// of a network.
//
// Every worker of a parallel run computes the assignment on its own, from
// data that every worker can read. Workers therefore agree on the GID of a
// transmitter without exchanging messages: the GID of a sender is the start of
// the block reserved for its connectivity set plus the index of the sender in
// the sorted list of all the senders of that set.
package gid

import (
	"cmp"
	"fmt"

	"github.com/sarchlab/neuronbridge/connectivity"
)

// A GID is a simulation-wide identifier of a spike source.
type GID int64

// A Key identifies a sending endpoint within its population: the population
// id of the cell and the branch the spikes are detected on.
type Key struct {
	Cell   int
	Branch int
}

// KeyOf returns the key of an endpoint.
func KeyOf(e connectivity.Endpoint) Key {
	return Key{Cell: e.Global, Branch: e.Branch}
}

// CompareKeys orders keys by cell, then by branch.
func CompareKeys(a, b Key) int {
	if c := cmp.Compare(a.Cell, b.Cell); c != 0 {
		return c
	}

	return cmp.Compare(a.Branch, b.Branch)
}

func (k Key) String() string {
	return fmt.Sprintf("(%d, %d)", k.Cell, k.Branch)
}

// A Coord identifies a sending endpoint on the worker that hosts it: the index
// of the cell in the worker-local population and the branch.
type Coord struct {
	Cell   int
	Branch int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d)", c.Cell, c.Branch)
}

// Transceivers holds the GIDs a worker needs for one connectivity set.
type Transceivers struct {
	PreType string

	// Transmitters maps the local senders to the GID they send on.
	Transmitters map[Coord]GID

	// Receivers maps the senders of the edges arriving on the worker to the
	// GID to listen to. The sender may live on another worker.
	Receivers map[Key]GID
}

// A TransMap holds the Transceivers of every connectivity set, by set name.
type TransMap map[string]*Transceivers

// A Range is the half open interval [First, Last) of GIDs.
type Range struct {
	First GID
	Last  GID
}

// Len returns the number of GIDs in the range.
func (r Range) Len() int64 {
	return int64(r.Last - r.First)
}

// Contains reports whether the GID is in the range.
func (r Range) Contains(g GID) bool {
	return g >= r.First && g < r.Last
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.First, r.Last)
}

// A Block is the contiguous run of GIDs used by one connectivity set.
type Block struct {
	Set   string
	First GID
	Size  int
}
