package gid

import "sync"

// A Reserver hands out disjoint GID ranges, one per prepared simulation, so
// that simulations running in the same engine never share a GID.
type Reserver struct {
	lock sync.Mutex
	next GID
}

// NewReserver creates a Reserver whose first range starts at 0.
func NewReserver() *Reserver {
	return &Reserver{}
}

// Reserve returns the next n GIDs.
func (r *Reserver) Reserve(n int) Range {
	if n < 0 {
		panic("gid: cannot reserve a negative number of gids")
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	rng := Range{First: r.next, Last: r.next + GID(n)}
	r.next = rng.Last

	return rng
}

// Next returns the first GID of the next reservation.
func (r *Reserver) Next() GID {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.next
}
