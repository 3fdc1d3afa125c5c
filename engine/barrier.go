package engine

import (
	"context"
	"errors"
	"sync"
)

// ErrAborted is returned by the collective operations of a world that was
// aborted by one of its ranks.
var ErrAborted = errors.New("engine: world aborted")

type generation struct {
	done chan struct{}
	err  error
}

// A barrier blocks the ranks until all of them arrive. The last rank to arrive
// runs the action of the generation before releasing the others.
type barrier struct {
	lock    sync.Mutex
	size    int
	arrived int
	current *generation

	aborted  chan struct{}
	abortErr error
}

func newBarrier(size int) *barrier {
	return &barrier{
		size:    size,
		current: &generation{done: make(chan struct{})},
		aborted: make(chan struct{}),
	}
}

func (b *barrier) wait(ctx context.Context, action func() error) error {
	b.lock.Lock()
	if b.abortErr != nil {
		err := b.abortErr
		b.lock.Unlock()

		return err
	}

	gen := b.current
	b.arrived++

	if b.arrived == b.size {
		if action != nil {
			gen.err = action()
		}

		b.arrived = 0
		b.current = &generation{done: make(chan struct{})}
		close(gen.done)
		b.lock.Unlock()

		return gen.err
	}

	b.lock.Unlock()

	select {
	case <-gen.done:
		return gen.err
	case <-b.aborted:
		return b.abortError()
	case <-ctx.Done():
		b.abort(ctx.Err())
		return ctx.Err()
	}
}

func (b *barrier) abort(cause error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.abortErr != nil {
		return
	}

	b.abortErr = errors.Join(ErrAborted, cause)
	close(b.aborted)
}

func (b *barrier) abortError() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.abortErr
}
