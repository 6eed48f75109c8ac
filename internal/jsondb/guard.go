package jsondb

import "sync"

// guard serializes mutations on a Store.
//
// mutation covers every read-modify-write sequence regardless of record type.
// tx only orders Transaction calls against each other; a bare Push does not
// wait for a running Transaction.
//
// A panic inside a locked section releases the lock on the way out. The next
// caller proceeds against whatever is on disk; there is no poisoned state.
type guard struct {
	mutation sync.Mutex
	tx       sync.Mutex
}

func (g *guard) mutate(fn func() error) error {
	g.mutation.Lock()
	defer g.mutation.Unlock()
	return fn()
}

func (g *guard) transaction(fn func() error) error {
	g.tx.Lock()
	defer g.tx.Unlock()
	return fn()
}
