package client

import "sync/atomic"

// Guard admits one submission at a time and rejects re-entrant ones with ErrBusy.
type Guard struct {
	busy atomic.Bool
}

// Do runs fn unless another call through g is still running.
func (g *Guard) Do(fn func() error) error {
	if !g.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer g.busy.Store(false)
	return fn()
}

// Busy reports whether a submission is outstanding.
func (g *Guard) Busy() bool {
	return g.busy.Load()
}
