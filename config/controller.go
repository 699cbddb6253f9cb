package config

import "sync/atomic"

// Controller publishes the active configuration snapshot. Readers get a
// pointer to an immutable Snapshot; a reload constructs a complete new
// snapshot and swaps the pointer, so no reader can ever see mixed state.
type Controller struct {
	cur atomic.Pointer[Snapshot]
}

func NewController(snap *Snapshot) *Controller {
	c := &Controller{}
	c.cur.Store(snap)
	return c
}

// Current is cheap and safe from any goroutine.
func (c *Controller) Current() *Snapshot {
	return c.cur.Load()
}

// Swap publishes next and returns the previous snapshot. Callers validate
// next before calling; an invalid config must never reach this point.
func (c *Controller) Swap(next *Snapshot) *Snapshot {
	return c.cur.Swap(next)
}
