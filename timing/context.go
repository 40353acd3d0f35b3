// Package timing defines how the execution core observes time. The
// core never talks to the event engine directly; it sees a Context and
// nothing else, which keeps the scheduler testable without an engine.
package timing

// Tick counts accelerator clock cycles from the start of an invocation.
type Tick uint64

// Context is the core's window onto time.
type Context interface {
	// CurrentTick returns the cycle now being executed.
	CurrentTick() Tick

	// TickLater requests that the core be ticked again. Safe to call
	// multiple times within one cycle.
	TickLater()
}

// ManualContext drives time by hand in unit tests.
type ManualContext struct {
	Now       Tick
	Requested bool
}

// CurrentTick returns the manually advanced cycle.
func (c *ManualContext) CurrentTick() Tick {
	return c.Now
}

// TickLater records that another tick was requested.
func (c *ManualContext) TickLater() {
	c.Requested = true
}

// Advance moves to the next cycle and clears the tick request.
func (c *ManualContext) Advance() {
	c.Now++
	c.Requested = false
}
