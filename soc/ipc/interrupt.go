package ipc

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/clktmr/ameba/soc/cpu"
)

// Interrupts is the IPC interrupt controller. Each core has one interrupt line
// with a pending bit per channel.
type Interrupts interface {
	// Register installs h as the handler of channel ch on core.
	Register(core cpu.Core, ch Channel, h Handler, data any, prio int)

	// Unregister removes the handler of channel ch on core.
	Unregister(core cpu.Core, ch Channel)

	// Request raises the interrupt of channel ch for the peer of bank, i.e.
	// the core reading that bank.
	Request(bank cpu.Core, ch Channel)
}

type binding struct {
	handler Handler
	data    any
	prio    int
	bound   bool
}

// Controller implements Interrupts for a simulated SoC, where both cores are
// goroutines in the same process. A request sets the pending bit on the target
// core and wakes its Serve loop. Handlers of one core are never called
// concurrently.
type Controller struct {
	mtx      sync.Mutex
	handlers [cpu.NumCores][NumChannels]binding

	pending [cpu.NumCores]atomic.Uint32
	wakeup  [cpu.NumCores]chan struct{}
}

func NewController() *Controller {
	c := &Controller{}
	for i := range c.wakeup {
		c.wakeup[i] = make(chan struct{}, 1)
	}
	return c
}

func (c *Controller) Register(core cpu.Core, ch Channel, h Handler, data any, prio int) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.handlers[core][ch] = binding{h, data, prio, true}
}

func (c *Controller) Unregister(core cpu.Core, ch Channel) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.handlers[core][ch] = binding{}
}

// Status reports whether a handler is registered for ch on core and with which
// priority.
func (c *Controller) Status(core cpu.Core, ch Channel) (bound bool, prio int) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	b := &c.handlers[core][ch]
	return b.bound, b.prio
}

// Handler returns the handler registered for ch on core.
func (c *Controller) Handler(core cpu.Core, ch Channel) Handler {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.handlers[core][ch].handler
}

func (c *Controller) Request(bank cpu.Core, ch Channel) {
	target := bank.Peer()
	c.pending[target].Or(1 << ch)
	select {
	case c.wakeup[target] <- struct{}{}:
	default: // already woken
	}
}

// Pending returns the channels with a pending request on core.
func (c *Controller) Pending(core cpu.Core) uint32 {
	return c.pending[core].Load()
}

// Dispatch acknowledges all pending requests on core and calls their handlers
// in channel order. Requests on channels without handler are dropped. It
// returns the number of handlers called.
func (c *Controller) Dispatch(core cpu.Core) int {
	status := c.pending[core].Swap(0)
	if status == 0 {
		return 0
	}

	c.mtx.Lock()
	handlers := c.handlers[core]
	c.mtx.Unlock()

	n := 0
	for ch := Channel(0); ch < NumChannels; ch++ {
		if status&(1<<ch) == 0 {
			continue
		}
		b := &handlers[ch]
		if b.handler == nil {
			continue
		}
		b.handler.OnMessage(ch, status, b.data)
		n++
	}
	return n
}

// Serve runs the interrupt line of core, dispatching requests as they arrive,
// until ctx is done.
func (c *Controller) Serve(ctx context.Context, core cpu.Core) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.wakeup[core]:
			c.Dispatch(core)
		}
	}
}
