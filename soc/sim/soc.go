package sim

import (
	"log/slog"
	"sync"

	"github.com/clktmr/ameba/soc/cpu"
	"github.com/clktmr/ameba/soc/ipc"
)

// SoC connects two ipc.Ports through a simulated mailbox, interrupt controller
// and RAM. Each core accesses the RAM through its own DCache.
type SoC struct {
	RAM     *RAM
	Mailbox *Mailbox
	IRQ     *ipc.Controller
	Caches  [cpu.NumCores]*DCache
	Ports   [cpu.NumCores]*ipc.Port

	configs [cpu.NumCores]ipc.Config

	mtx    sync.Mutex
	stacks [cpu.NumCores]cpu.Stack
}

func NewSoC(logger *slog.Logger) *SoC {
	s := &SoC{
		RAM:     NewRAM(),
		Mailbox: new(Mailbox),
		IRQ:     ipc.NewController(),
	}
	for c := range cpu.Core(cpu.NumCores) {
		s.Caches[c] = NewDCache(s.RAM)
		s.configs[c] = ipc.Config{
			Local:    c,
			Mailbox:  s.Mailbox,
			Memory:   s.Caches[c],
			Overflow: s.RAM.Alloc(ipc.OverflowSize),
			Cache:    s.Caches[c],
			IRQ:      s.IRQ,
			Stack:    func() cpu.Stack { return s.Stack(c) },
			Logger:   logger,
		}
		s.Ports[c] = ipc.NewPort(s.configs[c])
	}
	return s
}

// Config returns the configuration of core c's port. A port created from it
// replaces Port(c), both must not be used at the same time.
func (s *SoC) Config(c cpu.Core) ipc.Config {
	return s.configs[c]
}

// Port returns the IPC port of core c.
func (s *SoC) Port(c cpu.Core) *ipc.Port {
	return s.Ports[c]
}

// SetStack sets the stack reported for the task running on core c.
func (s *SoC) SetStack(c cpu.Core, stack cpu.Stack) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.stacks[c] = stack
}

func (s *SoC) Stack(c cpu.Core) cpu.Stack {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.stacks[c]
}
