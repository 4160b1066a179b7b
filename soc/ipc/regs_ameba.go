//go:build ameba

package ipc

import (
	"embedded/mmio"
	"embedded/rtos"
	"unsafe"

	"github.com/clktmr/ameba/soc/cpu"
)

// Both cores see the IPC interrupt on the same IRQ number.
const IrqIPC rtos.IRQ = 14

// Base addresses of the mailbox banks. Each bank is written by the named core.
const (
	km0BaseAddr uintptr = 0x4800_0000 + 0x0080
	km4BaseAddr uintptr = 0x4000_0000 + 0x0080
)

type registers struct {
	ier   mmio.U32 // interrupt enable, one bit per channel
	imr   mmio.U32 // interrupt mask
	irr   mmio.U32 // write 1 to request the channel's interrupt on the peer
	isr   mmio.U32 // pending channels
	icr   mmio.U32 // write 1 to clear pending
	cpuid mmio.U32
	_     [10]mmio.U32
	usr   [NumSlots]mmio.U32
}

func bank(c cpu.Core) *registers {
	if c == cpu.KM4 {
		return (*registers)(unsafe.Pointer(km4BaseAddr))
	}
	return (*registers)(unsafe.Pointer(km0BaseAddr))
}

// Running returns the core executing the caller.
func Running() cpu.Core {
	return cpu.Core(bank(cpu.KM0).cpuid.Load() & 0x1)
}

// Registers implements Mailbox and Interrupts on the hardware.
type Registers struct{}

func (Registers) Load(b cpu.Core, slot int) uint32 {
	return bank(b).usr[slot].Load()
}

func (Registers) Store(b cpu.Core, slot int, v uint32) {
	bank(b).usr[slot].Store(v)
}

var handlers [NumChannels]binding

func (Registers) Register(core cpu.Core, ch Channel, h Handler, data any, prio int) {
	IrqIPC.Disable(0)
	handlers[ch] = binding{h, data, prio, true}
	bank(core.Peer()).ier.Store(bank(core.Peer()).ier.Load() | 1<<ch)
	IrqIPC.Enable(rtos.IntPrio(prio), 0)
}

func (Registers) Unregister(core cpu.Core, ch Channel) {
	en, prio, _ := IrqIPC.Status(0)
	IrqIPC.Disable(0)
	bank(core.Peer()).ier.Store(bank(core.Peer()).ier.Load() &^ (1 << ch))
	handlers[ch] = binding{}
	if en {
		IrqIPC.Enable(prio, 0)
	}
}

func (Registers) Request(b cpu.Core, ch Channel) {
	bank(b).irr.Store(1 << ch)
}

//go:linkname ipcHandler IRQ14_Handler
//go:interrupthandler
func ipcHandler() {
	peer := bank(Running().Peer())
	status := peer.isr.Load() & peer.ier.Load()
	peer.icr.Store(status)
	for ch := Channel(0); ch < NumChannels; ch++ {
		if status&(1<<ch) == 0 {
			continue
		}
		if h := handlers[ch].handler; h != nil {
			h.OnMessage(ch, status, handlers[ch].data)
		}
	}
}

// RAM implements Memory by direct loads and stores.
type RAM struct{}

func (RAM) Load32(addr cpu.Addr) uint32 {
	return (*mmio.U32)(unsafe.Pointer(uintptr(addr))).Load()
}

func (RAM) Store32(addr cpu.Addr, v uint32) {
	(*mmio.U32)(unsafe.Pointer(uintptr(addr))).Store(v)
}

// Overflow array of the running core, padded so it can be placed on whole
// cache lines.
var messages [OverflowSize + cpu.CacheLineSize]byte

func overflowArray() cpu.Addr {
	a := cpu.Addr(uintptr(unsafe.Pointer(&messages)))
	return (a + cpu.CacheLineSize - 1) &^ (cpu.CacheLineSize - 1)
}

// Target returns the Config for the running core. Its Stack is nil, so Send
// doesn't check pointer payloads until the caller sets a StackFunc reporting
// the running task's stack.
func Target() Config {
	return Config{
		Local:    Running(),
		Mailbox:  Registers{},
		Memory:   RAM{},
		Overflow: overflowArray(),
		Cache:    cpu.DCache{},
		IRQ:      Registers{},
	}
}
