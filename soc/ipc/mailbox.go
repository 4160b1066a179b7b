package ipc

import "github.com/clktmr/ameba/soc/cpu"

const (
	// NumSlots is the number of user registers in each core's mailbox bank.
	NumSlots = 12

	// OverflowSlot holds the address of the sender's overflow array, which
	// carries the payloads of channels 11 to 31.
	OverflowSlot = 11
)

// Mailbox is the register file shared by both cores. It has one bank per core,
// written only by that core and read by its peer. The registers are mapped
// uncached.
type Mailbox interface {
	Load(bank cpu.Core, slot int) uint32
	Store(bank cpu.Core, slot int, v uint32)
}

// Memory is RAM accessible by both cores. It holds the overflow arrays and
// whatever POINTER messages point to. Accesses go through the running core's
// data cache.
type Memory interface {
	Load32(addr cpu.Addr) uint32
	Store32(addr cpu.Addr, v uint32)
}

// OverflowSize is the size in bytes of a core's overflow array. Word n carries the
// payload of channel n, words 0 to 10 are unused.
const OverflowSize = NumChannels * 4

func overflowWord(base cpu.Addr, ch Channel) cpu.Addr {
	return base.Add(uint32(ch) * 4)
}
