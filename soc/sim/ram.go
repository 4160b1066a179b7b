// Package sim simulates the parts of an Ameba SoC used by the ipc and psram
// packages, so they can run and be tested on the host.
//
// Both cores are modelled as goroutines sharing a RAM and a mailbox. Each core
// has its own write-back data cache in front of the RAM, which serves stale
// data unless invalidated like the real one.
package sim

import (
	"sync"

	"github.com/clktmr/ameba/soc/cpu"
)

// Backing is memory behind a data cache.
type Backing interface {
	Load32(addr cpu.Addr) uint32
	Store32(addr cpu.Addr, v uint32)
}

// RAM is sparse word addressed memory. Unwritten words read as zero. It's safe
// for concurrent use.
type RAM struct {
	mtx   sync.Mutex
	words map[cpu.Addr]uint32
	next  cpu.Addr
}

// RAMBase is the address of the first word returned by Alloc.
const RAMBase cpu.Addr = 0x1000_0000

func NewRAM() *RAM {
	return &RAM{words: make(map[cpu.Addr]uint32), next: RAMBase}
}

func (r *RAM) Load32(addr cpu.Addr) uint32 {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.words[addr&^0x3]
}

func (r *RAM) Store32(addr cpu.Addr, v uint32) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.words[addr&^0x3] = v
}

// Alloc reserves size bytes, aligned and padded to the cache line size, and
// returns their address.
func (r *RAM) Alloc(size int) cpu.Addr {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	addr, n := cpu.LineAlign(r.next, size)
	r.next = addr + cpu.Addr(n)
	return addr
}
