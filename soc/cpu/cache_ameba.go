//go:build ameba

package cpu

import (
	"embedded/mmio"
	"unsafe"
)

// Cache maintenance by address, ARMv7-M system control block.
var (
	dcimvac  = (*mmio.U32)(unsafe.Pointer(uintptr(0xe000_ef5c))) // invalidate to PoC
	dccimvac = (*mmio.U32)(unsafe.Pointer(uintptr(0xe000_ef70))) // clean and invalidate to PoC
)

// DCache operates on the data cache of the running core.
type DCache struct{}

func (DCache) Invalidate(addr Addr, length int) {
	start, n := LineAlign(addr, length)
	for a := start; a < start+Addr(n); a += CacheLineSize {
		dcimvac.Store(uint32(a))
	}
}

func (DCache) CleanInvalidate(addr Addr, length int) {
	start, n := LineAlign(addr, length)
	for a := start; a < start+Addr(n); a += CacheLineSize {
		dccimvac.Store(uint32(a))
	}
}
