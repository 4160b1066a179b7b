//go:build ameba

package psram

import (
	"embedded/mmio"
	"unsafe"

	"github.com/clktmr/ameba/soc/cpu"
)

const baseAddr uintptr = 0x4800_4000

// Registers accesses the controller's register block.
type Registers struct{}

func reg(r Reg) *mmio.U32 {
	return (*mmio.U32)(unsafe.Pointer(baseAddr + uintptr(r)))
}

func (Registers) Load(r Reg) uint32     { return reg(r).Load() }
func (Registers) Store(r Reg, v uint32) { reg(r).Store(v) }

// RAM accesses the memory window through the data cache.
type RAM struct{}

func (RAM) Load32(addr cpu.Addr) uint32 {
	return *(*uint32)(unsafe.Pointer(uintptr(addr)))
}

func (RAM) Store32(addr cpu.Addr, v uint32) {
	*(*uint32)(unsafe.Pointer(uintptr(addr))) = v
}

// Target returns the controller of the running SoC.
func Target() *Controller {
	return NewController(Registers{}, RAM{}, cpu.DCache{}, nil)
}
