package sim

import (
	"sync"

	"github.com/clktmr/ameba/soc/cpu"
	"github.com/clktmr/ameba/soc/psram"
)

// PSRAM simulates the PSRAM controller, its PHY and the device behind it. It
// implements psram.Regs for the controller and Backing for the memory window.
//
// Reads from the memory window return corrupted data unless the N value
// programmed into the PHY is accepted by Pass.
type PSRAM struct {
	mtx sync.Mutex

	// Pass reports whether the device is sampled correctly with the
	// given N value. Nil passes all values.
	Pass func(n int) bool

	// Hang makes the controller never report completion or idle state.
	Hang bool

	// HangDPin makes DPIN transactions never complete while the rest of the
	// controller keeps working.
	HangDPin bool

	regs     map[psram.Reg]uint32
	phy      map[psram.PHYReg]uint32
	phyIndex psram.PHYReg
	dpdr     [3]uint32 // read data, write data, byte enable
	dpdri    uint32
	dev      map[uint32]uint32
	mem      map[cpu.Addr]uint32

	phyWrites []PHYWrite
}

// PHYWrite records a write to a PHY register.
type PHYWrite struct {
	Reg   psram.PHYReg
	Value uint32
}

// Reset values of the device's configuration registers.
const (
	DefaultCR0 = 0x8f1f
	DefaultCR1 = 0xffc1
)

// Device register addresses.
const (
	addrCR0 = 1 << 11
	addrCR1 = 1<<11 | 1<<0
)

func NewPSRAM(pass func(n int) bool) *PSRAM {
	return &PSRAM{
		Pass: pass,
		regs: map[psram.Reg]uint32{
			psram.RegIOCR0: 5 << psram.IOCR0TPhyWrdataShift,
			psram.RegMR0:   DefaultCR0,
			psram.RegMR1:   DefaultCR1,
		},
		phy: map[psram.PHYReg]uint32{
			psram.PHYCalCtrl: psram.CalEnable,
			psram.PHYCalPara: 0x0050_0000 | 2<<psram.CalJMaxShift | 2<<psram.CalJShift | 0xa,
		},
		dev: map[uint32]uint32{addrCR0: DefaultCR0, addrCR1: DefaultCR1},
		mem: make(map[cpu.Addr]uint32),
	}
}

// PassRange returns a Pass func accepting N values in [from, to].
func PassRange(from, to int) func(int) bool {
	return func(n int) bool { return n >= from && n <= to }
}

// PassSet returns a Pass func accepting the given N values.
func PassSet(ns ...int) func(int) bool {
	var set [psram.NumN]bool
	for _, n := range ns {
		if n >= 0 && n < psram.NumN {
			set[n] = true
		}
	}
	return func(n int) bool { return n >= 0 && n < psram.NumN && set[n] }
}

func (p *PSRAM) Load(r psram.Reg) uint32 {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	switch r {
	case psram.RegUser0Data:
		return p.phy[p.phyIndex]
	case psram.RegDPDR:
		return p.dpdr[p.dpdri/4]
	case psram.RegCSR:
		v := p.regs[r]
		if p.Hang {
			v &^= psram.CSRMemIdle
		}
		return v
	case psram.RegCCR:
		if p.Hang {
			return 0
		}
		if p.HangDPin {
			return p.regs[r] &^ psram.CCRDPin
		}
	}
	return p.regs[r]
}

func (p *PSRAM) Store(r psram.Reg, v uint32) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	switch r {
	case psram.RegUser0Index:
		p.phyIndex = psram.PHYReg(v)
	case psram.RegUser0Data:
		p.phy[p.phyIndex] = v
		p.phyWrites = append(p.phyWrites, PHYWrite{p.phyIndex, v})
	case psram.RegDPDRI:
		p.dpdri = v % 12
	case psram.RegDPDR:
		p.dpdr[p.dpdri/4] = v
	case psram.RegCCR:
		if p.Hang {
			break
		}
		if v&psram.CCRInit != 0 {
			p.dev[addrCR0] = p.regs[psram.RegMR0] & 0xffff
			p.dev[addrCR1] = p.regs[psram.RegMR1] & 0xffff
		}
		if v&psram.CCRDPin != 0 && !p.HangDPin {
			p.dpin()
		}
	}
	p.regs[r] = v
}

// dpin executes a DPIN transaction. Register data travels most significant
// byte first, memory writes only touch the enabled bytes.
func (p *PSRAM) dpin() {
	ndge, pdge := p.regs[psram.RegCmdDPinNdge], p.regs[psram.RegCmdDPin]
	ca := [6]byte{
		byte(ndge), byte(pdge),
		byte(ndge >> 8), byte(pdge >> 8),
		byte(ndge >> 16), byte(pdge >> 16),
	}
	addr, _, space, rw := psram.DecodeCommandAddress(ca)
	if space == psram.MemSpace {
		a := psram.Base.Add(addr) &^ 0x3
		if rw == psram.ReadTransaction {
			p.dpdr[0] = p.mem[a]
			return
		}
		var mask uint32
		for i := range 4 {
			if p.dpdr[2]&(1<<i) != 0 {
				mask |= 0xff << (8 * i)
			}
		}
		p.mem[a] = p.mem[a]&^mask | p.dpdr[1]&mask
		return
	}
	if rw == psram.ReadTransaction {
		p.dpdr[0] = p.dev[addr]
		return
	}
	w := p.dpdr[1]
	p.dev[addr] = (w&0xff)<<8 | (w>>8)&0xff
}

// Device returns the value of a device register.
func (p *PSRAM) Device(addr uint32) uint32 {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.dev[addr]
}

// PHY returns the value of a PHY register.
func (p *PSRAM) PHY(r psram.PHYReg) uint32 {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.phy[r]
}

// PHYWrites returns all writes to PHY registers so far.
func (p *PSRAM) PHYWrites() []PHYWrite {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return append([]PHYWrite(nil), p.phyWrites...)
}

func (p *PSRAM) Load32(addr cpu.Addr) uint32 {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	v := p.mem[addr&^0x3]
	n := int(p.phy[psram.PHYCalPara]&psram.CalNMask) >> psram.CalNShift
	if p.Pass != nil && !p.Pass(n) {
		v ^= 0x0001_0000
	}
	return v
}

func (p *PSRAM) Store32(addr cpu.Addr, v uint32) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.mem[addr&^0x3] = v
}
