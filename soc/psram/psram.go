// Package psram drives the PSRAM controller of the KM4 and calibrates its PHY.
//
// All waits for the controller are bounded by soc.DefaultPollLimit register
// reads and report soc.ErrTimeout, instead of spinning forever on hardware that
// never becomes ready.
package psram

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/clktmr/ameba/soc"
	"github.com/clktmr/ameba/soc/cpu"
)

// Memory is the PSRAM memory window as seen by the running core.
type Memory interface {
	Load32(addr cpu.Addr) uint32
	Store32(addr cpu.Addr, v uint32)
}

// Controller is the PSRAM controller. It's not safe for concurrent use.
type Controller struct {
	regs  Regs
	mem   Memory
	cache cpu.Cache
	log   *slog.Logger

	// PollLimit bounds every wait for the controller, see soc.Poll.
	PollLimit int

	// Sleep is used for the delays required by the device. Defaults to
	// time.Sleep.
	Sleep func(time.Duration)
}

func NewController(regs Regs, mem Memory, cache cpu.Cache, logger *slog.Logger) *Controller {
	if cache == nil {
		cache = cpu.NoCache{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{regs: regs, mem: mem, cache: cache, log: logger, Sleep: time.Sleep}
}

func (c *Controller) load(r Reg) func() uint32 {
	return func() uint32 { return c.regs.Load(r) }
}

// stop disables memory access and waits for the controller to become idle.
func (c *Controller) stop() error {
	c.regs.Store(RegCSR, c.regs.Load(RegCSR)|CSRMemIdle)
	return soc.PollSet(c.load(RegCSR), CSRMemIdle, c.PollLimit)
}

// resume enables memory access and waits until it's granted.
func (c *Controller) resume() error {
	c.regs.Store(RegCSR, c.regs.Load(RegCSR)&^CSRMemIdle)
	return soc.PollClear(c.load(RegCSR), CSRMemIdle, c.PollLimit)
}

// run starts the DPIN transaction and waits for it to finish.
func (c *Controller) run() error {
	c.regs.Store(RegCCR, CCRDPin)
	return soc.PollSet(c.load(RegCCR), CCRDPin, c.PollLimit)
}

func (c *Controller) setCA(ca [6]byte) {
	c.regs.Store(RegCmdDPinNdge, uint32(ca[0])|uint32(ca[2])<<8|uint32(ca[4])<<16)
	c.regs.Store(RegCmdDPin, uint32(ca[1])|uint32(ca[3])<<8|uint32(ca[5])<<16)
}

// fail resumes memory access after a failed transaction and returns err.
func (c *Controller) fail(err error) error {
	c.resume()
	return err
}

// read runs a DPIN read transaction and returns the data word.
func (c *Controller) read(ca [6]byte) (uint32, error) {
	if err := c.stop(); err != nil {
		return 0, err
	}

	c.setCA(ca)
	c.regs.Store(RegCSR, c.regs.Load(RegCSR)&^CSRDPinMode|CSRDPinRead)
	if err := c.run(); err != nil {
		return 0, c.fail(err)
	}

	c.regs.Store(RegDPDRI, dpdrReadData)
	v := c.regs.Load(RegDPDR)
	return v, c.resume()
}

// write runs a DPIN write transaction of v with the given byte enables. The
// controller must be stopped.
func (c *Controller) write(ca [6]byte, v, byteEn uint32) error {
	c.setCA(ca)
	c.regs.Store(RegCSR, c.regs.Load(RegCSR)&^CSRDPinMode|CSRDPinWrite)
	c.regs.Store(RegDPDRI, dpdrByteEn)
	c.regs.Store(RegDPDR, byteEn)
	c.regs.Store(RegDPDRI, dpdrWriteData)
	c.regs.Store(RegDPDR, v)
	return c.run()
}

// ReadReg reads a device register in DPIN mode. The cache must not hold PSRAM
// lines while in DPIN mode.
func (c *Controller) ReadReg(addr uint32) (uint32, error) {
	return c.read(CommandAddress(addr, LinearBurst, RegSpace, ReadTransaction))
}

// WriteReg writes a device register in DPIN mode. Register writes have two
// cycles less write latency than memory writes, so the latency is lowered for
// the duration of the transaction.
func (c *Controller) WriteReg(addr uint32, v uint32) error {
	iocr := c.regs.Load(RegIOCR0)
	wrdata := (iocr & IOCR0TPhyWrdataMask) >> IOCR0TPhyWrdataShift
	if wrdata < 2 {
		return fmt.Errorf("%w: write latency %d", ErrLatency, wrdata)
	}

	if err := c.stop(); err != nil {
		return err
	}

	c.regs.Store(RegIOCR0, iocr&^IOCR0TPhyWrdataMask|
		field(wrdata-2, IOCR0TPhyWrdataShift, IOCR0TPhyWrdataMask)|IOCR0FixTPhyLat)

	err := c.write(CommandAddress(addr, LinearBurst, RegSpace, WriteTransaction), v, 0xf)

	iocr = c.regs.Load(RegIOCR0)
	c.regs.Store(RegIOCR0, iocr&^(IOCR0TPhyWrdataMask|IOCR0FixTPhyLat)|
		wrdata<<IOCR0TPhyWrdataShift)
	if err != nil {
		return c.fail(err)
	}
	return c.resume()
}

// ReadMem reads the memory word at addr in DPIN mode, bypassing the memory
// window and the cache.
func (c *Controller) ReadMem(addr uint32) (uint32, error) {
	return c.read(CommandAddress(addr, WrappedBurst, MemSpace, ReadTransaction))
}

// WriteMem writes the bytes of v selected by the low four bits of byteEn to the
// memory word at addr in DPIN mode.
func (c *Controller) WriteMem(addr uint32, v, byteEn uint32) error {
	if err := c.stop(); err != nil {
		return err
	}
	ca := CommandAddress(addr, WrappedBurst, MemSpace, WriteTransaction)
	if err := c.write(ca, v, byteEn&0xf); err != nil {
		return c.fail(err)
	}
	return c.resume()
}

const (
	regCR1      = 1<<11 | 1<<0 // device configuration register 1
	wakeupDelay = 100 * time.Microsecond
)

// HalfSleep puts the device into half sleep mode. Any memory access wakes it
// up again, see WakeUp.
func (c *Controller) HalfSleep() error {
	v, err := c.ReadReg(regCR1)
	if err != nil {
		return err
	}
	v |= MR1HalfSleep

	// Register data is transferred on both edges, most significant byte
	// first.
	lo, hi := v&0xff, (v>>8)&0xff
	err = c.WriteReg(regCR1, lo<<8|lo<<24|hi|hi<<16)
	if err == nil {
		c.log.Debug("half sleep")
	}
	return err
}

// WakeUp wakes the device from half sleep by reading from it and waits until
// it's ready.
func (c *Controller) WakeUp() {
	c.mem.Load32(Base)
	c.Sleep(wakeupDelay)
	c.cache.Invalidate(Base, cpu.CacheLineSize)
}
