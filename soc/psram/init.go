package psram

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clktmr/ameba/soc"
)

// ErrLatency is returned if a latency can't be expressed by the controller or
// the device.
var ErrLatency = errors.New("psram: latency out of range")

// Burst lengths of MR0.
const (
	Burst128 uint32 = 0
	Burst64  uint32 = 1
	Burst16  uint32 = 2
	Burst32  uint32 = 3
)

// Refresh rates of MR1.
const (
	RefreshFast uint32 = 1
	RefreshSlow uint32 = 2
)

// Supported initial latencies in clock cycles.
const (
	MinInitLatency = 3
	MaxInitLatency = 6
)

// initLatency maps the initial latency in clocks to its MR0 encoding.
var initLatency = [MaxInitLatency - MinInitLatency + 1]uint32{0xe, 0xf, 0x0, 0x1}

// InitConfig holds the controller timing and the device configuration written
// by Init.
type InitConfig struct {
	// Delays of the PHY interface in controller cycles.
	CSWriteDelay uint32
	CSReadDelay  uint32
	TPhyWrdata   uint32
	TPhyRddata   uint32
	PathDelay    uint32
	FixTPhyLat   bool

	// Device timing.
	TCPH  time.Duration // chip select high between transactions
	TPU   time.Duration // power up
	TCEM  time.Duration // max chip select low
	Clock time.Duration // controller clock period

	WriteLatency uint32
	ReadLatency  uint32

	// MR0
	BurstLen      uint32
	LegacyBurst   bool
	FixedLatency  bool
	InitLatency   int // clocks, MinInitLatency to MaxInitLatency
	DriveStrength uint32

	// MR1
	PASR        uint32
	HalfSleep   bool
	RefreshRate uint32
}

// DefaultInitConfig returns the configuration for a Winbond device with 3
// clocks initial latency at 50 MHz.
func DefaultInitConfig() InitConfig {
	const lat = MinInitLatency
	return InitConfig{
		CSWriteDelay: 1,
		CSReadDelay:  1,
		TPhyWrdata:   2 + lat,
		TPhyRddata:   3 + lat,
		PathDelay:    lat,

		TCPH:  15 * time.Nanosecond,
		TPU:   150 * time.Microsecond,
		TCEM:  2 * time.Microsecond,
		Clock: 20 * time.Nanosecond,

		WriteLatency: lat,
		ReadLatency:  lat,

		BurstLen:    Burst128,
		LegacyBurst: true,
		InitLatency: lat,

		RefreshRate: RefreshFast,
	}
}

func field(v uint32, shift int, mask uint32) uint32 {
	return v << shift & mask
}

// Registers returns the IOCR0, DRR, MR_INFO, MR0 and MR1 values for cfg. MR0's
// reserved bits are zero.
func (cfg *InitConfig) Registers() (iocr0, drr, mrInfo, mr0, mr1 uint32, err error) {
	if cfg.InitLatency < MinInitLatency || cfg.InitLatency > MaxInitLatency {
		return 0, 0, 0, 0, 0, fmt.Errorf("%w: initial latency %d", ErrLatency, cfg.InitLatency)
	}
	if cfg.Clock <= 0 {
		return 0, 0, 0, 0, 0, fmt.Errorf("psram: invalid clock period %v", cfg.Clock)
	}

	iocr0 = field(cfg.CSWriteDelay, IOCR0CSWrDlyShift, IOCR0CSWrDlyMask) |
		field(cfg.CSReadDelay, IOCR0CSRdDlyShift, IOCR0CSRdDlyMask) |
		field(cfg.TPhyWrdata, IOCR0TPhyWrdataShift, IOCR0TPhyWrdataMask) |
		field(cfg.TPhyRddata, IOCR0TPhyRddataShift, IOCR0TPhyRddataMask) |
		field(cfg.PathDelay, IOCR0DfiPathDlyShift, IOCR0DfiPathDlyMask)
	if cfg.FixTPhyLat {
		iocr0 |= IOCR0FixTPhyLat
	}

	pu := uint32(cfg.TPU/(cfg.Clock*1000)) + 1
	cem := uint32(cfg.TCEM / cfg.Clock)
	cph := uint32(cfg.TCPH/cfg.Clock) + 1
	drr = field(pu, DRRPUTimeShift, DRRPUTimeMask) |
		field(cem, DRRCEMTimeShift, DRRCEMTimeMask) |
		field(cph, DRRCPHTimeShift, DRRCPHTimeMask)

	mrInfo = field(cfg.ReadLatency, MRInfoRLShift, MRInfoRLMask) |
		field(cfg.WriteLatency, MRInfoWLShift, MRInfoWLMask)

	mr0 = MR0NormalMode |
		field(cfg.BurstLen, MR0BurstLenShift, MR0BurstLenMask) |
		field(initLatency[cfg.InitLatency-MinInitLatency], MR0InitLatShift, MR0InitLatMask) |
		field(cfg.DriveStrength, MR0DrvStrengthShift, MR0DrvStrengthMask)
	if cfg.LegacyBurst {
		mr0 |= MR0LegacyBurst
	}
	if cfg.FixedLatency {
		mr0 |= MR0FixedLatency
	}

	mr1 = field(cfg.PASR, MR1PASRShift, MR1PASRMask) |
		field(cfg.RefreshRate, MR1RefreshShift, MR1RefreshMask)
	if cfg.HalfSleep {
		mr1 |= MR1HalfSleep
	}
	return
}

// Init programs the controller timing and the device configuration registers
// and waits for the controller to finish initializing the device. The PSRAM
// power supply must already be enabled.
func (c *Controller) Init(cfg InitConfig) error {
	iocr0, drr, mrInfo, mr0, mr1, err := cfg.Registers()
	if err != nil {
		return err
	}

	if err := c.stop(); err != nil {
		return err
	}

	c.regs.Store(RegIOCR0, iocr0)
	c.regs.Store(RegDRR, drr)
	c.regs.Store(RegMRInfo, mrInfo)
	c.regs.Store(RegMR0, c.regs.Load(RegMR0)&MR0Reserved|mr0)
	c.regs.Store(RegMR1, mr1)

	c.regs.Store(RegCCR, CCRInit)
	if err := soc.PollSet(c.load(RegCCR), CCRInit, c.PollLimit); err != nil {
		return c.fail(err)
	}
	if err := c.resume(); err != nil {
		return err
	}

	c.log.Debug("initialized",
		slog.Uint64("mr0", uint64(mr0)), slog.Uint64("mr1", uint64(mr1)),
		slog.Uint64("drr", uint64(drr)))
	return nil
}
