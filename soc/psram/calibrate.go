package psram

import (
	"errors"
	"log/slog"

	"github.com/clktmr/ameba/soc/cpu"
)

// ErrWindowTooSmall is returned by Calibrate if less than MinWindow N values
// passed in a row. The PHY keeps working with its default N and J values, but
// without auto-calibration.
var ErrWindowTooSmall = errors.New("psram: calibration window too small")

const (
	// MinWindow is the smallest window accepted by Calibrate.
	MinWindow = 9

	// GuardBand is subtracted from the half window width to keep the
	// auto-calibration away from the window edges.
	GuardBand = 2

	// PatternStride is the distance between the pattern words, so they are
	// spread across the device's rows and banks.
	PatternStride = 0x50000
)

// Pattern is written to and read back from PSRAM for each N value.
var Pattern = [6]uint32{
	0x11223344,
	0xa55aa55a,
	0x5aa55aa5,
	0x44332211,
	0x96696996,
	0x69969669,
}

// Result describes the values programmed by a successful calibration.
type Result struct {
	Window
	N    int // center of the window
	J    int // margin around N
	JMax int
}

// Calibrator finds the PHY sampling delay N, at which PSRAM reads back what
// was written, and seeds the hardware auto-calibration with it.
type Calibrator struct {
	PHY    PHY
	Mem    Memory
	Cache  cpu.Cache
	Logger *slog.Logger
}

// Calibrate sweeps all N values, writing and reading back Pattern for each. It
// programs the center of the largest passing window into the PHY and enables
// auto-calibration with a margin of half the window width minus GuardBand.
//
// If the largest window is smaller than MinWindow, ErrWindowTooSmall is
// returned, the parameters found before the sweep are restored and
// auto-calibration stays disabled. The caller should log it and
// carry on, PSRAM is still usable with the default timing.
func (c *Calibrator) Calibrate() (Result, error) {
	log := c.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	cache := c.Cache
	if cache == nil {
		cache = cpu.NoCache{}
	}

	orig := c.PHY.PHYRead(PHYCalPara)
	para := orig &^ CalNMask
	ctrl := c.PHY.PHYRead(PHYCalCtrl)

	c.PHY.PHYWrite(PHYCalCtrl, ctrl&^CalEnable)

	t := newTracker()
	for n := range NumN {
		c.PHY.PHYWrite(PHYCalPara, para|uint32(n)<<CalNShift)
		t.observe(n, c.check(cache))
	}
	w := t.best

	log.Info("calibration window",
		slog.Int("start", w.Start), slog.Int("end", w.End), slog.Int("size", w.Size))

	if w.Size < MinWindow {
		log.Error("calibration failed", slog.Int("size", w.Size))
		c.PHY.PHYWrite(PHYCalPara, orig)
		return Result{Window: w}, ErrWindowTooSmall
	}

	margin := (w.End-w.Start)/2 - GuardBand
	center := (w.End + w.Start) / 2

	para &^= calSeedMask
	para |= uint32(margin)<<CalJMaxShift&CalJMaxMask |
		uint32(margin)<<CalJShift&CalJMask |
		uint32(center)<<CalNShift&CalNMask
	c.PHY.PHYWrite(PHYCalPara, para)
	c.PHY.PHYWrite(PHYCalCtrl, ctrl|CalEnable)

	return Result{Window: w, N: center, J: margin, JMax: margin}, nil
}

// check writes Pattern and reports whether it reads back unchanged. Each word
// is flushed out of the cache, so the read goes to the device.
func (c *Calibrator) check(cache cpu.Cache) bool {
	var got [len(Pattern)]uint32
	for i, v := range Pattern {
		addr := Base.Add(uint32(i) * PatternStride)
		c.Mem.Store32(addr, v)
		cache.CleanInvalidate(addr, cpu.CacheLineSize)
		got[i] = c.Mem.Load32(addr)
	}
	return got == Pattern
}
