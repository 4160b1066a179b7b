package psram_test

import (
	"errors"
	"testing"
	"time"

	"github.com/clktmr/ameba/soc"
	"github.com/clktmr/ameba/soc/psram"
)

func TestInitConfigRegisters(t *testing.T) {
	cfg := psram.DefaultInitConfig()
	iocr0, drr, mrInfo, mr0, mr1, err := cfg.Registers()
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range []struct {
		name          string
		got, expected uint32
	}{
		{"IOCR0", iocr0, 0x5060_5300},
		{"DRR", drr, 8<<psram.DRRPUTimeShift | 100<<psram.DRRCEMTimeShift | 1},
		{"MR_INFO", mrInfo, 3<<psram.MRInfoRLShift | 3},
		{"MR0", mr0, 0x80e4},
		{"MR1", mr1, psram.RefreshFast << psram.MR1RefreshShift},
	} {
		if r.got != r.expected {
			t.Errorf("%s: got %#x, expected %#x", r.name, r.got, r.expected)
		}
	}

	for _, lat := range []int{psram.MinInitLatency - 1, psram.MaxInitLatency + 1} {
		cfg.InitLatency = lat
		if _, _, _, _, _, err := cfg.Registers(); !errors.Is(err, psram.ErrLatency) {
			t.Errorf("latency %d: expected ErrLatency, got %v", lat, err)
		}
	}

	cfg = psram.DefaultInitConfig()
	cfg.Clock = 0
	if _, _, _, _, _, err := cfg.Registers(); err == nil {
		t.Error("zero clock accepted")
	}
}

func TestInit(t *testing.T) {
	c, dev, _ := newController()
	dev.Store(psram.RegMR0, 0x0a00)

	if err := c.Init(psram.DefaultInitConfig()); err != nil {
		t.Fatal(err)
	}
	for r, expected := range map[psram.Reg]uint32{
		psram.RegIOCR0:  0x5060_5300,
		psram.RegDRR:    0x8000_6401,
		psram.RegMRInfo: 0x63,
		psram.RegMR0:    0x8ae4,
		psram.RegMR1:    0x8,
	} {
		if got := dev.Load(r); got != expected {
			t.Errorf("register %#x: got %#x, expected %#x", r, got, expected)
		}
	}
	if got := dev.Device(devCR0); got != 0x8ae4 {
		t.Errorf("device CR0 is %#x", got)
	}
	if dev.Load(psram.RegCSR)&psram.CSRMemIdle != 0 {
		t.Error("memory access not resumed")
	}

	// Register access still works with the new write latency.
	if err := c.WriteReg(devCR1, 0x0900); err != nil {
		t.Fatal(err)
	}
	if got := dev.Device(devCR1); got != 0x9 {
		t.Errorf("CR1 is %#x", got)
	}
}

func TestInitErrors(t *testing.T) {
	c, dev, _ := newController()
	cfg := psram.DefaultInitConfig()
	cfg.InitLatency = 7
	if err := c.Init(cfg); !errors.Is(err, psram.ErrLatency) {
		t.Errorf("expected ErrLatency, got %v", err)
	}
	if got := dev.Load(psram.RegDRR); got != 0 {
		t.Errorf("DRR written: %#x", got)
	}

	dev.Hang = true
	start := time.Now()
	if err := c.Init(psram.DefaultInitConfig()); !errors.Is(err, soc.ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("timeout took too long")
	}
}
