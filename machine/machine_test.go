package machine_test

import (
	"errors"
	"testing"

	"github.com/clktmr/ameba/drivers/ipccfg"
	"github.com/clktmr/ameba/machine"
	"github.com/clktmr/ameba/soc"
	"github.com/clktmr/ameba/soc/cpu"
	"github.com/clktmr/ameba/soc/ipc"
	"github.com/clktmr/ameba/soc/psram"
	"github.com/clktmr/ameba/soc/sim"
)

func handlers(calls *[]ipc.Channel) ipccfg.Handlers {
	h := ipc.HandlerFunc(func(ch ipc.Channel, _ uint32, _ any) {
		*calls = append(*calls, ch)
	})
	return ipccfg.Handlers{
		ipccfg.ShellSwitch:  h,
		ipccfg.WiFiFW:       h,
		ipccfg.FlashProgram: h,
		ipccfg.Tickless:     h,
	}
}

func calibrator(pass func(int) bool) (*psram.Calibrator, *psram.Controller, *sim.PSRAM) {
	dev := sim.NewPSRAM(pass)
	cache := sim.NewDCache(dev)
	ctrl := psram.NewController(dev, cache, cache, nil)
	ctrl.PollLimit = 10
	return &psram.Calibrator{PHY: ctrl, Mem: cache, Cache: cache}, ctrl, dev
}

func TestSetup(t *testing.T) {
	s := sim.NewSoC(nil)
	var calls []ipc.Channel
	cal, ctrl, dev := calibrator(sim.PassRange(4, 28))

	km4, err := machine.Setup(machine.Config{
		IPC:        s.Config(cpu.KM4),
		Handlers:   handlers(&calls),
		PSRAM:      ctrl,
		Calibrator: cal,
	})
	if err != nil {
		t.Fatal(err)
	}
	km0, err := machine.Setup(machine.Config{
		IPC:      s.Config(cpu.KM0),
		Handlers: handlers(&calls),
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := dev.Device(1 << 11); got != 0x8fe4 {
		t.Errorf("psram CR0 is %#x after init", got)
	}
	if dev.PHY(psram.PHYCalCtrl)&psram.CalEnable == 0 {
		t.Error("psram not calibrated")
	}
	if cal.Logger != nil {
		t.Error("caller's calibrator modified")
	}
	if !km4.Bound(2) || km4.Bound(1) || !km0.Bound(31) {
		t.Error("default tables not bound")
	}

	km4.Send(31, ipc.Message{Payload: 1})
	km4.Send(30, ipc.Message{Payload: 2}) // unbound
	km0.Send(0, ipc.Message{Payload: 3})
	s.IRQ.Dispatch(cpu.KM0)
	s.IRQ.Dispatch(cpu.KM4)
	if len(calls) != 2 || calls[0] != 31 || calls[1] != 0 {
		t.Errorf("handled %v", calls)
	}
}

func TestSetupCalibrationFails(t *testing.T) {
	s := sim.NewSoC(nil)
	var calls []ipc.Channel
	cal, _, dev := calibrator(sim.PassSet())

	_, err := machine.Setup(machine.Config{
		IPC:        s.Config(cpu.KM4),
		Handlers:   handlers(&calls),
		Calibrator: cal,
	})
	if err != nil {
		t.Fatal(err)
	}
	if dev.PHY(psram.PHYCalCtrl)&psram.CalEnable != 0 {
		t.Error("auto-calibration enabled")
	}
}

func TestSetupPSRAMInitFails(t *testing.T) {
	s := sim.NewSoC(nil)
	var calls []ipc.Channel
	cal, ctrl, dev := calibrator(nil)
	dev.Hang = true

	port, err := machine.Setup(machine.Config{
		IPC:        s.Config(cpu.KM4),
		Handlers:   handlers(&calls),
		PSRAM:      ctrl,
		Calibrator: cal,
	})
	if !errors.Is(err, soc.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if port != nil {
		t.Error("port returned")
	}
	if len(dev.PHYWrites()) != 0 {
		t.Error("calibrated uninitialized psram")
	}

	pcfg := psram.DefaultInitConfig()
	pcfg.InitLatency = 0
	dev.Hang = false
	_, err = machine.Setup(machine.Config{
		IPC:       s.Config(cpu.KM4),
		Handlers:  handlers(&calls),
		PSRAM:     ctrl,
		PSRAMInit: &pcfg,
	})
	if !errors.Is(err, psram.ErrLatency) {
		t.Errorf("expected ErrLatency, got %v", err)
	}
}

func TestSetupErrors(t *testing.T) {
	s := sim.NewSoC(nil)
	var calls []ipc.Channel

	km0, err := ipccfg.Default(cpu.KM0, handlers(&calls))
	if err != nil {
		t.Fatal(err)
	}
	_, err = machine.Setup(machine.Config{IPC: s.Config(cpu.KM4), Board: km0})
	if err == nil {
		t.Error("board of other core accepted")
	}

	_, err = machine.Setup(machine.Config{IPC: s.Config(cpu.KM0)})
	if !errors.Is(err, ipccfg.ErrHandler) {
		t.Errorf("expected ErrHandler, got %v", err)
	}
}

func TestCalibratesPSRAM(t *testing.T) {
	if !machine.CalibratesPSRAM(cpu.KM4) || machine.CalibratesPSRAM(cpu.KM0) {
		t.Error("wrong core calibrates")
	}
}
