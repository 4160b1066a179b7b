// Package machine brings up a core of an Ameba SoC: it initializes and
// calibrates the PSRAM on the KM4 and binds the IPC channels of the board.
package machine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/clktmr/ameba/drivers/ipccfg"
	"github.com/clktmr/ameba/soc/cpu"
	"github.com/clktmr/ameba/soc/ipc"
	"github.com/clktmr/ameba/soc/psram"
)

// Config describes the hardware of one core.
type Config struct {
	IPC ipc.Config

	// Board is the channel table to bind. Defaults to the vendor table of
	// the core, see ipccfg.Default.
	Board    *ipccfg.Board
	Handlers ipccfg.Handlers

	// PSRAM is initialized with PSRAMInit before calibration, if not nil.
	// PSRAMInit defaults to psram.DefaultInitConfig.
	PSRAM     *psram.Controller
	PSRAMInit *psram.InitConfig

	// Calibrator is run before binding the IPC channels, if not nil. It
	// logs to Logger unless it has its own.
	Calibrator *psram.Calibrator

	Logger *slog.Logger
}

// Setup performs the bring-up described by cfg and returns the core's IPC
// port. A failed PSRAM initialization is an error. A failed calibration is
// only logged, the PSRAM stays usable with its default timing.
func Setup(cfg Config) (*ipc.Port, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	core := cfg.IPC.Local

	if cfg.PSRAM != nil {
		pcfg := psram.DefaultInitConfig()
		if cfg.PSRAMInit != nil {
			pcfg = *cfg.PSRAMInit
		}
		if err := cfg.PSRAM.Init(pcfg); err != nil {
			return nil, fmt.Errorf("machine: psram: %w", err)
		}
	}

	if cfg.Calibrator != nil {
		cal := *cfg.Calibrator
		if cal.Logger == nil {
			cal.Logger = log
		}
		res, err := cal.Calibrate()
		switch {
		case errors.Is(err, psram.ErrWindowTooSmall):
			log.Warn("psram not calibrated", slog.Int("window", res.Size))
		case err != nil:
			return nil, err
		default:
			log.Info("psram calibrated", slog.Int("n", res.N), slog.Int("j", res.J))
		}
	}

	board := cfg.Board
	if board == nil {
		var err error
		board, err = ipccfg.Default(core, cfg.Handlers)
		if err != nil {
			return nil, err
		}
	}
	if board.Core != core {
		return nil, fmt.Errorf("machine: board %s is for %v, running on %v", board.Name, board.Core, core)
	}

	if cfg.IPC.Logger == nil {
		cfg.IPC.Logger = log
	}
	port := ipc.NewPort(cfg.IPC)
	if err := port.Init(board.Table); err != nil {
		return nil, err
	}
	log.Info("ipc ready", slog.String("core", core.String()),
		slog.String("board", board.Name), slog.Int("fingerprint", int(ipccfg.Fingerprint(board.Table))))
	return port, nil
}

// CalibratesPSRAM reports whether core runs the PSRAM calibration. The PSRAM
// controller is part of the HP domain.
func CalibratesPSRAM(core cpu.Core) bool {
	return core == cpu.KM4
}
