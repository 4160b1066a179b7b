//go:build ameba

package machine

import (
	"log/slog"

	"github.com/clktmr/ameba/drivers/ipccfg"
	"github.com/clktmr/ameba/soc/cpu"
	"github.com/clktmr/ameba/soc/ipc"
	"github.com/clktmr/ameba/soc/psram"
)

// Init brings up the running core with the vendor channel table and the
// handlers in h.
func Init(h ipccfg.Handlers, logger *slog.Logger) (*ipc.Port, error) {
	cfg := Config{IPC: ipc.Target(), Handlers: h, Logger: logger}
	if CalibratesPSRAM(cfg.IPC.Local) {
		ctrl := psram.Target()
		cfg.PSRAM = ctrl
		cfg.Calibrator = &psram.Calibrator{
			PHY:   ctrl,
			Mem:   psram.RAM{},
			Cache: cpu.DCache{},
		}
	}
	return Setup(cfg)
}
