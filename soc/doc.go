// The soc package provides the hardware abstraction layer for Realtek Ameba
// dual-core SoCs.
//
// It implements low-level access to the hardware. Subpackages expose the
// inter-core message channels (ipc), the PSRAM controller (psram) and a host
// simulation of both (sim). Everything in here is in general unsafe to use
// from more than one goroutine, see the subpackages for details.
package soc

// Ameba-D user manual, chapters "IPC" and "PSRAM Controller"
