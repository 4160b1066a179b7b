// Package cpu describes the two Cortex-M cores of an Ameba SoC and the memory
// they share.
//
// The KM4 is the high performance core in the HP domain, the KM0 the low power
// core in the always-on LP domain. Both see the same bus addresses, but each
// has its own data cache, so anything handed from one core to the other must be
// written back by the producer or invalidated by the consumer.
package cpu

import "fmt"

// Core identifies one of the two processors. The values match the hardware
// CPU ID register.
type Core uint8

const (
	KM0 Core = iota // low power core
	KM4             // high performance core

	NumCores = 2
)

// Peer returns the core on the other side of the IPC.
func (c Core) Peer() Core {
	return 1 - c
}

func (c Core) Valid() bool {
	return c < NumCores
}

func (c Core) String() string {
	switch c {
	case KM0:
		return "KM0"
	case KM4:
		return "KM4"
	}
	return fmt.Sprintf("Core(%d)", uint8(c))
}

// ParseCore accepts the names returned by String in upper or lower case and
// the power domain aliases "hp" and "lp".
func ParseCore(s string) (Core, error) {
	switch s {
	case "KM4", "km4", "hp", "HP":
		return KM4, nil
	case "KM0", "km0", "lp", "LP":
		return KM0, nil
	}
	return 0, fmt.Errorf("unknown core %q", s)
}

// Addr is a bus address, identical for both cores.
type Addr uint32

// Add returns a offset by n bytes.
func (a Addr) Add(n uint32) Addr {
	return a + Addr(n)
}
