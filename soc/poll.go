package soc

import "errors"

// ErrTimeout is returned when a status bit didn't reach the expected state
// within the poll limit.
var ErrTimeout = errors.New("soc: timeout waiting for hardware")

// DefaultPollLimit is the number of register reads after which a wait for a
// hardware status bit is abandoned. The controllers are expected to assert
// their ready bits within a few hundred bus cycles, so reaching this limit
// means the peripheral is unclocked, unpowered or broken.
const DefaultPollLimit = 100000

// Poll reads a status register via load until the bits in mask equal want. It
// gives up after limit reads, a limit <= 0 selects DefaultPollLimit.
func Poll(load func() uint32, mask, want uint32, limit int) error {
	if limit <= 0 {
		limit = DefaultPollLimit
	}
	for range limit {
		if load()&mask == want {
			return nil
		}
	}
	return ErrTimeout
}

// PollSet waits until all bits in mask are set.
func PollSet(load func() uint32, mask uint32, limit int) error {
	return Poll(load, mask, mask, limit)
}

// PollClear waits until all bits in mask are cleared.
func PollClear(load func() uint32, mask uint32, limit int) error {
	return Poll(load, mask, 0, limit)
}
