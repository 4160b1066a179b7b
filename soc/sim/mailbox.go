package sim

import (
	"sync/atomic"

	"github.com/clktmr/ameba/soc/cpu"
	"github.com/clktmr/ameba/soc/ipc"
)

// Mailbox implements ipc.Mailbox with two uncached register banks.
type Mailbox struct {
	banks [cpu.NumCores][ipc.NumSlots]atomic.Uint32
}

func (m *Mailbox) Load(bank cpu.Core, slot int) uint32 {
	return m.banks[bank][slot].Load()
}

func (m *Mailbox) Store(bank cpu.Core, slot int, v uint32) {
	m.banks[bank][slot].Store(v)
}
