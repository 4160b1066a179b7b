package ipc

import "fmt"

// Channel numbers a logical IPC channel. Channels 0 to 10 have a mailbox slot
// of their own, channels 11 to 31 share the overflow slot.
type Channel uint8

const (
	NumChannels = 32

	lastDirect Channel = 10
)

// Direct reports whether ch is exchanged through its own mailbox slot instead
// of the overflow array.
func (ch Channel) Direct() bool {
	return ch <= lastDirect
}

func (ch Channel) Valid() bool {
	return ch < NumChannels
}

// MsgKind tells how the payload of a channel is to be interpreted.
type MsgKind uint32

const (
	KindData    MsgKind = 0          // payload is the value itself
	KindPointer MsgKind = 1          // payload is the address of shared memory
	KindEnd     MsgKind = 0xFFFFFFFF // marks the end of a Table
)

func (k MsgKind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindPointer:
		return "pointer"
	case KindEnd:
		return "end"
	}
	return fmt.Sprintf("MsgKind(%#x)", uint32(k))
}

// Handler is called in interrupt context when the peer requested an interrupt
// on a channel. Status holds all channels pending at the time of dispatch.
type Handler interface {
	OnMessage(ch Channel, status uint32, data any)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ch Channel, status uint32, data any)

func (f HandlerFunc) OnMessage(ch Channel, status uint32, data any) {
	f(ch, status, data)
}

// Entry configures one channel.
type Entry struct {
	Kind    MsgKind
	Handler Handler
	Data    any // passed to Handler on every interrupt
}

// TableEnd terminates a Table.
var TableEnd = Entry{Kind: KindEnd}

// Table maps channel numbers to their configuration. It is indexed by channel
// number and must be terminated with TableEnd.
type Table []Entry

// Len returns the number of channels described by t, i.e. the index of the
// terminating entry. It returns -1 if t isn't terminated.
func (t Table) Len() int {
	for i := range t {
		if t[i].Kind == KindEnd {
			return i
		}
	}
	return -1
}

// Channels returns the entries before the terminating entry, or nil if t isn't
// terminated.
func (t Table) Channels() []Entry {
	n := t.Len()
	if n < 0 {
		return nil
	}
	return t[:n]
}

func (e *Entry) bindable() bool {
	return e.Handler != nil || e.Data != nil
}
