// Package ipc implements message channels between the KM4 and KM0 cores.
//
// Each core owns a bank of mailbox registers which only it writes and only its
// peer reads. A message is a single word: channels 0 to 10 pass it in their own
// mailbox slot, channels 11 to 31 pass it in the sender's overflow array in
// shared RAM, whose address is put in the last mailbox slot. After writing the
// payload the sender raises the channel's interrupt on the peer, which then
// fetches the word with Receive from within its handler.
//
// There is no acknowledgement. A new message on a channel overwrites the
// previous one, whether or not the peer has read it yet. Sends from the same
// core must be serialized by the caller, because all channels above 10 share
// the overflow array.
package ipc

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/clktmr/ameba/debug"
	"github.com/clktmr/ameba/soc/cpu"
)

var (
	ErrChannelRange = errors.New("ipc: channel out of range")
	ErrUnterminated = errors.New("ipc: channel table not terminated")
	ErrTableSize    = errors.New("ipc: channel table too large")
	ErrBound        = errors.New("ipc: channel already bound")
)

// StackPointerError is the panic value of a Send which would pass a pointer
// into the sender's stack. The stack might be reused before the peer reads
// the message.
type StackPointerError struct {
	Channel Channel
	Payload cpu.Addr
	Stack   cpu.Stack
}

func (e *StackPointerError) Error() string {
	return fmt.Sprintf("ipc: channel %d: payload %#08x points into stack [%#08x, %#08x]",
		e.Channel, uint32(e.Payload), uint32(e.Stack.Base), uint32(e.Stack.End()))
}

// Message is passed to Send. Only Payload is transferred to the peer, Kind is
// checked locally and Len and Reserved are for the caller's bookkeeping.
type Message struct {
	Kind     MsgKind
	Payload  uint32
	Len      uint32
	Reserved uint32
}

// Config wires a Port to the hardware.
type Config struct {
	Local    cpu.Core // the core using the Port
	Mailbox  Mailbox
	Memory   Memory
	Overflow cpu.Addr // address of the local core's overflow array
	Cache    cpu.Cache
	IRQ      Interrupts
	Priority int           // interrupt priority used when binding channels
	Stack    cpu.StackFunc // optional, disables the stack check if nil
	Logger   *slog.Logger  // optional
}

// Port is one core's end of the IPC channels.
type Port struct {
	local    cpu.Core
	mbox     Mailbox
	mem      Memory
	overflow cpu.Addr
	cache    cpu.Cache
	irq      Interrupts
	prio     int
	stack    cpu.StackFunc
	log      *slog.Logger

	entries [NumChannels]Entry
	bound   uint32
}

func NewPort(cfg Config) *Port {
	debug.Assert(cfg.Local.Valid(), "invalid core")
	debug.Assert(cfg.Overflow%cpu.CacheLineSize == 0, "overflow array not cache line aligned")

	p := &Port{
		local:    cfg.Local,
		mbox:     cfg.Mailbox,
		mem:      cfg.Memory,
		overflow: cfg.Overflow,
		cache:    cfg.Cache,
		irq:      cfg.IRQ,
		prio:     cfg.Priority,
		stack:    cfg.Stack,
		log:      cfg.Logger,
	}
	if p.cache == nil {
		p.cache = cpu.NoCache{}
	}
	if p.log == nil {
		p.log = slog.New(slog.DiscardHandler)
	}
	return p
}

// Local returns the core this Port sends from.
func (p *Port) Local() cpu.Core {
	return p.local
}

// Init binds the channels configured in t to the interrupt controller. Entries
// without handler and data are left unbound, but their kind is still recorded.
// Init must only be called once, another call fails with ErrBound. If any
// channel of t is already bound, no channel is bound.
func (p *Port) Init(t Table) error {
	n := t.Len()
	if n < 0 {
		return ErrUnterminated
	}
	if n > NumChannels {
		return ErrTableSize
	}

	if debug.Enabled {
		for _, e := range t[:n] {
			debug.Assert(e.Kind == KindData || e.Kind == KindPointer, "unknown message kind")
		}
	}

	// Nothing is registered if any channel is taken.
	for i, e := range t[:n] {
		if e.bindable() && p.bound&(1<<i) != 0 {
			return fmt.Errorf("channel %d: %w", i, ErrBound)
		}
	}

	for i, e := range t[:n] {
		ch := Channel(i)
		if !e.bindable() {
			if p.bound&(1<<ch) == 0 {
				p.entries[ch].Kind = e.Kind
			}
			continue
		}
		if err := p.Bind(ch, e); err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}
	}
	return nil
}

// Bind registers e for channel ch.
func (p *Port) Bind(ch Channel, e Entry) error {
	if !ch.Valid() {
		return ErrChannelRange
	}
	if p.bound&(1<<ch) != 0 {
		return ErrBound
	}
	debug.Assert(e.Kind != KindEnd, "binding table end")

	p.entries[ch] = e
	p.bound |= 1 << ch
	p.irq.Register(p.local, ch, e.Handler, e.Data, p.prio)
	p.log.Debug("bind", slog.String("core", p.local.String()),
		slog.Int("channel", int(ch)), slog.String("kind", e.Kind.String()))
	return nil
}

// Unbind removes the handler of channel ch. It's a no-op for unbound channels.
func (p *Port) Unbind(ch Channel) {
	if !ch.Valid() || p.bound&(1<<ch) == 0 {
		return
	}
	p.irq.Unregister(p.local, ch)
	p.bound &^= 1 << ch
	p.entries[ch].Handler = nil
	p.entries[ch].Data = nil
}

// Bound reports whether a handler is bound to channel ch.
func (p *Port) Bound(ch Channel) bool {
	return ch.Valid() && p.bound&(1<<ch) != 0
}

// Entry returns the configuration of channel ch.
func (p *Port) Entry(ch Channel) Entry {
	if !ch.Valid() {
		return Entry{}
	}
	return p.entries[ch]
}

// Kind returns the configured message kind of channel ch.
func (p *Port) Kind(ch Channel) MsgKind {
	return p.Entry(ch).Kind
}

// Send passes m.Payload to the peer on channel ch and raises the channel's
// interrupt there.
//
// If m or the channel is of kind KindPointer, the payload must not point into
// the calling task's stack. Send panics with a *StackPointerError otherwise.
// The check only runs if Config.Stack was set, which Target leaves to the
// caller.
func (p *Port) Send(ch Channel, m Message) error {
	if !ch.Valid() {
		return ErrChannelRange
	}

	if m.Kind == KindPointer || p.entries[ch].Kind == KindPointer {
		p.checkStack(ch, cpu.Addr(m.Payload))
	}

	if ch.Direct() {
		p.mbox.Store(p.local, int(ch), m.Payload)
	} else {
		addr := overflowWord(p.overflow, ch)
		p.mem.Store32(addr, m.Payload)
		p.cache.CleanInvalidate(addr, 4)
		p.mbox.Store(p.local, OverflowSlot, uint32(p.overflow))
	}

	// The payload must be visible before the request.
	p.irq.Request(p.local, ch)
	return nil
}

func (p *Port) checkStack(ch Channel, payload cpu.Addr) {
	if p.stack == nil {
		return
	}
	if s := p.stack(); s.Contains(payload) {
		panic(&StackPointerError{Channel: ch, Payload: payload, Stack: s})
	}
}

// Receive returns the last payload the peer sent on channel ch. It has no side
// effects, calling it again returns the same payload until the peer sends
// anew.
//
// Only the payload word is transferred, the kind, length and reserved fields
// of the peer's Message are not available.
func (p *Port) Receive(ch Channel) (uint32, error) {
	if !ch.Valid() {
		return 0, ErrChannelRange
	}

	peer := p.local.Peer()
	if ch.Direct() {
		return p.mbox.Load(peer, int(ch)), nil
	}

	base := cpu.Addr(p.mbox.Load(peer, OverflowSlot))
	addr := overflowWord(base, ch)
	p.cache.Invalidate(addr, 4)
	return p.mem.Load32(addr), nil
}
