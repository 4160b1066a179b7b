// Package ipccfg provides the IPC channel tables of Ameba boards.
//
// A board file describes the channels one core binds, in YAML:
//
//	name: amebad
//	core: km0
//	channels:
//	  - channel: 31
//	    kind: pointer
//	    handler: km4_tickless
//
// Channels not listed carry data and stay unbound. Handlers are referenced by
// name and resolved through a Handlers registry, so the same file can be used
// on the target and in host tools.
package ipccfg

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/clktmr/ameba/soc/cpu"
	"github.com/clktmr/ameba/soc/ipc"
)

// Handler names used by the default tables.
const (
	ShellSwitch  = "shell_switch"  // console switches between the cores
	WiFiFW       = "wifi_fw"       // WiFi firmware flow control
	FlashProgram = "flash_program" // peer requests to pause flash access
	Tickless     = "km4_tickless"  // KM4 enters or leaves tickless sleep
)

var (
	ErrCore      = errors.New("ipccfg: unknown core")
	ErrKind      = errors.New("ipccfg: unknown message kind")
	ErrChannel   = errors.New("ipccfg: channel out of range")
	ErrDuplicate = errors.New("ipccfg: channel listed twice")
	ErrHandler   = errors.New("ipccfg: handler not registered")
)

// Handlers resolves handler names of board files.
type Handlers map[string]ipc.Handler

// Board is a parsed board file.
type Board struct {
	Name  string
	Core  cpu.Core
	Table ipc.Table // one entry per channel, terminated
}

type boardFile struct {
	Name     string        `yaml:"name"`
	Core     string        `yaml:"core"`
	Channels []channelFile `yaml:"channels"`
}

type channelFile struct {
	Channel int    `yaml:"channel"`
	Kind    string `yaml:"kind"`
	Handler string `yaml:"handler"`
	Data    string `yaml:"data"`
}

// Load reads a board file from r. Unknown fields are rejected.
func Load(r io.Reader, h Handlers) (*Board, error) {
	var f boardFile
	dec := yaml.NewDecoder(r)
	dec.SetStrict(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("ipccfg: %w", err)
	}

	core, err := cpu.ParseCore(f.Core)
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrCore, f.Core)
	}

	b := &Board{Name: f.Name, Core: core, Table: make(ipc.Table, ipc.NumChannels+1)}
	b.Table[ipc.NumChannels] = ipc.TableEnd

	var seen uint32
	for _, c := range f.Channels {
		if c.Channel < 0 || c.Channel >= ipc.NumChannels {
			return nil, fmt.Errorf("%w: %d", ErrChannel, c.Channel)
		}
		if seen&(1<<c.Channel) != 0 {
			return nil, fmt.Errorf("%w: %d", ErrDuplicate, c.Channel)
		}
		seen |= 1 << c.Channel

		e, err := c.entry(h)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", c.Channel, err)
		}
		b.Table[c.Channel] = e
	}
	return b, nil
}

func (c *channelFile) entry(h Handlers) (e ipc.Entry, err error) {
	e.Kind, err = ParseKind(c.Kind)
	if err != nil {
		return
	}
	if c.Handler != "" {
		handler, ok := h[c.Handler]
		if !ok || handler == nil {
			return e, fmt.Errorf("%w: %q", ErrHandler, c.Handler)
		}
		e.Handler = handler
	}
	if c.Data != "" {
		e.Data = c.Data
	}
	return
}

// ParseKind parses the kind of a channel. The empty string means data.
func ParseKind(s string) (ipc.MsgKind, error) {
	switch strings.ToLower(s) {
	case "", "data":
		return ipc.KindData, nil
	case "pointer", "point":
		return ipc.KindPointer, nil
	}
	return 0, fmt.Errorf("%w %q", ErrKind, s)
}

//go:embed boards/*.yaml
var boards embed.FS

// Default returns the vendor's Ameba-D table for core. All handlers it names
// must be registered in h.
func Default(core cpu.Core, h Handlers) (*Board, error) {
	if !core.Valid() {
		return nil, ErrCore
	}
	f, err := boards.Open("boards/amebad-" + strings.ToLower(core.String()) + ".yaml")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, h)
}

// DefaultHandlers lists the handler names used by the default table of core.
func DefaultHandlers(core cpu.Core) []string {
	if core == cpu.KM4 {
		return []string{ShellSwitch, FlashProgram}
	}
	return []string{ShellSwitch, WiFiFW, FlashProgram, Tickless}
}
