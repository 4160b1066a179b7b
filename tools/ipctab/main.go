// Package ipctab implements the ipc command, which prints IPC channel tables
// and checks them against the vendor defaults.
package ipctab

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/clktmr/ameba/drivers/ipccfg"
	"github.com/clktmr/ameba/soc/cpu"
	"github.com/clktmr/ameba/soc/ipc"
)

const usageString = `IPC channel table utility.

Usage: %s [flags] [board.yaml ...]

Without board files the default tables of both cores are printed.

`

var (
	flags = flag.NewFlagSet("ipc", flag.ExitOnError)

	handlers = flags.String("handlers", "", "comma separated handler names used in addition to the default ones")
	diff     = flags.Bool("diff", false, "report channels whose kind differs from the default table")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "ipc")
	flags.PrintDefaults()
}

// named is a handler which only carries its name.
type named string

func (named) OnMessage(ipc.Channel, uint32, any) {}

// Registry returns Handlers resolving the default handler names and extra.
func Registry(extra ...string) ipccfg.Handlers {
	h := ipccfg.Handlers{}
	for c := range cpu.Core(cpu.NumCores) {
		for _, name := range ipccfg.DefaultHandlers(c) {
			h[name] = named(name)
		}
	}
	for _, name := range extra {
		if name = strings.TrimSpace(name); name != "" {
			h[name] = named(name)
		}
	}
	return h
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	var extra []string
	if *handlers != "" {
		extra = strings.Split(*handlers, ",")
	}
	h := Registry(extra...)

	var boards []*ipccfg.Board
	if flags.NArg() == 0 {
		for _, c := range []cpu.Core{cpu.KM4, cpu.KM0} {
			b, err := ipccfg.Default(c, h)
			if err != nil {
				log.Fatalln(err)
			}
			boards = append(boards, b)
		}
	}
	for _, name := range flags.Args() {
		b, err := load(name, h)
		if err != nil {
			log.Fatalln(err)
		}
		boards = append(boards, b)
	}

	differs := false
	for _, b := range boards {
		Print(os.Stdout, b)
		if !*diff {
			continue
		}
		def, err := ipccfg.Default(b.Core, h)
		if err != nil {
			log.Fatalln(err)
		}
		for _, ch := range ipccfg.Diff(def.Table, b.Table) {
			fmt.Printf("channel %d: kind %v, default %v\n", ch, b.Table.Channels()[ch].Kind, def.Table.Channels()[ch].Kind)
			differs = true
		}
	}
	if differs {
		os.Exit(1)
	}
}

func load(name string, h ipccfg.Handlers) (*ipccfg.Board, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := ipccfg.Load(f, h)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return b, nil
}

// Print writes the channels of b which are bound or carry pointers.
func Print(w io.Writer, b *ipccfg.Board) {
	fmt.Fprintf(w, "%s %v fingerprint %#02x\n", b.Name, b.Core, ipccfg.Fingerprint(b.Table))
	for ch, e := range b.Table.Channels() {
		if e.Handler == nil && e.Data == nil && e.Kind == ipc.KindData {
			continue
		}
		slot := "direct"
		if !ipc.Channel(ch).Direct() {
			slot = "overflow"
		}
		handler := "-"
		if n, ok := e.Handler.(named); ok {
			handler = string(n)
		}
		data := ""
		if e.Data != nil {
			data = fmt.Sprint(e.Data)
		}
		fmt.Fprintf(w, "  %2d  %-8s  %-7v  %-14s  %s\n", ch, slot, e.Kind, handler, data)
	}
}
