// Package loopback implements the loopback command, which sends a message on
// every IPC channel of a simulated SoC in both directions and checks what the
// peer's handler receives.
package loopback

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clktmr/ameba/soc/cpu"
	"github.com/clktmr/ameba/soc/ipc"
	"github.com/clktmr/ameba/soc/sim"
)

const usageString = `IPC loopback test on a simulated SoC.

Usage: %s [flags]

`

var (
	flags = flag.NewFlagSet("loopback", flag.ExitOnError)

	rounds  = flags.Int("n", 1, "number of rounds")
	timeout = flags.Duration("timeout", 5*time.Second, "abort if not done after")
	verbose = flags.Bool("v", false, "log channel binding")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "loopback")
	flags.PrintDefaults()
}

// ErrMismatch is returned by Run if a handler received another payload than
// was sent.
var ErrMismatch = errors.New("loopback: payload mismatch")

// Result is a single message.
type Result struct {
	From     cpu.Core
	Channel  ipc.Channel
	Sent     uint32
	Received uint32
}

func (r Result) OK() bool {
	return r.Sent == r.Received
}

// Run binds all channels of both cores of s and sends one message per channel
// and direction in each round. The next message is only sent after the peer
// handled the previous one.
func Run(ctx context.Context, s *sim.SoC, rounds int) ([]Result, error) {
	type msg struct {
		ch ipc.Channel
		v  uint32
	}
	var received [cpu.NumCores]chan msg
	for c := range cpu.Core(cpu.NumCores) {
		received[c] = make(chan msg, 1)
		p := s.Port(c)
		h := ipc.HandlerFunc(func(ch ipc.Channel, _ uint32, _ any) {
			v, _ := p.Receive(ch)
			received[c] <- msg{ch, v}
		})
		for ch := ipc.Channel(0); ch < ipc.NumChannels; ch++ {
			if err := p.Bind(ch, ipc.Entry{Handler: h}); err != nil {
				return nil, fmt.Errorf("%v: %w", c, err)
			}
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	serveCtx, stop := context.WithCancel(ctx)
	for c := range cpu.Core(cpu.NumCores) {
		g.Go(func() error {
			err := s.IRQ.Serve(serveCtx, c)
			if ctx.Err() == nil {
				return nil // stopped after the last message
			}
			return err
		})
	}

	var results []Result
	g.Go(func() error {
		defer stop()
		for round := range rounds {
			for from := range cpu.Core(cpu.NumCores) {
				for ch := ipc.Channel(0); ch < ipc.NumChannels; ch++ {
					v := 0x8000_0000 | uint32(round)<<16 | uint32(from)<<8 | uint32(ch)
					if err := s.Port(from).Send(ch, ipc.Message{Payload: v}); err != nil {
						return err
					}
					select {
					case m := <-received[from.Peer()]:
						if m.ch != ch {
							return fmt.Errorf("sent on channel %d, handled on %d", ch, m.ch)
						}
						results = append(results, Result{from, ch, v, m.v})
					case <-ctx.Done():
						return ctx.Err()
					}
				}
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return results, err
	}
	for _, r := range results {
		if !r.OK() {
			return results, ErrMismatch
		}
	}
	return results, nil
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 0 {
		flags.Usage()
		os.Exit(1)
	}

	var logger *slog.Logger
	if *verbose {
		logger = slog.New(slog.NewTextHandler(log.Writer(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	results, err := Run(ctx, sim.NewSoC(logger), *rounds)
	for _, r := range results {
		status := "ok"
		if !r.OK() {
			status = fmt.Sprintf("received %#08x", r.Received)
		}
		fmt.Printf("%v -> %v  channel %2d  %#08x  %s\n", r.From, r.From.Peer(), r.Channel, r.Sent, status)
	}
	if err != nil {
		log.Fatalln(err)
	}
}
