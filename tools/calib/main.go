// Package calib implements the calib command, which runs the PSRAM PHY
// calibration against a simulated device.
package calib

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/clktmr/ameba/soc/psram"
	"github.com/clktmr/ameba/soc/sim"
)

const usageString = `PSRAM calibration simulator.

Usage: %s [flags] <passing>

The passing N values are given either as 32 characters, one per N value, with
'1' or '.' for pass and '0' or 'x' for fail, or as a comma separated list of
values and ranges, e.g. "5-20,24-27".

`

var (
	flags = flag.NewFlagSet("calib", flag.ExitOnError)

	verbose = flags.Bool("v", false, "log the register accesses of the calibration")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "calib")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 1 {
		flags.Usage()
		os.Exit(1)
	}

	pass, err := ParsePass(flags.Arg(0))
	if err != nil {
		log.Fatalln(err)
	}

	var logger *slog.Logger
	if *verbose {
		logger = slog.New(slog.NewTextHandler(log.Writer(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	dev := sim.NewPSRAM(func(n int) bool { return pass[n] })
	cache := sim.NewDCache(dev)
	ctrl := psram.NewController(dev, cache, cache, logger)
	cal := psram.Calibrator{PHY: ctrl, Mem: cache, Cache: cache, Logger: logger}

	res, err := cal.Calibrate()
	fmt.Printf("window   %d-%d (%d)\n", res.Start, res.End, res.Size)
	if errors.Is(err, psram.ErrWindowTooSmall) {
		fmt.Printf("CAL_PARA %#08x (restored)\n", dev.PHY(psram.PHYCalPara))
		log.Fatalln(err)
	}
	fmt.Printf("N        %d\nJ        %d\nJMax     %d\n", res.N, res.J, res.JMax)
	fmt.Printf("CAL_PARA %#08x\n", dev.PHY(psram.PHYCalPara))
}

// ParsePass parses the passing N values in either notation of the usage
// string.
func ParsePass(s string) (pass [psram.NumN]bool, err error) {
	if len(s) == psram.NumN && strings.Trim(s, "01.x") == "" {
		for n, c := range s {
			pass[n] = c == '1' || c == '.'
		}
		return
	}

	for _, field := range strings.Split(s, ",") {
		from, to, isRange := strings.Cut(strings.TrimSpace(field), "-")
		if field == "" {
			continue
		}
		lo, err := parseN(from)
		if err != nil {
			return pass, err
		}
		hi := lo
		if isRange {
			if hi, err = parseN(to); err != nil {
				return pass, err
			}
		}
		if hi < lo {
			return pass, fmt.Errorf("empty range %q", field)
		}
		for n := lo; n <= hi; n++ {
			pass[n] = true
		}
	}
	return
}

func parseN(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 || n >= psram.NumN {
		return 0, fmt.Errorf("N value %d out of range", n)
	}
	return n, nil
}
