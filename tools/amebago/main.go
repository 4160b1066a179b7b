package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/clktmr/ameba/tools/calib"
	"github.com/clktmr/ameba/tools/ipctab"
	"github.com/clktmr/ameba/tools/loopback"
	"github.com/clktmr/ameba/tools/run"
)

const usageString = `amebago is a tool for development of Ameba dual-core firmware.

Usage:

	%[1]s <command> [arguments]
	%[1]s <image> [arguments]

The commands are:

	ipc      print and compare the KM0/KM4 IPC channel tables
	calib    run the PSRAM PHY calibration against a simulated device
	loopback exchange messages on all 32 IPC channels of a simulated SoC
	run      flash a test image and report the results from the log UART

An image path (*.bin, *.axf or *.elf) is a shorthand for "run <image>" and
is flashed with $AMEBAGO_FLASH.
`

// command returns the command to run for the first argument, or "" if there
// is none.
func command(arg string) string {
	switch arg {
	case "ipc", "calib", "loopback", "run":
		return arg
	}
	switch filepath.Ext(arg) {
	case ".bin", ".axf", ".elf":
		return "run"
	}
	return ""
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), usageString, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	log.Default().SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	args := flag.Args()
	cmd := command(args[0])
	if cmd == "run" && args[0] != "run" {
		args = append([]string{cmd}, args...)
	}

	switch cmd {
	case "ipc":
		ipctab.Main(args)
	case "calib":
		calib.Main(args)
	case "loopback":
		loopback.Main(args)
	case "run":
		run.Main(args)
	default:
		fmt.Fprintf(flag.CommandLine.Output(), "unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}
