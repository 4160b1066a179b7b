// Package run implements the run command, which flashes a test image and
// reports the result the tests print on the board's log UART.
package run

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/google/shlex"
	"go.bug.st/serial"
)

const usageString = `Target test runner.

Usage: %s [flags] [image]

Flashes image with the -flash command, if given, then reads the log UART until
the tests report PASS or FAIL. The exit code is 0 if all tests passed,
otherwise 1. The -flash command defaults to $AMEBAGO_FLASH.

`

var (
	flags = flag.NewFlagSet("run", flag.ExitOnError)

	flash   = flags.String("flash", os.Getenv("AMEBAGO_FLASH"), "flash the image with command, the image path is appended")
	port    = flags.String("port", "", "serial port of the log UART (default first port found)")
	baud    = flags.Int("baud", 1500000, "baud rate of the log UART")
	timeout = flags.Duration("timeout", 2*time.Minute, "fail if no result is reported within")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "run")
	flags.PrintDefaults()
}

// settleDelay gives a panicking test time to print the stack trace.
const settleDelay = 500 * time.Millisecond

// Verdict classifies a line of test output. Done is true if the line ends the
// test run, code is the exit code to report then.
func Verdict(line string) (code int, done bool) {
	switch {
	case strings.HasPrefix(line, "fatal error:"), strings.HasPrefix(line, "panic:"):
		return 1, true
	case line == "FAIL":
		return 1, true
	case line == "PASS":
		return 0, true
	}
	return 0, false
}

// Watch copies the lines read from r to w until r is exhausted. After the
// first line deciding the test run, stop is called once settleDelay passed.
// Watch returns 1 if no such line was seen.
func Watch(r io.Reader, w io.Writer, stop func()) int {
	scanner := bufio.NewScanner(r)
	exiting := false
	code := 1
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		fmt.Fprintln(w, line)
		if exiting {
			continue
		}
		if c, done := Verdict(line); done {
			exiting, code = true, c
			go func() {
				time.Sleep(settleDelay)
				stop()
			}()
		}
	}
	return code
}

func runFlash(cmdline, image string) error {
	args, err := shlex.Split(cmdline)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("empty flash command")
	}
	if image != "" {
		args = append(args, image)
	}
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func openPort(name string, baud int) (serial.Port, error) {
	if name == "" {
		ports, err := serial.GetPortsList()
		if err != nil {
			return nil, err
		}
		if len(ports) == 0 {
			return nil, fmt.Errorf("no serial port found")
		}
		name = ports[0]
	}
	return serial.Open(name, &serial.Mode{BaudRate: baud})
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() > 1 || (flags.NArg() == 1 && *flash == "") {
		flags.Usage()
		os.Exit(1)
	}

	// Open the UART first, so no output of the freshly flashed image is
	// lost.
	uart, err := openPort(*port, *baud)
	if err != nil {
		log.Fatalln("open port:", err)
	}
	var once sync.Once
	stop := func() { once.Do(func() { uart.Close() }) }

	if *flash != "" {
		if err := runFlash(*flash, flags.Arg(0)); err != nil {
			stop()
			log.Fatalln("flash:", err)
		}
	}

	sigintr := make(chan os.Signal, 1)
	signal.Notify(sigintr, os.Interrupt)
	go func() {
		<-sigintr
		stop()
	}()
	timer := time.AfterFunc(*timeout, func() {
		log.Println("timeout")
		stop()
	})

	code := Watch(uart, os.Stdout, stop)
	timer.Stop()
	os.Exit(code)
}
