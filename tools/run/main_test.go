package run_test

import (
	"strings"
	"testing"
	"time"

	"github.com/clktmr/ameba/tools/run"
)

func TestVerdict(t *testing.T) {
	tests := map[string]struct {
		code int
		done bool
	}{
		"PASS":                       {0, true},
		"FAIL":                       {1, true},
		"panic: ipc: channel 3":      {1, true},
		"fatal error: out of memory": {1, true},
		"--- FAIL: TestSend (0.00s)": {0, false},
		"ok":                         {0, false},
	}
	for line, tc := range tests {
		code, done := run.Verdict(line)
		if code != tc.code || done != tc.done {
			t.Errorf("%q: got %d, %v", line, code, done)
		}
	}
}

func TestWatch(t *testing.T) {
	tests := []struct {
		output string
		code   int
		stop   bool
	}{
		{"=== RUN   TestSend\r\n--- PASS: TestSend\r\nPASS\r\n", 0, true},
		{"=== RUN   TestSend\npanic: boom\n\ngoroutine 1\nPASS\n", 1, true},
		{"FAIL\nPASS\n", 1, true},
		{"booting\n", 1, false},
	}
	for _, tc := range tests {
		stopped := make(chan struct{})
		var out strings.Builder
		code := run.Watch(strings.NewReader(tc.output), &out, func() { close(stopped) })
		if code != tc.code {
			t.Errorf("%q: exit code %d, expected %d", tc.output, code, tc.code)
		}
		if strings.Contains(out.String(), "\r") {
			t.Errorf("%q: carriage return not stripped", tc.output)
		}
		select {
		case <-stopped:
			if !tc.stop {
				t.Errorf("%q: stopped", tc.output)
			}
		case <-time.After(2 * time.Second):
			if tc.stop {
				t.Errorf("%q: not stopped", tc.output)
			}
		}
	}
}
