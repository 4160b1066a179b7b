package main

import "testing"

func TestCommand(t *testing.T) {
	for arg, expected := range map[string]string{
		"ipc":                        "ipc",
		"calib":                      "calib",
		"loopback":                   "loopback",
		"run":                        "run",
		"km4_image2_all.bin":         "run",
		"build/target_img2.axf":      "run",
		"/tmp/go-build123/psram.elf": "run",
		"image":                      "",
		"flash":                      "",
		"":                           "",
	} {
		if got := command(arg); got != expected {
			t.Errorf("%q: got %q, expected %q", arg, got, expected)
		}
	}
}
