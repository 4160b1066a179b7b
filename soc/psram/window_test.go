package psram_test

import (
	"testing"

	"github.com/clktmr/ameba/soc/psram"
)

func passing(ranges ...[2]int) (pass [psram.NumN]bool) {
	for _, r := range ranges {
		for n := r[0]; n <= r[1]; n++ {
			pass[n] = true
		}
	}
	return
}

func TestFindWindow(t *testing.T) {
	tests := map[string]struct {
		pass     [psram.NumN]bool
		expected psram.Window
	}{
		"none":       {passing(), psram.Window{Start: -1, End: -1, Size: 0}},
		"all":        {passing([2]int{0, 31}), psram.Window{Start: 0, End: 31, Size: 32}},
		"largest":    {passing([2]int{5, 20}, [2]int{24, 27}), psram.Window{Start: 5, End: 20, Size: 16}},
		"last":       {passing([2]int{0, 2}, [2]int{20, 31}), psram.Window{Start: 20, End: 31, Size: 12}},
		"single":     {passing([2]int{31, 31}), psram.Window{Start: 31, End: 31, Size: 1}},
		"tie":        {passing([2]int{0, 3}, [2]int{10, 13}), psram.Window{Start: 0, End: 3, Size: 4}},
		"tie at end": {passing([2]int{4, 7}, [2]int{28, 31}), psram.Window{Start: 4, End: 7, Size: 4}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := psram.FindWindow(tc.pass)
			if got != tc.expected {
				t.Errorf("got %+v, expected %+v", got, tc.expected)
			}
			if got.Empty() != (tc.expected.Size == 0) {
				t.Error("Empty() mismatch")
			}
		})
	}
}
