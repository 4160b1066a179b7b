package psram

// NumN is the number of sampling delays swept by the calibration.
const NumN = 32

// Window is a contiguous range of passing N values. End is inclusive.
type Window struct {
	Start, End int
	Size       int
}

var noWindow = Window{Start: -1, End: -1}

func (w Window) Empty() bool {
	return w.Size == 0
}

// tracker remembers the largest run of passing values seen so far, preferring
// the earliest one among runs of equal size.
type tracker struct {
	best, cur Window
}

func newTracker() tracker {
	return tracker{best: noWindow, cur: noWindow}
}

func (t *tracker) observe(n int, pass bool) {
	if pass {
		if t.cur.Start < 0 {
			t.cur.Start = n
		}
		t.cur.End = t.cur.Start + t.cur.Size
		t.cur.Size++

		if n == NumN-1 {
			t.promote()
		}
		return
	}

	if t.cur.Start >= 0 {
		t.promote()
		t.cur = noWindow
	}
}

func (t *tracker) promote() {
	if t.cur.Size > t.best.Size {
		t.best = t.cur
	}
}

// FindWindow returns the largest run of passing N values, or an empty window
// with Start and End set to -1 if none passed.
func FindWindow(pass [NumN]bool) Window {
	t := newTracker()
	for n, ok := range pass {
		t.observe(n, ok)
	}
	return t.best
}
