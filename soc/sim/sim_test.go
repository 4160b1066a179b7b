package sim_test

import (
	"testing"

	"github.com/clktmr/ameba/soc/cpu"
	"github.com/clktmr/ameba/soc/sim"
)

func TestDCacheStale(t *testing.T) {
	ram := sim.NewRAM()
	a, b := sim.NewDCache(ram), sim.NewDCache(ram)
	addr := ram.Alloc(64)

	if b.Load32(addr) != 0 {
		t.Fatal("fresh RAM not zero")
	}
	a.Store32(addr, 1)
	if b.Load32(addr) != 0 {
		t.Error("uncleaned write visible")
	}
	a.CleanInvalidate(addr, 4)
	if b.Load32(addr) != 0 {
		t.Error("cached line not stale")
	}
	b.Invalidate(addr, 4)
	if b.Load32(addr) != 1 {
		t.Error("invalidated line not refetched")
	}
	if a.Cached(addr) {
		t.Error("line still cached after clean")
	}
}

func TestDCacheInvalidateDiscards(t *testing.T) {
	ram := sim.NewRAM()
	c := sim.NewDCache(ram)
	addr := ram.Alloc(4)

	c.Store32(addr, 0xbad)
	c.Invalidate(addr, 4)
	if got := c.Load32(addr); got != 0 {
		t.Errorf("dirty line written back: %#x", got)
	}
	if invalidates, cleans := c.Stats(); invalidates != 1 || cleans != 0 {
		t.Errorf("stats %d, %d", invalidates, cleans)
	}
}

func TestAlloc(t *testing.T) {
	ram := sim.NewRAM()
	a, b := ram.Alloc(4), ram.Alloc(100)
	if a != sim.RAMBase {
		t.Errorf("first allocation at %#x", a)
	}
	if b%cpu.CacheLineSize != 0 || b < a+4 {
		t.Errorf("second allocation at %#x", b)
	}
}
