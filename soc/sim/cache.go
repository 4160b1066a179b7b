package sim

import (
	"sync"

	"github.com/clktmr/ameba/soc/cpu"
)

const lineWords = cpu.CacheLineSize / 4

type line struct {
	words [lineWords]uint32
	dirty bool
}

// DCache is a write-back, write-allocate data cache in front of a Backing. It
// implements cpu.Cache and the Memory interfaces of the ipc and psram
// packages.
type DCache struct {
	mtx   sync.Mutex
	mem   Backing
	lines map[cpu.Addr]*line

	invalidates, cleans int
}

func NewDCache(mem Backing) *DCache {
	return &DCache{mem: mem, lines: make(map[cpu.Addr]*line)}
}

func lineAddr(addr cpu.Addr) (cpu.Addr, int) {
	base := addr &^ (cpu.CacheLineSize - 1)
	return base, int(addr-base) / 4
}

func (c *DCache) fill(addr cpu.Addr) (*line, int) {
	base, idx := lineAddr(addr)
	l, ok := c.lines[base]
	if !ok {
		l = new(line)
		for i := range l.words {
			l.words[i] = c.mem.Load32(base.Add(uint32(i) * 4))
		}
		c.lines[base] = l
	}
	return l, idx
}

func (c *DCache) Load32(addr cpu.Addr) uint32 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	l, i := c.fill(addr)
	return l.words[i]
}

func (c *DCache) Store32(addr cpu.Addr, v uint32) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	l, i := c.fill(addr)
	l.words[i] = v
	l.dirty = true
}

// Invalidate drops the lines covering the range, discarding dirty data.
func (c *DCache) Invalidate(addr cpu.Addr, length int) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.invalidates++
	start, n := cpu.LineAlign(addr, length)
	for a := start; a < start+cpu.Addr(n); a += cpu.CacheLineSize {
		delete(c.lines, a)
	}
}

// CleanInvalidate writes dirty lines covering the range back and drops them.
func (c *DCache) CleanInvalidate(addr cpu.Addr, length int) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.cleans++
	start, n := cpu.LineAlign(addr, length)
	for a := start; a < start+cpu.Addr(n); a += cpu.CacheLineSize {
		l, ok := c.lines[a]
		if !ok {
			continue
		}
		if l.dirty {
			for i, v := range l.words {
				c.mem.Store32(a.Add(uint32(i)*4), v)
			}
		}
		delete(c.lines, a)
	}
}

// Cached reports whether the line holding addr is in the cache.
func (c *DCache) Cached(addr cpu.Addr) bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	base, _ := lineAddr(addr)
	_, ok := c.lines[base]
	return ok
}

// Stats returns the number of invalidate and clean operations so far.
func (c *DCache) Stats() (invalidates, cleans int) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.invalidates, c.cleans
}
