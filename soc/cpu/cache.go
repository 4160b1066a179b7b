package cpu

// Cache operations always affect whole cache lines of the Cortex-M data cache.
const CacheLineSize = 32
const cacheLineMask = ^Addr(CacheLineSize - 1)

// Cache is the data cache maintenance of the running core. All operations are
// synchronous and return after the cache lines have been written back to or
// discarded in favour of RAM.
type Cache interface {
	// Causes the cache to be read from RAM before next access. Call this
	// before reading memory which was written by the other core. If the
	// specified address is currently not cached, this is a no-op.
	Invalidate(addr Addr, length int)

	// Causes the cache to be written back to RAM and dropped. Call this after
	// writing memory which the other core or a bus master is going to read.
	CleanInvalidate(addr Addr, length int)
}

// LineAlign returns the cache line aligned range covering [addr, addr+length).
func LineAlign(addr Addr, length int) (start Addr, n int) {
	start = addr & cacheLineMask
	end := (uint64(addr) + uint64(length) + CacheLineSize - 1) &^ (CacheLineSize - 1)
	return start, int(end - uint64(start))
}

// NoCache is used for memory that is mapped uncached, e.g. the IPC registers.
type NoCache struct{}

func (NoCache) Invalidate(addr Addr, length int)      {}
func (NoCache) CleanInvalidate(addr Addr, length int) {}
