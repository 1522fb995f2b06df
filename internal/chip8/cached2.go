package chip8

// subcacheShift/subcacheSize/subcacheMask partition guest memory into 16-byte
// pools, each holding up to 16 decoded blocks indexed by the low bits of the
// PC, grounded on the reference cached_interpreter_2 module's addr_to_index
// and index_in_subcache split (spec §4.5).
const (
	subcacheShift = 4
	subcacheSize  = 1 << subcacheShift
	subcacheMask  = subcacheSize - 1
)

// poolCount is the number of 16-byte pools spanning 0x200..0x1000.
const poolCount = MaxProgramLen >> subcacheShift

func addrToPool(pc uint16) int {
	return int(pc-InitialPC) >> subcacheShift
}

func indexInSubcache(pc uint16) int {
	return int(pc-InitialPC) & subcacheMask
}

// Cached2 is the 16-slot-bucket, O(1)-invalidation variant (spec §4.5): a
// pool is allocated lazily on first use within its 16-byte range, and
// invalidation clears whole pools rather than scanning individual blocks.
type Cached2 struct {
	pools [poolCount]*[subcacheSize][]CachedInstruction
}

// Step executes the decoded block starting at s.PC, building and caching it
// first if needed, then ticks the timer.
func (c *Cached2) Step(s *State, timers *Timers) TickEvent {
	pool := addrToPool(s.PC)
	if c.pools[pool] == nil {
		c.pools[pool] = &[subcacheSize][]CachedInstruction{}
	}
	slot := indexInSubcache(s.PC)

	block := c.pools[pool][slot]
	if block == nil {
		block = buildBlock(s, s.PC, func(pc uint16) bool {
			return indexInSubcache(pc) == 0
		})
		c.pools[pool][slot] = block
	}

	var ret Control
	for _, ci := range block {
		s.PC += 2
		ret = ci.Execute(s, ci.Opcode)
		if ret != ContinueBlock {
			break
		}
	}

	if lo, hi, ok := InvalidateRange(ret); ok {
		c.invalidate(lo, hi)
	}

	return timers.Tick(s)
}

// invalidate clears every pool between the pools containing lo and hi,
// inclusive — constant-time regardless of how many blocks those pools hold
// (spec §4.5).
func (c *Cached2) invalidate(lo, hi uint16) {
	loPool := addrToPool(lo)
	hiPool := addrToPool(hi)
	for p := loPool; p <= hiPool; p++ {
		c.pools[p] = nil
	}
}
