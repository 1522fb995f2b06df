package chip8

// cacheSlots is one slot per addressable byte in 0x200..0x1000, matching the
// byte-granular PC indexing used by the reference implementation — most
// slots go unused since valid opcodes only start on word boundaries reached
// by a jump, but self-modifying code and odd Bnnn targets can land anywhere.
const cacheSlots = MaxProgramLen

// Cached1 is the linear-table, linear-scan-invalidation variant (spec §4.4):
// one slot per possible starting PC, filled lazily, invalidated by scanning
// every slot whose range overlaps a Fx55 write.
type Cached1 struct {
	blocks [cacheSlots][]CachedInstruction
}

func slotIndex(pc uint16) int {
	return int(pc - InitialPC)
}

// Step executes the decoded block starting at s.PC, building and caching it
// first if this PC has never been visited, then ticks the timer.
func (c *Cached1) Step(s *State, timers *Timers) TickEvent {
	idx := slotIndex(s.PC)
	block := c.blocks[idx]
	if block == nil {
		block = buildBlock(s, s.PC, nil)
		c.blocks[idx] = block
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

// invalidate clears every cached block whose [startPC, endPC) span contains
// either endpoint of [lo, hi], per the linear-scan rule of §4.4.
func (c *Cached1) invalidate(lo, hi uint16) {
	for i, block := range c.blocks {
		if block == nil {
			continue
		}
		start := uint16(InitialPC + i)
		end := start + uint16(len(block))*2
		if (lo >= start && lo < end) || (hi >= start && hi < end) {
			c.blocks[i] = nil
		}
	}
}
