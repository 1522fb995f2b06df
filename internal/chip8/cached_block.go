package chip8

// CachedInstruction is one decoded step of a straight-line block: the
// opcode word captured at build time and the handler it dispatches to.
// Variants 1 and 2 share this exact shape (spec §4.4, §4.5); variant 3
// memoizes single instructions instead of blocks (§4.6).
type CachedInstruction struct {
	Opcode  Opcode
	Execute Handler
}

// blockTerminators are the opcodes that can change PC non-sequentially and
// therefore always end a decoded block, per the block builder rule shared by
// §4.4 and §4.5. Conditional branches are deliberately absent: they may
// change PC, but only at runtime via the Control return, not at build time.
func isBlockTerminator(op Opcode) bool {
	switch {
	case op == 0x00EE:
		return true
	case op&0xF000 == 0x1000:
		return true
	case op&0xF000 == 0x2000:
		return true
	case op&0xF000 == 0xB000:
		return true
	case op&0xF0FF == 0xF00A:
		return true
	case op&0xF0FF == 0xF055:
		return true
	}
	return false
}

// buildBlock decodes successive opcodes starting at pc into a straight-line
// sequence, stopping after the first block-terminating opcode (inclusive),
// or immediately before an invalid opcode once at least one valid opcode has
// been decoded, or when stop(pc) reports a caller-specific boundary (variant 2's pool
// rollover). It never mutates State. An invalid opcode reached before any
// valid one panics, matching the decoder's own trap (spec §4.4).
func buildBlock(s *State, startPC uint16, stop func(pc uint16) bool) []CachedInstruction {
	var block []CachedInstruction
	pc := startPC

	for {
		op := s.Fetch(pc)
		h := decode(op)
		if h == nil {
			if len(block) == 0 {
				invalidOpcode(op, pc)
			}
			break
		}

		block = append(block, CachedInstruction{Opcode: op, Execute: h})
		terminated := isBlockTerminator(op)
		pc += 2

		if terminated {
			break
		}
		if stop != nil && stop(pc) {
			break
		}
	}

	return block
}
