package chip8

import "math/rand"

// Handler executes the semantics of one opcode against State and returns a
// Control code (spec §4.2). Every execution backend — interpreter, the three
// cached-interpreter variants, and the interpreter fallback inside the JIT —
// calls through this exact signature, so their behavior is bit-for-bit
// identical by construction.
type Handler func(*State, Opcode) Control

func execute00E0(s *State, _ Opcode) Control {
	s.clearScreen()
	return ContinueBlock
}

func execute00EE(s *State, _ Opcode) Control {
	if s.SP > 0 {
		s.SP--
		s.PC = s.Stack[s.SP]
	} else {
		reportStackUnderflow()
	}
	return EndBlock
}

func execute1nnn(s *State, op Opcode) Control {
	s.PC = op.NNN()
	return EndBlock
}

func execute2nnn(s *State, op Opcode) Control {
	if s.SP < 16 {
		s.Stack[s.SP] = s.PC
		s.SP++
		s.PC = op.NNN()
	} else {
		reportStackOverflow()
	}
	return EndBlock
}

func execute3xkk(s *State, op Opcode) Control {
	x, kk := op.XKK()
	if s.V[x] == kk {
		s.PC += 2
		return EndBlock
	}
	return ContinueBlock
}

func execute4xkk(s *State, op Opcode) Control {
	x, kk := op.XKK()
	if s.V[x] != kk {
		s.PC += 2
		return EndBlock
	}
	return ContinueBlock
}

func execute5xy0(s *State, op Opcode) Control {
	x, y := op.XY()
	if s.V[x] == s.V[y] {
		s.PC += 2
		return EndBlock
	}
	return ContinueBlock
}

func execute6xkk(s *State, op Opcode) Control {
	x, kk := op.XKK()
	s.V[x] = kk
	return ContinueBlock
}

func execute7xkk(s *State, op Opcode) Control {
	x, kk := op.XKK()
	s.V[x] += kk // wrapping 8-bit add
	return ContinueBlock
}

func execute8xy0(s *State, op Opcode) Control {
	x, y := op.XY()
	s.V[x] = s.V[y]
	return ContinueBlock
}

func execute8xy1(s *State, op Opcode) Control {
	x, y := op.XY()
	s.V[x] |= s.V[y]
	return ContinueBlock
}

func execute8xy2(s *State, op Opcode) Control {
	x, y := op.XY()
	s.V[x] &= s.V[y]
	return ContinueBlock
}

func execute8xy3(s *State, op Opcode) Control {
	x, y := op.XY()
	s.V[x] ^= s.V[y]
	return ContinueBlock
}

func execute8xy4(s *State, op Opcode) Control {
	x, y := op.XY()
	sum := uint16(s.V[x]) + uint16(s.V[y])
	s.V[x] = uint8(sum)
	if sum > 0xFF {
		s.V[0xF] = 1
	} else {
		s.V[0xF] = 0
	}
	return ContinueBlock
}

func execute8xy5(s *State, op Opcode) Control {
	x, y := op.XY()
	borrow := s.V[x] < s.V[y]
	s.V[x] -= s.V[y]
	if borrow {
		s.V[0xF] = 0
	} else {
		s.V[0xF] = 1
	}
	return ContinueBlock
}

func execute8xy6(s *State, op Opcode) Control {
	x := op.X()
	carry := s.V[x] & 1
	s.V[x] >>= 1
	s.V[0xF] = carry
	return ContinueBlock
}

func execute8xy7(s *State, op Opcode) Control {
	x, y := op.XY()
	borrow := s.V[y] < s.V[x]
	s.V[x] = s.V[y] - s.V[x]
	if borrow {
		s.V[0xF] = 0
	} else {
		s.V[0xF] = 1
	}
	return ContinueBlock
}

func execute8xyE(s *State, op Opcode) Control {
	x := op.X()
	carry := s.V[x] >> 7 & 1
	s.V[x] <<= 1
	s.V[0xF] = carry
	return ContinueBlock
}

func execute9xy0(s *State, op Opcode) Control {
	x, y := op.XY()
	if s.V[x] != s.V[y] {
		s.PC += 2
		return EndBlock
	}
	return ContinueBlock
}

func executeAnnn(s *State, op Opcode) Control {
	s.I = op.NNN()
	return ContinueBlock
}

func executeBnnn(s *State, op Opcode) Control {
	s.PC = op.NNN() + uint16(s.V[0])
	return EndBlock
}

func executeCxkk(s *State, op Opcode) Control {
	x, kk := op.XKK()
	s.V[x] = byte(rand.Intn(256)) & kk
	return ContinueBlock
}

func executeDxyn(s *State, op Opcode) Control {
	x, y := op.XY()
	s.draw(x, y, op.N())
	return ContinueBlock
}

func executeEx9E(s *State, op Opcode) Control {
	x := op.X()
	if s.Keys[s.V[x]] {
		s.PC += 2
		return EndBlock
	}
	return ContinueBlock
}

func executeExA1(s *State, op Opcode) Control {
	x := op.X()
	if !s.Keys[s.V[x]] {
		s.PC += 2
		return EndBlock
	}
	return ContinueBlock
}

func executeFx07(s *State, op Opcode) Control {
	x := op.X()
	s.V[x] = s.Delay
	return ContinueBlock
}

func executeFx0A(s *State, op Opcode) Control {
	x := op.X()
	if !s.waitKeyStep(x) {
		s.PC -= 2 // loop on this instruction until a key arrives
		return EndBlock
	}
	return ContinueBlock
}

func executeFx15(s *State, op Opcode) Control {
	x := op.X()
	s.Delay = s.V[x]
	return ContinueBlock
}

func executeFx18(s *State, op Opcode) Control {
	x := op.X()
	s.Sound = s.V[x]
	return ContinueBlock
}

func executeFx1E(s *State, op Opcode) Control {
	x := op.X()
	s.I += uint16(s.V[x])
	return ContinueBlock
}

func executeFx29(s *State, op Opcode) Control {
	x := op.X()
	s.I = uint16(s.V[x]) * 5
	return ContinueBlock
}

func executeFx33(s *State, op Opcode) Control {
	x := op.X()
	v := s.V[x]
	s.Memory[s.I] = v / 100
	s.Memory[s.I+1] = (v / 10) % 10
	s.Memory[s.I+2] = v % 10
	return ContinueBlock
}

func executeFx55(s *State, op Opcode) Control {
	x := op.X()
	for i := uint8(0); i <= x; i++ {
		s.Memory[s.I+uint16(i)] = s.V[i]
	}
	return EncodeInvalidate(s.I, s.I+uint16(x))
}

func executeFx65(s *State, op Opcode) Control {
	x := op.X()
	for i := uint8(0); i <= x; i++ {
		s.V[i] = s.Memory[s.I+uint16(i)]
	}
	return ContinueBlock
}
