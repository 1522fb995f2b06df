package chip8

import (
	"testing"
	"time"
)

// frozenClock returns a clock function for NewTimers that never advances, so
// no tick fires mid-scenario and every test below is about instruction
// semantics only.
func frozenClock() func() time.Time {
	now := time.Now()
	return func() time.Time { return now }
}

// runProgram builds a State from program and steps a plain Interpreter n
// times, returning the resulting state.
func runProgram(t *testing.T, program []byte, steps int) *State {
	t.Helper()
	s := NewState(program)
	timers := NewTimers(frozenClock())
	var interp Interpreter
	for i := 0; i < steps; i++ {
		interp.Step(s, timers)
	}
	return s
}

func TestScenario1_AddAndLoop(t *testing.T) {
	// 6005 7003 1200: V[0] = 5; V[0] += 3; jump back to 0x200.
	program := []byte{0x60, 0x05, 0x70, 0x03, 0x12, 0x00}
	s := runProgram(t, program, 3)

	if s.V[0] != 8 {
		t.Errorf("V[0] = %d; want 8", s.V[0])
	}
	if s.PC != InitialPC {
		t.Errorf("PC = %x; want %x", s.PC, InitialPC)
	}
}

func TestScenario3_ShrSetsVFToPreShiftLSB(t *testing.T) {
	// 6005 8006: V[0] = 5; V[0] >>= 1.
	program := []byte{0x60, 0x05, 0x80, 0x06}
	s := runProgram(t, program, 2)

	if s.V[0] != 2 {
		t.Errorf("V[0] = %d; want 2", s.V[0])
	}
	if s.V[0xF] != 1 {
		t.Errorf("V[F] = %d; want 1 (LSB of 5 before shift)", s.V[0xF])
	}
}

func TestScenario4_FontDigitDraw(t *testing.T) {
	// 6010 F129 D015: V[0] = 0x10; I = font digit 0 address (V[1] = 0, so
	// 0*5 = 0); draw a 5-row sprite at (V[0], V[1]) = (16, 0).
	program := []byte{0x60, 0x10, 0xF1, 0x29, 0xD0, 0x15}
	s := runProgram(t, program, 3)

	if got, want := s.I, uint16(0*5); got != want {
		t.Fatalf("I = %x; want %x", got, want)
	}

	// Digit 0's glyph is 0xF0, 0x90, 0x90, 0x90, 0xF0 — the classic "0" box.
	wantRows := []byte{0xF0, 0x90, 0x90, 0x90, 0xF0}
	for row, want := range wantRows {
		for bit := 0; bit < 4; bit++ {
			lit := want&(0x80>>uint(bit)) != 0
			if got := s.Screen[row][16+bit]; got != lit {
				t.Errorf("Screen[%d][%d] = %v; want %v", row, 16+bit, got, lit)
			}
		}
	}
}

func TestScenario5_WaitKeyPressThenRelease(t *testing.T) {
	// F00A: wait for a key, write it to V[0].
	program := []byte{0xF0, 0x0A}
	s := NewState(program)
	timers := NewTimers(frozenClock())
	var interp Interpreter

	interp.Step(s, timers)
	if s.PC != InitialPC {
		t.Fatalf("PC advanced past F00A before any key event: %x", s.PC)
	}

	interp.Step(s, timers)
	if s.PC != InitialPC {
		t.Fatalf("PC advanced while still waiting, no key event yet: %x", s.PC)
	}

	s.SetKey(7, true)
	s.SetKey(7, false)

	interp.Step(s, timers)
	if s.V[0] != 7 {
		t.Errorf("V[0] = %d; want 7", s.V[0])
	}
	if s.PC != InitialPC+2 {
		t.Errorf("PC = %x; want %x", s.PC, InitialPC+2)
	}
}

func TestScenario6_CallAndReturn(t *testing.T) {
	// 2204 00EE: 2nnn pushes the return address and jumps to 0x204; 00EE
	// pops it back.
	program := make([]byte, 6)
	program[0], program[1] = 0x22, 0x04 // 2204: call 0x204
	program[4], program[5] = 0x00, 0xEE // 00EE: return

	s := NewState(program)
	timers := NewTimers(frozenClock())
	var interp Interpreter

	interp.Step(s, timers) // 2204
	if s.PC != 0x204 {
		t.Fatalf("PC = %x after call; want 0x204", s.PC)
	}
	if s.SP != 1 || s.Stack[0] != InitialPC+2 {
		t.Fatalf("SP=%d Stack[0]=%x; want SP=1 Stack[0]=%x", s.SP, s.Stack[0], InitialPC+2)
	}

	interp.Step(s, timers) // 00EE
	if s.PC != InitialPC+2 {
		t.Errorf("PC = %x after return; want %x", s.PC, InitialPC+2)
	}
	if s.SP != 0 {
		t.Errorf("SP = %d after return; want 0", s.SP)
	}
}

func TestFx55ThenFx65RoundTrips(t *testing.T) {
	// A208 F155: I = 0x208; store V[0..1] there; reload restores them.
	program := []byte{0xA2, 0x08, 0xF1, 0x55}
	s := NewState(program)
	s.V[0] = 0xDE
	s.V[1] = 0xAD

	timers := NewTimers(frozenClock())
	var interp Interpreter
	interp.Step(s, timers) // Annn
	interp.Step(s, timers) // Fx55

	if s.Memory[0x208] != 0xDE || s.Memory[0x209] != 0xAD {
		t.Fatalf("memory[0x208:0x20A] = %x %x; want DE AD", s.Memory[0x208], s.Memory[0x209])
	}

	s.V[0], s.V[1] = 0, 0
	ret := executeFx65(s, Opcode(0xF165))
	if ret != ContinueBlock {
		t.Errorf("Fx65 returned %d; want ContinueBlock", ret)
	}
	if s.V[0] != 0xDE || s.V[1] != 0xAD {
		t.Errorf("round trip failed: V[0]=%x V[1]=%x; want DE AD", s.V[0], s.V[1])
	}
}

func TestFx55EncodesInclusiveInvalidationRange(t *testing.T) {
	s := NewState(nil)
	s.I = 0x208
	ret := executeFx55(s, Opcode(0xF155)) // x=1

	lo, hi, ok := InvalidateRange(ret)
	if !ok {
		t.Fatal("Fx55 did not encode an invalidation range")
	}
	if lo != 0x208 || hi != 0x209 {
		t.Errorf("invalidation range = [%x, %x]; want [0x208, 0x209] inclusive-inclusive", lo, hi)
	}
}

func TestStackUnderflowIsNoOp(t *testing.T) {
	s := NewState(nil)
	ret := execute00EE(s, Opcode(0x00EE))
	if s.PC != InitialPC {
		t.Errorf("PC changed on SP=0 underflow: %x", s.PC)
	}
	if ret != EndBlock {
		t.Errorf("00EE underflow returned %d; want EndBlock", ret)
	}
}

func TestCarryBorrowFlags(t *testing.T) {
	s := NewState(nil)
	s.V[0], s.V[1] = 0xFF, 0x02
	executeBy := func(op Opcode) { _ = decode(op)(s, op) }

	executeBy(Opcode(0x8014)) // 8xy4: V0 += V1, overflow
	if s.V[0] != 0x01 || s.V[0xF] != 1 {
		t.Errorf("8xy4: V0=%x VF=%d; want V0=01 VF=1", s.V[0], s.V[0xF])
	}

	s.V[0], s.V[1] = 0x01, 0x02
	executeBy(Opcode(0x8015)) // 8xy5: V0 -= V1, borrow
	if s.V[0] != 0xFF || s.V[0xF] != 0 {
		t.Errorf("8xy5 (borrow): V0=%x VF=%d; want V0=FF VF=0", s.V[0], s.V[0xF])
	}

	s.V[0], s.V[1] = 0x05, 0x02
	executeBy(Opcode(0x8017)) // 8xy7: V0 = V1 - V0, borrow
	if s.V[0] != 0xFD || s.V[0xF] != 0 {
		t.Errorf("8xy7 (borrow): V0=%x VF=%d; want V0=FD VF=0", s.V[0], s.V[0xF])
	}
}

func TestFx33BCD(t *testing.T) {
	s := NewState(nil)
	s.I = 0x300
	s.V[0] = 156
	executeFx33(s, Opcode(0xF033))

	if s.Memory[0x300] != 1 || s.Memory[0x301] != 5 || s.Memory[0x302] != 6 {
		t.Errorf("BCD = %d %d %d; want 1 5 6", s.Memory[0x300], s.Memory[0x301], s.Memory[0x302])
	}
}
