package chip8

import "testing"

func TestNewStateLoadsFontAndProgram(t *testing.T) {
	s := NewState([]byte{0xAB, 0xCD})

	if s.PC != InitialPC {
		t.Errorf("PC = %x; want %x", s.PC, InitialPC)
	}
	if s.Memory[0] != fontSet[0] {
		t.Errorf("font not loaded at address 0")
	}
	if s.Memory[InitialPC] != 0xAB || s.Memory[InitialPC+1] != 0xCD {
		t.Errorf("program not loaded at InitialPC")
	}
}

func TestFetch(t *testing.T) {
	s := NewState([]byte{0x12, 0x34})
	if got, want := s.Fetch(InitialPC), Opcode(0x1234); got != want {
		t.Errorf("Fetch = %x; want %x", got, want)
	}
}

func TestDrawXORAndVF(t *testing.T) {
	s := NewState(nil)
	s.I = 0x300
	s.Memory[0x300] = 0xF0 // 11110000

	s.V[0] = 0
	s.V[1] = 0
	s.draw(0, 1, 1)

	for x := 0; x < 4; x++ {
		if !s.Screen[0][x] {
			t.Errorf("pixel (%d,0) not set after first draw", x)
		}
	}
	if s.V[0xF] != 0 {
		t.Errorf("V[F] = %d after first draw; want 0 (nothing erased)", s.V[0xF])
	}

	// Drawing again XORs the same pixels back off and sets V[F].
	s.draw(0, 1, 1)
	for x := 0; x < 4; x++ {
		if s.Screen[0][x] {
			t.Errorf("pixel (%d,0) still set after second draw", x)
		}
	}
	if s.V[0xF] != 1 {
		t.Errorf("V[F] = %d after second draw; want 1 (erased a lit pixel)", s.V[0xF])
	}
}

func TestDrawClipsAtRightAndBottomEdges(t *testing.T) {
	s := NewState(nil)
	s.I = 0x300
	// Two rows, full byte each.
	s.Memory[0x300] = 0xFF
	s.Memory[0x301] = 0xFF

	s.V[0] = ScreenWidth - 4
	s.V[1] = ScreenHeight - 1
	s.draw(0, 1, 2)

	for x := ScreenWidth - 4; x < ScreenWidth; x++ {
		if !s.Screen[ScreenHeight-1][x] {
			t.Errorf("pixel (%d,%d) not set", x, ScreenHeight-1)
		}
	}
	// The second sprite row would land at ScreenHeight, off-screen; nothing
	// should have wrapped around to row 0.
	for x := 0; x < ScreenWidth; x++ {
		if s.Screen[0][x] {
			t.Errorf("sprite wrapped to row 0 at column %d; must clip, not wrap", x)
		}
	}
}

func TestSetKeyDuringWaitTransitionsToKeyReady(t *testing.T) {
	s := NewState(nil)
	s.waitKey = WaitKey{kind: waitWaiting}

	s.SetKey(7, true)
	if s.waitKey.kind != waitWaiting {
		t.Fatalf("press alone changed wait_key kind to %d; want still waiting", s.waitKey.kind)
	}

	s.SetKey(7, false)
	if s.waitKey.kind != waitKeyReady || s.waitKey.key != 7 {
		t.Fatalf("wait_key = %+v after press-then-release; want Key(7)", s.waitKey)
	}
}

func TestSetKeyOutsideWaitDoesNotChangeWaitKey(t *testing.T) {
	s := NewState(nil)
	s.SetKey(3, true)
	s.SetKey(3, false)
	if s.waitKey.kind != waitNotWaiting {
		t.Errorf("wait_key changed to %+v with no pending wait", s.waitKey)
	}
}

func TestWaitKeyStepSequence(t *testing.T) {
	s := NewState(nil)

	if ready := s.waitKeyStep(0); ready {
		t.Fatal("waitKeyStep reported ready on first call (NotWaiting -> Waiting)")
	}
	if ready := s.waitKeyStep(0); ready {
		t.Fatal("waitKeyStep reported ready while still Waiting")
	}

	s.waitKey = WaitKey{kind: waitKeyReady, key: 9}
	if ready := s.waitKeyStep(2); !ready {
		t.Fatal("waitKeyStep did not report ready once Key(k) was set")
	}
	if s.V[2] != 9 {
		t.Errorf("V[2] = %d; want 9", s.V[2])
	}
	if s.waitKey.kind != waitNotWaiting {
		t.Errorf("wait_key not reset to NotWaiting after delivery")
	}
}
