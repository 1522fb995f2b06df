package chip8

// Interpreter is the direct execution backend (spec §4.3): fetch, advance
// PC, dispatch through the decoder table, execute, tick the timer. It keeps
// no cache of its own and ignores the handler's Control return — there is no
// block to terminate.
type Interpreter struct{}

// Step runs exactly one guest instruction and returns whatever the timer
// tick produced.
func (Interpreter) Step(s *State, timers *Timers) TickEvent {
	op := s.Fetch(s.PC)
	s.PC += 2
	decoderTable[op](s, op)
	return timers.Tick(s)
}
