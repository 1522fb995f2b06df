//go:build !amd64

package chip8

// JIT stands in for the x86-64 backend on every other host architecture.
// The spec is explicit that the JIT is x86-64 only and, off that ISA, the
// JIT backend is simply absent while the interpreter family stays complete
// (spec §1, Non-goals). Rather than make MethodJIT an invalid selection,
// Step quietly behaves as the plain interpreter so a ROM session recorded
// with MethodJIT still runs correctly on a non-amd64 build.
type JIT struct{}

func (j *JIT) Step(s *State, timers *Timers) TickEvent {
	var interp Interpreter
	return interp.Step(s, timers)
}
