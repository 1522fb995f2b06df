package chip8

import "time"

// tickInterval is the 60 Hz period, spec §4.8.
const tickInterval = 16666 * time.Microsecond

// Timers tracks the wall-clock anchor the core uses to decide when a single
// delay/sound tick fires. It never catches up: at most one tick fires per
// call to Tick, regardless of how much time actually elapsed.
type Timers struct {
	last time.Time
	now  func() time.Time
}

// NewTimers returns a Timers anchored at the given instant. Callers pass
// time.Now; tests can pass a fake clock to make tick boundaries deterministic.
func NewTimers(now func() time.Time) *Timers {
	return &Timers{last: now(), now: now}
}

// TickEvent reports what, if anything, a timer tick produced.
type TickEvent uint8

const (
	NoTick TickEvent = iota
	PlaySound
	StopSound
)

// Tick checks whether ≥ 16 666 µs elapsed since the last tick and, if so,
// decrements delay/sound (each floored at zero) and reports whether the
// sound timer's transition should (re)start or stop the tone (spec §4.8).
func (t *Timers) Tick(s *State) TickEvent {
	now := t.now()
	if now.Sub(t.last) < tickInterval {
		return NoTick
	}
	t.last = now

	if s.Delay > 0 {
		s.Delay--
	}

	event := NoTick
	if s.Sound > 0 {
		s.Sound--
		event = PlaySound
	} else {
		event = StopSound
	}
	return event
}
