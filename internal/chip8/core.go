package chip8

import "time"

// Chip8 is the core: it owns the State, one cache per backend variant, the
// timer clock, and the command/answer channels, and runs the main
// emulation loop (spec §4.10, §5). Nothing outside this package ever
// touches the State or cache tables directly — the only way in or out is
// the channel protocol in protocol.go.
type Chip8 struct {
	state  *State
	timers *Timers

	interpreter Interpreter
	cached1     *Cached1
	cached2     *Cached2
	cached3     *Cached3
	jit         *JIT

	method  ExecutionMethod
	playing bool

	commands *queue[Command]
	answers  *queue[Answer]
}

// NewChip8 loads rom from path and returns a ready-to-run core along with
// the two channel halves a front-end uses to drive it. Construction fails
// — the core is never built — if the ROM cannot be loaded (spec §6, §7).
func NewChip8(romPath string) (*Chip8, CommandSender, AnswerReceiver, error) {
	rom, err := LoadROM(romPath)
	if err != nil {
		return nil, CommandSender{}, AnswerReceiver{}, err
	}

	commands := newQueue[Command]()
	answers := newQueue[Answer]()

	core := &Chip8{
		state:   NewState(rom),
		timers:  NewTimers(time.Now),
		cached1: &Cached1{},
		cached2: &Cached2{},
		cached3: &Cached3{},
		jit:     &JIT{},
		method:  MethodInterpreter,

		commands: commands,
		answers:  answers,
	}

	return core, CommandSender{q: commands}, AnswerReceiver{q: answers}, nil
}

// Run is the core's main loop (spec §4.10): drain pending commands, and if
// still running and playing, execute exactly one step of the selected
// backend. It returns once an Exit command is applied or the command
// channel's peer is gone, and closes the answer channel on the way out so
// a front-end blocked on Recv is released.
func (c *Chip8) Run() {
	defer c.answers.Close()
	for {
		if c.drain() {
			return
		}
		if c.playing {
			c.runStep()
		}
	}
}

// drain applies every command that has already arrived. While playing, it
// never blocks — commands queued after this call begins are simply picked
// up on the next drain, preserving the invariant that every command
// arrived before a step begins has been applied by the time that step
// starts (spec §5). While paused, it blocks on the first command so the
// core doesn't spin. It returns true once the loop should stop.
func (c *Chip8) drain() bool {
	if c.playing {
		for {
			cmd, ok := c.commands.TryRecv()
			if !ok {
				return c.commands.Closed()
			}
			if c.apply(cmd) {
				return true
			}
		}
	}

	cmd, ok := c.commands.Recv()
	if !ok {
		return true
	}
	if c.apply(cmd) {
		return true
	}
	for {
		cmd, ok := c.commands.TryRecv()
		if !ok {
			return false
		}
		if c.apply(cmd) {
			return true
		}
	}
}

// apply executes one Command against the core's state. It returns true iff
// the command was Exit and the run loop must stop (spec §6).
func (c *Chip8) apply(cmd Command) bool {
	switch cmd.Kind {
	case CmdSetKey:
		c.state.SetKey(cmd.Key, cmd.Pressed)
	case CmdGetScreen:
		c.sendAnswer(Answer{Kind: AnswerScreen, Screen: c.state.Screen})
	case CmdPlay:
		c.playing = true
	case CmdPause:
		c.playing = false
	case CmdSingleStep:
		c.runStep()
	case CmdSetExecutionMethod:
		c.method = cmd.Method
	case CmdExit:
		return true
	}
	return false
}

// runStep performs exactly one interpreter instruction or one
// cached/native block, via the currently selected backend, and translates
// a fired timer tick into at most one PlaySound/StopSound answer (spec
// §4.8, §4.10).
func (c *Chip8) runStep() {
	var tick TickEvent
	switch c.method {
	case MethodCachedInterpreter:
		tick = c.cached1.Step(c.state, c.timers)
	case MethodCachedInterpreter2:
		tick = c.cached2.Step(c.state, c.timers)
	case MethodCachedInterpreter3:
		tick = c.cached3.Step(c.state, c.timers)
	case MethodJIT:
		tick = c.jit.Step(c.state, c.timers)
	default:
		tick = c.interpreter.Step(c.state, c.timers)
	}

	switch tick {
	case PlaySound:
		c.sendAnswer(Answer{Kind: AnswerPlaySound})
	case StopSound:
		c.sendAnswer(Answer{Kind: AnswerStopSound})
	}
}

// sendAnswer best-effort delivers a to the front-end; a full/gone peer is
// not this loop's problem to report (spec §7 treats it as the other side's
// concern to notice).
func (c *Chip8) sendAnswer(a Answer) {
	_ = c.answers.Send(a)
}
