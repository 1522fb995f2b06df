package chip8

// ExecutionMethod selects which of the five backends Chip8.runStep dispatches
// to (spec §4, §6).
type ExecutionMethod uint8

const (
	MethodInterpreter ExecutionMethod = iota
	MethodCachedInterpreter
	MethodCachedInterpreter2
	MethodCachedInterpreter3
	MethodJIT
)

// String names an ExecutionMethod, used by both front-ends for status
// reporting (SPEC_FULL supplemented feature: window-title / status line).
func (m ExecutionMethod) String() string {
	switch m {
	case MethodInterpreter:
		return "Interpreter"
	case MethodCachedInterpreter:
		return "Cached interpreter"
	case MethodCachedInterpreter2:
		return "Cached interpreter 2"
	case MethodCachedInterpreter3:
		return "Cached interpreter 3"
	case MethodJIT:
		return "JIT"
	default:
		return "unknown"
	}
}

// CommandKind discriminates the host-to-core Command sum type (spec §6).
// Only the fields relevant to a given Kind are populated.
type CommandKind uint8

const (
	CmdSetKey CommandKind = iota
	CmdGetScreen
	CmdPlay
	CmdPause
	CmdSingleStep
	CmdSetExecutionMethod
	CmdExit
)

// Command is one message a front-end sends to the running core.
type Command struct {
	Kind    CommandKind
	Key     uint8
	Pressed bool
	Method  ExecutionMethod
}

func CmdSetKeyMsg(key uint8, pressed bool) Command {
	return Command{Kind: CmdSetKey, Key: key, Pressed: pressed}
}

func CmdGetScreenMsg() Command { return Command{Kind: CmdGetScreen} }

func CmdPlayMsg() Command { return Command{Kind: CmdPlay} }

func CmdPauseMsg() Command { return Command{Kind: CmdPause} }

func CmdSingleStepMsg() Command { return Command{Kind: CmdSingleStep} }

func CmdSetExecutionMethodMsg(m ExecutionMethod) Command {
	return Command{Kind: CmdSetExecutionMethod, Method: m}
}

func CmdExitMsg() Command { return Command{Kind: CmdExit} }

// AnswerKind discriminates the core-to-host Answer sum type (spec §6).
type AnswerKind uint8

const (
	AnswerScreen AnswerKind = iota
	AnswerPlaySound
	AnswerStopSound
)

// Answer is one message the core emits back to a front-end.
type Answer struct {
	Kind   AnswerKind
	Screen Screen
}

// CommandSender is the host-facing send half of the command channel: a
// front-end only ever pushes commands in, it never reads the core's queue
// directly (spec §5 "no shared memory other than the channels").
type CommandSender struct {
	q *queue[Command]
}

// Send enqueues a command for the core to apply at its next drain point.
func (s CommandSender) Send(cmd Command) error { return s.q.Send(cmd) }

// Close signals the core that this front-end is gone; Chip8.Run treats
// that the same as an Exit command once it drains the queue dry (spec §7).
func (s CommandSender) Close() { s.q.Close() }

// AnswerReceiver is the host-facing receive half of the answer channel.
type AnswerReceiver struct {
	q *queue[Answer]
}

// IsEmpty reports whether any answers are currently queued.
func (r AnswerReceiver) IsEmpty() bool { return r.q.IsEmpty() }

// TryRecv returns the next answer without blocking.
func (r AnswerReceiver) TryRecv() (Answer, bool) { return r.q.TryRecv() }

// Recv blocks until an answer arrives or the core has shut down and the
// queue is drained.
func (r AnswerReceiver) Recv() (Answer, bool) { return r.q.Recv() }
