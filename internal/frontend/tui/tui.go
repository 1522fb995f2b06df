// Package tui is the terminal-cell front-end: it renders Screen answers as
// blocks of terminal cells via termbox-go and maps a standard keyboard row
// to the CHIP-8 keypad, the default front-end for `chippy8 run` since it
// needs no native windowing system (spec §1, §6; SPEC_FULL DOMAIN STACK,
// grounded on ejholmes-chip8's keypad.go and keyboard.go).
package tui

import (
	"fmt"
	"time"

	"github.com/chippy8/chippy8/internal/chip8"
	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"
)

// refreshRate is how often the front-end asks the core for a fresh Screen,
// matching the teacher's 60Hz display ticker.
const refreshRate = 60

// keyMap mirrors ejholmes-chip8's keypad.go layout: the 4x4 hex keypad laid
// over the left hand of a QWERTY keyboard.
var keyMap = map[rune]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// quitKey exits the front-end, matching ejholmes-chip8's escape-key
// convention ('0' there; termbox gives us a real Esc key here instead).
const quitKey = termbox.KeyEsc

// Run opens termbox, renders Screen/PlaySound/StopSound answers as they
// arrive, and forwards key edges as SetKey commands until the user presses
// Esc; it does not detect the core shutting down on its own (supplemented
// feature: status header showing the active execution method, spec §9 /
// SPEC_FULL SUPPLEMENTED FEATURES).
func Run(send chip8.CommandSender, recv chip8.AnswerReceiver, method chip8.ExecutionMethod, playing bool) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("tui: could not init termbox: %w", err)
	}
	defer termbox.Close()

	down := make(map[uint8]bool, 16)
	status := statusLine(method, playing)
	draw(chip8.Screen{}, status)

	events := make(chan termbox.Event)
	go func() {
		for {
			events <- termbox.PollEvent()
		}
	}()

	ticker := time.NewTicker(time.Second / refreshRate)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			if ev.Type != termbox.EventKey {
				continue
			}
			switch {
			case ev.Key == quitKey:
				send.Send(chip8.CmdExitMsg())
				return nil
			case ev.Key == termbox.KeyF5:
				if playing {
					send.Send(chip8.CmdPauseMsg())
				} else {
					send.Send(chip8.CmdPlayMsg())
				}
				playing = !playing
				status = statusLine(method, playing)
			case ev.Key == termbox.KeyF6:
				send.Send(chip8.CmdSingleStepMsg())
			default:
				if m, ok := executionMethodKey(ev.Ch); ok {
					method = m
					send.Send(chip8.CmdSetExecutionMethodMsg(m))
					status = statusLine(method, playing)
					break
				}
				if key, ok := keyMap[ev.Ch]; ok && !down[key] {
					down[key] = true
					send.Send(chip8.CmdSetKeyMsg(key, true))
				}
			}

		case <-ticker.C:
			for key, pressed := range down {
				if pressed {
					down[key] = false
					send.Send(chip8.CmdSetKeyMsg(key, false))
				}
			}

			for !recv.IsEmpty() {
				answer, ok := recv.TryRecv()
				if !ok {
					break
				}
				switch answer.Kind {
				case chip8.AnswerScreen:
					draw(answer.Screen, status)
				case chip8.AnswerPlaySound, chip8.AnswerStopSound:
					// No audio device in the terminal front-end; SPEC_FULL
					// scopes audio to the GUI front-end only.
				}
			}

			send.Send(chip8.CmdGetScreenMsg())
		}
	}
}

// executionMethodKey maps the I/K/L/M/J execution-method hotkeys of the
// original GUI (original_source/risp8-gui/src/main.rs) onto the TUI. The GUI
// front-end in this repository has no execution-method hotkeys.
func executionMethodKey(ch rune) (chip8.ExecutionMethod, bool) {
	switch ch {
	case 'i':
		return chip8.MethodInterpreter, true
	case 'k':
		return chip8.MethodCachedInterpreter, true
	case 'l':
		return chip8.MethodCachedInterpreter2, true
	case 'm':
		return chip8.MethodCachedInterpreter3, true
	case 'j':
		return chip8.MethodJIT, true
	}
	return 0, false
}

// statusLine builds the header row; go-runewidth sizes it so padding holds
// even if the method name ever grows wide runes, exercising go-runewidth
// directly rather than only through termbox's own internal use of it.
func statusLine(method chip8.ExecutionMethod, playing bool) string {
	state := "Paused"
	if playing {
		state = "Running"
	}
	line := fmt.Sprintf(" %s - %s - chippy8 ", state, method)
	pad := chip8.ScreenWidth*2 - runewidth.StringWidth(line)
	for pad > 0 {
		line += " "
		pad--
	}
	return line
}

// draw renders screen as two terminal columns per CHIP-8 pixel (cells are
// roughly twice as tall as they are wide), with status as a header row.
func draw(screen chip8.Screen, status string) {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	for i, r := range []rune(status) {
		termbox.SetCell(i, 0, r, termbox.ColorBlack, termbox.ColorWhite)
	}

	for y := 0; y < chip8.ScreenHeight; y++ {
		for x := 0; x < chip8.ScreenWidth; x++ {
			fg, bg := termbox.ColorDefault, termbox.ColorDefault
			if screen[y][x] {
				bg = termbox.ColorWhite
			}
			termbox.SetCell(x*2, y+1, ' ', fg, bg)
			termbox.SetCell(x*2+1, y+1, ' ', fg, bg)
		}
	}

	termbox.Flush()
}
