// Package gui is the pixelgl-backed windowed front-end: it turns Screen
// answers into an imdraw grid, synthesizes a square-wave tone for
// PlaySound/StopSound through beep/speaker, and forwards key events as
// SetKey commands. It is one of the two narrow collaborators spec.md
// describes only by the interface the core exposes (spec §1, §6), adapted
// from the teacher's internal/pixel package.
package gui

import (
	"fmt"
	"time"

	"github.com/chippy8/chippy8/internal/chip8"
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/pixel"
	"github.com/faiface/pixel/imdraw"
	"github.com/faiface/pixel/pixelgl"
	"golang.org/x/image/colornames"
)

const (
	screenWidthPx  = 1024
	screenHeightPx = 768
	sampleRate     = beep.SampleRate(44100)
	toneHz         = 440.0
	keyRepeatDur   = time.Second / 5
)

// keymapQWERTY is the teacher's original window keymap, reachable as the
// default; keymapNumpad is the Rust original's alternate layout
// (original_source/risp8-gui/src/main.rs), both supplemented features kept
// selectable via NumpadKeymap.
var keymapQWERTY = map[uint8]pixelgl.Button{
	0x1: pixelgl.Key1, 0x2: pixelgl.Key2, 0x3: pixelgl.Key3, 0xC: pixelgl.Key4,
	0x4: pixelgl.KeyQ, 0x5: pixelgl.KeyW, 0x6: pixelgl.KeyE, 0xD: pixelgl.KeyR,
	0x7: pixelgl.KeyA, 0x8: pixelgl.KeyS, 0x9: pixelgl.KeyD, 0xE: pixelgl.KeyF,
	0xA: pixelgl.KeyZ, 0x0: pixelgl.KeyX, 0xB: pixelgl.KeyC, 0xF: pixelgl.KeyV,
}

var keymapNumpad = map[uint8]pixelgl.Button{
	0x1: pixelgl.KeyKP7, 0x2: pixelgl.KeyKP8, 0x3: pixelgl.KeyKP9, 0xC: pixelgl.KeyKPSubtract,
	0x4: pixelgl.KeyKP4, 0x5: pixelgl.KeyKP5, 0x6: pixelgl.KeyKP6, 0xD: pixelgl.KeyKPAdd,
	0x7: pixelgl.KeyKP1, 0x8: pixelgl.KeyKP2, 0x9: pixelgl.KeyKP3, 0xE: pixelgl.KeyKPEnter,
	0xA: pixelgl.KeyKPDivide, 0x0: pixelgl.KeyKP0, 0xB: pixelgl.KeyKPMultiply, 0xF: pixelgl.KeyKPDecimal,
}

// Window embeds a pixelgl window with the key→CHIP-8 mapping and a
// per-key repeat ticker, grounded on the teacher's internal/pixel.Window.
type Window struct {
	*pixelgl.Window
	keyMap       map[uint8]pixelgl.Button
	keysDown     [16]*time.Ticker
	NumpadKeymap bool
}

// NewWindow opens a pixelgl window sized for a 64x32 CHIP-8 screen.
func NewWindow(title string) (*Window, error) {
	cfg := pixelgl.WindowConfig{
		Title:  title,
		Bounds: pixel.R(0, 0, screenWidthPx, screenHeightPx),
		VSync:  true,
	}
	w, err := pixelgl.NewWindow(cfg)
	if err != nil {
		return nil, fmt.Errorf("gui: error creating new window: %w", err)
	}
	return &Window{Window: w, keyMap: keymapQWERTY}, nil
}

func (w *Window) activeKeymap() map[uint8]pixelgl.Button {
	if w.NumpadKeymap {
		return keymapNumpad
	}
	return keymapQWERTY
}

// Draw renders a Screen answer as a grid of rectangles, mirroring the
// teacher's DrawGraphics but reading from chip8.Screen's [y][x] layout
// directly instead of a flattened byte array.
func (w *Window) Draw(screen chip8.Screen) {
	w.Clear(colornames.Black)
	draw := imdraw.New(nil)
	draw.Color = pixel.RGB(1, 1, 1)

	cellW := screenWidthPx / float64(chip8.ScreenWidth)
	cellH := screenHeightPx / float64(chip8.ScreenHeight)

	for y := 0; y < chip8.ScreenHeight; y++ {
		for x := 0; x < chip8.ScreenWidth; x++ {
			if !screen[y][x] {
				continue
			}
			// Window origin is bottom-left; Screen's y grows downward.
			flippedY := chip8.ScreenHeight - 1 - y
			draw.Push(pixel.V(cellW*float64(x), cellH*float64(flippedY)))
			draw.Push(pixel.V(cellW*float64(x)+cellW, cellH*float64(flippedY)+cellH))
			draw.Rectangle(0)
		}
	}

	draw.Draw(w)
	w.Update()
}

// PollInput forwards every CHIP-8 key's pressed/released edge as a SetKey
// command, keyed off pixelgl's JustPressed/JustReleased so repeats aren't
// re-sent every frame, matching the teacher's handleKeyInput shape.
func (w *Window) PollInput(send chip8.CommandSender) {
	keymap := w.activeKeymap()
	for chipKey, button := range keymap {
		switch {
		case w.JustPressed(button):
			if w.keysDown[chipKey] == nil {
				w.keysDown[chipKey] = time.NewTicker(keyRepeatDur)
			}
			send.Send(chip8.CmdSetKeyMsg(chipKey, true))
		case w.JustReleased(button):
			if t := w.keysDown[chipKey]; t != nil {
				t.Stop()
				w.keysDown[chipKey] = nil
			}
			send.Send(chip8.CmdSetKeyMsg(chipKey, false))
		}
	}
}

// Speaker plays a synthesized square-wave tone for as long as PlaySound
// answers keep arriving, replacing the teacher's beep/mp3 file decode
// (there is no bundled audio asset in this repo) with beep/generators-style
// on-the-fly synthesis, still exercising beep/speaker (SPEC_FULL DOMAIN
// STACK).
type Speaker struct {
	ctrl *beep.Ctrl
}

// NewSpeaker initializes the beep/speaker backend and returns a Speaker
// ready to receive PlaySound/StopSound answers.
func NewSpeaker() (*Speaker, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/30)); err != nil {
		return nil, fmt.Errorf("gui: error initializing speaker: %w", err)
	}
	tone, err := squareWave(toneHz, sampleRate)
	if err != nil {
		return nil, err
	}
	ctrl := &beep.Ctrl{Streamer: beep.Loop(-1, tone), Paused: true}
	speaker.Play(ctrl)
	return &Speaker{ctrl: ctrl}, nil
}

// Handle reacts to one Answer, playing or silencing the tone.
func (s *Speaker) Handle(a chip8.Answer) {
	switch a.Kind {
	case chip8.AnswerPlaySound:
		speaker.Lock()
		s.ctrl.Paused = false
		speaker.Unlock()
	case chip8.AnswerStopSound:
		speaker.Lock()
		s.ctrl.Paused = true
		speaker.Unlock()
	}
}

// squareWave returns an infinite beep.Streamer generating a square wave at
// freq Hz, the simplest tone-generator shape that still exercises
// beep.Streamer end to end without a bundled asset file.
func squareWave(freq float64, sr beep.SampleRate) (beep.Streamer, error) {
	if freq <= 0 {
		return nil, fmt.Errorf("gui: invalid tone frequency %f", freq)
	}
	period := float64(sr) / freq
	var phase float64
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := 0.0
			if phase < period/2 {
				v = 0.2
			} else {
				v = -0.2
			}
			samples[i][0] = v
			samples[i][1] = v
			phase++
			if phase >= period {
				phase = 0
			}
		}
		return len(samples), true
	}), nil
}
