package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/chippy8/chippy8/internal/chip8"
	"github.com/chippy8/chippy8/internal/frontend/gui"
	"github.com/chippy8/chippy8/internal/frontend/tui"
	"github.com/faiface/pixel/pixelgl"
	"github.com/spf13/cobra"
)

var useGUI bool

// runCmd runs the chippy8 core against a ROM until the front-end exits
// (spec §6: one positional argument, the ROM path).
var runCmd = &cobra.Command{
	Use:   "run path/to/rom",
	Short: "run a CHIP-8 ROM",
	Args:  cobra.ExactArgs(1),
	RunE:  runChippy8,
}

func init() {
	runCmd.Flags().BoolVar(&useGUI, "gui", false, "use the pixelgl window front-end instead of the terminal front-end")
}

func runChippy8(cmd *cobra.Command, args []string) error {
	romPath := args[0]

	core, send, recv, err := chip8.NewChip8(romPath)
	if err != nil {
		cmd.PrintErrln(fmt.Sprintf("error creating a new chip-8 core: %v", err))
		os.Exit(1)
	}

	if useGUI {
		runGUI(core, send, recv, romPath)
		return nil
	}

	go core.Run()
	send.Send(chip8.CmdPlayMsg())
	if err := tui.Run(send, recv, chip8.MethodInterpreter, true); err != nil {
		cmd.PrintErrln(err)
		os.Exit(1)
	}
	return nil
}

// runGUI hands the OS thread over to pixelgl, since GLFW requires all
// windowing calls happen on the thread that created the window (the same
// constraint the teacher's main.go documents).
func runGUI(core *chip8.Chip8, send chip8.CommandSender, recv chip8.AnswerReceiver, romPath string) {
	pixelgl.Run(func() {
		win, err := gui.NewWindow(fmt.Sprintf("chippy8 - %s", romPath))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		speaker, err := gui.NewSpeaker()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		go core.Run()
		send.Send(chip8.CmdPlayMsg())

		ticker := time.NewTicker(time.Second / 60)
		defer ticker.Stop()

		for !win.Closed() {
			<-ticker.C
			win.PollInput(send)
			send.Send(chip8.CmdGetScreenMsg())

			for !recv.IsEmpty() {
				answer, ok := recv.TryRecv()
				if !ok {
					break
				}
				switch answer.Kind {
				case chip8.AnswerScreen:
					win.Draw(answer.Screen)
				default:
					speaker.Handle(answer)
				}
			}
		}

		send.Close()
	})
}
