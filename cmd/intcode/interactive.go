package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/colorfulnotion/intcode/common"
	"github.com/colorfulnotion/intcode/console"
	"github.com/colorfulnotion/intcode/intcode"
	"github.com/spf13/cobra"
)

func historyFile(name string) string {
	return filepath.Join(os.TempDir(), name)
}

func (a *app) interactiveCmd() *cobra.Command {
	var ascii, traced bool
	cmd := &cobra.Command{
		Use:   "interactive <program|store:name>",
		Short: "Run a program cooperatively, reading input from the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProgram(args[0])
			if err != nil {
				return err
			}
			vm, err := intcode.NewCooperative(p.Image, a.vmOptions(intcode.WithName(p.Name))...)
			if err != nil {
				return err
			}
			rl, err := readline.NewEx(&readline.Config{
				Prompt:      "? ",
				HistoryFile: historyFile("intcode_interactive_history.txt"),
			})
			if err != nil {
				return fmt.Errorf("failed to start readline: %w", err)
			}
			defer rl.Close()
			return interact(vm, rl, rl.Stdout(), ascii, traced)
		},
	}
	cmd.Flags().BoolVar(&ascii, "ascii", false, "Exchange text lines instead of integers")
	cmd.Flags().BoolVar(&traced, "trace", false, "Print every instruction on stderr")
	return cmd
}

type lineReader interface {
	Readline() (string, error)
}

// interact drives vm until it terminates, prompting whenever it blocks on
// input. In ASCII mode a line is sent as its characters plus a newline.
func interact(vm *intcode.VM, rl lineReader, out io.Writer, ascii, traced bool) error {
	var pending []int64
	for {
		switch vm.State() {
		case intcode.WaitingToRun:
			if err := vm.Run(traced); err != nil {
				return err
			}
		case intcode.BlockedOnOutput:
			v, err := vm.GetOutput(traced)
			if err != nil {
				return err
			}
			writeValue(out, v, ascii)
		case intcode.BlockedOnInput:
			for len(pending) == 0 {
				line, err := rl.Readline()
				if err != nil {
					if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
						fmt.Fprintln(out, common.Colorize("input closed", common.ColorYellow, false))
						return nil
					}
					return err
				}
				pending, err = lineValues(line, ascii)
				if err != nil {
					fmt.Fprintln(out, common.Colorize(err.Error(), common.ColorRed, false))
				}
			}
			if err := vm.ProvideInput(pending[0], traced); err != nil {
				return err
			}
			pending = pending[1:]
		case intcode.Terminated:
			fmt.Fprintln(out, common.Colorize(fmt.Sprintf("halted after %d steps", vm.Steps()), common.ColorGreen, false))
			return nil
		}
	}
}

func lineValues(line string, ascii bool) ([]int64, error) {
	if ascii {
		vals := make([]int64, 0, len(line)+1)
		for _, r := range line {
			vals = append(vals, int64(r))
		}
		return append(vals, '\n'), nil
	}
	var vals []int64
	for _, field := range strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' }) {
		v, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", field)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func (a *app) consoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console <program|store:name>",
		Short: "Script a cooperative VM with JavaScript",
		Long: `Starts a JavaScript console with the program loaded into a cooperative VM
bound as the global "vm". Methods: run, state, input, output, drain, send,
peek, poke, ip, rb, steps, memory, reset, trace. print(...) writes a line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProgram(args[0])
			if err != nil {
				return err
			}
			rl, err := readline.NewEx(&readline.Config{
				Prompt:      "> ",
				HistoryFile: historyFile("intcode_console_history.txt"),
			})
			if err != nil {
				return fmt.Errorf("failed to start readline: %w", err)
			}
			defer rl.Close()

			c, err := console.New(p.Image, rl.Stdout(), a.vmOptions(intcode.WithName(p.Name))...)
			if err != nil {
				return err
			}
			fmt.Fprintf(rl.Stdout(), "%s loaded (%d words). Type 'exit' to quit.\n", p.Name, len(p.Image))
			for {
				line, err := rl.Readline()
				if err != nil {
					return nil
				}
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if line == "exit" {
					return nil
				}
				v, err := c.Eval(line)
				if err != nil {
					fmt.Fprintln(rl.Stdout(), common.Colorize(err.Error(), common.ColorRed, false))
					continue
				}
				fmt.Fprintln(rl.Stdout(), v)
			}
		},
	}
}
