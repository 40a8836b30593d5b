package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/intcode/trace"
	"github.com/colorfulnotion/intcode/profile"
	"github.com/colorfulnotion/intcode/program"
	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/spf13/cobra"
)

func (a *app) disasmCmd() *cobra.Command {
	var tree, stats bool
	cmd := &cobra.Command{
		Use:   "disasm <program|store:name>",
		Short: "Disassemble a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProgram(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case stats:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(program.Analyze(p.Image))
			case tree:
				blocks := program.Blocks(program.Disassemble(p.Image))
				fmt.Fprint(out, program.Tree(p.Name, blocks).String())
			default:
				fmt.Fprint(out, program.DisassembleToString(p.Image))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&tree, "tree", false, "Print basic blocks as a tree")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print static statistics as JSON")
	return cmd
}

func (a *app) diffCmd() *cobra.Command {
	var run bool
	var input string
	cmd := &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Compare two program images, optionally after running both",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			images := make([][]int64, 2)
			for i, ref := range args {
				p, err := a.loadProgram(ref)
				if err != nil {
					return err
				}
				images[i] = p.Image
				if !run {
					continue
				}
				inputs, err := parseInts(input)
				if err != nil {
					return err
				}
				vm, err := intcode.NewBlocking(p.Image, intcode.SliceInput(inputs...),
					func(int64) error { return nil }, a.vmOptions(intcode.WithName(p.Name))...)
				if err != nil {
					return err
				}
				if err := vm.Run(false); err != nil {
					return err
				}
				images[i] = vm.Memory()
			}
			same, report, err := program.DiffImages(images[0], images[1])
			if err != nil {
				return err
			}
			if same {
				fmt.Fprintln(cmd.OutOrStdout(), "images match")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), report)
			return fmt.Errorf("images differ")
		},
	}
	cmd.Flags().BoolVar(&run, "run", false, "Run both programs to completion and compare final memory")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Comma separated input values for --run")
	return cmd
}

func (a *app) traceCmd() *cobra.Command {
	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "Work with JSON lines execution traces",
	}
	diffCmd := &cobra.Command{
		Use:   "diff <expected.jsonl> <actual.jsonl>",
		Short: "Report the first step at which two traces diverge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			expected, err := trace.ReadJSONLFile(args[0])
			if err != nil {
				return err
			}
			actual, err := trace.ReadJSONLFile(args[1])
			if err != nil {
				return err
			}
			d, err := trace.Diff(expected, actual)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if d == nil {
				fmt.Fprintf(out, "traces match (%d steps)\n", len(expected))
				return nil
			}
			fmt.Fprintf(out, "traces diverge at step %d\n", d.Index)
			if d.Expected != nil {
				fmt.Fprintf(out, "expected: %s\n", d.Expected.Describe())
			}
			if d.Actual != nil {
				fmt.Fprintf(out, "actual:   %s\n", d.Actual.Describe())
			}
			fmt.Fprintln(out, d.Report)
			return fmt.Errorf("%w at step %d", vmerrors.ErrTTraceMismatch, d.Index)
		},
	}
	traceCmd.AddCommand(diffCmd)
	return traceCmd
}

func (a *app) profileCmd() *cobra.Command {
	var input, chart, serve string
	var top int
	cmd := &cobra.Command{
		Use:   "profile <program|store:name>",
		Short: "Run a program and report execution counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProgram(args[0])
			if err != nil {
				return err
			}
			inputs, err := parseInts(input)
			if err != nil {
				return err
			}
			prof := profile.New()
			vm, err := intcode.NewBlocking(p.Image, intcode.SliceInput(inputs...),
				func(int64) error { return nil },
				a.vmOptions(intcode.WithName(p.Name), intcode.WithTracer(prof))...)
			if err != nil {
				return err
			}
			runErr := vm.Run(true)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d steps, state %s\n", prof.Total(), vm.State())
			for _, e := range prof.Entries() {
				fmt.Fprintf(out, "  %-5s %d\n", e.Opcode, e.Count)
			}
			fmt.Fprintln(out, "hot spots:")
			for _, h := range prof.HotSpots(top) {
				fmt.Fprintf(out, "  %4d %d\n", h.Addr, h.Count)
			}
			if chart != "" {
				f, err := os.Create(chart)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := prof.Render(f, p.Name, p.Image); err != nil {
					return err
				}
			}
			if serve != "" {
				return prof.Serve(serve, p.Name, p.Image)
			}
			return runErr
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Comma separated input values")
	cmd.Flags().StringVar(&chart, "chart", "", "Write an HTML chart page to this file")
	cmd.Flags().StringVar(&serve, "serve", "", "Serve the chart page on this address")
	cmd.Flags().IntVar(&top, "top", 10, "Number of hot spots to list")
	return cmd
}
