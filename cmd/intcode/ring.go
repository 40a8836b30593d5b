package main

import (
	"fmt"
	"os"

	"github.com/colorfulnotion/intcode/intcode/trace"
	"github.com/colorfulnotion/intcode/ring"
	"github.com/spf13/cobra"
)

var drivers = map[string]ring.Driver{
	"chain":      ring.RunChain,
	"feedback":   ring.RunFeedback,
	"concurrent": ring.RunConcurrent,
}

func (a *app) ringCmd() *cobra.Command {
	var (
		phases string
		mode   string
		input  int64
		search bool
		traced bool
	)
	cmd := &cobra.Command{
		Use:   "ring <program|store:name>",
		Short: "Run copies of a program wired output to input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, ok := drivers[mode]
			if !ok {
				return fmt.Errorf("unknown mode %q (chain, feedback, concurrent)", mode)
			}
			p, err := a.loadProgram(args[0])
			if err != nil {
				return err
			}
			values, err := parseInts(phases)
			if err != nil {
				return err
			}
			opts := []ring.Option{ring.WithVMOptions(a.vmOptions()...)}
			if traced {
				opts = append(opts, ring.WithTrace(trace.NewTextWriter(os.Stderr)))
			}
			out := cmd.OutOrStdout()
			if search {
				best, err := ring.MaxSignal(cmd.Context(), drive, p.Image, values, input, opts...)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "phases %v signal %d\n", best.Phases, best.Result.Signal)
				return nil
			}
			res, err := drive(cmd.Context(), p.Image, values, input, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "signal %d after %d rounds\n", res.Signal, res.Rounds)
			return nil
		},
	}
	cmd.Flags().StringVar(&phases, "phases", "", "Comma separated phase per instance, or values to permute with --search")
	cmd.Flags().StringVar(&mode, "mode", "feedback", "Topology driver: chain, feedback or concurrent")
	cmd.Flags().Int64Var(&input, "input", 0, "Initial input to the first instance")
	cmd.Flags().BoolVar(&search, "search", false, "Try every permutation of --phases and report the best")
	cmd.Flags().BoolVar(&traced, "trace", false, "Trace every instance on stderr")
	cmd.MarkFlagRequired("phases")
	return cmd
}
