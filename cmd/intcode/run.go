package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/colorfulnotion/intcode/common"
	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/intcode/trace"
	log "github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/program"
	"github.com/colorfulnotion/intcode/storage"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type runFlags struct {
	input     string
	inputText string
	params    string
	trace     bool
	traceFile string
	ascii     bool
	save      string
	result    bool
}

func (a *app) runCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run <program|store:name>",
		Short: "Run a program in blocking mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProgram(args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, p, f, strings.HasPrefix(args[0], storeRefPrefix))
		},
	}
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "Comma separated input values")
	cmd.Flags().StringVar(&f.inputText, "input-text", "", "Input given as ASCII text, appended after --input")
	cmd.Flags().StringVar(&f.params, "params", "", "noun,verb written to cells 1 and 2 before running")
	cmd.Flags().BoolVar(&f.trace, "trace", false, "Print every instruction on stderr")
	cmd.Flags().StringVar(&f.traceFile, "trace-file", "", "Write the trace as JSON lines to this file")
	cmd.Flags().BoolVar(&f.ascii, "ascii", false, "Print outputs below 128 as characters")
	cmd.Flags().StringVar(&f.save, "save", "", "Store the program under this name and record the run")
	cmd.Flags().BoolVar(&f.result, "result", false, "Print cell 0 after the program halts")
	return cmd
}

func (a *app) run(cmd *cobra.Command, p *program.Program, f runFlags, stored bool) (err error) {
	inputs, err := parseInts(f.input)
	if err != nil {
		return err
	}
	for _, r := range f.inputText {
		inputs = append(inputs, int64(r))
	}

	var tracers trace.Multi
	if f.trace {
		tracers = append(tracers, trace.NewTextWriter(os.Stderr))
	}
	if f.traceFile != "" {
		jw, err := trace.NewJSONLWriterFile(f.traceFile)
		if err != nil {
			return err
		}
		defer jw.Close()
		tracers = append(tracers, jw)
	}

	var outputs []int64
	out := cmd.OutOrStdout()
	emit := func(v int64) error {
		outputs = append(outputs, v)
		writeValue(out, v, f.ascii)
		return nil
	}
	opts := a.vmOptions(intcode.WithName(p.Name), intcode.WithTracer(tracers))
	vm, err := intcode.NewBlocking(p.Image, intcode.SliceInput(inputs...), emit, opts...)
	if err != nil {
		return err
	}
	if f.params != "" {
		nv, err := parseInts(f.params)
		if err != nil {
			return err
		}
		if len(nv) != 2 {
			return fmt.Errorf("--params wants noun,verb, got %q", f.params)
		}
		if err := vm.SetParameters(nv[0], nv[1]); err != nil {
			return err
		}
	}

	_, span := a.telemetry.Tracer("intcode/cmd").Start(cmd.Context(), "run")
	span.SetAttributes(attribute.String("program", p.Name), attribute.String("hash", p.Hash().String_short()))
	start := time.Now()
	runErr := vm.Run(len(tracers) > 0)
	span.SetAttributes(attribute.Int64("steps", int64(vm.Steps())))
	if runErr != nil {
		span.SetStatus(codes.Error, runErr.Error())
	}
	span.End()
	log.Info(log.CLIModule, "run finished", "program", p.Name, "steps", vm.Steps(), "state", vm.State(), "elapsed", time.Since(start))

	if f.ascii && len(outputs) > 0 && outputs[len(outputs)-1] != '\n' {
		fmt.Fprintln(out)
	}
	result, _ := vm.Result()
	if runErr == nil && f.result {
		fmt.Fprintln(out, result)
	}

	if f.save != "" || stored {
		rec := storage.RunRecord{
			Time:    start.UTC(),
			Inputs:  inputs,
			Outputs: outputs,
			Result:  result,
			Steps:   vm.Steps(),
			State:   vm.State().String(),
			Commit:  common.GetCommitHash(),
		}
		if runErr != nil {
			rec.Err = runErr.Error()
		}
		if err := a.recordRun(p, f.save, rec); err != nil {
			log.Warn(log.CLIModule, "run not recorded", "program", p.Name, "err", err)
		}
	}
	return runErr
}

// recordRun stores p under name (when given) and appends rec to its history.
func (a *app) recordRun(p *program.Program, name string, rec storage.RunRecord) error {
	s, err := a.programStore()
	if err != nil {
		return err
	}
	if name != "" {
		saved := &program.Program{Name: name, Image: p.Image}
		if _, err := s.Put(saved); err != nil {
			return err
		}
	}
	seq, err := s.RecordRun(p.Hash(), rec)
	if err != nil {
		return err
	}
	log.Debug(log.StoreModule, "run recorded", "hash", p.Hash().String_short(), "seq", seq)
	return nil
}

func writeValue(w io.Writer, v int64, ascii bool) {
	if ascii && v >= 0 && v < 128 {
		fmt.Fprintf(w, "%c", rune(v))
		return
	}
	fmt.Fprintln(w, v)
}
