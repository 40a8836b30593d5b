// intcode runs, inspects and stores Intcode programs.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/colorfulnotion/intcode/config"
	"github.com/colorfulnotion/intcode/intcode"
	log "github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/program"
	"github.com/colorfulnotion/intcode/storage"
	"github.com/colorfulnotion/intcode/telemetry"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

const storeRefPrefix = "store:"

// app carries the state shared by every subcommand.
type app struct {
	configPath   string
	logLevel     string
	logModules   string
	dbPath       string
	otlpEndpoint string
	width        int
	memoryLimit  int64

	cfg       *config.Config
	store     *storage.ProgramStore
	telemetry *telemetry.TelemetryClient
}

func main() {
	if err := execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// execute runs one command line and releases the store and telemetry
// whether or not the command succeeded.
func execute(args []string, opts ...func(*cobra.Command)) error {
	a := &app{}
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	for _, opt := range opts {
		opt(cmd)
	}
	err := cmd.Execute()
	if cerr := a.teardown(); err == nil {
		err = cerr
	}
	return err
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "intcode",
		Short:         "Intcode virtual machine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default: nearest "+config.FileName+")")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	pf.StringVar(&a.logModules, "log-modules", "", "Comma separated debug modules to enable")
	pf.StringVar(&a.dbPath, "db", "", "Program store directory (default: in memory)")
	pf.StringVar(&a.otlpEndpoint, "otlp-endpoint", "", "OTLP/HTTP collector host:port")
	pf.IntVar(&a.width, "width", 0, "Word width in bits, 32 or 64")
	pf.Int64Var(&a.memoryLimit, "memory-limit", 0, "Maximum memory cells")

	rootCmd.AddCommand(
		a.runCmd(),
		a.interactiveCmd(),
		a.consoleCmd(),
		a.disasmCmd(),
		a.diffCmd(),
		a.ringCmd(),
		a.traceCmd(),
		a.profileCmd(),
		a.storeCmd(),
		versionCmd(),
	)
	return rootCmd
}

// setup resolves the configuration with flags taking precedence over the
// file, then starts logging and telemetry.
func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.Load(a.configPath)
	} else {
		a.cfg, err = config.FindAndLoad(".")
	}
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		a.cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-modules") {
		a.cfg.Log.Modules = splitList(a.logModules)
	}
	if flags.Changed("db") {
		a.cfg.Storage.Path = a.dbPath
	}
	if flags.Changed("otlp-endpoint") {
		a.cfg.Telemetry.Endpoint = a.otlpEndpoint
	}
	if flags.Changed("width") {
		a.cfg.VM.WordWidth = a.width
	}
	if flags.Changed("memory-limit") {
		a.cfg.VM.MemoryLimit = a.memoryLimit
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	if err := a.cfg.ApplyLogging(); err != nil {
		return err
	}
	a.telemetry = telemetry.NewTelemetryClient(a.cfg.Telemetry.Endpoint)
	if err := a.telemetry.Start(cmd.Context()); err != nil {
		log.Warn(log.CLIModule, "telemetry disabled", "endpoint", a.cfg.Telemetry.Endpoint, "err", err)
	}
	log.Debug(log.CLIModule, "configured", "config", a.cfg.Path, "width", a.cfg.VM.WordWidth, "db", a.cfg.Storage.Path)
	return nil
}

func (a *app) teardown() error {
	if a.telemetry != nil {
		if err := a.telemetry.Close(context.Background()); err != nil {
			log.Warn(log.CLIModule, "telemetry flush failed", "err", err)
		}
	}
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// programStore opens the store on first use.
func (a *app) programStore() (*storage.ProgramStore, error) {
	if a.store == nil {
		s, err := storage.OpenProgramStore(a.cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		a.store = s
	}
	return a.store, nil
}

// loadProgram reads a program file, or a stored program when ref has the
// store: prefix.
func (a *app) loadProgram(ref string) (*program.Program, error) {
	if name, ok := strings.CutPrefix(ref, storeRefPrefix); ok {
		s, err := a.programStore()
		if err != nil {
			return nil, err
		}
		return s.Get(name)
	}
	return program.ReadFile(ref)
}

func (a *app) vmOptions(extra ...intcode.Option) []intcode.Option {
	return append(a.cfg.VMOptions(), extra...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInts(s string) ([]int64, error) {
	var out []int64
	for _, part := range splitList(s) {
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", part)
		}
		out = append(out, v)
	}
	return out, nil
}
