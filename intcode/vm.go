// Package intcode implements the Intcode virtual machine: a flat memory of
// signed words, ten opcodes with position, immediate and relative
// addressing, and two I/O policies. In blocking mode the VM pulls input and
// pushes output through injected callables; in cooperative mode it suspends
// at every in/out instruction and the driver resumes it with ProvideInput
// or GetOutput.
package intcode

import (
	"errors"
	"fmt"
	"os"

	"github.com/colorfulnotion/intcode/intcode/trace"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/vmerrors"
)

type VM struct {
	mem     *Memory
	ip      int64 // instruction pointer
	relBase int64 // relative base register
	state   State
	width   WordWidth

	cooperative bool
	input       InputFunc
	output      OutputFunc

	// decoded instruction scratch, valid between a decode and its dispatch
	// (and across a cooperative suspension)
	inst    Instruction
	modes   [maxModes]Mode
	decoded bool // inst describes the word at ip

	steps uint64 // completed instructions
	fault error

	name        string
	memoryLimit int64
	tracer      trace.Tracer
	step        *trace.Step // non-nil while tracing the current instruction
}

type Option func(vm *VM)

// WithIO configures blocking mode with both callables.
func WithIO(in InputFunc, out OutputFunc) Option {
	return func(vm *VM) {
		vm.input = in
		vm.output = out
	}
}

// WithCooperative selects cooperative mode: in/out suspend the VM.
func WithCooperative() Option {
	return func(vm *VM) {
		vm.cooperative = true
	}
}

func WithWordWidth(w WordWidth) Option {
	return func(vm *VM) {
		vm.width = w
	}
}

// WithMemoryLimit caps memory growth at n cells.
func WithMemoryLimit(n int64) Option {
	return func(vm *VM) {
		vm.memoryLimit = n
	}
}

// WithTracer sets the destination of trace steps for Run(true) and friends.
// Without it, tracing prints text lines on stderr.
func WithTracer(t trace.Tracer) Option {
	return func(vm *VM) {
		vm.tracer = t
	}
}

// WithName labels the instance in log lines.
func WithName(name string) Option {
	return func(vm *VM) {
		vm.name = name
	}
}

// New creates a VM over a copy of image. Without options the VM is in
// blocking mode with unconfigured I/O.
func New(image []int64, opts ...Option) (*VM, error) {
	vm := &VM{
		state:       WaitingToRun,
		width:       Width64,
		memoryLimit: DefaultMemoryLimit,
		name:        "vm",
	}
	for _, opt := range opts {
		opt(vm)
	}
	if !vm.width.valid() {
		return nil, fmt.Errorf("word width %d: %w", vm.width, vmerrors.ErrCInvalidConfig)
	}
	if vm.memoryLimit <= 0 {
		return nil, fmt.Errorf("memory limit %d: %w", vm.memoryLimit, vmerrors.ErrCInvalidConfig)
	}
	if vm.cooperative && (vm.input != nil || vm.output != nil) {
		return nil, fmt.Errorf("cooperative mode with blocking I/O: %w", vmerrors.ErrCInvalidConfig)
	}
	for i, v := range image {
		if err := vm.width.check(v); err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
	}
	vm.mem = NewMemory(image, vm.memoryLimit)
	log.Debug(log.VMModule, "vm created", "name", vm.name, "cells", len(image), "width", int(vm.width), "cooperative", vm.cooperative)
	return vm, nil
}

// NewBlocking is New(image, WithIO(in, out), opts...).
func NewBlocking(image []int64, in InputFunc, out OutputFunc, opts ...Option) (*VM, error) {
	return New(image, append([]Option{WithIO(in, out)}, opts...)...)
}

// NewCooperative is New(image, WithCooperative(), opts...).
func NewCooperative(image []int64, opts ...Option) (*VM, error) {
	return New(image, append([]Option{WithCooperative()}, opts...)...)
}

// Run executes instructions until the VM terminates or, in cooperative
// mode, suspends at an in/out instruction. With trace set, every dispatched
// instruction is reported to the tracer.
func (vm *VM) Run(trace bool) error {
	if err := vm.checkRunnable(); err != nil {
		return err
	}
	for vm.state == WaitingToRun {
		if err := vm.fetch(); err != nil {
			return vm.fail(err)
		}
		if trace {
			vm.beginStep()
		}
		if err := dispatchTable[vm.inst.Opcode](vm); err != nil {
			return vm.fail(err)
		}
		if trace {
			vm.endStep()
		}
	}
	switch vm.state {
	case Terminated:
		log.Debug(log.VMModule, "vm terminated", "name", vm.name, "steps", vm.steps)
	default:
		log.Trace(log.VMModule, "vm suspended", "name", vm.name, "state", vm.state, "ip", vm.ip)
	}
	return nil
}

// fetch decodes the word at the instruction pointer into the scratch.
func (vm *VM) fetch() error {
	vm.decoded = false
	word, err := vm.mem.Read(vm.ip)
	if err != nil {
		return err
	}
	if err := decodeInto(word, &vm.inst, vm.modes[:]); err != nil {
		return err
	}
	vm.decoded = true
	return nil
}

func (vm *VM) advance(width int64) {
	vm.ip += width
	vm.steps++
}

func (vm *VM) jump(target int64) {
	if vm.step != nil {
		vm.step.SetJump(target)
	}
	vm.ip = target
	vm.steps++
}

func (vm *VM) suspend(s State) {
	vm.state = s
}

// fail records err as the VM's terminal fault.
func (vm *VM) fail(err error) error {
	vm.step = nil
	if vm.decoded {
		vm.fault = fmt.Errorf("%s: ip %d (%s): %w", vm.name, vm.ip, vm.inst.Opcode, err)
	} else {
		vm.fault = fmt.Errorf("%s: ip %d: %w", vm.name, vm.ip, err)
	}
	log.Warn(log.VMModule, "vm fault", "name", vm.name, "ip", vm.ip, "steps", vm.steps, "err", vm.fault)
	return vm.fault
}

func (vm *VM) beginStep() {
	vm.step = trace.NewStep(vm.steps, vm.ip, vm.inst.Word, int64(vm.inst.Opcode), vm.inst.Opcode.String())
}

func (vm *VM) endStep() {
	step := vm.step
	vm.step = nil
	if step == nil {
		return
	}
	step.RelativeBase = vm.relBase
	step.SetPostState(vm.state.String())
	step.Text = step.Describe()
	if vm.tracer == nil {
		vm.tracer = trace.NewTextWriter(os.Stderr)
	}
	if err := vm.tracer.WriteStep(step); err != nil {
		log.Warn(log.VMModule, "trace write failed", "name", vm.name, "err", err)
	}
}

// Err returns the fault that stopped the VM, if any.
func (vm *VM) Err() error {
	return vm.fault
}

func (vm *VM) faulted() error {
	return fmt.Errorf("%w: %w", vmerrors.ErrSFaulted, vm.fault)
}

func (vm *VM) IP() int64 {
	return vm.ip
}

func (vm *VM) RelativeBase() int64 {
	return vm.relBase
}

// Steps is the number of completed instructions.
func (vm *VM) Steps() uint64 {
	return vm.steps
}

func (vm *VM) WordWidth() WordWidth {
	return vm.width
}

func (vm *VM) Cooperative() bool {
	return vm.cooperative
}

func (vm *VM) Name() string {
	return vm.name
}

// Memory returns a copy of the backed memory cells.
func (vm *VM) Memory() []int64 {
	return vm.mem.Snapshot()
}

func errUninitialized(what string) error {
	return fmt.Errorf("%s: %w", what, vmerrors.ErrSUninitializedIO)
}

// IsFault reports whether err is a VM error rather than an error produced
// by a driver's I/O callable.
func IsFault(err error) bool {
	k := vmerrors.Known(err)
	return k != nil && !errors.Is(k, vmerrors.ErrSInputExhausted)
}
