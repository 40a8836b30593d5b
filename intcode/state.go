package intcode

import (
	"fmt"

	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/vmerrors"
)

// State is the run state observed by a driver.
type State uint8

const (
	WaitingToRun State = iota
	BlockedOnInput
	BlockedOnOutput
	Terminated
)

func (s State) String() string {
	switch s {
	case WaitingToRun:
		return "WaitingToRun"
	case BlockedOnInput:
		return "BlockedOnInput"
	case BlockedOnOutput:
		return "BlockedOnOutput"
	case Terminated:
		return "Terminated"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Blocked reports whether the VM is suspended at an in/out instruction.
func (s State) Blocked() bool {
	return s == BlockedOnInput || s == BlockedOnOutput
}

func (vm *VM) State() State {
	return vm.state
}

func (vm *VM) checkRunnable() error {
	if vm.fault != nil {
		return vm.faulted()
	}
	if vm.state != WaitingToRun {
		return fmt.Errorf("run while %s: %w", vm.state, vmerrors.ErrSOutOfPhaseCall)
	}
	return nil
}

// ProvideInput completes the pending in instruction with v. The VM is left
// in WaitingToRun; the driver calls Run to continue.
func (vm *VM) ProvideInput(v int64, trace bool) error {
	if vm.fault != nil {
		return vm.faulted()
	}
	if vm.state != BlockedOnInput {
		return fmt.Errorf("provide input while %s: %w", vm.state, vmerrors.ErrSOutOfPhaseCall)
	}
	vm.state = WaitingToRun
	if trace {
		vm.beginStep()
	}
	if err := vm.completeInput(v); err != nil {
		return vm.fail(err)
	}
	if trace {
		vm.endStep()
	}
	log.Trace(log.VMModule, "input accepted", "name", vm.name, "value", v)
	return nil
}

// GetOutput completes the pending out instruction and returns its value.
// The VM is left in WaitingToRun; the driver calls Run to continue.
func (vm *VM) GetOutput(trace bool) (int64, error) {
	if vm.fault != nil {
		return 0, vm.faulted()
	}
	if vm.state != BlockedOnOutput {
		return 0, fmt.Errorf("get output while %s: %w", vm.state, vmerrors.ErrSOutOfPhaseCall)
	}
	vm.state = WaitingToRun
	if trace {
		vm.beginStep()
	}
	v, err := vm.completeOutput()
	if err != nil {
		return 0, vm.fail(err)
	}
	if trace {
		vm.endStep()
	}
	log.Trace(log.VMModule, "output taken", "name", vm.name, "value", v)
	return v, nil
}
