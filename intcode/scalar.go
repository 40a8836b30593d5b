package intcode

import (
	"fmt"

	"github.com/colorfulnotion/intcode/vmerrors"
)

// SetParameters writes the noun and verb into cells 1 and 2. It is only
// allowed before the first instruction executes.
func (vm *VM) SetParameters(noun, verb int64) error {
	if vm.steps != 0 || vm.state != WaitingToRun || vm.fault != nil {
		return fmt.Errorf("set parameters after start: %w", vmerrors.ErrSOutOfPhaseCall)
	}
	if err := vm.Poke(1, noun); err != nil {
		return err
	}
	return vm.Poke(2, verb)
}

// Result reads cell 0.
func (vm *VM) Result() (int64, error) {
	return vm.Peek(0)
}

// Peek reads one cell without affecting execution.
func (vm *VM) Peek(addr int64) (int64, error) {
	return vm.mem.Read(addr)
}

// Poke writes one cell, growing memory like a program store would.
func (vm *VM) Poke(addr, v int64) error {
	if err := vm.width.check(v); err != nil {
		return fmt.Errorf("poke %d: %w", addr, err)
	}
	return vm.mem.Write(addr, v)
}
