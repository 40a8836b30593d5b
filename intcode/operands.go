package intcode

import (
	"fmt"

	"github.com/colorfulnotion/intcode/vmerrors"
)

// ResolveSource returns the value a parameter reads.
func ResolveSource(mem *Memory, width WordWidth, literal int64, mode Mode, relBase int64) (int64, error) {
	switch mode {
	case Immediate:
		return literal, nil
	case Position:
		return mem.Read(literal)
	case Relative:
		addr, err := width.add(literal, relBase)
		if err != nil {
			return 0, err
		}
		return mem.Read(addr)
	default:
		return 0, fmt.Errorf("%s: %w", mode, vmerrors.ErrVInvalidParameterMode)
	}
}

// ResolveDest returns the address a destination parameter writes to.
func ResolveDest(width WordWidth, literal int64, mode Mode, relBase int64) (int64, error) {
	switch mode {
	case Position:
		return literal, nil
	case Relative:
		return width.add(literal, relBase)
	case Immediate:
		return 0, vmerrors.ErrVIllegalWriteTarget
	default:
		return 0, fmt.Errorf("%s: %w", mode, vmerrors.ErrVInvalidParameterMode)
	}
}

// literal reads the raw word of the i-th parameter (0-based).
func (vm *VM) literal(i int) (int64, error) {
	return vm.mem.Read(vm.ip + 1 + int64(i))
}

func (vm *VM) source(i int) (int64, error) {
	lit, err := vm.literal(i)
	if err != nil {
		return 0, fmt.Errorf("param %d: %w", i+1, err)
	}
	mode := vm.inst.Mode(i)
	v, err := ResolveSource(vm.mem, vm.width, lit, mode, vm.relBase)
	if err != nil {
		return 0, fmt.Errorf("param %d: %w", i+1, err)
	}
	if vm.step != nil {
		var addr *int64
		switch mode {
		case Position:
			addr = &lit
		case Relative:
			a := lit + vm.relBase
			addr = &a
		}
		vm.step.AddSource(mode.String(), lit, addr, v)
	}
	return v, nil
}

func (vm *VM) destination(i int) (int64, error) {
	lit, err := vm.literal(i)
	if err != nil {
		return 0, fmt.Errorf("param %d: %w", i+1, err)
	}
	mode := vm.inst.Mode(i)
	addr, err := ResolveDest(vm.width, lit, mode, vm.relBase)
	if err != nil {
		return 0, fmt.Errorf("param %d: %w", i+1, err)
	}
	if vm.step != nil {
		vm.step.AddDest(mode.String(), lit, addr)
	}
	return addr, nil
}

// store writes value through the i-th parameter.
func (vm *VM) store(i int, value int64) error {
	addr, err := vm.destination(i)
	if err != nil {
		return err
	}
	if err := vm.mem.Write(addr, value); err != nil {
		return fmt.Errorf("param %d: %w", i+1, err)
	}
	if vm.step != nil {
		vm.step.SetResult(value)
	}
	return nil
}
