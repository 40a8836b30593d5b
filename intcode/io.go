package intcode

import (
	"fmt"

	"github.com/colorfulnotion/intcode/vmerrors"
)

// InputFunc supplies the next input value in blocking mode.
type InputFunc func() (int64, error)

// OutputFunc consumes an output value in blocking mode.
type OutputFunc func(v int64) error

// SliceInput returns an InputFunc that yields values in order and then
// fails with InputExhausted.
func SliceInput(values ...int64) InputFunc {
	i := 0
	return func() (int64, error) {
		if i >= len(values) {
			return 0, fmt.Errorf("after %d values: %w", len(values), vmerrors.ErrSInputExhausted)
		}
		v := values[i]
		i++
		return v, nil
	}
}

// CollectOutput returns an OutputFunc that appends every value to dst.
func CollectOutput(dst *[]int64) OutputFunc {
	return func(v int64) error {
		*dst = append(*dst, v)
		return nil
	}
}

// SetInput configures the blocking-mode input callable.
func (vm *VM) SetInput(in InputFunc) error {
	if vm.cooperative {
		return fmt.Errorf("set input on cooperative vm: %w", vmerrors.ErrCInvalidConfig)
	}
	vm.input = in
	return nil
}

// SetOutput configures the blocking-mode output callable.
func (vm *VM) SetOutput(out OutputFunc) error {
	if vm.cooperative {
		return fmt.Errorf("set output on cooperative vm: %w", vmerrors.ErrCInvalidConfig)
	}
	vm.output = out
	return nil
}
