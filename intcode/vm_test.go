package intcode

import (
	"errors"
	"testing"

	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quine = []int64{109, 1, 204, -1, 1001, 100, 1, 100, 1008, 100, 16, 101, 1006, 101, 0, 99}

// drain runs a cooperative VM to termination, feeding inputs in order and
// returning every output.
func drain(t *testing.T, vm *VM, inputs ...int64) []int64 {
	t.Helper()
	var out []int64
	require.NoError(t, vm.Run(false))
	for vm.State() != Terminated {
		switch vm.State() {
		case BlockedOnInput:
			require.NotEmpty(t, inputs, "program wants more input")
			require.NoError(t, vm.ProvideInput(inputs[0], false))
			inputs = inputs[1:]
		case BlockedOnOutput:
			v, err := vm.GetOutput(false)
			require.NoError(t, err)
			out = append(out, v)
		}
		require.NoError(t, vm.Run(false))
	}
	return out
}

func TestRunToTermination(t *testing.T) {
	tests := []struct {
		name  string
		image []int64
		addr  int64
		want  int64
	}{
		{"add", []int64{1, 0, 0, 0, 99}, 0, 2},
		{"mul", []int64{2, 3, 0, 3, 99}, 3, 6},
		{"mul past halt", []int64{2, 4, 4, 5, 99, 0}, 5, 9801},
		{"self modifying", []int64{1, 1, 1, 4, 99, 5, 6, 0, 99}, 0, 30},
		{"immediate modes", []int64{1101, 100, -1, 4, 0}, 4, 99},
		{"mode digits short", []int64{1002, 4, 3, 4, 33}, 4, 99},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			vm, err := New(tc.image)
			require.NoError(t, err)
			require.NoError(t, vm.Run(false))
			assert.Equal(t, Terminated, vm.State())
			got, err := vm.Peek(tc.addr)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestImageIsCopied(t *testing.T) {
	image := []int64{1, 0, 0, 0, 99}
	vm, err := New(image)
	require.NoError(t, err)
	require.NoError(t, vm.Run(false))
	assert.Equal(t, int64(1), image[0])
	r, err := vm.Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), r)
}

func TestLargeOutputCooperative(t *testing.T) {
	vm, err := NewCooperative([]int64{104, 1125899906842624, 99})
	require.NoError(t, err)
	require.NoError(t, vm.Run(false))
	assert.Equal(t, BlockedOnOutput, vm.State())
	v, err := vm.GetOutput(false)
	require.NoError(t, err)
	assert.Equal(t, int64(1125899906842624), v)
	assert.Equal(t, WaitingToRun, vm.State())
	require.NoError(t, vm.Run(false))
	assert.Equal(t, Terminated, vm.State())
}

func TestSixteenDigitProduct(t *testing.T) {
	var out []int64
	vm, err := NewBlocking([]int64{1102, 34915192, 34915192, 7, 4, 7, 99, 0}, nil, CollectOutput(&out))
	require.NoError(t, err)
	require.NoError(t, vm.Run(false))
	require.Len(t, out, 1)
	assert.Equal(t, int64(1219070632396864), out[0])
}

func TestQuine(t *testing.T) {
	t.Run("cooperative", func(t *testing.T) {
		vm, err := NewCooperative(quine)
		require.NoError(t, err)
		assert.Equal(t, quine, drain(t, vm))
	})
	t.Run("blocking", func(t *testing.T) {
		var out []int64
		vm, err := NewBlocking(quine, nil, CollectOutput(&out))
		require.NoError(t, err)
		require.NoError(t, vm.Run(false))
		assert.Equal(t, quine, out)
		assert.Equal(t, int64(16), vm.RelativeBase())
	})
}

func TestCompareAndJump(t *testing.T) {
	tests := []struct {
		name  string
		image []int64
		in    int64
		want  int64
	}{
		{"eq position hit", []int64{3, 9, 8, 9, 10, 9, 4, 9, 99, -1, 8}, 8, 1},
		{"eq position miss", []int64{3, 9, 8, 9, 10, 9, 4, 9, 99, -1, 8}, 7, 0},
		{"lt position", []int64{3, 9, 7, 9, 10, 9, 4, 9, 99, -1, 8}, 5, 1},
		{"eq immediate", []int64{3, 3, 1108, -1, 8, 3, 4, 3, 99}, 8, 1},
		{"lt immediate", []int64{3, 3, 1107, -1, 8, 3, 4, 3, 99}, 9, 0},
		{"jf position zero", []int64{3, 12, 6, 12, 15, 1, 13, 14, 13, 4, 13, 99, -1, 0, 1, 9}, 0, 0},
		{"jt immediate nonzero", []int64{3, 3, 1105, -1, 9, 1101, 0, 0, 12, 4, 12, 99, 1}, 5, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out []int64
			vm, err := NewBlocking(tc.image, SliceInput(tc.in), CollectOutput(&out))
			require.NoError(t, err)
			require.NoError(t, vm.Run(false))
			assert.Equal(t, []int64{tc.want}, out)
		})
	}
}

func TestCompareLarger(t *testing.T) {
	image := []int64{3, 21, 1008, 21, 8, 20, 1005, 20, 22, 107, 8, 21, 20, 1006, 20, 31,
		1106, 0, 36, 98, 0, 0, 1002, 21, 125, 20, 4, 20, 1105, 1, 46, 104,
		999, 1105, 1, 46, 1101, 1000, 1, 20, 4, 20, 1105, 1, 46, 98, 99}
	for in, want := range map[int64]int64{7: 999, 8: 1000, 9: 1001} {
		vm, err := NewCooperative(image)
		require.NoError(t, err)
		assert.Equal(t, []int64{want}, drain(t, vm, in), "input %d", in)
	}
}

func TestMemoryGrowth(t *testing.T) {
	vm, err := New([]int64{1101, 5, 6, 20, 99})
	require.NoError(t, err)
	require.NoError(t, vm.Run(false))
	v, err := vm.Peek(20)
	require.NoError(t, err)
	assert.Equal(t, int64(11), v)
	mem := vm.Memory()
	assert.Len(t, mem, 21)
	for addr := 5; addr < 20; addr++ {
		assert.Zero(t, mem[addr])
	}
	v, err = vm.Peek(1 << 40)
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.Len(t, vm.Memory(), 21)
}

func TestRelativeDestination(t *testing.T) {
	// arb 50; in -> rb+0; out rb+0
	vm, err := NewCooperative([]int64{109, 50, 203, 0, 204, 0, 99})
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, drain(t, vm, 42))
	v, err := vm.Peek(50)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestFaults(t *testing.T) {
	tests := []struct {
		name  string
		image []int64
		opts  []Option
		want  error
	}{
		{"invalid opcode", []int64{42}, nil, vmerrors.ErrVInvalidOpcode},
		{"negative word", []int64{-1}, nil, vmerrors.ErrVInvalidOpcode},
		{"run off the end", []int64{1101, 1, 1, 0}, nil, vmerrors.ErrVInvalidOpcode},
		{"invalid mode", []int64{301, 0, 0, 0, 99}, nil, vmerrors.ErrVInvalidParameterMode},
		{"immediate destination", []int64{11101, 1, 1, 0, 99}, nil, vmerrors.ErrVIllegalWriteTarget},
		{"negative read", []int64{1, -1, 0, 0, 99}, nil, vmerrors.ErrVNegativeAddress},
		{"negative write", []int64{1101, 1, 1, -5, 99}, nil, vmerrors.ErrVNegativeAddress},
		{"negative jump", []int64{1105, 1, -3}, nil, vmerrors.ErrVNegativeAddress},
		{"negative relative", []int64{109, -10, 204, 0, 99}, []Option{WithIO(nil, func(int64) error { return nil })}, vmerrors.ErrVNegativeAddress},
		{"add overflow", []int64{1101, 9223372036854775807, 1, 0, 99}, nil, vmerrors.ErrVOverflow},
		{"mul overflow", []int64{1102, 4294967296, 4294967296, 0, 99}, nil, vmerrors.ErrVOverflow},
		{"32-bit overflow", []int64{1101, 2147483647, 1, 0, 99}, []Option{WithWordWidth(Width32)}, vmerrors.ErrVOverflow},
		{"memory limit", []int64{1101, 1, 1, 100, 99}, []Option{WithMemoryLimit(64)}, vmerrors.ErrVMemoryLimit},
		{"unconfigured input", []int64{3, 0, 99}, nil, vmerrors.ErrSUninitializedIO},
		{"unconfigured output", []int64{104, 0, 99}, nil, vmerrors.ErrSUninitializedIO},
		{"input exhausted", []int64{3, 0, 3, 0, 99}, []Option{WithIO(SliceInput(1), nil)}, vmerrors.ErrSInputExhausted},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			vm, err := New(tc.image, tc.opts...)
			require.NoError(t, err)
			err = vm.Run(false)
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, err, vm.Err())

			// the instance stays dead
			again := vm.Run(false)
			require.ErrorIs(t, again, vmerrors.ErrSFaulted)
			require.ErrorIs(t, again, tc.want)
			_, err = vm.GetOutput(false)
			require.ErrorIs(t, err, vmerrors.ErrSFaulted)
		})
	}
}

func TestOutputCallableError(t *testing.T) {
	stop := errors.New("sink closed")
	vm, err := NewBlocking([]int64{1101, 1, 1, 9, 104, 7, 99}, nil, func(int64) error { return stop })
	require.NoError(t, err)
	err = vm.Run(false)
	require.ErrorIs(t, err, stop)
	assert.False(t, IsFault(err))

	// the fault points at the out instruction, which did not complete
	assert.Equal(t, int64(4), vm.IP())
	assert.Equal(t, uint64(1), vm.Steps())
	assert.Contains(t, err.Error(), "vm: ip 4 (out): output: sink closed")
}

func TestFaultLocation(t *testing.T) {
	tests := []struct {
		name  string
		image []int64
		want  string
	}{
		{"undecodable after add", []int64{1101, 1, 1, 0, 42}, "vm: ip 4: opcode 42"},
		{"first word", []int64{42}, "vm: ip 0: opcode 42"},
		{"bad mode", []int64{1101, 1, 1, 0, 301}, "vm: ip 4: mode digit 3"},
		{"handler fault", []int64{1101, 1, 1, -5, 99}, "vm: ip 0 (add): param 3"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			vm, err := New(tc.image)
			require.NoError(t, err)
			err = vm.Run(false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
			assert.NotContains(t, err.Error(), "(add): opcode")
		})
	}
}

func TestConfigErrors(t *testing.T) {
	_, err := New([]int64{99}, WithCooperative(), WithIO(SliceInput(), nil))
	require.ErrorIs(t, err, vmerrors.ErrCInvalidConfig)

	_, err = New([]int64{99}, WithWordWidth(16))
	require.ErrorIs(t, err, vmerrors.ErrCInvalidConfig)

	_, err = New([]int64{99}, WithMemoryLimit(-1))
	require.ErrorIs(t, err, vmerrors.ErrCInvalidConfig)

	_, err = New([]int64{4294967296, 99}, WithWordWidth(Width32))
	require.ErrorIs(t, err, vmerrors.ErrVOverflow)

	vm, err := NewCooperative([]int64{99})
	require.NoError(t, err)
	require.ErrorIs(t, vm.SetInput(SliceInput(1)), vmerrors.ErrCInvalidConfig)
	require.ErrorIs(t, vm.SetOutput(nil), vmerrors.ErrCInvalidConfig)
}

func TestLateIOConfiguration(t *testing.T) {
	var out []int64
	vm, err := New([]int64{3, 0, 4, 0, 99})
	require.NoError(t, err)
	require.NoError(t, vm.SetInput(SliceInput(77)))
	require.NoError(t, vm.SetOutput(CollectOutput(&out)))
	require.NoError(t, vm.Run(false))
	assert.Equal(t, []int64{77}, out)
}

func TestSteps(t *testing.T) {
	vm, err := New([]int64{1101, 1, 1, 8, 1105, 0, 0, 99})
	require.NoError(t, err)
	require.NoError(t, vm.Run(false))
	// add, jt (not taken), hlt
	assert.Equal(t, uint64(3), vm.Steps())
	assert.Equal(t, int64(7), vm.IP())
}

func TestParametersAndResult(t *testing.T) {
	image := []int64{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50}
	vm, err := New(image)
	require.NoError(t, err)
	require.NoError(t, vm.SetParameters(9, 10))
	require.NoError(t, vm.Run(false))
	r, err := vm.Result()
	require.NoError(t, err)
	assert.Equal(t, int64(3500), r)

	err = vm.SetParameters(1, 2)
	require.ErrorIs(t, err, vmerrors.ErrSOutOfPhaseCall)
}

func TestPoke(t *testing.T) {
	vm, err := New([]int64{99}, WithWordWidth(Width32))
	require.NoError(t, err)
	require.NoError(t, vm.Poke(3, 2))
	assert.Len(t, vm.Memory(), 4)
	require.ErrorIs(t, vm.Poke(-1, 0), vmerrors.ErrVNegativeAddress)
	require.ErrorIs(t, vm.Poke(0, 1<<40), vmerrors.ErrVOverflow)
}
