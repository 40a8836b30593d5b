package intcode

import (
	"testing"

	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		word   int64
		opcode Opcode
		modes  []Mode
	}{
		{1, ADD, nil},
		{99, HALT, nil},
		{1002, MUL, []Mode{Position, Immediate}},
		{1101, ADD, []Mode{Immediate, Immediate}},
		{21107, LESS_THAN, []Mode{Immediate, Immediate, Relative}},
		{204, OUT, []Mode{Relative}},
		{109, ADJUST_RELATIVE_BASE, []Mode{Immediate}},
		{20001, ADD, []Mode{Position, Position, Relative}},
	}
	for _, tc := range tests {
		in, err := Decode(tc.word)
		require.NoError(t, err, "word %d", tc.word)
		assert.Equal(t, tc.opcode, in.Opcode, "word %d", tc.word)
		for i := 0; i < 3; i++ {
			want := Position
			if i < len(tc.modes) {
				want = tc.modes[i]
			}
			assert.Equal(t, want, in.Mode(i), "word %d param %d", tc.word, i)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		word int64
		want error
	}{
		{0, vmerrors.ErrVInvalidOpcode},
		{10, vmerrors.ErrVInvalidOpcode},
		{98, vmerrors.ErrVInvalidOpcode},
		{-1101, vmerrors.ErrVInvalidOpcode},
		{301, vmerrors.ErrVInvalidParameterMode},
		{10901, vmerrors.ErrVInvalidParameterMode},
	}
	for _, tc := range tests {
		_, err := Decode(tc.word)
		assert.ErrorIs(t, err, tc.want, "word %d", tc.word)
	}
}

func TestOpcodeInfo(t *testing.T) {
	info, ok := Info(ADD)
	require.True(t, ok)
	assert.Equal(t, 4, info.Width())
	assert.Equal(t, 2, info.Dest)

	info, ok = Info(HALT)
	require.True(t, ok)
	assert.True(t, info.Halts)
	assert.Equal(t, 1, info.Width())

	_, ok = Info(50)
	assert.False(t, ok)
	assert.Equal(t, "op(50)", Opcode(50).String())
	assert.Equal(t, "arb", ADJUST_RELATIVE_BASE.String())
}

func TestResolve(t *testing.T) {
	mem := NewMemory([]int64{5, 6, 7}, 0)

	v, err := ResolveSource(mem, Width64, 2, Position, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	v, err = ResolveSource(mem, Width64, 2, Immediate, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	v, err = ResolveSource(mem, Width64, -1, Relative, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(6), v)

	addr, err := ResolveDest(Width64, -3, Relative, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(7), addr)

	_, err = ResolveDest(Width64, 3, Immediate, 0)
	assert.ErrorIs(t, err, vmerrors.ErrVIllegalWriteTarget)

	_, err = ResolveSource(mem, Width64, 0, Mode(7), 0)
	assert.ErrorIs(t, err, vmerrors.ErrVInvalidParameterMode)
}
