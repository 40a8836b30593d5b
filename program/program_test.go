package program

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quine = []int64{109, 1, 204, -1, 1001, 100, 1, 100, 1008, 100, 16, 101, 1006, 101, 0, 99}

func TestParse(t *testing.T) {
	tests := []struct {
		text string
		want []int64
	}{
		{"1,0,0,0,99", []int64{1, 0, 0, 0, 99}},
		{"1101,100,-1,4,0\n", []int64{1101, 100, -1, 4, 0}},
		{" 104 , 1125899906842624 ,\n99 ", []int64{104, 1125899906842624, 99}},
		{"+5", []int64{5}},
	}
	for _, tc := range tests {
		got, err := Parse(tc.text)
		require.NoError(t, err, tc.text)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseMalformed(t *testing.T) {
	for _, text := range []string{"", "  \n", "1,,2", "1,2,", "1;2", "abc", "99999999999999999999"} {
		_, err := Parse(text)
		assert.ErrorIs(t, err, vmerrors.ErrPMalformedProgram, "%q", text)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	text := Format(quine)
	assert.True(t, strings.HasPrefix(text, "109,1,204,-1,"))
	back, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, quine, back)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quine.ic")
	require.NoError(t, os.WriteFile(path, []byte(Format(quine)+"\n"), 0o644))
	p, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, quine, p.Image)
	assert.Equal(t, path, p.Name)

	other := &Program{Name: "copy", Image: append([]int64(nil), quine...)}
	assert.Equal(t, p.Hash(), other.Hash())
	other.Image[0] = 9
	assert.NotEqual(t, p.Hash(), other.Hash())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestDiffImages(t *testing.T) {
	same, _, err := DiffImages(quine, append([]int64(nil), quine...))
	require.NoError(t, err)
	assert.True(t, same)

	patched := append([]int64(nil), quine...)
	patched[5] = 200
	same, report, err := DiffImages(quine, patched)
	require.NoError(t, err)
	assert.False(t, same)
	assert.Contains(t, report, "100")
	assert.Contains(t, report, "200")

	same, _, err = DiffImages([]int64{1, 2}, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.False(t, same)
}
