package program

import (
	"strings"
	"testing"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisassembleQuine(t *testing.T) {
	lines := Disassemble(quine)
	require.Len(t, lines, 6)
	names := make([]string, len(lines))
	for i, l := range lines {
		names[i] = l.Name
	}
	assert.Equal(t, []string{"arb", "out", "add", "eq", "jf", "hlt"}, names)
	assert.Equal(t, "#1", lines[0].Args)
	assert.Equal(t, "rb-1", lines[1].Args)
	assert.Equal(t, "[100] #1 -> [100]", lines[2].Args)
	assert.Equal(t, int64(12), lines[4].Addr)

	assert.Equal(t, intcode.JUMP_IF_FALSE, lines[4].Opcode)
	target, ok := lines[4].Target()
	require.True(t, ok)
	assert.Equal(t, int64(0), target)
}

func TestDisassembleData(t *testing.T) {
	// hlt followed by data, then an instruction truncated by the end of the image
	lines := Disassemble([]int64{99, -7, 42, 11101, 1})
	require.Len(t, lines, 5)
	assert.False(t, lines[0].Data)
	for _, l := range lines[1:] {
		assert.True(t, l.Data, "addr %d", l.Addr)
	}
	// 11101 writes through an immediate destination
	lines = Disassemble([]int64{11101, 1, 2, 3})
	assert.True(t, lines[0].Data)
}

func TestBlocks(t *testing.T) {
	blocks := Blocks(Disassemble(quine))
	require.Len(t, blocks, 2)
	assert.Equal(t, int64(0), blocks[0].Start)
	assert.Equal(t, int64(15), blocks[0].End())
	assert.Equal(t, []int64{0, 15}, blocks[0].Successors)
	assert.Empty(t, blocks[1].Successors)

	// jt #1 #6 is an unconditional jump
	blocks = Blocks(Disassemble([]int64{1105, 1, 6, 104, 0, 99, 104, 1, 99}))
	require.Len(t, blocks, 3)
	assert.Equal(t, []int64{6}, blocks[0].Successors)
	assert.Equal(t, int64(3), blocks[1].Start)
	assert.Equal(t, int64(6), blocks[2].Start)
}

func TestTree(t *testing.T) {
	tree := Tree("quine", Blocks(Disassemble(quine))).String()
	assert.Contains(t, tree, "quine: 2 blocks")
	assert.Contains(t, tree, "block 0000-0014")
	assert.Contains(t, tree, "0012 jf    [101] #0")
	assert.Contains(t, tree, "[next]  0000 0015")
}

func TestAnalyze(t *testing.T) {
	stats := Analyze(quine)
	assert.Equal(t, 16, stats.Words)
	assert.Equal(t, 6, stats.InstructionCount)
	assert.Equal(t, 0, stats.DataWords)
	assert.Equal(t, 2, stats.BasicBlockCount)
	assert.Equal(t, 1, stats.OpcodeDistribution["jf"])
}

func TestDisassembleToString(t *testing.T) {
	out := DisassembleToString([]int64{1, 0, 0, 0, 99})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "; 5 words, 2 lines", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "   0: add"))
	assert.True(t, strings.HasSuffix(lines[1], "; 1,0,0,0"))
}
