package ring

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/intcode/trace"
	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	chainA = []int64{3, 15, 3, 16, 1002, 16, 10, 16, 1, 16, 15, 15, 4, 15, 99, 0, 0}
	chainB = []int64{3, 23, 3, 24, 1002, 24, 10, 24, 1002, 23, -1, 23, 101, 5, 23, 23, 1, 24, 23, 23, 4, 23, 99, 0, 0}

	loopA = []int64{3, 26, 1001, 26, -4, 26, 3, 27, 1002, 27, 2, 27, 1, 27, 26, 27, 4, 27, 1001, 28, -1, 28, 1005, 28, 6, 99, 0, 0, 5}
	loopB = []int64{3, 52, 1001, 52, -5, 52, 3, 53, 1, 52, 56, 54, 1007, 54, 5, 55, 1005, 55, 26, 1001, 54,
		-5, 54, 1105, 1, 12, 1, 53, 54, 53, 1008, 54, 0, 55, 1001, 55, 1, 55, 2, 53, 55, 53, 4,
		53, 1001, 56, -1, 56, 1005, 56, 6, 99, 0, 0, 0, 0, 10}
)

func TestRunChain(t *testing.T) {
	ctx := context.Background()
	res, err := RunChain(ctx, chainA, []int64{4, 3, 2, 1, 0}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(43210), res.Signal)
	assert.Len(t, res.Steps, 5)

	res, err = RunChain(ctx, chainB, []int64{0, 1, 2, 3, 4}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(54321), res.Signal)
}

func TestMaxSignalChain(t *testing.T) {
	best, err := MaxSignal(context.Background(), RunChain, chainA, []int64{0, 1, 2, 3, 4}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 2, 1, 0}, best.Phases)
	assert.Equal(t, int64(43210), best.Result.Signal)
}

func TestRunFeedback(t *testing.T) {
	tests := []struct {
		name   string
		image  []int64
		phases []int64
		want   int64
	}{
		{"loop a", loopA, []int64{9, 8, 7, 6, 5}, 139629729},
		{"loop b", loopB, []int64{9, 7, 8, 5, 6}, 18216},
	}
	drivers := map[string]Driver{"cooperative": RunFeedback, "concurrent": RunConcurrent}
	for _, tc := range tests {
		for dname, drive := range drivers {
			t.Run(tc.name+"/"+dname, func(t *testing.T) {
				res, err := drive(context.Background(), tc.image, tc.phases, 0)
				require.NoError(t, err)
				assert.Equal(t, tc.want, res.Signal)
				for i, s := range res.Steps {
					assert.NotZero(t, s, "instance %d", i)
				}
			})
		}
	}
}

// every permutation terminates with a deterministic signal under both
// feedback drivers
func TestFeedbackAllPermutations(t *testing.T) {
	ctx := context.Background()
	perms := Permutations([]int64{5, 6, 7, 8, 9})
	require.Len(t, perms, 120)
	for _, image := range [][]int64{loopA, loopB} {
		for _, phases := range perms {
			a, err := RunFeedback(ctx, image, phases, 0)
			require.NoError(t, err, "phases %v", phases)
			b, err := RunFeedback(ctx, image, phases, 0)
			require.NoError(t, err)
			c, err := RunConcurrent(ctx, image, phases, 0)
			require.NoError(t, err, "phases %v", phases)
			assert.Equal(t, a.Signal, b.Signal)
			assert.Equal(t, a.Signal, c.Signal, "phases %v", phases)
		}
	}

	best, err := MaxSignal(ctx, RunFeedback, loopA, []int64{5, 6, 7, 8, 9}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 8, 7, 6, 5}, best.Phases)
	assert.Equal(t, int64(139629729), best.Result.Signal)
}

func TestInvalidTopology(t *testing.T) {
	ctx := context.Background()
	for _, drive := range []Driver{RunChain, RunFeedback, RunConcurrent} {
		_, err := drive(ctx, loopA, nil, 0)
		assert.ErrorIs(t, err, vmerrors.ErrRInvalidTopology)
	}
}

func TestDeadlock(t *testing.T) {
	// each instance reads twice and never writes
	image := []int64{3, 0, 3, 0, 3, 0, 99}
	_, err := RunFeedback(context.Background(), image, []int64{1, 2}, 0)
	require.ErrorIs(t, err, vmerrors.ErrRDeadlock)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err = RunConcurrent(ctx, image, []int64{1, 2}, 0)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUpstreamFinished(t *testing.T) {
	// the first instance consumes phase and signal and halts silently
	image := []int64{3, 0, 3, 0, 99}
	_, err := RunConcurrent(context.Background(), image, []int64{1, 2}, 0)
	require.ErrorIs(t, err, vmerrors.ErrRDeadlock)

	_, err = RunFeedback(context.Background(), image, []int64{1, 2}, 0)
	require.ErrorIs(t, err, vmerrors.ErrRDeadlock)
}

func TestInstanceFault(t *testing.T) {
	_, err := RunFeedback(context.Background(), []int64{3, 0, 42}, []int64{1, 2}, 0)
	require.ErrorIs(t, err, vmerrors.ErrVInvalidOpcode)
	assert.Contains(t, err.Error(), "amp0")
}

func TestTracedRing(t *testing.T) {
	var buf bytes.Buffer
	res, err := RunFeedback(context.Background(), loopA, []int64{9, 8, 7, 6, 5}, 0,
		WithTrace(trace.NewTextWriter(&buf)),
		WithVMOptions(intcode.WithMemoryLimit(1024)))
	require.NoError(t, err)
	assert.Equal(t, int64(139629729), res.Signal)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[amp0] 0000 in"))
	assert.Contains(t, out, "[amp4] ")
}

func TestPermutations(t *testing.T) {
	perms := Permutations([]int64{1, 2, 3})
	assert.Len(t, perms, 6)
	seen := map[[3]int64]bool{}
	for _, p := range perms {
		seen[[3]int64{p[0], p[1], p[2]}] = true
	}
	assert.Len(t, seen, 6)
	assert.Len(t, Permutations(nil), 1)
}
