package ring

import (
	"context"
	"slices"

	"github.com/colorfulnotion/intcode/log"
)

// Permutations returns every ordering of values in lexicographic order of
// positions.
func Permutations(values []int64) [][]int64 {
	var out [][]int64
	perm := slices.Clone(values)
	var rec func(k int)
	rec = func(k int) {
		if k == len(perm) {
			out = append(out, slices.Clone(perm))
			return
		}
		for i := k; i < len(perm); i++ {
			perm[k], perm[i] = perm[i], perm[k]
			rec(k + 1)
			perm[k], perm[i] = perm[i], perm[k]
		}
	}
	rec(0)
	return out
}

// Best is the strongest signal found by MaxSignal.
type Best struct {
	Phases []int64 `json:"phases"`
	Result *Result `json:"result"`
}

// MaxSignal runs drive over every permutation of values and returns the
// one with the highest signal. The first failing permutation aborts the
// search.
func MaxSignal(ctx context.Context, drive Driver, image []int64, values []int64, input int64, opts ...Option) (*Best, error) {
	var best *Best
	for _, phases := range Permutations(values) {
		res, err := drive(ctx, image, phases, input, opts...)
		if err != nil {
			return nil, err
		}
		if best == nil || res.Signal > best.Result.Signal {
			best = &Best{Phases: phases, Result: res}
		}
	}
	if best != nil {
		log.Debug(log.RingModule, "best phases", "phases", best.Phases, "signal", best.Result.Signal)
	}
	return best, nil
}
