package ring

import (
	"context"
	"fmt"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
)

// RunChain runs the instances one after another in blocking mode, each
// receiving its phase and the previous instance's last output.
func RunChain(ctx context.Context, image []int64, phases []int64, input int64, opts ...Option) (res *Result, err error) {
	if err := checkTopology(phases); err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "ring.chain", phases)
	defer func() { finish(span, res, err) }()

	c := newConfig(opts)
	signal := input
	steps := make([]uint64, len(phases))
	for i, phase := range phases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var out []int64
		vm, err := intcode.New(image, c.vmOptions(i, intcode.WithIO(intcode.SliceInput(phase, signal), intcode.CollectOutput(&out)))...)
		if err != nil {
			return nil, instanceErr(i, err)
		}
		if err := vm.Run(c.trace); err != nil {
			return nil, instanceErr(i, err)
		}
		if len(out) == 0 {
			return nil, instanceErr(i, fmt.Errorf("terminated without output"))
		}
		signal = out[len(out)-1]
		steps[i] = vm.Steps()
		log.Debug(log.RingModule, "chain stage done", "instance", i, "phase", phase, "signal", signal)
	}
	return &Result{Signal: signal, Rounds: 1, Steps: steps}, nil
}
