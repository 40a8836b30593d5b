package ring

import (
	"context"
	"fmt"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/vmerrors"
)

// queue is the FIFO of values in flight on one edge of the ring.
type queue []int64

func (q *queue) push(v int64) {
	*q = append(*q, v)
}

func (q *queue) pop() (int64, bool) {
	if len(*q) == 0 {
		return 0, false
	}
	v := (*q)[0]
	*q = (*q)[1:]
	return v, true
}

// RunFeedback wires cooperative instances into a ring where instance i
// feeds instance i+1 and the last feeds the first. Instances are polled
// round robin: each one runs until it blocks on input with nothing queued
// or terminates. A full pass without progress while some instance is still
// live fails with Deadlock.
func RunFeedback(ctx context.Context, image []int64, phases []int64, input int64, opts ...Option) (res *Result, err error) {
	if err := checkTopology(phases); err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "ring.feedback", phases)
	defer func() { finish(span, res, err) }()

	c := newConfig(opts)
	n := len(phases)
	vms := make([]*intcode.VM, n)
	queues := make([]queue, n)
	for i, phase := range phases {
		vm, err := intcode.New(image, c.vmOptions(i, intcode.WithCooperative())...)
		if err != nil {
			return nil, instanceErr(i, err)
		}
		vms[i] = vm
		queues[i].push(phase)
	}
	queues[0].push(input)

	var signal int64
	produced := false
	rounds := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rounds++
		progress := false
		live := 0
		for i, vm := range vms {
			moved, err := step(vm, &queues[i], &queues[(i+1)%n], c.trace, func(v int64) {
				if i == n-1 {
					signal, produced = v, true
				}
			})
			if err != nil {
				return nil, instanceErr(i, err)
			}
			progress = progress || moved
			if vm.State() != intcode.Terminated {
				live++
			}
		}
		if live == 0 {
			break
		}
		if !progress {
			blocked := make([]string, 0, live)
			for i, vm := range vms {
				if vm.State() != intcode.Terminated {
					blocked = append(blocked, fmt.Sprintf("%s@%d", instanceName(i), vm.IP()))
				}
			}
			log.Warn(log.RingModule, "feedback deadlock", "round", rounds, "blocked", blocked)
			return nil, fmt.Errorf("round %d, blocked %v: %w", rounds, blocked, vmerrors.ErrRDeadlock)
		}
	}
	if !produced {
		return nil, instanceErr(n-1, fmt.Errorf("terminated without output"))
	}
	steps := make([]uint64, n)
	for i, vm := range vms {
		steps[i] = vm.Steps()
	}
	log.Debug(log.RingModule, "feedback done", "signal", signal, "rounds", rounds)
	return &Result{Signal: signal, Rounds: rounds, Steps: steps}, nil
}

// step drives vm until it needs input that in does not have, or terminates.
// It reports whether the VM advanced.
func step(vm *intcode.VM, in, out *queue, traced bool, emit func(int64)) (bool, error) {
	moved := false
	for {
		switch vm.State() {
		case intcode.WaitingToRun:
			if err := vm.Run(traced); err != nil {
				return moved, err
			}
		case intcode.BlockedOnInput:
			v, ok := in.pop()
			if !ok {
				return moved, nil
			}
			if err := vm.ProvideInput(v, traced); err != nil {
				return moved, err
			}
		case intcode.BlockedOnOutput:
			v, err := vm.GetOutput(traced)
			if err != nil {
				return moved, err
			}
			out.push(v)
			emit(v)
		case intcode.Terminated:
			return moved, nil
		}
		moved = true
	}
}
