package ring

import (
	"context"
	"fmt"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/vmerrors"
	"golang.org/x/sync/errgroup"
)

// RunConcurrent runs the feedback ring with one goroutine per instance in
// blocking mode, connected by channels. An instance waiting on a finished
// upstream with nothing left to read fails with Deadlock; a ring where every
// instance waits on a live upstream only ends through ctx.
func RunConcurrent(ctx context.Context, image []int64, phases []int64, input int64, opts ...Option) (res *Result, err error) {
	if err := checkTopology(phases); err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "ring.concurrent", phases)
	defer func() { finish(span, res, err) }()

	c := newConfig(opts)
	n := len(phases)
	edges := make([]chan int64, n)
	done := make([]chan struct{}, n)
	for i := range edges {
		edges[i] = make(chan int64, 1)
		done[i] = make(chan struct{})
	}
	edges[0] <- input

	g, gctx := errgroup.WithContext(ctx)
	steps := make([]uint64, n)
	var signal int64
	produced := false
	for i, phase := range phases {
		next := (i + 1) % n
		prev := (i + n - 1) % n
		in := receiver(gctx, phase, edges[i], done[prev])
		out := func(v int64) error {
			if i == n-1 {
				signal, produced = v, true
			}
			select {
			case edges[next] <- v:
			case <-done[next]:
				log.Trace(log.RingModule, "dropping output to finished instance", "from", i, "value", v)
			case <-gctx.Done():
				return gctx.Err()
			}
			return nil
		}
		vm, err := intcode.New(image, c.vmOptions(i, intcode.WithIO(in, out))...)
		if err != nil {
			return nil, instanceErr(i, err)
		}
		g.Go(func() error {
			defer close(done[i])
			err := vm.Run(c.trace)
			steps[i] = vm.Steps()
			if err != nil {
				return instanceErr(i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error(log.RingModule, "concurrent ring failed", "instances", n, "err", err)
		return nil, err
	}
	if !produced {
		return nil, instanceErr(n-1, fmt.Errorf("terminated without output"))
	}
	return &Result{Signal: signal, Rounds: 1, Steps: steps}, nil
}

// receiver yields phase first, then values from edge.
func receiver(ctx context.Context, phase int64, edge <-chan int64, upstreamDone <-chan struct{}) intcode.InputFunc {
	phased := false
	return func() (int64, error) {
		if !phased {
			phased = true
			return phase, nil
		}
		select {
		case v := <-edge:
			return v, nil
		case <-upstreamDone:
			// the upstream may have sent its last value before finishing
			select {
			case v := <-edge:
				return v, nil
			default:
				return 0, fmt.Errorf("upstream finished: %w", vmerrors.ErrRDeadlock)
			}
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}
