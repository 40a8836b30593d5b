package intcode

import (
	"fmt"
	"math"

	"github.com/colorfulnotion/intcode/vmerrors"
)

// WordWidth is the signed width of every memory cell and register.
// Early programs were written against 32-bit words; relative-base programs
// need 64.
type WordWidth uint8

const (
	Width32 WordWidth = 32
	Width64 WordWidth = 64
)

func (w WordWidth) valid() bool {
	return w == Width32 || w == Width64
}

func (w WordWidth) bounds() (lo, hi int64) {
	if w == Width32 {
		return math.MinInt32, math.MaxInt32
	}
	return math.MinInt64, math.MaxInt64
}

// check fails with Overflow when v is not representable in w.
func (w WordWidth) check(v int64) error {
	lo, hi := w.bounds()
	if v < lo || v > hi {
		return fmt.Errorf("%d exceeds %d-bit word: %w", v, w, vmerrors.ErrVOverflow)
	}
	return nil
}

func (w WordWidth) add(a, b int64) (int64, error) {
	s := a + b
	if (a > 0 && b > 0 && s < 0) || (a < 0 && b < 0 && s >= 0) {
		return 0, fmt.Errorf("%d + %d: %w", a, b, vmerrors.ErrVOverflow)
	}
	if err := w.check(s); err != nil {
		return 0, fmt.Errorf("%d + %d: %w", a, b, err)
	}
	return s, nil
}

func (w WordWidth) mul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	p := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || p/b != a {
		return 0, fmt.Errorf("%d * %d: %w", a, b, vmerrors.ErrVOverflow)
	}
	if err := w.check(p); err != nil {
		return 0, fmt.Errorf("%d * %d: %w", a, b, err)
	}
	return p, nil
}
