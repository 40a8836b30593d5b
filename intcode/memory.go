package intcode

import (
	"fmt"

	"github.com/colorfulnotion/intcode/vmerrors"
)

// DefaultMemoryLimit bounds growth to 16Mi cells (128 MiB).
const DefaultMemoryLimit = 1 << 24

// Memory is a flat, zero-filled, growable store of cells.
// Reads past the end return 0 without allocating; writes past the end
// extend the store so the address becomes valid.
type Memory struct {
	cells []int64
	limit int64
}

// NewMemory copies image into a fresh store.
func NewMemory(image []int64, limit int64) *Memory {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	cells := make([]int64, len(image))
	copy(cells, image)
	return &Memory{cells: cells, limit: limit}
}

func (m *Memory) Read(addr int64) (int64, error) {
	if addr < 0 {
		return 0, fmt.Errorf("read %d: %w", addr, vmerrors.ErrVNegativeAddress)
	}
	if addr >= int64(len(m.cells)) {
		return 0, nil
	}
	return m.cells[addr], nil
}

func (m *Memory) Write(addr int64, value int64) error {
	if addr < 0 {
		return fmt.Errorf("write %d: %w", addr, vmerrors.ErrVNegativeAddress)
	}
	if n := int64(len(m.cells)); addr >= n {
		if addr >= m.limit {
			return fmt.Errorf("write %d (limit %d): %w", addr, m.limit, vmerrors.ErrVMemoryLimit)
		}
		m.cells = append(m.cells, make([]int64, addr+1-n)...)
	}
	m.cells[addr] = value
	return nil
}

// Len is the number of addressable cells currently backed by storage.
func (m *Memory) Len() int {
	return len(m.cells)
}

// Snapshot returns a copy of the backed cells.
func (m *Memory) Snapshot() []int64 {
	out := make([]int64, len(m.cells))
	copy(out, m.cells)
	return out
}
