package intcode

import (
	"fmt"

	"github.com/colorfulnotion/intcode/vmerrors"
)

// Mode is a per-parameter addressing mode.
type Mode uint8

const (
	Position  Mode = 0
	Immediate Mode = 1
	Relative  Mode = 2
)

func (m Mode) String() string {
	switch m {
	case Position:
		return "position"
	case Immediate:
		return "immediate"
	case Relative:
		return "relative"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// maxModes is the most mode digits a 64-bit word can carry after the
// two opcode digits.
const maxModes = 17

// Instruction is one decoded instruction word.
type Instruction struct {
	Word   int64
	Opcode Opcode
	Modes  []Mode
}

// Mode returns the mode of the i-th parameter (0-based); digits not present
// in the word default to Position.
func (in Instruction) Mode(i int) Mode {
	if i < len(in.Modes) {
		return in.Modes[i]
	}
	return Position
}

// Decode splits word into its opcode and parameter modes.
func Decode(word int64) (Instruction, error) {
	var in Instruction
	if err := decodeInto(word, &in, nil); err != nil {
		return Instruction{}, err
	}
	return in, nil
}

// decodeInto reuses buf for the mode list so the dispatch loop does not
// allocate per instruction.
func decodeInto(word int64, in *Instruction, buf []Mode) error {
	if word < 0 {
		return fmt.Errorf("word %d: %w", word, vmerrors.ErrVInvalidOpcode)
	}
	op := Opcode(word % 100)
	if _, ok := lookup(op); !ok {
		return fmt.Errorf("opcode %d in word %d: %w", op, word, vmerrors.ErrVInvalidOpcode)
	}
	modes := buf[:0]
	for rest := word / 100; rest > 0; rest /= 10 {
		m := Mode(rest % 10)
		if m > Relative {
			return fmt.Errorf("mode digit %d in word %d: %w", m, word, vmerrors.ErrVInvalidParameterMode)
		}
		modes = append(modes, m)
	}
	in.Word = word
	in.Opcode = op
	in.Modes = modes
	return nil
}
