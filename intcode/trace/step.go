package trace

import (
	"fmt"
	"strings"
)

// Tracer receives one Step per dispatched instruction.
type Tracer interface {
	WriteStep(step *Step) error
}

// Operand is one resolved instruction parameter.
type Operand struct {
	Mode    string `json:"mode"`
	Literal int64  `json:"literal"`
	Address *int64 `json:"address,omitempty"` // position and relative modes
	Value   *int64 `json:"value,omitempty"`   // source parameters only
	Dest    bool   `json:"dest,omitempty"`
}

type Step struct {
	Seq          uint64    `json:"seq"`
	IP           int64     `json:"ip"`
	Word         int64     `json:"word"`
	Opcode       int64     `json:"opcode"`
	OpcodeStr    string    `json:"opcodeStr,omitempty"`
	Operands     []Operand `json:"operands,omitempty"`
	Result       *int64    `json:"result,omitempty"`
	Jump         *int64    `json:"jump,omitempty"`
	RelativeBase int64     `json:"relativeBase"`
	PostState    string    `json:"postState,omitempty"`
	Text         string    `json:"text,omitempty"`
}

func NewStep(seq uint64, ip int64, word int64, opcode int64, opcodeStr string) *Step {
	return &Step{
		Seq:       seq,
		IP:        ip,
		Word:      word,
		Opcode:    opcode,
		OpcodeStr: opcodeStr,
	}
}

func (s *Step) AddSource(mode string, literal int64, address *int64, value int64) {
	s.Operands = append(s.Operands, Operand{Mode: mode, Literal: literal, Address: copyPtr(address), Value: &value})
}

func (s *Step) AddDest(mode string, literal int64, address int64) {
	s.Operands = append(s.Operands, Operand{Mode: mode, Literal: literal, Address: &address, Dest: true})
}

func (s *Step) SetResult(v int64) {
	s.Result = &v
}

func (s *Step) SetJump(target int64) {
	s.Jump = &target
}

func (s *Step) SetPostState(state string) {
	s.PostState = state
}

// Describe renders the step as a single human readable line, e.g.
//
//	0004 add   [100]=3 #5 -> [101] = 8
func (s *Step) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%04d %-5s", s.IP, s.OpcodeStr)
	var dest *Operand
	for i := range s.Operands {
		op := &s.Operands[i]
		if op.Dest {
			dest = op
			continue
		}
		b.WriteByte(' ')
		b.WriteString(op.String())
	}
	if dest != nil {
		fmt.Fprintf(&b, " -> %s", dest.String())
	}
	if s.Result != nil {
		fmt.Fprintf(&b, " = %d", *s.Result)
	}
	if s.Jump != nil {
		fmt.Fprintf(&b, " jump %04d", *s.Jump)
	}
	// only suspensions carry their post state
	switch s.PostState {
	case "BlockedOnInput", "BlockedOnOutput":
		fmt.Fprintf(&b, " (%s)", s.PostState)
	}
	return strings.TrimRight(b.String(), " ")
}

// String formats the operand as #lit (immediate), [addr] (position) or
// rb+lit[addr] (relative), followed by =value for sources.
func (o Operand) String() string {
	var s string
	switch o.Mode {
	case "immediate":
		s = fmt.Sprintf("#%d", o.Literal)
	case "relative":
		if o.Address != nil {
			s = fmt.Sprintf("rb%+d[%d]", o.Literal, *o.Address)
		} else {
			s = fmt.Sprintf("rb%+d", o.Literal)
		}
	default:
		s = fmt.Sprintf("[%d]", o.Literal)
	}
	if o.Value != nil && o.Mode != "immediate" {
		s += fmt.Sprintf("=%d", *o.Value)
	}
	return s
}

func copyPtr(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
