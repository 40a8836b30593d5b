package program

import (
	"fmt"
	"sort"
	"strings"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/xlab/treeprint"
)

// Line is one disassembled instruction, or a single data word when the
// word at Addr does not decode.
type Line struct {
	Addr   int64          `json:"addr"`
	Words  []int64        `json:"words"`
	Opcode intcode.Opcode `json:"opcode"`
	Name   string         `json:"name"`
	Modes  []intcode.Mode `json:"modes,omitempty"`
	Args   string         `json:"args,omitempty"`
	Data   bool           `json:"data,omitempty"`
}

// Width is the number of cells the line covers.
func (l Line) Width() int64 {
	return int64(len(l.Words))
}

// Target returns the static jump target of a jt/jf whose target parameter
// is immediate.
func (l Line) Target() (int64, bool) {
	if l.Data || (l.Opcode != intcode.JUMP_IF_TRUE && l.Opcode != intcode.JUMP_IF_FALSE) {
		return 0, false
	}
	if len(l.Words) < 3 || modeAt(l.Modes, 1) != intcode.Immediate {
		return 0, false
	}
	return l.Words[2], true
}

// endsBlock reports whether control may leave the line other than by
// falling through.
func (l Line) endsBlock() bool {
	if l.Data {
		return false
	}
	info, _ := intcode.Info(l.Opcode)
	return info.Branch || info.Halts
}

func (l Line) String() string {
	raw := make([]string, len(l.Words))
	for i, w := range l.Words {
		raw[i] = fmt.Sprint(w)
	}
	return fmt.Sprintf("%4d: %-5s %-36s ; %s", l.Addr, l.Name, l.Args, strings.Join(raw, ","))
}

// Disassemble sweeps the image linearly from address 0. Intcode freely mixes
// code and data, so undecodable words are emitted as data and the sweep
// resumes at the next word.
func Disassemble(image []int64) []Line {
	var lines []Line
	for addr := int64(0); addr < int64(len(image)); {
		line := decodeLine(image, addr)
		lines = append(lines, line)
		addr += line.Width()
	}
	return lines
}

func decodeLine(image []int64, addr int64) Line {
	word := image[addr]
	data := Line{Addr: addr, Words: []int64{word}, Name: "data", Args: fmt.Sprint(word), Data: true}
	in, err := intcode.Decode(word)
	if err != nil {
		return data
	}
	info, _ := intcode.Info(in.Opcode)
	if len(in.Modes) > info.Params {
		return data
	}
	end := addr + int64(info.Width())
	if end > int64(len(image)) {
		return data
	}
	args := make([]string, info.Params)
	for i := 0; i < info.Params; i++ {
		lit := image[addr+1+int64(i)]
		mode := in.Mode(i)
		if i == info.Dest && mode == intcode.Immediate {
			return data
		}
		args[i] = formatArg(mode, lit)
	}
	if info.Dest >= 0 {
		args[info.Dest] = "-> " + args[info.Dest]
	}
	modes := make([]intcode.Mode, info.Params)
	for i := range modes {
		modes[i] = in.Mode(i)
	}
	return Line{
		Addr:   addr,
		Words:  append([]int64(nil), image[addr:end]...),
		Opcode: in.Opcode,
		Name:   info.Name,
		Modes:  modes,
		Args:   strings.Join(args, " "),
	}
}

func formatArg(mode intcode.Mode, lit int64) string {
	switch mode {
	case intcode.Immediate:
		return fmt.Sprintf("#%d", lit)
	case intcode.Relative:
		return fmt.Sprintf("rb%+d", lit)
	default:
		return fmt.Sprintf("[%d]", lit)
	}
}

func modeAt(modes []intcode.Mode, i int) intcode.Mode {
	if i < len(modes) {
		return modes[i]
	}
	return intcode.Position
}

// Block is a maximal straight-line run of lines.
type Block struct {
	Start int64
	Lines []Line
	// Successors are the addresses control can reach statically.
	Successors []int64
}

func (b *Block) End() int64 {
	last := b.Lines[len(b.Lines)-1]
	return last.Addr + last.Width()
}

// Blocks splits a disassembly at branch instructions and at static jump
// targets.
func Blocks(lines []Line) []*Block {
	leaders := map[int64]bool{}
	if len(lines) > 0 {
		leaders[lines[0].Addr] = true
	}
	for i, l := range lines {
		if t, ok := l.Target(); ok {
			leaders[t] = true
		}
		if l.endsBlock() && i+1 < len(lines) {
			leaders[lines[i+1].Addr] = true
		}
	}

	var blocks []*Block
	var cur *Block
	for _, l := range lines {
		if leaders[l.Addr] || cur == nil {
			cur = &Block{Start: l.Addr}
			blocks = append(blocks, cur)
		}
		cur.Lines = append(cur.Lines, l)
	}
	for _, b := range blocks {
		last := b.Lines[len(b.Lines)-1]
		if last.Data {
			continue
		}
		info, _ := intcode.Info(last.Opcode)
		if info.Halts {
			continue
		}
		if t, ok := last.Target(); ok {
			b.Successors = append(b.Successors, t)
		}
		if !info.Branch || isConditional(last) {
			b.Successors = append(b.Successors, b.End())
		}
		sort.Slice(b.Successors, func(i, j int) bool { return b.Successors[i] < b.Successors[j] })
	}
	return blocks
}

// isConditional is false for jt/jf whose condition is an immediate constant,
// which compilers emit as unconditional jumps.
func isConditional(l Line) bool {
	if modeAt(l.Modes, 0) != intcode.Immediate {
		return true
	}
	cond := l.Words[1]
	if l.Opcode == intcode.JUMP_IF_TRUE {
		return cond == 0
	}
	return cond != 0
}

// Tree renders blocks with their lines and successors.
func Tree(name string, blocks []*Block) treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("%s: %d blocks", name, len(blocks)))
	for _, b := range blocks {
		branch := tree.AddBranch(fmt.Sprintf("block %04d-%04d", b.Start, b.End()-1))
		for _, l := range b.Lines {
			branch.AddNode(strings.TrimSpace(fmt.Sprintf("%04d %-5s %s", l.Addr, l.Name, l.Args)))
		}
		if len(b.Successors) > 0 {
			succ := make([]string, len(b.Successors))
			for i, s := range b.Successors {
				succ[i] = fmt.Sprintf("%04d", s)
			}
			branch.AddMetaNode("next", strings.Join(succ, " "))
		}
	}
	return tree
}

// DisassembleToString returns a formatted listing of the image.
func DisassembleToString(image []int64) string {
	lines := Disassemble(image)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("; %d words, %d lines\n", len(image), len(lines)))
	for _, l := range lines {
		sb.WriteString(l.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
