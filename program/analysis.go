package program

// Stats summarizes a static disassembly.
type Stats struct {
	Words              int            `json:"words"`
	InstructionCount   int            `json:"instructions"`
	DataWords          int            `json:"dataWords"`
	BasicBlockCount    int            `json:"basicBlocks"`
	OpcodeDistribution map[string]int `json:"opcodes"`
}

func Analyze(image []int64) *Stats {
	stats := &Stats{
		Words:              len(image),
		OpcodeDistribution: make(map[string]int),
	}
	lines := Disassemble(image)
	for _, l := range lines {
		if l.Data {
			stats.DataWords++
			continue
		}
		stats.InstructionCount++
		stats.OpcodeDistribution[l.Name]++
	}
	stats.BasicBlockCount = len(Blocks(lines))
	return stats
}
