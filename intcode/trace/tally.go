package trace

import (
	"sort"
	"sync"
)

// Tally counts executed instructions per opcode.
type Tally struct {
	mu     sync.Mutex
	counts map[string]uint64
	total  uint64
}

type TallyEntry struct {
	Opcode string  `json:"opcode"`
	Count  uint64  `json:"count"`
	Share  float64 `json:"share"`
}

func NewTally() *Tally {
	return &Tally{counts: make(map[string]uint64)}
}

func (t *Tally) WriteStep(step *Step) error {
	// suspended steps are counted once the driver resumes them
	if step.PostState == "BlockedOnInput" || step.PostState == "BlockedOnOutput" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[step.OpcodeStr]++
	t.total++
	return nil
}

func (t *Tally) Total() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

func (t *Tally) Count(opcode string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[opcode]
}

// Entries returns the counts ordered by descending count, then name.
func (t *Tally) Entries() []TallyEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	entries := make([]TallyEntry, 0, len(t.counts))
	for op, c := range t.counts {
		e := TallyEntry{Opcode: op, Count: c}
		if t.total > 0 {
			e.Share = float64(c) / float64(t.total)
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Opcode < entries[j].Opcode
	})
	return entries
}
