// Package profile collects execution counts from trace steps and renders
// them as charts.
package profile

import (
	"sort"
	"sync"

	"github.com/colorfulnotion/intcode/intcode/trace"
)

// Profiler is a trace.Tracer counting executions per opcode and per
// instruction address.
type Profiler struct {
	*trace.Tally
	mu     sync.Mutex
	byAddr map[int64]uint64
}

func New() *Profiler {
	return &Profiler{Tally: trace.NewTally(), byAddr: make(map[int64]uint64)}
}

func (p *Profiler) WriteStep(step *trace.Step) error {
	if step.PostState == "BlockedOnInput" || step.PostState == "BlockedOnOutput" {
		return nil
	}
	p.mu.Lock()
	p.byAddr[step.IP]++
	p.mu.Unlock()
	return p.Tally.WriteStep(step)
}

// Hot is the execution count of one instruction address.
type Hot struct {
	Addr  int64
	Count uint64
}

// HotSpots returns the n most executed addresses, busiest first.
func (p *Profiler) HotSpots(n int) []Hot {
	p.mu.Lock()
	defer p.mu.Unlock()
	hot := make([]Hot, 0, len(p.byAddr))
	for a, c := range p.byAddr {
		hot = append(hot, Hot{Addr: a, Count: c})
	}
	sort.Slice(hot, func(i, j int) bool {
		if hot[i].Count != hot[j].Count {
			return hot[i].Count > hot[j].Count
		}
		return hot[i].Addr < hot[j].Addr
	})
	if n > 0 && len(hot) > n {
		hot = hot[:n]
	}
	return hot
}

// AddrCount returns how often the instruction at addr executed.
func (p *Profiler) AddrCount(addr int64) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.byAddr[addr]
}
