// Package storage persists programs and their run history in LevelDB.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/colorfulnotion/intcode/common"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/program"
)

var ErrNotFound = errors.New("program not found")

// key layout:
//
//	i<hash>           image words, little endian
//	n<name>           hash of the named image
//	r<hash><seq:8>    run record json
const (
	prefixImage = 'i'
	prefixName  = 'n'
	prefixRun   = 'r'
)

func imageKey(h common.Hash) []byte {
	return append([]byte{prefixImage}, h.Bytes()...)
}

func nameKey(name string) []byte {
	return append([]byte{prefixName}, name...)
}

func runPrefix(h common.Hash) []byte {
	return append([]byte{prefixRun}, h.Bytes()...)
}

func runKey(h common.Hash, seq uint64) []byte {
	return binary.BigEndian.AppendUint64(runPrefix(h), seq)
}

// Entry is one named program in the store.
type Entry struct {
	Name  string      `json:"name"`
	Hash  common.Hash `json:"hash"`
	Words int         `json:"words"`
}

// RunRecord summarizes one execution of a stored program.
type RunRecord struct {
	Seq     uint64    `json:"seq"`
	Time    time.Time `json:"time"`
	Inputs  []int64   `json:"inputs,omitempty"`
	Outputs []int64   `json:"outputs,omitempty"`
	Result  int64     `json:"result"`
	Steps   uint64    `json:"steps"`
	State   string    `json:"state"`
	Err     string    `json:"err,omitempty"`
	Commit  string    `json:"commit,omitempty"`
}

// ProgramStore keeps content addressed images under human names.
type ProgramStore struct {
	ps *PersistenceStore
}

func NewProgramStore(ps *PersistenceStore) *ProgramStore {
	return &ProgramStore{ps: ps}
}

// OpenProgramStore opens the LevelDB database at path; an empty path keeps
// everything in memory.
func OpenProgramStore(path string) (*ProgramStore, error) {
	ps, err := NewPersistenceStore(path)
	if err != nil {
		return nil, err
	}
	return NewProgramStore(ps), nil
}

func (s *ProgramStore) Close() error {
	return s.ps.Close()
}

// Put stores p's image and binds p.Name to it, replacing any earlier binding.
func (s *ProgramStore) Put(p *program.Program) (common.Hash, error) {
	if p.Name == "" {
		return common.Hash{}, fmt.Errorf("put: empty name")
	}
	h := p.Hash()
	var b Batch
	b.Put(imageKey(h), common.WordsToBytes(p.Image))
	b.Put(nameKey(p.Name), h.Bytes())
	if err := s.ps.Write(&b); err != nil {
		return common.Hash{}, fmt.Errorf("put %s: %w", p.Name, err)
	}
	log.Debug(log.StoreModule, "program stored", "name", p.Name, "hash", h.String_short(), "words", len(p.Image))
	return h, nil
}

// Resolve maps a name or a 0x-prefixed hash to an image hash.
func (s *ProgramStore) Resolve(ref string) (common.Hash, error) {
	if common.IsHexHash(ref) {
		h := common.HexToHash(ref)
		ok, err := s.ps.Has(imageKey(h))
		if err != nil {
			return common.Hash{}, err
		}
		if !ok {
			return common.Hash{}, fmt.Errorf("%s: %w", ref, ErrNotFound)
		}
		return h, nil
	}
	data, ok, err := s.ps.Get(nameKey(ref))
	if err != nil {
		return common.Hash{}, err
	}
	if !ok {
		return common.Hash{}, fmt.Errorf("%s: %w", ref, ErrNotFound)
	}
	return common.BytesToHash(data), nil
}

// Get loads a program by name or hash.
func (s *ProgramStore) Get(ref string) (*program.Program, error) {
	h, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	data, ok, err := s.ps.Get(imageKey(h))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: image %s: %w", ref, h.String_short(), ErrNotFound)
	}
	return &program.Program{Name: ref, Image: common.BytesToWords(data)}, nil
}

// List returns the named programs ordered by name.
func (s *ProgramStore) List() ([]Entry, error) {
	pairs, err := s.ps.GetWithPrefix([]byte{prefixName})
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(pairs))
	for _, kv := range pairs {
		h := common.BytesToHash(kv[1])
		e := Entry{Name: string(kv[0][1:]), Hash: h}
		if data, ok, err := s.ps.Get(imageKey(h)); err != nil {
			return nil, err
		} else if ok {
			e.Words = len(data) / 8
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Delete removes a name. The image and its runs go with it once no other
// name refers to them.
func (s *ProgramStore) Delete(name string) error {
	if common.IsHexHash(name) {
		return fmt.Errorf("delete %s: refer to programs by name", name)
	}
	h, err := s.Resolve(name)
	if err != nil {
		return err
	}
	entries, err := s.List()
	if err != nil {
		return err
	}
	shared := false
	for _, e := range entries {
		if e.Name != name && e.Hash == h {
			shared = true
			break
		}
	}
	var b Batch
	b.Delete(nameKey(name))
	if !shared {
		b.Delete(imageKey(h))
		runs, err := s.ps.GetWithPrefix(runPrefix(h))
		if err != nil {
			return err
		}
		for _, kv := range runs {
			b.Delete(kv[0])
		}
	}
	log.Debug(log.StoreModule, "program deleted", "name", name, "shared", shared, "writes", b.Len())
	return s.ps.Write(&b)
}

// RecordRun appends r to the history of the image h and returns its
// sequence number.
func (s *ProgramStore) RecordRun(h common.Hash, r RunRecord) (uint64, error) {
	runs, err := s.ps.GetWithPrefix(runPrefix(h))
	if err != nil {
		return 0, err
	}
	r.Seq = 0
	if n := len(runs); n > 0 {
		last := runs[n-1][0]
		r.Seq = binary.BigEndian.Uint64(last[len(last)-8:]) + 1
	}
	if r.Time.IsZero() {
		r.Time = time.Now().UTC()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return 0, err
	}
	if err := s.ps.Put(runKey(h, r.Seq), data); err != nil {
		return 0, err
	}
	return r.Seq, nil
}

// Runs returns the recorded runs of the image h in order.
func (s *ProgramStore) Runs(h common.Hash) ([]RunRecord, error) {
	pairs, err := s.ps.GetWithPrefix(runPrefix(h))
	if err != nil {
		return nil, err
	}
	runs := make([]RunRecord, 0, len(pairs))
	for _, kv := range pairs {
		var r RunRecord
		if err := json.Unmarshal(kv[1], &r); err != nil {
			return nil, fmt.Errorf("run %x: %w", kv[0], err)
		}
		runs = append(runs, r)
	}
	return runs, nil
}
