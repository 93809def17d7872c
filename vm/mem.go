// This file is part of flip-jump - https://github.com/Mr-Bossman/flip-jump
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vm

import (
	"log"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// EagerZeroThreshold is the tunable boundary (in words) below which a
// segment's implicit zero tail is materialized eagerly into the word map,
// and above which it is recorded as a lazy zero-range instead.
const EagerZeroThreshold = 1000

// GarbagePolicy controls how Memory.Word behaves when asked to read a word
// address that falls inside the addressable range but outside every segment
// (a "hole" between segments).
type GarbagePolicy int

// Garbage-read policies.
const (
	// GarbageStop fails the read with ErrGarbageRead.
	GarbageStop GarbagePolicy = iota
	// GarbageOnlyWarning logs the read and returns 0.
	GarbageOnlyWarning
	// GarbageSlowRead logs the read, sleeps briefly, and returns 0.
	GarbageSlowRead
	// GarbageContinue silently returns 0.
	GarbageContinue
)

type zeroRange struct{ lo, hi uint64 } // [lo, hi)

type coverage struct{ lo, hi uint64 } // [lo, hi), segment address range

// Memory is a sparse, word-addressed view of an assembled program, as
// constructed by NewMemory. Reads of a word not covered by any segment are
// served according to the configured GarbagePolicy; reads past the highest
// segment's end fail with ErrEndOfMemory. Writes always materialize their
// target word, per the garbage-read Continue semantics: once read or
// written, an address behaves like a normal mapped word from then on.
type Memory struct {
	wordSize   WordSize
	words      map[uint64]uint64
	zeroRanges []zeroRange
	covered    []coverage
	maxIndex   uint64 // highest in-bounds word index (inclusive); 0 if no segments
	hasSegs    bool
	policy     GarbagePolicy
	logger     *log.Logger
	slowDelay  time.Duration
}

// MemoryOption configures a Memory constructed by NewMemory.
type MemoryOption func(*Memory)

// WithGarbagePolicy sets the policy for reads of unmapped, in-bounds
// addresses. Defaults to GarbageStop.
func WithGarbagePolicy(p GarbagePolicy) MemoryOption {
	return func(m *Memory) { m.policy = p }
}

// WithLogger sets the logger used by GarbageOnlyWarning/GarbageSlowRead.
// Defaults to a logger writing to os.Stderr.
func WithLogger(l *log.Logger) MemoryOption {
	return func(m *Memory) { m.logger = l }
}

// WithSlowReadDelay overrides the artificial delay used by GarbageSlowRead.
// Defaults to one millisecond.
func WithSlowReadDelay(d time.Duration) MemoryOption {
	return func(m *Memory) { m.slowDelay = d }
}

// NewMemory builds a sparse Memory from an assembled Image.
func NewMemory(img *Image, opts ...MemoryOption) (*Memory, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	m := &Memory{
		wordSize:  img.WordSize,
		words:     make(map[uint64]uint64),
		logger:    log.New(os.Stderr, "", 0),
		slowDelay: time.Millisecond,
	}
	for _, s := range img.Segments {
		m.hasSegs = true
		if end := s.end(); end > 0 && end-1 > m.maxIndex {
			m.maxIndex = end - 1
		}
		m.covered = append(m.covered, coverage{s.Start, s.end()})
		for i := uint64(0); i < s.DataLength; i++ {
			m.words[s.Start+i] = img.Data[s.DataStart+i] & m.wordSize.Mask()
		}
		gap := s.Length - s.DataLength
		if gap == 0 {
			continue
		}
		lo, hi := s.Start+s.DataLength, s.end()
		if gap < EagerZeroThreshold {
			for i := lo; i < hi; i++ {
				m.words[i] = 0
			}
		} else {
			m.zeroRanges = append(m.zeroRanges, zeroRange{lo, hi})
		}
	}
	sort.Slice(m.covered, func(i, j int) bool { return m.covered[i].lo < m.covered[j].lo })
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Memory) inZeroRange(idx uint64) bool {
	for _, r := range m.zeroRanges {
		if idx >= r.lo && idx < r.hi {
			return true
		}
	}
	return false
}

func (m *Memory) inCoveredRange(idx uint64) bool {
	i := sort.Search(len(m.covered), func(i int) bool { return m.covered[i].hi > idx })
	return i < len(m.covered) && m.covered[i].lo <= idx
}

// WordSize returns the image word size this memory was built from.
func (m *Memory) WordSize() WordSize { return m.wordSize }

// Word reads the word at word index idx, applying the garbage policy for
// unmapped, in-bounds holes and failing with ErrEndOfMemory beyond the last
// segment.
func (m *Memory) Word(idx uint64) (uint64, error) {
	if v, ok := m.words[idx]; ok {
		return v, nil
	}
	if !m.hasSegs || idx > m.maxIndex {
		return 0, errors.Wrapf(ErrEndOfMemory, "word %d", idx)
	}
	if m.inZeroRange(idx) {
		return 0, nil
	}
	if m.inCoveredRange(idx) {
		// NewMemory puts every covered word either in the map or in a lazy
		// zero range, so this branch is defensive: a covered word missing
		// from both reads as zero without consulting the garbage policy.
		return 0, nil
	}
	// Hole between segments: apply garbage policy, then materialize.
	switch m.policy {
	case GarbageStop:
		return 0, errors.Wrapf(ErrGarbageRead, "word %d", idx)
	case GarbageOnlyWarning:
		m.logger.Printf("flipjump: garbage read at word %d", idx)
	case GarbageSlowRead:
		m.logger.Printf("flipjump: garbage read at word %d (slow)", idx)
		time.Sleep(m.slowDelay)
	case GarbageContinue:
	}
	m.words[idx] = 0
	return 0, nil
}

// WriteWord stores value (masked to the word size) at word index idx. Writes
// always materialize their target, regardless of garbage policy.
func (m *Memory) WriteWord(idx uint64, value uint64) error {
	if m.hasSegs && idx > m.maxIndex {
		return errors.Wrapf(ErrEndOfMemory, "word %d", idx)
	}
	m.words[idx] = value & m.wordSize.Mask()
	return nil
}

// ReadBit returns the bit at bit-address bitAddr.
func (m *Memory) ReadBit(bitAddr uint64) (bool, error) {
	idx := m.wordSize.WordIndex(bitAddr)
	w, err := m.Word(idx)
	if err != nil {
		return false, err
	}
	return (w>>m.wordSize.BitOffset(bitAddr))&1 != 0, nil
}

// WriteBit sets (or clears) the bit at bit-address bitAddr.
func (m *Memory) WriteBit(bitAddr uint64, v bool) error {
	idx := m.wordSize.WordIndex(bitAddr)
	w, ok := m.words[idx]
	if !ok {
		var err error
		w, err = m.wordForWrite(idx)
		if err != nil {
			return err
		}
	}
	bit := m.wordSize.BitOffset(bitAddr)
	if v {
		w |= uint64(1) << bit
	} else {
		w &^= uint64(1) << bit
	}
	return m.WriteWord(idx, w)
}

// wordForWrite reads idx for the purpose of a read-modify-write bit flip,
// materializing zero-filled holes without consulting the garbage policy
// (writes never fail due to GarbageStop).
func (m *Memory) wordForWrite(idx uint64) (uint64, error) {
	if v, ok := m.words[idx]; ok {
		return v, nil
	}
	if m.hasSegs && idx > m.maxIndex {
		return 0, errors.Wrapf(ErrEndOfMemory, "word %d", idx)
	}
	return 0, nil
}

// GetWord implements the interpreter's get_word: reads the w-bit word
// starting at bit-address bitAddr, which need not be word-aligned.
func (m *Memory) GetWord(bitAddr uint64) (uint64, error) {
	if m.wordSize.Aligned(bitAddr) {
		return m.Word(m.wordSize.WordIndex(bitAddr))
	}
	idx := m.wordSize.WordIndex(bitAddr)
	bit := m.wordSize.BitOffset(bitAddr)
	lo, err := m.Word(idx)
	if err != nil {
		return 0, err
	}
	hi, err := m.Word(idx + 1)
	if err != nil {
		return 0, err
	}
	mask := m.wordSize.Mask()
	v := (lo >> bit) | (hi << (uint64(m.wordSize) - uint64(bit)))
	return v & mask, nil
}

// MaxIndex returns the highest in-bounds word index.
func (m *Memory) MaxIndex() uint64 { return m.maxIndex }
