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

package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Bossman/flip-jump/vm"
)

// buildWordImage creates a tiny image, word-addressed: each entry in words
// is stored at consecutive word indices starting at 0, in a single segment
// large enough to also hold `extra` trailing zero words.
func buildWordImage(t *testing.T, w vm.WordSize, words []uint64, extra uint64) *vm.Memory {
	t.Helper()
	img := vm.NewImage(w)
	img.Data = words
	img.Segments = []vm.Segment{{Start: 0, Length: uint64(len(words)) + extra, DataStart: 0, DataLength: uint64(len(words))}}
	mem, err := vm.NewMemory(img)
	require.NoError(t, err)
	return mem
}

// E4 — immediate self-loop: flip outside the instruction's own two words,
// jump equal to ip, halts with Looping in one step.
func TestE4Looping(t *testing.T) {
	w := vm.Word8
	words := make([]uint64, 4)
	words[0] = 20 // flip bit address 20, outside instr 0's [0,16) span
	words[1] = 0  // jump to bit address 0 == ip
	mem := buildWordImage(t, w, words, 0)
	inst, err := vm.New(mem)
	require.NoError(t, err)
	stats := inst.Run()
	assert.Equal(t, vm.CauseLooping, stats.Cause)
}

// E5 — null IP: jump target below the reserved zero page halts with NullIP.
func TestE5NullIP(t *testing.T) {
	w := vm.Word8
	words := make([]uint64, 2)
	words[0] = 0                // flip its own flip word: harmless
	words[1] = uint64(2*w) - 1  // jump address below 2w
	mem := buildWordImage(t, w, words, 0)
	inst, err := vm.New(mem)
	require.NoError(t, err)
	stats := inst.Run()
	assert.Equal(t, vm.CauseNullIP, stats.Cause)
}

// fixedOutputProgram builds a program that emits the bits of pattern,
// LSB-first, via the OUT/OUT+1 fixed-value addresses, then halts by jumping
// into the reserved zero page. Instruction slot 1 holds the OUT and IN
// words, so the first instruction jumps over it to slot 2.
func fixedOutputProgram(w vm.WordSize, bits []bool) []uint64 {
	out := 2 * uint64(w)
	const first = 2            // first output instruction slot
	n := first + len(bits) + 1 // +1 for the halting instruction
	words := make([]uint64, 2*n)
	instrAddr := func(idx int) uint64 { return uint64(idx) * 2 * uint64(w) }
	words[0] = 0 // flip a bit of its own flip word
	words[1] = instrAddr(first)
	for idx, b := range bits {
		flip := out
		if b {
			flip = out + 1
		}
		words[2*(first+idx)] = flip
		words[2*(first+idx)+1] = instrAddr(first + idx + 1)
	}
	last := first + len(bits)
	words[2*last] = instrAddr(last) // flip a bit of its own flip word
	words[2*last+1] = 1             // jump into the zero page
	return words
}

func TestFixedOutputDeterministic(t *testing.T) {
	run := func() ([]byte, vm.Cause) {
		w := vm.Word8
		bits := []bool{true, false, false, true, false, false, true, false} // 'I' = 0x49 LSB-first: 1,0,0,1,0,0,1,0
		mem := buildWordImage(t, w, fixedOutputProgram(w, bits), 4)
		io := vm.NewStandardIO(nil, nil)
		inst, err := vm.New(mem, vm.WithIO(io))
		require.NoError(t, err)
		stats := inst.Run()
		out, err := io.Output()
		require.NoError(t, err)
		return out, stats.Cause
	}
	out1, cause1 := run()
	out2, cause2 := run()
	assert.Equal(t, out1, out2)
	assert.Equal(t, cause1, cause2)
	assert.Equal(t, []byte{0x49}, out1)
	assert.Equal(t, vm.CauseNullIP, cause1)
}

func TestIncompleteOutput(t *testing.T) {
	io := vm.NewStandardIO(nil, nil)
	io.WriteBit(true)
	_, err := io.Output()
	require.Error(t, err)
}

func TestReadBitEOF(t *testing.T) {
	io := vm.NewStandardIO(nil, nil)
	_, err := io.ReadBit()
	require.Error(t, err)
}
