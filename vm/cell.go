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
	"math/bits"

	"github.com/pkg/errors"
)

// WordSize is the bit width of a single FlipJump word. It is selected once,
// before assembly, and is fixed for the lifetime of an Image.
type WordSize uint8

// Supported word sizes.
const (
	Word8  WordSize = 8
	Word16 WordSize = 16
	Word32 WordSize = 32
	Word64 WordSize = 64
)

// Valid reports whether w is one of the four supported word sizes.
func (w WordSize) Valid() bool {
	switch w {
	case Word8, Word16, Word32, Word64:
		return true
	}
	return false
}

// Log2 returns log2(w): the number of low bits of a bit-address that select
// a position within a word.
func (w WordSize) Log2() uint {
	return uint(bits.Len(uint(w)) - 1)
}

// Mask returns a mask with the low w bits set, used to wrap arithmetic to
// two's-complement w-bit words.
func (w WordSize) Mask() uint64 {
	if w == 64 {
		return ^uint64(0)
	}
	return uint64(1)<<uint(w) - 1
}

// WordIndex returns the word index containing bit address bitAddr.
func (w WordSize) WordIndex(bitAddr uint64) uint64 {
	return bitAddr >> w.Log2()
}

// BitAddress returns the bit address of bit bitInWord of word index.
func (w WordSize) BitAddress(index uint64, bitInWord uint) uint64 {
	return index<<w.Log2() | uint64(bitInWord)
}

// BitOffset returns the bit position within its word of bitAddr.
func (w WordSize) BitOffset(bitAddr uint64) uint {
	return uint(bitAddr & (uint64(w) - 1))
}

// Aligned reports whether bitAddr falls on a word boundary.
func (w WordSize) Aligned(bitAddr uint64) bool {
	return w.BitOffset(bitAddr) == 0
}

// BitLen returns the position of the highest set bit of v, 1-indexed,
// matching the `#` operator of the expression language: BitLen(0) == 0.
func BitLen(v int64) int64 {
	var u uint64
	if v < 0 {
		u = uint64(-v)
	} else {
		u = uint64(v)
	}
	return int64(bits.Len64(u))
}

// ErrWordSize is returned when a word size outside {8,16,32,64} is requested.
var ErrWordSize = errors.New("unsupported word size")

// ParseWordSize validates an integer word size and returns the WordSize.
func ParseWordSize(n int) (WordSize, error) {
	w := WordSize(n)
	if !w.Valid() {
		return 0, errors.Wrapf(ErrWordSize, "%d bits", n)
	}
	return w, nil
}
