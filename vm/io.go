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
	"io"

	"github.com/pkg/errors"

	"github.com/Mr-Bossman/flip-jump/internal/fji"
)

// IOAdapter is the bit-level I/O boundary consumed by the interpreter. Bytes
// are assembled LSB-first: the first bit read or written is bit 0 of the
// byte.
type IOAdapter interface {
	// ReadBit returns the next input bit, or ErrEndOfInput when exhausted.
	ReadBit() (bool, error)
	// WriteBit records an output bit. It never fails.
	WriteBit(bit bool)
	// Output returns the bytes written so far. It fails with
	// ErrIncompleteOutput if the output bit count is not a multiple of 8.
	Output() ([]byte, error)
}

// StandardIO is an IOAdapter backed by a byte-oriented io.Reader and
// io.Writer, modeled on the teacher's runeReader/runeWriter wrappers but
// operating at bit granularity with LSB-first packing, per spec.
type StandardIO struct {
	r io.Reader
	w *fji.ErrWriter

	inByte [1]byte
	inBits int // valid bits remaining in inByte[0], LSB first

	outByte byte
	outBits int
	output  []byte
}

// NewStandardIO returns an IOAdapter that reads input bits from r (nil for
// no input) and streams completed output bytes to w (nil to only buffer
// them for Output).
func NewStandardIO(r io.Reader, w io.Writer) *StandardIO {
	var ew *fji.ErrWriter
	if w != nil {
		ew = fji.NewErrWriter(w)
	}
	return &StandardIO{r: r, w: ew}
}

// WriteErr returns the first error encountered writing to the underlying
// writer, if any. It should be checked once after a run completes.
func (s *StandardIO) WriteErr() error {
	if s.w == nil {
		return nil
	}
	return s.w.Err
}

// ReadBit implements IOAdapter.
func (s *StandardIO) ReadBit() (bool, error) {
	if s.inBits == 0 {
		if s.r == nil {
			return false, ErrEndOfInput
		}
		n, err := s.r.Read(s.inByte[:])
		if n == 0 {
			if err == nil {
				err = io.EOF
			}
			return false, errors.Wrap(ErrEndOfInput, err.Error())
		}
		s.inBits = 8
	}
	bit := s.inByte[0]&1 != 0
	s.inByte[0] >>= 1
	s.inBits--
	return bit, nil
}

// WriteBit implements IOAdapter.
func (s *StandardIO) WriteBit(bit bool) {
	if bit {
		s.outByte |= 1 << uint(s.outBits)
	}
	s.outBits++
	if s.outBits == 8 {
		s.output = append(s.output, s.outByte)
		if s.w != nil {
			s.w.Write([]byte{s.outByte}) //nolint:errcheck // surfaced via WriteErr
		}
		s.outByte = 0
		s.outBits = 0
	}
}

// Output implements IOAdapter.
func (s *StandardIO) Output() ([]byte, error) {
	if s.outBits != 0 {
		return nil, ErrIncompleteOutput
	}
	return s.output, nil
}
