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

import "github.com/pkg/errors"

// Sentinel errors, wrapped with context via github.com/pkg/errors at each
// call site. Use errors.Cause to recover the sentinel.
var (
	// ErrFileFormat covers magic/version/reserved mismatches and truncated
	// image files.
	ErrFileFormat = errors.New("invalid flipjump image")

	// ErrSegmentOverlap is returned when two segments' address ranges
	// intersect.
	ErrSegmentOverlap = errors.New("segments overlap")

	// ErrEndOfMemory is returned when get_word reads past the last valid
	// word index of the image.
	ErrEndOfMemory = errors.New("read past end of memory")

	// ErrGarbageRead is returned by the Stop garbage policy when reading an
	// address not covered by any segment.
	ErrGarbageRead = errors.New("read of unmapped memory")

	// ErrEndOfInput is returned by an IOAdapter when no more input bits are
	// available.
	ErrEndOfInput = errors.New("end of input")

	// ErrIncompleteOutput is returned by IOAdapter.Output when the
	// accumulated output bit count is not a multiple of 8.
	ErrIncompleteOutput = errors.New("incomplete output: bit count not a multiple of 8")
)

// Cause enumerates why an interpreter run stopped. It is distinct from the
// Go errors above: Looping, NullIP, EOF and Breakpoint are expected,
// non-error terminations.
type Cause int

// Termination causes.
const (
	// CauseRunning means the run has not terminated (only seen internally).
	CauseRunning Cause = iota
	// CauseLooping: the instruction's flip fell outside its own two words
	// and its jump target equals the instruction pointer itself.
	CauseLooping
	// CauseNullIP: the jump address fell in the reserved zero page.
	CauseNullIP
	// CauseEOF: the input adapter reached a clean end of input.
	CauseEOF
	// CauseBreakpoint: a breakpoint hook asked execution to stop.
	CauseBreakpoint
	// CauseError: an unexpected error terminated the run; see
	// TerminationStatistics.Err.
	CauseError
)

func (c Cause) String() string {
	switch c {
	case CauseRunning:
		return "running"
	case CauseLooping:
		return "looping"
	case CauseNullIP:
		return "null-ip"
	case CauseEOF:
		return "eof"
	case CauseBreakpoint:
		return "breakpoint"
	case CauseError:
		return "error"
	default:
		return "unknown"
	}
}

// TerminationStatistics is returned by Instance.Run instead of a bare error,
// so that a driver can print every termination uniformly regardless of
// whether it was a clean halt or a runtime error.
type TerminationStatistics struct {
	Cause     Cause
	Err       error
	IP        uint64
	OpCount   uint64
	FlipCount uint64
}
