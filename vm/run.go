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

// step executes exactly one fetch-flip-jump cycle. It returns CauseRunning
// while the instance keeps running and the halting Cause otherwise; err
// carries the underlying error for CauseError.
func (i *Instance) step() (Cause, error) {
	w := i.w
	out, in := outAddr(w), inAddr(w)

	flipAddr, err := i.mem.GetWord(i.ip)
	if err != nil {
		return CauseError, errors.Wrap(err, "fetch flip address")
	}

	if flipAddr == out || flipAddr == out+1 {
		i.io.WriteBit(flipAddr == out+1)
	}

	if i.ip <= in && in < i.ip+2*uint64(w) {
		bit, err := i.io.ReadBit()
		if err != nil {
			if errors.Cause(err) == ErrEndOfInput {
				return CauseEOF, nil
			}
			return CauseError, errors.Wrap(err, "read input bit")
		}
		if err := i.mem.WriteBit(in, bit); err != nil {
			return CauseError, errors.Wrap(err, "write input bit")
		}
	}

	cur, err := i.mem.ReadBit(flipAddr)
	if err != nil {
		return CauseError, errors.Wrap(err, "read flip bit")
	}
	if err := i.mem.WriteBit(flipAddr, !cur); err != nil {
		return CauseError, errors.Wrap(err, "flip bit")
	}
	i.flipCount++

	jumpAddr, err := i.mem.GetWord(i.ip + uint64(w))
	if err != nil {
		return CauseError, errors.Wrap(err, "fetch jump address")
	}

	ownWord := flipAddr >= i.ip && flipAddr < i.ip+2*uint64(w)
	if jumpAddr == i.ip && !ownWord {
		return CauseLooping, nil
	}
	if jumpAddr < 2*uint64(w) {
		return CauseNullIP, nil
	}

	i.ip = jumpAddr
	i.opCount++
	return CauseRunning, nil
}

// Run executes steps until the instance halts: a breakpoint fires, the
// program loops or jumps into the reserved zero page, input is exhausted, or
// a runtime error occurs. Run may be called again after a CauseBreakpoint
// termination to resume execution from where it left off.
func (i *Instance) Run() TerminationStatistics {
	for {
		if i.hook != nil && i.hook.ShouldBreak(i.ip, i.opCount) {
			i.hook = i.hook.Handle(i.ip, i.mem, Stats{IP: i.ip, OpCount: i.opCount, FlipCount: i.flipCount})
			return TerminationStatistics{Cause: CauseBreakpoint, IP: i.ip, OpCount: i.opCount, FlipCount: i.flipCount}
		}
		cause, err := i.step()
		switch cause {
		case CauseRunning:
			continue
		case CauseError:
			return TerminationStatistics{Cause: CauseError, Err: err, IP: i.ip, OpCount: i.opCount, FlipCount: i.flipCount}
		default:
			return TerminationStatistics{Cause: cause, IP: i.ip, OpCount: i.opCount, FlipCount: i.flipCount}
		}
	}
}
