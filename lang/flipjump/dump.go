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

package flipjump

import (
	"fmt"
	"io"

	"github.com/Mr-Bossman/flip-jump/internal/fji"
	"github.com/Mr-Bossman/flip-jump/vm"
)

// DumpVM writes a plain-text snapshot of an interpreter instance to w: the
// instruction pointer, op/flip counters, and the flip/jump words of the
// instruction currently at IP. It is meant for breakpoint/debugger use, not
// as a stable machine-readable format.
func DumpVM(inst *vm.Instance, w io.Writer) error {
	ew := fji.NewErrWriter(w)
	ip := inst.IP()
	fmt.Fprintf(ew, "ip=%d ops=%d flips=%d\n", ip, inst.OpCount(), inst.FlipCount())

	mem := inst.Memory()
	flip, err := mem.GetWord(ip)
	if err != nil {
		fmt.Fprintf(ew, "flip=<%s>\n", err)
	} else {
		fmt.Fprintf(ew, "flip=%#x\n", flip)
	}
	jump, err := mem.GetWord(ip + uint64(mem.WordSize()))
	if err != nil {
		fmt.Fprintf(ew, "jump=<%s>\n", err)
	} else {
		fmt.Fprintf(ew, "jump=%#x\n", jump)
	}
	return ew.Err
}
