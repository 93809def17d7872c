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

// Stats is the live view of interpreter progress passed to a BreakHook.
type Stats struct {
	IP        uint64
	OpCount   uint64
	FlipCount uint64
}

// BreakHook lets an external debugger pause, single-step or redirect
// execution. ShouldBreak is consulted before every instruction; when it
// returns true, Handle is called synchronously and its return value becomes
// the hook used for the remainder of the run (return the same hook to keep
// breaking on every step, nil to detach).
type BreakHook interface {
	ShouldBreak(ip uint64, opCount uint64) bool
	Handle(ip uint64, mem *Memory, stats Stats) BreakHook
}
