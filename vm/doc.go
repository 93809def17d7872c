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

// Package vm implements the FlipJump binary image format and the
// fetch-flip-jump interpreter.
//
// A FlipJump program is a flat, word-addressed memory image. Execution reads
// two words at the instruction pointer (a bit-address to flip and a
// bit-address to jump to), flips that bit, then transfers control to the
// jump address. There is exactly one opcode.
//
// The package is split into:
//
//   - Cell/WordSize: the bit-addressing arithmetic shared by every other
//     piece (cell.go).
//   - Image/Memory: the on-disk binary format and the sparse, word-addressed
//     memory it loads into (image.go, mem.go).
//   - IOAdapter: the bit-level I/O boundary consumed by the interpreter
//     (io.go).
//   - Instance: the interpreter itself (core.go, run.go).
//   - BreakHook: the optional debugger hook (breakpoint.go).
package vm
