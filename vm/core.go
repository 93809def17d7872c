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

// Reserved bit-addresses, per word size w: a flip of OUT or OUT+1 also
// emits an output bit, and an instruction whose two words cover IN first
// has an input bit written there. The flip itself still lands in memory.
func outAddr(w WordSize) uint64 { return 2 * uint64(w) }
func inAddr(w WordSize) uint64  { return 3*uint64(w) + uint64(w.Log2()) }

// Instance is a FlipJump interpreter bound to one Memory image.
type Instance struct {
	ip  uint64
	mem *Memory
	w   WordSize

	io IOAdapter

	hook BreakHook

	opCount   uint64
	flipCount uint64
}

// Option configures an Instance constructed by New.
type Option func(*Instance) error

// WithIO sets the I/O adapter used for the reserved IN/OUT addresses.
// Defaults to a StandardIO with no input whose output is only buffered.
func WithIO(a IOAdapter) Option {
	return func(i *Instance) error { i.io = a; return nil }
}

// WithBreakHook installs a BreakHook consulted before every step.
func WithBreakHook(h BreakHook) Option {
	return func(i *Instance) error { i.hook = h; return nil }
}

// WithEntryPoint sets the initial instruction pointer. Defaults to 0.
func WithEntryPoint(ip uint64) Option {
	return func(i *Instance) error { i.ip = ip; return nil }
}

// New creates an Instance bound to mem, ready to Run from its entry point
// (bit-address 0 unless overridden with WithEntryPoint).
func New(mem *Memory, opts ...Option) (*Instance, error) {
	i := &Instance{
		mem: mem,
		w:   mem.WordSize(),
		io:  NewStandardIO(nil, nil),
	}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	return i, nil
}

// IP returns the current instruction pointer (bit-address).
func (i *Instance) IP() uint64 { return i.ip }

// Memory returns the instance's memory image.
func (i *Instance) Memory() *Memory { return i.mem }

// OpCount returns the number of fetch-flip-jump steps executed so far.
func (i *Instance) OpCount() uint64 { return i.opCount }

// FlipCount returns the number of bit flips performed so far.
func (i *Instance) FlipCount() uint64 { return i.flipCount }
