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

// Package asm implements the FlipJump assembler: a lexer, a recursive
// descent parser for the macro language of spec.md §3-4, a macro expander
// that lowers the macro language to a flat stream of primitive flip-jump
// operations, and a two-pass address resolver that produces a vm.Image
// (serialized to the binary format by vm.Image.WriteTo).
package asm

import (
	"github.com/Mr-Bossman/flip-jump/vm"
)

// Source is one input file to Assemble, named for diagnostics.
type Source struct {
	Name string
	Text string
}

// Assemble parses, expands and resolves every source in order (as if they
// were concatenated into one namespace, per spec.md §4's "the macro table
// and namespace stack are shared across all files of a single assemble
// call"), then emits a binary image for the given word size. The second
// return value holds non-fatal diagnostics (e.g. unused macro parameters).
//
// The root macro's body (every top-level statement, across every file) is
// the program's entry point: execution of the resulting image begins at
// bit-address 0 unless the runner overrides the entry point (vm.WithEntryPoint),
// so the first emitted operation should be
// reachable from there.
func Assemble(w vm.WordSize, sources ...Source) (*vm.Image, []string, error) {
	if !w.Valid() {
		return nil, nil, ErrLex
	}

	macros := newMacroTable()
	root := &Macro{Name: "$root", usedParams: map[string]bool{}}
	consts := map[string]*Expr{}

	p := newParser(w, macros, root, consts)
	for _, src := range sources {
		p.parseFile(src.Name, src.Text)
		if p.abort() {
			break
		}
	}
	if err := p.Finish(); err != nil {
		return nil, p.Warnings(), err
	}

	x := newExpander(w, macros)
	ops, err := x.Expand(root)
	if err != nil {
		return nil, p.Warnings(), err
	}

	r := newResolver(w)
	img, err := r.Resolve(ops)
	return img, p.Warnings(), err
}
