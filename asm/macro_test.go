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

package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Bossman/flip-jump/vm"
)

func TestExpandDirectRecursion(t *testing.T) {
	macros := newMacroTable()
	a := &Macro{Name: "a", Arity: 0, usedParams: map[string]bool{}}
	a.Ops = []*Operation{{Kind: OpMacroCall, Macro: "a", Args: nil}}
	require.True(t, macros.define(a))

	root := &Macro{Name: "$root", Ops: []*Operation{{Kind: OpMacroCall, Macro: "a"}}}
	x := newExpander(vm.Word64, macros)
	_, err := x.Expand(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMacroRecursion)
}

func TestExpandMutualRecursion(t *testing.T) {
	macros := newMacroTable()
	a := &Macro{Name: "a", Arity: 0, usedParams: map[string]bool{}}
	a.Ops = []*Operation{{Kind: OpMacroCall, Macro: "b"}}
	b := &Macro{Name: "b", Arity: 0, usedParams: map[string]bool{}}
	b.Ops = []*Operation{{Kind: OpMacroCall, Macro: "a"}}
	require.True(t, macros.define(a))
	require.True(t, macros.define(b))

	root := &Macro{Name: "$root", Ops: []*Operation{{Kind: OpMacroCall, Macro: "a"}}}
	x := newExpander(vm.Word64, macros)
	_, err := x.Expand(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMacroRecursion)
}

func TestExpandUndefinedMacro(t *testing.T) {
	macros := newMacroTable()
	root := &Macro{Name: "$root", Ops: []*Operation{{Kind: OpMacroCall, Macro: "nope"}}}
	x := newExpander(vm.Word64, macros)
	_, err := x.Expand(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvedSymbol)
}

// TestExpandLocalsGetFreshNames covers the per-expansion uniqueness of
// locals: two calls to the same macro must allocate distinct label names.
func TestExpandLocalsGetFreshNames(t *testing.T) {
	macros := newMacroTable()
	m := &Macro{Name: "m", Arity: 0, Locals: []string{"l"}, usedParams: map[string]bool{}}
	m.Ops = []*Operation{{Kind: OpLabel, Name: "l"}}
	require.True(t, macros.define(m))

	root := &Macro{Name: "$root", Ops: []*Operation{
		{Kind: OpMacroCall, Macro: "m"},
		{Kind: OpMacroCall, Macro: "m"},
	}}
	x := newExpander(vm.Word64, macros)
	ops, err := x.Expand(root)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.NotEqual(t, ops[0].Name, ops[1].Name)
}

// TestWordFlipLoweringOneFlipPerSetBit exercises lowerWordFlip's general
// case: one FlipJump per set bit, chained, the last jumping to ret.
func TestWordFlipLoweringOneFlipPerSetBit(t *testing.T) {
	macros := newMacroTable()
	root := &Macro{Name: "$root", Ops: []*Operation{
		{Kind: OpWordFlip,
			Dst:    &Expr{Kind: ExprInt, Int: 2},
			Value:  &Expr{Kind: ExprInt, Int: 0b101},
			Return: &Expr{Kind: ExprLabel, Label: "done"},
		},
		{Kind: OpLabel, Name: "done"},
	}}
	x := newExpander(vm.Word64, macros)
	ops, err := x.Expand(root)
	require.NoError(t, err)
	// Two set bits (bit 0 and bit 2 of value 0b101) -> 2 FlipJump ops, then the label.
	require.Len(t, ops, 3)
	assert.Equal(t, OpFlipJump, ops[0].Kind)
	assert.Equal(t, OpFlipJump, ops[1].Kind)
	assert.Equal(t, OpLabel, ops[2].Kind)
	assert.Equal(t, "done", ops[1].Jump.Label, "last flip-jump must target ret directly")
}

// TestWordFlipLoweringZeroValue covers the degenerate value==0 case: a
// single self-flip immediately followed by the jump to ret.
func TestWordFlipLoweringZeroValue(t *testing.T) {
	macros := newMacroTable()
	root := &Macro{Name: "$root", Ops: []*Operation{
		{Kind: OpWordFlip,
			Dst:    &Expr{Kind: ExprInt, Int: 0},
			Value:  &Expr{Kind: ExprInt, Int: 0},
			Return: &Expr{Kind: ExprLabel, Label: "done"},
		},
		{Kind: OpLabel, Name: "done"},
	}}
	x := newExpander(vm.Word64, macros)
	ops, err := x.Expand(root)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, ExprHere, ops[0].Flip.Kind)
	assert.Equal(t, "done", ops[0].Jump.Label)
}
