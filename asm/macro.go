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
	"fmt"

	"github.com/pkg/errors"

	"github.com/Mr-Bossman/flip-jump/vm"
)

const maxExpansionDepth = 1000

// expander inlines every macro/rep invocation starting from the root
// macro, producing a flat stream of primitive operations (FlipJump,
// WordFlip, Segment, Reserve, Label) with fully resolved, globally unique
// label names, per spec.md §4.3.
type expander struct {
	macros    *macroTable
	w         vm.WordSize
	callStack []macroKey
	counter   int
	out       []*Operation
}

func newExpander(w vm.WordSize, macros *macroTable) *expander {
	return &expander{w: w, macros: macros}
}

// Expand expands root's body and returns the flat primitive operation
// stream.
func (x *expander) Expand(root *Macro) ([]*Operation, error) {
	env := map[string]*Expr{}
	if err := x.expandOps(root.Ops, env); err != nil {
		return nil, err
	}
	return x.out, nil
}

func (x *expander) fresh(base string) string {
	x.counter++
	return fmt.Sprintf("%s$%d", base, x.counter)
}

// expandOps expands a macro's operation list into x.out, substituting
// expressions through env (parameter/local/extern symbolic names bound to
// their resolved replacement).
func (x *expander) expandOps(ops []*Operation, env map[string]*Expr) error {
	for _, op := range ops {
		switch op.Kind {
		case OpLabel:
			x.out = append(x.out, &Operation{Kind: OpLabel, Pos: op.Pos, Name: substName(op.Name, env)})

		case OpFlipJump:
			x.out = append(x.out, &Operation{Kind: OpFlipJump, Pos: op.Pos,
				Flip: subst(op.Flip, env), Jump: subst(op.Jump, env)})

		case OpWordFlip:
			dst := subst(op.Dst, env)
			ret := subst(op.Return, env)
			val, err := subst(op.Value, env).Eval(&Env{})
			if err != nil {
				return errors.Wrapf(ErrUnresolvedSymbol, "%s: wflip value must be a compile-time constant: %s", op.Pos, err)
			}
			x.lowerWordFlip(op.Pos, dst, val, ret)

		case OpSegment:
			x.out = append(x.out, &Operation{Kind: OpSegment, Pos: op.Pos, Start: subst(op.Start, env)})

		case OpReserve:
			x.out = append(x.out, &Operation{Kind: OpReserve, Pos: op.Pos, Length: subst(op.Length, env)})

		case OpConstAssign:
			// Constants are fully resolved at parse time; nothing to emit.

		case OpMacroCall:
			if err := x.expandCall(op.Macro, substArgs(op.Args, env), op.Pos, env); err != nil {
				return err
			}

		case OpRepCall:
			if err := x.expandRep(op, env); err != nil {
				return err
			}
		}
	}
	return nil
}

func (x *expander) expandCall(name string, args []*Expr, pos Position, callerEnv map[string]*Expr) error {
	mac, ok := x.macros.lookup(name, len(args))
	if !ok {
		return errors.Wrapf(ErrUnresolvedSymbol, "%s: undefined macro %s/%d", pos, name, len(args))
	}
	for _, k := range x.callStack {
		if k.name == name && k.arity == len(args) {
			return errors.Wrapf(ErrMacroRecursion, "%s: recursive expansion of %s/%d", pos, name, len(args))
		}
	}
	if len(x.callStack) >= maxExpansionDepth {
		return errors.Wrapf(ErrMacroRecursion, "%s: macro expansion too deep (possible recursion)", pos)
	}

	calleeEnv := map[string]*Expr{}
	for i, param := range mac.Params {
		calleeEnv[param] = args[i]
	}
	for _, local := range mac.Locals {
		calleeEnv[local] = &Expr{Kind: ExprLabel, Label: x.fresh(mac.Name + "." + local)}
	}
	externFresh := map[string]*Expr{}
	for _, extern := range mac.Externs {
		e := &Expr{Kind: ExprLabel, Label: x.fresh(mac.Name + "." + extern)}
		calleeEnv[extern] = e
		externFresh[extern] = e
	}

	x.callStack = append(x.callStack, macroKey{name, len(args)})
	err := x.expandOps(mac.Ops, calleeEnv)
	x.callStack = x.callStack[:len(x.callStack)-1]
	if err != nil {
		return err
	}

	// Extern labels become visible to the caller under their declared
	// name, per spec.md §3's extern class.
	for name, e := range externFresh {
		callerEnv[name] = e
	}
	return nil
}

// lowerWordFlip synthesizes the flip-jump sequence for a WordFlip,
// per spec.md §9's open question on wflip lowering: this module's chosen
// canonical form emits one FlipJump per set bit of value (low bit first),
// each flipping bit i of word dst (i.e. bit-address dst*w+i) and jumping
// to the next flip-jump in the sequence; the last one jumps to ret. A
// value of 0 degenerates to a single harmless flip (of the instruction's
// own address) immediately followed by the jump to ret, since a WordFlip
// must still occupy at least one instruction.
func (x *expander) lowerWordFlip(pos Position, dst *Expr, value int64, ret *Expr) {
	w := int64(x.w)
	var bits []int64
	for i := int64(0); i < w; i++ {
		if value&(1<<uint(i)) != 0 {
			bits = append(bits, i)
		}
	}
	if len(bits) == 0 {
		x.out = append(x.out, &Operation{Kind: OpFlipJump, Pos: pos,
			Flip: &Expr{Kind: ExprHere, Pos: pos}, Jump: ret})
		return
	}
	for n, bit := range bits {
		flip := fold(&Expr{Kind: ExprBinary, Op: OpAdd, Pos: pos,
			L: fold(&Expr{Kind: ExprBinary, Op: OpMul, Pos: pos, L: dst, R: &Expr{Kind: ExprInt, Int: w, Pos: pos}}),
			R: &Expr{Kind: ExprInt, Int: bit, Pos: pos}})
		jump := x.hereOffset(pos)
		if n == len(bits)-1 {
			jump = ret
		}
		x.out = append(x.out, &Operation{Kind: OpFlipJump, Pos: pos, Flip: flip, Jump: jump})
	}
}

// hereOffset builds the "$ + 2w" expression used as the implicit jump
// target to the next flip-jump in a synthesized sequence.
func (x *expander) hereOffset(pos Position) *Expr {
	return &Expr{Kind: ExprBinary, Op: OpAdd, Pos: pos,
		L: &Expr{Kind: ExprHere, Pos: pos},
		R: &Expr{Kind: ExprInt, Int: 2 * int64(x.w), Pos: pos}}
}

func (x *expander) expandRep(op *Operation, env map[string]*Expr) error {
	count, err := subst(op.Count, env).Eval(&Env{})
	if err != nil {
		return errors.Wrapf(ErrUnresolvedSymbol, "%s: rep count must be a constant: %s", op.Pos, err)
	}
	if count < 0 {
		return errors.Wrapf(ErrExpression, "%s: rep count %d is negative", op.Pos, count)
	}
	for i := int64(0); i < count; i++ {
		iterEnv := map[string]*Expr{op.Induction: {Kind: ExprInt, Int: i, Pos: op.Pos}}
		args := make([]*Expr, len(op.Args))
		for j, a := range op.Args {
			args[j] = subst(subst(a, iterEnv), env)
		}
		if err := x.expandCall(op.Macro, args, op.Pos, env); err != nil {
			return err
		}
	}
	return nil
}

// subst returns a copy of e with every ExprLabel leaf whose name is bound
// in env replaced by its binding. The binding itself is used as-is, not
// substituted again; expandRep binds the induction variable by applying
// its own one-entry env before the caller's.
func subst(e *Expr, env map[string]*Expr) *Expr {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ExprInt, ExprHere:
		return e
	case ExprLabel:
		if rep, ok := env[e.Label]; ok {
			return rep
		}
		return e
	case ExprUnary:
		return fold(&Expr{Kind: ExprUnary, Pos: e.Pos, IsBitLen: e.IsBitLen, L: subst(e.L, env)})
	case ExprBinary:
		return fold(&Expr{Kind: ExprBinary, Pos: e.Pos, Op: e.Op, L: subst(e.L, env), R: subst(e.R, env)})
	case ExprTernary:
		return fold(&Expr{Kind: ExprTernary, Pos: e.Pos,
			Cond: subst(e.Cond, env), Then: subst(e.Then, env), Else: subst(e.Else, env)})
	default:
		return e
	}
}

func substArgs(args []*Expr, env map[string]*Expr) []*Expr {
	out := make([]*Expr, len(args))
	for i, a := range args {
		out[i] = subst(a, env)
	}
	return out
}

// substName substitutes a label *declaration* name: it only ever matches
// a local/extern symbolic name (a parameter cannot be declared as a
// label per spec.md §3's invariant (c)).
func substName(name string, env map[string]*Expr) string {
	if rep, ok := env[name]; ok && rep.Kind == ExprLabel {
		return rep.Label
	}
	return name
}
