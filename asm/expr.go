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
	"github.com/pkg/errors"

	"github.com/Mr-Bossman/flip-jump/vm"
)

// ExprKind tags the variant of an Expr node.
type ExprKind int

// Expression node kinds.
const (
	ExprInt ExprKind = iota
	ExprLabel
	ExprHere // '$'
	ExprBinary
	ExprUnary
	ExprTernary
)

// BinOp is a binary operator, ordered by precedence (low to high) per
// spec.md §4.2.
type BinOp int

// Binary operators.
const (
	OpOr BinOp = iota
	OpXor
	OpLt
	OpGt
	OpLe
	OpGe
	OpEq
	OpNeq
	OpBand
	OpShl
	OpShr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
)

// binOpPrec assigns precedence per spec.md §4.2, low to high:
// ?: | ^ (<,>,<=,>= nonassoc) ==,!= & <<,>> +,- *,/,% #
var binOpPrec = map[BinOp]int{
	OpOr: 1, OpXor: 2,
	OpLt: 3, OpGt: 3, OpLe: 3, OpGe: 3,
	OpEq: 4, OpNeq: 4,
	OpBand: 5,
	OpShl: 6, OpShr: 6,
	OpAdd: 7, OpSub: 7,
	OpMul: 8, OpDiv: 8, OpMod: 8,
}

var binOpSymbol = map[BinOp]string{
	OpOr: "|", OpXor: "^",
	OpLt: "<", OpGt: ">", OpLe: "<=", OpGe: ">=",
	OpEq: "==", OpNeq: "!=",
	OpBand: "&",
	OpShl: "<<", OpShr: ">>",
	OpAdd: "+", OpSub: "-",
	OpMul: "*", OpDiv: "/", OpMod: "%",
}

// Expr is a node in an expression tree. Leaves are ExprInt (an evaluated
// integer), ExprLabel (an unresolved name) and ExprHere (the '$' marker,
// resolved against the position it is used at). Expr trees are immutable
// once built; evaluation takes an environment and returns a fresh value.
type Expr struct {
	Kind ExprKind
	Pos  Position

	Int int64 // ExprInt

	Label string // ExprLabel (already fully qualified by the parser/expander)

	Op       BinOp // ExprBinary
	L, R     *Expr // ExprBinary operands, or ExprUnary operand in L
	IsBitLen bool  // ExprUnary: true for '#', false for unary '-'

	Cond, Then, Else *Expr // ExprTernary
}

// IsConst reports whether the tree is already fully folded to an integer.
func (e *Expr) IsConst() bool { return e.Kind == ExprInt }

// Env resolves label names and the current address ('$') during
// evaluation.
type Env struct {
	Labels map[string]int64
	Here   int64 // value of '$' at the point this expression appears
}

// Eval evaluates the expression tree against env. It fails with
// ErrUnresolvedSymbol if a label is unbound, or ErrExpression on division
// or modulo by zero.
func (e *Expr) Eval(env *Env) (int64, error) {
	switch e.Kind {
	case ExprInt:
		return e.Int, nil
	case ExprHere:
		return env.Here, nil
	case ExprLabel:
		v, ok := env.Labels[e.Label]
		if !ok {
			return 0, errors.Wrapf(ErrUnresolvedSymbol, "%s: %q", e.Pos, e.Label)
		}
		return v, nil
	case ExprUnary:
		v, err := e.L.Eval(env)
		if err != nil {
			return 0, err
		}
		if e.IsBitLen {
			return vm.BitLen(v), nil
		}
		return -v, nil
	case ExprBinary:
		l, err := e.L.Eval(env)
		if err != nil {
			return 0, err
		}
		r, err := e.R.Eval(env)
		if err != nil {
			return 0, err
		}
		return evalBinOp(e.Pos, e.Op, l, r)
	case ExprTernary:
		c, err := e.Cond.Eval(env)
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return e.Then.Eval(env)
		}
		return e.Else.Eval(env)
	default:
		return 0, errors.Errorf("%s: malformed expression", e.Pos)
	}
}

func evalBinOp(pos Position, op BinOp, l, r int64) (int64, error) {
	switch op {
	case OpOr:
		return l | r, nil
	case OpXor:
		return l ^ r, nil
	case OpBand:
		return l & r, nil
	case OpLt:
		return boolInt(l < r), nil
	case OpGt:
		return boolInt(l > r), nil
	case OpLe:
		return boolInt(l <= r), nil
	case OpGe:
		return boolInt(l >= r), nil
	case OpEq:
		return boolInt(l == r), nil
	case OpNeq:
		return boolInt(l != r), nil
	case OpShl:
		return l << uint(r), nil
	case OpShr:
		return l >> uint(r), nil
	case OpAdd:
		return l + r, nil
	case OpSub:
		return l - r, nil
	case OpMul:
		return l * r, nil
	case OpDiv:
		if r == 0 {
			return 0, errors.Wrapf(ErrExpression, "%s: division by zero", pos)
		}
		return l / r, nil
	case OpMod:
		if r == 0 {
			return 0, errors.Wrapf(ErrExpression, "%s: modulo by zero", pos)
		}
		return l % r, nil
	default:
		return 0, errors.Errorf("%s: unknown operator", pos)
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// fold attempts constant folding of a freshly-built node: if all of its
// children are ExprInt, it is replaced in place by their evaluated value
// (the ternary condition must fold too). Folding never touches ExprLabel
// or ExprHere (the latter is only known at resolution time).
func fold(e *Expr) *Expr {
	switch e.Kind {
	case ExprUnary:
		if e.L.IsConst() {
			v, err := e.Eval(&Env{})
			if err == nil {
				return &Expr{Kind: ExprInt, Int: v, Pos: e.Pos}
			}
		}
	case ExprBinary:
		if e.L.IsConst() && e.R.IsConst() {
			v, err := e.Eval(&Env{})
			if err == nil {
				return &Expr{Kind: ExprInt, Int: v, Pos: e.Pos}
			}
		}
	case ExprTernary:
		if e.Cond.IsConst() && e.Then.IsConst() && e.Else.IsConst() {
			v, err := e.Eval(&Env{})
			if err == nil {
				return &Expr{Kind: ExprInt, Int: v, Pos: e.Pos}
			}
		}
	}
	return e
}
