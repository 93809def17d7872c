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
	"strings"

	"github.com/pkg/errors"
)

// Sentinel error classes. Wrap these with errors.Wrap/Wrapf to attach a
// position and detail; unwrap with errors.Cause to test the class.
var (
	ErrLex              = errors.New("lex error")
	ErrParse            = errors.New("parse error")
	ErrSemantic         = errors.New("semantic error")
	ErrMacroRecursion   = errors.New("macro recursion")
	ErrUnresolvedSymbol = errors.New("unresolved symbol")
	ErrExpression       = errors.New("expression error")
	ErrSegmentOverlap   = errors.New("segment overlap")
	ErrDuplicateLabel   = errors.New("duplicate label")
)

// Position identifies a point in a source file.
type Position struct {
	File string
	Line int
	Col  int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// posError is a single diagnostic tied to a source position.
type posError struct {
	Pos Position
	Err error
}

func (e *posError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Err) }
func (e *posError) Unwrap() error { return e.Err }

// ErrorList accumulates diagnostics across an entire parse, per spec.md
// §7's "parser errors are accumulated" policy.
type ErrorList []*posError

func (e ErrorList) Error() string {
	l := make([]string, 0, len(e))
	for _, err := range e {
		l = append(l, err.Error())
	}
	return strings.Join(l, "\n")
}

// add appends a new diagnostic wrapping cause at pos.
func (e *ErrorList) add(pos Position, cause error) {
	*e = append(*e, &posError{Pos: pos, Err: cause})
}

// addf is a convenience for add(pos, errors.Errorf(...)) without losing the
// underlying sentinel: wrap wraps the sentinel with a formatted message.
func (e *ErrorList) addf(pos Position, sentinel error, format string, args ...interface{}) {
	e.add(pos, errors.Wrapf(sentinel, format, args...))
}

func (e ErrorList) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
