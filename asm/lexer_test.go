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
)

func lexAll(t *testing.T, src string) []Lexeme {
	t.Helper()
	l := newLexer("test.fj", src)
	var out []Lexeme
	for {
		lx := l.Next()
		out = append(out, lx)
		if lx.Tok == EOF {
			break
		}
	}
	require.Empty(t, l.errs, "unexpected lex errors: %v", l.errs)
	return out
}

func toks(lxs []Lexeme) []Token {
	out := make([]Token, len(lxs))
	for i, l := range lxs {
		out[i] = l.Tok
	}
	return out
}

func TestLexNumbers(t *testing.T) {
	lxs := lexAll(t, "123 0x1F 0b101")
	require.Len(t, lxs, 4) // 3 numbers + EOF
	assert.Equal(t, int64(123), lxs[0].Num)
	assert.Equal(t, int64(0x1F), lxs[1].Num)
	assert.Equal(t, int64(0b101), lxs[2].Num)
}

func TestLexCharLiteral(t *testing.T) {
	lxs := lexAll(t, `'A' '\n'`)
	assert.Equal(t, int64('A'), lxs[0].Num)
	assert.Equal(t, int64('\n'), lxs[1].Num)
}

// TestLexStringPacking covers testable property 8: "AB" == 0x4241 (bytes
// pack little-endian).
func TestLexStringPacking(t *testing.T) {
	lxs := lexAll(t, `"AB"`)
	require.Equal(t, NUMBER, lxs[0].Tok)
	assert.Equal(t, int64(0x4241), lxs[0].Num)
}

func TestLexDotIdentifiers(t *testing.T) {
	lxs := lexAll(t, ".foo ..bar")
	require.Equal(t, DOTID, lxs[0].Tok)
	assert.Equal(t, ".foo", lxs[0].Text)
	require.Equal(t, DOTID, lxs[1].Tok)
	assert.Equal(t, "..bar", lxs[1].Text)
}

func TestLexKeywordsAndPunct(t *testing.T) {
	lxs := lexAll(t, "ns def rep wflip segment reserve <= >= == != << >>")
	assert.Equal(t, []Token{NS, DEF, REP, WFLIP, SEGMENT, RESERVE, LE, GE, EQ, NEQ, SHL, SHR, EOF}, toks(lxs))
}

func TestLexCommentsAndNewlines(t *testing.T) {
	lxs := lexAll(t, "1 // a comment\n2")
	assert.Equal(t, []Token{NUMBER, NL, NUMBER, EOF}, toks(lxs))
}

func TestLexErrorRecoveryDoesNotPanic(t *testing.T) {
	l := newLexer("test.fj", "`")
	lx := l.Next()
	assert.Equal(t, PUNCT, lx.Tok)
	assert.NotEmpty(t, l.errs)
}
