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

package asm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Bossman/flip-jump/asm"
	"github.com/Mr-Bossman/flip-jump/vm"
)

func assembleOne(t *testing.T, src string) (*vm.Image, []string, error) {
	t.Helper()
	return asm.Assemble(vm.Word64, asm.Source{Name: "t.fj", Text: src})
}

func TestAssembleTrivialProgram(t *testing.T) {
	img, warnings, err := assembleOne(t, "start: ;\n")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, img.Segments, 1)
	assert.EqualValues(t, 2, img.Segments[0].DataLength)
	require.NoError(t, img.Validate())
}

// TestAssembleConstFold covers E6: x = (1<<8) + #255 resolves to 264, and a
// later 'segment x' places the following label at bit address 264*64.
func TestAssembleConstFold(t *testing.T) {
	img, _, err := assembleOne(t, "x = (1<<8) + #255\nsegment x\nstart: ;\n")
	require.NoError(t, err)
	require.Len(t, img.Segments, 1)
	assert.EqualValues(t, 264, img.Segments[0].Start)
}

func TestAssembleDuplicateLabelError(t *testing.T) {
	_, _, err := assembleOne(t, "a: ;\na: ;\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, asm.ErrDuplicateLabel)
}

func TestAssembleUndefinedMacroCallError(t *testing.T) {
	_, _, err := assembleOne(t, "nosuchmacro\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, asm.ErrUnresolvedSymbol)
}

func TestAssembleUnusedParamWarningIsNonFatal(t *testing.T) {
	_, warnings, err := assembleOne(t, "def m a { ; }\nm 0\n")
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "\"a\"")
}

// TestAssembleMacroCallExpands checks that a macro invocation inlines its
// body at the call site: two calls to the same single-instruction macro
// produce two flip-jumps.
func TestAssembleMacroCallExpands(t *testing.T) {
	img, _, err := assembleOne(t, "def m { ; }\nm\nm\n")
	require.NoError(t, err)
	require.Len(t, img.Segments, 1)
	assert.EqualValues(t, 4, img.Segments[0].DataLength)
}

func TestAssembleRejectsBadWordSize(t *testing.T) {
	_, _, err := asm.Assemble(vm.WordSize(17), asm.Source{Name: "t.fj", Text: ";"})
	require.Error(t, err)
}

// TestAssembleGlobalLabelSharedAcrossNamespaces covers a global (`<`) label
// declared by one macro and referenced, from two different namespaces, by
// two other macros: all three expansions must agree on a single canonical
// address (spec.md: globals "use a single canonical name").
func TestAssembleGlobalLabelSharedAcrossNamespaces(t *testing.T) {
	src := `
def setg < g {
g: ;
}

def useg < g {
; g
}

ns a {
.setg
}

ns b {
.useg
}
`
	img, _, err := assembleOne(t, src)
	require.NoError(t, err)
	require.NoError(t, img.Validate())
	require.Len(t, img.Segments, 1)
	assert.EqualValues(t, 4, img.Segments[0].DataLength)
}

// TestAssembleLocalLabelFreshPerExpansionInNamespace covers a local (`@`)
// label declared by a macro defined inside an `ns {}` block, invoked twice
// via `rep`: each expansion must get its own fresh label so neither
// ErrDuplicateLabel nor ErrUnresolvedSymbol is raised.
func TestAssembleLocalLabelFreshPerExpansionInNamespace(t *testing.T) {
	src := `
ns outer {
def looper @l {
l: ;
}

rep(2, i) looper
}
`
	img, _, err := assembleOne(t, src)
	require.NoError(t, err)
	require.NoError(t, img.Validate())
	require.Len(t, img.Segments, 1)
	assert.EqualValues(t, 4, img.Segments[0].DataLength)
}
