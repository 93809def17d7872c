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

func TestQualifyPlainID(t *testing.T) {
	p := &parser{ns: []string{"a", "b"}}
	assert.Equal(t, "a.b.c", p.qualify("c"))

	p.ns = nil
	assert.Equal(t, "c", p.qualify("c"))
}

// TestQualifyDotDeclarationPeelsOneLess covers the dot-peeling asymmetry: a
// label *declaration* with k leading dots peels k-1 namespace segments.
func TestQualifyDotDeclarationPeelsOneLess(t *testing.T) {
	p := &parser{ns: []string{"a", "b"}}

	name, err := p.qualifyDot(Position{}, ".c", true)
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", name, "one dot peels zero segments for a declaration")

	name, err = p.qualifyDot(Position{}, "..c", true)
	require.NoError(t, err)
	assert.Equal(t, "a.c", name, "two dots peel one segment for a declaration")
}

// TestQualifyDotReferencePeelsExactly covers the same asymmetry from the
// reference side: a reference with k leading dots peels exactly k segments.
func TestQualifyDotReferencePeelsExactly(t *testing.T) {
	p := &parser{ns: []string{"a", "b"}}

	name, err := p.qualifyDot(Position{}, ".c", false)
	require.NoError(t, err)
	assert.Equal(t, "a.c", name, "one dot peels one segment for a reference")

	name, err = p.qualifyDot(Position{}, "..c", false)
	require.NoError(t, err)
	assert.Equal(t, "c", name, "two dots peel both segments for a reference")
}

func TestQualifyDotExceedsDepth(t *testing.T) {
	p := &parser{ns: []string{"a"}}
	_, err := p.qualifyDot(Position{}, "...c", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSemantic)
}

func TestQualifyDotAtRootNamespace(t *testing.T) {
	p := &parser{ns: nil}
	name, err := p.qualifyDot(Position{}, ".c", true)
	require.NoError(t, err)
	assert.Equal(t, "c", name)
}
