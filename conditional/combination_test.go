// Copyright 2025 The ccmatrix Authors. All rights reserved.
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

package conditional

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comboStrings(combos []Combination) []string {
	var out []string
	for _, c := range combos {
		out = append(out, c.String())
	}
	return out
}

func TestExpandSingleBlock(t *testing.T) {
	var gen Generator
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name: "if else alternatives",
			input: `
#ifdef FOO
#else
#endif`,
			expected: []string{"FOO=1", "FOO=**remove**"},
		},
		{
			name: "elif chain",
			input: `
#if MODE == 0
#elif MODE == 1
#else
#endif`,
			expected: []string{"MODE=0", "MODE=1", "MODE=2"},
		},
		{
			name: "compound condition",
			input: `
#if (X == 1) && (Y >= 2)
#endif`,
			expected: []string{"X=1 Y=2"},
		},
		{
			name: "untranslatable branch still contributes a path",
			input: `
#if CHECK(FOO)
#endif`,
			expected: []string{""},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			forest := ParseBlocks(splitLines(tc.input), 1)
			require.Len(t, forest, 1)
			assert.Equal(t, tc.expected, comboStrings(gen.Expand(forest[0])))
		})
	}
}

func TestExpandNestedCartesianProduct(t *testing.T) {
	lines := splitLines(`
#ifdef A
#if B == 1
#endif
#if C == 1
#elif C == 2
#endif
#endif`)

	var gen Generator
	forest := ParseBlocks(lines, 1)
	require.Len(t, forest, 1)

	assert.Equal(t, []string{
		"A=1 B=1 C=1",
		"A=1 B=1 C=2",
	}, comboStrings(gen.Expand(forest[0])))
}

func TestExpandSkipsErrorBranches(t *testing.T) {
	lines := splitLines(`
#if MODE == 0
#error unsupported mode
#elif MODE == 1
#endif`)

	var gen Generator
	forest := ParseBlocks(lines, 1)
	require.Len(t, forest, 1)
	assert.Equal(t, []string{"MODE=1"}, comboStrings(gen.Expand(forest[0])))
}

func TestExpandForestMergesSiblingBlocks(t *testing.T) {
	// Two sibling blocks constraining the same macro become alternatives, not
	// a product of contradictory assignments.
	lines := splitLines(`
#if B == 1
#endif
#if B == 2
#endif`)

	var gen Generator
	assert.Equal(t, []string{"B=1", "B=2"},
		comboStrings(gen.ExpandForest(ParseBlocks(lines, 1))))
}

func TestExpandForestCrossesIndependentMacros(t *testing.T) {
	lines := splitLines(`
#ifdef A
#endif
#if B == 1
#elif B == 2
#endif`)

	var gen Generator
	assert.Equal(t, []string{
		"A=1 B=1",
		"A=1 B=2",
	}, comboStrings(gen.ExpandForest(ParseBlocks(lines, 1))))
}

func TestExpandForestSingleBlockPassthrough(t *testing.T) {
	lines := splitLines(`
#ifdef A
#else
#endif`)

	var gen Generator
	assert.Equal(t, []string{"A=1", "A=**remove**"},
		comboStrings(gen.ExpandForest(ParseBlocks(lines, 1))))
	assert.Nil(t, gen.ExpandForest(nil))
}

func TestLocate(t *testing.T) {
	lines := splitLines(`
#ifdef A
int x;
#if B == 1
int y;
#else
int z;
#endif
#endif
int outside;`)

	var tr Translator
	forest := ParseBlocks(lines, 1)

	testCases := []struct {
		line     int
		expected string
	}{
		{2, "A=1"},
		{4, "A=1 B=1"},
		{6, "A=1 B=0"},
		{9, ""},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, tr.Locate(forest, tc.line).String(), "line %d", tc.line)
	}
}

func TestCartesian(t *testing.T) {
	assert.Equal(t, [][]int{nil}, cartesian[int](nil))
	assert.Equal(t,
		[][]int{{1, 3}, {1, 4}, {2, 3}, {2, 4}},
		cartesian([][]int{{1, 2}, {3, 4}}))
}
