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

package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripComments(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "line comment",
			input:    "int x; // trailing\nint y;",
			expected: "int x;            \nint y;",
		},
		{
			name:     "block comment inline",
			input:    "int /* mid */ x;",
			expected: "int           x;",
		},
		{
			name:     "block comment keeps newlines",
			input:    "a /* one\ntwo */ b",
			expected: "a       \n       b",
		},
		{
			name:     "comment markers inside string literal",
			input:    `char *s = "// not /* a comment";`,
			expected: `char *s = "// not /* a comment";`,
		},
		{
			name:     "escaped quote inside string",
			input:    `char *s = "\" // still string";`,
			expected: `char *s = "\" // still string";`,
		},
		{
			name:     "comment markers inside char literal",
			input:    "char c = '/'; int y; // gone",
			expected: "char c = '/'; int y;        ",
		},
		{
			name:     "unterminated block comment",
			input:    "a /* open\nstill",
			expected: "a        \n     ",
		},
		{
			name:     "slash star slash stays open",
			input:    "a /*/ b */ c",
			expected: "a          c",
		},
		{
			name:     "directive after comment removal",
			input:    "/* x */#ifdef FOO",
			expected: "       #ifdef FOO",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StripComments(tc.input))
		})
	}
}

func TestStripCommentsPreservesLayout(t *testing.T) {
	input := "int a;\n/* one\n * two\n */\nint b; // tail\n"
	got := StripComments(input)

	assert.Equal(t, strings.Count(input, "\n"), strings.Count(got, "\n"))
	assert.Len(t, got, len(input))
	assert.Equal(t, strings.Index(input, "int b;"), strings.Index(got, "int b;"))
}

func TestLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Lines("a\nb\nc"))
	assert.Equal(t, []string{"a", "b", ""}, Lines("a\r\nb\r\n"))
	assert.Equal(t, []string{""}, Lines(""))
}
