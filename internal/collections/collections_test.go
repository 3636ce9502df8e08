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

package collections

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, Map([]int{1, 2, 3}, strconv.Itoa))
	assert.Equal(t, []string{}, Map([]int(nil), strconv.Itoa))
}

func TestFilter(t *testing.T) {
	even := func(v int) bool { return v%2 == 0 }
	assert.Equal(t, []int{2, 4}, Filter([]int{1, 2, 3, 4}, even))
	assert.Nil(t, Filter([]int{1, 3}, even))
}

func TestFlatMap(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"},
		FlatMap([]string{"a b", "c"}, strings.Fields))
	assert.Nil(t, FlatMap([]string{""}, strings.Fields))
}

func TestDedupBy(t *testing.T) {
	ident := func(v int) int { return v }
	assert.Equal(t, []int{3, 1, 2}, DedupBy([]int{3, 1, 3, 2, 1}, ident))
	assert.Nil(t, DedupBy([]int(nil), ident))

	// First occurrence wins under a lossy key.
	firstChar := func(s string) byte { return s[0] }
	assert.Equal(t, []string{"apple", "banana"},
		DedupBy([]string{"apple", "avocado", "banana"}, firstChar))
}

func TestGroupBy(t *testing.T) {
	byLen := func(s string) int { return len(s) }
	got := GroupBy([]string{"a", "bb", "c", "dd"}, byLen)
	assert.Equal(t, map[int][]string{
		1: {"a", "c"},
		2: {"bb", "dd"},
	}, got)
	assert.Empty(t, GroupBy([]string(nil), byLen))
}

func TestSliceTypePreserved(t *testing.T) {
	type names []string
	got := Filter(names{"a", "b", "a"}, func(s string) bool { return s == "a" })
	assert.Equal(t, names{"a", "a"}, got)
	deduped := DedupBy(names{"a", "b", "a"}, func(s string) string { return s })
	assert.Equal(t, names{"a", "b"}, deduped)
}
