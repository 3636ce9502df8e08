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
	"slices"
	"strings"

	"github.com/ccmatrix/ccmatrix/internal/collections"
)

// Combination is one buildable macro configuration: the set of assignments a
// single compilation must carry to reach a particular path through the
// conditional structure. An empty, non-nil combination is meaningful: the
// path exists but needs no macros.
type Combination []Assignment

// Strings renders each assignment as NAME=VALUE in combination order.
func (c Combination) Strings() []string {
	return collections.Map(c, Assignment.String)
}

func (c Combination) String() string {
	return strings.Join(c.Strings(), " ")
}

// key is an order-insensitive identity for deduplication.
func (c Combination) key() string {
	tokens := c.Strings()
	slices.Sort(tokens)
	return strings.Join(tokens, "\x00")
}

// Generator enumerates the macro combinations reachable through a parsed
// conditional forest.
type Generator struct {
	Translator Translator
}

// Expand enumerates every combination reachable through one block: for each
// branch, the branch's own assignments crossed with the cartesian product of
// its children's combination sets. Branches flagged with an unconditional
// #error are skipped. A childless branch contributes exactly one combination,
// even when its condition translated to nothing.
func (g Generator) Expand(block *Block) []Combination {
	var out []Combination
	branches := collections.Filter(block.Branches, func(b Branch) bool {
		return !b.HasErrorDirective
	})
	for _, branch := range branches {
		own := g.Translator.Translate(branch, block)

		var childLists [][]Combination
		for _, child := range branch.Children {
			if expanded := g.Expand(child); len(expanded) > 0 {
				childLists = append(childLists, expanded)
			}
		}
		if len(childLists) == 0 {
			out = append(out, Combination(own))
			continue
		}
		for _, parts := range cartesian(childLists) {
			merged := Combination(slices.Clone(own))
			for _, part := range parts {
				merged = append(merged, part...)
			}
			out = append(out, merged)
		}
	}
	return out
}

// ExpandForest enumerates combinations across sibling top-level blocks. The
// blocks are independent alternatives over a shared macro vocabulary, so
// their assignments are pooled and re-crossed per macro name: each name
// contributes one of its observed values to every resulting combination.
// Names appear in first-seen order and single-valued names do not branch.
func (g Generator) ExpandForest(blocks []*Block) []Combination {
	perBlock := collections.Filter(
		collections.Map(blocks, g.Expand),
		func(combos []Combination) bool { return len(combos) > 0 })

	switch len(perBlock) {
	case 0:
		return nil
	case 1:
		return perBlock[0]
	}

	pool := collections.FlatMap(perBlock, func(combos []Combination) []Assignment {
		return collections.FlatMap(combos, func(c Combination) []Assignment { return c })
	})
	return dedupe(mergePool(pool))
}

// mergePool regroups a flat assignment pool by macro name and takes the
// cartesian product over each name's distinct values.
func mergePool(pool []Assignment) []Combination {
	if len(pool) == 0 {
		return nil
	}
	names := collections.DedupBy(
		collections.Map(pool, func(a Assignment) string { return a.Name }),
		func(name string) string { return name })
	grouped := collections.GroupBy(pool, func(a Assignment) string { return a.Name })

	choices := collections.Map(names, func(name string) []Assignment {
		return collections.DedupBy(grouped[name], func(a Assignment) Value { return a.Value })
	})
	return collections.Map(cartesian(choices), func(parts []Assignment) Combination {
		return Combination(parts)
	})
}

func dedupe(combos []Combination) []Combination {
	return collections.DedupBy(combos, Combination.key)
}

// cartesian returns every way of picking one element from each list, in
// lexicographic order of list positions. An empty input yields one empty
// pick.
func cartesian[T any](lists [][]T) [][]T {
	out := [][]T{nil}
	for _, list := range lists {
		next := make([][]T, 0, len(out)*len(list))
		for _, prefix := range out {
			for _, item := range list {
				pick := make([]T, len(prefix), len(prefix)+1)
				copy(pick, prefix)
				next = append(next, append(pick, item))
			}
		}
		out = next
	}
	return out
}

// Locate walks the forest to the innermost branch chain enclosing the given
// 1-based line and returns the concatenated assignments of every enclosing
// branch, outermost first. It returns nil when the line sits outside all
// conditional structure.
func (t Translator) Locate(blocks []*Block, line int) Combination {
	for _, block := range blocks {
		for _, branch := range block.Branches {
			if !branch.Contains(line) {
				continue
			}
			path := Combination(t.Translate(branch, block))
			return append(path, t.Locate(branch.Children, line)...)
		}
	}
	return nil
}
