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

import "github.com/ccmatrix/ccmatrix/internal/collections"

// Aggregate merges per-function combinations into one file-wide matrix. All
// assignments with valid macro names are pooled across the inputs, then
// regrouped per name with a cartesian product over each name's distinct
// values. The result is the smallest matrix that exercises every observed
// value of every macro.
func Aggregate(combos []Combination) []Combination {
	pool := collections.FlatMap(combos, func(c Combination) []Assignment {
		return collections.Filter(c, func(a Assignment) bool {
			return macroIdentifierRegex.MatchString(a.Name)
		})
	})
	if len(pool) == 0 {
		return nil
	}
	return filterCombinations(dedupe(mergePool(pool)))
}

// GCCFlags renders each non-empty combination as a group of -DNAME=VALUE
// compiler flags, preserving combination and assignment order.
func GCCFlags(combos []Combination) [][]string {
	nonEmpty := collections.Filter(combos, func(c Combination) bool {
		return len(c) > 0
	})
	return collections.Map(nonEmpty, func(c Combination) []string {
		return collections.Map(c, func(a Assignment) string {
			return "-D" + a.String()
		})
	})
}
