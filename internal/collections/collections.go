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

// Package collections provides generic slice helpers used across the module.
package collections

// Map applies fn to every element and collects the results.
func Map[S ~[]T, T, V any](s S, fn func(T) V) []V {
	out := make([]V, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter returns the elements for which keep is true, preserving order.
func Filter[S ~[]T, T any](s S, keep func(T) bool) S {
	var out S
	for _, v := range s {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// FlatMap applies fn to every element and concatenates the resulting slices.
func FlatMap[S ~[]T, T, V any](s S, fn func(T) []V) []V {
	var out []V
	for _, v := range s {
		out = append(out, fn(v)...)
	}
	return out
}

// DedupBy removes elements whose key was already seen, keeping the first
// occurrence of each key in order.
func DedupBy[S ~[]T, T any, K comparable](s S, key func(T) K) S {
	seen := make(map[K]struct{}, len(s))
	var out S
	for _, v := range s {
		k := key(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

// GroupBy partitions the elements by key. Order within each group follows the
// input order.
func GroupBy[S ~[]T, T any, K comparable](s S, key func(T) K) map[K]S {
	out := make(map[K]S)
	for _, v := range s {
		k := key(v)
		out[k] = append(out[k], v)
	}
	return out
}
