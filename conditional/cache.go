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
	"sync"
	"time"
)

// Cache memoizes per-file analysis results keyed by path and modification
// time. A changed mtime invalidates the entry on the next Get. The zero value
// is ready to use; all methods are safe for concurrent callers.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	modTime time.Time
	combos  []Combination
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Get returns the cached combinations for path if they were stored under the
// same modification time.
func (c *Cache) Get(path string, modTime time.Time) ([]Combination, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[path]
	if !ok || !entry.modTime.Equal(modTime) {
		return nil, false
	}
	return entry.combos, true
}

// Put stores the combinations for path under the given modification time,
// replacing any previous entry.
func (c *Cache) Put(path string, modTime time.Time, combos []Combination) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]cacheEntry)
	}
	c.entries[path] = cacheEntry{modTime: modTime, combos: combos}
}
