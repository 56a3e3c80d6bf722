// Copyright 2025 The Rivaas Authors
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

package uon

import (
	"slices"
	"strconv"
)

// Flatten returns v with every repeated map key folded into a single entry
// holding a list of the occurrences, recursively. The entry stays at the
// position of the first occurrence. When the first occurrence is already a
// list, later occurrences are appended to it.
//
//	k=1&k=2&k=3   ->  (k=@(1,2,3))
func (v Value) Flatten() Value {
	switch v.kind {
	case KindMap:
		out := Value{kind: KindMap, pos: v.pos, entries: make([]Entry, 0, len(v.entries))}
		index := make(map[string]int, len(v.entries))
		for _, e := range v.entries {
			val := e.Value.Flatten()
			i, seen := index[e.Key]
			if !seen {
				index[e.Key] = len(out.entries)
				out.entries = append(out.entries, Entry{Key: e.Key, Value: val, Pos: e.Pos})
				continue
			}
			first := out.entries[i].Value
			if first.kind != KindList {
				first = Value{kind: KindList, pos: first.pos, items: []Value{first}}
			}
			first.items = append(first.items, val)
			out.entries[i].Value = first
		}

		return out
	case KindList:
		out := Value{kind: KindList, pos: v.pos, items: make([]Value, len(v.items))}
		for i, item := range v.items {
			out.items[i] = item.Flatten()
		}

		return out
	default:
		return v
	}
}

// indexedItems returns the values of a map whose keys are all non-negative
// integers, ordered by key. It reports false for any other map.
//
//	0=a&1=b&2=c   ->  a, b, c
func indexedItems(v Value) ([]Value, bool) {
	if v.kind != KindMap || len(v.entries) == 0 {
		return nil, false
	}
	type indexed struct {
		n   int64
		val Value
	}
	all := make([]indexed, 0, len(v.entries))
	for _, e := range v.entries {
		if !isIndexKey(e.Key) {
			return nil, false
		}
		n, err := strconv.ParseInt(e.Key, 10, 64)
		if err != nil {
			return nil, false
		}
		all = append(all, indexed{n: n, val: e.Value})
	}
	slices.SortStableFunc(all, func(a, b indexed) int {
		switch {
		case a.n < b.n:
			return -1
		case a.n > b.n:
			return 1
		default:
			return 0
		}
	})

	out := make([]Value, len(all))
	for i, x := range all {
		out[i] = x.val
	}

	return out, true
}

// indexedEntries is the writer side of indexedItems: a list rendered as a
// map keyed by position.
func indexedEntries(items []Value) []Entry {
	out := make([]Entry, len(items))
	for i, item := range items {
		out[i] = Entry{Key: strconv.Itoa(i), Value: item}
	}

	return out
}
