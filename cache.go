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
	"fmt"
	"maps"
	"reflect"
	"sync"
	"sync/atomic"
)

var (
	// RCU pattern: atomic pointer to immutable map
	typeCachePtr atomic.Pointer[map[reflect.Type]*typeInfo]

	// Write-side lock (only for cache updates)
	typeCacheMu sync.Mutex
)

func init() {
	m := make(map[reflect.Type]*typeInfo)
	typeCachePtr.Store(&m)
}

// Describe returns the descriptor of t, building it at most once per type.
// It is safe for concurrent use.
func Describe(t reflect.Type) TypeDescriptor {
	return describe(t)
}

// describe is Describe with the concrete result type.
func describe(t reflect.Type) *typeInfo {
	if t == nil {
		panic("uon: Describe called with nil type")
	}

	// Lock-free read from current map
	m := typeCachePtr.Load()
	if ti, ok := (*m)[t]; ok {
		return ti
	}

	typeCacheMu.Lock()
	defer typeCacheMu.Unlock()

	// Double-check: another goroutine might have populated it
	m = typeCachePtr.Load()
	if ti, ok := (*m)[t]; ok {
		return ti
	}

	ti := parseTypeInfo(t)

	// Copy-on-write
	newMap := make(map[reflect.Type]*typeInfo, len(*m)+1)
	maps.Copy(newMap, *m)
	newMap[t] = ti
	typeCachePtr.Store(&newMap)

	return ti
}

// WarmupCache pre-builds descriptors for the given sample values so the
// first request does not pay for reflection.
//
// Example:
//
//	uon.WarmupCache(SearchParams{}, &Order{})
func WarmupCache(samples ...any) {
	for _, s := range samples {
		t := reflect.TypeOf(s)
		if t == nil {
			continue
		}
		warm(t, make(map[reflect.Type]bool))
	}
}

// MustWarmupCache is like WarmupCache but panics on nil samples and on
// types that cannot be bound.
func MustWarmupCache(samples ...any) {
	for _, s := range samples {
		t := reflect.TypeOf(s)
		if t == nil {
			panic("uon: MustWarmupCache called with nil value")
		}
		if kindOf(t) == TypeUnsupported {
			panic(fmt.Sprintf("uon: MustWarmupCache: %s cannot be bound", t))
		}
		warm(t, make(map[reflect.Type]bool))
	}
}

// warm describes t and every type reachable from it.
func warm(t reflect.Type, visited map[reflect.Type]bool) {
	if visited[t] {
		return
	}
	visited[t] = true
	ti := describe(t)
	switch ti.kind {
	case TypeBean:
		for _, p := range ti.props {
			warm(p.typ, visited)
		}
	case TypeCollection:
		warm(ti.base.Elem(), visited)
	case TypeMap:
		warm(ti.base.Key(), visited)
		warm(ti.base.Elem(), visited)
	}
}
