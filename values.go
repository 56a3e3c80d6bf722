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
	"net/url"
	"slices"
	"strings"
)

// Values is a raw multi-map of a query string. Keys keep the order of their
// first occurrence and values are not parsed as notation.
type Values struct {
	keys []string
	m    map[string][]string
}

// ParseSimpleMap splits a query string into keys and raw values.
// A leading '?' is skipped, content is percent-decoded and a key without
// '=' is recorded with no values.
//
// Example:
//
//	vals, _ := uon.ParseSimpleMap("?a=1&b=(x=2)&a=3&flag")
//	vals.GetAll("a") // ["1", "3"]
//	vals.Get("b")    // "(x=2)"
//	vals.Has("flag") // true
func ParseSimpleMap(qs string) (*Values, error) {
	src, err := decodeURL(qs, true)
	if err != nil {
		return nil, err
	}
	r := newReader(src)
	if r.peek() == '?' {
		r.read()
	}

	vals := &Values{m: make(map[string][]string)}
	for r.peek() != eof {
		r.mark()
		c := r.read()
		for c != eof && c != sepEq && c != sepAmp {
			c = r.read()
		}
		key := r.marked(trimFor(c))
		if c != sepEq {
			if key != "" {
				vals.touch(key)
			}
			continue
		}

		r.mark()
		c = r.read()
		for c != eof && c != sepAmp {
			if c == sepEq {
				r.replace('=')
			}
			c = r.read()
		}
		vals.add(key, r.marked(trimFor(c)))
	}

	return vals, nil
}

// trimFor is the number of trailing runes to drop from a marked span that
// ended at c.
func trimFor(c rune) int {
	if c == eof {
		return 0
	}

	return 1
}

func (v *Values) touch(key string) {
	if _, ok := v.m[key]; !ok {
		v.keys = append(v.keys, key)
		v.m[key] = nil
	}
}

func (v *Values) add(key, value string) {
	v.touch(key)
	v.m[key] = append(v.m[key], value)
}

// Get returns the first value of key, or "".
func (v *Values) Get(key string) string {
	if vs := v.m[key]; len(vs) > 0 {
		return vs[0]
	}

	return ""
}

// GetAll returns every value of key in encounter order.
func (v *Values) GetAll(key string) []string {
	return slices.Clone(v.m[key])
}

// Has reports whether key occurred, with or without a value.
func (v *Values) Has(key string) bool {
	_, ok := v.m[key]
	return ok
}

// Keys returns the keys in order of first occurrence.
func (v *Values) Keys() []string {
	return slices.Clone(v.keys)
}

// Len returns the number of distinct keys.
func (v *Values) Len() int {
	return len(v.keys)
}

// URLValues converts to url.Values, for example to pass to
// [UnmarshalValues].
func (v *Values) URLValues() url.Values {
	out := make(url.Values, len(v.keys))
	for _, k := range v.keys {
		out[k] = slices.Clone(v.m[k])
	}

	return out
}

// Encode writes the values back as a query string in key order of first
// occurrence.
func (v *Values) Encode() string {
	var b strings.Builder
	for _, k := range v.keys {
		vs := v.m[k]
		if len(vs) == 0 {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			appendEncoded(&b, k)
			continue
		}
		for _, val := range vs {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			appendEncoded(&b, k)
			b.WriteByte('=')
			appendEncoded(&b, val)
		}
	}

	return b.String()
}
