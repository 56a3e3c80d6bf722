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
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// ErrNotScalar is returned by the scalar accessors of [Value] when the value
// is a map or a list.
var ErrNotScalar = errors.New("value is not a scalar")

// ErrNotInteger is returned by [Value.Int] for number text with a fraction
// or an exponent.
var ErrNotInteger = errors.New("value is not an integer")

// Kind identifies the shape of a [Value].
type Kind uint8

const (
	// KindNull is the null value.
	KindNull Kind = iota

	// KindString is a quoted token or a bare token that is not a literal.
	KindString

	// KindNumber is a bare token in JSON number syntax.
	KindNumber

	// KindBool is a bare true or false.
	KindBool

	// KindMap is an ordered list of key/value entries.
	KindMap

	// KindList is an ordered list of values.
	KindList
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Pos is a location in the parsed input.
// Offset counts runes of the decoded input; Line and Column are 1-based.
type Pos struct {
	Offset int
	Line   int
	Column int
}

// IsValid reports whether the position was recorded by the parser.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

// String formats the position as line:column.
func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}

	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Entry is one key/value pair of a map [Value].
type Entry struct {
	Key   string
	Value Value
	Pos   Pos // position of the key
}

// Value is the generic result of parsing: null, a scalar, an ordered map
// or a list. The zero Value is null.
//
// Map values keep entries in input order and may hold the same key more
// than once; [Value.Get] returns the first occurrence and [Value.Flatten]
// folds repeats into lists.
type Value struct {
	kind    Kind
	text    string
	entries []Entry
	items   []Value
	pos     Pos
	quoted  bool
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// NewString returns a string scalar.
func NewString(s string) Value {
	return Value{kind: KindString, text: s}
}

// NewNumber returns a number scalar holding text verbatim.
// Text that is not in number syntax yields a string scalar.
func NewNumber(text string) Value {
	if !isNumberToken(text) {
		return NewString(text)
	}

	return Value{kind: KindNumber, text: text}
}

// NewInt returns a number scalar for i.
func NewInt(i int64) Value {
	return Value{kind: KindNumber, text: strconv.FormatInt(i, 10)}
}

// NewFloat returns a number scalar for f.
// NaN and infinities have no number syntax and are returned as strings.
func NewFloat(f float64) Value {
	return NewNumber(strconv.FormatFloat(f, 'g', -1, 64))
}

// NewBool returns a bool scalar.
func NewBool(b bool) Value {
	return Value{kind: KindBool, text: strconv.FormatBool(b)}
}

// NewMap returns a map holding entries in the given order.
func NewMap(entries ...Entry) Value {
	return Value{kind: KindMap, entries: entries}
}

// NewList returns a list holding items in the given order.
func NewList(items ...Value) Value {
	return Value{kind: KindList, items: items}
}

// Kind returns the shape of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsScalar reports whether v is a string, number or bool.
func (v Value) IsScalar() bool {
	return v.kind == KindString || v.kind == KindNumber || v.kind == KindBool
}

// Pos returns where the value started in the input.
func (v Value) Pos() Pos {
	return v.pos
}

// Text returns the decoded text of a scalar and "" otherwise.
func (v Value) Text() string {
	return v.text
}

// Len returns the number of entries of a map or items of a list.
func (v Value) Len() int {
	switch v.kind {
	case KindMap:
		return len(v.entries)
	case KindList:
		return len(v.items)
	default:
		return 0
	}
}

// Entries returns the entries of a map in input order.
func (v Value) Entries() []Entry {
	return v.entries
}

// Items returns the items of a list.
func (v Value) Items() []Value {
	return v.items
}

// Index returns the i-th item of a list or null when out of range.
func (v Value) Index(i int) Value {
	if v.kind != KindList || i < 0 || i >= len(v.items) {
		return Null()
	}

	return v.items[i]
}

// Get returns the first value stored under key.
func (v Value) Get(key string) (Value, bool) {
	for _, e := range v.entries {
		if e.Key == key {
			return e.Value, true
		}
	}

	return Null(), false
}

// GetAll returns every value stored under key in input order.
func (v Value) GetAll(key string) []Value {
	var out []Value
	for _, e := range v.entries {
		if e.Key == key {
			out = append(out, e.Value)
		}
	}

	return out
}

// Has reports whether key occurs in the map.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Keys returns the distinct keys of a map in first-seen order.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	seen := make(map[string]struct{}, len(v.entries))
	keys := make([]string, 0, len(v.entries))
	for _, e := range v.entries {
		if _, dup := seen[e.Key]; dup {
			continue
		}
		seen[e.Key] = struct{}{}
		keys = append(keys, e.Key)
	}

	return keys
}

// Int returns the scalar as an int64. Number text with a fraction or an
// exponent fails with [ErrNotInteger] instead of being truncated.
func (v Value) Int() (int64, error) {
	if !v.IsScalar() {
		return 0, ErrNotScalar
	}
	if isNumberToken(v.text) && strings.ContainsAny(v.text, ".eE") {
		return 0, fmt.Errorf("%w: %q", ErrNotInteger, v.text)
	}

	return cast.ToInt64E(v.text)
}

// Float returns the scalar as a float64.
func (v Value) Float() (float64, error) {
	if !v.IsScalar() {
		return 0, ErrNotScalar
	}

	return cast.ToFloat64E(v.text)
}

// Bool returns the scalar as a bool.
func (v Value) Bool() (bool, error) {
	if !v.IsScalar() {
		return false, ErrNotScalar
	}

	return cast.ToBoolE(v.text)
}

// Interface converts v into plain Go values: nil, string, int64, float64,
// bool, map[string]any and []any. Maps are flattened first.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.text
	case KindNumber:
		return numberInterface(v.text)
	case KindBool:
		return v.text == "true"
	case KindMap:
		flat := v.Flatten()
		m := make(map[string]any, len(flat.entries))
		for _, e := range flat.entries {
			m[e.Key] = e.Value.Interface()
		}

		return m
	case KindList:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}

		return out
	default:
		return nil
	}
}

// numberInterface returns int64 for integral text that fits and float64
// otherwise.
func numberInterface(text string) any {
	if !strings.ContainsAny(text, ".eE") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return i
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return text
	}

	return f
}

// Equal reports whether v and o have the same shape and content.
// Positions are ignored and map entry order is significant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind || v.text != o.text {
		return false
	}
	switch v.kind {
	case KindMap:
		if len(v.entries) != len(o.entries) {
			return false
		}
		for i := range v.entries {
			if v.entries[i].Key != o.entries[i].Key || !v.entries[i].Value.Equal(o.entries[i].Value) {
				return false
			}
		}
	case KindList:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
	}

	return true
}

// String returns v in notation form. Nulls inside maps are kept.
func (v Value) String() string {
	w := newWriter(defaultConfig())
	w.cfg.trimNulls = false
	w.writeGeneric(v)

	return w.String()
}

// isBareEmpty reports whether v is an empty token that was not quoted,
// as in "a=&b=1".
func (v Value) isBareEmpty() bool {
	return v.kind == KindString && v.text == "" && !v.quoted
}

// withPos returns a copy of v positioned at p.
func (v Value) withPos(p Pos) Value {
	v.pos = p
	return v
}
