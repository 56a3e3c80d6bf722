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
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// writer serializes Go values and [Value] trees into notation.
// Structural characters are always written raw; token content is
// percent-encoded when encode is set.
type writer struct {
	cfg    *config
	b      strings.Builder
	depth  int
	encode bool
}

func newWriter(cfg *config) *writer {
	return &writer{cfg: cfg, encode: cfg.urlEncode}
}

func (w *writer) String() string {
	return w.b.String()
}

func (w *writer) punct(s string) {
	w.b.WriteString(s)
}

// content writes literal token text, such as a number.
func (w *writer) content(s string) {
	if w.encode {
		appendEncoded(&w.b, s)
		return
	}
	w.b.WriteString(s)
}

// token writes a string, quoted when it would not read back unchanged.
func (w *writer) token(s string) {
	w.content(quote(s))
}

func (w *writer) enter() error {
	w.depth++
	if w.depth > w.cfg.maxDepth {
		return fmt.Errorf("%w: deeper than %d levels (possible cycle)", ErrMaxDepthExceeded, w.cfg.maxDepth)
	}

	return nil
}

func (w *writer) leave() {
	w.depth--
}

// entries returns the entries of a map value in output order.
func (w *writer) entries(v Value) []Entry {
	if !w.cfg.sortedKeys {
		return v.entries
	}
	sorted := slices.Clone(v.entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int { return cmp.Compare(a.Key, b.Key) })

	return sorted
}

// writeGeneric writes a parsed or hand-built value.
func (w *writer) writeGeneric(v Value) {
	switch v.kind {
	case KindNull:
		w.content(tokenNull)
	case KindString:
		w.token(v.text)
	case KindNumber, KindBool:
		w.content(v.text)
	case KindMap:
		w.punct("(")
		n := 0
		for _, e := range w.entries(v) {
			if w.cfg.trimNulls && e.Value.IsNull() {
				continue
			}
			if n > 0 {
				w.punct(",")
			}
			w.token(e.Key)
			w.punct("=")
			w.writeGeneric(e.Value)
			n++
		}
		w.punct(")")
	case KindList:
		w.punct("@(")
		for i, item := range v.items {
			if i > 0 {
				w.punct(",")
			}
			w.writeGeneric(item)
		}
		w.punct(")")
	}
}

// write writes any Go value in value form.
func (w *writer) write(v reflect.Value) error {
	if !v.IsValid() {
		w.content(tokenNull)
		return nil
	}
	t := v.Type()
	if t == valueType {
		w.writeGeneric(v.Interface().(Value))
		return nil
	}
	if sw, ok := w.cfg.swaps[t]; ok {
		out, err := sw.encode(v)
		if err != nil {
			return fmt.Errorf("uon: swap for %s: %w", t, err)
		}
		return w.write(out)
	}

	switch t.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			w.content(tokenNull)
			return nil
		}
		return w.writeDynamic(v.Elem())
	case reflect.Ptr:
		if v.IsNil() {
			w.content(tokenNull)
			return nil
		}
		if err := w.enter(); err != nil {
			return err
		}
		defer w.leave()

		return w.write(v.Elem())
	}

	if s, ok, err := formatScalar(v); ok {
		if err != nil {
			return fmt.Errorf("uon: marshal %s: %w", t, err)
		}
		w.token(s)
		return nil
	}

	switch t.Kind() {
	case reflect.Bool:
		w.content(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		w.content(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		w.content(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		s := strconv.FormatFloat(v.Float(), 'g', -1, t.Bits())
		if isNumberToken(s) {
			w.content(s)
		} else {
			w.token(s)
		}
	case reflect.String:
		w.token(v.String())
	case reflect.Struct:
		return w.writeBean(v, "")
	case reflect.Map:
		return w.writeMap(v)
	case reflect.Slice:
		if v.IsNil() {
			w.content(tokenNull)
			return nil
		}
		return w.writeList(v)
	case reflect.Array:
		return w.writeList(v)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}

	return nil
}

// writeDynamic writes the value held by an interface, adding the
// discriminator when its type is registered.
func (w *writer) writeDynamic(v reflect.Value) error {
	name, ok := w.cfg.typeName(v.Type())
	if !ok {
		return w.write(v)
	}
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			w.content(tokenNull)
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct || isScalarType(v.Type()) {
		return w.write(v)
	}

	return w.writeBean(v, name)
}

// visibleProps returns the properties of a struct in output order.
func (w *writer) visibleProps(t reflect.Type) []PropertyDescriptor {
	props := Describe(t).Properties()
	if w.cfg.sortedKeys {
		slices.SortStableFunc(props, func(a, b PropertyDescriptor) int { return cmp.Compare(a.Name(), b.Name()) })
	}

	return props
}

// skip reports whether a property value is left out.
func (w *writer) skip(p PropertyDescriptor, f reflect.Value) bool {
	if !f.IsValid() {
		return true
	}
	if p.OmitEmpty() && isEmptyValue(f) {
		return true
	}

	return w.cfg.trimNulls && isNilValue(f)
}

func (w *writer) writeBean(v reflect.Value, typeName string) error {
	if err := w.enter(); err != nil {
		return err
	}
	defer w.leave()

	w.punct("(")
	n := 0
	if typeName != "" {
		w.token(w.cfg.typeKey)
		w.punct("=")
		w.token(typeName)
		n++
	}
	for _, p := range w.visibleProps(v.Type()) {
		f := p.Get(v)
		if w.skip(p, f) {
			continue
		}
		if n > 0 {
			w.punct(",")
		}
		w.token(p.Name())
		w.punct("=")
		if err := w.write(f); err != nil {
			return err
		}
		n++
	}
	w.punct(")")

	return nil
}

// mapKey is a map key with its token text.
type mapKey struct {
	text string
	key  reflect.Value
}

// sortedKeys returns the keys of a Go map ordered by their text.
func (w *writer) sortedKeys(v reflect.Value) ([]mapKey, error) {
	keys := make([]mapKey, 0, v.Len())
	for _, k := range v.MapKeys() {
		text, err := keyText(k)
		if err != nil {
			return nil, err
		}
		keys = append(keys, mapKey{text: text, key: k})
	}
	slices.SortFunc(keys, func(a, b mapKey) int { return cmp.Compare(a.text, b.text) })

	return keys, nil
}

// keyText renders a map key as token text.
func keyText(k reflect.Value) (string, error) {
	if k.Kind() == reflect.Interface {
		if k.IsNil() {
			return tokenNull, nil
		}
		k = k.Elem()
	}
	if s, ok, err := formatScalar(k); ok {
		return s, err
	}
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(k.Float(), 'g', -1, k.Type().Bits()), nil
	case reflect.Bool:
		return strconv.FormatBool(k.Bool()), nil
	default:
		return "", fmt.Errorf("%w: map key %s", ErrUnsupportedType, k.Type())
	}
}

func (w *writer) writeMap(v reflect.Value) error {
	if v.IsNil() {
		w.content(tokenNull)
		return nil
	}
	if err := w.enter(); err != nil {
		return err
	}
	defer w.leave()

	keys, err := w.sortedKeys(v)
	if err != nil {
		return err
	}
	w.punct("(")
	n := 0
	for _, k := range keys {
		val := v.MapIndex(k.key)
		if w.cfg.trimNulls && isNilValue(val) {
			continue
		}
		if n > 0 {
			w.punct(",")
		}
		w.token(k.text)
		w.punct("=")
		if err := w.write(val); err != nil {
			return err
		}
		n++
	}
	w.punct(")")

	return nil
}

func (w *writer) writeList(v reflect.Value) error {
	if err := w.enter(); err != nil {
		return err
	}
	defer w.leave()

	w.punct("@(")
	for i := range v.Len() {
		if i > 0 {
			w.punct(",")
		}
		if err := w.write(v.Index(i)); err != nil {
			return err
		}
	}
	w.punct(")")

	return nil
}

// writeQuery writes v as an attribute list: objects become key=value pairs,
// lists become positional pairs and scalars are wrapped in the value key.
func (w *writer) writeQuery(v reflect.Value) error {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}
	t := v.Type()
	if t == valueType {
		return w.writeQueryGeneric(v.Interface().(Value))
	}
	if sw, ok := w.cfg.swaps[t]; ok {
		out, err := sw.encode(v)
		if err != nil {
			return fmt.Errorf("uon: swap for %s: %w", t, err)
		}
		return w.writeQuery(out)
	}

	switch kindOf(t) {
	case TypeBean:
		return w.writeBeanAttrs(v)
	case TypeMap:
		return w.writeMapAttrs(v)
	case TypeCollection:
		for i := range v.Len() {
			w.attr(strconv.Itoa(i))
			if err := w.write(v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	default:
		w.attr(w.cfg.valueKey)
		return w.write(v)
	}
}

// attr starts one key=value attribute.
func (w *writer) attr(key string) {
	if w.b.Len() > 0 {
		w.punct("&")
	}
	w.token(key)
	w.punct("=")
}

// pairs writes v under key, once per element when it is expanded.
func (w *writer) pairs(key string, v reflect.Value, expanded bool) error {
	if expanded {
		elem := v
		for elem.Kind() == reflect.Interface && !elem.IsNil() {
			elem = elem.Elem()
		}
		if (elem.Kind() == reflect.Slice || elem.Kind() == reflect.Array) && kindOf(elem.Type()) == TypeCollection {
			for i := range elem.Len() {
				w.attr(key)
				if err := w.write(elem.Index(i)); err != nil {
					return err
				}
			}
			return nil
		}
	}
	w.attr(key)

	return w.write(v)
}

func (w *writer) writeBeanAttrs(v reflect.Value) error {
	for _, p := range w.visibleProps(v.Type()) {
		f := p.Get(v)
		if w.skip(p, f) {
			continue
		}
		if err := w.pairs(p.Name(), f, isRepeatable(p) && (p.Expanded() || w.cfg.expanded)); err != nil {
			return err
		}
	}

	return nil
}

func (w *writer) writeMapAttrs(v reflect.Value) error {
	keys, err := w.sortedKeys(v)
	if err != nil {
		return err
	}
	for _, k := range keys {
		val := v.MapIndex(k.key)
		if w.cfg.trimNulls && isNilValue(val) {
			continue
		}
		if err := w.pairs(k.text, val, w.cfg.expanded); err != nil {
			return err
		}
	}

	return nil
}

func (w *writer) writeQueryGeneric(v Value) error {
	switch v.kind {
	case KindNull:
	case KindMap:
		for _, e := range w.entries(v) {
			if w.cfg.trimNulls && e.Value.IsNull() {
				continue
			}
			if w.cfg.expanded && e.Value.Kind() == KindList {
				for _, item := range e.Value.items {
					w.attr(e.Key)
					w.writeGeneric(item)
				}
				continue
			}
			w.attr(e.Key)
			w.writeGeneric(e.Value)
		}
	case KindList:
		for _, e := range indexedEntries(v.items) {
			w.attr(e.Key)
			w.writeGeneric(e.Value)
		}
	default:
		w.attr(w.cfg.valueKey)
		w.writeGeneric(v)
	}

	return nil
}

// isEmptyValue follows encoding/json's omitempty rules; structs are empty
// when zero.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Ptr, reflect.Struct:
		return v.IsZero()
	default:
		return false
	}
}

func isNilValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
