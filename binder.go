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
	"reflect"
	"strconv"
	"strings"
	"time"
)

// binder turns a parsed Value into a typed Go value. One binder serves one
// decode call.
type binder struct {
	cfg   *config
	path  []string
	errs  MultiError
	stats Stats
}

func newBinder(cfg *config) *binder {
	return &binder{cfg: cfg}
}

// fieldPath renders the current property path, e.g. "items[2].name".
func (b *binder) fieldPath() string {
	var sb strings.Builder
	for i, seg := range b.path {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			sb.WriteByte('.')
		}
		sb.WriteString(seg)
	}

	return sb.String()
}

func (b *binder) push(seg string) { b.path = append(b.path, seg) }

func (b *binder) pop() { b.path = b.path[:len(b.path)-1] }

// fail records err. Under WithAllErrors it returns nil so binding goes on;
// otherwise it returns err.
func (b *binder) fail(err error) error {
	b.stats.Errors++
	if b.cfg.allErrors {
		b.errs.Add(err)
		return nil
	}

	return err
}

// coercion builds a CoercionError for v at the current path.
func (b *binder) coercion(v Value, t reflect.Type, err error) *CoercionError {
	return &CoercionError{
		Field:  b.fieldPath(),
		Value:  v.Text(),
		Type:   t,
		Err:    err,
		Line:   v.pos.Line,
		Column: v.pos.Column,
	}
}

// mismatch reports a value whose shape does not fit the target kind.
func (b *binder) mismatch(v Value, t reflect.Type, err error) error {
	ce := b.coercion(v, t, err)
	ce.Value = v.String()
	ce.Reason = v.Kind().String() + " cannot be bound to " + Describe(t).Kind().String()

	return b.fail(ce)
}

// finish emits the Done event with final statistics.
func (b *binder) finish(start time.Time) {
	b.stats.Duration = time.Since(start)
	if b.cfg.events.Done != nil {
		b.cfg.events.Done(b.stats)
	}
}

// bindRoot binds the whole input. An empty attribute list only applies
// struct defaults and leaves other targets untouched.
func (b *binder) bindRoot(dst reflect.Value, v Value, attrs bool) error {
	if attrs && v.Len() == 0 {
		switch Describe(dst.Type()).Kind() {
		case TypeAny, TypeBean:
		default:
			return nil
		}
	}
	if err := b.bind(dst, v); err != nil {
		return err
	}

	return b.errs.ErrorOrNil()
}

// bind resolves the strategy for dst's type: raw Value, swap, converter,
// pointer, then by TypeKind.
func (b *binder) bind(dst reflect.Value, v Value) error {
	t := dst.Type()
	if t == valueType {
		dst.Set(reflect.ValueOf(v))
		return nil
	}
	if sw, ok := b.cfg.swaps[t]; ok {
		return b.bindSwap(dst, v, sw)
	}
	if findConverter(t, b.cfg) != nil {
		return b.bindScalar(dst, v)
	}
	if t.Kind() == reflect.Ptr {
		if v.IsNull() {
			dst.SetZero()
			return nil
		}
		elem := reflect.New(t.Elem())
		if err := b.bind(elem.Elem(), v); err != nil {
			return err
		}
		dst.Set(elem)

		return nil
	}

	switch Describe(t).Kind() {
	case TypeAny:
		return b.bindAny(dst, v)
	case TypeScalar:
		return b.bindScalar(dst, v)
	case TypeMap:
		return b.bindMap(dst, v)
	case TypeBean:
		return b.bindBean(dst, v)
	case TypeCollection:
		return b.bindCollection(dst, v)
	default:
		return b.fail(&InstantiationError{Type: t, Reason: "unsupported kind " + t.Kind().String(), Err: ErrUnsupportedType})
	}
}

// bindSwap binds the wire type and converts it back.
func (b *binder) bindSwap(dst reflect.Value, v Value, sw *swap) error {
	if sw.decode == nil {
		return b.fail(&InstantiationError{Type: dst.Type(), Reason: "registered swap has no inverse"})
	}
	wire := reflect.New(sw.wire).Elem()
	if err := b.bind(wire, v); err != nil {
		return err
	}
	out, err := sw.decode(wire)
	if err != nil {
		return b.fail(b.coercion(v, dst.Type(), err))
	}
	dst.Set(out)

	return nil
}

// bindScalar converts a single token. A map holding the value key binds
// that entry.
func (b *binder) bindScalar(dst reflect.Value, v Value) error {
	t := dst.Type()
	switch v.Kind() {
	case KindNull:
		dst.SetZero()
		return nil
	case KindMap:
		if inner, ok := v.Get(b.cfg.valueKey); ok {
			return b.bind(dst, inner)
		}
		return b.mismatch(v, t, ErrUnsupportedType)
	case KindList:
		return b.mismatch(v, t, ErrUnsupportedType)
	}

	if v.Text() == "" && v.Kind() == KindString && emptyMeansZero(t) && findConverter(t, b.cfg) == nil {
		dst.SetZero()
		return nil
	}
	if err := setScalar(dst, v.Text(), b.cfg); err != nil {
		return b.fail(b.coercion(v, t, err))
	}

	return nil
}

// emptyMeansZero reports whether an empty token binds t to its zero value.
func emptyMeansZero(t reflect.Type) bool {
	switch t {
	case timeType, durationType:
		return true
	}

	return isIntType(t) || t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
}

// bindAny fills an interface target. A map with only the value key is
// unwrapped; a discriminator selects a registered type; everything else
// becomes plain Go values with repeated keys promoted to lists.
func (b *binder) bindAny(dst reflect.Value, v Value) error {
	t := dst.Type()
	empty := t.NumMethod() == 0

	switch v.Kind() {
	case KindNull:
		dst.SetZero()
		return nil

	case KindMap:
		if v.Len() == 1 && v.entries[0].Key == b.cfg.valueKey {
			return b.bindAny(dst, v.entries[0].Value)
		}
		if tv, ok := v.Get(b.cfg.typeKey); ok && tv.IsScalar() {
			if ct, ok := b.cfg.types[tv.Text()]; ok {
				if !ct.AssignableTo(t) {
					return b.fail(&InstantiationError{
						Type:   ct,
						Reason: fmt.Sprintf("type registered as %q does not implement %s", tv.Text(), t),
					})
				}
				nv := reflect.New(ct).Elem()
				if err := b.bind(nv, v); err != nil {
					return err
				}
				dst.Set(nv)

				return nil
			}
			if !empty {
				return b.fail(&InstantiationError{
					Type:   t,
					Reason: fmt.Sprintf("no type registered as %q", tv.Text()),
					Err:    ErrUnknownTypeName,
				})
			}
		}
		if !empty {
			return b.fail(&InstantiationError{Type: t, Reason: "object has no " + strconv.Quote(b.cfg.typeKey) + " entry naming a registered type"})
		}

		flat := v.Flatten()
		if b.cfg.maxMapSize > 0 && len(flat.entries) > b.cfg.maxMapSize {
			return b.fail(b.coercion(v, t, fmt.Errorf("%w: %d > %d (use WithMaxMapSize to increase)",
				ErrMapExceedsMaxSize, len(flat.entries), b.cfg.maxMapSize)))
		}
		m := make(map[string]any, len(flat.entries))
		for _, e := range flat.entries {
			elem := reflect.New(anyType).Elem()
			b.push(e.Key)
			err := b.bindAny(elem, e.Value)
			b.pop()
			if err != nil {
				return err
			}
			m[e.Key] = elem.Interface()
		}
		dst.Set(reflect.ValueOf(m))

		return nil

	case KindList:
		if !empty {
			return b.fail(&InstantiationError{Type: t, Reason: "a list cannot implement " + t.String()})
		}
		if b.cfg.maxSliceLen > 0 && len(v.items) > b.cfg.maxSliceLen {
			return b.fail(b.coercion(v, t, fmt.Errorf("%w: %d > %d (use WithMaxSliceLen to increase)",
				ErrSliceExceedsMaxLength, len(v.items), b.cfg.maxSliceLen)))
		}
		out := make([]any, len(v.items))
		for i, item := range v.items {
			elem := reflect.New(anyType).Elem()
			b.push("[" + strconv.Itoa(i) + "]")
			err := b.bindAny(elem, item)
			b.pop()
			if err != nil {
				return err
			}
			out[i] = elem.Interface()
		}
		dst.Set(reflect.ValueOf(out))

		return nil

	default:
		sv := reflect.ValueOf(v.Interface())
		if !sv.Type().AssignableTo(t) {
			return b.fail(&InstantiationError{Type: t, Reason: "a scalar cannot implement " + t.String()})
		}
		dst.Set(sv)

		return nil
	}
}

// bindMap fills a Go map. Keys are coerced to the key type; a repeated key
// is promoted to a list for interface values and follows the duplicate
// policy otherwise.
func (b *binder) bindMap(dst reflect.Value, v Value) error {
	t := dst.Type()
	switch v.Kind() {
	case KindNull:
		dst.SetZero()
		return nil
	case KindMap:
	case KindString:
		if v.Text() == "" {
			dst.Set(reflect.MakeMap(t))
			return nil
		}
		return b.mismatch(v, t, ErrNotAnObject)
	default:
		return b.mismatch(v, t, ErrNotAnObject)
	}

	if b.cfg.maxMapSize > 0 && len(v.entries) > b.cfg.maxMapSize {
		return b.fail(b.coercion(v, t, fmt.Errorf("%w: %d > %d (use WithMaxMapSize to increase)",
			ErrMapExceedsMaxSize, len(v.entries), b.cfg.maxMapSize)))
	}

	kt, et := t.Key(), t.Elem()
	promote := et.Kind() == reflect.Interface && et.NumMethod() == 0
	m := reflect.MakeMapWithSize(t, len(v.entries))

	for _, e := range v.entries {
		key := reflect.New(kt).Elem()
		if kt.Kind() == reflect.Interface {
			key.Set(reflect.ValueOf(e.Key))
		} else if err := setScalar(key, e.Key, b.cfg); err != nil {
			ce := &CoercionError{
				Field: b.fieldPath(), Value: e.Key, Type: kt, Err: err,
				Line: e.Pos.Line, Column: e.Pos.Column,
			}
			if err := b.fail(ce); err != nil {
				return err
			}
			continue
		}

		existing := m.MapIndex(key)
		b.push(e.Key)
		if existing.IsValid() && !promote {
			err := b.duplicate(e, et)
			b.pop()
			if err != nil {
				return err
			}
			continue
		}
		val := reflect.New(et).Elem()
		err := b.bind(val, e.Value)
		b.pop()
		if err != nil {
			return err
		}
		if existing.IsValid() {
			val = reflect.ValueOf(appendAny(existing.Interface(), val.Interface()))
		}
		m.SetMapIndex(key, val)
	}
	dst.Set(m)

	return nil
}

// appendAny folds a repeated occurrence into the value already stored.
func appendAny(existing, next any) []any {
	if l, ok := existing.([]any); ok {
		return append(l, next)
	}

	return []any{existing, next}
}

// duplicate applies the duplicate policy to a repeated key.
func (b *binder) duplicate(e Entry, t reflect.Type) error {
	b.stats.Duplicates++
	if b.cfg.duplicates == DuplicateError {
		return b.fail(&CoercionError{
			Field:  b.fieldPath(),
			Value:  e.Value.String(),
			Type:   t,
			Reason: "key occurs more than once",
			Err:    ErrDuplicateProperty,
			Line:   e.Pos.Line,
			Column: e.Pos.Column,
		})
	}
	b.cfg.logger.Debug("uon: dropping repeated key",
		"path", b.fieldPath(), "line", e.Pos.Line, "column", e.Pos.Column)

	return nil
}

// bindBean fills a struct property by property.
func (b *binder) bindBean(dst reflect.Value, v Value) error {
	t := dst.Type()
	switch v.Kind() {
	case KindNull:
		dst.SetZero()
		return nil
	case KindMap:
	case KindString:
		if v.Text() == "" {
			dst.SetZero()
			return nil
		}
		return b.mismatch(v, t, ErrNotAnObject)
	default:
		return b.mismatch(v, t, ErrNotAnObject)
	}

	d := Describe(t)
	seen := make(map[PropertyDescriptor]bool)
	for _, e := range v.entries {
		if e.Key == b.cfg.typeKey {
			continue
		}
		p, ok := d.Property(e.Key)
		if !ok {
			if err := b.unknown(t, e); err != nil {
				return err
			}
			continue
		}

		b.push(p.Name())
		err := b.bindProperty(dst, p, e, seen[p])
		if err == nil && !seen[p] {
			b.stats.PropertiesBound++
			if b.cfg.events.PropertyBound != nil {
				b.cfg.events.PropertyBound(b.fieldPath())
			}
		}
		b.pop()
		if err != nil {
			return err
		}
		seen[p] = true
	}

	return b.applyDefaults(dst, d, seen)
}

// bindProperty binds one occurrence of a property.
func (b *binder) bindProperty(bean reflect.Value, p PropertyDescriptor, e Entry, repeated bool) error {
	pt := p.Type()
	if isRepeatable(p) {
		if !repeated {
			p.Set(bean, reflect.Zero(pt.Type()))
		}
		return b.appendOccurrence(bean, p, e.Value)
	}
	if repeated {
		return b.duplicate(e, pt.Type())
	}
	if e.Value.isBareEmpty() {
		switch pt.Kind() {
		case TypeBean, TypeMap, TypeCollection:
			p.Set(bean, pt.New())
			return nil
		}
	}

	return b.setProperty(bean, p, e.Value)
}

// setProperty binds v into a copy of the property's current value and
// stores the copy.
func (b *binder) setProperty(bean reflect.Value, p PropertyDescriptor, v Value) error {
	val := reflect.New(p.Type().Type()).Elem()
	if cur := p.Get(bean); cur.IsValid() {
		val.Set(cur)
	}
	if err := b.bind(val, v); err != nil {
		return err
	}
	p.Set(bean, val)

	return nil
}

// appendOccurrence adds one occurrence to a slice property. A list extends
// the slice; anything else is appended as one element. Expanded properties
// whose elements are themselves lists take each occurrence whole.
func (b *binder) appendOccurrence(bean reflect.Value, p PropertyDescriptor, v Value) error {
	if v.IsNull() {
		return nil
	}
	pt := p.Type()
	elemType := pt.Elem().Type()
	elemKind := pt.Elem().Kind()
	expanded := p.Expanded() || b.cfg.expanded

	items := []Value{v}
	switch {
	case v.Kind() == KindList && (!expanded || (elemKind != TypeCollection && elemKind != TypeAny)):
		items = v.items
	case v.Kind() == KindMap && elemKind != TypeBean && elemKind != TypeMap && elemKind != TypeAny:
		if idx, ok := indexedItems(v); ok {
			items = idx
		}
	case v.isBareEmpty():
		items = nil
	}

	for _, item := range items {
		n := p.Get(bean).Len()
		if b.cfg.maxSliceLen > 0 && n >= b.cfg.maxSliceLen {
			return b.fail(b.coercion(item, pt.Type(), fmt.Errorf("%w: more than %d (use WithMaxSliceLen to increase)",
				ErrSliceExceedsMaxLength, b.cfg.maxSliceLen)))
		}
		elem := reflect.New(elemType).Elem()
		b.push("[" + strconv.Itoa(n) + "]")
		err := b.bind(elem, item)
		b.pop()
		if err != nil {
			return err
		}
		p.Append(bean, elem)
	}
	if p.Get(bean).IsNil() {
		p.Set(bean, reflect.MakeSlice(pt.Type(), 0, 0))
	}

	return nil
}

// unknown applies the unknown-property policy.
func (b *binder) unknown(t reflect.Type, e Entry) error {
	b.stats.UnknownProperties++
	b.push(e.Key)
	path := b.fieldPath()
	b.pop()

	switch b.cfg.unknown {
	case UnknownError:
		if b.cfg.events.UnknownProperty != nil {
			b.cfg.events.UnknownProperty(path)
		}
		return b.fail(&UnknownPropertyError{Type: t, Property: e.Key, Line: e.Pos.Line, Column: e.Pos.Column})
	case UnknownWarn:
		if b.cfg.events.UnknownProperty != nil {
			b.cfg.events.UnknownProperty(path)
		}
		b.cfg.logger.Warn("uon: unknown property",
			"type", t.String(), "path", path, "line", e.Pos.Line, "column", e.Pos.Column)
	default:
		b.cfg.logger.Debug("uon: ignoring unknown property", "type", t.String(), "path", path)
	}

	return nil
}

// applyDefaults binds the `default` tag of properties that were absent
// from the input and are still zero.
func (b *binder) applyDefaults(dst reflect.Value, d TypeDescriptor, seen map[PropertyDescriptor]bool) error {
	for _, p := range d.Properties() {
		text, ok := p.Default()
		if seen[p] || !ok {
			continue
		}
		if cur := p.Get(dst); cur.IsValid() && !cur.IsZero() {
			continue
		}
		b.push(p.Name())
		def, err := newSession([]rune(text), b.cfg).parseRoot()
		if err != nil {
			err = b.fail(&CoercionError{
				Field: b.fieldPath(), Value: text, Type: p.Type().Type(),
				Reason: "invalid default tag", Err: err,
			})
		} else if isRepeatable(p) {
			p.Set(dst, reflect.Zero(p.Type().Type()))
			err = b.appendOccurrence(dst, p, def)
		} else {
			err = b.setProperty(dst, p, def)
		}
		b.pop()
		if err != nil {
			return err
		}
	}

	return nil
}

// bindCollection fills a slice or array from a list, a map with positional
// keys, or a single value.
func (b *binder) bindCollection(dst reflect.Value, v Value) error {
	t := dst.Type()
	var items []Value
	switch v.Kind() {
	case KindNull:
		dst.SetZero()
		return nil
	case KindList:
		items = v.items
	case KindMap:
		if inner, ok := v.Get(b.cfg.valueKey); ok && v.Len() == 1 {
			return b.bind(dst, inner)
		}
		idx, ok := indexedItems(v)
		if !ok && v.Len() > 0 {
			return b.mismatch(v, t, ErrNotAList)
		}
		items = idx
	case KindString:
		if v.Text() != "" {
			items = []Value{v}
		}
	default:
		items = []Value{v}
	}

	if t.Kind() == reflect.Array {
		if len(items) > t.Len() {
			return b.fail(&InstantiationError{
				Type:   t,
				Reason: fmt.Sprintf("%d items do not fit into %d slots", len(items), t.Len()),
			})
		}
		arr := reflect.New(t).Elem()
		for i, item := range items {
			b.push("[" + strconv.Itoa(i) + "]")
			err := b.bind(arr.Index(i), item)
			b.pop()
			if err != nil {
				return err
			}
		}
		dst.Set(arr)

		return nil
	}

	if b.cfg.maxSliceLen > 0 && len(items) > b.cfg.maxSliceLen {
		return b.fail(b.coercion(v, t, fmt.Errorf("%w: %d > %d (use WithMaxSliceLen to increase)",
			ErrSliceExceedsMaxLength, len(items), b.cfg.maxSliceLen)))
	}
	s := reflect.MakeSlice(t, len(items), len(items))
	for i, item := range items {
		b.push("[" + strconv.Itoa(i) + "]")
		err := b.bind(s.Index(i), item)
		b.pop()
		if err != nil {
			return err
		}
	}
	dst.Set(s)

	return nil
}
