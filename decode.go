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
	"io"
	"net/url"
	"reflect"
	"slices"
	"time"
)

// parseInput decodes and parses s in value form or attribute-list form.
func parseInput(s string, attrs bool, cfg *config) (Value, error) {
	var src []rune
	switch {
	case cfg.decodes(attrs):
		decoded, err := decodeURL(s, attrs)
		if err != nil {
			return Null(), err
		}
		if !attrs {
			for i, c := range decoded {
				decoded[i] = literal(c)
			}
		}
		src = decoded
	case attrs:
		src = markStructural(s)
	default:
		src = []rune(s)
	}

	sess := newSession(src, cfg)
	if attrs {
		return sess.parseAttrList()
	}

	return sess.parseRoot()
}

// target checks that out is a non-nil pointer and returns it.
func target(out any) (reflect.Value, error) {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr {
		return reflect.Value{}, ErrOutMustBePointer
	}
	if rv.IsNil() {
		return reflect.Value{}, ErrOutPointerNil
	}

	return rv, nil
}

// unmarshal parses s and binds it into out.
func unmarshal(s string, attrs bool, out any, cfg *config) error {
	b := newBinder(cfg)
	defer b.finish(time.Now())

	rv, err := target(out)
	if err != nil {
		return err
	}
	v, err := parseInput(s, attrs, cfg)
	if err != nil {
		b.stats.Errors++
		return err
	}

	return b.commit(rv, v, attrs)
}

// unmarshalValue binds an already parsed value into out.
func unmarshalValue(v Value, attrs bool, out any, cfg *config) error {
	b := newBinder(cfg)
	defer b.finish(time.Now())

	rv, err := target(out)
	if err != nil {
		return err
	}

	return b.commit(rv, v, attrs)
}

// commit binds into a copy of the target, validates it and stores it only
// when everything succeeded.
func (b *binder) commit(rv reflect.Value, v Value, attrs bool) error {
	dst := rv.Elem()
	tmp := reflect.New(dst.Type())
	tmp.Elem().Set(dst)
	detach(tmp.Elem())

	if err := b.bindRoot(tmp.Elem(), v, attrs); err != nil {
		return err
	}
	if b.cfg.validator != nil {
		if err := b.cfg.validator.Validate(tmp.Interface()); err != nil {
			b.stats.Errors++
			return fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
	}
	dst.Set(tmp.Elem())

	return nil
}

// detach gives every embedded struct pointer reachable from the struct v
// its own copy of the pointee. Fields promoted through such a pointer are
// then written into the copy and never into the caller's value.
func detach(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := range t.NumField() {
		f := v.Field(i)
		if !f.CanSet() {
			continue
		}
		switch {
		case t.Field(i).Anonymous && f.Kind() == reflect.Ptr && !f.IsNil() && f.Type().Elem().Kind() == reflect.Struct:
			c := reflect.New(f.Type().Elem())
			c.Elem().Set(f.Elem())
			detach(c.Elem())
			f.Set(c)
		case f.Kind() == reflect.Struct:
			detach(f)
		}
	}
}

// valuesToMap parses every value of an already decoded url.Values in value
// form. Keys are visited in sorted order and repeats become separate
// entries.
func valuesToMap(values url.Values, cfg *config) (Value, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	m := NewMap()
	for _, k := range keys {
		for _, raw := range values[k] {
			v, err := parseInput(raw, false, cfg)
			if err != nil {
				return Null(), fmt.Errorf("parameter %q: %w", k, err)
			}
			m.entries = append(m.entries, Entry{Key: k, Value: v, Pos: v.pos})
		}
	}

	return m, nil
}

func unmarshalValues(values url.Values, out any, cfg *config) error {
	v, err := valuesToMap(values, cfg)
	if err != nil {
		return err
	}

	return unmarshalValue(v, true, out, cfg)
}

func unmarshalReader(r io.Reader, out any, cfg *config) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("uon: read input: %w", err)
	}

	return unmarshal(string(data), false, out, cfg)
}

func marshal(v any, query bool, cfg *config) (string, error) {
	w := newWriter(cfg)
	var err error
	if query {
		w.encode = true
		err = w.writeQuery(reflect.ValueOf(v))
	} else {
		err = w.write(reflect.ValueOf(v))
	}
	if err != nil {
		return "", err
	}

	return w.String(), nil
}
