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
	"encoding"
	"net"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"time"
)

// TagName is the struct tag read by the binder and the writer.
const TagName = "uon"

// TypeKind classifies a target type for binding.
type TypeKind uint8

const (
	// TypeUnsupported cannot be bound (channels, functions, complex numbers).
	TypeUnsupported TypeKind = iota

	// TypeAny is an interface type or [Value]; the input decides the shape.
	TypeAny

	// TypeScalar is bound from a single token.
	TypeScalar

	// TypeMap is a Go map.
	TypeMap

	// TypeBean is a struct bound property by property.
	TypeBean

	// TypeCollection is a slice or array.
	TypeCollection
)

// String returns the name of the kind.
func (k TypeKind) String() string {
	switch k {
	case TypeAny:
		return "any"
	case TypeScalar:
		return "scalar"
	case TypeMap:
		return "map"
	case TypeBean:
		return "bean"
	case TypeCollection:
		return "collection"
	default:
		return "unsupported"
	}
}

// TypeDescriptor describes how a Go type takes part in binding.
// Descriptors are built once per type and shared; they are safe for
// concurrent use.
type TypeDescriptor interface {
	// Type returns the described Go type.
	Type() reflect.Type

	// Kind classifies the type. Pointer types take the kind of their
	// element.
	Kind() TypeKind

	// Elem describes the element type of a collection or the value type of
	// a map, and is nil otherwise.
	Elem() TypeDescriptor

	// Key describes the key type of a map and is nil otherwise.
	Key() TypeDescriptor

	// Property looks up a bean property by its notation name.
	Property(name string) (PropertyDescriptor, bool)

	// Properties returns bean properties in declaration order.
	Properties() []PropertyDescriptor

	// CanInstantiate reports whether New can create a value.
	CanInstantiate() bool

	// New returns a new, settable, empty value of the type.
	// Pointers point to a zero element; maps and slices are empty, not nil.
	New() reflect.Value
}

// PropertyDescriptor describes one bean property.
type PropertyDescriptor interface {
	// Name is the key of the property in notation.
	Name() string

	// Type describes the declared type of the property.
	Type() TypeDescriptor

	// Get returns the property of a bean; the result is invalid when an
	// embedded pointer on the way is nil.
	Get(bean reflect.Value) reflect.Value

	// Set stores v into the property, allocating embedded pointers.
	Set(bean, v reflect.Value)

	// Append adds elem to a slice property.
	Append(bean, elem reflect.Value)

	// Expanded reports whether the property is written as repeated keys.
	Expanded() bool

	// OmitEmpty reports whether zero values are left out when writing.
	OmitEmpty() bool

	// Default returns the text of the `default` tag and whether the tag is
	// present.
	Default() (string, bool)
}

// isRepeatable reports whether every occurrence of p adds elements instead
// of replacing the value. Only slices other than []byte qualify.
func isRepeatable(p PropertyDescriptor) bool {
	pt := p.Type()
	return pt.Kind() == TypeCollection && pt.Type().Kind() == reflect.Slice
}

// Type references for special type handling.
var (
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	timeType            = reflect.TypeFor[time.Time]()
	durationType        = reflect.TypeFor[time.Duration]()
	urlType             = reflect.TypeFor[url.URL]()
	ipType              = reflect.TypeFor[net.IP]()
	ipNetType           = reflect.TypeFor[net.IPNet]()
	regexpType          = reflect.TypeFor[regexp.Regexp]()
	valueType           = reflect.TypeFor[Value]()
	anyType             = reflect.TypeFor[any]()
)

// typeInfo is the reflect-backed TypeDescriptor.
type typeInfo struct {
	typ    reflect.Type
	base   reflect.Type // typ with pointers removed
	kind   TypeKind
	props  []*propInfo
	byName map[string]*propInfo
}

func (ti *typeInfo) Type() reflect.Type { return ti.typ }

func (ti *typeInfo) Kind() TypeKind { return ti.kind }

func (ti *typeInfo) Elem() TypeDescriptor {
	switch ti.kind {
	case TypeCollection, TypeMap:
		return Describe(ti.base.Elem())
	default:
		return nil
	}
}

func (ti *typeInfo) Key() TypeDescriptor {
	if ti.kind != TypeMap {
		return nil
	}

	return Describe(ti.base.Key())
}

func (ti *typeInfo) Property(name string) (PropertyDescriptor, bool) {
	p, ok := ti.byName[name]
	if !ok {
		return nil, false
	}

	return p, true
}

func (ti *typeInfo) Properties() []PropertyDescriptor {
	out := make([]PropertyDescriptor, len(ti.props))
	for i, p := range ti.props {
		out[i] = p
	}

	return out
}

func (ti *typeInfo) CanInstantiate() bool {
	return ti.kind == TypeScalar || ti.kind == TypeMap || ti.kind == TypeBean || ti.kind == TypeCollection
}

func (ti *typeInfo) New() reflect.Value {
	return newValue(ti.typ)
}

// newValue returns a settable empty value of t.
func newValue(t reflect.Type) reflect.Value {
	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Ptr:
		v.Set(newValue(t.Elem()).Addr())
	case reflect.Map:
		v.Set(reflect.MakeMap(t))
	case reflect.Slice:
		v.Set(reflect.MakeSlice(t, 0, 0))
	}

	return v
}

// propInfo is the reflect-backed PropertyDescriptor.
type propInfo struct {
	name         string
	fieldName    string
	index        []int
	typ          reflect.Type
	omitEmpty    bool
	expanded     bool
	defaultValue string
	hasDefault   bool
}

func (p *propInfo) Name() string { return p.name }

func (p *propInfo) Type() TypeDescriptor { return Describe(p.typ) }

func (p *propInfo) Expanded() bool { return p.expanded }

func (p *propInfo) OmitEmpty() bool { return p.omitEmpty }

func (p *propInfo) Default() (string, bool) { return p.defaultValue, p.hasDefault }

func (p *propInfo) Get(bean reflect.Value) reflect.Value {
	f, err := bean.FieldByIndexErr(p.index)
	if err != nil {
		return reflect.Value{}
	}

	return f
}

func (p *propInfo) Set(bean, v reflect.Value) {
	p.field(bean).Set(v)
}

func (p *propInfo) Append(bean, elem reflect.Value) {
	f := p.field(bean)
	f.Set(reflect.Append(f, elem))
}

// field walks the index path, allocating nil embedded pointers.
func (p *propInfo) field(bean reflect.Value) reflect.Value {
	v := bean
	for i, x := range p.index {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}

	return v
}

// kindOf classifies t for binding.
func kindOf(t reflect.Type) TypeKind {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch {
	case t == valueType:
		return TypeAny
	case isScalarType(t):
		return TypeScalar
	}

	switch t.Kind() {
	case reflect.Interface:
		return TypeAny
	case reflect.Struct:
		return TypeBean
	case reflect.Map:
		return TypeMap
	case reflect.Slice, reflect.Array:
		return TypeCollection
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return TypeScalar
	default:
		return TypeUnsupported
	}
}

// isScalarType reports whether t is bound from one token even though its
// reflect kind is composite.
func isScalarType(t reflect.Type) bool {
	switch t {
	case timeType, durationType, urlType, ipType, ipNetType, regexpType:
		return true
	}
	if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
		return true
	}

	return reflect.PointerTo(t).Implements(textUnmarshalerType)
}

// parseTypeInfo builds the descriptor of t.
func parseTypeInfo(t reflect.Type) *typeInfo {
	base := t
	for base.Kind() == reflect.Ptr {
		base = base.Elem()
	}
	ti := &typeInfo{typ: t, base: base, kind: kindOf(t)}
	if ti.kind == TypeBean {
		ti.props = parseProperties(base, nil)
		ti.byName = make(map[string]*propInfo, len(ti.props))
		for _, p := range ti.props {
			ti.byName[p.name] = p
		}
	}

	return ti
}

// parseProperties collects the properties of a struct, flattening untagged
// embedded structs. The first property with a given name wins.
func parseProperties(t reflect.Type, indexPrefix []int) []*propInfo {
	props := make([]*propInfo, 0, t.NumField())
	seen := make(map[string]bool, t.NumField())
	add := func(p *propInfo) {
		if seen[p.name] {
			return
		}
		seen[p.name] = true
		props = append(props, p)
	}

	for i := range t.NumField() {
		field := t.Field(i)
		index := append(append([]int(nil), indexPrefix...), i)

		tag, hasTag := field.Tag.Lookup(TagName)
		if tag == "-" {
			continue
		}
		name, opts := parseTag(tag)

		if field.Anonymous && name == "" {
			ft := field.Type
			if ft.Kind() == reflect.Ptr {
				if !field.IsExported() {
					continue
				}
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && !isScalarType(ft) {
				for _, p := range parseProperties(ft, index) {
					add(p)
				}

				continue
			}
		}
		if !field.IsExported() {
			continue
		}

		if !hasTag {
			jsonTag := field.Tag.Get("json")
			if jsonTag == "-" {
				continue
			}
			name, opts = parseTag(jsonTag)
		}
		if name == "" {
			name = field.Name
		}

		def, hasDef := field.Tag.Lookup("default")
		add(&propInfo{
			name:         name,
			fieldName:    field.Name,
			index:        index,
			typ:          field.Type,
			omitEmpty:    opts.has("omitempty"),
			expanded:     opts.has("expanded"),
			defaultValue: def,
			hasDefault:   hasDef,
		})
	}

	return props
}

// tagOptions is the comma-separated tail of a struct tag.
type tagOptions string

// parseTag splits a struct tag into its name and options.
func parseTag(tag string) (string, tagOptions) {
	name, opts, _ := strings.Cut(tag, ",")
	return strings.TrimSpace(name), tagOptions(opts)
}

// has reports whether opt is one of the options.
func (o tagOptions) has(opt string) bool {
	for s := range strings.SplitSeq(string(o), ",") {
		if strings.TrimSpace(s) == opt {
			return true
		}
	}

	return false
}
