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

// Package proto converts between UON values and google.protobuf.Value.
//
// This package extends rivaas.dev/uon with Protocol Buffers support, using
// the well-known structpb types of google.golang.org/protobuf. Like JSON,
// google.protobuf.Struct has no key order and stores numbers as doubles:
// struct fields are read back sorted by key and integers beyond 2^53 lose
// precision.
//
// Example:
//
//	pv, err := proto.ToProto(v)
//	data, err := proto.Marshal(v)
package proto

import (
	"errors"
	"fmt"
	"math"
	"maps"
	"slices"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"rivaas.dev/uon"
)

// ErrNotFinite is returned for numbers a double cannot represent.
var ErrNotFinite = errors.New("number is not finite as a double")

// Option configures conversion.
type Option func(*config)

// config holds Proto-specific configuration.
type config struct {
	codec     *uon.Codec
	maxDepth  int
	unmarshal proto.UnmarshalOptions
}

// WithCodec sets the codec used by Decode and Unmarshal to bind values.
func WithCodec(c *uon.Codec) Option {
	return func(cfg *config) {
		cfg.codec = c
	}
}

// WithMaxDepth limits the nesting of structs and lists. It also bounds the
// recursion of the wire decoder.
func WithMaxDepth(depth int) Option {
	return func(cfg *config) {
		cfg.maxDepth = depth
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{maxDepth: uon.DefaultMaxDepth}
	for _, opt := range opts {
		opt(cfg)
	}
	// A level of nesting is up to three messages on the wire.
	cfg.unmarshal = proto.UnmarshalOptions{RecursionLimit: 3*cfg.maxDepth + 3}

	return cfg
}

func (c *config) binder() *uon.Codec {
	if c.codec == nil {
		c.codec = uon.MustNew()
	}

	return c.codec
}

// ToProto converts v to a google.protobuf.Value. Repeated keys are folded
// into lists first.
func ToProto(v uon.Value, opts ...Option) (*structpb.Value, error) {
	return toProto(v.Flatten(), applyOptions(opts), 0)
}

func toProto(v uon.Value, cfg *config, depth int) (*structpb.Value, error) {
	switch v.Kind() {
	case uon.KindNull:
		return structpb.NewNullValue(), nil
	case uon.KindBool:
		b, err := v.Bool()
		if err != nil {
			return nil, err
		}
		return structpb.NewBoolValue(b), nil
	case uon.KindNumber:
		f, err := v.Float()
		if err != nil {
			return nil, err
		}
		if math.IsInf(f, 0) {
			return nil, fmt.Errorf("proto: %w: %s", ErrNotFinite, v.Text())
		}
		return structpb.NewNumberValue(f), nil
	case uon.KindString:
		return structpb.NewStringValue(v.Text()), nil
	}

	if depth > cfg.maxDepth {
		return nil, fmt.Errorf("proto: %w", uon.ErrMaxDepthExceeded)
	}

	if v.Kind() == uon.KindList {
		list := &structpb.ListValue{Values: make([]*structpb.Value, 0, v.Len())}
		for _, item := range v.Items() {
			pv, err := toProto(item, cfg, depth+1)
			if err != nil {
				return nil, err
			}
			list.Values = append(list.Values, pv)
		}
		return structpb.NewListValue(list), nil
	}

	s := &structpb.Struct{Fields: make(map[string]*structpb.Value, v.Len())}
	for _, e := range v.Entries() {
		pv, err := toProto(e.Value, cfg, depth+1)
		if err != nil {
			return nil, err
		}
		s.Fields[e.Key] = pv
	}

	return structpb.NewStructValue(s), nil
}

// FromProto converts a google.protobuf.Value to a Value. Struct fields are
// sorted by key and a nil or unset value is null.
func FromProto(pv *structpb.Value, opts ...Option) (uon.Value, error) {
	return fromProto(pv, applyOptions(opts), 0)
}

func fromProto(pv *structpb.Value, cfg *config, depth int) (uon.Value, error) {
	switch k := pv.GetKind().(type) {
	case *structpb.Value_BoolValue:
		return uon.NewBool(k.BoolValue), nil
	case *structpb.Value_NumberValue:
		return uon.NewFloat(k.NumberValue), nil
	case *structpb.Value_StringValue:
		return uon.NewString(k.StringValue), nil
	case *structpb.Value_ListValue:
		if depth > cfg.maxDepth {
			return uon.Null(), fmt.Errorf("proto: %w", uon.ErrMaxDepthExceeded)
		}
		values := k.ListValue.GetValues()
		items := make([]uon.Value, 0, len(values))
		for _, item := range values {
			v, err := fromProto(item, cfg, depth+1)
			if err != nil {
				return uon.Null(), err
			}
			items = append(items, v)
		}
		return uon.NewList(items...), nil
	case *structpb.Value_StructValue:
		if depth > cfg.maxDepth {
			return uon.Null(), fmt.Errorf("proto: %w", uon.ErrMaxDepthExceeded)
		}
		fields := k.StructValue.GetFields()
		entries := make([]uon.Entry, 0, len(fields))
		for _, key := range slices.Sorted(maps.Keys(fields)) {
			v, err := fromProto(fields[key], cfg, depth+1)
			if err != nil {
				return uon.Null(), err
			}
			entries = append(entries, uon.Entry{Key: key, Value: v})
		}
		return uon.NewMap(entries...), nil
	}

	return uon.Null(), nil
}

// Marshal encodes v as a serialized google.protobuf.Value.
func Marshal(v uon.Value, opts ...Option) ([]byte, error) {
	pv, err := ToProto(v, opts...)
	if err != nil {
		return nil, err
	}

	return proto.Marshal(pv)
}

// Read decodes a serialized google.protobuf.Value.
func Read(data []byte, opts ...Option) (uon.Value, error) {
	return read(data, applyOptions(opts))
}

func read(data []byte, cfg *config) (uon.Value, error) {
	var pv structpb.Value
	if err := cfg.unmarshal.Unmarshal(data, &pv); err != nil {
		return uon.Null(), fmt.Errorf("proto: %w", err)
	}

	return fromProto(&pv, cfg, 0)
}

// ToUON converts a serialized google.protobuf.Value to UON text.
func ToUON(data []byte, opts ...Option) (string, error) {
	v, err := Read(data, opts...)
	if err != nil {
		return "", err
	}

	return v.String(), nil
}

// FromUON converts UON text to a serialized google.protobuf.Value.
func FromUON(s string, opts ...Option) ([]byte, error) {
	cfg := applyOptions(opts)
	v, err := cfg.binder().Parse(s)
	if err != nil {
		return nil, err
	}
	pv, err := toProto(v.Flatten(), cfg, 0)
	if err != nil {
		return nil, err
	}

	return proto.Marshal(pv)
}

// Decode reads a serialized google.protobuf.Value into a new T using the
// UON binder.
//
// Example:
//
//	filter, err := proto.Decode[Filter](body)
func Decode[T any](data []byte, opts ...Option) (T, error) {
	var result T
	if err := Unmarshal(data, &result, opts...); err != nil {
		return result, err
	}

	return result, nil
}

// Unmarshal reads a serialized google.protobuf.Value into out using the
// UON binder.
func Unmarshal(data []byte, out any, opts ...Option) error {
	cfg := applyOptions(opts)
	v, err := read(data, cfg)
	if err != nil {
		return err
	}

	return cfg.binder().Bind(v, out)
}

// Bind binds an in-memory google.protobuf.Value into out.
func Bind(pv *structpb.Value, out any, opts ...Option) error {
	cfg := applyOptions(opts)
	v, err := fromProto(pv, cfg, 0)
	if err != nil {
		return err
	}

	return cfg.binder().Bind(v, out)
}
