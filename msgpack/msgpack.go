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

// Package msgpack converts between UON values and MessagePack.
//
// This package extends rivaas.dev/uon with MessagePack support, using
// github.com/vmihailenco/msgpack/v5. Maps are read and written entry by
// entry so their order survives, binary data becomes base64 text and
// timestamps become RFC 3339 text.
//
// Example:
//
//	v, _ := uon.Parse("(q=go,tags=@(a,b))")
//	data, err := msgpack.Write(v)
//	back, err := msgpack.Read(data)
package msgpack

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"rivaas.dev/uon"
)

// Static errors for reading.
var (
	ErrUnsupportedCode = errors.New("unsupported MessagePack code")
	ErrNonScalarKey    = errors.New("map key must be a scalar")
	ErrTrailingData    = errors.New("trailing data after value")
)

// Option configures MessagePack conversion.
type Option func(*config)

// config holds MessagePack-specific configuration.
type config struct {
	codec         *uon.Codec
	compactInts   bool
	compactFloats bool
	maxDepth      int
}

// WithCodec sets the codec used by Decode and Unmarshal to bind values.
func WithCodec(c *uon.Codec) Option {
	return func(cfg *config) {
		cfg.codec = c
	}
}

// WithCompactInts writes integers in the smallest encoding that holds them.
func WithCompactInts() Option {
	return func(cfg *config) {
		cfg.compactInts = true
	}
}

// WithCompactFloats writes floats as float32 when that loses nothing.
func WithCompactFloats() Option {
	return func(cfg *config) {
		cfg.compactFloats = true
	}
}

// WithMaxDepth limits the nesting of maps and arrays.
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

	return cfg
}

func (c *config) binder() *uon.Codec {
	if c.codec == nil {
		c.codec = uon.MustNew()
	}

	return c.codec
}

// Read decodes one MessagePack value into a Value.
func Read(data []byte, opts ...Option) (uon.Value, error) {
	return read(data, applyOptions(opts))
}

func read(data []byte, cfg *config) (uon.Value, error) {
	r := bytes.NewReader(data)
	v, err := decodeValue(msgpack.NewDecoder(r), cfg, 0)
	if err != nil {
		return uon.Null(), err
	}
	if r.Len() > 0 {
		return uon.Null(), fmt.Errorf("msgpack: %w (%d bytes)", ErrTrailingData, r.Len())
	}

	return v, nil
}

// ReadFrom decodes one MessagePack value from r.
func ReadFrom(r io.Reader, opts ...Option) (uon.Value, error) {
	return decodeValue(msgpack.NewDecoder(r), applyOptions(opts), 0)
}

func decodeValue(dec *msgpack.Decoder, cfg *config, depth int) (uon.Value, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return uon.Null(), fmt.Errorf("msgpack: %w", err)
	}

	switch {
	case c == msgpcode.Nil:
		if err := dec.DecodeNil(); err != nil {
			return uon.Null(), fmt.Errorf("msgpack: %w", err)
		}
		return uon.Null(), nil

	case c == msgpcode.True || c == msgpcode.False:
		b, err := dec.DecodeBool()
		if err != nil {
			return uon.Null(), fmt.Errorf("msgpack: %w", err)
		}
		return uon.NewBool(b), nil

	case c == msgpcode.Uint64:
		u, err := dec.DecodeUint64()
		if err != nil {
			return uon.Null(), fmt.Errorf("msgpack: %w", err)
		}
		return uon.NewNumber(strconv.FormatUint(u, 10)), nil

	case msgpcode.IsFixedNum(c),
		c == msgpcode.Uint8, c == msgpcode.Uint16, c == msgpcode.Uint32,
		c == msgpcode.Int8, c == msgpcode.Int16, c == msgpcode.Int32, c == msgpcode.Int64:
		i, err := dec.DecodeInt64()
		if err != nil {
			return uon.Null(), fmt.Errorf("msgpack: %w", err)
		}
		return uon.NewInt(i), nil

	case c == msgpcode.Float || c == msgpcode.Double:
		f, err := dec.DecodeFloat64()
		if err != nil {
			return uon.Null(), fmt.Errorf("msgpack: %w", err)
		}
		return uon.NewFloat(f), nil

	case msgpcode.IsString(c):
		s, err := dec.DecodeString()
		if err != nil {
			return uon.Null(), fmt.Errorf("msgpack: %w", err)
		}
		return uon.NewString(s), nil

	case msgpcode.IsBin(c):
		b, err := dec.DecodeBytes()
		if err != nil {
			return uon.Null(), fmt.Errorf("msgpack: %w", err)
		}
		return uon.NewString(base64.StdEncoding.EncodeToString(b)), nil

	case msgpcode.IsFixedExt(c) || msgpcode.IsExt(c):
		x, err := dec.DecodeInterface()
		if err != nil {
			return uon.Null(), fmt.Errorf("msgpack: %w", err)
		}
		if t, ok := x.(time.Time); ok {
			return uon.NewString(t.UTC().Format(time.RFC3339Nano)), nil
		}
		return uon.Null(), fmt.Errorf("msgpack: %w: extension %T", ErrUnsupportedCode, x)
	}

	if depth > cfg.maxDepth {
		return uon.Null(), fmt.Errorf("msgpack: %w", uon.ErrMaxDepthExceeded)
	}

	switch {
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return uon.Null(), fmt.Errorf("msgpack: %w", err)
		}
		items := make([]uon.Value, 0, max(n, 0))
		for range n {
			item, err := decodeValue(dec, cfg, depth+1)
			if err != nil {
				return uon.Null(), err
			}
			items = append(items, item)
		}
		return uon.NewList(items...), nil

	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return uon.Null(), fmt.Errorf("msgpack: %w", err)
		}
		entries := make([]uon.Entry, 0, max(n, 0))
		for range n {
			k, err := decodeValue(dec, cfg, depth+1)
			if err != nil {
				return uon.Null(), err
			}
			if !k.IsScalar() {
				return uon.Null(), fmt.Errorf("msgpack: %w, got %s", ErrNonScalarKey, k.Kind())
			}
			v, err := decodeValue(dec, cfg, depth+1)
			if err != nil {
				return uon.Null(), err
			}
			entries = append(entries, uon.Entry{Key: k.Text(), Value: v})
		}
		return uon.NewMap(entries...), nil
	}

	return uon.Null(), fmt.Errorf("msgpack: %w 0x%02x", ErrUnsupportedCode, c)
}

// Write encodes v as MessagePack. Repeated keys are folded into arrays
// first.
func Write(v uon.Value, opts ...Option) ([]byte, error) {
	return write(v, applyOptions(opts))
}

func write(v uon.Value, cfg *config) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(&buf, v, cfg); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// WriteTo encodes v as MessagePack onto w.
func WriteTo(w io.Writer, v uon.Value, opts ...Option) error {
	return writeTo(w, v, applyOptions(opts))
}

func writeTo(w io.Writer, v uon.Value, cfg *config) error {
	enc := msgpack.NewEncoder(w)

	return encodeValue(enc, v.Flatten(), cfg, 0)
}

func encodeValue(enc *msgpack.Encoder, v uon.Value, cfg *config, depth int) error {
	var err error
	switch v.Kind() {
	case uon.KindNull:
		err = enc.EncodeNil()

	case uon.KindBool:
		var b bool
		if b, err = v.Bool(); err == nil {
			err = enc.EncodeBool(b)
		}

	case uon.KindString:
		err = enc.EncodeString(v.Text())

	case uon.KindNumber:
		err = encodeNumber(enc, v, cfg)

	case uon.KindList:
		if depth > cfg.maxDepth {
			return fmt.Errorf("msgpack: %w", uon.ErrMaxDepthExceeded)
		}
		if err = enc.EncodeArrayLen(v.Len()); err != nil {
			break
		}
		for _, item := range v.Items() {
			if err := encodeValue(enc, item, cfg, depth+1); err != nil {
				return err
			}
		}

	case uon.KindMap:
		if depth > cfg.maxDepth {
			return fmt.Errorf("msgpack: %w", uon.ErrMaxDepthExceeded)
		}
		if err = enc.EncodeMapLen(v.Len()); err != nil {
			break
		}
		for _, e := range v.Entries() {
			if err := enc.EncodeString(e.Key); err != nil {
				return fmt.Errorf("msgpack: %w", err)
			}
			if err := encodeValue(enc, e.Value, cfg, depth+1); err != nil {
				return err
			}
		}
	}
	if err != nil {
		return fmt.Errorf("msgpack: %w", err)
	}

	return nil
}

// encodeNumber writes integers that fit 64 bits as integers and everything
// else as a float. Without the compact options every number takes 9 bytes.
func encodeNumber(enc *msgpack.Encoder, v uon.Value, cfg *config) error {
	text := v.Text()
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		if cfg.compactInts {
			return enc.EncodeInt(i)
		}
		return enc.EncodeInt64(i)
	}
	if u, err := strconv.ParseUint(text, 10, 64); err == nil {
		if cfg.compactInts {
			return enc.EncodeUint(u)
		}
		return enc.EncodeUint64(u)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return err
	}
	if cfg.compactFloats && float64(float32(f)) == f {
		return enc.EncodeFloat32(float32(f))
	}

	return enc.EncodeFloat64(f)
}

// ToUON converts MessagePack data to UON text.
func ToUON(data []byte, opts ...Option) (string, error) {
	v, err := Read(data, opts...)
	if err != nil {
		return "", err
	}

	return v.String(), nil
}

// FromUON converts UON text to MessagePack.
func FromUON(s string, opts ...Option) ([]byte, error) {
	cfg := applyOptions(opts)
	v, err := cfg.binder().Parse(s)
	if err != nil {
		return nil, err
	}

	return write(v, cfg)
}

// Decode reads MessagePack data into a new T using the UON binder.
//
// Example:
//
//	order, err := msgpack.Decode[Order](body)
func Decode[T any](data []byte, opts ...Option) (T, error) {
	var result T
	if err := Unmarshal(data, &result, opts...); err != nil {
		return result, err
	}

	return result, nil
}

// Unmarshal reads MessagePack data into out using the UON binder.
func Unmarshal(data []byte, out any, opts ...Option) error {
	cfg := applyOptions(opts)
	v, err := read(data, cfg)
	if err != nil {
		return err
	}

	return cfg.binder().Bind(v, out)
}
