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

//go:build !integration

package msgpack

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"rivaas.dev/uon"
)

type msgOrder struct {
	ID    int64    `uon:"id"`
	Items []string `uon:"items"`
	Total float64  `uon:"total"`
	Paid  bool     `uon:"paid"`
}

func TestWrite_ReadsBack(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"(z=1,a=@(x,true,null,-7,2.5),m=(k='v w'),big=18446744073709551615,e=@(),o=())",
		"@('',null,@(@()))",
		"'1'",
		"-9223372036854775808",
	}

	for _, in := range inputs {
		v, err := uon.Parse(in)
		require.NoError(t, err, in)

		for _, opts := range [][]Option{nil, {WithCompactInts(), WithCompactFloats()}} {
			data, err := Write(v, opts...)
			require.NoError(t, err)

			back, err := Read(data)
			require.NoError(t, err)
			assert.True(t, v.Equal(back), "%s -> %s", in, back)
		}
	}
}

func TestWrite_KeepsOrderAndFolds(t *testing.T) {
	t.Parallel()

	v, err := uon.ParseAttrs("z=1&a=2&z=3")
	require.NoError(t, err)

	data, err := Write(v)
	require.NoError(t, err)

	s, err := ToUON(data)
	require.NoError(t, err)
	assert.Equal(t, "(z=@(1,3),a=2)", s)
}

func TestWrite_Compact(t *testing.T) {
	t.Parallel()

	data, err := Write(uon.NewInt(1))
	require.NoError(t, err)
	assert.Len(t, data, 9)

	data, err = Write(uon.NewInt(1), WithCompactInts())
	require.NoError(t, err)
	assert.Len(t, data, 1)

	data, err = Write(uon.NewNumber("2.5"))
	require.NoError(t, err)
	assert.Len(t, data, 9)

	data, err = Write(uon.NewNumber("2.5"), WithCompactFloats())
	require.NoError(t, err)
	assert.Len(t, data, 5)

	data, err = Write(uon.NewNumber("0.1"), WithCompactFloats())
	require.NoError(t, err)
	assert.Len(t, data, 9, "0.1 is not exact as float32")
}

func TestRead_ForeignData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "array", value: []any{1, "a", nil, true, 1.5}, want: "@(1,a,null,true,1.5)"},
		{name: "binary", value: []byte("hi"), want: "'aGk='"},
		{name: "integer keys", value: map[int]string{7: "x"}, want: "('7'=x)"},
		{name: "timestamp", value: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), want: "2024-01-02T03:04:05Z"},
		{name: "float32", value: float32(0.5), want: "0.5"},
		{name: "uint8", value: uint8(200), want: "200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := msgpack.Marshal(tt.value)
			require.NoError(t, err)

			got, err := ToUON(data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRead_Errors(t *testing.T) {
	t.Parallel()

	data, err := Write(uon.NewString("x"))
	require.NoError(t, err)

	_, err = Read(append(data, 0xc0))
	require.ErrorIs(t, err, ErrTrailingData)

	_, err = Read(nil)
	require.Error(t, err)

	full, err := msgpack.Marshal([]string{"abc", "def"})
	require.NoError(t, err)
	_, err = Read(full[:len(full)-1])
	require.Error(t, err)

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	require.NoError(t, enc.EncodeMapLen(1))
	require.NoError(t, enc.EncodeArrayLen(0))
	require.NoError(t, enc.EncodeNil())
	_, err = Read(buf.Bytes())
	require.ErrorIs(t, err, ErrNonScalarKey)
}

func TestMaxDepth(t *testing.T) {
	t.Parallel()

	v, err := uon.Parse("(a=(b=1))")
	require.NoError(t, err)

	_, err = Write(v, WithMaxDepth(0))
	require.ErrorIs(t, err, uon.ErrMaxDepthExceeded)

	data, err := Write(v, WithMaxDepth(1))
	require.NoError(t, err)

	_, err = Read(data, WithMaxDepth(0))
	require.ErrorIs(t, err, uon.ErrMaxDepthExceeded)
}

func TestStreams(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, uon.NewList(uon.NewString("a"))))
	require.NoError(t, WriteTo(&buf, uon.NewBool(false)))

	r := bytes.NewReader(buf.Bytes())
	first, err := ReadFrom(r)
	require.NoError(t, err)
	assert.Equal(t, "@(a)", first.String())

	second, err := ReadFrom(r)
	require.NoError(t, err)
	assert.Equal(t, "false", second.String())
}

func TestDecode(t *testing.T) {
	t.Parallel()

	data, err := FromUON("(id=42,items=@(a,b),total=9.5,paid=true)")
	require.NoError(t, err)

	order, err := Decode[msgOrder](data)
	require.NoError(t, err)
	assert.Equal(t, msgOrder{ID: 42, Items: []string{"a", "b"}, Total: 9.5, Paid: true}, order)

	codec := uon.MustNew(uon.WithUnknownProperties(uon.UnknownError))
	bad, err := FromUON("(id=1,coupon=x)")
	require.NoError(t, err)
	var out msgOrder
	err = Unmarshal(bad, &out, WithCodec(codec))
	var upe *uon.UnknownPropertyError
	require.ErrorAs(t, err, &upe)

	_, err = FromUON("(id=1")
	require.Error(t, err)
}
