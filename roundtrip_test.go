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

package uon

import (
	"strconv"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLine struct {
	SKU   string  `uon:"sku"`
	Qty   int     `uon:"qty"`
	Price float64 `uon:"price"`
}

type fakeOrder struct {
	ID       int64          `uon:"id"`
	Customer string         `uon:"customer"`
	Note     string         `uon:"note"`
	Link     string         `uon:"link"`
	Rate     float32        `uon:"rate"`
	Paid     bool           `uon:"paid"`
	Count    uint16         `uon:"count"`
	Tags     []string       `uon:"tags"`
	Lines    []fakeLine     `uon:"lines"`
	Meta     map[string]int `uon:"meta"`
	Ship     *fakeLine      `uon:"ship"`
}

func newFakeOrder(f *gofakeit.Faker) fakeOrder {
	o := fakeOrder{
		ID:       f.Int64(),
		Customer: f.Name(),
		Note:     f.Sentence(6),
		Link:     f.URL() + "?q=" + f.Word() + "&n=" + strconv.Itoa(f.Number(0, 99)),
		Rate:     f.Float32(),
		Paid:     f.Bool(),
		Count:    f.Uint16(),
		Meta:     make(map[string]int),
	}
	for range f.Number(1, 4) {
		o.Tags = append(o.Tags, f.Word())
	}
	for range f.Number(1, 3) {
		o.Lines = append(o.Lines, fakeLine{SKU: f.Word(), Qty: f.Number(-5, 500), Price: f.Float64Range(-1e6, 1e6)})
	}
	for range f.Number(0, 3) {
		o.Meta[f.Word()] = f.Number(0, 1000)
	}
	if f.Bool() {
		o.Ship = &fakeLine{SKU: f.Word(), Qty: 1, Price: f.Float64()}
	}

	return o
}

func TestRoundTrip_Value(t *testing.T) {
	t.Parallel()

	codec := TestCodec(t)
	for seed := int64(1); seed <= 25; seed++ {
		in := newFakeOrder(gofakeit.New(seed))

		s, err := codec.Marshal(in)
		require.NoError(t, err, "seed %d", seed)

		out, err := DecodeWith[fakeOrder](codec, s)
		require.NoError(t, err, "seed %d: %s", seed, s)
		assert.Equal(t, in, out, "seed %d: %s", seed, s)
	}
}

func TestRoundTrip_Query(t *testing.T) {
	t.Parallel()

	for _, expanded := range []bool{false, true} {
		codec := TestCodec(t, WithExpandedParams(expanded))
		for seed := int64(1); seed <= 25; seed++ {
			in := newFakeOrder(gofakeit.New(seed))

			qs, err := codec.MarshalQuery(in)
			require.NoError(t, err, "seed %d", seed)

			out, err := DecodeQueryWith[fakeOrder](codec, qs)
			require.NoError(t, err, "seed %d: %s", seed, qs)
			assert.Equal(t, in, out, "seed %d: %s", seed, qs)
		}
	}
}

func TestRoundTrip_Generic(t *testing.T) {
	t.Parallel()

	for seed := int64(1); seed <= 25; seed++ {
		in := newFakeOrder(gofakeit.New(seed))

		s := MustMarshal(t, in)
		v, err := Parse(s)
		require.NoError(t, err, "seed %d", seed)
		assert.Equal(t, s, v.String(), "seed %d", seed)

		var out fakeOrder
		require.NoError(t, MustNew().Bind(v, &out))
		assert.Equal(t, in, out, "seed %d", seed)
	}
}
