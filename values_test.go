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
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleMap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		keys  []string
		check func(t *testing.T, v *Values)
	}{
		{
			name:  "repeated keys",
			input: "?a=1&b=(x=2)&a=3&flag",
			keys:  []string{"a", "b", "flag"},
			check: func(t *testing.T, v *Values) {
				assert.Equal(t, []string{"1", "3"}, v.GetAll("a"))
				assert.Equal(t, "(x=2)", v.Get("b"))
				assert.True(t, v.Has("flag"))
				assert.Empty(t, v.Get("flag"))
			},
		},
		{
			name:  "decoding",
			input: "a=x+y&b=%26&c=%3D",
			keys:  []string{"a", "b", "c"},
			check: func(t *testing.T, v *Values) {
				assert.Equal(t, "x y", v.Get("a"))
				assert.Equal(t, "&", v.Get("b"))
				assert.Equal(t, "=", v.Get("c"))
			},
		},
		{
			name:  "value holds raw equals",
			input: "k=a=b",
			keys:  []string{"k"},
			check: func(t *testing.T, v *Values) {
				assert.Equal(t, "a=b", v.Get("k"))
			},
		},
		{
			name:  "empty pieces",
			input: "&&a=&",
			keys:  []string{"a"},
			check: func(t *testing.T, v *Values) {
				assert.Equal(t, []string{""}, v.GetAll("a"))
			},
		},
		{
			name:  "empty",
			input: "",
			keys:  nil,
			check: func(t *testing.T, v *Values) {
				assert.Zero(t, v.Len())
				assert.False(t, v.Has("a"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := ParseSimpleMap(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.keys, v.Keys())
			tt.check(t, v)
		})
	}
}

func TestParseSimpleMap_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseSimpleMap("a=%4")
	se := AssertSyntaxError(t, err, ErrInvalidEncoding)
	assert.Equal(t, 2, se.Offset)
}

func TestValues_Encode(t *testing.T) {
	t.Parallel()

	v, err := ParseSimpleMap("?a=1&b=(x=2)&a=x+y&flag")
	require.NoError(t, err)
	assert.Equal(t, "a=1&a=x%20y&b=(x%3D2)&flag", v.Encode())

	again, err := ParseSimpleMap(v.Encode())
	require.NoError(t, err)
	assert.Equal(t, v.URLValues(), again.URLValues())
}

func TestValues_URLValues(t *testing.T) {
	t.Parallel()

	v, err := ParseSimpleMap("name=Ann&tags=a&tags=@(b,c)&home=(city=Oslo)")
	require.NoError(t, err)

	uv := v.URLValues()
	assert.Equal(t, url.Values{
		"name": {"Ann"},
		"tags": {"a", "@(b,c)"},
		"home": {"(city=Oslo)"},
	}, uv)

	p, err := DecodeValues[testPerson](uv)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, p.Tags)

	uv["name"][0] = "changed"
	assert.Equal(t, "Ann", v.Get("name"), "URLValues returns a copy")
}
