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

package toml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/uon"
)

const sampleDoc = `
title = "TOML"

[owner]
name = "Tom"
dob = 1979-05-27T07:32:00Z

[database]
ports = [8000, 8001]
enabled = true
temp = 79.5

[[products]]
name = "Hammer"
sku = 738594937

[[products]]
name = "Nail"
color = "gray"
`

type tomlDatabase struct {
	Ports   []int   `uon:"ports"`
	Enabled bool    `uon:"enabled"`
	Temp    float64 `uon:"temp"`
}

type tomlProduct struct {
	Name  string `uon:"name"`
	SKU   int64  `uon:"sku"`
	Color string `uon:"color" default:"none"`
}

type tomlDoc struct {
	Title    string        `uon:"title"`
	Database tomlDatabase  `uon:"database"`
	Products []tomlProduct `uon:"products"`
}

func TestRead_KeepsDocumentOrder(t *testing.T) {
	t.Parallel()

	s, err := ToUON([]byte(sampleDoc))
	require.NoError(t, err)
	assert.Equal(t,
		"(title=TOML,owner=(name=Tom,dob=1979-05-27T07:32:00Z),"+
			"database=(ports=@(8000,8001),enabled=true,temp=79.5),"+
			"products=@((name=Hammer,sku=738594937),(name=Nail,color=gray)))",
		s)
}

func TestRead_DottedKeys(t *testing.T) {
	t.Parallel()

	s, err := ToUON([]byte("z = 1\na.b = 2\nc = 3\n"))
	require.NoError(t, err)
	assert.Equal(t, "(z=1,a=(b=2),c=3)", s)
}

func TestRead_Errors(t *testing.T) {
	t.Parallel()

	_, err := Read([]byte("a = "))
	require.Error(t, err)

	_, err = Read([]byte("[a.b.c]\nd = 1\n"), WithMaxDepth(2))
	require.ErrorIs(t, err, uon.ErrMaxDepthExceeded)

	_, err = Read([]byte("[a.b.c]\nd = 1\n"), WithMaxDepth(3))
	require.NoError(t, err)
}

func TestWrite(t *testing.T) {
	t.Parallel()

	v, err := uon.Parse("(name=Ada,age=36,x=null)")
	require.NoError(t, err)

	out, err := Write(v)
	require.NoError(t, err)
	assert.Equal(t, "age = 36\nname = \"Ada\"\n", string(out))

	v, err = uon.Parse("(n=2.5,m=3)")
	require.NoError(t, err)
	out, err = Write(v)
	require.NoError(t, err)
	assert.Equal(t, "m = 3\nn = 2.5\n", string(out), "fractions are not truncated")
}

func TestWrite_Errors(t *testing.T) {
	t.Parallel()

	_, err := Write(uon.NewList(uon.NewInt(1)))
	require.ErrorIs(t, err, ErrNotTable)

	v, err := uon.Parse("(a=@(1,null))")
	require.NoError(t, err)
	_, err = Write(v)
	require.ErrorIs(t, err, ErrNullInArray)

	v, err = uon.Parse("(a=(b=(c=1)))")
	require.NoError(t, err)
	_, err = Write(v, WithMaxDepth(1))
	require.ErrorIs(t, err, uon.ErrMaxDepthExceeded)
}

func TestWrite_ReadsBack(t *testing.T) {
	t.Parallel()

	v, err := uon.ParseAttrs("k=1&k=2&owner=(name=Tom,tags=@(a,'b c'))&items=@((n=1),(n=2.5))&flag=true")
	require.NoError(t, err)

	out, err := Write(v, WithIndent("  "))
	require.NoError(t, err)

	back, err := Read(out)
	require.NoError(t, err, string(out))
	assert.Equal(t, v.Flatten().Interface(), back.Interface())
}

func TestFromUON(t *testing.T) {
	t.Parallel()

	out, err := FromUON("(enabled=true)")
	require.NoError(t, err)
	assert.Equal(t, "enabled = true\n", string(out))

	_, err = FromUON("@(1)")
	require.ErrorIs(t, err, ErrNotTable)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	doc, err := Decode[tomlDoc]([]byte(sampleDoc))
	require.NoError(t, err)
	assert.Equal(t, "TOML", doc.Title)
	assert.Equal(t, tomlDatabase{Ports: []int{8000, 8001}, Enabled: true, Temp: 79.5}, doc.Database)
	assert.Equal(t, []tomlProduct{
		{Name: "Hammer", SKU: 738594937, Color: "none"},
		{Name: "Nail", Color: "gray"},
	}, doc.Products)

	codec := uon.MustNew(uon.WithUnknownProperties(uon.UnknownError))
	var strict tomlDoc
	err = Unmarshal([]byte(sampleDoc), &strict, WithCodec(codec))
	var upe *uon.UnknownPropertyError
	require.ErrorAs(t, err, &upe)
	assert.Equal(t, "owner", upe.Property)
}
