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
	"bytes"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAddress struct {
	Street string `uon:"street"`
	City   string `uon:"city"`
	Zip    int    `uon:"zip"`
}

type testPerson struct {
	Name    string       `uon:"name"`
	Age     int          `uon:"age"`
	Tags    []string     `uon:"tags"`
	Address testAddress  `uon:"address"`
	Home    *testAddress `uon:"home"`
	Active  bool         `uon:"active"`
}

type testShape interface {
	area() float64
}

type testCircle struct {
	R float64 `uon:"r"`
}

func (c testCircle) area() float64 { return 3 * c.R * c.R }

type testSquare struct {
	S float64 `uon:"s"`
}

func (s *testSquare) area() float64 { return s.S * s.S }

type testDrawing struct {
	Main   testShape   `uon:"main"`
	Shapes []testShape `uon:"shapes"`
}

var shapeTypes = []Option{WithType[testCircle]("circle"), WithType[*testSquare]("square")}

func TestUnmarshal_Struct(t *testing.T) {
	t.Parallel()

	var p testPerson
	err := Unmarshal("(name=Ann,age=31,tags=@(a,b),address=(street='Main St',city=Oslo,zip=1234),active=true)", &p)
	require.NoError(t, err)

	assert.Equal(t, testPerson{
		Name:    "Ann",
		Age:     31,
		Tags:    []string{"a", "b"},
		Address: testAddress{Street: "Main St", City: "Oslo", Zip: 1234},
		Active:  true,
	}, p)
}

func TestUnmarshalQuery_Struct(t *testing.T) {
	t.Parallel()

	p, err := DecodeQuery[testPerson]("name=Ann+Lee&age=31&tags=a&tags=b&address=(city=Oslo)&home=(zip=7)&active=yes")
	require.NoError(t, err)

	assert.Equal(t, "Ann Lee", p.Name)
	assert.Equal(t, 31, p.Age)
	assert.Equal(t, []string{"a", "b"}, p.Tags)
	assert.Equal(t, "Oslo", p.Address.City)
	require.NotNil(t, p.Home)
	assert.Equal(t, 7, p.Home.Zip)
	assert.True(t, p.Active)
}

func TestUnmarshalQuery_ExpandedAndNestedAreEquivalent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"tags=a&tags=b&tags=c",
		"tags=@(a,b,c)",
		"tags=@(a,b)&tags=c",
		"tags=(0=a,1=b,2=c)",
		"tags=(2=c,0=a,1=b)",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			t.Parallel()

			p, err := DecodeQuery[testPerson](in)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b", "c"}, p.Tags)
		})
	}
}

func TestUnmarshalQuery_ExpandedNestedLists(t *testing.T) {
	t.Parallel()

	type params struct {
		Pairs  [][]int `uon:"pairs,expanded"`
		Nested [][]int `uon:"nested"`
	}

	p, err := DecodeQuery[params]("pairs=@(1,2)&pairs=@(3)&nested=@(@(4,5),@(6))")
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}, {3}}, p.Pairs)
	assert.Equal(t, [][]int{{4, 5}, {6}}, p.Nested)
}

func TestDecode_ValueKey(t *testing.T) {
	t.Parallel()

	n, err := Decode[int]("(_value=5)")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = DecodeQuery[int]("_value=6")
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	s, err := DecodeQuery[string]("_value=hello%20world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", s)

	l, err := DecodeQuery[[]int]("_value=@(1,2)")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, l)

	l, err = DecodeQuery[[]int]("0=1&1=2")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, l)

	a, err := DecodeQuery[any]("_value=x")
	require.NoError(t, err)
	assert.Equal(t, "x", a)

	n, err = Decode[int]("(_value=5)", WithValueKey("v"))
	require.Error(t, err)
	assert.Zero(t, n)
}

func TestDecode_Any(t *testing.T) {
	t.Parallel()

	m, err := DecodeQuery[map[string]any]("k=1&k=2&x=y")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": []any{int64(1), int64(2)}, "x": "y"}, m)

	a, err := DecodeQuery[any]("k=1&k=2")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": []any{int64(1), int64(2)}}, a)

	a, err = Decode[any]("@(true,null,(x=1.5))")
	require.NoError(t, err)
	assert.Equal(t, []any{true, nil, map[string]any{"x": 1.5}}, a)

	a, err = Decode[any]("")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestDecode_Maps(t *testing.T) {
	t.Parallel()

	m, err := Decode[map[int]string]("(1=a,2=b)")
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "a", 2: "b"}, m)

	_, err = Decode[map[int]string]("(x=a)")
	ce := AssertCoercionError(t, err, "")
	assert.Equal(t, "x", ce.Value)

	m2, err := DecodeQuery[map[string]string]("a=1&a=2")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, m2, "first occurrence wins")

	_, err = DecodeQuery[map[string]string]("a=1&a=2", WithDuplicatePolicy(DuplicateError))
	require.ErrorIs(t, err, ErrDuplicateProperty)

	_, err = DecodeQuery[map[string]int]("a=1&b=2&c=3", WithMaxMapSize(2))
	require.ErrorIs(t, err, ErrMapExceedsMaxSize)

	_, err = Decode[map[string]int]("@(1)")
	require.ErrorIs(t, err, ErrNotAnObject)
}

func TestDecode_Duplicates(t *testing.T) {
	t.Parallel()

	var stats Stats
	p, err := Decode[testPerson]("(name=a,name=b)", WithEvents(Events{Done: func(s Stats) { stats = s }}))
	require.NoError(t, err)
	assert.Equal(t, "a", p.Name)
	assert.Equal(t, 1, stats.Duplicates)

	_, err = Decode[testPerson]("(name=a,name=b)", WithDuplicatePolicy(DuplicateError))
	ce := AssertCoercionError(t, err, "name")
	require.ErrorIs(t, ce, ErrDuplicateProperty)
	assert.Equal(t, 1, ce.Line)
	assert.Equal(t, 9, ce.Column)
}

func TestDecode_UnknownProperties(t *testing.T) {
	t.Parallel()

	t.Run("ignore", func(t *testing.T) {
		t.Parallel()

		a, err := Decode[testAddress]("(city=x,foo=1)")
		require.NoError(t, err)
		assert.Equal(t, "x", a.City)
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()

		var seen []string
		_, err := Decode[testAddress]("(city=x,foo=1)",
			WithUnknownProperties(UnknownError),
			WithEvents(Events{UnknownProperty: func(path string) { seen = append(seen, path) }}))

		var upe *UnknownPropertyError
		require.ErrorAs(t, err, &upe)
		assert.Equal(t, "foo", upe.Property)
		assert.Equal(t, 1, upe.Line)
		assert.Equal(t, 9, upe.Column)
		assert.Equal(t, []string{"foo"}, seen)
	})

	t.Run("warn", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		var seen []string
		var stats Stats
		p, err := Decode[testPerson]("(address=(planet=mars,city=x))",
			WithUnknownProperties(UnknownWarn),
			WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
			WithEvents(Events{
				UnknownProperty: func(path string) { seen = append(seen, path) },
				Done:            func(s Stats) { stats = s },
			}))
		require.NoError(t, err)
		assert.Equal(t, "x", p.Address.City)
		assert.Equal(t, []string{"address.planet"}, seen)
		assert.Equal(t, 1, stats.UnknownProperties)
		assert.Contains(t, buf.String(), "level=WARN")
		assert.Contains(t, buf.String(), "path=address.planet")
	})
}

func TestDecode_Events(t *testing.T) {
	t.Parallel()

	var bound []string
	var stats Stats
	calls := 0
	_, err := Decode[testPerson]("(name=a,address=(city=x))", WithEvents(Events{
		PropertyBound: func(path string) { bound = append(bound, path) },
		Done: func(s Stats) {
			calls++
			stats = s
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "address.city", "address"}, bound)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 3, stats.PropertiesBound)
	assert.Zero(t, stats.Errors)
	assert.GreaterOrEqual(t, stats.Duration, time.Duration(0))

	var p testPerson
	err = Unmarshal("(name=a", &p, WithEvents(Events{Done: func(s Stats) { stats = s }}))
	AssertSyntaxError(t, err, ErrUnterminated)
	assert.Equal(t, 1, stats.Errors, "done runs on parse errors too")
}

func TestDecodeQuery_EmptyValues(t *testing.T) {
	t.Parallel()

	p, err := DecodeQuery[testPerson]("address=&home=&tags=&age=&name=")
	require.NoError(t, err)
	assert.Equal(t, testAddress{}, p.Address)
	require.NotNil(t, p.Home, "empty value creates an empty instance")
	assert.Equal(t, testAddress{}, *p.Home)
	assert.NotNil(t, p.Tags)
	assert.Empty(t, p.Tags)
	assert.Zero(t, p.Age)
	assert.Empty(t, p.Name)

	p, err = DecodeQuery[testPerson]("home")
	require.NoError(t, err)
	assert.Nil(t, p.Home, "a key without '=' is null")

	type numbers struct {
		N int           `uon:"n"`
		F float64       `uon:"f"`
		T time.Time     `uon:"t"`
		D time.Duration `uon:"d"`
		B bool          `uon:"b"`
	}
	n, err := DecodeQuery[numbers]("n=&f=&t=&d=&b=")
	require.NoError(t, err)
	assert.Equal(t, numbers{}, n)
}

func TestDecode_Defaults(t *testing.T) {
	t.Parallel()

	type page struct {
		Page  int      `uon:"page" default:"1"`
		Size  int      `uon:"size" default:"20"`
		Sort  []string `uon:"sort" default:"@(name,id)"`
		Query string   `uon:"q" default:"'*'"`
	}

	p, err := DecodeQuery[page]("size=50")
	require.NoError(t, err)
	assert.Equal(t, page{Page: 1, Size: 50, Sort: []string{"name", "id"}, Query: "*"}, p)

	p, err = DecodeQuery[page]("")
	require.NoError(t, err)
	assert.Equal(t, page{Page: 1, Size: 20, Sort: []string{"name", "id"}, Query: "*"}, p)

	p, err = DecodeQuery[page]("sort=x")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, p.Sort)

	type broken struct {
		N int `uon:"n" default:"(x"`
	}
	_, err = DecodeQuery[broken]("")
	AssertCoercionError(t, err, "n")
}

func TestDecode_Swap(t *testing.T) {
	t.Parallel()

	type celsius struct{ deg float64 }

	opt := WithSwap(
		func(c celsius) (float64, error) { return c.deg, nil },
		func(f float64) (celsius, error) { return celsius{deg: f}, nil },
	)
	c, err := Decode[celsius]("21.5", opt)
	require.NoError(t, err)
	assert.InDelta(t, 21.5, c.deg, 1e-9)

	s, err := Marshal(celsius{deg: 3}, opt)
	require.NoError(t, err)
	assert.Equal(t, "3", s)

	writeOnly := WithSwap[celsius, float64](func(c celsius) (float64, error) { return c.deg, nil }, nil)
	_, err = Decode[celsius]("1", writeOnly)
	var ie *InstantiationError
	require.ErrorAs(t, err, &ie)
}

func TestDecode_Converters(t *testing.T) {
	t.Parallel()

	type sortOrder string
	type params struct {
		Sort sortOrder     `uon:"sort"`
		TTL  time.Duration `uon:"ttl"`
		On   bool          `uon:"on"`
	}

	codec := MustNew(
		WithConverter(EnumConverter[sortOrder]("asc", "desc")),
		WithConverter(DurationConverter(map[string]time.Duration{"short": 5 * time.Second})),
		WithConverter(BoolConverter([]string{"enabled"}, []string{"disabled"})),
	)

	p, err := DecodeWith[params](codec, "(sort=DESC,ttl=short,on=enabled)")
	require.NoError(t, err)
	assert.Equal(t, params{Sort: "desc", TTL: 5 * time.Second, On: true}, p)

	_, err = DecodeWith[params](codec, "(sort=up)")
	ce := AssertCoercionError(t, err, "sort")
	require.ErrorIs(t, ce, ErrNotAllowed)

	_, err = DecodeWith[params](codec, "(on=yes)")
	require.ErrorIs(t, err, ErrInvalidBooleanValue)
}

func TestDecode_Discriminator(t *testing.T) {
	t.Parallel()

	d, err := Decode[testDrawing]("(main=(_type=circle,r=2),shapes=@((_type=square,s=3),(_type=circle,r=1)))", shapeTypes...)
	require.NoError(t, err)

	assert.Equal(t, testCircle{R: 2}, d.Main)
	require.Len(t, d.Shapes, 2)
	assert.Equal(t, &testSquare{S: 3}, d.Shapes[0])
	assert.Equal(t, testCircle{R: 1}, d.Shapes[1])
	assert.InDelta(t, 9.0, d.Shapes[0].area(), 1e-9)

	_, err = Decode[testDrawing]("(main=(_type=hexagon))", shapeTypes...)
	var ie *InstantiationError
	require.ErrorAs(t, err, &ie)
	require.ErrorIs(t, err, ErrUnknownTypeName)
	assert.Equal(t, 400, ie.HTTPStatus())

	_, err = Decode[testDrawing]("(main=(r=1))", shapeTypes...)
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 500, ie.HTTPStatus())

	d, err = Decode[testDrawing]("(main=(_type=circle,r=2))", WithTypeKey("kind"), WithType[testCircle]("circle"))
	require.Error(t, err, "the default key is ignored once renamed")

	d, err = Decode[testDrawing]("(main=(kind=circle,r=2))", WithTypeKey("kind"), WithType[testCircle]("circle"))
	require.NoError(t, err)
	assert.Equal(t, testCircle{R: 2}, d.Main)
}

func TestDecode_DiscriminatorIntoAny(t *testing.T) {
	t.Parallel()

	a, err := Decode[any]("(_type=circle,r=2)", WithTypes(map[string]any{"circle": testCircle{}}))
	require.NoError(t, err)
	assert.Equal(t, testCircle{R: 2}, a)

	a, err = Decode[any]("(_type=unknown,r=2)")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"_type": "unknown", "r": int64(2)}, a)
}

func TestUnmarshal_AllOrNothing(t *testing.T) {
	t.Parallel()

	p := testPerson{Name: "keep", Tags: []string{"old"}}
	err := Unmarshal("(name=new,tags=@(x),age=old)", &p)
	AssertCoercionError(t, err, "age")
	assert.Equal(t, "keep", p.Name)
	assert.Equal(t, []string{"old"}, p.Tags)

	err = Unmarshal("(age=40)", &p)
	require.NoError(t, err)
	assert.Equal(t, "keep", p.Name, "absent properties keep their values")
	assert.Equal(t, 40, p.Age)
}

func TestDecode_AllErrors(t *testing.T) {
	t.Parallel()

	_, err := Decode[testPerson]("(age=x,address=(zip=y),tags=@(a))", WithAllErrors())
	var multi *MultiError
	require.ErrorAs(t, err, &multi)
	require.Len(t, multi.Errors, 2)

	var first, second *CoercionError
	require.ErrorAs(t, multi.Errors[0], &first)
	require.ErrorAs(t, multi.Errors[1], &second)
	assert.Equal(t, "age", first.Field)
	assert.Equal(t, "address.zip", second.Field)
	assert.Equal(t, "multiple_binding_errors", multi.Code())

	_, err = Decode[testPerson]("(age=x,address=(zip=y))")
	var ce *CoercionError
	require.ErrorAs(t, err, &ce)
	assert.False(t, errors.As(err, &multi), "without the option the first error is returned")
}

func TestDecode_FieldPaths(t *testing.T) {
	t.Parallel()

	type params struct {
		Nums  []int         `uon:"nums"`
		Items []testAddress `uon:"items"`
	}

	_, err := Decode[params]("(nums=@(1,x))")
	ce := AssertCoercionError(t, err, "nums[1]")
	assert.Equal(t, "x", ce.Value)
	assert.Equal(t, 1, ce.Line)
	assert.Equal(t, 11, ce.Column)

	_, err = Decode[params]("(items=@((zip=1),(zip=two)))")
	AssertCoercionError(t, err, "items[1].zip")

	_, err = DecodeQuery[params]("nums=1&nums=x")
	AssertCoercionError(t, err, "nums[1]")
}

func TestDecode_Limits(t *testing.T) {
	t.Parallel()

	_, err := Decode[[]int]("@(1,2,3)", WithMaxSliceLen(2))
	require.ErrorIs(t, err, ErrSliceExceedsMaxLength)

	_, err = DecodeQuery[testPerson]("tags=a&tags=b&tags=c", WithMaxSliceLen(2))
	require.ErrorIs(t, err, ErrSliceExceedsMaxLength)

	l, err := Decode[[]int]("@(1,2,3)", WithMaxSliceLen(0))
	require.NoError(t, err)
	assert.Len(t, l, 3)

	arr, err := Decode[[2]int]("@(1)")
	require.NoError(t, err)
	assert.Equal(t, [2]int{1, 0}, arr)

	_, err = Decode[[2]int]("@(1,2,3)")
	var ie *InstantiationError
	require.ErrorAs(t, err, &ie)

	_, err = Decode[any]("@(@(@(1)))", WithMaxDepth(2))
	AssertSyntaxError(t, err, ErrNestingTooDeep)
}

func TestUnmarshal_TargetErrors(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Unmarshal("1", nil), ErrOutMustBePointer)
	require.ErrorIs(t, Unmarshal("1", 5), ErrOutMustBePointer)

	var p *int
	require.ErrorIs(t, Unmarshal("1", p), ErrOutPointerNil)

	_, err := Decode[chan int]("1")
	var ie *InstantiationError
	require.ErrorAs(t, err, &ie)
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Decode[testAddress]("@(1)")
	require.ErrorIs(t, err, ErrNotAnObject)

	_, err = Decode[int]("@(1)")
	AssertCoercionError(t, err, "")

	_, err = Decode[[]int]("(a=1)")
	require.ErrorIs(t, err, ErrNotAList)
}

func TestDecode_ValueTarget(t *testing.T) {
	t.Parallel()

	v, err := Decode[Value]("(a=1,a=2)")
	require.NoError(t, err)
	assert.Equal(t, "(a=1,a=2)", v.String(), "raw values are not flattened")

	type envelope struct {
		Kind string `uon:"kind"`
		Raw  Value  `uon:"raw"`
	}
	e, err := Decode[envelope]("(kind=x,raw=@(1,(b=2)))")
	require.NoError(t, err)
	assert.Equal(t, "x", e.Kind)
	assert.Equal(t, "@(1,(b=2))", e.Raw.String())
}

func TestDecode_Validator(t *testing.T) {
	t.Parallel()

	validator := NewTestValidator(func(v any) error {
		if v.(*testAddress).Zip == 0 {
			return errors.New("zip is required")
		}
		return nil
	})

	a := testAddress{City: "keep"}
	err := Unmarshal("(city=x)", &a, WithValidator(validator))
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, err.Error(), "zip is required")
	assert.Equal(t, "keep", a.City)

	err = Unmarshal("(city=x,zip=1)", &a, WithValidator(validator))
	require.NoError(t, err)
	assert.Equal(t, testAddress{City: "x", Zip: 1}, a)
}

func TestDecode_SpecialTypes(t *testing.T) {
	t.Parallel()

	type special struct {
		At   time.Time     `uon:"at"`
		Day  time.Time     `uon:"day"`
		D    time.Duration `uon:"d"`
		Link url.URL       `uon:"link"`
		Raw  []byte        `uon:"raw"`
		Q    string        `json:"q"`
		Skip string        `uon:"-"`
	}

	s, err := Decode[special]("(at='2024-01-02T10:00:00Z',day=2024-01-02,d=1h30m,link='https://x.dev/a?b\\=1',raw=aGk\\=,q=json,Skip=no)")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), s.At)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), s.Day)
	assert.Equal(t, 90*time.Minute, s.D)
	assert.Equal(t, "https://x.dev/a?b=1", s.Link.String())
	assert.Equal(t, []byte("hi"), s.Raw)
	assert.Equal(t, "json", s.Q)
	assert.Empty(t, s.Skip)

	_, err = Decode[special]("(day=02.01.2024)")
	AssertCoercionError(t, err, "day")

	s, err = Decode[special]("(day=02.01.2024)", WithTimeLayouts("02.01.2006"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), s.Day)
}

func TestDecode_Embedded(t *testing.T) {
	t.Parallel()

	type Base struct {
		ID int `uon:"id"`
	}
	type item struct {
		Base
		Name string `uon:"name"`
	}

	it, err := Decode[item]("(id=7,name=x)")
	require.NoError(t, err)
	assert.Equal(t, 7, it.ID)
	assert.Equal(t, "x", it.Name)
}

func TestUnmarshalQuery_EmbeddedPointerUntouchedOnError(t *testing.T) {
	t.Parallel()

	type Inner struct {
		A int `uon:"a"`
		B int `uon:"b"`
	}
	type holder struct {
		*Inner
	}
	type outer struct {
		*Inner
		Nested holder `uon:"nested"`
	}

	shared := &Inner{A: 7}
	nested := &Inner{A: 1}
	o := outer{Inner: shared, Nested: holder{Inner: nested}}

	err := UnmarshalQuery("a=9&nested=(a=5)&b=x", &o)
	AssertCoercionError(t, err, "b")
	assert.Same(t, shared, o.Inner)
	assert.Equal(t, Inner{A: 7}, *shared)
	assert.Equal(t, Inner{A: 1}, *nested)

	err = UnmarshalQuery("a=9&nested=(a=5)&b=3", &o)
	require.NoError(t, err)
	assert.Equal(t, Inner{A: 9, B: 3}, *o.Inner)
	assert.Equal(t, 5, o.Nested.A)
	assert.Equal(t, Inner{A: 7}, *shared, "the caller's pointee is replaced, not written")
}

func TestUnmarshalValues(t *testing.T) {
	t.Parallel()

	values := url.Values{
		"name": {"Ann"},
		"tags": {"a", "@(b,c)"},
		"home": {"(city=Oslo)"},
	}
	p, err := DecodeValues[testPerson](values)
	require.NoError(t, err)
	assert.Equal(t, "Ann", p.Name)
	assert.Equal(t, []string{"a", "b", "c"}, p.Tags)
	require.NotNil(t, p.Home)
	assert.Equal(t, "Oslo", p.Home.City)

	_, err = DecodeValues[testPerson](url.Values{"home": {"(city"}})
	require.ErrorIs(t, err, ErrUnterminated)
	assert.Contains(t, err.Error(), `parameter "home"`)
}

func TestUnmarshalReader(t *testing.T) {
	t.Parallel()

	var p testPerson
	require.NoError(t, UnmarshalReader(strings.NewReader("(name=R,age=2)"), &p))
	assert.Equal(t, "R", p.Name)
	assert.Equal(t, 2, p.Age)
}

func TestCodec_Bind(t *testing.T) {
	t.Parallel()

	codec := TestCodec(t)
	v, err := codec.ParseAttrs("name=Ann&age=3")
	require.NoError(t, err)

	var p testPerson
	require.NoError(t, codec.Bind(v, &p))
	assert.Equal(t, "Ann", p.Name)
	assert.Equal(t, 3, p.Age)

	var upe *UnknownPropertyError
	require.ErrorAs(t, codec.UnmarshalQuery("nope=1", &p), &upe)
}
