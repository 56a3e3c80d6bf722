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
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"
)

// UnknownPropertyPolicy defines how keys without a matching struct property
// are handled.
type UnknownPropertyPolicy int

const (
	// UnknownIgnore silently ignores unknown properties.
	// This is the default policy.
	UnknownIgnore UnknownPropertyPolicy = iota

	// UnknownWarn logs a warning and emits Events.UnknownProperty but
	// continues binding.
	UnknownWarn

	// UnknownError returns an [*UnknownPropertyError] on the first unknown
	// property.
	UnknownError
)

// String returns the policy name.
func (p UnknownPropertyPolicy) String() string {
	switch p {
	case UnknownIgnore:
		return "ignore"
	case UnknownWarn:
		return "warn"
	case UnknownError:
		return "error"
	default:
		return fmt.Sprintf("UnknownPropertyPolicy(%d)", int(p))
	}
}

// UnmarshalText parses "ignore", "warn" or "error".
func (p *UnknownPropertyPolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "ignore", "":
		*p = UnknownIgnore
	case "warn":
		*p = UnknownWarn
	case "error":
		*p = UnknownError
	default:
		return fmt.Errorf("%w: unknown property policy %q", ErrInvalidConfig, text)
	}

	return nil
}

// DuplicatePolicy defines how a repeated key is handled when it is bound to
// a property or map entry that holds a single value.
type DuplicatePolicy int

const (
	// DuplicateIgnore keeps the first occurrence and drops the rest.
	// This is the default policy.
	DuplicateIgnore DuplicatePolicy = iota

	// DuplicateError fails binding with [ErrDuplicateProperty].
	DuplicateError
)

// String returns the policy name.
func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateIgnore:
		return "ignore"
	case DuplicateError:
		return "error"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

// UnmarshalText parses "ignore" or "error".
func (p *DuplicatePolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "ignore", "first", "":
		*p = DuplicateIgnore
	case "error":
		*p = DuplicateError
	default:
		return fmt.Errorf("%w: unknown duplicate policy %q", ErrInvalidConfig, text)
	}

	return nil
}

// Security and resilience limits.
const (
	// DefaultMaxDepth is the default maximum nesting depth of objects and
	// arrays, on parse and on write.
	DefaultMaxDepth = 32

	// DefaultMaxMapSize is the default maximum number of entries bound into
	// one Go map.
	DefaultMaxMapSize = 1000

	// DefaultMaxSliceLen is the default maximum number of elements bound into
	// one slice.
	DefaultMaxSliceLen = 10_000
)

// Reserved keys.
const (
	// DefaultTypeKey names the discriminator entry of polymorphic objects.
	DefaultTypeKey = "_type"

	// DefaultValueKey carries a scalar written as an attribute list.
	DefaultValueKey = "_value"
)

// ErrInvalidConfig is returned by [New] for inconsistent options.
var ErrInvalidConfig = errors.New("invalid configuration")

// TypeConverter converts a scalar token to a custom type.
// Registered converters are checked before built-in type handling.
type TypeConverter func(string) (any, error)

// Validator checks a bound value. It is called once per decode with a
// pointer to the fully bound result, before the result is stored.
type Validator interface {
	Validate(v any) error
}

// Events provides hooks for observability without coupling.
type Events struct {
	// PropertyBound is called after a struct property has been bound.
	// path: dot-separated property path (e.g., "address.city")
	PropertyBound func(path string)

	// UnknownProperty is called for keys without a matching property.
	// Only triggered when the policy is UnknownWarn or UnknownError.
	UnknownProperty func(path string)

	// Done is called at the end of every decode with statistics.
	// Always called, even on error.
	Done func(stats Stats)
}

// Stats tracks one decode operation.
type Stats struct {
	PropertiesBound   int           // Struct properties bound
	UnknownProperties int           // Keys without a matching property
	Duplicates        int           // Repeated keys dropped or rejected
	Errors            int           // Errors hit during binding
	Duration          time.Duration // Parse and bind time
}

// decodeMode selects percent-decoding of input.
type decodeMode uint8

const (
	decodeAuto decodeMode = iota // attribute lists only
	decodeOn
	decodeOff
)

// swap converts between a type and the wire type it is written as.
type swap struct {
	wire   reflect.Type
	encode func(reflect.Value) (reflect.Value, error)
	decode func(reflect.Value) (reflect.Value, error) // nil for one-way swaps
}

// config holds the settings shared by parsing, binding and writing.
// It is immutable once a Codec is built; per-call options work on a clone.
type config struct {
	maxDepth    int
	maxSliceLen int
	maxMapSize  int

	typeKey  string
	valueKey string

	unknown    UnknownPropertyPolicy
	duplicates DuplicatePolicy
	allErrors  bool

	expanded   bool
	sortedKeys bool
	trimNulls  bool
	urlEncode  bool
	urlDecode  decodeMode

	timeLayouts []string
	converters  map[reflect.Type]TypeConverter
	swaps       map[reflect.Type]*swap
	types       map[string]reflect.Type
	typeNames   map[reflect.Type]string

	events    Events
	logger    *slog.Logger
	validator Validator
}

// Option configures a [Codec] or a single call.
type Option func(*config)

// defaultTimeLayouts are tried in order when parsing time.Time values.
var defaultTimeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func defaultConfig() *config {
	return &config{
		maxDepth:    DefaultMaxDepth,
		maxSliceLen: DefaultMaxSliceLen,
		maxMapSize:  DefaultMaxMapSize,
		typeKey:     DefaultTypeKey,
		valueKey:    DefaultValueKey,
		trimNulls:   true,
		timeLayouts: slices.Clone(defaultTimeLayouts),
		logger:      slog.New(slog.DiscardHandler),
	}
}

// validate checks that the configuration is consistent.
func (c *config) validate() error {
	var errs []error
	if c.maxDepth <= 0 {
		errs = append(errs, fmt.Errorf("%w: max depth must be positive, got %d", ErrInvalidConfig, c.maxDepth))
	}
	if c.maxSliceLen < 0 {
		errs = append(errs, fmt.Errorf("%w: max slice length must not be negative, got %d", ErrInvalidConfig, c.maxSliceLen))
	}
	if c.maxMapSize < 0 {
		errs = append(errs, fmt.Errorf("%w: max map size must not be negative, got %d", ErrInvalidConfig, c.maxMapSize))
	}
	if c.typeKey == "" || c.valueKey == "" {
		errs = append(errs, fmt.Errorf("%w: reserved keys must not be empty", ErrInvalidConfig))
	} else if c.typeKey == c.valueKey {
		errs = append(errs, fmt.Errorf("%w: type key and value key are both %q", ErrInvalidConfig, c.typeKey))
	}
	for t, sw := range c.swaps {
		if sw.wire == t {
			errs = append(errs, fmt.Errorf("%w: swap for %s maps the type to itself", ErrInvalidConfig, t))
		}
	}
	if c.logger == nil {
		errs = append(errs, fmt.Errorf("%w: logger must not be nil", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// clone returns a copy whose maps can be modified independently.
func (c *config) clone() *config {
	cp := *c
	cp.timeLayouts = slices.Clone(c.timeLayouts)
	cp.converters = maps.Clone(c.converters)
	cp.swaps = maps.Clone(c.swaps)
	cp.types = maps.Clone(c.types)
	cp.typeNames = maps.Clone(c.typeNames)

	return &cp
}

// with returns c unchanged when opts is empty and a validated clone otherwise.
func (c *config) with(opts []Option) (*config, error) {
	if len(opts) == 0 {
		return c, nil
	}
	cp := c.clone()
	for _, opt := range opts {
		opt(cp)
	}
	if err := cp.validate(); err != nil {
		return nil, err
	}

	return cp, nil
}

// WithMaxDepth sets the maximum nesting depth of objects and arrays.
// When exceeded, parsing returns [ErrNestingTooDeep] and writing returns
// [ErrMaxDepthExceeded]. The default is DefaultMaxDepth (32).
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithMaxSliceLen sets the maximum number of elements bound into one slice.
// When exceeded, binding returns [ErrSliceExceedsMaxLength].
// The default is DefaultMaxSliceLen (10,000). Set to 0 to disable the limit.
func WithMaxSliceLen(n int) Option {
	return func(c *config) {
		c.maxSliceLen = n
	}
}

// WithMaxMapSize sets the maximum number of entries bound into one map.
// When exceeded, binding returns [ErrMapExceedsMaxSize].
// The default is DefaultMaxMapSize (1000). Set to 0 to disable the limit.
func WithMaxMapSize(n int) Option {
	return func(c *config) {
		c.maxMapSize = n
	}
}

// WithTypeKey renames the discriminator key (default "_type").
func WithTypeKey(key string) Option {
	return func(c *config) {
		c.typeKey = key
	}
}

// WithValueKey renames the reserved value key (default "_value").
func WithValueKey(key string) Option {
	return func(c *config) {
		c.valueKey = key
	}
}

// WithUnknownProperties sets how to handle keys without a matching struct
// property.
//
// Example:
//
//	uon.DecodeQuery[Params](qs, uon.WithUnknownProperties(uon.UnknownError))
func WithUnknownProperties(policy UnknownPropertyPolicy) Option {
	return func(c *config) {
		c.unknown = policy
	}
}

// WithDuplicatePolicy sets how a repeated key bound to a single-valued
// property is handled. The default keeps the first occurrence.
func WithDuplicatePolicy(policy DuplicatePolicy) Option {
	return func(c *config) {
		c.duplicates = policy
	}
}

// WithAllErrors collects every binding error into a [*MultiError] instead of
// stopping at the first one. The target is still left untouched on error.
func WithAllErrors() Option {
	return func(c *config) {
		c.allErrors = true
	}
}

// WithExpandedParams writes every collection property of a top-level
// attribute list as repeated keys (tags=a&tags=b) instead of one nested
// value (tags=@(a,b)). Parsing accepts both forms regardless.
func WithExpandedParams(enabled bool) Option {
	return func(c *config) {
		c.expanded = enabled
	}
}

// WithSortedKeys writes map and struct entries sorted by key.
func WithSortedKeys() Option {
	return func(c *config) {
		c.sortedKeys = true
	}
}

// WithTrimNulls controls whether nil properties and map entries are left out
// when writing. The default is true.
func WithTrimNulls(enabled bool) Option {
	return func(c *config) {
		c.trimNulls = enabled
	}
}

// WithURLEncoding percent-encodes content when writing with [Marshal].
// [MarshalQuery] always encodes.
func WithURLEncoding(enabled bool) Option {
	return func(c *config) {
		c.urlEncode = enabled
	}
}

// WithURLDecoding controls whether input is percent-decoded before parsing.
// The default is true for attribute lists and false for single values.
// With decoding off, raw '&' and '=' still separate attribute pairs.
func WithURLDecoding(enabled bool) Option {
	return func(c *config) {
		if enabled {
			c.urlDecode = decodeOn
		} else {
			c.urlDecode = decodeOff
		}
	}
}

// decodes reports whether input of the given form is percent-decoded.
func (c *config) decodes(attrs bool) bool {
	switch c.urlDecode {
	case decodeOn:
		return true
	case decodeOff:
		return false
	default:
		return attrs
	}
}

// WithTimeLayouts adds time layouts tried after the defaults when binding
// time.Time values.
//
// Example:
//
//	uon.Decode[Event](s, uon.WithTimeLayouts("02.01.2006", "01/02/2006"))
func WithTimeLayouts(layouts ...string) Option {
	return func(c *config) {
		c.timeLayouts = append(c.timeLayouts, layouts...)
	}
}

// WithConverter registers a converter for T. It is consulted before built-in
// handling and works for both T and *T.
//
// Example:
//
//	uon.WithConverter[uuid.UUID](uuid.Parse)
func WithConverter[T any](fn func(string) (T, error)) Option {
	return func(c *config) {
		if c.converters == nil {
			c.converters = make(map[reflect.Type]TypeConverter)
		}
		c.converters[reflect.TypeFor[T]()] = func(s string) (any, error) {
			return fn(s)
		}
	}
}

// WithTypeConverter registers a converter using a reflect.Type.
// Prefer [WithConverter] when the type is known at compile time.
func WithTypeConverter(targetType reflect.Type, converter TypeConverter) Option {
	return func(c *config) {
		if c.converters == nil {
			c.converters = make(map[reflect.Type]TypeConverter)
		}
		c.converters[targetType] = converter
	}
}

// WithSwap registers a two-way replacement: values of T are written as W and
// bound by binding W and calling unswap. A nil unswap makes the swap
// write-only; binding into T then fails with an [*InstantiationError].
//
// Example:
//
//	uon.WithSwap(
//	    func(c Color) (string, error) { return c.Hex(), nil },
//	    ParseColor,
//	)
func WithSwap[T, W any](swapFn func(T) (W, error), unswap func(W) (T, error)) Option {
	return func(c *config) {
		if c.swaps == nil {
			c.swaps = make(map[reflect.Type]*swap)
		}
		sw := &swap{
			wire: reflect.TypeFor[W](),
			encode: func(v reflect.Value) (reflect.Value, error) {
				w, err := swapFn(v.Interface().(T))
				if err != nil {
					return reflect.Value{}, err
				}

				return reflect.ValueOf(&w).Elem(), nil
			},
		}
		if unswap != nil {
			sw.decode = func(v reflect.Value) (reflect.Value, error) {
				t, err := unswap(v.Interface().(W))
				if err != nil {
					return reflect.Value{}, err
				}

				return reflect.ValueOf(&t).Elem(), nil
			}
		}
		c.swaps[reflect.TypeFor[T]()] = sw
	}
}

// WithType registers T under name for discriminator lookup. Binding an
// object whose discriminator is name into an interface creates a T, and
// writing a T held in an interface adds the discriminator.
func WithType[T any](name string) Option {
	return func(c *config) {
		c.registerType(name, reflect.TypeFor[T]())
	}
}

// WithTypes registers several types at once; each map value is a zero value
// or pointer of the type to register.
//
// Example:
//
//	uon.WithTypes(map[string]any{"circle": Circle{}, "square": (*Square)(nil)})
func WithTypes(types map[string]any) Option {
	return func(c *config) {
		for name, sample := range types {
			t := reflect.TypeOf(sample)
			if t == nil {
				continue
			}
			c.registerType(name, t)
		}
	}
}

func (c *config) registerType(name string, t reflect.Type) {
	if c.types == nil {
		c.types = make(map[string]reflect.Type)
		c.typeNames = make(map[reflect.Type]string)
	}
	c.types[name] = t
	c.typeNames[t] = name
}

// typeName returns the registered name of t or *t.
func (c *config) typeName(t reflect.Type) (string, bool) {
	if name, ok := c.typeNames[t]; ok {
		return name, true
	}
	if t.Kind() == reflect.Ptr {
		name, ok := c.typeNames[t.Elem()]
		return name, ok
	}
	name, ok := c.typeNames[reflect.PointerTo(t)]

	return name, ok
}

// WithEvents sets observability hooks.
//
// Example:
//
//	uon.WithEvents(uon.Events{
//	    UnknownProperty: func(path string) {
//	        log.Printf("unknown property %s", path)
//	    },
//	    Done: func(stats uon.Stats) {
//	        log.Printf("bound %d properties", stats.PropertiesBound)
//	    },
//	})
func WithEvents(events Events) Option {
	return func(c *config) {
		c.events = events
	}
}

// WithLogger sets the logger for dropped keys and warnings.
// The default discards all records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithValidator runs v on every successfully bound result.
// A failure is wrapped with [ErrValidationFailed] and the target is left
// untouched.
func WithValidator(v Validator) Option {
	return func(c *config) {
		c.validator = v
	}
}
