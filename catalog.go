package tether

import (
	"encoding"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Converter turns raw text into a typed value.
type Converter[T any] func(string) (T, error)

// String is the identity converter.
func String(s string) (string, error) { return s, nil }

// Bool parses s with strconv.ParseBool.
func Bool(s string) (bool, error) { return strconv.ParseBool(s) }

// Int parses s as a base 10 int.
func Int(s string) (int, error) {
	v, err := strconv.ParseInt(s, 10, 0)
	return int(v), err
}

// Int64 parses s as a base 10 int64.
func Int64(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }

// Uint parses s as a base 10 uint.
func Uint(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 0)
	return uint(v), err
}

// Float64 parses s with strconv.ParseFloat.
func Float64(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// Duration parses s with time.ParseDuration.
func Duration(s string) (time.Duration, error) { return time.ParseDuration(s) }

// UUID parses s with uuid.Parse.
func UUID(s string) (uuid.UUID, error) { return uuid.Parse(s) }

// URL parses s with url.Parse.
func URL(s string) (*url.URL, error) { return url.Parse(s) }

// Text converts s through the type's UnmarshalText method.
func Text[T any, PT interface {
	*T
	encoding.TextUnmarshaler
}](s string) (T, error) {
	var v T
	err := PT(&v).UnmarshalText([]byte(s))
	return v, err
}

type staticParser struct {
	method string
	parse  func(s string, t reflect.Type) (any, error)
}

var (
	durationType        = reflect.TypeOf(time.Duration(0))
	uuidType            = reflect.TypeOf(uuid.UUID{})
	urlPtrType          = reflect.TypeOf((*url.URL)(nil))
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// staticByType lists parse functions bound to one exact type. They win over
// both UnmarshalText and the kind-based parsers.
var staticByType = map[reflect.Type]staticParser{
	durationType: {"time.ParseDuration", func(s string, _ reflect.Type) (any, error) { return time.ParseDuration(s) }},
	uuidType:     {"uuid.Parse", func(s string, _ reflect.Type) (any, error) { return uuid.Parse(s) }},
	urlPtrType:   {"url.Parse", func(s string, _ reflect.Type) (any, error) { return url.Parse(s) }},
}

func parseBool(s string, t reflect.Type) (any, error) {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return reflect.ValueOf(v).Convert(t).Interface(), nil
}

func parseInt(s string, t reflect.Type) (any, error) {
	v, err := strconv.ParseInt(s, 10, t.Bits())
	if err != nil {
		return nil, err
	}
	return reflect.ValueOf(v).Convert(t).Interface(), nil
}

func parseUint(s string, t reflect.Type) (any, error) {
	v, err := strconv.ParseUint(s, 10, t.Bits())
	if err != nil {
		return nil, err
	}
	return reflect.ValueOf(v).Convert(t).Interface(), nil
}

func parseFloat(s string, t reflect.Type) (any, error) {
	v, err := strconv.ParseFloat(s, t.Bits())
	if err != nil {
		return nil, err
	}
	return reflect.ValueOf(v).Convert(t).Interface(), nil
}

var staticByKind = map[reflect.Kind]staticParser{
	reflect.Bool:    {"strconv.ParseBool", parseBool},
	reflect.Int:     {"strconv.ParseInt", parseInt},
	reflect.Int8:    {"strconv.ParseInt", parseInt},
	reflect.Int16:   {"strconv.ParseInt", parseInt},
	reflect.Int32:   {"strconv.ParseInt", parseInt},
	reflect.Int64:   {"strconv.ParseInt", parseInt},
	reflect.Uint:    {"strconv.ParseUint", parseUint},
	reflect.Uint8:   {"strconv.ParseUint", parseUint},
	reflect.Uint16:  {"strconv.ParseUint", parseUint},
	reflect.Uint32:  {"strconv.ParseUint", parseUint},
	reflect.Uint64:  {"strconv.ParseUint", parseUint},
	reflect.Float32: {"strconv.ParseFloat", parseFloat},
	reflect.Float64: {"strconv.ParseFloat", parseFloat},
}

// staticMethods maps catalog names back to parsers for descriptors whose
// strategy was decided elsewhere.
var staticMethods = func() map[string]staticParser {
	m := make(map[string]staticParser)
	for _, p := range staticByType {
		m[p.method] = p
	}
	for _, p := range staticByKind {
		m[p.method] = p
	}
	return m
}()

type customConverter struct {
	name string
	typ  reflect.Type
	fn   func(string) (any, error)
}

// Converters is a registry of caller-supplied converters. A converter
// registered for a type is used for every accessor element of that type;
// the `converter:` tag directive selects one by name.
type Converters struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*customConverter
	byName map[string]*customConverter
}

// NewConverters returns an empty registry.
func NewConverters() *Converters {
	return &Converters{
		byType: make(map[reflect.Type]*customConverter),
		byName: make(map[string]*customConverter),
	}
}

// RegisterConverter adds fn to the registry under name, for element type T.
// A later registration for the same type or name replaces the earlier one.
func RegisterConverter[T any](c *Converters, name string, fn Converter[T]) {
	cc := &customConverter{
		name: name,
		typ:  reflect.TypeOf((*T)(nil)).Elem(),
		fn: func(s string) (any, error) {
			return fn(s)
		},
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byType[cc.typ] = cc
	c.byName[name] = cc
}

func (c *Converters) forType(t reflect.Type) (*customConverter, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	cc, ok := c.byType[t]
	return cc, ok
}

func (c *Converters) named(name string) (*customConverter, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	cc, ok := c.byName[name]
	return cc, ok
}

// strategyFor classifies t. Order: registered converter, exact-type catalog
// entry, UnmarshalText on named types, identity for string kinds, then the
// kind-based catalog.
func strategyFor(t reflect.Type, conv *Converters) Strategy {
	if cc, ok := conv.forType(t); ok {
		return Strategy{Kind: StrategyCustom, Method: cc.name}
	}
	if p, ok := staticByType[t]; ok {
		return Strategy{Kind: StrategyStaticParse, Method: p.method}
	}
	if t.PkgPath() != "" && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return Strategy{Kind: StrategyTextUnmarshal}
	}
	if t.Kind() == reflect.String {
		return Strategy{Kind: StrategyIdentity}
	}
	if p, ok := staticByKind[t.Kind()]; ok {
		return Strategy{Kind: StrategyStaticParse, Method: p.method}
	}
	return Strategy{}
}

// isAtomic reports whether t converts from a single token as a whole, even
// when its underlying kind is a slice or map (net.IP, for one).
func isAtomic(t reflect.Type, conv *Converters) bool {
	if t.Kind() != reflect.Slice && t.Kind() != reflect.Map {
		return true
	}
	return strategyFor(t, conv).Kind != StrategyUnresolved
}

// elemConverter builds the raw-text converter for a classified element type.
func elemConverter(s Strategy, t reflect.Type, conv *Converters) (Converter[any], error) {
	switch s.Kind {
	case StrategyIdentity:
		return func(raw string) (any, error) {
			return reflect.ValueOf(raw).Convert(t).Interface(), nil
		}, nil
	case StrategyStaticParse:
		p, ok := staticByType[t]
		if !ok {
			p, ok = staticMethods[s.Method]
		}
		if !ok {
			return nil, fmt.Errorf("unknown catalog function %q", s.Method)
		}
		return func(raw string) (any, error) {
			return p.parse(raw, t)
		}, nil
	case StrategyTextUnmarshal:
		return func(raw string) (any, error) {
			v := reflect.New(t)
			if err := v.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
				return nil, err
			}
			return v.Elem().Interface(), nil
		}, nil
	case StrategyCustom:
		cc, ok := conv.named(s.Method)
		if !ok {
			return nil, fmt.Errorf("converter %q is not registered", s.Method)
		}
		return cc.fn, nil
	}
	return nil, fmt.Errorf("no conversion strategy for %s", t)
}
