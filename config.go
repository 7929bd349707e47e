package tether

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Config holds the bound value of every accessor of a contract. It is
// immutable and safe for concurrent reads.
type Config struct {
	contract *Contract
	props    *Properties
	values   map[string]reflect.Value
}

// New describes C, loads the aggregator's sources and binds the result.
func New[C any](ctx context.Context, agg *Aggregator, opts ...ContractOption) (*Config, error) {
	contract, err := Describe[C](opts...)
	if err != nil {
		return nil, err
	}
	props, err := agg.Load(ctx)
	if err != nil {
		return nil, err
	}
	return contract.Bind(props)
}

// Bind evaluates every accessor against props through the engine operation
// its descriptor was decided on. All failing accessors are reported in one
// *ValidationError. A nil props reads as empty.
func (c *Contract) Bind(props *Properties) (*Config, error) {
	cfg := &Config{
		contract: c,
		props:    props,
		values:   make(map[string]reflect.Value, len(c.Accessors)),
	}

	var fieldErrors []FieldError
	for i := range c.Accessors {
		d := &c.Accessors[i]
		v, err := c.evaluate(props, d)
		if err != nil {
			fieldErrors = append(fieldErrors, newFieldError(d, err))
			continue
		}
		cfg.values[d.Name] = v
	}

	if len(fieldErrors) > 0 {
		return nil, &ValidationError{FieldErrors: fieldErrors}
	}
	return cfg, nil
}

func newFieldError(d *Descriptor, err error) FieldError {
	code := ErrCodeInvalidType
	var ve *ValueError
	if errors.As(err, &ve) {
		code = ve.Code
	}
	return FieldError{
		FieldPath: d.Name,
		Code:      code,
		Message:   err.Error(),
		Err:       err,
	}
}

func (c *Contract) evaluate(p Lookup, d *Descriptor) (reflect.Value, error) {
	conv, err := elemConverter(d.Strategy, d.Elem, c.converters)
	if err != nil {
		return reflect.Value{}, err
	}

	var kconv Converter[any]
	order := d.Elem
	if d.Container.IsMap() {
		if kconv, err = elemConverter(d.KeyStrategy, d.MapKey, c.converters); err != nil {
			return reflect.Value{}, err
		}
		order = d.MapKey
	}
	var cmp func(a, b any) int
	if d.Container.IsSorted() {
		cmp, _ = comparatorFor(order)
	}

	var raw any
	switch d.Operation {
	case OpGet:
		raw, err = Get(p, conv, d.Key)
	case OpGetDefault:
		raw, err = GetDefault(p, conv, d.Key, d.Default)
	case OpGetOptional:
		raw, err = GetOptional(p, conv, d.Key)
	case OpGetList:
		raw, err = GetList(p, conv, d.Key, d.Split)
	case OpGetListDefault:
		raw, err = GetListDefault(p, conv, d.Key, d.Split, d.Default)
	case OpGetOptionalList:
		raw, err = GetOptionalList(p, conv, d.Key, d.Split)
	case OpGetSet:
		raw, err = GetSet(p, conv, d.Key, d.Split)
	case OpGetSetDefault:
		raw, err = GetSetDefault(p, conv, d.Key, d.Split, d.Default)
	case OpGetOptionalSet:
		raw, err = GetOptionalSet(p, conv, d.Key, d.Split)
	case OpGetSortedSet:
		raw, err = GetSortedSet(p, conv, d.Key, d.Split, cmp)
	case OpGetSortedSetDefault:
		raw, err = GetSortedSetDefault(p, conv, d.Key, d.Split, d.Default, cmp)
	case OpGetOptionalSortedSet:
		raw, err = GetOptionalSortedSet(p, conv, d.Key, d.Split, cmp)
	case OpGetMap:
		raw, err = GetMap(p, kconv, conv, d.Key, d.Split)
	case OpGetMapDefault:
		raw, err = GetMapDefault(p, kconv, conv, d.Key, d.Split, d.Default)
	case OpGetOptionalMap:
		raw, err = GetOptionalMap(p, kconv, conv, d.Key, d.Split)
	case OpGetSortedMap:
		raw, err = GetSortedMap(p, kconv, conv, d.Key, d.Split, cmp)
	case OpGetSortedMapDefault:
		raw, err = GetSortedMapDefault(p, kconv, conv, d.Key, d.Split, d.Default, cmp)
	case OpGetOptionalSortedMap:
		raw, err = GetOptionalSortedMap(p, kconv, conv, d.Key, d.Split, cmp)
	default:
		return reflect.Value{}, fmt.Errorf("tether: accessor %s has no operation", d.Name)
	}
	if err != nil {
		return reflect.Value{}, err
	}
	return materialize(d.Result, raw), nil
}

// materialize copies an engine result computed over `any` into a value of
// the accessor's declared type t.
func materialize(t reflect.Type, raw any) reflect.Value {
	switch r := raw.(type) {
	case Optional[any]:
		return optionalOf(t, r.Set, r.Value)
	case Optional[[]any]:
		return optionalOf(t, r.Set, r.Value)
	case Optional[Set[any]]:
		return optionalOf(t, r.Set, r.Value)
	case Optional[SortedSet[any]]:
		return optionalOf(t, r.Set, r.Value)
	case Optional[map[any]any]:
		return optionalOf(t, r.Set, r.Value)
	case Optional[SortedMap[any, any]]:
		return optionalOf(t, r.Set, r.Value)
	case []any:
		return sliceOf(t, r)
	case SortedSet[any]:
		return sliceOf(t, r)
	case Set[any]:
		out := reflect.MakeMapWithSize(t, len(r))
		for k := range r {
			out.SetMapIndex(valueOf(k, t.Key()), reflect.Zero(t.Elem()))
		}
		return out
	case map[any]any:
		out := reflect.MakeMapWithSize(t, len(r))
		for k, v := range r {
			out.SetMapIndex(valueOf(k, t.Key()), valueOf(v, t.Elem()))
		}
		return out
	case SortedMap[any, any]:
		out := reflect.MakeSlice(t, 0, len(r))
		for _, e := range r {
			entry := reflect.New(t.Elem()).Elem()
			entry.Field(0).Set(valueOf(e.Key, entry.Field(0).Type()))
			entry.Field(1).Set(valueOf(e.Value, entry.Field(1).Type()))
			out = reflect.Append(out, entry)
		}
		return out
	}
	return valueOf(raw, t)
}

func optionalOf(t reflect.Type, set bool, inner any) reflect.Value {
	out := reflect.New(t).Elem()
	if set {
		out.Field(0).Set(materialize(t.Field(0).Type, inner))
		out.Field(1).SetBool(true)
	}
	return out
}

func sliceOf(t reflect.Type, elems []any) reflect.Value {
	out := reflect.MakeSlice(t, 0, len(elems))
	for _, e := range elems {
		out = reflect.Append(out, valueOf(e, t.Elem()))
	}
	return out
}

func valueOf(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) && rv.Type().ConvertibleTo(t) {
		rv = rv.Convert(t)
	}
	return rv
}

// Contract returns the contract the configuration was bound from.
func (c *Config) Contract() *Contract { return c.contract }

// Properties returns the merged properties the configuration was bound from.
func (c *Config) Properties() *Properties { return c.props }

// Get returns the bound value of the named accessor.
func (c *Config) Get(name string) (any, bool) {
	v, ok := c.values[name]
	if !ok {
		return nil, false
	}
	return v.Interface(), true
}

// Value returns the bound value of the named accessor as T, or the zero
// value when the accessor is unknown or of another type.
//
//	func (c appConfig) Port() int { return tether.Value[int](c.cfg, "Port") }
func Value[T any](cfg *Config, name string) T {
	v, _ := cfg.Get(name)
	typed, _ := v.(T)
	return typed
}

// Equal reports whether both configurations bind the same contract type to
// the same values.
func (c *Config) Equal(other *Config) bool {
	if other == nil || c.contract.Type != other.contract.Type || len(c.values) != len(other.values) {
		return false
	}
	for name, v := range c.values {
		o, ok := other.values[name]
		if !ok || !reflect.DeepEqual(v.Interface(), o.Interface()) {
			return false
		}
	}
	return true
}

// String renders every accessor as name=value, secrets redacted.
func (c *Config) String() string {
	parts := make([]string, 0, len(c.contract.Accessors))
	for _, d := range c.contract.Accessors {
		value := redacted
		if !d.Secret {
			value = formatValueAsString(c.values[d.Name])
		}
		parts = append(parts, d.Name+"="+value)
	}
	return c.contract.Type.Name() + "[" + strings.Join(parts, ", ") + "]"
}
