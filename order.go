package tether

import (
	"cmp"
	"reflect"
)

// comparatorFor returns a three-way comparison for values whose dynamic type
// is t. Types with a `Compare(T) int` method use it; otherwise ordering comes
// from the underlying kind, byte arrays comparing lexicographically.
func comparatorFor(t reflect.Type) (func(a, b any) int, bool) {
	if m, ok := t.MethodByName("Compare"); ok {
		mt := m.Type
		if mt.NumIn() == 2 && mt.In(1) == t && mt.NumOut() == 1 && mt.Out(0).Kind() == reflect.Int {
			return func(a, b any) int {
				out := m.Func.Call([]reflect.Value{reflect.ValueOf(a), reflect.ValueOf(b)})
				return int(out[0].Int())
			}, true
		}
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(a, b any) int {
			return cmp.Compare(reflect.ValueOf(a).Int(), reflect.ValueOf(b).Int())
		}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(a, b any) int {
			return cmp.Compare(reflect.ValueOf(a).Uint(), reflect.ValueOf(b).Uint())
		}, true
	case reflect.Float32, reflect.Float64:
		return func(a, b any) int {
			return cmp.Compare(reflect.ValueOf(a).Float(), reflect.ValueOf(b).Float())
		}, true
	case reflect.String:
		return func(a, b any) int {
			return cmp.Compare(reflect.ValueOf(a).String(), reflect.ValueOf(b).String())
		}, true
	case reflect.Bool:
		return func(a, b any) int {
			x, y := reflect.ValueOf(a).Bool(), reflect.ValueOf(b).Bool()
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}, true
	case reflect.Array:
		if t.Elem().Kind() != reflect.Uint8 {
			return nil, false
		}
		return func(a, b any) int {
			x, y := reflect.ValueOf(a), reflect.ValueOf(b)
			for i := 0; i < x.Len(); i++ {
				if c := cmp.Compare(x.Index(i).Uint(), y.Index(i).Uint()); c != 0 {
					return c
				}
			}
			return 0
		}, true
	}
	return nil, false
}
