package tether

import (
	"cmp"
	"errors"
	"net/netip"
	"reflect"
	"testing"
	"time"
)

var engineProps = Map{
	"name":     "demo",
	"port":     "8080",
	"badport":  "eighty",
	"hosts":    "b,a,b,c",
	"spaced":   "a ;  b;c",
	"ports":    "3,1,2,1",
	"empty":    "",
	"holes":    "a,,b,",
	"limits":   "cpu|2,mem|4",
	"dup":      "cpu|2,cpu|4",
	"nopipe":   "cpu|2,mem",
	"pipes":    "url|http://x|y",
	"timeouts": "read|5s,write|1m",
}

func TestGet_Scalars(t *testing.T) {
	if got, err := Get(engineProps, String, "name"); err != nil || got != "demo" {
		t.Errorf("Get(name) = %q, %v", got, err)
	}
	if got, err := Get(engineProps, Int, "port"); err != nil || got != 8080 {
		t.Errorf("Get(port) = %d, %v", got, err)
	}
	if got, err := GetDefault(engineProps, Int, "missing", "42"); err != nil || got != 42 {
		t.Errorf("GetDefault(missing) = %d, %v", got, err)
	}
	if got, err := GetDefault(engineProps, Int, "port", "42"); err != nil || got != 8080 {
		t.Errorf("GetDefault(port) = %d, %v; the source must win over the default", got, err)
	}
	if got, err := GetOptional(engineProps, String, "missing"); err != nil || got.Set {
		t.Errorf("GetOptional(missing) = %+v, %v", got, err)
	}
	if got, err := GetOptional(engineProps, String, "empty"); err != nil || !got.Set || got.Value != "" {
		t.Errorf("GetOptional(empty) = %+v, %v; an empty value is present", got, err)
	}
}

func TestGet_Errors(t *testing.T) {
	tests := []struct {
		name     string
		call     func() error
		sentinel error
		code     string
	}{
		{"missing", func() error { _, err := Get(engineProps, String, "missing"); return err }, ErrMissingValue, ErrCodeRequired},
		{"bad value", func() error { _, err := Get(engineProps, Int, "badport"); return err }, ErrBadValue, ErrCodeInvalidType},
		{"bad default", func() error { _, err := GetDefault(engineProps, Int, "missing", "x"); return err }, ErrBadValue, ErrCodeInvalidType},
		{"bad optional", func() error { _, err := GetOptional(engineProps, Int, "badport"); return err }, ErrBadValue, ErrCodeInvalidType},
		{"missing list", func() error { _, err := GetList(engineProps, String, "missing", ","); return err }, ErrMissingValue, ErrCodeRequired},
		{"bad list element", func() error { _, err := GetList(engineProps, Int, "hosts", ","); return err }, ErrBadValue, ErrCodeInvalidType},
		{"bad split", func() error { _, err := GetList(engineProps, String, "hosts", "("); return err }, ErrBadValue, ErrCodeInvalidSplit},
		{"duplicate map key", func() error { _, err := GetMap(engineProps, String, Int, "dup", ","); return err }, ErrDuplicateKey, ErrCodeDuplicateKey},
		{"map token without pipe", func() error { _, err := GetMap(engineProps, String, Int, "nopipe", ","); return err }, ErrBadValue, ErrCodeInvalidType},
		{"bad map value", func() error { _, err := GetMap(engineProps, String, Int, "timeouts", ","); return err }, ErrBadValue, ErrCodeInvalidType},
		{"missing sorted map", func() error {
			_, err := GetSortedMap(engineProps, String, String, "missing", ",", cmp.Compare[string])
			return err
		}, ErrMissingValue, ErrCodeRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("error = %v, want %v", err, tt.sentinel)
			}
			var ve *ValueError
			if !errors.As(err, &ve) || ve.Code != tt.code {
				t.Errorf("error code = %v, want %s", ve, tt.code)
			}
		})
	}
}

func TestGetList(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		split string
		want  []string
	}{
		{"keeps order and duplicates", "hosts", ",", []string{"b", "a", "b", "c"}},
		{"regex split", "spaced", `\s*;\s*`, []string{"a", "b", "c"}},
		{"keeps empty tokens", "holes", ",", []string{"a", "", "b", ""}},
		{"empty value is one empty token", "empty", ",", []string{""}},
		{"no separator is one token", "name", ";", []string{"demo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetList(engineProps, String, tt.key, tt.split)
			if err != nil {
				t.Fatalf("GetList() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GetList() = %q, want %q", got, tt.want)
			}
		})
	}

	def, err := GetListDefault(engineProps, Int, "missing", ";", "1;2")
	if err != nil || !reflect.DeepEqual(def, []int{1, 2}) {
		t.Errorf("GetListDefault() = %v, %v", def, err)
	}

	opt, err := GetOptionalList(engineProps, String, "missing", ",")
	if err != nil || opt.Set {
		t.Errorf("GetOptionalList(missing) = %+v, %v", opt, err)
	}
	opt, err = GetOptionalList(engineProps, String, "hosts", ",")
	if err != nil || !opt.Set || len(opt.Value) != 4 {
		t.Errorf("GetOptionalList(hosts) = %+v, %v", opt, err)
	}
}

func TestGetSet(t *testing.T) {
	set, err := GetSet(engineProps, Int, "ports", ",")
	if err != nil {
		t.Fatalf("GetSet() error: %v", err)
	}
	if want := (Set[int]{1: {}, 2: {}, 3: {}}); !reflect.DeepEqual(set, want) {
		t.Errorf("GetSet() = %v, want %v", set, want)
	}

	def, err := GetSetDefault(engineProps, String, "missing", ",", "x,x")
	if err != nil || def.Len() != 1 || !def.Has("x") {
		t.Errorf("GetSetDefault() = %v, %v", def, err)
	}

	opt, err := GetOptionalSet(engineProps, String, "missing", ",")
	if err != nil || opt.Set {
		t.Errorf("GetOptionalSet(missing) = %+v, %v", opt, err)
	}
}

func TestGetSortedSet(t *testing.T) {
	sorted, err := GetSortedSet(engineProps, Int, "ports", ",", cmp.Compare[int])
	if err != nil {
		t.Fatalf("GetSortedSet() error: %v", err)
	}
	if want := (SortedSet[int]{1, 2, 3}); !reflect.DeepEqual(sorted, want) {
		t.Errorf("GetSortedSet() = %v, want %v", sorted, want)
	}

	addrs, err := GetSortedSetDefault(engineProps, Text[netip.Addr], "missing", ",", "10.0.0.2,10.0.0.1,10.0.0.2", netip.Addr.Compare)
	if err != nil {
		t.Fatalf("GetSortedSetDefault() error: %v", err)
	}
	want := SortedSet[netip.Addr]{netip.MustParseAddr("10.0.0.1"), netip.MustParseAddr("10.0.0.2")}
	if !reflect.DeepEqual(addrs, want) {
		t.Errorf("GetSortedSetDefault() = %v, want %v", addrs, want)
	}

	opt, err := GetOptionalSortedSet(engineProps, String, "hosts", ",", cmp.Compare[string])
	if err != nil || !opt.Set || !reflect.DeepEqual(opt.Value, SortedSet[string]{"a", "b", "c"}) {
		t.Errorf("GetOptionalSortedSet(hosts) = %+v, %v", opt, err)
	}
}

func TestGetMap(t *testing.T) {
	m, err := GetMap(engineProps, String, Int, "limits", ",")
	if err != nil {
		t.Fatalf("GetMap() error: %v", err)
	}
	if want := map[string]int{"cpu": 2, "mem": 4}; !reflect.DeepEqual(m, want) {
		t.Errorf("GetMap() = %v, want %v", m, want)
	}

	pipes, err := GetMap(engineProps, String, String, "pipes", ",")
	if err != nil || pipes["url"] != "http://x|y" {
		t.Errorf("GetMap(pipes) = %v, %v; only the first '|' separates", pipes, err)
	}

	def, err := GetMapDefault(engineProps, String, Duration, "missing", ";", "read|5s;write|1m")
	if err != nil || def["write"] != time.Minute {
		t.Errorf("GetMapDefault() = %v, %v", def, err)
	}

	opt, err := GetOptionalMap(engineProps, String, Int, "missing", ",")
	if err != nil || opt.Set {
		t.Errorf("GetOptionalMap(missing) = %+v, %v", opt, err)
	}
}

func TestGetSortedMap(t *testing.T) {
	m, err := GetSortedMap(engineProps, String, Duration, "timeouts", ",", cmp.Compare[string])
	if err != nil {
		t.Fatalf("GetSortedMap() error: %v", err)
	}
	want := SortedMap[string, time.Duration]{{Key: "read", Value: 5 * time.Second}, {Key: "write", Value: time.Minute}}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("GetSortedMap() = %v, want %v", m, want)
	}
	if v, ok := m.Get("write"); !ok || v != time.Minute {
		t.Errorf("SortedMap.Get(write) = %v, %v", v, ok)
	}
	if keys := m.Keys(); !reflect.DeepEqual(keys, []string{"read", "write"}) {
		t.Errorf("SortedMap.Keys() = %v", keys)
	}

	def, err := GetSortedMapDefault(engineProps, Int, String, "missing", ",", "2|b,1|a", cmp.Compare[int])
	if err != nil || def.Keys()[0] != 1 {
		t.Errorf("GetSortedMapDefault() = %v, %v", def, err)
	}

	opt, err := GetOptionalSortedMap(engineProps, String, Int, "limits", ",", cmp.Compare[string])
	if err != nil || !opt.Set || opt.Value.Len() != 2 {
		t.Errorf("GetOptionalSortedMap(limits) = %+v, %v", opt, err)
	}
}

func TestConverters(t *testing.T) {
	if _, err := Bool("yes"); err == nil {
		t.Error("Bool(yes) should fail")
	}
	if v, err := Int64("-9"); err != nil || v != -9 {
		t.Errorf("Int64(-9) = %d, %v", v, err)
	}
	if _, err := Uint("-1"); err == nil {
		t.Error("Uint(-1) should fail")
	}
	if v, err := Float64("1.5"); err != nil || v != 1.5 {
		t.Errorf("Float64(1.5) = %v, %v", v, err)
	}
	if _, err := UUID("not-a-uuid"); err == nil {
		t.Error("UUID should reject malformed input")
	}
	if u, err := URL("https://example.com/x"); err != nil || u.Host != "example.com" {
		t.Errorf("URL() = %v, %v", u, err)
	}
	if a, err := Text[netip.Addr]("::1"); err != nil || !a.IsLoopback() {
		t.Errorf("Text[netip.Addr](::1) = %v, %v", a, err)
	}
}
