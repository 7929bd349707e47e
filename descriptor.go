package tether

import (
	"fmt"
	"reflect"
)

// ContainerKind is the shape of the value an accessor returns.
type ContainerKind int

const (
	KindScalar ContainerKind = iota
	KindOptional
	KindList
	KindSet
	KindSortedSet
	KindOptionalList
	KindOptionalSet
	KindOptionalSortedSet
	KindMap
	KindSortedMap
	KindOptionalMap
	KindOptionalSortedMap

	numKinds
)

var kindNames = [numKinds]string{
	KindScalar:            "SCALAR",
	KindOptional:          "OPTIONAL",
	KindList:              "LIST",
	KindSet:               "SET",
	KindSortedSet:         "SORTED_SET",
	KindOptionalList:      "OPTIONAL_LIST",
	KindOptionalSet:       "OPTIONAL_SET",
	KindOptionalSortedSet: "OPTIONAL_SORTED_SET",
	KindMap:               "MAP",
	KindSortedMap:         "SORTED_MAP",
	KindOptionalMap:       "OPTIONAL_MAP",
	KindOptionalSortedMap: "OPTIONAL_SORTED_MAP",
}

func (k ContainerKind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("ContainerKind(%d)", int(k))
	}
	return kindNames[k]
}

// IsOptional reports whether absence is an acceptable outcome.
func (k ContainerKind) IsOptional() bool {
	switch k {
	case KindOptional, KindOptionalList, KindOptionalSet, KindOptionalSortedSet, KindOptionalMap, KindOptionalSortedMap:
		return true
	}
	return false
}

// IsMulti reports whether the raw value is split into tokens.
func (k ContainerKind) IsMulti() bool {
	return k != KindScalar && k != KindOptional
}

// IsMap reports whether tokens are key|value pairs.
func (k ContainerKind) IsMap() bool {
	switch k {
	case KindMap, KindSortedMap, KindOptionalMap, KindOptionalSortedMap:
		return true
	}
	return false
}

// IsSorted reports whether the result is ordered by its elements (or keys).
func (k ContainerKind) IsSorted() bool {
	switch k {
	case KindSortedSet, KindOptionalSortedSet, KindSortedMap, KindOptionalSortedMap:
		return true
	}
	return false
}

// IsSet reports whether the result de-duplicates its elements.
func (k ContainerKind) IsSet() bool {
	switch k {
	case KindSet, KindOptionalSet, KindSortedSet, KindOptionalSortedSet:
		return true
	}
	return false
}

func (k ContainerKind) optional() ContainerKind {
	switch k {
	case KindScalar:
		return KindOptional
	case KindList:
		return KindOptionalList
	case KindSet:
		return KindOptionalSet
	case KindSortedSet:
		return KindOptionalSortedSet
	case KindMap:
		return KindOptionalMap
	case KindSortedMap:
		return KindOptionalSortedMap
	}
	return k
}

// StrategyKind enumerates the ways raw text becomes a typed value.
type StrategyKind int

const (
	StrategyUnresolved StrategyKind = iota
	StrategyIdentity
	StrategyStaticParse
	StrategyTextUnmarshal
	StrategyCustom
)

func (k StrategyKind) String() string {
	switch k {
	case StrategyIdentity:
		return "IDENTITY"
	case StrategyStaticParse:
		return "STATIC_PARSE"
	case StrategyTextUnmarshal:
		return "TEXT_UNMARSHAL"
	case StrategyCustom:
		return "CUSTOM"
	default:
		return "UNRESOLVED"
	}
}

// Strategy is a resolved conversion strategy. Method names the catalog
// function for StaticParse and the registered converter for Custom.
type Strategy struct {
	Kind   StrategyKind
	Method string
}

func (s Strategy) String() string {
	if s.Method == "" {
		return s.Kind.String()
	}
	return s.Kind.String() + "(" + s.Method + ")"
}

// Descriptor is the validated description of one accessor.
//
// The validator chain fills it in step by step: the declaration fields
// (Contract, Name, Method and the tag directives) come first, each rule then
// either rejects the descriptor or adds what it established.
type Descriptor struct {
	Contract reflect.Type
	Name     string
	Method   reflect.Type

	Result    reflect.Type
	Container ContainerKind
	Elem      reflect.Type
	MapKey    reflect.Type

	Strategy    Strategy
	KeyStrategy Strategy

	Key        string
	Default    string
	HasDefault bool
	Split      string
	NoPrefix   bool
	Secret     bool
	Converter  string

	Operation Operation
}

// Contract is a validated accessor contract, ready to bind.
type Contract struct {
	Type      reflect.Type
	Prefix    string
	Split     string
	Accessors []Descriptor

	converters *Converters
}

// Name returns the contract's type name.
func (c *Contract) Name() string {
	return c.Type.String()
}

// Accessor returns the descriptor of the named accessor.
func (c *Contract) Accessor(name string) (Descriptor, bool) {
	for _, d := range c.Accessors {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}
