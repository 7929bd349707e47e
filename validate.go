package tether

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/Azhovan/tether/internal/normalize"
)

// Rule is one step of the accessor validator chain. A rule either rejects
// the descriptor or returns it enriched with what the rule established.
type Rule func(Descriptor) (Descriptor, error)

// Validate runs rules in order and stops at the first rejection.
func Validate(d Descriptor, rules []Rule) (Descriptor, error) {
	for _, rule := range rules {
		var err error
		if d, err = rule(d); err != nil {
			return d, err
		}
	}
	return d, nil
}

// validatorChain returns the ordered rules for one contract. Later rules rely
// on what earlier ones established, so the order is fixed.
func validatorChain(cfg *contractConfig) []Rule {
	return []Rule{
		requireNoParameters,
		requireSingleResult,
		requireInterfaceContract,
		rejectAbstractElements(cfg.converters),
		unwrapContainer(cfg.converters),
		rejectDefaultOnOptional,
		requireConvertible(cfg.converters),
		classifyStrategy(cfg.converters),
		requireOrdering,
		inheritContract(cfg.prefix, cfg.split),
		requireSplitPattern,
	}
}

func reject(d Descriptor, code, format string, args ...any) (Descriptor, error) {
	var contract string
	if d.Contract != nil {
		contract = d.Contract.String()
	}
	return d, &DescriptorError{
		Contract: contract,
		Accessor: d.Name,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	}
}

func requireNoParameters(d Descriptor) (Descriptor, error) {
	if d.Method.NumIn() > 0 {
		return reject(d, ErrCodeParameters, "accessor must not take parameters, has %d", d.Method.NumIn())
	}
	return d, nil
}

func requireSingleResult(d Descriptor) (Descriptor, error) {
	switch d.Method.NumOut() {
	case 0:
		return reject(d, ErrCodeVoid, "accessor must return a value")
	case 1:
		d.Result = d.Method.Out(0)
		return d, nil
	default:
		return reject(d, ErrCodeMultipleResults, "accessor must return exactly one value, has %d", d.Method.NumOut())
	}
}

func requireInterfaceContract(d Descriptor) (Descriptor, error) {
	if d.Contract == nil || d.Contract.Kind() != reflect.Interface {
		return reject(d, ErrCodeNotInterface, "contract must be an interface type")
	}
	return d, nil
}

func rejectAbstractElements(conv *Converters) Rule {
	return func(d Descriptor) (Descriptor, error) {
		_, elem, key := shapeOf(d.Result, conv)
		if d.Converter != "" {
			// a named converter stands in for the element type
			elem = nil
		}
		for _, t := range []reflect.Type{elem, key} {
			if t == nil || t.Kind() != reflect.Interface {
				continue
			}
			if _, ok := conv.forType(t); !ok {
				return reject(d, ErrCodeAbstract, "element type %s is abstract and has no registered converter", t)
			}
		}
		return d, nil
	}
}

func unwrapContainer(conv *Converters) Rule {
	return func(d Descriptor) (Descriptor, error) {
		d.Container, d.Elem, d.MapKey = shapeOf(d.Result, conv)
		return d, nil
	}
}

func rejectDefaultOnOptional(d Descriptor) (Descriptor, error) {
	if d.HasDefault && d.Container.IsOptional() {
		return reject(d, ErrCodeDefaultOptional, "default value cannot be combined with an optional result")
	}
	return d, nil
}

func requireConvertible(conv *Converters) Rule {
	return func(d Descriptor) (Descriptor, error) {
		for _, t := range []reflect.Type{d.Elem, d.MapKey} {
			if t == nil {
				continue
			}
			if isNestedShape(t, conv) {
				return reject(d, ErrCodeUnsupported, "nested container %s is not supported", t)
			}
			switch t.Kind() {
			case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Invalid:
				return reject(d, ErrCodeUnsupported, "element type %s cannot hold configuration", t)
			}
		}
		return d, nil
	}
}

func classifyStrategy(conv *Converters) Rule {
	return func(d Descriptor) (Descriptor, error) {
		if d.Converter != "" {
			cc, ok := conv.named(d.Converter)
			if !ok {
				return reject(d, ErrCodeUnknownConverter, "converter %q is not registered", d.Converter)
			}
			if cc.typ != d.Elem {
				return reject(d, ErrCodeUnsupported, "converter %q produces %s, not %s", d.Converter, cc.typ, d.Elem)
			}
			d.Strategy = Strategy{Kind: StrategyCustom, Method: cc.name}
		} else {
			d.Strategy = strategyFor(d.Elem, conv)
			if d.Strategy.Kind == StrategyUnresolved {
				return reject(d, ErrCodeUnsupported, "no conversion from string to %s", d.Elem)
			}
		}

		if d.Container.IsMap() {
			d.KeyStrategy = strategyFor(d.MapKey, conv)
			if d.KeyStrategy.Kind == StrategyUnresolved {
				return reject(d, ErrCodeUnsupported, "no conversion from string to map key %s", d.MapKey)
			}
		}
		return d, nil
	}
}

func requireOrdering(d Descriptor) (Descriptor, error) {
	target := d.Elem
	if d.Container.IsMap() {
		target = d.MapKey
	}
	if (d.Container.IsSet() || d.Container.IsMap()) && !d.Container.IsSorted() {
		// Pointers compare by identity, so equal tokens would never collapse.
		if !target.Comparable() || target.Kind() == reflect.Pointer {
			return reject(d, ErrCodeIncomparable, "%s values cannot be de-duplicated", target)
		}
	}
	if d.Container.IsSorted() {
		if _, ok := comparatorFor(target); !ok {
			return reject(d, ErrCodeUnordered, "%s has no natural ordering", target)
		}
	}
	return d, nil
}

func inheritContract(prefix, split string) Rule {
	return func(d Descriptor) (Descriptor, error) {
		if d.Key == "" {
			d.Key = normalize.DeriveFieldPath(d.Name)
		}
		if !d.NoPrefix {
			d.Key = normalize.ApplyPrefix(prefix, d.Key)
		}
		if d.Split == "" {
			d.Split = split
		}
		return d, nil
	}
}

func requireSplitPattern(d Descriptor) (Descriptor, error) {
	if !d.Container.IsMulti() {
		return d, nil
	}
	if _, err := regexp.Compile(d.Split); err != nil {
		return reject(d, ErrCodeInvalidSplit, "split expression %q: %v", d.Split, err)
	}
	return d, nil
}

// shapeOf peels the container shape off an accessor result type.
func shapeOf(t reflect.Type, conv *Converters) (kind ContainerKind, elem, key reflect.Type) {
	if isShape(t, "Optional") {
		kind, elem, key = containerOf(t.Field(0).Type, conv)
		return kind.optional(), elem, key
	}
	return containerOf(t, conv)
}

func containerOf(t reflect.Type, conv *Converters) (ContainerKind, reflect.Type, reflect.Type) {
	switch {
	case isShape(t, "SortedSet"):
		return KindSortedSet, t.Elem(), nil
	case isShape(t, "SortedMap"):
		entry := t.Elem()
		return KindSortedMap, entry.Field(1).Type, entry.Field(0).Type
	case isShape(t, "Set"):
		return KindSet, t.Key(), nil
	case t.Kind() == reflect.Slice && !isAtomic(t, conv):
		return KindList, t.Elem(), nil
	case t.Kind() == reflect.Map && !isAtomic(t, conv):
		return KindMap, t.Elem(), t.Key()
	}
	return KindScalar, t, nil
}

func isNestedShape(t reflect.Type, conv *Converters) bool {
	for _, name := range []string{"Optional", "Set", "SortedSet", "SortedMap", "Entry"} {
		if isShape(t, name) {
			return true
		}
	}
	return !isAtomic(t, conv)
}
