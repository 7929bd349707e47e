package tether

import (
	"errors"
	"reflect"
	"slices"
	"strings"
)

// tagConfig holds the directives parsed from an accessor tag.
type tagConfig struct {
	key        string // lookup key (key:app.port)
	defValue   string // default raw value (default:8080)
	hasDefault bool   // whether a default directive was present
	split      string // split expression (split:;)
	noPrefix   bool   // ignore the contract prefix (noprefix)
	converter  string // registered converter name (converter:name)
	secret     bool   // redact in dumps and snapshots (secret)
}

// literalDirectives may contain commas in their values.
var literalDirectives = []string{"default:", "split:"}

var knownDirectives = []string{"key:", "default:", "split:", "noprefix", "converter:", "secret"}

// parseTag parses an accessor tag.
// Tag format: "directive1:value1,directive2:value2,..."
// Boolean directives can omit `:true` (e.g., "secret" == "secret:true").
func parseTag(tag string) tagConfig {
	cfg := tagConfig{}
	if tag == "" {
		return cfg
	}

	for _, directive := range splitDirectives(tag) {
		if strings.TrimSpace(directive) == "" {
			continue
		}

		name, value, _ := strings.Cut(directive, ":")
		name = strings.TrimSpace(name)

		switch name {
		case "key":
			cfg.key = strings.TrimSpace(value)
		case "default":
			// Don't trim: surrounding blanks may be part of the value
			cfg.defValue = value
			cfg.hasDefault = true
		case "split":
			cfg.split = value
		case "converter":
			cfg.converter = strings.TrimSpace(value)
		case "noprefix":
			cfg.noPrefix = boolDirective(value)
		case "secret":
			cfg.secret = boolDirective(value)
		}
	}

	return cfg
}

// boolDirective reads a boolean directive value; anything but "false" is true.
func boolDirective(value string) bool {
	return strings.TrimSpace(value) != "false"
}

// splitDirectives splits a tag into directives. Inside a default or split
// value a comma belongs to the value unless a known directive follows it.
func splitDirectives(tag string) []string {
	var directives []string
	var current strings.Builder
	inLiteral := false

	for i := 0; i < len(tag); i++ {
		if current.Len() == 0 && !inLiteral {
			rest := strings.TrimLeft(tag[i:], " ")
			for _, d := range literalDirectives {
				if strings.HasPrefix(rest, d) {
					inLiteral = true
					current.WriteString(d)
					i += len(tag[i:]) - len(rest) + len(d) - 1
					break
				}
			}
			if inLiteral {
				continue
			}
		}

		ch := tag[i]
		if ch != ',' {
			current.WriteByte(ch)
			continue
		}
		if inLiteral && !startsWithDirective(tag[i+1:]) {
			current.WriteByte(ch)
			continue
		}
		inLiteral = false
		directives = append(directives, current.String())
		current.Reset()
	}

	if current.Len() > 0 {
		directives = append(directives, current.String())
	}
	return directives
}

// startsWithDirective checks if a string starts with a known directive name.
func startsWithDirective(s string) bool {
	s = strings.TrimSpace(s)
	for _, d := range knownDirectives {
		if strings.HasPrefix(s, d) {
			return true
		}
	}
	return false
}

// ContractOption configures how a contract is described.
type ContractOption func(*contractConfig)

type contractConfig struct {
	prefix     string
	split      string
	tags       map[string]string
	converters *Converters
}

// WithPrefix prefixes every lookup key with prefix and a dot.
func WithPrefix(prefix string) ContractOption {
	return func(c *contractConfig) {
		c.prefix = prefix
	}
}

// WithSplit sets the split expression inherited by every multi-valued
// accessor. Default: ",".
func WithSplit(expr string) ContractOption {
	return func(c *contractConfig) {
		c.split = expr
	}
}

// WithTag attaches directives to the named accessor, e.g.
// WithTag("Hosts", "key:cluster.hosts,split:;,default:a;b").
// Directives: key, default, split, noprefix, converter, secret.
func WithTag(accessor, tag string) ContractOption {
	return func(c *contractConfig) {
		c.tags[accessor] = tag
	}
}

// WithConverters makes the converters of r available to the contract.
func WithConverters(r *Converters) ContractOption {
	return func(c *contractConfig) {
		c.converters = r
	}
}

// Describe validates the accessor contract C, which must be an interface
// type, and decides the engine operation of every accessor.
func Describe[C any](opts ...ContractOption) (*Contract, error) {
	return DescribeType(reflect.TypeOf((*C)(nil)).Elem(), opts...)
}

// DescribeType is Describe for a reflect.Type.
//
// Every failing accessor is reported; the error matches ErrInvalidContract.
func DescribeType(t reflect.Type, opts ...ContractOption) (*Contract, error) {
	cfg := &contractConfig{split: ",", tags: make(map[string]string)}
	for _, opt := range opts {
		opt(cfg)
	}

	if t.Kind() != reflect.Interface {
		return nil, &DescriptorError{
			Contract: t.String(),
			Code:     ErrCodeNotInterface,
			Message:  "contract must be an interface type",
		}
	}

	contract := &Contract{
		Type:       t,
		Prefix:     cfg.prefix,
		Split:      cfg.split,
		converters: cfg.converters,
	}

	rules := validatorChain(cfg)
	var errs []error
	seen := make(map[string]bool)

	// reflect returns interface methods sorted by name
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !m.IsExported() {
			continue
		}
		seen[m.Name] = true

		tag := parseTag(cfg.tags[m.Name])
		d := Descriptor{
			Contract:   t,
			Name:       m.Name,
			Method:     m.Type,
			Key:        tag.key,
			Default:    tag.defValue,
			HasDefault: tag.hasDefault,
			Split:      tag.split,
			NoPrefix:   tag.noPrefix,
			Secret:     tag.secret,
			Converter:  tag.converter,
		}

		d, err := Validate(d, rules)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if d.Operation, err = Decide(d.Container, d.HasDefault); err != nil {
			errs = append(errs, &DescriptorError{Contract: t.String(), Accessor: d.Name, Code: ErrCodeDefaultOptional, Message: err.Error()})
			continue
		}
		contract.Accessors = append(contract.Accessors, d)
	}

	var unknown []string
	for name := range cfg.tags {
		if !seen[name] {
			unknown = append(unknown, name)
		}
	}
	slices.Sort(unknown)
	for _, name := range unknown {
		errs = append(errs, &DescriptorError{
			Contract: t.String(),
			Accessor: name,
			Code:     ErrCodeUnknownAccessor,
			Message:  "tag given for a method the contract does not declare",
		})
	}

	if len(seen) == 0 {
		errs = append(errs, &DescriptorError{
			Contract: t.String(),
			Code:     ErrCodeEmptyContract,
			Message:  "contract declares no accessors",
		})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return contract, nil
}
