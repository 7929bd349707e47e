package tether

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for descriptor and resolution failures.
const (
	ErrCodeRequired     = "required"
	ErrCodeInvalidType  = "invalid_type"
	ErrCodeDuplicateKey = "duplicate_key"
	ErrCodeInvalidSplit = "invalid_split"

	ErrCodeParameters       = "has_parameters"
	ErrCodeVoid             = "void_result"
	ErrCodeMultipleResults  = "multiple_results"
	ErrCodeNotInterface     = "not_interface"
	ErrCodeAbstract         = "abstract_type"
	ErrCodeDefaultOptional  = "default_with_optional"
	ErrCodeUnsupported      = "unsupported_type"
	ErrCodeIncomparable     = "incomparable_type"
	ErrCodeUnordered        = "unordered_type"
	ErrCodeEmptyContract    = "empty_contract"
	ErrCodeUnknownAccessor  = "unknown_accessor"
	ErrCodeUnknownConverter = "unknown_converter"
)

var (
	// ErrMissingValue is returned when a required key has no value and no default.
	ErrMissingValue = errors.New("tether: value not found")

	// ErrBadValue is returned when raw text cannot be converted to the accessor's type.
	ErrBadValue = errors.New("tether: malformed value")

	// ErrDuplicateKey is returned when a map-valued key repeats one of its entry keys.
	ErrDuplicateKey = errors.New("tether: duplicate map key")

	// ErrInvalidContract is matched by every DescriptorError.
	ErrInvalidContract = errors.New("tether: invalid accessor contract")

	// ErrLoaderNotFound is returned when no registered loader accepts a location.
	ErrLoaderNotFound = errors.New("tether: loader not found")

	// ErrInvalidLocation is returned when a location template does not resolve to a URI.
	ErrInvalidLocation = errors.New("tether: invalid location")
)

// ValueError describes a failure to produce a value for one lookup key.
type ValueError struct {
	Key   string
	Raw   string // offending raw text, empty for missing values
	Code  string
	Cause error
}

func (e *ValueError) Error() string {
	switch e.Code {
	case ErrCodeRequired:
		return fmt.Sprintf("value for key %q is not found", e.Key)
	case ErrCodeDuplicateKey:
		return fmt.Sprintf("key %q: duplicate map key in %q", e.Key, e.Raw)
	}
	if e.Cause == nil {
		return fmt.Sprintf("key %q: cannot convert %q", e.Key, e.Raw)
	}
	return fmt.Sprintf("key %q: cannot convert %q: %v", e.Key, e.Raw, e.Cause)
}

// Unwrap exposes the sentinel matching Code along with the underlying cause.
func (e *ValueError) Unwrap() []error {
	var errs []error
	switch e.Code {
	case ErrCodeRequired:
		errs = append(errs, ErrMissingValue)
	case ErrCodeDuplicateKey:
		errs = append(errs, ErrDuplicateKey)
	default:
		errs = append(errs, ErrBadValue)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// DescriptorError reports an accessor that cannot be bound.
type DescriptorError struct {
	Contract string
	Accessor string // empty for contract-level failures
	Code     string
	Message  string
}

func (e *DescriptorError) Error() string {
	name := e.Contract
	if e.Accessor != "" {
		name += "." + e.Accessor
	}
	return fmt.Sprintf("tether: %s: %s (%s)", name, e.Message, e.Code)
}

func (e *DescriptorError) Is(target error) bool {
	return target == ErrInvalidContract
}

// SourceError reports a location that could not be turned into loaded values.
type SourceError struct {
	Location string
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("tether: source %q: %v", e.Location, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// ValidationError aggregates accessor-level binding failures.
type ValidationError struct {
	FieldErrors []FieldError
}

// Error formats validation errors as a multi-line message.
func (e *ValidationError) Error() string {
	if len(e.FieldErrors) == 0 {
		return "config validation failed: no errors"
	}

	var b strings.Builder
	if len(e.FieldErrors) == 1 {
		b.WriteString("config validation failed: 1 error\n")
	} else {
		fmt.Fprintf(&b, "config validation failed: %d errors\n", len(e.FieldErrors))
	}

	for _, fe := range e.FieldErrors {
		fmt.Fprintf(&b, "  - %s: %s (%s)\n", fe.FieldPath, fe.Code, fe.Message)
	}

	return strings.TrimRight(b.String(), "\n")
}

// Unwrap returns the underlying error of every field failure.
func (e *ValidationError) Unwrap() []error {
	var errs []error
	for _, fe := range e.FieldErrors {
		if fe.Err != nil {
			errs = append(errs, fe.Err)
		}
	}
	return errs
}

// FieldError represents a single accessor failure.
type FieldError struct {
	FieldPath string // accessor name, e.g. "Port"
	Code      string // error code, e.g. "required"
	Message   string // human-readable description
	Err       error  `json:"-"`
}
