package swiftgen

import (
	"errors"
	"fmt"
)

// ErrUnsupportedInput matches every GenerationError. It marks a problem in the
// source document rather than in the generator.
var ErrUnsupportedInput = errors.New("unsupported input")

// ErrorKind classifies generation failures.
type ErrorKind string

const (
	UnknownSchema      ErrorKind = "unknown-schema"
	UnsupportedShape   ErrorKind = "unsupported-shape"
	UnsupportedNesting ErrorKind = "unsupported-nesting"
	UnsupportedType    ErrorKind = "unsupported-type"
	EmptyEnum          ErrorKind = "empty-enum"
	InvalidDiscrim     ErrorKind = "discriminator"
)

// GenerationError reports input the generator cannot map to Swift. Subject is
// the schema or operation being generated, Property the field or parameter
// involved, if any.
type GenerationError struct {
	Kind     ErrorKind
	Subject  string
	Property string
	Detail   string
}

func (e *GenerationError) Error() string {
	where := e.Subject
	if e.Property != "" {
		where += "." + e.Property
	}
	return fmt.Sprintf("%s: %s: %s", where, e.Kind, e.Detail)
}

func (e *GenerationError) Is(target error) bool {
	return target == ErrUnsupportedInput
}

func newError(kind ErrorKind, subject, property, format string, args ...any) error {
	return &GenerationError{Kind: kind, Subject: subject, Property: property, Detail: fmt.Sprintf(format, args...)}
}
