package swiftgen

import (
	"fmt"
	"strings"
)

// Version is stamped into generated file banners.
const Version = "v0.1.0"

// Generator name in file banners.
const generatorName = "modelgen"

// DeprecationMode selects how deprecated fields and operations are rendered.
type DeprecationMode string

const (
	DeprecationComment  DeprecationMode = "comment"
	DeprecationAnnotate DeprecationMode = "annotate"
	DeprecationPrivate  DeprecationMode = "private"
)

// ParseDeprecationMode accepts the CLI spelling of a mode. Empty means comment.
func ParseDeprecationMode(s string) (DeprecationMode, error) {
	switch m := DeprecationMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return DeprecationComment, nil
	case DeprecationComment, DeprecationAnnotate, DeprecationPrivate:
		return m, nil
	default:
		return "", fmt.Errorf("unknown deprecation mode %q (allowed: comment, annotate, private)", s)
	}
}

// Config is the run-wide generation configuration. It is read-only once a
// Generator has been created from it.
type Config struct {
	Excludes      []string
	Includes      []string
	Imports       []string
	DefaultValues []string
	ClassSchemas  []string
	Tag           string
	Sendable      bool
	SkipHeader    bool
	Deprecation   DeprecationMode
}

// TestConfig returns the configuration the golden tests are written against.
func TestConfig() Config {
	return Config{SkipHeader: true, Deprecation: DeprecationComment}
}

// Allowed applies the include and exclude lists to a schema or operation name.
func (c Config) Allowed(name string) bool {
	if contains(c.Excludes, name) {
		return false
	}
	return len(c.Includes) == 0 || contains(c.Includes, name)
}

func (c Config) isClass(name string) bool { return contains(c.ClassSchemas, name) }

func (c Config) hasDefaultValue(name string) bool { return contains(c.DefaultValues, name) }

// conformances renders the inheritance clause of a type declaration.
func (c Config) conformances(protocols ...string) string {
	if c.Sendable {
		protocols = append(protocols, "Sendable")
	}
	if len(protocols) == 0 {
		return ""
	}
	return ": " + strings.Join(protocols, ", ")
}

func (c Config) deprecation() DeprecationMode {
	if c.Deprecation == "" {
		return DeprecationComment
	}
	return c.Deprecation
}

// accessLevel is the modifier for a possibly deprecated declaration.
func (c Config) accessLevel(deprecated bool) string {
	if deprecated && c.deprecation() == DeprecationPrivate {
		return ""
	}
	return "public "
}

// printDeprecation writes the marker line that precedes a deprecated
// declaration.
func (c Config) printDeprecation(b *Buffer, deprecated bool) {
	if !deprecated {
		return
	}
	switch c.deprecation() {
	case DeprecationAnnotate:
		b.Print("@available(*, deprecated)")
	default:
		b.Print("// deprecated")
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
