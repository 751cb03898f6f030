// Package naming holds the string transforms used to turn OpenAPI names into
// Swift identifiers.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LowerFirst lower-cases only the first character of s.
func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// UpperFirst upper-cases only the first character of s.
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.'
}

// CamelCase converts snake, kebab and dotted names to lowerCamelCase.
// Names without separators keep their inner casing unless they are entirely
// upper-case, in which case they are lower-cased. CamelCase is idempotent.
func CamelCase(s string) string {
	if !strings.ContainsFunc(s, isSeparator) {
		if s == strings.ToUpper(s) {
			return strings.ToLower(s)
		}
		return LowerFirst(s)
	}

	// A Caser is stateful, so each call gets its own.
	title := cases.Title(language.Und)
	var b strings.Builder
	for _, segment := range strings.FieldsFunc(s, isSeparator) {
		b.WriteString(title.String(segment))
	}
	return LowerFirst(b.String())
}

// TypeName builds an UpperCamelCase type name from a raw name.
func TypeName(s string) string {
	return UpperFirst(CamelCase(s))
}
