package naming

import (
	"unicode"
	"unicode/utf8"
)

// EscapePrefix is prepended to identifiers that would not compile verbatim.
const EscapePrefix = "_"

var reserved = map[string]struct{}{}

func init() {
	for _, w := range []string{
		// types and names the standard library shadows
		"Type", "Protocol", "Result", "Any", "AnyObject", "Self", "Error", "_",
		// declarations
		"associatedtype", "class", "deinit", "enum", "extension", "fileprivate",
		"func", "import", "init", "inout", "internal", "let", "operator",
		"private", "protocol", "public", "rethrows", "static", "struct",
		"subscript", "typealias", "var",
		// statements
		"break", "case", "continue", "default", "defer", "do", "else",
		"fallthrough", "for", "guard", "if", "in", "repeat", "return", "switch",
		"where", "while",
		// expressions
		"as", "catch", "false", "is", "nil", "self", "super", "throw", "throws",
		"true", "try",
	} {
		reserved[w] = struct{}{}
	}
}

// IsReserved reports whether name is a Swift keyword or a name the generated
// code must not redeclare.
func IsReserved(name string) bool {
	_, ok := reserved[name]
	return ok
}

// SafeIdentifier escapes name when it starts with a digit or is reserved.
func SafeIdentifier(name string) string {
	if r, _ := utf8.DecodeRuneInString(name); unicode.IsDigit(r) || IsReserved(name) {
		return EscapePrefix + name
	}
	return name
}
