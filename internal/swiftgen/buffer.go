package swiftgen

import "strings"

const indentUnit = "    "

// Buffer accumulates generated source with block-scoped indentation.
// Every generation call owns its own Buffer.
type Buffer struct {
	b           strings.Builder
	depth       int
	atLineStart bool
}

// NewBuffer returns an empty buffer positioned at the start of a line.
func NewBuffer() *Buffer {
	return &Buffer{atLineStart: true}
}

// Write appends s without ending the line. Indentation is added when s
// starts a new line; empty strings never receive indentation.
func (b *Buffer) Write(s string) {
	if s == "" {
		return
	}
	if b.atLineStart {
		b.b.WriteString(strings.Repeat(indentUnit, b.depth))
	}
	b.b.WriteString(s)
	b.atLineStart = false
}

// Print appends s and ends the line. Print("") emits a blank line.
func (b *Buffer) Print(s string) {
	b.Write(s)
	b.b.WriteByte('\n')
	b.atLineStart = true
}

// Indent runs body one level deeper.
func (b *Buffer) Indent(body func()) {
	b.depth++
	defer func() { b.depth-- }()
	body()
}

// Block prints "header {", runs body indented and closes the brace. An empty
// header opens the brace on the current line, which is how "} else {" chains
// are written.
func (b *Buffer) Block(header string, body func()) {
	if header != "" {
		b.Write(header + " ")
	}
	b.Print("{")
	b.Indent(body)
	b.Print("}")
}

// Comment writes text as line comments, one per line. Empty text is a no-op.
func (b *Buffer) Comment(text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		b.Print(strings.TrimRight("// "+line, " "))
	}
}

// Append copies the content of other verbatim, indenting each of its lines
// to the current depth.
func (b *Buffer) Append(other *Buffer) {
	if other == nil {
		return
	}
	for _, line := range strings.SplitAfter(other.b.String(), "\n") {
		if line == "" {
			continue
		}
		if strings.HasSuffix(line, "\n") {
			b.Print(strings.TrimSuffix(line, "\n"))
		} else {
			b.Write(line)
		}
	}
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.b.Reset()
	b.depth = 0
	b.atLineStart = true
}

func (b *Buffer) String() string {
	return b.b.String()
}
