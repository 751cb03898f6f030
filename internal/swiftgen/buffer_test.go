package swiftgen

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBufferBlocksNest(t *testing.T) {
	t.Parallel()
	b := NewBuffer()
	b.Block("struct A", func() {
		b.Print("let x: Int")
		b.Print("")
		b.Block("func f()", func() {
			b.Print("return")
		})
	})
	want := "struct A {\n" +
		"    let x: Int\n" +
		"\n" +
		"    func f() {\n" +
		"        return\n" +
		"    }\n" +
		"}\n"
	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Fatalf("buffer (-want +got):\n%s", diff)
	}
}

func TestBufferElseChain(t *testing.T) {
	t.Parallel()
	b := NewBuffer()
	b.Indent(func() {
		b.Print("if a {")
		b.Indent(func() { b.Print("x()") })
		b.Write("} else ")
		b.Block("", func() { b.Print("y()") })
	})
	want := "    if a {\n" +
		"        x()\n" +
		"    } else {\n" +
		"        y()\n" +
		"    }\n"
	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Fatalf("buffer (-want +got):\n%s", diff)
	}
}

func TestBufferComment(t *testing.T) {
	t.Parallel()
	b := NewBuffer()
	b.Comment("")
	b.Comment("first\n\nsecond\n")
	want := "// first\n//\n// second\n"
	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Fatalf("buffer (-want +got):\n%s", diff)
	}
}

func TestBufferAppendAndReset(t *testing.T) {
	t.Parallel()
	inner := NewBuffer()
	inner.Print("a")
	inner.Print("")
	inner.Print("b")

	b := NewBuffer()
	b.Indent(func() { b.Append(inner) })
	if diff := cmp.Diff("    a\n\n    b\n", b.String()); diff != "" {
		t.Fatalf("append (-want +got):\n%s", diff)
	}
	b.Reset()
	if b.String() != "" {
		t.Fatalf("expected empty buffer after reset")
	}
}
