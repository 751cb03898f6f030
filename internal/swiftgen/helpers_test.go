package swiftgen

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mark3labs/modelgen/internal/spec"
)

func graphOf(schemas ...*spec.Schema) *spec.Graph {
	g := &spec.Graph{Title: "Test API", Schemas: map[string]*spec.Schema{}}
	for _, s := range schemas {
		g.Schemas[s.Name] = s
	}
	return g
}

func prop(typ string) *spec.PropertyOrRef {
	return &spec.PropertyOrRef{Property: &spec.Property{Type: typ}}
}

func propWith(p spec.Property) *spec.PropertyOrRef {
	return &spec.PropertyOrRef{Property: &p}
}

func refTo(name string) *spec.PropertyOrRef {
	return &spec.PropertyOrRef{Ref: &spec.Ref{Ref: "#/components/schemas/" + name}}
}

func schemaRef(name string) *spec.SchemaOrRef {
	return &spec.SchemaOrRef{Ref: &spec.Ref{Ref: "#/components/schemas/" + name}}
}

func object(name string, props map[string]*spec.PropertyOrRef, required ...string) *spec.Schema {
	return &spec.Schema{Name: name, Type: "object", Properties: props, Required: required}
}

// golden strips the leading newline of a raw string literal.
func golden(s string) string {
	return strings.TrimPrefix(s, "\n")
}

func assertSource(t *testing.T, want, got string) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("generated source mismatch (-want +got):\n%s", diff)
	}
}

func mustModel(t *testing.T, g *Generator, name string) string {
	t.Helper()
	src, err := g.Model(name)
	if err != nil {
		t.Fatalf("Model(%q): %v", name, err)
	}
	return src
}
