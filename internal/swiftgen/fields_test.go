package swiftgen

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mark3labs/modelgen/internal/spec"
)

func fieldNames(fields []Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Identifier+":"+f.Type.PropertyType())
	}
	return out
}

func TestBuildFieldsSortedAndEscaped(t *testing.T) {
	t.Parallel()
	g := New(graphOf(), TestConfig())
	s := object("Thing", map[string]*spec.PropertyOrRef{
		"zeta":  prop("string"),
		"class": prop("string"),
		"2nd":   prop("integer"),
		"owner": refTo("Person"),
	}, "zeta")
	fields, err := g.buildFields("Thing", s, nil)
	if err != nil {
		t.Fatalf("buildFields: %v", err)
	}
	want := []string{"_2nd:Int?", "_class:String?", "owner:Person?", "zeta:String"}
	if diff := cmp.Diff(want, fieldNames(fields)); diff != "" {
		t.Fatalf("fields (-want +got):\n%s", diff)
	}
	if fields[0].WireName != "2nd" {
		t.Fatalf("wire name lost: %q", fields[0].WireName)
	}
}

func TestJoinAllOfFirstWins(t *testing.T) {
	t.Parallel()
	g := New(graphOf(
		object("Parent", map[string]*spec.PropertyOrRef{
			"id":   prop("string"),
			"kind": prop("string"),
		}),
	), TestConfig())
	child := &spec.Schema{
		Name:     "Child",
		Required: []string{"kind"},
		AllOf: []*spec.SchemaOrRef{
			schemaRef("Parent"),
			{Schema: object("", map[string]*spec.PropertyOrRef{
				"id":    prop("integer"),
				"extra": prop("boolean"),
			})},
		},
	}
	groups, parent, err := g.joinAllOf("Child", child)
	if err != nil {
		t.Fatalf("joinAllOf: %v", err)
	}
	if parent == nil || parent.Name != "Parent" {
		t.Fatalf("parent: %+v", parent)
	}
	if len(groups) != 2 {
		t.Fatalf("groups: %d", len(groups))
	}
	if diff := cmp.Diff([]string{"id:String?", "kind:String"}, fieldNames(groups[0].Fields)); diff != "" {
		t.Fatalf("inherited (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"extra:Bool?"}, fieldNames(groups[1].Fields)); diff != "" {
		t.Fatalf("local (-want +got):\n%s", diff)
	}
	if groups[0].Title != "inherited properties from Parent" || groups[1].Title != "Child properties" {
		t.Fatalf("titles: %q, %q", groups[0].Title, groups[1].Title)
	}
}

func TestJoinAllOfRejectsTwoInlineBlocks(t *testing.T) {
	t.Parallel()
	g := New(graphOf(), TestConfig())
	s := &spec.Schema{Name: "X", AllOf: []*spec.SchemaOrRef{
		{Schema: object("", map[string]*spec.PropertyOrRef{})},
		{Schema: object("", map[string]*spec.PropertyOrRef{})},
	}}
	_, _, err := g.joinAllOf("X", s)
	gerr, ok := err.(*GenerationError)
	if !ok || gerr.Kind != UnsupportedNesting {
		t.Fatalf("want unsupported nesting, got %v", err)
	}
}

func TestNestedEnumsMergeAndSort(t *testing.T) {
	t.Parallel()
	a := object("A", map[string]*spec.PropertyOrRef{
		"status": propWith(spec.Property{Type: "string", Enum: []string{"b", "a"}}),
		"modes":  propWith(spec.Property{Type: "array", Items: propWith(spec.Property{Type: "string", Enum: []string{"x"}})}),
		"flags":  propWith(spec.Property{Type: "array", Enum: []string{"ignored"}}),
	})
	b := object("B", map[string]*spec.PropertyOrRef{
		"status": propWith(spec.Property{Type: "string", Enum: []string{"c", "a"}}),
	})
	want := []nestedEnum{
		{Name: "Modes", Values: []string{"x"}},
		{Name: "Status", Values: []string{"a", "b", "c"}},
	}
	if diff := cmp.Diff(want, nestedEnums(a, nil, b)); diff != "" {
		t.Fatalf("nested enums (-want +got):\n%s", diff)
	}
}

func TestEnumCaseIdentifier(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"CASE1":      "case1",
		"2CASE":      "_2case",
		"":           "_empty",
		"in_stock":   "inStock",
		"default":    "_default",
		"camelValue": "camelValue",
	}
	for in, want := range tests {
		if got := enumCaseIdentifier(in); got != want {
			t.Errorf("enumCaseIdentifier(%q): want %q, got %q", in, want, got)
		}
	}
}

func TestEnumCases(t *testing.T) {
	t.Parallel()
	got, err := enumCases("Mode", "Mode", []string{"", "in_stock", "self"})
	if err != nil {
		t.Fatalf("enumCases: %v", err)
	}
	if diff := cmp.Diff([]string{"_empty", "inStock", "_self"}, got); diff != "" {
		t.Fatalf("cases (-want +got):\n%s", diff)
	}
	for _, values := range [][]string{{"CASE1", "case1"}, {"a-b", "a_b"}} {
		if _, err := enumCases("Mode", "Mode", values); err == nil {
			t.Errorf("%q: expected collision", values)
		}
	}
}

func TestJoinAllOfQualifiesUnionEnums(t *testing.T) {
	t.Parallel()
	parent := &spec.Schema{
		Name:          "Pet",
		Type:          "object",
		Properties:    map[string]*spec.PropertyOrRef{"kind": prop("string"), "status": propWith(spec.Property{Type: "string", Enum: []string{"sold"}})},
		Discriminator: &spec.Discriminator{PropertyName: "kind"},
	}
	child := &spec.Schema{Name: "Cat", AllOf: []*spec.SchemaOrRef{schemaRef("Pet")}}
	groups, _, err := New(graphOf(parent, child), TestConfig()).joinAllOf("Cat", child)
	if err != nil {
		t.Fatalf("joinAllOf: %v", err)
	}
	if diff := cmp.Diff([]string{"kind:String?", "status:Pet.Status?"}, fieldNames(groups[0].Fields)); diff != "" {
		t.Fatalf("fields (-want +got):\n%s", diff)
	}
	if groups[0].source != nil {
		t.Fatalf("inherited union enums must not be redeclared")
	}
}
