package swiftgen

import (
	"sort"

	"github.com/mark3labs/modelgen/internal/naming"
	"github.com/mark3labs/modelgen/internal/spec"
)

// Field is one generated stored property.
type Field struct {
	WireName   string
	Identifier string
	Type       ResolvedType
	Comment    string
	Deprecated bool
}

// fieldGroup is a run of fields sharing one provenance. Title is empty for
// plain objects and labels inherited and local blocks of an allOf child.
type fieldGroup struct {
	Title  string
	Fields []Field
	source *spec.Schema
}

// buildFields returns the schema's properties sorted by wire name. A property
// is required when either the schema or parentRequired lists it.
func (g *Generator) buildFields(owner string, s *spec.Schema, parentRequired []string) ([]Field, error) {
	fields := make([]Field, 0, len(s.Properties))
	for _, name := range s.PropertyNames() {
		por := s.Properties[name]
		if por == nil {
			continue
		}
		required := s.IsRequired(name) || contains(parentRequired, name)
		f := Field{WireName: name, Identifier: naming.SafeIdentifier(name)}
		if por.Ref != nil {
			f.Type = g.refType(por.Ref, required, false)
		} else {
			t, err := g.resolve(por.Property, owner, name, required)
			if err != nil {
				return nil, err
			}
			f.Type = t
			f.Comment = por.Property.Description
			f.Deprecated = por.Property.Deprecated
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// joinAllOf flattens single-level allOf composition into field groups in
// member order. It also returns the referenced parent, if any.
func (g *Generator) joinAllOf(owner string, s *spec.Schema) ([]fieldGroup, *spec.Schema, error) {
	var (
		groups []fieldGroup
		parent *spec.Schema
		inline bool
	)
	seen := map[string]struct{}{}
	add := func(title string, src *spec.Schema) error {
		fields, err := g.buildFields(owner, src, s.Required)
		if err != nil {
			return err
		}
		kept := fields[:0]
		for _, f := range fields {
			if _, dup := seen[f.WireName]; dup {
				continue
			}
			seen[f.WireName] = struct{}{}
			kept = append(kept, f)
		}
		groups = append(groups, fieldGroup{Title: title, Fields: kept, source: src})
		return nil
	}

	for _, member := range s.AllOf {
		switch {
		case member.Ref != nil:
			if parent != nil {
				return nil, nil, newError(UnsupportedNesting, owner, "", "allOf references more than one schema")
			}
			target, ok := g.graph.Lookup(member.Ref.Name())
			if !ok {
				return nil, nil, newError(UnknownSchema, owner, "", "allOf references unknown schema %q", member.Ref.Name())
			}
			if len(target.AllOf) > 0 {
				return nil, nil, newError(UnsupportedNesting, owner, "", "multi-level inheritance through %q is not supported", target.Name)
			}
			parent = target
			if err := add("inherited properties from "+target.Name, target); err != nil {
				return nil, nil, err
			}
			if target.Kind() == spec.KindDiscriminated {
				// The parent union declares the enums.
				inherited := &groups[len(groups)-1]
				inherited.Fields = qualifyEnums(target.Name, target, inherited.Fields)
				inherited.source = nil
			}
		case member.Schema != nil:
			if inline {
				return nil, nil, newError(UnsupportedNesting, owner, "", "allOf declares more than one inline schema")
			}
			if len(member.Schema.AllOf) > 0 {
				return nil, nil, newError(UnsupportedNesting, owner, "", "nested allOf is not supported")
			}
			inline = true
			if err := add(owner+" properties", member.Schema); err != nil {
				return nil, nil, err
			}
		}
	}
	return groups, parent, nil
}

// nestedEnum is an enum declared inside the type that uses it.
type nestedEnum struct {
	Name   string
	Values []string
}

// nestedEnums collects the enum declarations for inline enum-valued fields
// and array-of-enum fields of the given sources.
func nestedEnums(sources ...*spec.Schema) []nestedEnum {
	byName := map[string][]string{}
	for _, src := range sources {
		if src == nil {
			continue
		}
		for name, por := range src.Properties {
			if por == nil || por.Property == nil {
				continue
			}
			if values := enumValuesOf(por.Property); len(values) > 0 {
				enum := enumTypeName(name)
				byName[enum] = append(byName[enum], values...)
			}
		}
	}
	return sortedEnums(byName)
}

func sortedEnums(byName map[string][]string) []nestedEnum {
	out := make([]nestedEnum, 0, len(byName))
	for name, values := range byName {
		out = append(out, nestedEnum{Name: name, Values: enumValues(values)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// enumValuesOf returns the values of a scalar enum, looking through inline
// array items. Array-typed properties carrying enum values map to [String]
// and get no declaration.
func enumValuesOf(p *spec.Property) []string {
	for p != nil {
		if p.Type == "array" {
			if p.Enum != nil || p.Items == nil {
				return nil
			}
			p = p.Items.Property
			continue
		}
		return p.Enum
	}
	return nil
}

// enumValues deduplicates and sorts raw enum values.
func enumValues(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// enumCases maps each raw value to its case identifier. Two values sharing
// an identifier, such as "a-b" and "a_b", would redeclare the case.
func enumCases(subject, enum string, values []string) ([]string, error) {
	cases := make([]string, len(values))
	owner := make(map[string]string, len(values))
	for i, v := range values {
		id := enumCaseIdentifier(v)
		if prev, dup := owner[id]; dup {
			return nil, newError(UnsupportedShape, subject, "", "enum %s: values %q and %q both map to case %s", enum, prev, v, id)
		}
		owner[id] = v
		cases[i] = id
	}
	return cases, nil
}

func checkEnums(subject string, enums []nestedEnum) error {
	for _, e := range enums {
		if _, err := enumCases(subject, e.Name, e.Values); err != nil {
			return err
		}
	}
	return nil
}

// qualifyEnums points the inline enum fields of s at the declarations hoisted
// into owner, so that a union, its base and its children share one type.
func qualifyEnums(owner string, s *spec.Schema, fields []Field) []Field {
	for i, f := range fields {
		por := s.Properties[f.WireName]
		if por == nil || por.Property == nil || len(enumValuesOf(por.Property)) == 0 {
			continue
		}
		fields[i].Type.Name = typeName(owner) + "." + f.Type.Name
	}
	return fields
}

// enumCaseIdentifier is the case name for a raw enum value or wire tag.
func enumCaseIdentifier(raw string) string {
	if raw == "" {
		return naming.EscapePrefix + "empty"
	}
	return naming.SafeIdentifier(naming.CamelCase(raw))
}

func flatten(groups []fieldGroup) []Field {
	var all []Field
	for _, grp := range groups {
		all = append(all, grp.Fields...)
	}
	return all
}

func groupSources(groups []fieldGroup) []*spec.Schema {
	out := make([]*spec.Schema, 0, len(groups))
	for _, grp := range groups {
		out = append(out, grp.source)
	}
	return out
}
