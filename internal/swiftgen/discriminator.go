package swiftgen

import (
	"sort"

	"github.com/mark3labs/modelgen/internal/spec"
)

// DiscriminatorCase is one variant of a tagged union.
type DiscriminatorCase struct {
	Identifier string
	Model      string
	Tag        string
}

type union struct {
	Cases         []DiscriminatorCase
	SyntheticBase bool
	// StringTyped selects string literal comparison over enum case comparison.
	StringTyped bool
	Property    string
}

// resolveCases builds the union cases from the discriminator mapping, sorted
// by wire tag. Duplicate tags are kept; decoding picks the first match.
func (g *Generator) resolveCases(name string, s *spec.Schema) (union, error) {
	d := s.Discriminator
	u := union{Property: d.PropertyName}

	prop, ok := s.Properties[d.PropertyName]
	if !ok || prop == nil {
		return u, newError(InvalidDiscrim, name, d.PropertyName, "discriminator property is not declared")
	}
	switch {
	case prop.Ref != nil:
	case prop.Property.Enum != nil:
		// An inline enum is compared by case like a referenced one.
	case prop.Property.Type == "string":
		u.StringTyped = true
	default:
		return u, newError(InvalidDiscrim, name, d.PropertyName, "unexpected discriminator type %q", prop.Property.Type)
	}

	tags := make([]string, 0, len(d.Mapping))
	for tag := range d.Mapping {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	covered := false
	for _, tag := range tags {
		target := spec.Ref{Ref: d.Mapping[tag]}.Name()
		if target == name {
			covered = true
		}
		u.Cases = append(u.Cases, DiscriminatorCase{Identifier: enumCaseIdentifier(tag), Model: typeName(target), Tag: tag})
	}

	if u.StringTyped && !covered {
		u.Cases = append(u.Cases, DiscriminatorCase{
			Identifier: enumCaseIdentifier(name),
			Model:      baseName(name),
			Tag:        name,
		})
		u.SyntheticBase = true
	}
	if len(u.Cases) == 0 {
		return u, newError(InvalidDiscrim, name, d.PropertyName, "discriminator has no mapping")
	}
	return u, nil
}
