package swiftgen

import (
	"github.com/mark3labs/modelgen/internal/naming"
	"github.com/mark3labs/modelgen/internal/spec"
)

// Qualifier is the collection shape of a resolved type.
type Qualifier int

const (
	Scalar Qualifier = iota
	Array
	Dictionary
)

const anyValueType = "AnyCodable"

// ResolvedType describes the Swift type of a field or parameter.
type ResolvedType struct {
	// Name is the element type: the whole type for scalars, the element of
	// an array, the value of a dictionary.
	Name      string
	Optional  bool
	Custom    bool
	Qualifier Qualifier
	// Enum marks a scalar string enum element, encoded by its raw value.
	Enum bool
	// AnyValue is set when the type mentions the free-form placeholder.
	AnyValue bool
}

// BaseType renders the type without optionality.
func (t ResolvedType) BaseType() string {
	switch t.Qualifier {
	case Array:
		return "[" + t.Name + "]"
	case Dictionary:
		return "[String: " + t.Name + "]"
	default:
		return t.Name
	}
}

// PropertyType renders the declared type of a field.
func (t ResolvedType) PropertyType() string {
	if t.Optional {
		return t.BaseType() + "?"
	}
	return t.BaseType()
}

// DefaultValue is the literal used by factory parameters.
func (t ResolvedType) DefaultValue() string {
	switch {
	case t.Optional:
		return "nil"
	case t.Qualifier == Array:
		return "[]"
	case t.Qualifier == Dictionary:
		return "[:]"
	case t.Custom:
		return ".make()"
	}
	switch t.Name {
	case "Int":
		return "0"
	case "Double":
		return "0.0"
	case "Bool":
		return "false"
	case "String":
		return `""`
	case "Date":
		return ".init(timeIntervalSince1970: 0)"
	case anyValueType:
		return "nil"
	default:
		return ".make()"
	}
}

// lossy reports whether decoding should go through LossyDecodableArray.
func (t ResolvedType) lossy() bool {
	return t.Custom && t.Qualifier == Array
}

func (t ResolvedType) element() ResolvedType {
	return ResolvedType{Name: t.Name, Custom: t.Custom, Enum: t.Enum, AnyValue: t.AnyValue}
}

// typeName is the Swift identifier declared for, and used to reference, the
// named schema. The schema's file keeps the raw name.
func typeName(name string) string { return naming.SafeIdentifier(name) }

func protocolName(name string) string { return typeName(name + "Protocol") }

func baseName(name string) string { return typeName(name + "Base") }

// enumTypeName names the nested enum synthesized for an enum-valued field.
func enumTypeName(propertyName string) string {
	return naming.SafeIdentifier(naming.UpperFirst(propertyName))
}

// refType maps a reference to a named custom type.
func (g *Generator) refType(ref *spec.Ref, required, array bool) ResolvedType {
	t := ResolvedType{Name: typeName(ref.Name()), Optional: !required, Custom: true}
	if array {
		t.Qualifier = Array
	}
	if target, ok := g.graph.Lookup(ref.Name()); ok && target.Kind() == spec.KindEnum {
		t.Enum = true
	}
	return t
}

// resolve maps an inline property to a Swift type. owner and propertyName
// identify the property in errors and name synthesized enums.
func (g *Generator) resolve(p *spec.Property, owner, propertyName string, required bool) (ResolvedType, error) {
	optional := !required

	if p.Enum != nil {
		if p.Type == "array" {
			return ResolvedType{Name: "String", Optional: optional, Qualifier: Array}, nil
		}
		if p.Type != "string" && p.Type != "" {
			return ResolvedType{}, newError(UnsupportedType, owner, propertyName, "enum values of type %q are not supported, only strings", p.Type)
		}
		if len(p.Enum) == 0 {
			return ResolvedType{}, newError(EmptyEnum, owner, propertyName, "enum has no values")
		}
		return ResolvedType{Name: enumTypeName(propertyName), Optional: optional, Custom: true, Enum: true}, nil
	}

	switch p.Type {
	case "array":
		if p.Items == nil {
			return ResolvedType{}, newError(UnsupportedShape, owner, propertyName, "array without items")
		}
		if p.Items.Ref != nil {
			return g.refType(p.Items.Ref, required, true), nil
		}
		inner, err := g.resolve(p.Items.Property, owner, propertyName, true)
		if err != nil {
			return ResolvedType{}, err
		}
		return ResolvedType{
			Name:      inner.BaseType(),
			Optional:  optional,
			Custom:    inner.Custom,
			Qualifier: Array,
			Enum:      inner.Enum && inner.Qualifier == Scalar,
			AnyValue:  inner.AnyValue,
		}, nil

	case "number":
		if p.Format != "" && p.Format != "double" {
			return ResolvedType{}, newError(UnsupportedType, owner, propertyName, "number format %q is not supported", p.Format)
		}
		return ResolvedType{Name: "Double", Optional: optional}, nil

	case "object":
		if !p.HasAdditionalProperties() {
			return ResolvedType{Name: anyValueType, Optional: optional, AnyValue: true}, nil
		}
		if p.FreeForm {
			return ResolvedType{Name: anyValueType, Optional: optional, Qualifier: Dictionary, AnyValue: true}, nil
		}
		ap := p.AdditionalProperties
		if ap.Ref != nil {
			return ResolvedType{Name: typeName(ap.Ref.Name()), Optional: optional, Qualifier: Dictionary}, nil
		}
		inner, err := g.resolve(ap.Property, owner, propertyName, true)
		if err != nil {
			return ResolvedType{}, err
		}
		if inner.Enum {
			return ResolvedType{}, newError(UnsupportedShape, owner, propertyName, "dictionary of inline enum values is not supported, use a $ref enum schema")
		}
		return ResolvedType{Name: inner.BaseType(), Optional: optional, Qualifier: Dictionary, AnyValue: inner.AnyValue}, nil

	case "string":
		switch p.Format {
		case "":
			return ResolvedType{Name: "String", Optional: optional}, nil
		case "date-time":
			return ResolvedType{Name: "Date", Optional: optional}, nil
		default:
			return ResolvedType{}, newError(UnsupportedType, owner, propertyName, "string format %q is not supported", p.Format)
		}

	case "boolean":
		return ResolvedType{Name: "Bool", Optional: optional}, nil
	case "integer":
		return ResolvedType{Name: "Int", Optional: optional}, nil
	case "double":
		return ResolvedType{Name: "Double", Optional: optional}, nil
	}

	return ResolvedType{}, newError(UnsupportedType, owner, propertyName, "unknown type %q", p.Type)
}

// resolveSchema maps a property-or-reference.
func (g *Generator) resolveSchema(por *spec.PropertyOrRef, owner, propertyName string, required bool) (ResolvedType, error) {
	if por.Ref != nil {
		return g.refType(por.Ref, required, false), nil
	}
	return g.resolve(por.Property, owner, propertyName, required)
}
