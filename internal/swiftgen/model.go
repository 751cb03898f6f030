// Package swiftgen turns a spec.Graph into Swift source: Codable models for
// component schemas and request wrappers for operations.
//
// A Generator is safe for concurrent use. Each call builds its output in a
// private Buffer and reads the graph only.
package swiftgen

import (
	"fmt"
	"strings"

	"github.com/mark3labs/modelgen/internal/spec"
)

type Generator struct {
	graph *spec.Graph
	cfg   Config
}

// New returns a generator over graph. cfg is copied.
func New(graph *spec.Graph, cfg Config) *Generator {
	return &Generator{graph: graph, cfg: cfg}
}

// unit is the output of one generation call.
type unit struct {
	*Buffer
	anyValue bool
}

func newUnit() *unit { return &unit{Buffer: NewBuffer()} }

func (u *unit) use(t ResolvedType) {
	if t.AnyValue {
		u.anyValue = true
	}
}

// ModelFileName is the file a schema is written to.
func ModelFileName(name string) string { return name + ".swift" }

// Model emits the declaration for the named schema.
func (g *Generator) Model(name string) (string, error) {
	s, ok := g.graph.Lookup(name)
	if !ok {
		return "", newError(UnknownSchema, name, "", "schema is not defined")
	}

	u := newUnit()
	switch s.Kind() {
	case spec.KindDiscriminated:
		if err := g.emitUnion(u, name, s); err != nil {
			return "", err
		}
	case spec.KindObject:
		fields, err := g.buildFields(name, s, nil)
		if err != nil {
			return "", err
		}
		groups := []fieldGroup{{Fields: fields, source: s}}
		if err := checkEnums(name, nestedEnums(s)); err != nil {
			return "", err
		}
		g.emitStruct(u, name, s.Description, groups)
	case spec.KindComposite:
		groups, parent, err := g.joinAllOf(name, s)
		if err != nil {
			return "", err
		}
		if err := checkEnums(name, nestedEnums(groupSources(groups)...)); err != nil {
			return "", err
		}
		g.emitStruct(u, name, s.Description, groups)
		if parent != nil && parent.Kind() == spec.KindDiscriminated {
			u.Print("")
			u.Print(fmt.Sprintf("extension %s: %s {}", typeName(name), protocolName(parent.Name)))
		}
	case spec.KindEnum:
		values := enumValues(s.Enum)
		if len(values) == 0 {
			return "", newError(EmptyEnum, name, "", "enum has no values")
		}
		if s.Type != "string" && s.Type != "" {
			return "", newError(UnsupportedType, name, "", "enum values of type %q are not supported, only strings", s.Type)
		}
		if _, err := enumCases(name, name, values); err != nil {
			return "", err
		}
		u.Comment(s.Description)
		g.emitEnum(u.Buffer, typeName(name), values)
	default:
		return "", newError(UnsupportedShape, name, "", "schema declares none of discriminator, properties, allOf or enum")
	}

	return g.finish(ModelFileName(name), u), nil
}

// finish prepends the file banner and imports.
func (g *Generator) finish(fileName string, u *unit) string {
	if g.cfg.SkipHeader {
		return u.String()
	}
	out := NewBuffer()
	out.Print("//")
	out.Print("// " + fileName)
	out.Print("// generated by " + generatorName + " " + Version)
	out.Print("//")
	if title := strings.TrimSpace(g.graph.Title); title != "" {
		out.Comment(title)
		out.Print("//")
	}
	out.Print("// swiftlint:disable:all")
	out.Print("//")
	out.Print("")
	out.Print("import Foundation")
	if u.anyValue {
		out.Print("import " + anyValueType)
	}
	for _, imp := range g.cfg.Imports {
		out.Print("import " + imp)
	}
	out.Print("")
	out.Append(u.Buffer)
	return out.String()
}

// emitStruct writes a value type (or a final class when configured) with
// memberwise init, coding keys, decoder, nested enums and make factory. name
// is the schema name, escaped on declaration.
func (g *Generator) emitStruct(u *unit, name, doc string, groups []fieldGroup) {
	kind := "struct"
	if g.cfg.isClass(name) {
		kind = "final class"
	}
	all := flatten(groups)
	enums := nestedEnums(groupSources(groups)...)

	u.Comment(doc)
	u.Block(fmt.Sprintf("public %s %s%s", kind, typeName(name), g.cfg.conformances("Codable")), func() {
		for _, grp := range groups {
			if len(grp.Fields) == 0 {
				continue
			}
			if grp.Title != "" {
				u.Print("// MARK: - " + grp.Title)
			}
			for _, f := range grp.Fields {
				u.use(f.Type)
				u.Comment(f.Comment)
				g.cfg.printDeprecation(u.Buffer, f.Deprecated)
				u.Print(fmt.Sprintf("%slet %s: %s", g.cfg.accessLevel(f.Deprecated), f.Identifier, f.Type.PropertyType()))
				u.Print("")
			}
		}

		u.Block(fmt.Sprintf("public init(%s)", g.parameterList(all, false)), func() {
			for _, grp := range groups {
				if len(grp.Fields) == 0 {
					continue
				}
				if grp.Title != "" {
					u.Print("// MARK: - " + grp.Title)
				}
				for _, f := range grp.Fields {
					u.Print(fmt.Sprintf("self.%s = %s", f.Identifier, f.Identifier))
				}
			}
		})

		if len(all) > 0 {
			u.Print("")
			u.Block("enum CodingKeys: String, CodingKey", func() {
				for _, f := range all {
					u.Print(fmt.Sprintf("case %s = %s", f.Identifier, swiftString(f.WireName)))
				}
			})
		}

		u.Print("")
		u.Block("public init(from decoder: Decoder) throws", func() {
			if len(all) == 0 {
				return
			}
			u.Print("let container = try decoder.container(keyedBy: CodingKeys.self)")
			for _, f := range all {
				u.Print(decodeStatement(f))
			}
		})

		for _, e := range enums {
			u.Print("")
			g.emitEnum(u.Buffer, e.Name, e.Values)
		}

		u.Print("")
		u.Block(fmt.Sprintf("public static func make(%s) -> Self", g.parameterList(all, true)), func() {
			u.Print(fmt.Sprintf("self.init(%s)", argumentList(all)))
		})
	})
}

func decodeStatement(f Field) string {
	t := f.Type
	if t.lossy() {
		if t.Optional {
			return fmt.Sprintf("self.%s = try container.decodeIfPresent(LossyDecodableArray<%s>.self, forKey: .%s)?.elements", f.Identifier, t.Name, f.Identifier)
		}
		return fmt.Sprintf("self.%s = try container.decode(LossyDecodableArray<%s>.self, forKey: .%s).elements", f.Identifier, t.Name, f.Identifier)
	}
	method := "decode"
	if t.Optional {
		method = "decodeIfPresent"
	}
	return fmt.Sprintf("self.%s = try container.%s(%s.self, forKey: .%s)", f.Identifier, method, t.BaseType(), f.Identifier)
}

// parameterList renders "name: Type" pairs, with defaults for factories.
func (g *Generator) parameterList(fields []Field, defaults bool) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		p := f.Identifier + ": " + f.Type.PropertyType()
		if defaults {
			p += " = " + g.defaultValue(f.WireName, f.Identifier, f.Type)
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ", ")
}

func (g *Generator) defaultValue(wireName, identifier string, t ResolvedType) string {
	if g.cfg.hasDefaultValue(wireName) {
		return "DefaultValues." + identifier
	}
	return t.DefaultValue()
}

func argumentList(fields []Field) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Identifier+": "+f.Identifier)
	}
	return strings.Join(parts, ", ")
}

// emitEnum writes a closed string enum with the unknown-case fallback. The
// values must map to distinct cases, see enumCases.
func (g *Generator) emitEnum(b *Buffer, name string, values []string) {
	b.Block(fmt.Sprintf("public enum %s%s", name, g.cfg.conformances("String", "Codable", "CaseIterable", "UnknownCaseRepresentable")), func() {
		for _, v := range values {
			b.Print(fmt.Sprintf("case %s = %s", enumCaseIdentifier(v), swiftString(v)))
		}
		b.Print("")
		b.Print("case _unknownCase")
		b.Print("public static let unknownCase = Self._unknownCase")
		b.Print("")
		b.Block("public static func make() -> Self", func() {
			b.Print("._unknownCase")
		})
	})
}

// emitUnion writes the tagged union for a discriminated schema, its accessor
// protocol and, when needed, the synthetic base struct.
func (g *Generator) emitUnion(u *unit, name string, s *spec.Schema) error {
	un, err := g.resolveCases(name, s)
	if err != nil {
		return err
	}
	fields, err := g.buildFields(name, s, nil)
	if err != nil {
		return err
	}
	// Inline enums live in the union so that the protocol, the base and
	// the children share one type.
	enums := nestedEnums(s)
	if err := checkEnums(name, enums); err != nil {
		return err
	}
	fields = qualifyEnums(name, s, fields)
	var discriminator Field
	for _, f := range fields {
		if f.WireName == un.Property {
			discriminator = f
		}
	}
	matches := func(c DiscriminatorCase) string {
		if un.StringTyped {
			return fmt.Sprintf("obj.%s == %s", discriminator.Identifier, swiftString(c.Tag))
		}
		return fmt.Sprintf("obj.%s == .%s", discriminator.Identifier, enumCaseIdentifier(c.Tag))
	}

	u.Comment(s.Description)
	decl := typeName(name)
	u.Block(fmt.Sprintf("public enum %s%s", decl, g.cfg.conformances("Codable")), func() {
		for _, c := range un.Cases {
			u.Print(fmt.Sprintf("case %s(%s)", c.Identifier, c.Model))
		}
		u.Print("")

		u.Block("public init(from decoder: Decoder) throws", func() {
			for _, c := range un.Cases {
				u.Print(fmt.Sprintf("if let obj = try? %s(from: decoder), %s {", c.Model, matches(c)))
				u.Indent(func() {
					u.Print(fmt.Sprintf("self = .%s(obj)", c.Identifier))
				})
				u.Write("} else ")
			}
			u.Block("", func() {
				u.Block("enum DiscriminatorKeys: String, CodingKey", func() {
					u.Print("case type = " + swiftString(un.Property))
				})
				u.Print("let container = try decoder.container(keyedBy: DiscriminatorKeys.self)")
				u.Print("let type = try container.decode(String.self, forKey: .type)")
				u.Print(fmt.Sprintf(`throw DecodingError.typeMismatch(%s.self, DecodingError.Context(codingPath: decoder.codingPath, debugDescription: "unexpected subclass type \(type)"))`, decl))
			})
		})
		u.Print("")

		u.Block("public func encode(to encoder: Encoder) throws", func() {
			u.Print("switch self {")
			for _, c := range un.Cases {
				u.Print(fmt.Sprintf("case .%s(let obj): try obj.encode(to: encoder)", c.Identifier))
			}
			u.Print("}")
		})
		u.Print("")

		for _, e := range enums {
			g.emitEnum(u.Buffer, e.Name, e.Values)
			u.Print("")
		}

		u.Block("public static func make() -> Self", func() {
			u.Print(fmt.Sprintf(".%s(.make())", un.Cases[0].Identifier))
		})
	})

	accessors := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.Deprecated && g.cfg.deprecation() == DeprecationPrivate {
			continue
		}
		accessors = append(accessors, f)
	}

	u.Print("")
	u.Block("public protocol "+protocolName(name), func() {
		for _, f := range accessors {
			u.use(f.Type)
			u.Print(fmt.Sprintf("var %s: %s { get }", f.Identifier, f.Type.PropertyType()))
		}
	})
	u.Print("")
	u.Block(fmt.Sprintf("extension %s: %s", decl, protocolName(name)), func() {
		for i, f := range accessors {
			if i > 0 {
				u.Print("")
			}
			u.Block(fmt.Sprintf("public var %s: %s", f.Identifier, f.Type.PropertyType()), func() {
				u.Print("switch self {")
				for _, c := range un.Cases {
					u.Print(fmt.Sprintf("case .%s(let obj): return obj.%s", c.Identifier, f.Identifier))
				}
				u.Print("}")
			})
		}
	})

	if un.SyntheticBase {
		u.Print("")
		g.emitStruct(u, name+"Base", "", []fieldGroup{{Fields: fields}})
		u.Print("")
		u.Print(fmt.Sprintf("extension %s: %s {}", baseName(name), protocolName(name)))
	}
	return nil
}

// swiftString renders s as a Swift string literal.
func swiftString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
