package spec

import (
    "sort"
    "strings"
)

// SchemaGraph definitions consumed by the Swift generator. The graph is built
// once per run and never mutated afterwards, so it is safe for concurrent reads.

type HttpMethod string

const (
    GET     HttpMethod = "get"
    POST    HttpMethod = "post"
    PUT     HttpMethod = "put"
    DELETE  HttpMethod = "delete"
    PATCH   HttpMethod = "patch"
    HEAD    HttpMethod = "head"
    OPTIONS HttpMethod = "options"
    TRACE   HttpMethod = "trace"
)

// methodOrder is the stable order operations of one path are visited in.
var methodOrder = []HttpMethod{GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS, TRACE}

type Graph struct {
    Title      string
    Version    string
    Schemas    map[string]*Schema
    Operations []*Operation // sorted by path, then method order
}

// Lookup resolves a schema by name. Missing names are not an error here;
// callers decide how to treat them.
func (g *Graph) Lookup(name string) (*Schema, bool) {
    if g == nil {
        return nil, false
    }
    s, ok := g.Schemas[name]
    return s, ok
}

// SchemaNames returns all schema names in sorted order.
func (g *Graph) SchemaNames() []string {
    names := make([]string, 0, len(g.Schemas))
    for name := range g.Schemas {
        names = append(names, name)
    }
    sort.Strings(names)
    return names
}

// Kind is the emission path a schema takes.
type Kind int

const (
    KindUnsupported Kind = iota
    KindDiscriminated
    KindObject
    KindComposite
    KindEnum
)

func (k Kind) String() string {
    switch k {
    case KindDiscriminated:
        return "discriminated"
    case KindObject:
        return "object"
    case KindComposite:
        return "allOf"
    case KindEnum:
        return "enum"
    default:
        return "unsupported"
    }
}

type Schema struct {
    Name          string
    Type          string
    Properties    map[string]*PropertyOrRef // nil when the schema declares no properties
    Required      []string
    AllOf         []*SchemaOrRef
    Discriminator *Discriminator
    Enum          []string
    Description   string
    Deprecated    bool
}

// Kind dispatches in fixed precedence: discriminator, properties, allOf, enum.
func (s *Schema) Kind() Kind {
    switch {
    case s == nil:
        return KindUnsupported
    case s.Discriminator != nil:
        return KindDiscriminated
    case s.Properties != nil:
        return KindObject
    case len(s.AllOf) > 0:
        return KindComposite
    case s.Enum != nil:
        return KindEnum
    default:
        return KindUnsupported
    }
}

// IsRequired reports whether name appears in the schema's required list.
func (s *Schema) IsRequired(name string) bool {
    for _, r := range s.Required {
        if r == name {
            return true
        }
    }
    return false
}

// PropertyNames returns the declared property names in sorted order.
func (s *Schema) PropertyNames() []string {
    names := make([]string, 0, len(s.Properties))
    for name := range s.Properties {
        names = append(names, name)
    }
    sort.Strings(names)
    return names
}

// Property is an inline schema used as a field, array item, dictionary value
// or parameter type.
type Property struct {
    Type                 string
    Format               string
    Description          string
    Deprecated           bool
    Enum                 []string
    Items                *PropertyOrRef
    AdditionalProperties *PropertyOrRef
    // FreeForm is set for "additionalProperties: true".
    FreeForm bool
}

// HasAdditionalProperties reports whether the property declares a dictionary.
func (p *Property) HasAdditionalProperties() bool {
    return p.AdditionalProperties != nil || p.FreeForm
}

// Ref is a name-keyed weak reference to another schema.
type Ref struct{ Ref string }

// Name is the trailing path segment of the reference.
func (r Ref) Name() string {
    if i := strings.LastIndex(r.Ref, "/"); i >= 0 {
        return r.Ref[i+1:]
    }
    return r.Ref
}

type PropertyOrRef struct {
    Property *Property
    Ref      *Ref
}

type SchemaOrRef struct {
    Schema *Schema
    Ref    *Ref
}

type Discriminator struct {
    PropertyName string
    Mapping      map[string]string // wire tag -> schema reference
}

type Operation struct {
    OperationID string
    Method      HttpMethod
    Path        string
    Summary     string
    Description string
    Tags        []string
    Deprecated  bool
    Parameters  []Parameter
    RequestBody *RequestBody
    Responses   map[string]*Response // status code or "default"
}

type Parameter struct {
    Name        string
    In          string // path|query|header|cookie
    Description string
    Required    bool
    Schema      *PropertyOrRef
}

type RequestBody struct {
    Required bool
    Content  map[string]*PropertyOrRef // media type -> schema
}

type Response struct {
    Description string
    Content     map[string]*PropertyOrRef // media type -> schema
}

// JSONMediaType is the only media type the generator maps to typed payloads.
const JSONMediaType = "application/json"

// JSONSchema returns the application/json payload schema, if declared.
func (r *Response) JSONSchema() *PropertyOrRef {
    if r == nil {
        return nil
    }
    return r.Content[JSONMediaType]
}

// JSONSchema returns the application/json body schema, if declared.
func (b *RequestBody) JSONSchema() *PropertyOrRef {
    if b == nil {
        return nil
    }
    return b.Content[JSONMediaType]
}
