package spec

import (
    "context"
    "fmt"
    "sort"
    "strings"

    "github.com/getkin/kin-openapi/openapi3"
    "github.com/mark3labs/modelgen/internal/naming"
)

// BuildOption configures how the Graph is built from an OpenAPI doc.
type BuildOption func(*buildConfig)

type buildConfig struct {
    includeTags map[string]struct{}
    excludeTags map[string]struct{}
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags []string) BuildOption {
    return func(c *buildConfig) {
        c.includeTags = addTags(c.includeTags, tags)
    }
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) BuildOption {
    return func(c *buildConfig) {
        c.excludeTags = addTags(c.excludeTags, tags)
    }
}

func addTags(set map[string]struct{}, tags []string) map[string]struct{} {
    for _, t := range tags {
        t = strings.TrimSpace(t)
        if t == "" {
            continue
        }
        if set == nil {
            set = make(map[string]struct{}, len(tags))
        }
        set[t] = struct{}{}
    }
    return set
}

// BuildGraph converts a decoded document into the read-only SchemaGraph.
// References stay names; they are never dereferenced here, so dangling or
// cyclic references are carried through untouched.
func BuildGraph(ctx context.Context, doc *openapi3.T, opts ...BuildOption) (*Graph, error) {
    _ = ctx
    if doc == nil {
        return nil, fmt.Errorf("nil document")
    }

    cfg := &buildConfig{}
    for _, opt := range opts {
        opt(cfg)
    }

    g := &Graph{Schemas: map[string]*Schema{}}
    if doc.Info != nil {
        g.Title = strings.TrimSpace(doc.Info.Title)
        g.Version = strings.TrimSpace(doc.Info.Version)
    }

    if doc.Components != nil {
        for name, ref := range doc.Components.Schemas {
            if ref == nil {
                continue
            }
            if ref.Ref != "" {
                // A bare alias behaves like single-parent inheritance.
                g.Schemas[name] = &Schema{Name: name, AllOf: []*SchemaOrRef{{Ref: &Ref{Ref: ref.Ref}}}}
                continue
            }
            if ref.Value == nil {
                continue
            }
            g.Schemas[name] = toSchema(name, ref.Value)
        }
    }

    pathKeys := make([]string, 0, len(doc.Paths))
    for p := range doc.Paths {
        pathKeys = append(pathKeys, p)
    }
    sort.Strings(pathKeys)

    for _, p := range pathKeys {
        item := doc.Paths[p]
        if item == nil {
            continue
        }
        // Path-level parameters first, overridden by operation-level ones.
        baseParams := make(map[string]Parameter)
        for _, pref := range item.Parameters {
            if pm, ok := toParameter(doc, pref); ok {
                baseParams[paramKey(pm.In, pm.Name)] = pm
            }
        }

        for _, m := range methodOrder {
            op := item.GetOperation(strings.ToUpper(string(m)))
            if op == nil {
                continue
            }
            if !allowByTags(op.Tags, cfg) {
                continue
            }

            merged := make(map[string]Parameter, len(baseParams))
            for k, v := range baseParams {
                merged[k] = v
            }
            for _, pref := range op.Parameters {
                if pm, ok := toParameter(doc, pref); ok {
                    merged[paramKey(pm.In, pm.Name)] = pm
                }
            }
            params := make([]Parameter, 0, len(merged))
            for _, v := range merged {
                params = append(params, v)
            }
            sort.Slice(params, func(i, j int) bool {
                if params[i].In == params[j].In {
                    return params[i].Name < params[j].Name
                }
                return params[i].In < params[j].In
            })

            opID := strings.TrimSpace(op.OperationID)
            if opID == "" {
                opID = deriveOperationID(m, p)
            }

            em := &Operation{
                OperationID: opID,
                Method:      m,
                Path:        p,
                Summary:     strings.TrimSpace(op.Summary),
                Description: strings.TrimSpace(op.Description),
                Tags:        append([]string(nil), op.Tags...),
                Deprecated:  op.Deprecated,
                Parameters:  params,
                RequestBody: toRequestBody(doc, op.RequestBody),
                Responses:   map[string]*Response{},
            }
            for code, rref := range op.Responses {
                if r := toResponse(doc, rref); r != nil {
                    em.Responses[code] = r
                }
            }
            g.Operations = append(g.Operations, em)
        }
    }

    return g, nil
}

func allowByTags(tags []string, cfg *buildConfig) bool {
    if len(cfg.includeTags) > 0 {
        found := false
        for _, t := range tags {
            if _, ok := cfg.includeTags[t]; ok {
                found = true
                break
            }
        }
        if !found {
            return false
        }
    }
    for _, t := range tags {
        if _, ok := cfg.excludeTags[t]; ok {
            return false
        }
    }
    return true
}

func paramKey(in, name string) string { return in + ":" + name }

// deriveOperationID names operations that lack an operationId, e.g.
// GET /pets/{id} becomes getPetsId.
func deriveOperationID(m HttpMethod, path string) string {
    var b strings.Builder
    b.WriteString(string(m))
    for _, seg := range strings.Split(path, "/") {
        seg = strings.Trim(seg, "{}")
        if seg == "" {
            continue
        }
        b.WriteString(naming.TypeName(seg))
    }
    return b.String()
}

func toSchema(name string, v *openapi3.Schema) *Schema {
    s := &Schema{
        Name:        name,
        Type:        v.Type,
        Required:    append([]string(nil), v.Required...),
        Enum:        enumStrings(v.Enum),
        Description: strings.TrimSpace(v.Description),
        Deprecated:  v.Deprecated,
    }
    if v.Properties != nil {
        s.Properties = make(map[string]*PropertyOrRef, len(v.Properties))
        for pname, pref := range v.Properties {
            if por := toPropertyOrRef(pref); por != nil {
                s.Properties[pname] = por
            }
        }
    }
    for _, member := range v.AllOf {
        if member == nil {
            continue
        }
        if member.Ref != "" {
            s.AllOf = append(s.AllOf, &SchemaOrRef{Ref: &Ref{Ref: member.Ref}})
            continue
        }
        if member.Value != nil {
            s.AllOf = append(s.AllOf, &SchemaOrRef{Schema: toSchema("", member.Value)})
        }
    }
    if d := v.Discriminator; d != nil {
        s.Discriminator = &Discriminator{PropertyName: d.PropertyName, Mapping: map[string]string{}}
        for tag, ref := range d.Mapping {
            s.Discriminator.Mapping[tag] = ref
        }
    }
    return s
}

func toPropertyOrRef(ref *openapi3.SchemaRef) *PropertyOrRef {
    if ref == nil {
        return nil
    }
    if ref.Ref != "" {
        return &PropertyOrRef{Ref: &Ref{Ref: ref.Ref}}
    }
    if ref.Value == nil {
        return nil
    }
    v := ref.Value
    p := &Property{
        Type:        v.Type,
        Format:      v.Format,
        Description: strings.TrimSpace(v.Description),
        Deprecated:  v.Deprecated,
        Enum:        enumStrings(v.Enum),
        Items:       toPropertyOrRef(v.Items),
    }
    ap := v.AdditionalProperties
    switch {
    case ap.Schema != nil && ap.Schema.Ref == "" && isEmptySchema(ap.Schema.Value):
        p.FreeForm = true
    case ap.Schema != nil:
        p.AdditionalProperties = toPropertyOrRef(ap.Schema)
    case ap.Has != nil && *ap.Has:
        p.FreeForm = true
    }
    return &PropertyOrRef{Property: p}
}

func isEmptySchema(v *openapi3.Schema) bool {
    if v == nil {
        return true
    }
    return v.Type == "" && v.Items == nil && len(v.Properties) == 0 && len(v.Enum) == 0 &&
        v.AdditionalProperties.Schema == nil && len(v.AllOf) == 0
}

func enumStrings(values []any) []string {
    if values == nil {
        return nil
    }
    out := make([]string, 0, len(values))
    for _, v := range values {
        switch val := v.(type) {
        case nil:
            continue
        case string:
            out = append(out, val)
        default:
            out = append(out, fmt.Sprint(val))
        }
    }
    return out
}

// componentName returns the trailing segment of a local component reference.
func componentName(ref string) string {
    return Ref{Ref: ref}.Name()
}

func toParameter(doc *openapi3.T, pref *openapi3.ParameterRef) (Parameter, bool) {
    if pref == nil {
        return Parameter{}, false
    }
    p := pref.Value
    if p == nil && pref.Ref != "" && doc.Components != nil {
        if target := doc.Components.Parameters[componentName(pref.Ref)]; target != nil {
            p = target.Value
        }
    }
    if p == nil {
        return Parameter{}, false
    }
    return Parameter{
        Name:        p.Name,
        In:          p.In,
        Description: strings.TrimSpace(p.Description),
        Required:    p.Required || p.In == openapi3.ParameterInPath,
        Schema:      toPropertyOrRef(p.Schema),
    }, true
}

func toRequestBody(doc *openapi3.T, ref *openapi3.RequestBodyRef) *RequestBody {
    if ref == nil {
        return nil
    }
    rb := ref.Value
    if rb == nil && ref.Ref != "" && doc.Components != nil {
        if target := doc.Components.RequestBodies[componentName(ref.Ref)]; target != nil {
            rb = target.Value
        }
    }
    if rb == nil {
        return nil
    }
    return &RequestBody{Required: rb.Required, Content: toContent(rb.Content)}
}

func toResponse(doc *openapi3.T, ref *openapi3.ResponseRef) *Response {
    if ref == nil {
        return nil
    }
    r := ref.Value
    if r == nil && ref.Ref != "" && doc.Components != nil {
        if target := doc.Components.Responses[componentName(ref.Ref)]; target != nil {
            r = target.Value
        }
    }
    if r == nil {
        return nil
    }
    out := &Response{Content: toContent(r.Content)}
    if r.Description != nil {
        out.Description = strings.TrimSpace(*r.Description)
    }
    return out
}

func toContent(content openapi3.Content) map[string]*PropertyOrRef {
    out := make(map[string]*PropertyOrRef, len(content))
    for mime, mt := range content {
        if mt == nil {
            continue
        }
        out[mime] = toPropertyOrRef(mt.Schema)
    }
    return out
}
