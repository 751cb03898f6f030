package spec

import (
    "encoding/json"
    "strings"
)

var swagger2Methods = map[string]bool{
    "get": true, "put": true, "post": true, "delete": true,
    "options": true, "head": true, "patch": true,
}

// repairSwagger2 rewrites operation parameters that openapi2conv rejects.
// Several body parameters collapse into one object-typed body; a body mixed
// with formData parameters is demoted to formData and the operation consumes
// multipart/form-data. js is the JSON form of the Swagger 2.0 document.
func repairSwagger2(js []byte) ([]byte, bool, error) {
    var doc map[string]any
    if err := json.Unmarshal(js, &doc); err != nil {
        return js, false, err
    }
    paths, _ := doc["paths"].(map[string]any)
    changed := false
    for _, item := range paths {
        ops, _ := item.(map[string]any)
        for method, raw := range ops {
            if !swagger2Methods[strings.ToLower(method)] {
                continue
            }
            if op, ok := raw.(map[string]any); ok && repairOperation(op) {
                changed = true
            }
        }
    }
    if !changed {
        return js, false, nil
    }
    out, err := json.Marshal(doc)
    if err != nil {
        return js, false, err
    }
    return out, true, nil
}

func repairOperation(op map[string]any) bool {
    params, _ := op["parameters"].([]any)
    var bodies, rest []map[string]any
    form := false
    for _, p := range params {
        pm, ok := p.(map[string]any)
        if !ok {
            continue
        }
        switch paramIn(pm) {
        case "body":
            bodies = append(bodies, pm)
            continue
        case "formdata":
            form = true
        }
        rest = append(rest, pm)
    }

    switch {
    case len(bodies) == 0:
        return false
    case form:
        for _, b := range bodies {
            rest = append(rest, bodyAsFormField(b))
        }
        consumes, _ := op["consumes"].([]any)
        if !hasString(consumes, "multipart/form-data") {
            op["consumes"] = append(consumes, "multipart/form-data")
        }
    case len(bodies) > 1:
        rest = append([]map[string]any{mergeBodies(bodies)}, rest...)
    default:
        return false
    }

    out := make([]any, len(rest))
    for i, p := range rest {
        out[i] = p
    }
    op["parameters"] = out
    return true
}

func paramIn(param map[string]any) string {
    s, _ := param["in"].(string)
    return strings.ToLower(s)
}

func paramName(param map[string]any) string {
    if s, _ := param["name"].(string); s != "" {
        return s
    }
    return "field"
}

func mergeBodies(bodies []map[string]any) map[string]any {
    props := make(map[string]any, len(bodies))
    var required []any
    for _, b := range bodies {
        name := paramName(b)
        props[name] = paramSchema(b)
        if req, _ := b["required"].(bool); req {
            required = append(required, name)
        }
    }
    schema := map[string]any{"type": "object", "properties": props}
    if len(required) > 0 {
        schema["required"] = required
    }
    return map[string]any{"in": "body", "name": "body", "schema": schema}
}

// paramSchema returns the body schema or one synthesized from the inline
// type keys, falling back to string.
func paramSchema(param map[string]any) map[string]any {
    if s, ok := param["schema"].(map[string]any); ok {
        return s
    }
    typ, _ := param["type"].(string)
    if typ == "" {
        return map[string]any{"type": "string"}
    }
    out := map[string]any{"type": typ}
    copyKeys(out, param, "items", "format")
    return out
}

// bodyAsFormField flattens a body parameter into a formData field. A $ref
// body cannot be a form field and becomes a string.
func bodyAsFormField(body map[string]any) map[string]any {
    field := map[string]any{"in": "formData", "name": paramName(body)}
    copyKeys(field, body, "description", "required")
    src := body
    if s, ok := body["schema"].(map[string]any); ok {
        src = s
    }
    typ, _ := src["type"].(string)
    if typ == "" {
        typ = "string"
    }
    field["type"] = typ
    copyKeys(field, src, "items", "format")
    return field
}

func copyKeys(dst, src map[string]any, keys ...string) {
    for _, k := range keys {
        if v, ok := src[k]; ok && v != nil && v != "" {
            dst[k] = v
        }
    }
}

func hasString(list []any, want string) bool {
    for _, v := range list {
        if s, _ := v.(string); s == want {
            return true
        }
    }
    return false
}
