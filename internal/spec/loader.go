package spec

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "os"
    "path/filepath"
    "regexp"
    "strings"
    "time"

    openapi2 "github.com/getkin/kin-openapi/openapi2"
    "github.com/getkin/kin-openapi/openapi2conv"
    "github.com/getkin/kin-openapi/openapi3"
    "gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
    InputError      ErrorCode = "InputError"
    NetworkError    ErrorCode = "NetworkError"
    ParseError      ErrorCode = "ParseError"
    ValidationError ErrorCode = "ValidationError"
    ConversionError ErrorCode = "ConversionError"
)

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
    Code        ErrorCode
    Message     string
    Location    string // file path or URL
    JSONPointer string // e.g. "#/components/schemas/Pet"
    Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// Settings configures loader behavior.
type Settings struct {
    // HTTPTimeout bounds each HTTP request.
    HTTPTimeout time.Duration
    // MaxRetries for transient HTTP failures (>=500, 429, or network errors).
    MaxRetries int
    // BackoffBase is the base delay for exponential backoff.
    BackoffBase time.Duration
    // Strict resolves every $ref and validates the document before returning.
    // Without it the document is decoded as-is and references stay names.
    Strict bool
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
    return Settings{
        HTTPTimeout: 10 * time.Second,
        MaxRetries:  3,
        BackoffBase: 200 * time.Millisecond,
    }
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option  { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option            { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithStrict(strict bool) Option          { return func(s *Settings) { s.Strict = strict } }

// Load reads an OpenAPI v3 document from a filesystem path or an http/https
// URL. Swagger v2.0 input is converted to v3 via kin-openapi openapi2conv.
// file:// URLs are rejected.
func Load(ctx context.Context, input string, opts ...Option) (*openapi3.T, error) {
    if strings.TrimSpace(input) == "" {
        return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
    }

    settings := DefaultSettings()
    for _, opt := range opts {
        opt(&settings)
    }

    src, err := readSource(ctx, input, settings)
    if err != nil {
        return nil, err
    }
    raw, location := src.raw, src.location

    doc, err := Decode(raw)
    if err != nil {
        var se *SpecError
        if errors.As(err, &se) {
            se.Location = location
            return nil, se
        }
        return nil, err
    }

    if settings.Strict {
        loader := newLoader(ctx, settings, !src.remote)
        if err := loader.ResolveRefsIn(doc, src.base); err != nil {
            return nil, mapValidateOrParseErr(err, location)
        }
        if err := doc.Validate(ctx); err != nil {
            if !canProceedDespiteValidation(err) {
                return nil, mapValidateOrParseErr(err, location)
            }
        }
    }
    return doc, nil
}

// source is a fetched document and where it came from.
type source struct {
    raw      []byte
    location string // absolute path or URL
    base     *url.URL
    remote   bool
}

func readSource(ctx context.Context, input string, settings Settings) (*source, error) {
    u, err := url.Parse(input)
    if err != nil || u.Scheme == "" || (u.Host == "" && !strings.EqualFold(u.Scheme, "file")) {
        return readFile(input)
    }
    switch scheme := strings.ToLower(u.Scheme); scheme {
    case "http", "https":
        body, err := fetchWithRetry(ctx, input, settings)
        if err != nil {
            return nil, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
        }
        return &source{raw: body, location: input, base: u, remote: true}, nil
    case "file":
        return nil, &SpecError{Code: InputError, Message: "spec: file:// URLs are blocked", Location: input}
    default:
        return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
    }
}

func readFile(input string) (*source, error) {
    abs, err := filepath.Abs(input)
    if err != nil {
        return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
    }
    body, err := os.ReadFile(abs)
    if err != nil {
        return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
    }
    return &source{raw: body, location: abs, base: &url.URL{Path: abs}}, nil
}

// Decode parses YAML or JSON bytes into a document without resolving
// references.
func Decode(raw []byte) (*openapi3.T, error) {
    version, err := detectSpecVersion(raw)
    if err != nil {
        return nil, &SpecError{Code: ParseError, Message: err.Error(), Cause: err}
    }
    js, err := yamlToJSON(raw)
    if err != nil {
        return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse spec: %v", err), Cause: err}
    }

    switch version {
    case 2:
        if repaired, _, err := repairSwagger2(js); err == nil {
            js = repaired
        }
        doc, err := convertV2ToV3(js)
        if err != nil {
            return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Cause: err}
        }
        return doc, nil
    default:
        doc := &openapi3.T{}
        if err := json.Unmarshal(js, doc); err != nil {
            return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("decode spec: %v", err), JSONPointer: extractJSONPointer(err), Cause: err}
        }
        return doc, nil
    }
}

func newLoader(ctx context.Context, settings Settings, rootIsFile bool) *openapi3.Loader {
    loader := openapi3.NewLoader()
    loader.IsExternalRefsAllowed = true
    client := &http.Client{Timeout: settings.HTTPTimeout}
    loader.ReadFromURIFunc = func(l *openapi3.Loader, uri *url.URL) ([]byte, error) {
        switch strings.ToLower(uri.Scheme) {
        case "", "file":
            if !rootIsFile {
                return nil, fmt.Errorf("blocked file ref: %s", uri.String())
            }
            path := uri.Path
            if path == "" {
                path = uri.Opaque
            }
            return os.ReadFile(path)
        case "http", "https":
            body, _, err := fetchOnce(ctx, client, uri.String())
            if err != nil {
                return nil, fmt.Errorf("%s: %w", uri, err)
            }
            return body, nil
        default:
            return nil, fmt.Errorf("unsupported ref scheme: %s", uri.Scheme)
        }
    }
    return loader
}

// detectSpecVersion returns 3 for OpenAPI v3 and 2 for Swagger v2. Documents
// that carry neither key are treated as v3 fragments.
func detectSpecVersion(data []byte) (int, error) {
    var root map[string]any
    if err := yaml.Unmarshal(data, &root); err != nil {
        return 0, fmt.Errorf("parse spec: %w", err)
    }
    if root == nil {
        return 0, errors.New("spec: document is empty")
    }
    if v, ok := root["openapi"]; ok {
        if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
            return 3, nil
        }
        return 0, fmt.Errorf("spec: unsupported openapi version %v (expected 3.x)", v)
    }
    if v, ok := root["swagger"]; ok {
        if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "2.") {
            return 2, nil
        }
        return 0, fmt.Errorf("spec: unsupported swagger version %v (expected 2.0)", v)
    }
    return 3, nil
}

// yamlToJSON re-encodes YAML (a superset of JSON) as JSON so the kin-openapi
// types can decode it with their JSON hooks.
func yamlToJSON(data []byte) ([]byte, error) {
    var root any
    if err := yaml.Unmarshal(data, &root); err != nil {
        return nil, err
    }
    return json.Marshal(jsonCompatible(root))
}

// jsonCompatible stringifies map keys; YAML allows non-string keys such as
// unquoted response codes.
func jsonCompatible(v any) any {
    switch val := v.(type) {
    case map[string]any:
        out := make(map[string]any, len(val))
        for k, elem := range val {
            out[k] = jsonCompatible(elem)
        }
        return out
    case map[any]any:
        out := make(map[string]any, len(val))
        for k, elem := range val {
            out[fmt.Sprint(k)] = jsonCompatible(elem)
        }
        return out
    case []any:
        out := make([]any, len(val))
        for i, elem := range val {
            out[i] = jsonCompatible(elem)
        }
        return out
    default:
        return v
    }
}

func convertV2ToV3(js []byte) (*openapi3.T, error) {
    var v2 openapi2.T
    if err := json.Unmarshal(js, &v2); err != nil {
        return nil, err
    }
    return openapi2conv.ToV3(&v2)
}

// fetchWithRetry retries network errors, 5xx and 429 with exponential
// backoff. Other statuses fail at once.
func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
    client := &http.Client{Timeout: settings.HTTPTimeout}
    backoff := settings.BackoffBase
    if backoff <= 0 {
        backoff = 200 * time.Millisecond
    }
    attempts := max(settings.MaxRetries, 1)
    for attempt := 1; ; attempt++ {
        body, transient, err := fetchOnce(ctx, client, rawURL)
        if err == nil {
            return body, nil
        }
        if !transient || attempt >= attempts {
            return nil, err
        }
        select {
        case <-ctx.Done():
            return nil, ctx.Err()
        case <-time.After(backoff):
        }
        backoff *= 2
    }
}

func fetchOnce(ctx context.Context, client *http.Client, rawURL string) (body []byte, transient bool, err error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
    if err != nil {
        return nil, false, err
    }
    resp, err := client.Do(req)
    if err != nil {
        return nil, ctx.Err() == nil, err
    }
    defer resp.Body.Close()
    switch {
    case resp.StatusCode < 300:
        body, err = io.ReadAll(resp.Body)
        return body, false, err
    case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
        return nil, true, fmt.Errorf("transient http error %d", resp.StatusCode)
    default:
        msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
        return nil, false, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
    }
}

func mapValidateOrParseErr(err error, location string) error {
    pointer := extractJSONPointer(err)
    code := ValidationError
    lower := strings.ToLower(err.Error())
    if strings.Contains(lower, "parse") || strings.Contains(lower, "invalid character") {
        code = ParseError
    }
    return &SpecError{Code: code, Message: err.Error(), Location: location, JSONPointer: pointer, Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'\"]+`)

func extractJSONPointer(err error) string {
    if err == nil {
        return ""
    }
    if me, ok := err.(openapi3.MultiError); ok {
        if len(me) > 0 {
            return extractJSONPointer(me[0])
        }
    }
    var se *openapi3.SchemaError
    if errors.As(err, &se) {
        if parts := se.JSONPointer(); len(parts) > 0 {
            return "#/" + strings.Join(parts, "/")
        }
        if se.SchemaField != "" {
            return se.SchemaField
        }
    }
    if m := jsonPtrRe.FindString(err.Error()); m != "" {
        return m
    }
    return ""
}

// canProceedDespiteValidation returns true for validation errors a best-effort
// generation can survive, such as unresolved $ref entries.
func canProceedDespiteValidation(err error) bool {
    if err == nil {
        return true
    }
    s := strings.ToLower(err.Error())
    return strings.Contains(s, "unresolved ref") || strings.Contains(s, "found unresolved ref")
}
