package swiftgen

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mark3labs/modelgen/internal/naming"
	"github.com/mark3labs/modelgen/internal/spec"
)

// statusNames maps status codes to Response case names.
var statusNames = map[int]string{
	200: "ok",
	201: "created",
	202: "accepted",
	204: "noContent",
	400: "badRequest",
	401: "unauthorized",
	403: "forbidden",
	404: "notFound",
	405: "methodNotAllowed",
	409: "conflict",
	410: "gone",
	412: "preconditionFailed",
	415: "unsupportedMediaType",
	422: "unprocessableEntity",
	429: "tooManyRequests",
	500: "internalServerError",
	501: "notImplemented",
	502: "badGateway",
	503: "serviceUnavailable",
	504: "gatewayTimeout",
}

// StatusName is the Response case for a status code.
func StatusName(code int) string {
	if name, ok := statusNames[code]; ok {
		return name
	}
	return naming.EscapePrefix + strconv.Itoa(code)
}

// successKeys is the success response priority.
var successKeys = []string{"default", "200", "201", "204"}

// RequestTypeName is the Swift type generated for an operation.
func RequestTypeName(operationID string) string {
	return naming.UpperFirst(operationID) + "Request"
}

// RequestFileName is the file an operation is written to.
func RequestFileName(operationID string) string {
	return RequestTypeName(operationID) + ".swift"
}

type payload int

const (
	payloadNone payload = iota
	payloadData
	payloadJSON
)

// responseCase is one status-code case of the generated Response enum.
type responseCase struct {
	Status  int
	Name    string
	Payload payload
	Type    string
}

func (c responseCase) declaration() string {
	switch c.Payload {
	case payloadJSON:
		return fmt.Sprintf("case %s(%s)", c.Name, c.Type)
	case payloadData:
		return fmt.Sprintf("case %s(Data)", c.Name)
	default:
		return "case " + c.Name
	}
}

func (c responseCase) decode() string {
	switch c.Payload {
	case payloadJSON:
		return fmt.Sprintf("case %d: return (.%s(try jsonDecoder.decode(%s.self, from: data)), data, response)", c.Status, c.Name, c.Type)
	case payloadData:
		return fmt.Sprintf("case %d: return (.%s(data), data, response)", c.Status, c.Name)
	default:
		return fmt.Sprintf("case %d: return (.%s, data, response)", c.Status, c.Name)
	}
}

type requestParam struct {
	Name       string
	In         string
	Identifier string
	Type       ResolvedType
	Values     []string
}

// descriptor collects everything a request emission needs, so emission
// itself cannot fail.
type descriptor struct {
	OperationID string
	Method      spec.HttpMethod
	Path        string
	Success     responseCase
	Others      []responseCase
	Params      []requestParam
	Body        string
	Tags        []string
}

// successType is the Swift type returned by get and result.
func (d descriptor) successType() string {
	switch d.Success.Payload {
	case payloadJSON:
		return d.Success.Type
	case payloadData:
		return "Data"
	default:
		return "Void"
	}
}

// Request emits the request wrapper for one operation. ok is false when the
// operation has no recognizable success response; nothing is emitted then.
func (g *Generator) Request(path string, method spec.HttpMethod, op *spec.Operation) (string, bool, error) {
	u := newUnit()
	d, ok, err := g.describe(u, path, method, op)
	if err != nil || !ok {
		return "", ok, err
	}
	g.emitRequest(u, d, op)
	return g.finish(RequestFileName(d.OperationID), u), true, nil
}

func (g *Generator) describe(u *unit, path string, method spec.HttpMethod, op *spec.Operation) (descriptor, bool, error) {
	d := descriptor{OperationID: op.OperationID, Method: method, Path: path}

	key, ok := successKey(op)
	if !ok {
		return d, false, nil
	}
	success, err := g.responseCase(u, op, key, op.Responses[key])
	if err != nil {
		return d, false, err
	}
	success.Name = "ok"
	d.Success = success

	for _, code := range otherCodes(op, key, success.Status) {
		c, err := g.responseCase(u, op, strconv.Itoa(code), op.Responses[strconv.Itoa(code)])
		if err != nil {
			return d, false, err
		}
		d.Others = append(d.Others, c)
	}

	for _, p := range op.Parameters {
		switch p.In {
		case "path", "query", "header":
		default:
			continue
		}
		if p.Schema == nil {
			return d, false, newError(UnsupportedShape, op.OperationID, p.Name, "parameter without schema")
		}
		prop := naming.CamelCase(p.Name)
		required := p.Required || p.In == "path"
		t, err := g.resolveSchema(p.Schema, op.OperationID, prop, required)
		if err != nil {
			return d, false, err
		}
		u.use(t)
		rp := requestParam{Name: p.Name, In: p.In, Identifier: naming.SafeIdentifier(prop), Type: t}
		if p.Schema.Property != nil {
			rp.Values = enumValuesOf(p.Schema.Property)
		}
		d.Params = append(d.Params, rp)
	}
	sort.SliceStable(d.Params, func(i, j int) bool {
		a, b := strings.ToLower(d.Params[i].Name), strings.ToLower(d.Params[j].Name)
		if a != b {
			return a < b
		}
		return d.Params[i].Name < d.Params[j].Name
	})

	if err := checkEnums(op.OperationID, paramEnums(d.Params)); err != nil {
		return d, false, err
	}

	if body := op.RequestBody.JSONSchema(); body != nil && body.Ref != nil {
		d.Body = typeName(body.Ref.Name())
	}

	d.Tags = append(d.Tags, op.Tags...)
	if g.cfg.Tag != "" {
		d.Tags = append(d.Tags, g.cfg.Tag)
	}
	return d, true, nil
}

func successKey(op *spec.Operation) (string, bool) {
	for _, key := range successKeys {
		if _, ok := op.Responses[key]; ok {
			return key, true
		}
	}
	return "", false
}

// otherCodes returns the numeric, non-success response codes in ascending
// order. Wildcards such as 4XX are skipped.
func otherCodes(op *spec.Operation, successKey string, successStatus int) []int {
	var codes []int
	for key := range op.Responses {
		if key == successKey {
			continue
		}
		code, err := strconv.Atoi(key)
		if err != nil || code == successStatus {
			continue
		}
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

func (g *Generator) responseCase(u *unit, op *spec.Operation, key string, resp *spec.Response) (responseCase, error) {
	status := 200
	if key != "default" {
		status, _ = strconv.Atoi(key)
	}
	c := responseCase{Status: status, Name: StatusName(status)}
	if status == 204 {
		return c, nil
	}
	schema := resp.JSONSchema()
	if schema == nil {
		c.Payload = payloadData
		return c, nil
	}
	if schema.Ref != nil {
		c.Payload, c.Type = payloadJSON, typeName(schema.Ref.Name())
		return c, nil
	}
	t, err := g.resolve(schema.Property, op.OperationID, "Response", true)
	if err != nil {
		return c, err
	}
	if t.Enum {
		return c, newError(UnsupportedShape, op.OperationID, key, "inline enum response bodies are not supported, use a $ref enum schema")
	}
	u.use(t)
	c.Payload, c.Type = payloadJSON, t.BaseType()
	return c, nil
}

func (g *Generator) emitRequest(u *unit, d descriptor, op *spec.Operation) {
	success := d.successType()

	u.Print(fmt.Sprintf("// %s: %s %s -> %s", d.OperationID, strings.ToUpper(string(d.Method)), d.Path, success))
	u.Comment(op.Summary)
	g.cfg.printDeprecation(u.Buffer, op.Deprecated)
	u.Block(fmt.Sprintf("%sstruct %s%s", g.cfg.accessLevel(op.Deprecated), RequestTypeName(d.OperationID), g.cfg.conformances()), func() {
		u.Print("static let path = " + swiftString(d.Path))
		u.Print("public let tags = " + tagsLiteral(d.Tags))
		u.Print("public let urlRequest: URLRequest")
		u.Print(`@Dependency(\.jsonEncoder) var jsonEncoder`)
		u.Print(`@Dependency(\.jsonDecoder) var jsonDecoder`)
		u.Print(`@Dependency(\.httpClient) var httpClient`)
		u.Print("")

		g.emitRequestInit(u, d)
		u.Print("")
		emitResponseEnum(u, d)
		u.Print("")
		emitExecute(u, d)
		u.Print("")
		emitGet(u, d, success)
		u.Print("")
		emitResult(u, d, success)

		for _, e := range paramEnums(d.Params) {
			u.Print("")
			g.emitEnum(u.Buffer, e.Name, e.Values)
		}
	})
}

// paramEnums collects the enums nested in the request for enum-valued
// parameters.
func paramEnums(params []requestParam) []nestedEnum {
	byName := map[string][]string{}
	for _, p := range params {
		if len(p.Values) > 0 {
			name := enumTypeName(naming.CamelCase(p.Name))
			byName[name] = append(byName[name], p.Values...)
		}
	}
	return sortedEnums(byName)
}

func tagsLiteral(tags []string) string {
	if len(tags) == 0 {
		return "[String]()"
	}
	quoted := make([]string, len(tags))
	for i, t := range tags {
		quoted[i] = swiftString(t)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func (g *Generator) emitRequestInit(u *unit, d descriptor) {
	args := make([]string, 0, len(d.Params)+2)
	for _, p := range d.Params {
		arg := p.Identifier + ": " + p.Type.PropertyType()
		switch {
		case g.cfg.hasDefaultValue(p.Name):
			arg += " = DefaultValues." + p.Identifier
		case p.Type.Optional:
			arg += " = nil"
		}
		args = append(args, arg)
	}
	if d.Body != "" {
		args = append(args, "body: "+d.Body)
	}
	args = append(args, "useCache: Bool = true")

	u.Block(fmt.Sprintf("public init(%s)", strings.Join(args, ", ")), func() {
		u.Print("let path = Self.path")
		u.Indent(func() {
			for _, p := range d.Params {
				if p.In == "path" {
					u.Print(fmt.Sprintf(".replacingOccurrences(of: %s, with: %s)", swiftString("{"+p.Name+"}"), valueExpr(p.Type, p.Identifier)))
				}
			}
		})
		u.Print("")

		u.Print("var queryItems = [URLQueryItem?]()")
		for _, p := range d.Params {
			if p.In == "query" {
				emitQueryItem(u, p)
			}
		}
		u.Print("")
		u.Print("// build URL")
		u.Print("var components = URLComponents(string: path)!")
		u.Print("components.queryItems = queryItems.compactMap { $0 }.filter { $0.value != nil }")
		u.Print("")
		u.Print("// build request")
		u.Print("var request = URLRequest(url: components.url!)")
		u.Print(fmt.Sprintf("request.httpMethod = %s", swiftString(strings.ToUpper(string(d.Method)))))
		u.Print("request.cachePolicy = useCache ? .useProtocolCachePolicy : .reloadIgnoringLocalAndRemoteCacheData")

		var headers []requestParam
		for _, p := range d.Params {
			if p.In == "header" {
				headers = append(headers, p)
			}
		}
		if len(headers) > 0 {
			u.Print("")
			u.Print("// headers")
			u.Print("var headers = [String: String?]()")
			for _, p := range headers {
				u.Print(fmt.Sprintf("headers[%s] = %s", swiftString(p.Name), headerExpr(p)))
			}
			u.Print("request.allHTTPHeaderFields = headers.compactMapValues { $0 }")
		}

		if d.Body != "" {
			u.Print("")
			u.Print("// encode body")
			u.Print(`@Dependency(\.jsonEncoder) var encoder`)
			u.Print("request.httpBody = try? encoder.encode(body)")
			u.Print(`request.setValue("application/json", forHTTPHeaderField: "Content-Type")`)
		}
		u.Print("")
		u.Print("self.urlRequest = request")
	})
}

// valueExpr renders expr of type t as a string value for a URL or header.
func valueExpr(t ResolvedType, expr string) string {
	switch {
	case t.Enum:
		return expr + ".rawValue"
	case t.Name == "String":
		return expr
	default:
		return `"\(` + expr + `)"`
	}
}

func emitQueryItem(u *unit, p requestParam) {
	name := swiftString(p.Name)
	if p.Type.Qualifier == Array {
		source := p.Identifier
		if p.Type.Optional {
			source += " ?? []"
		}
		u.Block(fmt.Sprintf("for element in %s", source), func() {
			u.Print(fmt.Sprintf("queryItems.append(URLQueryItem(name: %s, value: %s))", name, valueExpr(p.Type.element(), "element")))
		})
		return
	}
	if p.Type.Optional {
		u.Print(fmt.Sprintf("queryItems.append(%s.map { URLQueryItem(name: %s, value: %s) })", p.Identifier, name, valueExpr(p.Type, "$0")))
		return
	}
	u.Print(fmt.Sprintf("queryItems.append(URLQueryItem(name: %s, value: %s))", name, valueExpr(p.Type, p.Identifier)))
}

func headerExpr(p requestParam) string {
	t := p.Type
	if t.Qualifier == Array {
		access := "."
		if t.Optional {
			access = "?."
		}
		return fmt.Sprintf(`%s%smap { %s }.joined(separator: ",")`, p.Identifier, access, valueExpr(t.element(), "$0"))
	}
	if t.Optional && (t.Enum || t.Name != "String") {
		return fmt.Sprintf("%s.map { %s }", p.Identifier, valueExpr(t, "$0"))
	}
	return valueExpr(t, p.Identifier)
}

func emitResponseEnum(u *unit, d descriptor) {
	u.Block("public enum Response", func() {
		u.Print(d.Success.declaration())
		for _, c := range d.Others {
			u.Print(c.declaration())
		}
		u.Print("")
		u.Print("case undocumented(Int, Data)")
		u.Print("case error(Error)")
		u.Print("case invalid(Error)")
	})
}

func emitExecute(u *unit, d descriptor) {
	u.Print("// return decoded response, raw data and HTTP headers")
	u.Block("public func execute() async -> (Response, Data?, HTTPURLResponse?)", func() {
		u.Print("let data: Data")
		u.Print("let response: HTTPURLResponse")
		u.Print("do { (data, response) = try await httpClient.execute(urlRequest: urlRequest, tags: tags) }")
		u.Print("catch { return (.error(error), nil, nil) }")
		u.Print("do { switch response.statusCode {")
		u.Indent(func() {
			u.Print(d.Success.decode())
			for _, c := range d.Others {
				u.Print(c.decode())
			}
			u.Print("default: return (.undocumented(response.statusCode, data), data, response)")
		})
		u.Print("} }")
		u.Print("catch { return (.invalid(error), data, response) }")
	})
}

func emitGet(u *unit, d descriptor, success string) {
	u.Print("// return " + success + " or nil")
	u.Block(fmt.Sprintf("public func get() async -> %s?", success), func() {
		u.Print("let (response, _, _) = await execute()")
		u.Print("switch response {")
		if d.Success.Payload == payloadNone {
			u.Print("case .ok: return ()")
		} else {
			u.Print("case .ok(let obj): return obj")
		}
		u.Print("default: return nil")
		u.Print("}")
	})
}

func emitResult(u *unit, d descriptor, success string) {
	u.Print(fmt.Sprintf("// return Result<%s, APIError>", success))
	u.Block(fmt.Sprintf("public func result() async -> Result<%s, APIError>", success), func() {
		u.Print("let (response, data, urlResponse) = await execute()")
		u.Block("guard let data, let urlResponse else", func() {
			u.Print("if case .error(let error) = response { return .failure(.urlError(error)) }")
			u.Print("return .failure(.unexpected)")
		})
		u.Print("switch response {")
		if d.Success.Payload == payloadNone {
			u.Print("case .ok: return .success(())")
		} else {
			u.Print("case .ok(let obj): return .success(obj)")
		}
		for _, c := range d.Others {
			if c.Payload == payloadJSON {
				u.Print(fmt.Sprintf("case .%s(let obj): return .failure(.apiError(obj, urlResponse, data))", c.Name))
			} else {
				u.Print(fmt.Sprintf("case .%s: return .failure(.httpError(urlResponse, data))", c.Name))
			}
		}
		u.Print("case .error(let error): return .failure(.urlError(error))")
		u.Print("case .invalid(let error): return .failure(.invalid(error, urlResponse, data))")
		u.Print("case .undocumented(_, let data): return .failure(.undocumented(urlResponse, data))")
		u.Print("}")
	})
}
